package sheet

// Frame is an in-memory table: one header row plus data rows, as fetched
// from a single sheet. Cells are kept as raw strings; typed decoding is the
// model package's job.
type Frame struct {
	Name    string
	Headers []string
	Rows    [][]string

	index map[string]int
}

// NewFrame builds a Frame and its header index.
func NewFrame(name string, headers []string, rows [][]string) *Frame {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[h] = i
	}
	return &Frame{Name: name, Headers: headers, Rows: rows, index: index}
}

// Get returns the cell in the given row under the named column.
// A missing column or a short row yields "".
func (f *Frame) Get(row int, column string) string {
	i, ok := f.index[column]
	if !ok || row < 0 || row >= len(f.Rows) {
		return ""
	}
	cells := f.Rows[row]
	if i >= len(cells) {
		return ""
	}
	return cells[i]
}

// Len returns the number of data rows.
func (f *Frame) Len() int {
	return len(f.Rows)
}
