package fetcher

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// CSVOptions configures the CSV parser.
type CSVOptions struct {
	Delimiter  rune // default ','
	LazyQuotes bool
	TrimSpace  bool
}

// ReadCSV parses delimited text into a header row and data rows.
// The first record is always treated as the header.
func ReadCSV(r io.Reader, opts CSVOptions) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.LazyQuotes = opts.LazyQuotes
	reader.FieldsPerRecord = -1 // allow variable fields

	var header []string
	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, eris.Wrap(err, "csv: read row")
		}

		if opts.TrimSpace {
			for i, field := range record {
				record[i] = strings.TrimSpace(field)
			}
		}

		if header == nil {
			header = record
			continue
		}
		rows = append(rows, record)
	}

	if header == nil {
		return nil, nil, eris.New("csv: empty input")
	}

	return header, rows, nil
}
