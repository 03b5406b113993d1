// Package reshape pivots long-format monthly facts into one wide row per
// (organization, KPI) pair for tabular display and export.
package reshape

import (
	"fmt"
	"sort"

	"github.com/sells-group/kpi-pulse/internal/model"
)

// MonthCells holds the six values an (org, KPI) pair reports for one month.
type MonthCells struct {
	Present   bool   `json:"present"`
	Target    string `json:"target,omitempty"`
	Actual    string `json:"actual,omitempty"`
	Rate      string `json:"rate,omitempty"`
	YTDTarget string `json:"ytd_target,omitempty"`
	YTDActual string `json:"ytd_actual,omitempty"`
	YTDRate   string `json:"ytd_rate,omitempty"`
}

// WideRow is the pivoted view of one (organization, KPI) pair: identity,
// twelve months of cells, and the YTD grade taken from the latest-month row.
type WideRow struct {
	OrgName string `json:"org_name"`
	OrgID   int    `json:"org_id"`
	KPIName string `json:"kpi_name"`
	// Months is indexed by month number; index 0 is unused.
	Months   [13]MonthCells `json:"months"`
	YTDGrade string         `json:"ytd_grade,omitempty"`
}

type groupKey struct {
	orgName string
	orgID   int
	kpiName string
}

// Build pivots facts into wide rows. Facts are grouped by (org name, org ID,
// KPI name) in first-encounter order; within a group any month order works,
// since each fact writes its own month slot. The YTD grade is taken only
// from the row whose month equals the global latest month; a pair without
// that row keeps an empty grade.
// The result is sorted by (org ID ascending, KPI name ascending).
func Build(facts []model.MonthlyFact) []WideRow {
	latest := model.LatestMonth(facts)

	var order []groupKey
	groups := make(map[groupKey]*WideRow)
	for _, fct := range facts {
		key := groupKey{orgName: fct.OrgName, orgID: fct.OrgID, kpiName: fct.KPIName}
		row, ok := groups[key]
		if !ok {
			row = &WideRow{OrgName: fct.OrgName, OrgID: fct.OrgID, KPIName: fct.KPIName}
			groups[key] = row
			order = append(order, key)
		}

		row.Months[fct.Month] = MonthCells{
			Present:   true,
			Target:    fct.Target,
			Actual:    fct.Actual,
			Rate:      fct.MonthRate,
			YTDTarget: fct.YTDTarget,
			YTDActual: fct.YTDActual,
			YTDRate:   fct.YTDRate,
		}
		if fct.Month == latest {
			row.YTDGrade = fct.YTDGrade
		}
	}

	rows := make([]WideRow, 0, len(order))
	for _, key := range order {
		rows = append(rows, *groups[key])
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].OrgID != rows[j].OrgID {
			return rows[i].OrgID < rows[j].OrgID
		}
		return rows[i].KPIName < rows[j].KPIName
	})
	return rows
}

// Headers returns the export column order: identity, months 1-12 monthly
// triads, months 1-12 YTD triads, then the grade.
func Headers() []string {
	cols := []string{"단위조직명", "단위조직ID", "KPI명"}
	for m := 1; m <= 12; m++ {
		cols = append(cols,
			fmt.Sprintf("%d월목표", m),
			fmt.Sprintf("%d월실적", m),
			fmt.Sprintf("%d월달성률", m),
		)
	}
	for m := 1; m <= 12; m++ {
		cols = append(cols,
			fmt.Sprintf("%d월YTD목표", m),
			fmt.Sprintf("%d월YTD실적", m),
			fmt.Sprintf("%d월YTD달성률", m),
		)
	}
	return append(cols, "YTD평가결과")
}

// Cells flattens a WideRow in the Headers column order. Absent months yield
// empty cells.
func (r WideRow) Cells() []string {
	cells := []string{r.OrgName, fmt.Sprintf("%d", r.OrgID), r.KPIName}
	for m := 1; m <= 12; m++ {
		mc := r.Months[m]
		cells = append(cells, mc.Target, mc.Actual, mc.Rate)
	}
	for m := 1; m <= 12; m++ {
		mc := r.Months[m]
		cells = append(cells, mc.YTDTarget, mc.YTDActual, mc.YTDRate)
	}
	return append(cells, r.YTDGrade)
}
