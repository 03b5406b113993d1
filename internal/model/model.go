// Package model defines the dashboard's entities and their decoding from
// raw sheet frames.
package model

import (
	"strconv"
	"strings"
)

// Source column names. The sheets are maintained in Korean; these constants
// are the single place the raw headers appear.
const (
	ColOrgID     = "조직ID"
	ColOrgName   = "조직명"
	ColLevel     = "Level"
	ColParentID  = "ParentID"
	ColRetiredAt = "해지일"

	ColKPIID   = "KPI_ID"
	ColKPIName = "KPI명"
	ColKPIType = "KPI유형"

	ColMonth     = "월"
	ColTarget    = "월목표"
	ColActual    = "월실적"
	ColMonthRate = "월 달성률"
	ColYTDTarget = "YTD목표"
	ColYTDActual = "YTD실적"
	ColYTDRate   = "YTD달성률"
	ColYTDGrade  = "YTD평가결과"
)

// OrgClass is the structural role of a level-2 organization.
type OrgClass string

const (
	ClassNone         OrgClass = ""              // levels 1 and 3
	ClassDivision     OrgClass = "division"      // owns level-3 teams
	ClassDirectReport OrgClass = "direct_report" // reports straight to level 1
	ClassUnknown      OrgClass = "unknown"       // matched both markers or neither
)

// Name markers used to classify level-2 organizations at import time. A
// future source column can replace this rule via Organization.Class without
// touching the renderers.
const (
	markerDivision     = "본부"
	markerDirectReport = "팀"
)

// ClassifyName derives the default OrgClass for a level-2 display name.
func ClassifyName(name string) OrgClass {
	div := strings.Contains(name, markerDivision)
	dir := strings.Contains(name, markerDirectReport)
	switch {
	case div && !dir:
		return ClassDivision
	case dir && !div:
		return ClassDirectReport
	default:
		return ClassUnknown
	}
}

// Organization is one row of the org master sheet.
type Organization struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Level     int      `json:"level"`
	ParentID  int      `json:"parent_id,omitempty"` // 0 for the level-1 root
	RetiredAt string   `json:"retired_at,omitempty"`
	Class     OrgClass `json:"class,omitempty"` // level 2 only
}

// KPIDefinition is one row of the KPI master sheet.
type KPIDefinition struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	RetiredAt string `json:"retired_at,omitempty"`
}

// MonthlyFact is one row of the monthly data sheet: one (org, KPI, month)
// observation. Values stay as source-formatted strings; rates carry a
// percent suffix (e.g. "110.72%").
type MonthlyFact struct {
	OrgID     int    `json:"org_id"`
	OrgName   string `json:"org_name"`
	KPIID     string `json:"kpi_id"`
	KPIName   string `json:"kpi_name"`
	KPIType   string `json:"kpi_type,omitempty"`
	Month     int    `json:"month"`
	Target    string `json:"target"`
	Actual    string `json:"actual"`
	MonthRate string `json:"month_rate"`
	YTDTarget string `json:"ytd_target"`
	YTDActual string `json:"ytd_actual"`
	YTDRate   string `json:"ytd_rate"`
	YTDGrade  string `json:"ytd_grade,omitempty"` // S/A/B/C/D or empty
}

// ParseRate converts a rate string like "110.72%" to its numeric value.
// Anything unparseable resolves to 0.0; this can skew averages downward and
// is an accepted tradeoff.
func ParseRate(s string) float64 {
	v, ok := ParseRateOK(s)
	if !ok {
		return 0.0
	}
	return v
}

// ParseRateOK is ParseRate with an explicit ok flag, for callers that drop
// unparseable observations instead of zeroing them.
func ParseRateOK(s string) (float64, bool) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(s, "%", ""))
	if trimmed == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
