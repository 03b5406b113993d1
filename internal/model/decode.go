package model

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/kpi-pulse/internal/sheet"
)

// OrganizationsFromFrame decodes the org master frame. Rows without a
// parseable org ID or level are skipped with a warning.
func OrganizationsFromFrame(f *sheet.Frame) []Organization {
	orgs := make([]Organization, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		id, err := strconv.Atoi(strings.TrimSpace(f.Get(i, ColOrgID)))
		if err != nil {
			zap.L().Warn("org row skipped: bad id",
				zap.Int("row", i),
				zap.String("value", f.Get(i, ColOrgID)),
			)
			continue
		}
		level, err := strconv.Atoi(strings.TrimSpace(f.Get(i, ColLevel)))
		if err != nil {
			zap.L().Warn("org row skipped: bad level",
				zap.Int("row", i),
				zap.String("value", f.Get(i, ColLevel)),
			)
			continue
		}

		org := Organization{
			ID:        id,
			Name:      f.Get(i, ColOrgName),
			Level:     level,
			RetiredAt: f.Get(i, ColRetiredAt),
		}
		if parent, err := strconv.Atoi(strings.TrimSpace(f.Get(i, ColParentID))); err == nil {
			org.ParentID = parent
		}
		if level == 2 {
			org.Class = ClassifyName(org.Name)
			if org.Class == ClassUnknown {
				zap.L().Warn("level-2 org has ambiguous class",
					zap.Int("org_id", org.ID),
					zap.String("name", org.Name),
				)
			}
		}
		orgs = append(orgs, org)
	}
	return orgs
}

// KPIsFromFrame decodes the KPI master frame.
func KPIsFromFrame(f *sheet.Frame) []KPIDefinition {
	kpis := make([]KPIDefinition, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		id := strings.TrimSpace(f.Get(i, ColKPIID))
		if id == "" {
			zap.L().Warn("kpi row skipped: empty id", zap.Int("row", i))
			continue
		}
		kpis = append(kpis, KPIDefinition{
			ID:        id,
			Name:      f.Get(i, ColKPIName),
			Type:      f.Get(i, ColKPIType),
			RetiredAt: f.Get(i, ColRetiredAt),
		})
	}
	return kpis
}

// FactsFromFrame decodes the monthly data frame. Rows without a parseable
// org ID or month are skipped with a warning.
func FactsFromFrame(f *sheet.Frame) []MonthlyFact {
	facts := make([]MonthlyFact, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		orgID, err := strconv.Atoi(strings.TrimSpace(f.Get(i, ColOrgID)))
		if err != nil {
			zap.L().Warn("fact row skipped: bad org id",
				zap.Int("row", i),
				zap.String("value", f.Get(i, ColOrgID)),
			)
			continue
		}
		month, err := strconv.Atoi(strings.TrimSpace(f.Get(i, ColMonth)))
		if err != nil || month < 1 || month > 12 {
			zap.L().Warn("fact row skipped: bad month",
				zap.Int("row", i),
				zap.String("value", f.Get(i, ColMonth)),
			)
			continue
		}
		facts = append(facts, MonthlyFact{
			OrgID:     orgID,
			OrgName:   f.Get(i, ColOrgName),
			KPIID:     f.Get(i, ColKPIID),
			KPIName:   f.Get(i, ColKPIName),
			KPIType:   f.Get(i, ColKPIType),
			Month:     month,
			Target:    f.Get(i, ColTarget),
			Actual:    f.Get(i, ColActual),
			MonthRate: f.Get(i, ColMonthRate),
			YTDTarget: f.Get(i, ColYTDTarget),
			YTDActual: f.Get(i, ColYTDActual),
			YTDRate:   f.Get(i, ColYTDRate),
			YTDGrade:  f.Get(i, ColYTDGrade),
		})
	}
	return facts
}

// LatestMonth returns the maximum month present anywhere in the fact table.
// This is a global maximum, not per-organization: an org that has not yet
// reported for the newest month simply shows no grade for it.
func LatestMonth(facts []MonthlyFact) int {
	latest := 0
	for _, fct := range facts {
		if fct.Month > latest {
			latest = fct.Month
		}
	}
	return latest
}
