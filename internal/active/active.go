// Package active decides which organizations and KPIs are currently in
// effect, based on each entity's optional retirement date.
package active

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/kpi-pulse/internal/model"
)

// Date layouts accepted for retirement dates.
var dateLayouts = []string{"2006-01-02", "2006/01/02", "2006.01.02"}

// isActive applies the retirement policy: an empty date means active, a date
// strictly before today means retired, and anything unparseable is treated
// as active so a typo in a retirement cell cannot silently drop an org from
// the dashboard.
func isActive(retiredAt string, today time.Time) bool {
	trimmed := strings.TrimSpace(retiredAt)
	if trimmed == "" {
		return true
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return !parsed.Before(truncateToDay(today))
		}
	}
	zap.L().Warn("unparseable retirement date, treating as active",
		zap.String("value", trimmed),
	)
	return true
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// OrgIDs returns the set of organization IDs active as of today.
func OrgIDs(orgs []model.Organization, today time.Time) map[int]bool {
	ids := make(map[int]bool, len(orgs))
	for _, org := range orgs {
		if isActive(org.RetiredAt, today) {
			ids[org.ID] = true
		}
	}
	return ids
}

// KPIIDs returns the set of KPI IDs active as of today.
func KPIIDs(kpis []model.KPIDefinition, today time.Time) map[string]bool {
	ids := make(map[string]bool, len(kpis))
	for _, kpi := range kpis {
		if isActive(kpi.RetiredAt, today) {
			ids[kpi.ID] = true
		}
	}
	return ids
}

// FilterOrgs returns only the active organizations, preserving order.
func FilterOrgs(orgs []model.Organization, today time.Time) []model.Organization {
	ids := OrgIDs(orgs, today)
	out := make([]model.Organization, 0, len(orgs))
	for _, org := range orgs {
		if ids[org.ID] {
			out = append(out, org)
		}
	}
	return out
}

// FilterFacts returns only the facts belonging to an active org and an
// active KPI, preserving order.
func FilterFacts(facts []model.MonthlyFact, orgIDs map[int]bool, kpiIDs map[string]bool) []model.MonthlyFact {
	out := make([]model.MonthlyFact, 0, len(facts))
	for _, fct := range facts {
		if orgIDs[fct.OrgID] && kpiIDs[fct.KPIID] {
			out = append(out, fct)
		}
	}
	return out
}
