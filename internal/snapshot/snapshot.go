// Package snapshot assembles the dashboard's in-memory state from the source
// sheets and caches it behind a TTL. A snapshot is immutable once built;
// refreshes swap an atomic pointer so readers observe either the old or the
// new state, never a partial one.
package snapshot

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/kpi-pulse/internal/active"
	"github.com/sells-group/kpi-pulse/internal/model"
	"github.com/sells-group/kpi-pulse/internal/reshape"
	"github.com/sells-group/kpi-pulse/internal/sheet"
)

// Snapshot is one fully-loaded, derived view of the source data.
type Snapshot struct {
	ID          string
	LoadedAt    time.Time
	Orgs        []model.Organization // active orgs, master order
	KPIs        []model.KPIDefinition
	Facts       []model.MonthlyFact // facts of active orgs and KPIs
	Table       []reshape.WideRow
	LatestMonth int
	TypeGuide   *sheet.Frame
}

// FactsForOrg returns the org's facts, optionally restricted to one month.
// month <= 0 means all months.
func (s *Snapshot) FactsForOrg(orgID int, month int) []model.MonthlyFact {
	var out []model.MonthlyFact
	for _, fct := range s.Facts {
		if fct.OrgID == orgID && (month <= 0 || fct.Month == month) {
			out = append(out, fct)
		}
	}
	return out
}

// OrgByID looks up an active organization.
func (s *Snapshot) OrgByID(id int) (model.Organization, bool) {
	for _, org := range s.Orgs {
		if org.ID == id {
			return org, true
		}
	}
	return model.Organization{}, false
}

// Build loads all sheets and derives a snapshot as of today.
func Build(ctx context.Context, loader *sheet.Loader, today time.Time) (*Snapshot, error) {
	tables, err := loader.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	orgs := model.OrganizationsFromFrame(tables.Org)
	kpis := model.KPIsFromFrame(tables.KPI)
	facts := model.FactsFromFrame(tables.Monthly)

	orgIDs := active.OrgIDs(orgs, today)
	kpiIDs := active.KPIIDs(kpis, today)
	activeFacts := active.FilterFacts(facts, orgIDs, kpiIDs)

	snap := &Snapshot{
		ID:          uuid.NewString(),
		LoadedAt:    today,
		Orgs:        active.FilterOrgs(orgs, today),
		KPIs:        kpis,
		Facts:       activeFacts,
		Table:       reshape.Build(activeFacts),
		LatestMonth: model.LatestMonth(activeFacts),
		TypeGuide:   tables.TypeGuide,
	}

	zap.L().Info("snapshot built",
		zap.String("snapshot_id", snap.ID),
		zap.Int("orgs", len(snap.Orgs)),
		zap.Int("facts", len(snap.Facts)),
		zap.Int("wide_rows", len(snap.Table)),
		zap.Int("latest_month", snap.LatestMonth),
	)

	return snap, nil
}

// Cache refreshes snapshots on demand, at most once per TTL.
type Cache struct {
	loader *sheet.Loader
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex // serializes refreshes
	current atomic.Pointer[Snapshot]
}

// NewCache creates a snapshot cache. now is injectable for tests; nil means
// wall clock.
func NewCache(loader *sheet.Loader, ttl time.Duration, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{loader: loader, ttl: ttl, now: now}
}

// Current returns the cached snapshot, refreshing it when expired. A failed
// refresh keeps serving the previous snapshot; the error surfaces only when
// there is nothing to serve at all.
func (c *Cache) Current(ctx context.Context) (*Snapshot, error) {
	if snap := c.current.Load(); snap != nil && c.now().Sub(snap.LoadedAt) < c.ttl {
		return snap, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another caller may have refreshed while we waited on the lock.
	if snap := c.current.Load(); snap != nil && c.now().Sub(snap.LoadedAt) < c.ttl {
		return snap, nil
	}

	snap, err := Build(ctx, c.loader, c.now())
	if err != nil {
		if prev := c.current.Load(); prev != nil {
			zap.L().Warn("snapshot refresh failed, serving stale data",
				zap.String("snapshot_id", prev.ID),
				zap.Error(err),
			)
			return prev, nil
		}
		return nil, err
	}

	c.current.Store(snap)
	return snap, nil
}
