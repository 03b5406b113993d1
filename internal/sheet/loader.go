// Package sheet loads the dashboard's four source tables from a published
// Google Sheets document via its CSV export endpoint (no auth; the sheet must
// be shared with "anyone with the link").
package sheet

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/kpi-pulse/internal/config"
	"github.com/sells-group/kpi-pulse/internal/fetcher"
)

// ErrSourceUnavailable marks a failed remote fetch. The whole load is
// all-or-nothing: callers abort on any sheet failing.
var ErrSourceUnavailable = eris.New("sheet: source unavailable")

// Tables holds the four loaded source tables.
type Tables struct {
	Monthly   *Frame
	Org       *Frame
	KPI       *Frame
	TypeGuide *Frame
}

// Loader fetches sheets as Frames.
type Loader struct {
	cfg     config.SourceConfig
	fetcher fetcher.Fetcher
}

// NewLoader creates a Loader. If f is nil a default HTTPFetcher is used.
func NewLoader(cfg config.SourceConfig, f fetcher.Fetcher) *Loader {
	if f == nil {
		f = fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			RateLimiters: fetcher.DefaultRateLimiters(),
		})
	}
	return &Loader{cfg: cfg, fetcher: f}
}

// csvURL builds the gviz CSV export URL for a sheet. The gviz endpoint
// auto-detects headers and folds data into them for the master sheets, so
// those two need headers=1 to pin the header row.
func (l *Loader) csvURL(sheetName string) string {
	u := fmt.Sprintf(
		"https://docs.google.com/spreadsheets/d/%s/gviz/tq?tqx=out:csv&sheet=%s",
		l.cfg.SheetID, url.QueryEscape(sheetName),
	)
	if sheetName == l.cfg.OrgSheet || sheetName == l.cfg.KPISheet {
		u += "&headers=1"
	}
	return u
}

// Load fetches a single sheet and parses it into a Frame.
func (l *Loader) Load(ctx context.Context, sheetName string) (*Frame, error) {
	body, err := l.fetcher.Download(ctx, l.csvURL(sheetName))
	if err != nil {
		return nil, eris.Wrapf(ErrSourceUnavailable, "sheet %q: %v", sheetName, err)
	}
	defer body.Close() //nolint:errcheck

	headers, rows, err := fetcher.ReadCSV(body, fetcher.CSVOptions{TrimSpace: true})
	if err != nil {
		return nil, eris.Wrapf(ErrSourceUnavailable, "sheet %q: %v", sheetName, err)
	}

	zap.L().Info("sheet loaded",
		zap.String("sheet", sheetName),
		zap.Int("rows", len(rows)),
		zap.Int("cols", len(headers)),
	)

	return NewFrame(sheetName, headers, rows), nil
}

// LoadAll fetches all four sheets. If any sheet fails the whole load fails;
// there is no partial dashboard state.
func (l *Loader) LoadAll(ctx context.Context) (*Tables, error) {
	var t Tables

	g, gctx := errgroup.WithContext(ctx)
	for _, target := range []struct {
		name string
		dst  **Frame
	}{
		{l.cfg.MonthlySheet, &t.Monthly},
		{l.cfg.OrgSheet, &t.Org},
		{l.cfg.KPISheet, &t.KPI},
		{l.cfg.TypeSheet, &t.TypeGuide},
	} {
		target := target
		g.Go(func() error {
			f, err := l.Load(gctx, target.name)
			if err != nil {
				return err
			}
			*target.dst = f
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &t, nil
}
