package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/kpi-pulse/internal/config"
	"github.com/sells-group/kpi-pulse/internal/sheet"
	"github.com/sells-group/kpi-pulse/internal/snapshot"
)

var testSource = config.SourceConfig{
	SheetID:      "test-sheet-id",
	MonthlySheet: "KPI_Monthly_Data",
	OrgSheet:     "Org_Master",
	KPISheet:     "KPI_Master",
	TypeSheet:    "KPI_Type_Guide",
}

const (
	orgCSV = "조직ID,조직명,Level,ParentID,해지일\n" +
		"1001,전사,1,,\n" +
		"2002,영업본부,2,1001,\n" +
		"3101,영업1팀,3,2002,\n" +
		"2005,전략기획팀,2,1001,\n"

	kpiCSV = "KPI_ID,KPI명,KPI유형,해지일\n" +
		"K01,매출액,정량,\n" +
		"K02,고객만족도,정성,\n"

	monthlyCSV = "조직ID,조직명,KPI_ID,KPI명,KPI유형,월,월목표,월실적,월 달성률,YTD목표,YTD실적,YTD달성률,YTD평가결과\n" +
		"1001,전사,K01,매출액,정량,1,100,95,95.00%,100,95,95.00%,B\n" +
		"1001,전사,K01,매출액,정량,2,100,110,110.00%,200,205,102.50%,A\n" +
		"1001,전사,K02,고객만족도,정성,1,100,90,90.00%,100,90,90.00%,C\n" +
		"1001,전사,K02,고객만족도,정성,2,100,85,85.00%,200,175,87.50%,D\n"

	typeCSV = "KPI유형,설명\n정량,숫자 기반\n"
)

type stubFetcher struct {
	down bool
}

func (s *stubFetcher) Download(_ context.Context, url string) (io.ReadCloser, error) {
	if s.down {
		return nil, eris.New("boom")
	}
	bodies := map[string]string{
		"KPI_Monthly_Data": monthlyCSV,
		"Org_Master":       orgCSV,
		"KPI_Master":       kpiCSV,
		"KPI_Type_Guide":   typeCSV,
	}
	for name, body := range bodies {
		if strings.Contains(url, "sheet="+name) {
			return io.NopCloser(strings.NewReader(body)), nil
		}
	}
	return nil, eris.Errorf("no stub for %s", url)
}

func testRouter(t *testing.T, stub *stubFetcher) http.Handler {
	t.Helper()
	loader := sheet.NewLoader(testSource, stub)
	cache := snapshot.NewCache(loader, 300*time.Second, nil)
	return New(cache).Router()
}

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Body.String(), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHealth(t *testing.T) {
	h := testRouter(t, &stubFetcher{})

	rec, body := get(t, h, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["snapshot_id"])
	assert.EqualValues(t, 2, body["latest_month"])
}

func TestTable(t *testing.T) {
	h := testRouter(t, &stubFetcher{})

	rec, body := get(t, h, "/api/table")
	assert.Equal(t, http.StatusOK, rec.Code)
	rows, ok := body["rows"].([]any)
	require.True(t, ok)
	assert.Len(t, rows, 2, "one wide row per (org, KPI) pair")
}

func TestOrgsOrdering(t *testing.T) {
	h := testRouter(t, &stubFetcher{})

	req := httptest.NewRequest(http.MethodGet, "/api/orgs", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []struct {
		Name  string `json:"name"`
		ID    int    `json:"id"`
		Level int    `json:"level"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 4)

	ids := []int{entries[0].ID, entries[1].ID, entries[2].ID, entries[3].ID}
	// Root, division, division's team, then direct-report team.
	assert.Equal(t, []int{1001, 2002, 3101, 2005}, ids)
}

func TestAnalysisEndpoint(t *testing.T) {
	h := testRouter(t, &stubFetcher{})

	rec, body := get(t, h, "/api/orgs/1001/analysis")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1001, body["org_id"])

	analysis, ok := body["analysis"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 2, analysis["total_count"])
	assert.EqualValues(t, 1, analysis["achieved_count"])
	assert.NotEmpty(t, analysis["summary"])
}

func TestTrendEndpoint(t *testing.T) {
	h := testRouter(t, &stubFetcher{})

	rec, body := get(t, h, "/api/orgs/1001/trend")
	assert.Equal(t, http.StatusOK, rec.Code)

	trend, ok := body["trend"].(map[string]any)
	require.True(t, ok)
	// 매출액 rose 95 -> 102.5, 고객만족도 fell 90 -> 87.5 (and is below 90).
	assert.Len(t, trend["improving"], 1)
	assert.Len(t, trend["worsening"], 1)
	assert.Len(t, trend["alerts"], 1)
}

func TestUnknownOrg(t *testing.T) {
	h := testRouter(t, &stubFetcher{})

	rec, _ := get(t, h, "/api/orgs/9999/analysis")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = get(t, h, "/api/orgs/abc/trend")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTree(t *testing.T) {
	h := testRouter(t, &stubFetcher{})

	req := httptest.NewRequest(http.MethodGet, "/api/tree", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var tree struct {
		Name     string `json:"name"`
		Children []struct {
			ID       int `json:"id"`
			Children []struct {
				ID int `json:"id"`
			} `json:"children"`
		} `json:"children"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tree))
	assert.Equal(t, "전사", tree.Name)
	require.Len(t, tree.Children, 2)
	assert.Equal(t, 2002, tree.Children[0].ID)
	require.Len(t, tree.Children[0].Children, 1)
	assert.Equal(t, 3101, tree.Children[0].Children[0].ID)
}

func TestSourceDownReturns503(t *testing.T) {
	h := testRouter(t, &stubFetcher{down: true})

	rec, body := get(t, h, "/api/table")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "source data unavailable", body["error"])
}
