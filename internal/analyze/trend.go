package analyze

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/sells-group/kpi-pulse/internal/model"
)

// TrendPoint is one KPI's movement between consecutive months.
type TrendPoint struct {
	Name   string  `json:"name"`
	Latest float64 `json:"latest"`
	Diff   float64 `json:"diff,omitempty"` // latest minus previous month
}

// Trend summarizes one organization's KPI movement across all reported months.
type Trend struct {
	Summary   string       `json:"summary"`
	AvgRate   float64      `json:"avg_rate"` // latest-month average
	Improving []TrendPoint `json:"improving"`
	Worsening []TrendPoint `json:"worsening"`
	Alerts    []TrendPoint `json:"alerts"`
	Actions   []string     `json:"actions"`
}

const (
	alertThreshold = 90.0

	trendUpFormat       = "전월 대비 평균 +%.1f%%p 개선 추세입니다."
	trendDownFormat     = "전월 대비 평균 %.1f%%p 하락 추세입니다."
	trendInsufficient   = "추이 비교를 위한 데이터가 부족합니다."
	worseningFormat     = "'%s' 연속 하락 중 (%+.1f%%p) — 원인 분석 필요"
	alertFormat         = "'%s' %.1f%% — 목표 대비 크게 미달"
	improvingFallback   = "전반적으로 개선 추세이나 지속 모니터링 필요"
	stableFallback      = "안정적 추세 유지 중 — 현행 유지 권장"
	trendDisplayLimit   = 3
	trendActionPerGroup = 2
)

// AnalyzeTrend analyzes one organization's facts across all months present.
// A KPI needs at least two parseable monthly observations to be classified;
// unparseable rates are dropped rather than zeroed so they cannot fake a
// decline. An empty slice yields a well-formed zero result.
func AnalyzeTrend(facts []model.MonthlyFact) Trend {
	byKPI := make(map[string][]model.MonthlyFact)
	kpiNames := []string{}
	monthRates := make(map[int][]float64)
	for _, fct := range facts {
		rate, ok := model.ParseRateOK(fct.YTDRate)
		if !ok {
			continue
		}
		if _, seen := byKPI[fct.KPIName]; !seen {
			kpiNames = append(kpiNames, fct.KPIName)
		}
		byKPI[fct.KPIName] = append(byKPI[fct.KPIName], fct)
		monthRates[fct.Month] = append(monthRates[fct.Month], rate)
	}

	improving := []TrendPoint{}
	worsening := []TrendPoint{}
	alerts := []TrendPoint{}
	for _, name := range kpiNames {
		obs := byKPI[name]
		sort.SliceStable(obs, func(i, j int) bool { return obs[i].Month < obs[j].Month })
		rates := lo.Map(obs, func(f model.MonthlyFact, _ int) float64 {
			return model.ParseRate(f.YTDRate)
		})
		if len(rates) < 2 {
			continue
		}

		latest := rates[len(rates)-1]
		diff := latest - rates[len(rates)-2]
		overallDiff := latest - rates[0]

		// Classified only when the last step and the whole span agree;
		// mixed signs are neither.
		if diff > 0 && overallDiff > 0 {
			improving = append(improving, TrendPoint{Name: name, Latest: latest, Diff: diff})
		} else if diff < 0 && overallDiff < 0 {
			worsening = append(worsening, TrendPoint{Name: name, Latest: latest, Diff: diff})
		}

		if latest < alertThreshold {
			alerts = append(alerts, TrendPoint{Name: name, Latest: latest})
		}
	}

	sort.SliceStable(improving, func(i, j int) bool { return improving[i].Diff > improving[j].Diff })
	sort.SliceStable(worsening, func(i, j int) bool { return worsening[i].Diff < worsening[j].Diff })

	summary, avgLatest := summarizeMonths(monthRates)

	actions := []string{}
	for _, w := range worsening[:min(trendActionPerGroup, len(worsening))] {
		actions = append(actions, fmt.Sprintf(worseningFormat, w.Name, w.Diff))
	}
	for _, a := range alerts[:min(trendActionPerGroup, len(alerts))] {
		named := lo.SomeBy(actions, func(act string) bool {
			return strings.Contains(act, a.Name)
		})
		if !named {
			actions = append(actions, fmt.Sprintf(alertFormat, a.Name, a.Latest))
		}
	}
	if len(improving) > 0 && len(actions) == 0 {
		actions = append(actions, improvingFallback)
	}
	if len(actions) == 0 {
		actions = append(actions, stableFallback)
	}

	return Trend{
		Summary:   summary,
		AvgRate:   round1(avgLatest),
		Improving: improving[:min(trendDisplayLimit, len(improving))],
		Worsening: worsening[:min(trendDisplayLimit, len(worsening))],
		Alerts:    alerts[:min(trendDisplayLimit, len(alerts))],
		Actions:   actions,
	}
}

// summarizeMonths compares the latest month's average rate against the
// immediately preceding distinct month. One month of data (or none) is not
// enough for a comparison.
func summarizeMonths(monthRates map[int][]float64) (string, float64) {
	months := lo.Keys(monthRates)
	sort.Ints(months)
	if len(months) == 0 {
		return trendInsufficient, 0
	}

	avgLatest := mean(monthRates[months[len(months)-1]])
	if len(months) < 2 {
		return trendInsufficient, avgLatest
	}

	avgPrev := mean(monthRates[months[len(months)-2]])
	avgDiff := avgLatest - avgPrev
	if avgDiff > 0 {
		return fmt.Sprintf(trendUpFormat, avgDiff), avgLatest
	}
	return fmt.Sprintf(trendDownFormat, avgDiff), avgLatest
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
