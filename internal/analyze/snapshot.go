// Package analyze generates rule-based narrative summaries from KPI data.
// Everything here is a fixed threshold rule; the rule tables are explicit so
// they can be tuned (or swapped for a model) without touching rendering.
package analyze

import (
	"fmt"
	"math"
	"sort"

	"github.com/sells-group/kpi-pulse/internal/model"
)

// KPIRate is one KPI's parsed YTD rate at the latest month.
type KPIRate struct {
	Name  string  `json:"name"`
	Rate  float64 `json:"rate"`
	Grade string  `json:"grade,omitempty"`
}

// Snapshot summarizes one organization's KPIs at the latest month.
type Snapshot struct {
	Summary       string    `json:"summary"`
	AvgRate       float64   `json:"avg_rate"`
	AchievedCount int       `json:"achieved_count"`
	TotalCount    int       `json:"total_count"`
	Strong        []KPIRate `json:"strong"` // top 2 by rate
	Risk          []KPIRate `json:"risk"`   // bottom 2 by rate
	Actions       []string  `json:"actions"`
}

// toneRule maps a minimum achieved fraction (percent) to a closing sentence.
type toneRule struct {
	minPct float64
	text   string
}

var toneRules = []toneRule{
	{80, "우수한 성과를 보이고 있습니다."},
	{50, "보통 수준이며 일부 개선이 필요합니다."},
	{0, "목표 달성이 부진하여 집중 관리가 필요합니다."},
}

// riskActionRule emits a graded urgency message for a below-target KPI.
// Rules are ordered; the first matching band wins. A KPI at or above 100
// matches no band and gets no message.
type riskActionRule struct {
	below  float64
	format string // args: name, rate
}

var riskActionRules = []riskActionRule{
	{80, "'%s' (%.1f%%) 긴급 원인 분석 및 대응 필요"},
	{90, "'%s' (%.1f%%) 목표 재점검 및 실행력 강화 필요"},
	{100, "'%s' (%.1f%%) 목표 달성까지 집중 관리 필요"},
}

const (
	benchmarkThreshold = 110.0
	benchmarkFormat    = "'%s' 우수 사례를 타 KPI에 벤치마킹 권장"
	snapshotFallback   = "전반적으로 양호하나 지속적인 모니터링 필요"
	emptySummary       = "데이터가 없습니다."
)

// AnalyzeSnapshot analyzes one organization's latest-month KPI facts.
// An empty slice yields a well-formed zero result.
func AnalyzeSnapshot(facts []model.MonthlyFact) Snapshot {
	if len(facts) == 0 {
		return Snapshot{Summary: emptySummary, Strong: []KPIRate{}, Risk: []KPIRate{}, Actions: []string{}}
	}

	rates := make([]KPIRate, 0, len(facts))
	sum := 0.0
	achieved := 0
	for _, fct := range facts {
		rate := model.ParseRate(fct.YTDRate)
		rates = append(rates, KPIRate{Name: fct.KPIName, Rate: rate, Grade: fct.YTDGrade})
		sum += rate
		if rate >= 100.0 {
			achieved++
		}
	}
	total := len(rates)

	sort.SliceStable(rates, func(i, j int) bool { return rates[i].Rate > rates[j].Rate })

	strong := rates[:min(2, total)]
	// Bottom two, kept in descending rank order (second-worst first). With
	// fewer than four KPIs strong and risk may overlap; that is accepted.
	risk := rates[max(0, total-2):]

	pct := float64(achieved) / float64(total) * 100
	tone := toneRules[len(toneRules)-1].text
	for _, rule := range toneRules {
		if pct >= rule.minPct {
			tone = rule.text
			break
		}
	}
	summary := fmt.Sprintf("%d개 KPI 중 %d개 목표 달성 (%.0f%%). %s", total, achieved, pct, tone)

	actions := []string{}
	for _, r := range risk {
		for _, rule := range riskActionRules {
			if r.Rate < rule.below {
				actions = append(actions, fmt.Sprintf(rule.format, r.Name, r.Rate))
				break
			}
		}
	}
	if strong[0].Rate >= benchmarkThreshold {
		actions = append(actions, fmt.Sprintf(benchmarkFormat, strong[0].Name))
	}
	if len(actions) == 0 {
		actions = append(actions, snapshotFallback)
	}

	return Snapshot{
		Summary:       summary,
		AvgRate:       round1(sum / float64(total)),
		AchievedCount: achieved,
		TotalCount:    total,
		Strong:        strong,
		Risk:          risk,
		Actions:       actions,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
