package analyze

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/kpi-pulse/internal/model"
)

func kpiFact(name string, ytdRate string, grade string) model.MonthlyFact {
	return model.MonthlyFact{
		OrgID:    1,
		OrgName:  "전사",
		KPIID:    name,
		KPIName:  name,
		Month:    6,
		YTDRate:  ytdRate,
		YTDGrade: grade,
	}
}

func TestAnalyzeSnapshotEmpty(t *testing.T) {
	result := AnalyzeSnapshot(nil)
	assert.Equal(t, "데이터가 없습니다.", result.Summary)
	assert.Zero(t, result.AvgRate)
	assert.Zero(t, result.AchievedCount)
	assert.Zero(t, result.TotalCount)
	assert.Empty(t, result.Strong)
	assert.Empty(t, result.Risk)
	assert.Empty(t, result.Actions)
}

func TestAnalyzeSnapshotUnderperforming(t *testing.T) {
	facts := []model.MonthlyFact{
		kpiFact("고객만족도", "70%", "D"),
		kpiFact("신규수주", "85%", "C"),
		kpiFact("매출액", "95%", "B"),
		kpiFact("영업이익", "120%", "S"),
	}

	result := AnalyzeSnapshot(facts)

	assert.Equal(t, 1, result.AchievedCount)
	assert.Equal(t, 4, result.TotalCount)
	assert.InDelta(t, 92.5, result.AvgRate, 0.001)

	// 25% achieved: the underperforming tone.
	assert.Contains(t, result.Summary, "집중 관리가 필요")

	require.Len(t, result.Strong, 2)
	assert.Equal(t, "영업이익", result.Strong[0].Name)
	assert.Equal(t, "매출액", result.Strong[1].Name)

	// Bottom two in rank order: second-worst first.
	require.Len(t, result.Risk, 2)
	assert.Equal(t, "신규수주", result.Risk[0].Name)
	assert.Equal(t, "고객만족도", result.Risk[1].Name)

	// The 85 KPI gets the re-examine band, the 70 KPI the urgent band,
	// then the 120 KPI earns a benchmark suggestion.
	require.Len(t, result.Actions, 3)
	assert.Contains(t, result.Actions[0], "신규수주")
	assert.Contains(t, result.Actions[0], "실행력 강화")
	assert.Contains(t, result.Actions[1], "고객만족도")
	assert.Contains(t, result.Actions[1], "긴급 원인 분석")
	assert.Contains(t, result.Actions[2], "영업이익")
	assert.Contains(t, result.Actions[2], "벤치마킹")
}

func TestAnalyzeSnapshotTones(t *testing.T) {
	tests := []struct {
		name  string
		rates []float64
		want  string
	}{
		{"strong at 80 percent achieved", []float64{100, 100, 100, 100, 90}, "우수한 성과"},
		{"moderate at 50 percent achieved", []float64{100, 90}, "일부 개선이 필요"},
		{"underperforming below 50", []float64{100, 90, 80}, "집중 관리가 필요"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var facts []model.MonthlyFact
			for i, r := range tt.rates {
				facts = append(facts, kpiFact(fmt.Sprintf("KPI%d", i), fmt.Sprintf("%.2f%%", r), ""))
			}
			result := AnalyzeSnapshot(facts)
			assert.Contains(t, result.Summary, tt.want)
		})
	}
}

func TestAnalyzeSnapshotInvariants(t *testing.T) {
	facts := []model.MonthlyFact{
		kpiFact("A", "103.5%", ""),
		kpiFact("B", "N/A", ""), // parse failure resolves to 0.0
		kpiFact("C", "98%", ""),
	}

	result := AnalyzeSnapshot(facts)
	assert.LessOrEqual(t, result.AchievedCount, result.TotalCount)
	assert.GreaterOrEqual(t, result.AvgRate, 0.0)
	assert.LessOrEqual(t, result.AvgRate, 103.5)
	assert.Equal(t, "B", result.Risk[1].Name, "zeroed rate ranks last")
}

func TestAnalyzeSnapshotOverlapBelowFourKPIs(t *testing.T) {
	facts := []model.MonthlyFact{
		kpiFact("A", "120%", "S"),
		kpiFact("B", "95%", "B"),
	}

	result := AnalyzeSnapshot(facts)
	require.Len(t, result.Strong, 2)
	require.Len(t, result.Risk, 2)
	// Overlap between strong and risk is accepted, not deduplicated.
	assert.Equal(t, result.Strong[0].Name, result.Risk[0].Name)
}

func TestAnalyzeSnapshotFallbackAction(t *testing.T) {
	facts := []model.MonthlyFact{
		kpiFact("A", "105%", "A"),
		kpiFact("B", "102%", "A"),
	}

	result := AnalyzeSnapshot(facts)
	require.Len(t, result.Actions, 1)
	assert.True(t, strings.Contains(result.Actions[0], "지속적인 모니터링"))
}
