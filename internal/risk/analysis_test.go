package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/parametric-risk-engine/internal/domain"
)

func TestComputeAnalysisRollingWindow(t *testing.T) {
	e := testEvaluator()

	// Ten days valued 1..10mm; a 7-day rolling sum product.
	seriesStart := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	series := dailySeries(seriesStart, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	p := rainProduct(domain.WindowDaily, 7, domain.OpGreater, domain.Threshold{Value: 1000, Tier: domain.Tier1})

	a, err := e.ComputeAnalysis(p, rangeJune(1, 10), series)
	require.NoError(t, err)
	require.Len(t, a.Rolling, 10)
	assert.Empty(t, a.Cumulative)
	assert.Equal(t, domain.WindowDaily, a.WindowType)

	// Full lookback from day 7 on: window sum equals the trailing 7 days.
	assert.Equal(t, 28.0, a.Rolling[6].RollingValue) // 1+..+7
	assert.Equal(t, 35.0, a.Rolling[7].RollingValue) // 2+..+8
	assert.Equal(t, 49.0, a.Rolling[9].RollingValue) // 4+..+10

	// Earlier days degrade to the available prefix.
	assert.Equal(t, 1.0, a.Rolling[0].RollingValue)
	assert.Equal(t, 6.0, a.Rolling[2].RollingValue) // 1+2+3
	assert.Equal(t, 7, a.Rolling[0].WindowDays)
}

func TestComputeAnalysisTriggerFlags(t *testing.T) {
	e := testEvaluator()

	seriesStart := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	series := dailySeries(seriesStart, 10, 10, 200)
	p := rainProduct(domain.WindowDaily, 1, domain.OpGreater, domain.Threshold{Value: 100, Tier: domain.Tier2})

	a, err := e.ComputeAnalysis(p, rangeJune(1, 3), series)
	require.NoError(t, err)
	require.Len(t, a.Rolling, 3)
	assert.False(t, a.Rolling[0].Triggered)
	assert.True(t, a.Rolling[2].Triggered)
	assert.Equal(t, domain.Tier2, a.Rolling[2].Tier)
}

func TestComputeAnalysisMonthlyReset(t *testing.T) {
	e := testEvaluator()

	// 10mm per day from May 25 through June 5.
	seriesStart := time.Date(2024, 5, 25, 0, 0, 0, 0, time.UTC)
	values := make([]float64, 12)
	for i := range values {
		values[i] = 10
	}
	series := dailySeries(seriesStart, values...)
	userRange := domain.TimeRange{
		From:      seriesStart,
		To:        time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
		StartHour: 0,
		EndHour:   23,
	}
	p := rainProduct(domain.WindowMonthly, 1, domain.OpLess, domain.Threshold{Value: 5, Tier: domain.Tier1})

	a, err := e.ComputeAnalysis(p, userRange, series)
	require.NoError(t, err)
	require.Len(t, a.Cumulative, 12)
	assert.Empty(t, a.Rolling)

	// May accumulates day by day.
	assert.Equal(t, 10.0, a.Cumulative[0].Cumulative)
	assert.Equal(t, 70.0, a.Cumulative[6].Cumulative) // May 31

	// June 1 resets: cumulative equals that day's value alone.
	june1 := a.Cumulative[7]
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), june1.Date)
	assert.Equal(t, 10.0, june1.Cumulative)
	assert.Equal(t, 50.0, a.Cumulative[11].Cumulative) // June 5
}

func TestComputeAnalysisEmptySeries(t *testing.T) {
	e := testEvaluator()
	p := rainProduct(domain.WindowDaily, 7, domain.OpGreater, domain.Threshold{Value: 1, Tier: domain.Tier1})

	a, err := e.ComputeAnalysis(p, rangeJune(1, 7), nil)
	require.NoError(t, err)
	assert.Empty(t, a.Rolling)
	assert.Empty(t, a.Cumulative)
}
