package generator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/parametric-risk-engine/internal/domain"
)

func hourlyPoints(day time.Time, weatherType domain.WeatherType, values ...float64) []domain.DataPoint {
	points := make([]domain.DataPoint, len(values))
	for i, v := range values {
		points[i] = domain.DataPoint{
			Timestamp:   day.Add(time.Duration(i) * time.Hour),
			Value:       v,
			WeatherType: weatherType,
		}
	}
	return points
}

func TestRollUpDailySums(t *testing.T) {
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	points := hourlyPoints(day, domain.WeatherRainfall, 10, 20, 30)

	daily := RollUpDaily(points, domain.WeatherRainfall, day, day)
	require.Len(t, daily, 1)
	assert.Equal(t, day, daily[0].Timestamp)
	assert.Equal(t, 60.0, daily[0].Value)
}

func TestRollUpDailyAverages(t *testing.T) {
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	points := hourlyPoints(day, domain.WeatherTemperature, 10, 20, 30)

	daily := RollUpDaily(points, domain.WeatherTemperature, day, day)
	require.Len(t, daily, 1)
	assert.Equal(t, 20.0, daily[0].Value)
}

func TestRollUpDailyFillsMissingDays(t *testing.T) {
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	// Data only on the middle day.
	points := hourlyPoints(from.AddDate(0, 0, 1), domain.WeatherRainfall, 5, 15)

	daily := RollUpDaily(points, domain.WeatherRainfall, from, to)
	require.Len(t, daily, 3)

	assert.Equal(t, 0.0, daily[0].Value)
	assert.Equal(t, domain.TagNone, daily[0].RiskTag)
	assert.Equal(t, 20.0, daily[1].Value)
	assert.Equal(t, 0.0, daily[2].Value)
}

func TestRollUpDailyKeepsWorstTag(t *testing.T) {
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	points := []domain.DataPoint{
		{Timestamp: day, Value: 10, RiskTag: domain.TagLow, WeatherType: domain.WeatherRainfall},
		{Timestamp: day.Add(time.Hour), Value: 60, RiskTag: domain.TagMedium, WeatherType: domain.WeatherRainfall},
		{Timestamp: day.Add(2 * time.Hour), Value: 5, RiskTag: domain.TagNone, WeatherType: domain.WeatherRainfall},
	}

	daily := RollUpDaily(points, domain.WeatherRainfall, day, day)
	require.Len(t, daily, 1)
	assert.Equal(t, domain.TagMedium, daily[0].RiskTag)
}

func TestRollUpDailySpansMidnight(t *testing.T) {
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	points := []domain.DataPoint{
		{Timestamp: time.Date(2024, 6, 1, 23, 0, 0, 0, time.UTC), Value: 7, WeatherType: domain.WeatherRainfall},
		{Timestamp: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), Value: 9, WeatherType: domain.WeatherRainfall},
	}

	daily := RollUpDaily(points, domain.WeatherRainfall, from, to)
	require.Len(t, daily, 2)
	assert.Equal(t, 7.0, daily[0].Value)
	assert.Equal(t, 9.0, daily[1].Value)
}
