package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/parametric-risk-engine/internal/domain"
)

func event(tier domain.Tier, dataType domain.DataType, weatherType domain.WeatherType) domain.RiskEvent {
	return domain.RiskEvent{Tier: tier, DataType: dataType, WeatherType: weatherType}
}

func TestAggregateStatistics(t *testing.T) {
	events := []domain.RiskEvent{
		event(domain.Tier1, domain.DataHistorical, domain.WeatherRainfall),
		event(domain.Tier1, domain.DataPredicted, domain.WeatherRainfall),
		event(domain.Tier2, domain.DataHistorical, domain.WeatherWind),
	}

	s := AggregateStatistics(events)

	assert.Equal(t, 3, s.Total)
	assert.Equal(t, domain.TierCounts{Tier1: 2, Tier2: 1}, s.ByTier)
	assert.Equal(t, domain.SeverityMedium, s.Severity)
	assert.Equal(t, 2, s.ByDataType[domain.DataHistorical])
	assert.Equal(t, 1, s.ByDataType[domain.DataPredicted])
	assert.Equal(t, 2, s.ByWeatherType[domain.WeatherRainfall])
	assert.Equal(t, 1, s.ByWeatherType[domain.WeatherWind])
	assert.Equal(t, 0, s.ByWeatherType[domain.WeatherSnowfall], "zero counts are present, not missing")
}

func TestAggregateStatisticsSeverityLadder(t *testing.T) {
	assert.Equal(t, domain.SeverityNone, AggregateStatistics(nil).Severity)
	assert.Equal(t, domain.SeverityLow,
		AggregateStatistics([]domain.RiskEvent{event(domain.Tier1, domain.DataHistorical, domain.WeatherRainfall)}).Severity)
	assert.Equal(t, domain.SeverityHigh,
		AggregateStatistics([]domain.RiskEvent{
			event(domain.Tier1, domain.DataHistorical, domain.WeatherRainfall),
			event(domain.Tier3, domain.DataHistorical, domain.WeatherRainfall),
		}).Severity)
}

func TestAggregateStatisticsPartition(t *testing.T) {
	// Every complete partition must sum back to the total.
	events := []domain.RiskEvent{
		event(domain.Tier1, domain.DataHistorical, domain.WeatherRainfall),
		event(domain.Tier2, domain.DataPredicted, domain.WeatherWind),
		event(domain.Tier3, domain.DataPredicted, domain.WeatherSnowfall),
		event(domain.Tier3, domain.DataHistorical, domain.WeatherPressure),
	}

	s := AggregateStatistics(events)

	assert.Equal(t, s.Total, s.ByTier.Tier1+s.ByTier.Tier2+s.ByTier.Tier3)

	dataTypeSum := 0
	for _, n := range s.ByDataType {
		dataTypeSum += n
	}
	assert.Equal(t, s.Total, dataTypeSum)

	weatherSum := 0
	for _, n := range s.ByWeatherType {
		weatherSum += n
	}
	assert.Equal(t, s.Total, weatherSum)
}

func TestFilterEventsByRange(t *testing.T) {
	r := domain.TimeRange{
		From:      time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC),
		To:        time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC),
		StartHour: 0,
		EndHour:   23,
	}

	inExact := domain.RiskEvent{Timestamp: time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC)}
	beforeExact := domain.RiskEvent{Timestamp: time.Date(2024, 6, 5, 8, 0, 0, 0, time.UTC)}

	t.Run("hourly compares instants", func(t *testing.T) {
		got := FilterEventsByRange([]domain.RiskEvent{inExact, beforeExact}, domain.WindowHourly, r)
		require.Len(t, got, 1)
		assert.Equal(t, inExact, got[0])
	})

	t.Run("daily compares calendar dates", func(t *testing.T) {
		// beforeExact is earlier than From but on From's date, so it stays.
		got := FilterEventsByRange([]domain.RiskEvent{inExact, beforeExact}, domain.WindowDaily, r)
		assert.Len(t, got, 2)
	})

	t.Run("outside the range", func(t *testing.T) {
		out := domain.RiskEvent{Timestamp: time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)}
		got := FilterEventsByRange([]domain.RiskEvent{out}, domain.WindowDaily, r)
		assert.Empty(t, got)
	})
}
