package rediscache

import (
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/parametric-risk-engine/internal/domain"
)

func TestRedisKeyPrefix(t *testing.T) {
	assert.Equal(t, "series:abc", redisKey("abc"))
}

func TestSeriesCodecRoundTrip(t *testing.T) {
	points := []domain.DataPoint{
		{
			Timestamp:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			Value:       42.5,
			RiskTag:     domain.TagMedium,
			WeatherType: domain.WeatherRainfall,
		},
		{
			Timestamp:   time.Date(2024, 6, 1, 1, 0, 0, 0, time.UTC),
			Value:       0,
			WeatherType: domain.WeatherRainfall,
		},
	}

	data, err := sonic.Marshal(points)
	require.NoError(t, err)

	var decoded []domain.DataPoint
	require.NoError(t, sonic.Unmarshal(data, &decoded))
	assert.Equal(t, points, decoded)
}
