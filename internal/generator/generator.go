// Package generator produces deterministic synthetic weather series.
//
// Every value is a pure function of (region, weather type, data type,
// timestamp): the random stream is seeded from the region identity and
// anchored at the Unix epoch, so any two requests that overlap in time
// agree on the overlapping hours regardless of their ranges. That property
// is what makes lookback extension and cache supplementation safe.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/couchcryptid/parametric-risk-engine/internal/domain"
	"github.com/couchcryptid/parametric-risk-engine/internal/observability"
)

// Generator creates hourly weather series on demand, with a cache and
// single-flight deduplication in front of the computation.
type Generator struct {
	cache   SeriesCache
	logger  *slog.Logger
	metrics *observability.Metrics
	group   singleflight.Group
}

// New creates a Generator. The cache is required; use NewMemoryCache for a
// process-local one.
func New(cache SeriesCache, logger *slog.Logger, metrics *observability.Metrics) *Generator {
	return &Generator{
		cache:   cache,
		logger:  logger,
		metrics: metrics,
	}
}

// Generate returns the hourly series for the range, producing it on a cache
// miss. cacheContext partitions cache entries; extended ranges pass a
// product-scoped tag so they never collide with plain user requests.
//
// Concurrent misses for the same key share one computation.
func (g *Generator) Generate(ctx context.Context, region domain.Region, weatherType domain.WeatherType, dataType domain.DataType, r domain.TimeRange, cacheContext string) ([]domain.DataPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !weatherType.Valid() {
		return nil, fmt.Errorf("generate series: unknown weather type %q", weatherType)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("generate series: %w", err)
	}

	start, end := domain.SeriesBounds(r)
	if end.Before(start) {
		return nil, fmt.Errorf("generate series: empty range %s to %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	key := CacheKey(region, weatherType, dataType, r, cacheContext)
	if points, ok := g.cache.Get(key); ok {
		if len(points) == hourSpan(start, end) {
			g.metrics.SeriesCache.WithLabelValues("hit").Inc()
			return points, nil
		}
		// A stale entry from an earlier key scheme or a partial supplement;
		// regenerate rather than serve short data.
		g.metrics.SeriesCache.WithLabelValues("incomplete").Inc()
	} else {
		g.metrics.SeriesCache.WithLabelValues("miss").Inc()
	}

	v, err, _ := g.group.Do(key, func() (any, error) {
		points := generateHourly(region, weatherType, start, end, dataType)
		g.cache.Put(key, points)
		g.metrics.SeriesGenerated.Inc()
		g.metrics.SeriesPoints.Observe(float64(len(points)))
		g.logger.Debug("generated series",
			"region", region.Key(),
			"weather_type", weatherType,
			"data_type", dataType,
			"from", start.Format(time.RFC3339),
			"to", end.Format(time.RFC3339),
			"points", len(points))
		return points, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.DataPoint), nil
}

// HasComplete reports whether the cache already holds a full series for the
// request, without generating anything.
func (g *Generator) HasComplete(region domain.Region, weatherType domain.WeatherType, dataType domain.DataType, r domain.TimeRange, cacheContext string) bool {
	start, end := domain.SeriesBounds(r)
	points, ok := g.cache.Get(CacheKey(region, weatherType, dataType, r, cacheContext))
	return ok && len(points) == hourSpan(start, end)
}

// Supplement widens an existing series to cover r, generating only the
// missing leading and trailing hours. Epoch anchoring guarantees the new
// hours are identical to what a full regeneration would produce.
func (g *Generator) Supplement(ctx context.Context, region domain.Region, weatherType domain.WeatherType, dataType domain.DataType, existing []domain.DataPoint, r domain.TimeRange) ([]domain.DataPoint, error) {
	if len(existing) == 0 {
		return g.Generate(ctx, region, weatherType, dataType, r, "")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start, end := domain.SeriesBounds(r)
	first := existing[0].Timestamp
	last := existing[len(existing)-1].Timestamp

	var out []domain.DataPoint
	if start.Before(first) {
		out = append(out, generateHourly(region, weatherType, start, first.Add(-time.Hour), dataType)...)
	}
	out = append(out, existing...)
	if end.After(last) {
		out = append(out, generateHourly(region, weatherType, last.Add(time.Hour), end, dataType)...)
	}
	return out, nil
}

// ClearCache drops cached series whose key contains pattern and returns how
// many were removed.
func (g *Generator) ClearCache(pattern string) int {
	removed := g.cache.Clear(pattern)
	g.logger.Info("cleared series cache", "pattern", pattern, "removed", removed)
	return removed
}

// generateHourly computes one point per hour in [start, end], inclusive.
// start and end must be hour-aligned UTC instants.
func generateHourly(region domain.Region, weatherType domain.WeatherType, start, end time.Time, dataType domain.DataType) []domain.DataPoint {
	cfg := weatherConfigs[weatherType]
	seed := domain.RegionSeed(region, weatherType)
	base := cfg.Min + float64(seed%int64(cfg.Max-cfg.Min))

	dataTypeFactor := 1.0
	if dataType == domain.DataPredicted {
		dataTypeFactor = cfg.Predictability
	}

	rng := domain.NewSeededRandom(seed)
	rng.Skip(domain.HoursSinceEpoch(start))

	points := make([]domain.DataPoint, 0, hourSpan(start, end))
	for ts := start; !ts.After(end); ts = ts.Add(time.Hour) {
		randomFactor := rng.NextInRange(0.7, 1.3)
		seasonal := 1 + cfg.SeasonalStrength*math.Sin(2*math.Pi*float64(ts.YearDay())/365)
		value := base * cfg.timeFactorAt(ts.Hour()) * seasonal * randomFactor * dataTypeFactor

		if value < 0 {
			value = 0
		}
		if limit := cfg.Max * 1.5; value > limit {
			value = limit
		}
		value = math.Round(value*100) / 100

		points = append(points, domain.DataPoint{
			Timestamp:   ts,
			Value:       value,
			RiskTag:     riskTagFor(weatherType, value),
			WeatherType: weatherType,
		})
	}
	return points
}
