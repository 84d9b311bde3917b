package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/parametric-risk-engine/internal/domain"
	"github.com/couchcryptid/parametric-risk-engine/internal/generator"
	"github.com/couchcryptid/parametric-risk-engine/internal/observability"
	"github.com/couchcryptid/parametric-risk-engine/internal/product"
	"github.com/couchcryptid/parametric-risk-engine/internal/risk"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRegion() domain.Region {
	return domain.Region{Country: "Vietnam", Province: "Lam Dong", District: "Da Lat"}
}

func juneRange() domain.TimeRange {
	return domain.TimeRange{
		From:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		To:        time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		StartHour: 0,
		EndHour:   23,
	}
}

// failingGenerator fails extended-range generation but serves plain ranges.
type failingGenerator struct {
	inner *generator.Generator
}

func (f *failingGenerator) Generate(ctx context.Context, region domain.Region, weatherType domain.WeatherType, dataType domain.DataType, r domain.TimeRange, cacheContext string) ([]domain.DataPoint, error) {
	if cacheContext != "" {
		return nil, errors.New("synthetic extended failure")
	}
	return f.inner.Generate(ctx, region, weatherType, dataType, r, cacheContext)
}

func (f *failingGenerator) HasComplete(region domain.Region, weatherType domain.WeatherType, dataType domain.DataType, r domain.TimeRange, cacheContext string) bool {
	return f.inner.HasComplete(region, weatherType, dataType, r, cacheContext)
}

func (f *failingGenerator) ClearCache(pattern string) int { return f.inner.ClearCache(pattern) }

// recordingPublisher captures published events.
type recordingPublisher struct {
	published []domain.RiskEvent
	err       error
}

func (p *recordingPublisher) PublishEvents(_ context.Context, events []domain.RiskEvent) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, events...)
	return nil
}

func newService(t *testing.T, gen SeriesGenerator, publisher EventPublisher) *RiskService {
	t.Helper()
	logger := testLogger()
	metrics := observability.NewMetricsForTesting()

	registry := product.NewRegistry(logger, metrics)
	products, err := product.LoadDefaultCatalog()
	require.NoError(t, err)
	require.Equal(t, 3, product.PopulateRegistry(registry, products))

	if gen == nil {
		gen = generator.New(generator.NewMemoryCache(64), logger, metrics)
	}
	return New(registry, gen, risk.NewEvaluator(logger, metrics), publisher, logger, metrics)
}

func TestEvaluateProduct(t *testing.T) {
	s := newService(t, nil, nil)

	result, err := s.EvaluateProduct(context.Background(), "heavy-rain-daily", testRegion(), juneRange())
	require.NoError(t, err)

	assert.Equal(t, "heavy-rain-daily", result.ProductID)
	assert.Equal(t, domain.DataHistorical, result.DataType)
	assert.False(t, result.Degraded)
	require.NotNil(t, result.ExtendedRange)
	assert.Equal(t, juneRange().From.Add(-4*time.Hour), result.ExtendedRange.From)
	assert.Equal(t, juneRange().To, result.ExtendedRange.To)
	assert.Equal(t, len(result.Events), result.Statistics.Total)

	// Event anchors stay inside the user range even though the series is
	// extended.
	for _, ev := range result.Events {
		assert.False(t, ev.Timestamp.Before(juneRange().From))
		assert.False(t, ev.Timestamp.After(time.Date(2024, 6, 10, 23, 0, 0, 0, time.UTC)))
	}
}

func TestEvaluateProductDeterministic(t *testing.T) {
	s1 := newService(t, nil, nil)
	s2 := newService(t, nil, nil)
	ctx := context.Background()

	r1, err := s1.EvaluateProduct(ctx, "heavy-rain-daily", testRegion(), juneRange())
	require.NoError(t, err)
	r2, err := s2.EvaluateProduct(ctx, "heavy-rain-daily", testRegion(), juneRange())
	require.NoError(t, err)

	assert.Equal(t, r1.Events, r2.Events)
	assert.Equal(t, r1.Statistics, r2.Statistics)
}

func TestEvaluateProductUnknownDegrades(t *testing.T) {
	s := newService(t, nil, nil)

	result, err := s.EvaluateProduct(context.Background(), "no-such-product", testRegion(), juneRange())
	require.NoError(t, err, "unknown products degrade, not error")
	assert.Empty(t, result.Events)
	assert.Equal(t, 0, result.Statistics.Total)
	assert.Equal(t, domain.SeverityNone, result.Statistics.Severity)
	require.Len(t, result.Warnings, 1)
}

func TestEvaluateProductFallsBackWhenExtensionFails(t *testing.T) {
	logger := testLogger()
	metrics := observability.NewMetricsForTesting()
	inner := generator.New(generator.NewMemoryCache(64), logger, metrics)
	s := newService(t, &failingGenerator{inner: inner}, nil)

	result, err := s.EvaluateProduct(context.Background(), "heavy-rain-daily", testRegion(), juneRange())
	require.NoError(t, err)
	assert.True(t, result.Degraded)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "under-counted")
}

func TestEvaluateProductMemoizesHistorical(t *testing.T) {
	s := newService(t, nil, nil)
	ctx := context.Background()

	first, err := s.EvaluateProduct(ctx, "heavy-rain-daily", testRegion(), juneRange())
	require.NoError(t, err)
	second, err := s.EvaluateProduct(ctx, "heavy-rain-daily", testRegion(), juneRange())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	t.Run("memo cleared by pattern", func(t *testing.T) {
		removed := s.ClearCaches("heavy-rain-daily")
		assert.Greater(t, removed, 0)
	})
}

func TestEvaluateProductSkipsMemoForPredicted(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	s := newService(t, nil, nil)
	result, err := s.EvaluateProduct(context.Background(), "heavy-rain-daily", testRegion(), juneRange())
	require.NoError(t, err)
	assert.Equal(t, domain.DataPredicted, result.DataType)
}

func TestEvaluateProductPublishes(t *testing.T) {
	pub := &recordingPublisher{}
	s := newService(t, nil, pub)

	result, err := s.EvaluateProduct(context.Background(), "heavy-rain-daily", testRegion(), juneRange())
	require.NoError(t, err)
	assert.Equal(t, result.Events, pub.published)
}

func TestEvaluateProductPublisherFailureIsSoft(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	s := newService(t, nil, pub)

	_, err := s.EvaluateProduct(context.Background(), "heavy-rain-daily", testRegion(), juneRange())
	assert.NoError(t, err, "publish failures must not fail the evaluation")
}

func TestEvaluateProductRejectsBadRange(t *testing.T) {
	s := newService(t, nil, nil)
	bad := juneRange()
	bad.From, bad.To = bad.To, bad.From

	_, err := s.EvaluateProduct(context.Background(), "heavy-rain-daily", testRegion(), bad)
	assert.Error(t, err)
}

func TestSeriesAndDailySeries(t *testing.T) {
	s := newService(t, nil, nil)
	ctx := context.Background()

	hourly, dataType, err := s.Series(ctx, testRegion(), domain.WeatherRainfall, juneRange())
	require.NoError(t, err)
	assert.Equal(t, domain.DataHistorical, dataType)
	assert.Len(t, hourly, 10*24)

	daily, _, err := s.DailySeries(ctx, testRegion(), domain.WeatherRainfall, juneRange())
	require.NoError(t, err)
	require.Len(t, daily, 10)
	for i, d := range daily {
		assert.Equal(t, time.Date(2024, 6, 1+i, 0, 0, 0, 0, time.UTC), d.Timestamp)
	}
}

func TestAnalysis(t *testing.T) {
	s := newService(t, nil, nil)

	a, err := s.Analysis(context.Background(), "drought-monthly", testRegion(), juneRange())
	require.NoError(t, err)
	assert.Equal(t, domain.WindowMonthly, a.WindowType)
	assert.Len(t, a.Cumulative, 10)
	assert.Empty(t, a.Rolling)

	_, err = s.Analysis(context.Background(), "no-such-product", testRegion(), juneRange())
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCheckReadiness(t *testing.T) {
	s := newService(t, nil, nil)
	assert.NoError(t, s.CheckReadiness())

	logger := testLogger()
	metrics := observability.NewMetricsForTesting()
	empty := New(product.NewRegistry(logger, metrics), generator.New(generator.NewMemoryCache(4), logger, metrics), risk.NewEvaluator(logger, metrics), nil, logger, metrics)
	assert.Error(t, empty.CheckReadiness())
}
