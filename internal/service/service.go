// Package service wires the registry, generator, and evaluator into the
// operations the adapters expose.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/couchcryptid/parametric-risk-engine/internal/domain"
	"github.com/couchcryptid/parametric-risk-engine/internal/generator"
	"github.com/couchcryptid/parametric-risk-engine/internal/observability"
	"github.com/couchcryptid/parametric-risk-engine/internal/product"
	"github.com/couchcryptid/parametric-risk-engine/internal/risk"
)

// ErrProductNotFound is returned by operations that require a registered
// product.
var ErrProductNotFound = errors.New("product not found")

// SeriesGenerator is the slice of the generator the service needs. Narrow
// so tests can inject failures.
type SeriesGenerator interface {
	Generate(ctx context.Context, region domain.Region, weatherType domain.WeatherType, dataType domain.DataType, r domain.TimeRange, cacheContext string) ([]domain.DataPoint, error)
	HasComplete(region domain.Region, weatherType domain.WeatherType, dataType domain.DataType, r domain.TimeRange, cacheContext string) bool
	ClearCache(pattern string) int
}

// EventPublisher delivers triggered events to an external sink. Publishing
// is best-effort: failures are logged, never surfaced to the caller.
type EventPublisher interface {
	PublishEvents(ctx context.Context, events []domain.RiskEvent) error
}

// EvaluationResult is the full outcome of one product evaluation.
type EvaluationResult struct {
	ProductID     string                `json:"product_id"`
	Region        domain.Region         `json:"region"`
	DataType      domain.DataType       `json:"data_type"`
	Events        []domain.RiskEvent    `json:"events"`
	Statistics    domain.RiskStatistics `json:"statistics"`
	ExtendedRange *domain.TimeRange     `json:"extended_range,omitempty"`
	Degraded      bool                  `json:"degraded"`
	Warnings      []string              `json:"warnings,omitempty"`
}

// RiskService is the engine facade: generate series, evaluate products,
// aggregate statistics, publish events.
type RiskService struct {
	registry  *product.Registry
	gen       SeriesGenerator
	evaluator *risk.Evaluator
	publisher EventPublisher // nil disables publishing
	logger    *slog.Logger
	metrics   *observability.Metrics

	mu   sync.RWMutex
	memo map[string]EvaluationResult
}

// New creates a RiskService. publisher may be nil.
func New(registry *product.Registry, gen SeriesGenerator, evaluator *risk.Evaluator, publisher EventPublisher, logger *slog.Logger, metrics *observability.Metrics) *RiskService {
	return &RiskService{
		registry:  registry,
		gen:       gen,
		evaluator: evaluator,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		memo:      make(map[string]EvaluationResult),
	}
}

// EvaluateProduct runs the full generate-extend-evaluate-aggregate pipeline
// for one product and region. Unknown products degrade to an empty result
// with a warning rather than failing; generator failures on the extended
// range fall back to the unextended series and mark the result degraded.
// Historical results are memoized: the past does not change.
func (s *RiskService) EvaluateProduct(ctx context.Context, productID string, region domain.Region, r domain.TimeRange) (EvaluationResult, error) {
	start := time.Now()
	defer func() {
		s.metrics.EvaluationDuration.Observe(time.Since(start).Seconds())
	}()

	if err := r.Validate(); err != nil {
		return EvaluationResult{}, fmt.Errorf("evaluate product %s: %w", productID, err)
	}

	dataType := domain.ClassifyDataType(r)
	result := EvaluationResult{
		ProductID:  productID,
		Region:     region,
		DataType:   dataType,
		Statistics: risk.AggregateStatistics(nil),
	}

	p, ok := s.registry.Get(productID)
	if !ok {
		s.logger.Warn("evaluation requested for unknown product", "product_id", productID)
		result.Warnings = append(result.Warnings, fmt.Sprintf("product %q is not registered", productID))
		return result, nil
	}

	memoKey := memoKey(productID, region, r)
	if dataType == domain.DataHistorical {
		if cached, ok := s.memoized(memoKey); ok {
			return cached, nil
		}
	}

	extended, err := risk.ExtendRange(&p, r)
	if err != nil {
		return EvaluationResult{}, fmt.Errorf("evaluate product %s: %w", productID, err)
	}
	result.ExtendedRange = extended

	series, err := s.gen.Generate(ctx, region, p.WeatherType, dataType, *extended, "extended-"+p.ID)
	if err != nil {
		// Degrade to the unextended series; the first windows will be
		// under-counted, which the caller can see via Degraded.
		s.logger.Warn("extended generation failed, falling back to user range",
			"product_id", productID, "region", region.Key(), "error", err)
		s.metrics.DegradedEvaluations.Inc()
		result.Degraded = true
		result.Warnings = append(result.Warnings, "lookback extension unavailable; early windows are under-counted")

		series, err = s.gen.Generate(ctx, region, p.WeatherType, dataType, r, "")
		if err != nil {
			return EvaluationResult{}, fmt.Errorf("evaluate product %s: %w", productID, err)
		}
	}

	events, err := s.evaluator.EvaluateRiskEvents(p, region, r, series)
	if err != nil {
		return EvaluationResult{}, fmt.Errorf("evaluate product %s: %w", productID, err)
	}
	result.Events = events
	result.Statistics = risk.AggregateStatistics(events)

	if dataType == domain.DataHistorical && !result.Degraded {
		s.memoize(memoKey, result)
	}

	s.publish(ctx, events)
	return result, nil
}

// Series returns the hourly series for a region and weather type over the
// user's range, classifying it as historical or predicted by the clock.
func (s *RiskService) Series(ctx context.Context, region domain.Region, weatherType domain.WeatherType, r domain.TimeRange) ([]domain.DataPoint, domain.DataType, error) {
	dataType := domain.ClassifyDataType(r)
	points, err := s.gen.Generate(ctx, region, weatherType, dataType, r, "")
	if err != nil {
		return nil, dataType, err
	}
	return points, dataType, nil
}

// DailySeries returns the daily roll-up of the range's hourly series.
func (s *RiskService) DailySeries(ctx context.Context, region domain.Region, weatherType domain.WeatherType, r domain.TimeRange) ([]domain.DataPoint, domain.DataType, error) {
	points, dataType, err := s.Series(ctx, region, weatherType, r)
	if err != nil {
		return nil, dataType, err
	}
	return generator.RollUpDaily(points, weatherType, r.From, r.To), dataType, nil
}

// Analysis computes the per-day threshold analysis for a product. Unlike
// EvaluateProduct it fails on unknown products, since there is nothing
// sensible to degrade to.
func (s *RiskService) Analysis(ctx context.Context, productID string, region domain.Region, r domain.TimeRange) (risk.Analysis, error) {
	p, ok := s.registry.Get(productID)
	if !ok {
		return risk.Analysis{}, fmt.Errorf("analysis for %q: %w", productID, ErrProductNotFound)
	}

	extended, err := risk.ExtendRange(&p, r)
	if err != nil {
		return risk.Analysis{}, fmt.Errorf("analysis for %q: %w", productID, err)
	}

	dataType := domain.ClassifyDataType(r)
	series, err := s.gen.Generate(ctx, region, p.WeatherType, dataType, *extended, "extended-"+p.ID)
	if err != nil {
		s.logger.Warn("extended generation failed for analysis, falling back",
			"product_id", productID, "error", err)
		series, err = s.gen.Generate(ctx, region, p.WeatherType, dataType, r, "")
		if err != nil {
			return risk.Analysis{}, fmt.Errorf("analysis for %q: %w", productID, err)
		}
	}
	return s.evaluator.ComputeAnalysis(p, r, series)
}

// Products lists the registered catalog.
func (s *RiskService) Products() []domain.Product {
	return s.registry.All()
}

// ClearCaches drops series cache entries and memoized evaluations whose key
// contains pattern, returning the total removed.
func (s *RiskService) ClearCaches(pattern string) int {
	removed := s.gen.ClearCache(pattern)

	s.mu.Lock()
	for key := range s.memo {
		if pattern == "" || strings.Contains(key, pattern) {
			delete(s.memo, key)
			removed++
		}
	}
	s.mu.Unlock()
	return removed
}

// CheckReadiness reports whether the engine can serve evaluations.
func (s *RiskService) CheckReadiness() error {
	if s.registry.Len() == 0 {
		s.metrics.EngineReady.Set(0)
		return errors.New("product registry is empty")
	}
	s.metrics.EngineReady.Set(1)
	return nil
}

func (s *RiskService) publish(ctx context.Context, events []domain.RiskEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.PublishEvents(ctx, events); err != nil {
		// Publishing is observability, not correctness; never fail the
		// evaluation over it.
		s.logger.Warn("failed to publish risk events", "events", len(events), "error", err)
		return
	}
	s.metrics.EventsPublished.Add(float64(len(events)))
}

func (s *RiskService) memoized(key string) (EvaluationResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.memo[key]
	return r, ok
}

func (s *RiskService) memoize(key string, r EvaluationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memo[key] = r
}

func memoKey(productID string, region domain.Region, r domain.TimeRange) string {
	return fmt.Sprintf("memo-%s-%s-%s-%s-%d-%d",
		productID, region.Key(),
		r.From.UTC().Format(time.RFC3339), r.To.UTC().Format(time.RFC3339),
		r.StartHour, r.EndHour)
}
