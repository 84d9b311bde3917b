package risk

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/couchcryptid/parametric-risk-engine/internal/domain"
	"github.com/couchcryptid/parametric-risk-engine/internal/generator"
	"github.com/couchcryptid/parametric-risk-engine/internal/observability"
)

// Evaluator slides a product's window over a weather series and emits a
// risk event at every window position whose aggregate crosses a threshold.
// It is stateless and safe for concurrent use.
type Evaluator struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(logger *slog.Logger, metrics *observability.Metrics) *Evaluator {
	return &Evaluator{logger: logger, metrics: metrics}
}

// EvaluateRiskEvents computes the risk events for a product over a series.
// The series should already include lookback hours before userRange (see
// ExtendRange); event anchors are always confined to userRange. Events come
// back in ascending timestamp order.
func (e *Evaluator) EvaluateRiskEvents(p domain.Product, region domain.Region, userRange domain.TimeRange, series []domain.DataPoint) ([]domain.RiskEvent, error) {
	if err := userRange.Validate(); err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", p.ID, err)
	}
	if !p.WeatherType.Valid() || len(p.Thresholds) == 0 {
		// Degrade, don't crash: a misconfigured product yields no events.
		e.logger.Warn("skipping evaluation of invalid product", "product_id", p.ID)
		return nil, nil
	}
	if len(series) == 0 {
		return nil, nil
	}
	e.metrics.Evaluations.WithLabelValues(p.ID).Inc()

	dataType := domain.ClassifyDataType(userRange)

	var events []domain.RiskEvent
	switch p.TimeWindow.Type {
	case domain.WindowHourly:
		events = e.evaluateHourly(p, region, userRange, series, dataType)
	case domain.WindowDaily, domain.WindowWeekly:
		events = e.evaluateDailyRolling(p, region, userRange, series, dataType)
	case domain.WindowMonthly:
		events = e.evaluateMonthly(p, region, userRange, series, dataType)
	default:
		return nil, fmt.Errorf("evaluate %s: unknown window type %q", p.ID, p.TimeWindow.Type)
	}

	for _, ev := range events {
		e.metrics.EventsEmitted.WithLabelValues(string(ev.Tier)).Inc()
	}
	e.logger.Debug("evaluated product",
		"product_id", p.ID,
		"region", region.Key(),
		"window_type", p.TimeWindow.Type,
		"events", len(events))
	return events, nil
}

// evaluateHourly slides a trailing size-hour window across every anchor
// hour of the user range. Windows missing lookback hours (a series that
// could not be extended) evaluate best-effort over what exists, so early
// aggregates can be under-counted; anchors with no data at all are skipped.
func (e *Evaluator) evaluateHourly(p domain.Product, region domain.Region, userRange domain.TimeRange, series []domain.DataPoint, dataType domain.DataType) []domain.RiskEvent {
	byHour := make(map[int64]float64, len(series))
	for _, pt := range series {
		byHour[domain.HoursSinceEpoch(pt.Timestamp)] = pt.Value
	}

	start, end := domain.SeriesBounds(userRange)
	size := p.TimeWindow.Size
	step := time.Duration(p.TimeWindow.StepOrDefault()) * time.Hour

	var events []domain.RiskEvent
	for anchor := start; !anchor.After(end); anchor = anchor.Add(step) {
		h := domain.HoursSinceEpoch(anchor)
		values := make([]float64, 0, size)
		for i := size - 1; i >= 0; i-- {
			if v, ok := byHour[h-int64(i)]; ok {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			continue
		}
		if ev, ok := e.triggerAt(p, region, anchor, dataType, values); ok {
			events = append(events, ev)
		}
	}
	return events
}

// evaluateDailyRolling handles daily and weekly windows: the hourly series
// is rolled up to daily values and a trailing window of days is evaluated
// once per anchor day, anchored at 00:00.
func (e *Evaluator) evaluateDailyRolling(p domain.Product, region domain.Region, userRange domain.TimeRange, series []domain.DataPoint, dataType domain.DataType) []domain.RiskEvent {
	daily := rollUpSpan(p.WeatherType, series)
	byDay := make(map[time.Time]float64, len(daily))
	for _, pt := range daily {
		byDay[pt.Timestamp] = pt.Value
	}

	days := windowDays(p.TimeWindow)
	step := p.TimeWindow.StepOrDefault()
	lastDay := domain.StartOfDay(userRange.To)

	var events []domain.RiskEvent
	for day := domain.StartOfDay(userRange.From); !day.After(lastDay); day = day.AddDate(0, 0, step) {
		values := make([]float64, 0, days)
		for i := days - 1; i >= 0; i-- {
			if v, ok := byDay[day.AddDate(0, 0, -i)]; ok {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			continue
		}
		if ev, ok := e.triggerAt(p, region, day, dataType, values); ok {
			events = append(events, ev)
		}
	}
	return events
}

// evaluateMonthly accumulates daily values from each calendar month's start
// and emits at most one event per month, anchored at the month's last day
// with data inside the user range.
func (e *Evaluator) evaluateMonthly(p domain.Product, region domain.Region, userRange domain.TimeRange, series []domain.DataPoint, dataType domain.DataType) []domain.RiskEvent {
	daily := rollUpSpan(p.WeatherType, series)

	months := make(map[string][]domain.DataPoint)
	for _, pt := range daily {
		key := domain.MonthKey(pt.Timestamp)
		months[key] = append(months[key], pt)
	}
	keys := make([]string, 0, len(months))
	for key := range months {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var events []domain.RiskEvent
	for _, key := range keys {
		points := months[key]

		// Anchor on the last day of the month the user range still covers.
		anchor := time.Time{}
		for _, pt := range points {
			if userRange.ContainsDate(pt.Timestamp) {
				anchor = pt.Timestamp
			}
		}
		if anchor.IsZero() {
			continue
		}

		values := make([]float64, 0, len(points))
		for _, pt := range points {
			if !pt.Timestamp.After(anchor) {
				values = append(values, pt.Value)
			}
		}
		if ev, ok := e.triggerAt(p, region, anchor, dataType, values); ok {
			events = append(events, ev)
		}
	}
	return events
}

// triggerAt aggregates one window position and builds the event when a
// threshold is crossed.
func (e *Evaluator) triggerAt(p domain.Product, region domain.Region, anchor time.Time, dataType domain.DataType, values []float64) (domain.RiskEvent, bool) {
	value := aggregate(values, p.Calculation.Aggregation)
	th, ok := resolveThreshold(p, value)
	if !ok {
		return domain.RiskEvent{}, false
	}

	desc := fmt.Sprintf("%s %.2f %s %s %g", p.Calculation.Aggregation, value, p.Calculation.Unit, p.Calculation.Operator, th.Value)
	if th.Label != "" {
		desc = th.Label + ": " + desc
	}
	return domain.RiskEvent{
		ID:              domain.NewEventID(p.ID, region, anchor, th.Tier),
		ProductID:       p.ID,
		Region:          region,
		Timestamp:       anchor,
		DataType:        dataType,
		WeatherType:     p.WeatherType,
		Tier:            th.Tier,
		AggregatedValue: value,
		Description:     desc,
	}, true
}

// rollUpSpan rolls an hourly series up to daily values over its own span.
func rollUpSpan(weatherType domain.WeatherType, series []domain.DataPoint) []domain.DataPoint {
	return generator.RollUpDaily(series, weatherType,
		series[0].Timestamp, series[len(series)-1].Timestamp)
}

// aggregate reduces window values with the product's aggregation. Empty
// windows reduce to zero so operators like < cannot trigger on no data.
func aggregate(values []float64, agg domain.Aggregation) float64 {
	if len(values) == 0 {
		return 0
	}
	var v float64
	switch agg {
	case domain.AggSum:
		v, _ = stats.Sum(values)
	case domain.AggAverage:
		v, _ = stats.Mean(values)
	case domain.AggMax:
		v, _ = stats.Max(values)
	case domain.AggMin:
		v, _ = stats.Min(values)
	}
	r, _ := stats.Round(v, 2)
	return r
}

// resolveThreshold picks the most severe satisfied rung of the ladder: the
// extremal threshold value in the operator's direction, with tier rank as
// the tie-break. Ladders may be registered in any order.
func resolveThreshold(p domain.Product, value float64) (domain.Threshold, bool) {
	var best domain.Threshold
	found := false
	for _, th := range p.Thresholds {
		if !satisfies(value, p.Calculation.Operator, th.Value) {
			continue
		}
		if !found || moreSevere(p.Calculation.Operator, th, best) {
			best = th
			found = true
		}
	}
	return best, found
}

func satisfies(value float64, op domain.Operator, threshold float64) bool {
	switch op {
	case domain.OpGreater:
		return value > threshold
	case domain.OpGreaterEqual:
		return value >= threshold
	case domain.OpLess:
		return value < threshold
	case domain.OpLessEqual:
		return value <= threshold
	case domain.OpEqual:
		return value == threshold
	}
	return false
}

func moreSevere(op domain.Operator, a, b domain.Threshold) bool {
	switch op {
	case domain.OpGreater, domain.OpGreaterEqual:
		if a.Value != b.Value {
			return a.Value > b.Value
		}
	case domain.OpLess, domain.OpLessEqual:
		if a.Value != b.Value {
			return a.Value < b.Value
		}
	}
	return a.Tier.Rank() > b.Tier.Rank()
}
