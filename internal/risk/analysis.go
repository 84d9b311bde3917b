package risk

import (
	"fmt"
	"time"

	"github.com/couchcryptid/parametric-risk-engine/internal/domain"
)

// RollingAnalysisPoint is one day of analysis for a trailing-window
// product: the aggregate over the window ending that day.
type RollingAnalysisPoint struct {
	Date         time.Time   `json:"date"`
	RollingValue float64     `json:"rolling_value"`
	WindowDays   int         `json:"window_days"`
	Triggered    bool        `json:"triggered"`
	Tier         domain.Tier `json:"tier,omitempty"`
}

// CumulativeAnalysisPoint is one day of analysis for a monthly product:
// the month-to-date aggregate as of that day.
type CumulativeAnalysisPoint struct {
	Date       time.Time   `json:"date"`
	Cumulative float64     `json:"cumulative"`
	Triggered  bool        `json:"triggered"`
	Tier       domain.Tier `json:"tier,omitempty"`
}

// Analysis is a per-day view of how close a product sits to its thresholds
// across a range, independent of whether events fired. Exactly one of
// Rolling and Cumulative is populated, selected by the product's window
// type.
type Analysis struct {
	ProductID  string                    `json:"product_id"`
	WindowType domain.WindowType         `json:"window_type"`
	Rolling    []RollingAnalysisPoint    `json:"rolling,omitempty"`
	Cumulative []CumulativeAnalysisPoint `json:"cumulative,omitempty"`
}

// ComputeAnalysis builds the daily analysis rows for a product over a
// series. The series should include the product's lookback, as for
// evaluation; days with partial lookback report under-counted values, the
// same best-effort rule evaluation follows.
func (e *Evaluator) ComputeAnalysis(p domain.Product, userRange domain.TimeRange, series []domain.DataPoint) (Analysis, error) {
	if err := userRange.Validate(); err != nil {
		return Analysis{}, fmt.Errorf("analyze %s: %w", p.ID, err)
	}
	a := Analysis{ProductID: p.ID, WindowType: p.TimeWindow.Type}
	if len(series) == 0 {
		return a, nil
	}

	daily := rollUpSpan(p.WeatherType, series)
	byDay := make(map[time.Time]float64, len(daily))
	for _, pt := range daily {
		byDay[pt.Timestamp] = pt.Value
	}

	lastDay := domain.StartOfDay(userRange.To)
	for day := domain.StartOfDay(userRange.From); !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		if p.TimeWindow.Type == domain.WindowMonthly {
			values := collectDays(byDay, domain.StartOfMonth(day), day)
			if len(values) == 0 {
				continue
			}
			point := CumulativeAnalysisPoint{
				Date:       day,
				Cumulative: aggregate(values, p.Calculation.Aggregation),
			}
			if th, ok := resolveThreshold(p, point.Cumulative); ok {
				point.Triggered = true
				point.Tier = th.Tier
			}
			a.Cumulative = append(a.Cumulative, point)
			continue
		}

		// Hourly windows shorter than a day still produce one row per day,
		// using the day's rolled-up value as the window content.
		days := 1
		if p.TimeWindow.Type == domain.WindowDaily || p.TimeWindow.Type == domain.WindowWeekly {
			days = windowDays(p.TimeWindow)
		}
		values := collectDays(byDay, day.AddDate(0, 0, -(days-1)), day)
		if len(values) == 0 {
			continue
		}
		point := RollingAnalysisPoint{
			Date:         day,
			RollingValue: aggregate(values, p.Calculation.Aggregation),
			WindowDays:   days,
		}
		if th, ok := resolveThreshold(p, point.RollingValue); ok {
			point.Triggered = true
			point.Tier = th.Tier
		}
		a.Rolling = append(a.Rolling, point)
	}
	return a, nil
}

// collectDays gathers the daily values present between two days inclusive.
func collectDays(byDay map[time.Time]float64, first, last time.Time) []float64 {
	var values []float64
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if v, ok := byDay[d]; ok {
			values = append(values, v)
		}
	}
	return values
}
