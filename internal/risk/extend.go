// Package risk implements lookback extension, sliding-window evaluation,
// threshold analysis, and event statistics.
package risk

import (
	"fmt"
	"time"

	"github.com/couchcryptid/parametric-risk-engine/internal/domain"
)

// ExtendRange widens a user range backwards so the first evaluation point
// of the product's window has a full lookback. The To side never moves: the
// future holds no lookback data.
//
// A nil product means no extension is needed and nil is returned.
func ExtendRange(p *domain.Product, r domain.TimeRange) (*domain.TimeRange, error) {
	if p == nil {
		return nil, nil
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("extend range: %w", err)
	}

	var from time.Time
	switch p.TimeWindow.Type {
	case domain.WindowHourly:
		// Back off from the first evaluation anchor so its window is full.
		start, _ := domain.SeriesBounds(r)
		from = start.Add(-time.Duration(p.TimeWindow.Size) * time.Hour)
	case domain.WindowDaily:
		from = domain.StartOfDay(r.From).AddDate(0, 0, -p.TimeWindow.Size)
	case domain.WindowWeekly:
		from = domain.StartOfDay(r.From).AddDate(0, 0, -7*p.TimeWindow.Size)
	case domain.WindowMonthly:
		from = domain.StartOfMonth(r.From)
	default:
		return nil, fmt.Errorf("extend range: unknown window type %q", p.TimeWindow.Type)
	}

	return &domain.TimeRange{
		From:      from,
		To:        r.To,
		StartHour: r.StartHour,
		EndHour:   r.EndHour,
	}, nil
}

// windowDays returns the trailing window length in days for day-granularity
// window types.
func windowDays(w domain.TimeWindowSpec) int {
	if w.Type == domain.WindowWeekly {
		return 7 * w.Size
	}
	return w.Size
}
