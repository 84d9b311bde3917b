package risk

import "github.com/couchcryptid/parametric-risk-engine/internal/domain"

// AggregateStatistics reduces an event list to counts and an overall
// severity. Maps are always initialized so callers and JSON encoders never
// see nil, and every weather type appears even with a zero count.
func AggregateStatistics(events []domain.RiskEvent) domain.RiskStatistics {
	s := domain.RiskStatistics{
		Total:         len(events),
		ByDataType:    map[domain.DataType]int{domain.DataHistorical: 0, domain.DataPredicted: 0},
		ByWeatherType: make(map[domain.WeatherType]int, len(domain.AllWeatherTypes())),
		Severity:      domain.SeverityNone,
	}
	for _, wt := range domain.AllWeatherTypes() {
		s.ByWeatherType[wt] = 0
	}

	for _, ev := range events {
		switch ev.Tier {
		case domain.Tier1:
			s.ByTier.Tier1++
		case domain.Tier2:
			s.ByTier.Tier2++
		case domain.Tier3:
			s.ByTier.Tier3++
		}
		s.ByDataType[ev.DataType]++
		s.ByWeatherType[ev.WeatherType]++
	}

	switch {
	case s.ByTier.Tier3 > 0:
		s.Severity = domain.SeverityHigh
	case s.ByTier.Tier2 > 0:
		s.Severity = domain.SeverityMedium
	case s.ByTier.Tier1 > 0:
		s.Severity = domain.SeverityLow
	}
	return s
}

// FilterEventsByRange keeps the events whose anchor falls inside the range.
// Hourly-window products compare exact instants; coarser products compare
// calendar dates, since their anchors sit at 00:00.
func FilterEventsByRange(events []domain.RiskEvent, windowType domain.WindowType, r domain.TimeRange) []domain.RiskEvent {
	var out []domain.RiskEvent
	for _, ev := range events {
		if windowType == domain.WindowHourly {
			if r.Contains(ev.Timestamp) {
				out = append(out, ev)
			}
			continue
		}
		if r.ContainsDate(ev.Timestamp) {
			out = append(out, ev)
		}
	}
	return out
}
