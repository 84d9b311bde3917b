package generator

import (
	"time"

	"github.com/montanaflynn/stats"

	"github.com/couchcryptid/parametric-risk-engine/internal/domain"
)

// RollUpDaily reduces an hourly series to one point per UTC day, anchored
// at 00:00. Cumulative types (rainfall, snowfall) sum the day's hours;
// everything else averages them. The day's tag is the most severe hourly
// tag. Days inside [from, to] with no hourly data get a zero point with no
// tag, so daily series have no gaps.
func RollUpDaily(points []domain.DataPoint, weatherType domain.WeatherType, from, to time.Time) []domain.DataPoint {
	byDay := make(map[time.Time][]float64)
	tags := make(map[time.Time]domain.RiskTag)
	for _, p := range points {
		day := domain.StartOfDay(p.Timestamp)
		byDay[day] = append(byDay[day], p.Value)
		tags[day] = tags[day].Max(p.RiskTag)
	}

	firstDay := domain.StartOfDay(from)
	lastDay := domain.StartOfDay(to)

	var out []domain.DataPoint
	for day := firstDay; !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		values := byDay[day]
		var v float64
		if len(values) > 0 {
			if weatherType.Cumulative() {
				v, _ = stats.Sum(values)
			} else {
				v, _ = stats.Mean(values)
			}
			v = round2(v)
		}
		out = append(out, domain.DataPoint{
			Timestamp:   day,
			Value:       v,
			RiskTag:     tags[day],
			WeatherType: weatherType,
		})
	}
	return out
}

func round2(v float64) float64 {
	r, _ := stats.Round(v, 2)
	return r
}
