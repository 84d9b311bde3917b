package domain

import (
	"errors"
	"fmt"
	"time"
)

// WeatherType identifies the meteorological variable a series describes.
type WeatherType string

const (
	WeatherRainfall    WeatherType = "rainfall"
	WeatherTemperature WeatherType = "temperature"
	WeatherWind        WeatherType = "wind"
	WeatherHumidity    WeatherType = "humidity"
	WeatherPressure    WeatherType = "pressure"
	WeatherSnowfall    WeatherType = "snowfall"
)

// AllWeatherTypes lists every supported weather type in a stable order.
func AllWeatherTypes() []WeatherType {
	return []WeatherType{
		WeatherRainfall, WeatherTemperature, WeatherWind,
		WeatherHumidity, WeatherPressure, WeatherSnowfall,
	}
}

// Valid reports whether w is one of the supported weather types.
func (w WeatherType) Valid() bool {
	switch w {
	case WeatherRainfall, WeatherTemperature, WeatherWind,
		WeatherHumidity, WeatherPressure, WeatherSnowfall:
		return true
	}
	return false
}

// Cumulative reports whether daily roll-ups sum hourly values (rainfall,
// snowfall) instead of averaging them.
func (w WeatherType) Cumulative() bool {
	return w == WeatherRainfall || w == WeatherSnowfall
}

// DataType distinguishes past observations from forecasts. It only changes
// generation parameters; evaluation logic is identical for both.
type DataType string

const (
	DataHistorical DataType = "historical"
	DataPredicted  DataType = "predicted"
)

// RiskTag is the per-observation display hint attached during generation.
// It is not consulted by risk evaluation.
type RiskTag string

const (
	TagNone   RiskTag = ""
	TagLow    RiskTag = "low"
	TagMedium RiskTag = "medium"
	TagHigh   RiskTag = "high"
)

// rank orders tags for the daily roll-up (highest observed tag wins).
func (t RiskTag) rank() int {
	switch t {
	case TagLow:
		return 1
	case TagMedium:
		return 2
	case TagHigh:
		return 3
	default:
		return 0
	}
}

// Max returns the more severe of two tags.
func (t RiskTag) Max(other RiskTag) RiskTag {
	if other.rank() > t.rank() {
		return other
	}
	return t
}

// Tier is the ordinal severity a triggered risk event is classified into.
type Tier string

const (
	Tier1 Tier = "tier1"
	Tier2 Tier = "tier2"
	Tier3 Tier = "tier3"
)

// Rank returns the tier's ordinal position (tier1=1 .. tier3=3); unknown
// tiers rank 0 so they always lose tie-breaks.
func (t Tier) Rank() int {
	switch t {
	case Tier1:
		return 1
	case Tier2:
		return 2
	case Tier3:
		return 3
	default:
		return 0
	}
}

// Region identifies a district by its administrative path. The fields are
// opaque strings compared by value; the engine only ever hashes or keys on
// them.
type Region struct {
	Country  string `json:"country"`
	Province string `json:"province"`
	District string `json:"district"`
}

// Key renders the region as a stable composite key.
func (r Region) Key() string {
	return fmt.Sprintf("%s-%s-%s", r.Country, r.Province, r.District)
}

// TimeRange is a user-selected evaluation span. From/To are UTC instants;
// StartHour/EndHour bound the first and last generated hour of the span.
type TimeRange struct {
	From      time.Time `json:"from"`
	To        time.Time `json:"to"`
	StartHour int       `json:"start_hour"`
	EndHour   int       `json:"end_hour"`
}

// Validate fails fast on malformed ranges before any generation happens.
func (r TimeRange) Validate() error {
	if r.From.IsZero() || r.To.IsZero() {
		return errors.New("time range: from and to are required")
	}
	if r.To.Before(r.From) {
		return fmt.Errorf("time range: from %s is after to %s", r.From.Format(time.RFC3339), r.To.Format(time.RFC3339))
	}
	if r.StartHour < 0 || r.StartHour > 23 {
		return fmt.Errorf("time range: start hour %d out of [0,23]", r.StartHour)
	}
	if r.EndHour < 0 || r.EndHour > 23 {
		return fmt.Errorf("time range: end hour %d out of [0,23]", r.EndHour)
	}
	return nil
}

// Contains reports whether t falls inside [From, To].
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

// ContainsDate reports whether t's UTC calendar date falls inside the
// range's date span, ignoring the time of day. Daily and coarser products
// compare event anchors this way.
func (r TimeRange) ContainsDate(t time.Time) bool {
	d := StartOfDay(t)
	return !d.Before(StartOfDay(r.From)) && !d.After(StartOfDay(r.To))
}

// DataPoint is a single generated observation. Immutable once generated.
type DataPoint struct {
	Timestamp   time.Time   `json:"timestamp"`
	Value       float64     `json:"value"`
	RiskTag     RiskTag     `json:"risk_tag,omitempty"`
	WeatherType WeatherType `json:"weather_type"`
}

// RiskEvent is a single triggered window position. Created only by the
// evaluator and never mutated.
type RiskEvent struct {
	ID              string      `json:"id"`
	ProductID       string      `json:"product_id"`
	Region          Region      `json:"region"`
	Timestamp       time.Time   `json:"timestamp"`
	DataType        DataType    `json:"data_type"`
	WeatherType     WeatherType `json:"weather_type"`
	Tier            Tier        `json:"tier"`
	AggregatedValue float64     `json:"aggregated_value"`
	Description     string      `json:"description,omitempty"`
}

// Severity is the overall classification of an event list.
type Severity string

const (
	SeverityNone   Severity = "-"
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// TierCounts holds per-tier event counts.
type TierCounts struct {
	Tier1 int `json:"tier1"`
	Tier2 int `json:"tier2"`
	Tier3 int `json:"tier3"`
}

// RiskStatistics is the on-demand reduction of a RiskEvent list. It is
// derived data: recomputed from its inputs, never cached independently.
type RiskStatistics struct {
	Total         int                 `json:"total"`
	ByTier        TierCounts          `json:"by_tier"`
	ByDataType    map[DataType]int    `json:"by_data_type"`
	ByWeatherType map[WeatherType]int `json:"by_weather_type"`
	Severity      Severity            `json:"severity"`
}
