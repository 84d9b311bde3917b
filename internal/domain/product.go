package domain

// WindowType selects the unit and cadence of a product's evaluation window.
type WindowType string

const (
	WindowHourly  WindowType = "hourly"
	WindowDaily   WindowType = "daily"
	WindowWeekly  WindowType = "weekly"
	WindowMonthly WindowType = "monthly"
)

// TimeWindowSpec describes the trailing span aggregated at each evaluation
// point. Size counts units inclusive of the current one. Monthly windows
// ignore Size and accumulate from the start of the calendar month.
type TimeWindowSpec struct {
	Type WindowType `json:"type" validate:"required,oneof=hourly daily weekly monthly"`
	Size int        `json:"size" validate:"required,gt=0"`
	Step int        `json:"step,omitempty" validate:"gte=0"`
}

// StepOrDefault returns the sliding step, defaulting to 1 unit.
func (w TimeWindowSpec) StepOrDefault() int {
	if w.Step < 1 {
		return 1
	}
	return w.Step
}

// Aggregation is how window contents are reduced to a single value.
type Aggregation string

const (
	AggSum     Aggregation = "sum"
	AggAverage Aggregation = "average"
	AggMax     Aggregation = "max"
	AggMin     Aggregation = "min"
)

// Operator compares an aggregated value against a threshold value.
type Operator string

const (
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpEqual        Operator = "=="
)

// Threshold is one rung of a product's severity ladder. Ladders may be
// registered in any order and with any value/tier relationship.
type Threshold struct {
	Value float64 `json:"value"`
	Tier  Tier    `json:"tier" validate:"required,oneof=tier1 tier2 tier3"`
	Label string  `json:"label,omitempty"`
}

// CalculationSpec configures how window values are aggregated and compared.
type CalculationSpec struct {
	Aggregation Aggregation `json:"aggregation" validate:"required,oneof=sum average max min"`
	Operator    Operator    `json:"operator" validate:"required,oneof=> >= < <= =="`
	Unit        string      `json:"unit,omitempty"`
}

// Product is a parametric insurance product definition: which weather
// variable it watches, over what window, and the threshold ladder that
// triggers events. Immutable after registration.
type Product struct {
	ID          string          `json:"id" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description,omitempty"`
	WeatherType WeatherType     `json:"weather_type" validate:"required,oneof=rainfall temperature wind humidity pressure snowfall"`
	TimeWindow  TimeWindowSpec  `json:"time_window" validate:"required"`
	Thresholds  []Threshold     `json:"thresholds" validate:"required,min=1,dive"`
	Calculation CalculationSpec `json:"calculation" validate:"required"`
}
