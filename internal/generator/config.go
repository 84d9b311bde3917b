package generator

import "github.com/couchcryptid/parametric-risk-engine/internal/domain"

// weatherConfig parameterizes synthetic series for one weather type. The
// numbers are tuned so generated magnitudes resemble plausible observations
// for the variable's usual unit (mm, °C, m/s, %, hPa, cm).
type weatherConfig struct {
	Min              float64
	Max              float64
	Predictability   float64
	TimeFactors      []timeFactor // ascending by hour
	SeasonalStrength float64
}

// timeFactor scales values for all hours at or after Hour, until the next
// configured entry takes over.
type timeFactor struct {
	Hour   int
	Factor float64
}

var weatherConfigs = map[domain.WeatherType]weatherConfig{
	domain.WeatherRainfall: {
		Min: 20, Max: 70, Predictability: 0.9,
		TimeFactors: []timeFactor{
			{Hour: 0, Factor: 0.8}, {Hour: 6, Factor: 0.3},
			{Hour: 12, Factor: 1.5}, {Hour: 18, Factor: 1.2},
		},
		SeasonalStrength: 0.4,
	},
	domain.WeatherTemperature: {
		Min: 15, Max: 35, Predictability: 0.95,
		TimeFactors: []timeFactor{
			{Hour: 0, Factor: 0.8}, {Hour: 6, Factor: 0.7},
			{Hour: 12, Factor: 1.3}, {Hour: 18, Factor: 1.0},
		},
		SeasonalStrength: 0.6,
	},
	domain.WeatherWind: {
		Min: 5, Max: 25, Predictability: 0.85,
		TimeFactors: []timeFactor{
			{Hour: 0, Factor: 0.7}, {Hour: 6, Factor: 0.6},
			{Hour: 12, Factor: 1.4}, {Hour: 18, Factor: 1.1},
		},
		SeasonalStrength: 0.3,
	},
	domain.WeatherHumidity: {
		Min: 40, Max: 90, Predictability: 0.92,
		TimeFactors: []timeFactor{
			{Hour: 0, Factor: 1.1}, {Hour: 6, Factor: 1.2},
			{Hour: 12, Factor: 0.8}, {Hour: 18, Factor: 1.0},
		},
		SeasonalStrength: 0.2,
	},
	domain.WeatherPressure: {
		Min: 980, Max: 1020, Predictability: 0.98,
		SeasonalStrength: 0.1,
	},
	domain.WeatherSnowfall: {
		Min: 0, Max: 30, Predictability: 0.88,
		TimeFactors: []timeFactor{
			{Hour: 0, Factor: 1.0}, {Hour: 6, Factor: 0.5},
			{Hour: 12, Factor: 0.8}, {Hour: 18, Factor: 1.2},
		},
		SeasonalStrength: 0.5,
	},
}

// timeFactorAt returns the factor of the entry with the largest configured
// hour not after h, or 1.0 when no time factors are configured.
func (c weatherConfig) timeFactorAt(h int) float64 {
	factor := 1.0
	for _, tf := range c.TimeFactors {
		if tf.Hour > h {
			break
		}
		factor = tf.Factor
	}
	return factor
}

// riskTagFor classifies a single observation for display. The bands are
// fixed per weather type and independent of any product's thresholds.
func riskTagFor(weatherType domain.WeatherType, v float64) domain.RiskTag {
	switch weatherType {
	case domain.WeatherRainfall:
		switch {
		case v >= 100:
			return domain.TagHigh
		case v >= 50:
			return domain.TagMedium
		case v >= 20:
			return domain.TagLow
		}
	case domain.WeatherTemperature:
		switch {
		case v >= 35 || v <= 0:
			return domain.TagHigh
		case v >= 30 || v <= 5:
			return domain.TagMedium
		case v >= 25 || v <= 10:
			return domain.TagLow
		}
	case domain.WeatherWind:
		switch {
		case v >= 20:
			return domain.TagHigh
		case v >= 15:
			return domain.TagMedium
		case v >= 10:
			return domain.TagLow
		}
	case domain.WeatherHumidity:
		switch {
		case v >= 85 || v <= 30:
			return domain.TagHigh
		case v >= 75 || v <= 40:
			return domain.TagMedium
		}
	case domain.WeatherPressure:
		switch {
		case v <= 990 || v >= 1015:
			return domain.TagHigh
		case v <= 995 || v >= 1010:
			return domain.TagMedium
		}
	case domain.WeatherSnowfall:
		switch {
		case v >= 20:
			return domain.TagHigh
		case v >= 10:
			return domain.TagMedium
		case v >= 5:
			return domain.TagLow
		}
	}
	return domain.TagNone
}
