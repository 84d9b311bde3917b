package domain

import "fmt"

// LCG parameters. The modulus bounds the stream's period at 233280 draws
// (~26.6 years of hourly data), which is acceptable for synthetic series.
const (
	lcgMultiplier = 9301
	lcgIncrement  = 49297
	lcgModulus    = 233280
)

// RegionSeed folds a region + weather type identity into a stable
// non-negative seed. The hash is the classic rolling hash*31+char with
// 32-bit wraparound, so the same identity maps to the same seed on every
// platform and every run.
func RegionSeed(region Region, weatherType WeatherType) int64 {
	s := fmt.Sprintf("%s-%s-%s-%s", region.Country, region.Province, region.District, weatherType)
	var h int32
	for _, r := range s {
		h = h*31 + int32(r)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}

// SeededRandom is a deterministic pseudo-random stream: a pure function of
// its seed and the number of draws taken so far. It is the only source of
// randomness in series generation.
type SeededRandom struct {
	state int64
}

// NewSeededRandom creates a stream positioned at draw zero.
func NewSeededRandom(seed int64) *SeededRandom {
	return &SeededRandom{state: seed}
}

// Next advances the stream one step and returns a value in [0, 1).
func (r *SeededRandom) Next() float64 {
	r.state = (r.state*lcgMultiplier + lcgIncrement) % lcgModulus
	return float64(r.state) / lcgModulus
}

// NextInRange returns a value in [min, max).
func (r *SeededRandom) NextInRange(min, max float64) float64 {
	return min + r.Next()*(max-min)
}

// Skip advances the stream n draws without producing values. Generation
// anchors streams at the Unix epoch, so a series starting at hour H skips
// H draws first; linear cost is microseconds for modern timestamps.
func (r *SeededRandom) Skip(n int64) {
	for i := int64(0); i < n; i++ {
		r.state = (r.state*lcgMultiplier + lcgIncrement) % lcgModulus
	}
}
