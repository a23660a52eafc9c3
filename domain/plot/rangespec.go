package plot

import (
	"fmt"
	"math"
	"strconv"
)

// Range is a validated closed interval with finite Min <= Max.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// IsDegenerate reports whether the interval is a single point.
func (r Range) IsDegenerate() bool {
	return r.Min == r.Max
}

func (r Range) String() string {
	return fmt.Sprintf("[%g:%g]", r.Min, r.Max)
}

// ParseRange parses both bounds and checks their order.
func ParseRange(rawMin, rawMax string) (Range, error) {
	lo, err := parseBound(rawMin)
	if err != nil {
		return Range{}, ErrInvalidRange.Clone().
			WithDetail("bound", "min").
			WithDetail("value", rawMin).
			WithCause(err)
	}
	hi, err := parseBound(rawMax)
	if err != nil {
		return Range{}, ErrInvalidRange.Clone().
			WithDetail("bound", "max").
			WithDetail("value", rawMax).
			WithCause(err)
	}
	if lo > hi {
		return Range{}, ErrInvalidRange.Clone().
			WithDetail("min", lo).
			WithDetail("max", hi)
	}
	return Range{Min: lo, Max: hi}, nil
}

// parseBound rejects anything that does not parse to a finite float64,
// including digit strings long enough to overflow.
func parseBound(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("bound %q is not finite", raw)
	}
	return v, nil
}
