package plot

import "math"

// SampleCount is the number of domain points produced for a non-degenerate range.
const SampleCount = 100

// Sample returns the half-open grid [min, max) with step (max-min)*0.01.
// The count is fixed rather than derived from the step, so rounding never
// yields 99 or 101 points. A degenerate range yields exactly one point.
func Sample(r Range) []float64 {
	if r.IsDegenerate() {
		return []float64{r.Min}
	}

	xs := make([]float64, SampleCount)

	dx := (r.Max - r.Min) * 0.01
	if !math.IsInf(dx, 0) {
		for i := range xs {
			xs[i] = r.Min + float64(i)*dx
		}
		return xs
	}

	// max-min overflowed; work in half scale so neither the offset nor the sum does.
	halfMin := r.Min * 0.5
	halfDx := r.Max*0.005 - r.Min*0.005
	for i := range xs {
		xs[i] = (halfMin + float64(i)*halfDx) * 2
	}
	return xs
}
