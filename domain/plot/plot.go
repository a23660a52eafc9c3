// Package plot holds the command grammar, range validation, function table and
// sampling rules for the plotting bot. Everything here is a pure function of
// its inputs; the only package-level state is compiled once and never mutated.
package plot

// Plot is a successfully evaluated request, ready to be rendered.
type Plot struct {
	// RequestID is unique per processed request and keys anything the
	// request persists, so concurrent requests for the same function never
	// share a storage object.
	RequestID string
	Function  Function
	Range     Range
	XS        []float64
	YS        []float64
}

// Len is the number of sampled points.
func (p *Plot) Len() int {
	return len(p.XS)
}
