// Package rendering draws sampled plots as PNG images with go-chart.
package rendering

import (
	"bytes"
	"context"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"plotbot/application/ports"
	"plotbot/domain/plot"
)

var curveColor = drawing.ColorFromHex("1f77b4")

// ChartRenderer renders one line chart per plot. It is stateless apart from
// the canvas size and safe for concurrent use.
type ChartRenderer struct {
	width  int
	height int
}

// NewChartRenderer creates a renderer producing width x height images.
func NewChartRenderer(width, height int) *ChartRenderer {
	return &ChartRenderer{width: width, height: height}
}

// Render implements ports.Renderer.
func (r *ChartRenderer) Render(ctx context.Context, p *plot.Plot) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	segments := finiteSegments(p.XS, p.YS)
	if len(segments) == 0 {
		return nil, ports.ErrNothingToPlot
	}

	xr, err := axisRange(p.XS)
	if err != nil {
		return nil, fmt.Errorf("%w: x %v", ports.ErrNothingToPlot, err)
	}
	yr, err := axisRange(finiteValues(p.YS))
	if err != nil {
		return nil, fmt.Errorf("%w: y %v", ports.ErrNothingToPlot, err)
	}

	series := make([]chart.Series, 0, len(segments))
	for _, s := range segments {
		series = append(series, chart.ContinuousSeries{
			XValues: s.xs,
			YValues: s.ys,
			Style:   segmentStyle(len(s.xs)),
		})
	}

	ch := chart.Chart{
		Title:      p.Function.Literal,
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: "x", Range: xr},
		YAxis:      chart.YAxis{Name: "y", Range: yr},
		Series:     series,
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render %s over %s: %w", p.Function.Literal, p.Range, err)
	}
	return buf.Bytes(), nil
}

type segment struct {
	xs []float64
	ys []float64
}

// finiteSegments splits the curve wherever y is NaN or ±Inf so the drawn
// line never bridges a pole or a gap in the function's domain.
func finiteSegments(xs, ys []float64) []segment {
	var out []segment
	var cur segment
	for i := range xs {
		if isFinite(ys[i]) {
			cur.xs = append(cur.xs, xs[i])
			cur.ys = append(cur.ys, ys[i])
			continue
		}
		if len(cur.xs) > 0 {
			out = append(out, cur)
			cur = segment{}
		}
	}
	if len(cur.xs) > 0 {
		out = append(out, cur)
	}
	return out
}

// segmentStyle draws isolated points as dots, which a zero-length line
// would not show.
func segmentStyle(n int) chart.Style {
	if n == 1 {
		return chart.Style{
			StrokeWidth: 0,
			DotWidth:    4,
			DotColor:    curveColor,
		}
	}
	return chart.Style{
		StrokeColor: curveColor,
		StrokeWidth: 2,
	}
}

// axisRange is the explicit range for a set of finite values. A flat set is
// padded, since go-chart refuses a zero-width range.
func axisRange(vs []float64) (*chart.ContinuousRange, error) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo > hi {
		return nil, fmt.Errorf("no values")
	}

	if lo == hi {
		pad := math.Abs(lo) * 0.1
		if pad == 0 {
			pad = 1
		}
		lo, hi = lo-pad, hi+pad
	}
	if math.IsInf(hi-lo, 0) {
		return nil, fmt.Errorf("span [%g, %g] is too wide to draw", lo, hi)
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}, nil
}

func finiteValues(vs []float64) []float64 {
	out := make([]float64, 0, len(vs))
	for _, v := range vs {
		if isFinite(v) {
			out = append(out, v)
		}
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
