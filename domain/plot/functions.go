package plot

import (
	"math"
	"strings"
)

// Transform maps one domain value to one plotted value. Out-of-domain inputs
// return NaN or ±Inf rather than failing.
type Transform func(float64) float64

// Function is a registry entry.
type Function struct {
	// Name is the bare function name, e.g. "sin" or "x" for identity.
	Name string `json:"name"`
	// Literal is the exact text a command must carry, e.g. "sin(x)".
	Literal string `json:"literal"`

	apply Transform
}

// Apply evaluates the function at a single point.
func (f Function) Apply(x float64) float64 {
	return f.apply(x)
}

// Evaluate applies the function elementwise; the result has len(xs) values.
func (f Function) Evaluate(xs []float64) []float64 {
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = f.apply(x)
	}
	return ys
}

// Slug is a filesystem and object-key safe form of the function name.
func (f Function) Slug() string {
	return strings.ToLower(f.Name)
}

// Registry is the closed set of plottable functions. It is immutable after
// NewRegistry returns and safe for concurrent use.
type Registry struct {
	byLiteral map[string]Function
	ordered   []Function
}

type registryOptions struct {
	base2Log2 bool
}

// RegistryOption customizes the registry at construction.
type RegistryOption func(*registryOptions)

// WithBase2Log2 makes log2(x) a base-2 logarithm. Without it log2(x) is the
// natural logarithm, matching the behaviour users of the chat bot already see.
func WithBase2Log2() RegistryOption {
	return func(o *registryOptions) {
		o.base2Log2 = true
	}
}

// NewRegistry builds the function table.
func NewRegistry(opts ...RegistryOption) *Registry {
	var o registryOptions
	for _, opt := range opts {
		opt(&o)
	}

	log2 := math.Log
	if o.base2Log2 {
		log2 = math.Log2
	}

	entries := []struct {
		name  string
		apply Transform
	}{
		{"sin", math.Sin},
		{"cos", math.Cos},
		{"tan", math.Tan},
		{"arcsin", math.Asin},
		{"arccos", math.Acos},
		{"arctan", math.Atan},
		{"exp", math.Exp},
		{"log", math.Log},
		{"log2", log2},
		{"log10", math.Log10},
		{"sinh", math.Sinh},
		{"cosh", math.Cosh},
		{"tanh", math.Tanh},
		{"arcsinh", math.Asinh},
		{"arccosh", math.Acosh},
		{"arctanh", math.Atanh},
		{"floor", math.Floor},
		{"round", math.RoundToEven},
		{"fix", math.Trunc},
	}

	r := &Registry{
		byLiteral: make(map[string]Function, len(entries)+1),
		ordered:   make([]Function, 0, len(entries)+1),
	}
	r.add(Function{Name: "x", Literal: "x", apply: func(x float64) float64 { return x }})
	for _, e := range entries {
		r.add(Function{Name: e.name, Literal: e.name + "(x)", apply: e.apply})
	}
	return r
}

func (r *Registry) add(f Function) {
	r.byLiteral[f.Literal] = f
	r.ordered = append(r.ordered, f)
}

// Lookup resolves an exact command literal such as "cos(x)".
func (r *Registry) Lookup(literal string) (Function, error) {
	f, ok := r.byLiteral[literal]
	if !ok {
		return Function{}, ErrUnsupportedFunction.Clone().WithDetail("function", literal)
	}
	return f, nil
}

// Functions lists every entry in registration order.
func (r *Registry) Functions() []Function {
	out := make([]Function, len(r.ordered))
	copy(out, r.ordered)
	return out
}
