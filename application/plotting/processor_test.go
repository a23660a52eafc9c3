package plotting

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plotbot/domain/plot"
	pkgerrors "plotbot/pkg/errors"
)

func newTestProcessor() *Processor {
	return NewProcessor(plot.NewRegistry(), WithIDGenerator(func() string { return "req-1" }))
}

func TestProcess_Success(t *testing.T) {
	p := newTestProcessor()

	result, err := p.Process(context.Background(), "[0:6.28]\nsin(x)")
	require.NoError(t, err)

	assert.Equal(t, "req-1", result.RequestID)
	assert.Equal(t, "sin(x)", result.Function.Literal)
	assert.Equal(t, plot.Range{Min: 0, Max: 6.28}, result.Range)
	require.Len(t, result.XS, 100)
	require.Len(t, result.YS, 100)
	assert.Equal(t, 0.0, result.XS[0])
	assert.InDelta(t, 0.0628, result.XS[1], 1e-12)
	for i, x := range result.XS {
		assert.InDelta(t, math.Sin(x), result.YS[i], 1e-12)
	}
}

func TestProcess_Failures(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		sentinel error
		kind     plot.FailureKind
		stage    string
	}{
		{"reversed range", "[5:1]\ncos(x)", plot.ErrInvalidRange, plot.KindInvalidRange, "validating"},
		{"missing brackets", "0:1\nsin(x)", plot.ErrMalformedCommand, plot.KindMalformedCommand, "parsing"},
		{"unknown function", "[0:1]\nsqrt(x)", plot.ErrUnsupportedFunction, plot.KindUnsupportedFunction, "function_resolving"},
		{"overflowing bound", "[0:1" + strings.Repeat("0", 400) + "]\nexp(x)", plot.ErrInvalidRange, plot.KindInvalidRange, "validating"},
	}

	p := newTestProcessor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.Process(context.Background(), tt.text)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, errors.Is(err, tt.sentinel))

			kind, ok := plot.KindOf(err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, kind)

			var de *pkgerrors.DomainError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.stage, de.Details["stage"])
		})
	}
}

func TestProcess_OutOfDomainValuesPassThrough(t *testing.T) {
	p := newTestProcessor()

	result, err := p.Process(context.Background(), "[-1:1]\narcsin(x)")
	require.NoError(t, err)
	require.Len(t, result.YS, 100)
	for _, y := range result.YS {
		assert.False(t, math.IsNaN(y))
	}

	result, err = p.Process(context.Background(), "[-2:2]\nlog(x)")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(result.YS[0]))
}

func TestProcess_DegenerateIdentity(t *testing.T) {
	p := newTestProcessor()

	result, err := p.Process(context.Background(), "[2:2]\nx")
	require.NoError(t, err)
	assert.Equal(t, []float64{2}, result.XS)
	assert.Equal(t, []float64{2}, result.YS)
}

func TestProcess_UniqueRequestIDs(t *testing.T) {
	p := NewProcessor(plot.NewRegistry())

	const n = 16
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := p.Process(context.Background(), "[0:1]\ncos(x)")
			if assert.NoError(t, err) {
				ids <- result.RequestID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.NotEmpty(t, id)
		assert.False(t, seen[id])
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestProcess_DoesNotMutateSentinels(t *testing.T) {
	p := newTestProcessor()

	_, err := p.Process(context.Background(), "garbage")
	require.Error(t, err)
	assert.Empty(t, plot.ErrMalformedCommand.Details)
}

func TestStage_String(t *testing.T) {
	assert.Equal(t, "parsing", StageParsing.String())
	assert.Equal(t, "done", StageDone.String())
	assert.Equal(t, "unknown", Stage(99).String())
}
