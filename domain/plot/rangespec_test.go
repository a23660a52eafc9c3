package plot

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		name    string
		min     string
		max     string
		want    Range
		wantErr bool
	}{
		{name: "ordered", min: "0", max: "6.28", want: Range{Min: 0, Max: 6.28}},
		{name: "negative", min: "-10", max: "-2", want: Range{Min: -10, Max: -2}},
		{name: "trailing dot", min: "1.", max: "2.", want: Range{Min: 1, Max: 2}},
		{name: "degenerate", min: "2", max: "2", want: Range{Min: 2, Max: 2}},
		{name: "reversed", min: "5", max: "1", wantErr: true},
		{name: "not a number", min: "abc", max: "1", wantErr: true},
		{name: "empty max", min: "0", max: "", wantErr: true},
		{name: "overflowing digits", min: "0", max: "1" + strings.Repeat("0", 400), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRange(tt.min, tt.max)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidRange))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRange_DoesNotMutateSentinel(t *testing.T) {
	_, err := ParseRange("9", "1")
	require.Error(t, err)

	assert.Empty(t, ErrInvalidRange.Details)
}

func TestRange_IsDegenerate(t *testing.T) {
	assert.True(t, Range{Min: 3, Max: 3}.IsDegenerate())
	assert.False(t, Range{Min: 3, Max: 4}.IsDegenerate())
}
