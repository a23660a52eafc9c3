package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `validate:"required,max=5"`
	Mode  string `validate:"oneof=a b"`
	Count int    `validate:"gt=0"`
}

func TestValidateStruct(t *testing.T) {
	require.NoError(t, ValidateStruct(sample{Name: "ok", Mode: "a", Count: 1}))

	err := ValidateStruct(sample{Name: "toolong", Mode: "c", Count: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name must be at most 5")
	assert.Contains(t, err.Error(), "mode must be one of: a b")
	assert.Contains(t, err.Error(), "count must be greater than 0")
}

func TestFieldErrors(t *testing.T) {
	assert.Nil(t, FieldErrors(sample{Name: "ok", Mode: "b", Count: 2}))

	fields := FieldErrors(sample{Mode: "a", Count: 1})
	assert.Equal(t, map[string]string{"name": "name is required"}, fields)
}
