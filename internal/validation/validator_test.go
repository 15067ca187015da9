package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name     string `validate:"required"`
	Mode     string `validate:"oneof=schema text"`
	Language string `validate:"language"`
}

func TestStructPasses(t *testing.T) {
	require.NoError(t, Struct(&sample{Name: "x", Mode: "text", Language: "zh-CN"}))
	require.NoError(t, Struct(&sample{Name: "x", Mode: "schema", Language: ""}))
}

func TestStructCollectsErrors(t *testing.T) {
	err := Struct(&sample{Mode: "json", Language: "fr"})
	require.Error(t, err)

	var verrs Errors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 3)
	assert.Contains(t, err.Error(), "Name is required")
	assert.Contains(t, err.Error(), "Mode must be one of [schema text]")
	assert.Contains(t, err.Error(), "Language must be a supported language")
}
