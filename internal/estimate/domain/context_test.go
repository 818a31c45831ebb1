package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextLayerPrecedence(t *testing.T) {
	inputs := ProjectInputs{NetLength: 95, Lines: 2, Gates: 1, Height: 6}
	variables := map[string]any{
		"picket_multiplier": 1.0,
		"post_spacing":      8.0,
		"Quantity":          999.0, // reserved input must win
	}
	materialAttrs := map[string]any{
		"post_spacing": 10.0, // overwrites the variable default
		"width":        5.5,
	}
	styleAdjustments := map[string]any{
		"picket_multiplier": 1.11, // style wins over variable default
		"Lines":             42.0, // reserved input must win
	}

	ctx := NewContext(inputs, variables, materialAttrs, styleAdjustments)

	cases := map[string]float64{
		KeyQuantity:         95,
		KeyLines:            2,
		KeyGates:            1,
		KeyHeight:           6,
		"picket_multiplier": 1.11,
		"post_spacing":      10,
		"width":             5.5,
	}
	for name, want := range cases {
		got, ok := ctx.Resolve(name)
		require.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}
}

func TestContextComputedShadowsLayers(t *testing.T) {
	ctx := NewContext(ProjectInputs{}, map[string]any{"post_count": 0.0}, nil, nil)

	got, ok := ctx.Resolve("post_count")
	require.True(t, ok)
	assert.Equal(t, 0.0, got)

	ctx.SetComputed("post_count", 13)
	got, ok = ctx.Resolve("post_count")
	require.True(t, ok)
	assert.Equal(t, 13.0, got)
}

func TestContextMissingVariable(t *testing.T) {
	ctx := NewContext(ProjectInputs{}, nil, nil, nil)
	_, ok := ctx.Resolve("nope")
	assert.False(t, ok)
}

func TestContextStringCoercion(t *testing.T) {
	ctx := NewContext(ProjectInputs{}, map[string]any{"spacing": "8", "label": "cedar"}, nil, nil)

	got, ok := ctx.Resolve("spacing")
	require.True(t, ok)
	assert.Equal(t, 8.0, got)

	// Non-numeric strings stay visible as raw values but do not resolve.
	_, ok = ctx.Resolve("label")
	assert.False(t, ok)
	raw, ok := ctx.Value("label")
	require.True(t, ok)
	assert.Equal(t, "cedar", raw)
}
