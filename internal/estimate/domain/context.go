package domain

import (
	"strconv"
)

// Reserved context keys carrying per-line-item project inputs. They outrank
// every other layer, including style adjustments.
const (
	KeyQuantity = "Quantity"
	KeyLines    = "Lines"
	KeyGates    = "Gates"
	KeyHeight   = "Height"
)

// Context is the immutable layered variable namespace one evaluation pass
// reads from, plus the mutable set of component results computed so far.
// Layer precedence, lowest to highest: variables, material attributes, style
// adjustments, reserved project inputs. Computed results shadow all layers,
// which is what lets a picket formula read [post_count] set by the post
// formula earlier in the pass.
type Context struct {
	values   map[string]any
	computed map[string]float64
}

// NewContext builds the namespace for one line item. Later maps overwrite
// same-named keys from earlier ones.
func NewContext(inputs ProjectInputs, variables, materialAttrs, styleAdjustments map[string]any) *Context {
	values := make(map[string]any, len(variables)+len(materialAttrs)+len(styleAdjustments)+4)
	for _, layer := range []map[string]any{variables, materialAttrs, styleAdjustments} {
		for k, v := range layer {
			values[k] = v
		}
	}
	values[KeyQuantity] = inputs.NetLength
	values[KeyLines] = inputs.Lines
	values[KeyGates] = inputs.Gates
	values[KeyHeight] = inputs.Height

	return &Context{
		values:   values,
		computed: make(map[string]float64),
	}
}

// Resolve implements formula.Resolver.
func (c *Context) Resolve(name string) (float64, bool) {
	if v, ok := c.computed[name]; ok {
		return v, true
	}
	raw, ok := c.values[name]
	if !ok {
		return 0, false
	}
	return CoerceNumber(raw)
}

// Value returns the raw (possibly non-numeric) bound value. Visibility
// conditions compare against this.
func (c *Context) Value(name string) (any, bool) {
	if v, ok := c.computed[name]; ok {
		return v, true
	}
	v, ok := c.values[name]
	return v, ok
}

// SetComputed records a component result so later formulas in the same pass
// can reference it.
func (c *Context) SetComputed(name string, value float64) {
	c.computed[name] = value
}

// CoerceNumber converts the loosely typed values a context is built from
// (JSON numbers, ints, numeric strings) to float64.
func CoerceNumber(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
