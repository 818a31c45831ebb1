package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Service is the formula engine: context assembly, formula resolution and
// execution, rounding policy, and cross-line-item aggregation. It performs
// read-only configuration lookups and no writes.
type Service interface {
	// BuildMaterialAttributes exposes the stored attributes of each selected
	// material under component-prefixed and bare attribute keys, for use as
	// the material layer of a context.
	BuildMaterialAttributes(ctx context.Context, selections []ComponentSelection) (map[string]any, error)

	// BuildContext assembles the layered namespace for one line item,
	// resolving variable defaults and style adjustments from configuration.
	BuildContext(ctx context.Context, productTypeID snowflake.ID, styleID *snowflake.ID, inputs ProjectInputs, overrides map[string]any, selections []ComponentSelection) (*Context, error)

	// ExecuteAllFormulas runs the resolved formula of every assigned, visible
	// component in display order. Per-component failures become diagnostics,
	// never an error return; the error covers configuration lookups only.
	ExecuteAllFormulas(ctx context.Context, productTypeID snowflake.ID, styleID *snowflake.ID, fctx *Context, selections []ComponentSelection) (ExecResult, error)

	// ApplyRounding fills RoundedValue per the template's rounding level.
	// Project-level rows are marked deferred; their rounding happens against
	// the cross-line-item aggregate.
	ApplyRounding(results []FormulaResult) []FormulaResult

	// Aggregate merges per-line-item results into one material row list,
	// keyed by (component_code, material_sku), carrying forward manual
	// adjustments from previous by key.
	Aggregate(ctx context.Context, lineResults [][]FormulaResult, previous []MaterialRow) ([]MaterialRow, []Diagnostic, error)
}
