// Package domain defines the formula engine's value types: evaluation
// contexts, per-component results, diagnostics, and aggregated material rows.
package domain

import (
	"errors"

	"github.com/shopspring/decimal"
	templatedomain "github.com/stockadefence/stockade/internal/formulatemplate/domain"
)

var (
	ErrProductTypeNotFound = errors.New("product_type_not_found")
	ErrStyleNotFound       = errors.New("style_not_found")
)

// ProjectInputs are the direct per-line-item inputs. They are injected into
// the formula context under reserved names (Quantity, Lines, Gates, Height)
// that outrank every other layer.
type ProjectInputs struct {
	NetLength float64 `json:"net_length"`
	Lines     float64 `json:"lines"`
	Gates     float64 `json:"gates"`
	Height    float64 `json:"height"`
}

// ComponentSelection binds a component to the material chosen for it.
type ComponentSelection struct {
	ComponentCode string `json:"component_code"`
	MaterialSKU   string `json:"material_sku"`
}

// FormulaResult is the outcome of evaluating one component's formula for one
// line item. RawValue is pre-rounding; RoundedValue is filled by the rounding
// applier except for project-level rows, whose rounding is deferred to
// aggregation (Deferred=true).
type FormulaResult struct {
	ComponentCode string                       `json:"component_code"`
	ComponentName string                       `json:"component_name"`
	MaterialSKU   string                       `json:"material_sku,omitempty"`
	Unit          string                       `json:"unit,omitempty"`
	IsLabor       bool                         `json:"is_labor"`
	RawValue      float64                      `json:"raw_value"`
	RoundedValue  float64                      `json:"rounded_value"`
	RoundingLevel templatedomain.RoundingLevel `json:"rounding_level"`
	FormulaText   string                       `json:"formula_used"`
	Deferred      bool                         `json:"-"`
}

// DiagnosticCode classifies per-component problems. Diagnostics never abort a
// calculation pass; a partially misconfigured project still yields a
// best-effort BOM plus this list.
type DiagnosticCode string

const (
	DiagUnconfigured    DiagnosticCode = "unconfigured_component"
	DiagEvalError       DiagnosticCode = "formula_evaluation_error"
	DiagMissingVariable DiagnosticCode = "missing_variable"
	DiagMissingMaterial DiagnosticCode = "missing_material"
	DiagStaleReference  DiagnosticCode = "forward_reference"
)

// Diagnostic is a structured per-component problem report.
type Diagnostic struct {
	ComponentCode string         `json:"component_code"`
	Code          DiagnosticCode `json:"code"`
	Message       string         `json:"message"`
	FormulaText   string         `json:"formula_text,omitempty"`
}

// ExecResult bundles one execution pass's results and diagnostics.
type ExecResult struct {
	Results     []FormulaResult `json:"results"`
	Diagnostics []Diagnostic    `json:"diagnostics,omitempty"`
}

// MaterialRow is one aggregated row per (component_code, material_sku) pair
// across all line items of a project. Adjustment is the only field preserved
// across recalculation passes; everything else is recomputed.
type MaterialRow struct {
	ComponentCode string                       `json:"component_code"`
	MaterialSKU   string                       `json:"material_sku"`
	Description   string                       `json:"description"`
	Unit          string                       `json:"unit,omitempty"`
	IsLabor       bool                         `json:"is_labor"`
	RoundingLevel templatedomain.RoundingLevel `json:"rounding_level"`
	CalculatedQty float64                      `json:"calculated_qty"`
	RoundedQty    float64                      `json:"rounded_qty"`
	Adjustment    float64                      `json:"adjustment"`
	TotalQty      float64                      `json:"total_qty"`
	UnitCost      decimal.Decimal              `json:"unit_cost"`
	TotalCost     decimal.Decimal              `json:"total_cost"`
}

// Key identifies the row across passes; adjustments are matched by it.
func (r MaterialRow) Key() string {
	return r.ComponentCode + "|" + r.MaterialSKU
}

// RecomputeTotals re-derives TotalQty and TotalCost after RoundedQty or
// Adjustment changes.
func (r *MaterialRow) RecomputeTotals() {
	r.TotalQty = r.RoundedQty + r.Adjustment
	r.TotalCost = decimal.NewFromFloat(r.TotalQty).Mul(r.UnitCost).Round(2)
}
