package domain

import (
	"context"
	"errors"

	estimatedomain "github.com/stockadefence/stockade/internal/estimate/domain"
)

var (
	ErrInvalidProject  = errors.New("invalid_project_id")
	ErrProjectNotFound = errors.New("project_not_found")
	ErrRowNotFound     = errors.New("material_row_not_found")
	// ErrPassSuperseded means a newer recalculation started for the same
	// project while this one was running; the stale pass discards its
	// output instead of racing the newer one.
	ErrPassSuperseded = errors.New("pass_superseded")
)

// RecalculateResponse is one completed calculation pass.
type RecalculateResponse struct {
	PassID      string                       `json:"pass_id"`
	Rows        []estimatedomain.MaterialRow `json:"rows"`
	Diagnostics []estimatedomain.Diagnostic  `json:"diagnostics,omitempty"`
}

type SetAdjustmentRequest struct {
	ComponentCode string  `json:"component_code"`
	MaterialSKU   string  `json:"material_sku"`
	Adjustment    float64 `json:"adjustment"`
}

type Service interface {
	// Recalculate runs the full pipeline for every line item of the project
	// and atomically replaces the stored material list, preserving manual
	// adjustments by (component, sku) key.
	Recalculate(ctx context.Context, projectID string) (*RecalculateResponse, error)
	Materials(ctx context.Context, projectID string) ([]estimatedomain.MaterialRow, error)
	// SetAdjustment records a manual quantity delta on one row and
	// re-derives its totals. The delta is sticky across recalculations.
	SetAdjustment(ctx context.Context, projectID string, req SetAdjustmentRequest) (*estimatedomain.MaterialRow, error)
}
