package service

import (
	"context"
	"math"

	"github.com/stockadefence/stockade/internal/estimate/domain"
	templatedomain "github.com/stockadefence/stockade/internal/formulatemplate/domain"
	"go.uber.org/zap"
)

// Aggregate merges per-line-item results into one material row list, keyed
// by (component_code, material_sku). For project-level rows the rounded
// quantity is the ceiling of the summed raw values, not the sum of per-line
// ceilings. Sku-level rows sum their per-line rounded values. Manual
// adjustments are carried forward from previous by key; rows whose key no
// longer appears are dropped outright.
func (s *Service) Aggregate(
	ctx context.Context,
	lineResults [][]domain.FormulaResult,
	previous []domain.MaterialRow,
) ([]domain.MaterialRow, []domain.Diagnostic, error) {
	merged := make(map[string]*domain.MaterialRow)
	var order []string

	for _, results := range lineResults {
		for _, res := range results {
			if res.MaterialSKU == "" {
				continue
			}
			key := res.ComponentCode + "|" + res.MaterialSKU
			row, ok := merged[key]
			if !ok {
				row = &domain.MaterialRow{
					ComponentCode: res.ComponentCode,
					MaterialSKU:   res.MaterialSKU,
					Description:   res.ComponentName,
					Unit:          res.Unit,
					IsLabor:       res.IsLabor,
					RoundingLevel: res.RoundingLevel,
				}
				merged[key] = row
				order = append(order, key)
			}
			row.CalculatedQty += res.RawValue
			switch res.RoundingLevel {
			case templatedomain.RoundingProject:
				row.RoundedQty = math.Ceil(row.CalculatedQty)
			case templatedomain.RoundingNone:
				row.RoundedQty = row.CalculatedQty
			default: // sku: each line item rounded independently
				row.RoundedQty += res.RoundedValue
			}
		}
	}

	skus := make([]string, 0, len(order))
	seen := make(map[string]bool, len(order))
	for _, key := range order {
		sku := merged[key].MaterialSKU
		if !seen[sku] {
			seen[sku] = true
			skus = append(skus, sku)
		}
	}
	materials, err := s.materialRepo.ListBySKUs(ctx, s.db, skus)
	if err != nil {
		return nil, nil, err
	}
	bySKU := make(map[string]int, len(materials))
	for i, m := range materials {
		bySKU[m.SKU] = i
	}

	prevAdjustment := make(map[string]float64, len(previous))
	for _, row := range previous {
		if row.Adjustment != 0 {
			prevAdjustment[row.Key()] = row.Adjustment
		}
	}

	rows := make([]domain.MaterialRow, 0, len(order))
	var diags []domain.Diagnostic
	for _, key := range order {
		row := merged[key]
		idx, ok := bySKU[row.MaterialSKU]
		if !ok {
			// A zero-cost row would silently understate the estimate; skip
			// the row and report it instead.
			diags = append(diags, domain.Diagnostic{
				ComponentCode: row.ComponentCode,
				Code:          domain.DiagMissingMaterial,
				Message:       "material " + row.MaterialSKU + " not found in catalog",
			})
			s.log.Warn("material missing from catalog",
				zap.String("component", row.ComponentCode),
				zap.String("sku", row.MaterialSKU))
			continue
		}
		mat := materials[idx]
		row.Description = mat.Name
		if mat.Unit != "" {
			row.Unit = mat.Unit
		}
		row.IsLabor = row.IsLabor || mat.IsLabor
		row.UnitCost = mat.UnitCost
		if adj, ok := prevAdjustment[key]; ok {
			row.Adjustment = adj
		}
		row.RecomputeTotals()
		rows = append(rows, *row)
	}

	return rows, diags, nil
}
