package service

import (
	"math"

	"github.com/stockadefence/stockade/internal/estimate/domain"
	templatedomain "github.com/stockadefence/stockade/internal/formulatemplate/domain"
)

// ApplyRounding fills RoundedValue for one execution pass. Sku-level rows
// round up immediately and independently per line item. Project-level rows
// keep their raw value and are marked deferred: the invariant is
// ceil(sum of raws) across line items, which only aggregation can compute.
func (s *Service) ApplyRounding(results []domain.FormulaResult) []domain.FormulaResult {
	out := make([]domain.FormulaResult, len(results))
	for i, res := range results {
		switch res.RoundingLevel {
		case templatedomain.RoundingProject:
			res.RoundedValue = res.RawValue
			res.Deferred = true
		case templatedomain.RoundingNone:
			res.RoundedValue = res.RawValue
		default: // sku
			res.RoundedValue = math.Ceil(res.RawValue)
		}
		out[i] = res
	}
	return out
}
