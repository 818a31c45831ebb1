// Package service implements the formula engine: context assembly, formula
// resolution and execution, rounding policy, and aggregation.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/stockadefence/stockade/internal/config"
	"github.com/stockadefence/stockade/internal/estimate/domain"
	"github.com/stockadefence/stockade/internal/formula"
	templatedomain "github.com/stockadefence/stockade/internal/formulatemplate/domain"
	materialdomain "github.com/stockadefence/stockade/internal/material/domain"
	producttypedomain "github.com/stockadefence/stockade/internal/producttype/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger
	cfg *config.Config

	productTypeRepo producttypedomain.Repository
	templateRepo    templatedomain.Repository
	materialRepo    materialdomain.Repository
}

type Params struct {
	fx.In

	DB              *gorm.DB
	Log             *zap.Logger
	Cfg             *config.Config
	ProductTypeRepo producttypedomain.Repository
	TemplateRepo    templatedomain.Repository
	MaterialRepo    materialdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("estimate.service"),
		cfg: p.Cfg,

		productTypeRepo: p.ProductTypeRepo,
		templateRepo:    p.TemplateRepo,
		materialRepo:    p.MaterialRepo,
	}
}

func (s *Service) BuildMaterialAttributes(ctx context.Context, selections []domain.ComponentSelection) (map[string]any, error) {
	skus := make([]string, 0, len(selections))
	for _, sel := range selections {
		if sel.MaterialSKU != "" {
			skus = append(skus, sel.MaterialSKU)
		}
	}
	materials, err := s.materialRepo.ListBySKUs(ctx, s.db, skus)
	if err != nil {
		return nil, err
	}
	bySKU := make(map[string]materialdomain.Material, len(materials))
	for _, m := range materials {
		bySKU[m.SKU] = m
	}

	attrs := make(map[string]any)
	for _, sel := range selections {
		mat, ok := bySKU[sel.MaterialSKU]
		if !ok {
			continue
		}
		for name, value := range mat.Attributes {
			// Component-prefixed key is authoritative; the bare attribute
			// name is kept for single-material formulas and may be
			// overwritten by a later selection.
			attrs[sel.ComponentCode+"_"+name] = value
			attrs[name] = value
		}
	}
	return attrs, nil
}

func (s *Service) BuildContext(
	ctx context.Context,
	productTypeID snowflake.ID,
	styleID *snowflake.ID,
	inputs domain.ProjectInputs,
	overrides map[string]any,
	selections []domain.ComponentSelection,
) (*domain.Context, error) {
	pt, err := s.productTypeRepo.FindProductTypeByID(ctx, s.db, productTypeID)
	if err != nil {
		return nil, err
	}
	if pt == nil {
		return nil, domain.ErrProductTypeNotFound
	}

	variables, err := s.productTypeRepo.ListVariables(ctx, s.db, productTypeID)
	if err != nil {
		return nil, err
	}
	values := make(map[string]any, len(variables)+len(overrides))
	for _, v := range variables {
		if v.DefaultValue == "" {
			continue
		}
		if num, ok := domain.CoerceNumber(v.DefaultValue); ok && v.VariableType != producttypedomain.VariableTypeText {
			values[v.Name] = num
		} else {
			values[v.Name] = v.DefaultValue
		}
	}
	for k, v := range overrides {
		values[k] = v
	}

	materialAttrs, err := s.BuildMaterialAttributes(ctx, selections)
	if err != nil {
		return nil, err
	}

	var styleAdjustments map[string]any
	if styleID != nil && *styleID != 0 {
		style, err := s.productTypeRepo.FindStyleByID(ctx, s.db, *styleID)
		if err != nil {
			return nil, err
		}
		if style == nil {
			return nil, domain.ErrStyleNotFound
		}
		styleAdjustments = style.FormulaAdjustments
	}

	return domain.NewContext(inputs, values, materialAttrs, styleAdjustments), nil
}

func (s *Service) ExecuteAllFormulas(
	ctx context.Context,
	productTypeID snowflake.ID,
	styleID *snowflake.ID,
	fctx *domain.Context,
	selections []domain.ComponentSelection,
) (domain.ExecResult, error) {
	components, err := s.productTypeRepo.ListAssignedComponents(ctx, s.db, productTypeID)
	if err != nil {
		return domain.ExecResult{}, err
	}

	templates, err := s.templateRepo.ListForProductType(ctx, s.db, productTypeID)
	if err != nil {
		return domain.ExecResult{}, err
	}
	lookup := newTemplateLookup(templates)

	skuByComponent := make(map[string]string, len(selections))
	for _, sel := range selections {
		skuByComponent[sel.ComponentCode] = sel.MaterialSKU
	}

	// Component codes in this pass, to tell a forward reference to a
	// later-running component's quantity apart from a plain unbound variable.
	passComponents := make(map[string]bool, len(components))
	for _, comp := range components {
		passComponents[comp.ComponentCode] = true
	}

	strict := s.cfg != nil && s.cfg.StrictVariables()

	var out domain.ExecResult
	for _, comp := range components {
		if !componentVisible(comp, fctx) {
			continue
		}

		tpl := lookup.resolve(styleID, comp.ComponentTypeID)
		if tpl == nil {
			out.Diagnostics = append(out.Diagnostics, domain.Diagnostic{
				ComponentCode: comp.ComponentCode,
				Code:          domain.DiagUnconfigured,
				Message:       "no base or style formula configured",
			})
			continue
		}

		eval, err := formula.Evaluate(tpl.FormulaText, fctx)
		if err != nil {
			out.Diagnostics = append(out.Diagnostics, domain.Diagnostic{
				ComponentCode: comp.ComponentCode,
				Code:          domain.DiagEvalError,
				Message:       err.Error(),
				FormulaText:   tpl.FormulaText,
			})
			s.log.Warn("formula evaluation failed",
				zap.String("component", comp.ComponentCode),
				zap.String("formula", tpl.FormulaText),
				zap.Error(err))
			continue
		}

		if len(eval.Missing) > 0 {
			if strict {
				out.Diagnostics = append(out.Diagnostics, domain.Diagnostic{
					ComponentCode: comp.ComponentCode,
					Code:          domain.DiagEvalError,
					Message:       fmt.Sprintf("unbound variables: %v", eval.Missing),
					FormulaText:   tpl.FormulaText,
				})
				continue
			}
			for _, name := range eval.Missing {
				code := domain.DiagMissingVariable
				msg := fmt.Sprintf("variable %q is unbound, defaulted to 0", name)
				if ref, ok := strings.CutSuffix(name, "_count"); ok && passComponents[ref] {
					code = domain.DiagStaleReference
					msg = fmt.Sprintf("%q runs later in the pass; [%s] read 0", ref, name)
				}
				out.Diagnostics = append(out.Diagnostics, domain.Diagnostic{
					ComponentCode: comp.ComponentCode,
					Code:          code,
					Message:       msg,
					FormulaText:   tpl.FormulaText,
				})
			}
		}

		out.Results = append(out.Results, domain.FormulaResult{
			ComponentCode: comp.ComponentCode,
			ComponentName: comp.ComponentName,
			MaterialSKU:   skuByComponent[comp.ComponentCode],
			Unit:          comp.Unit,
			IsLabor:       comp.IsLabor,
			RawValue:      eval.Value,
			RoundingLevel: tpl.RoundingLevel,
			FormulaText:   tpl.FormulaText,
		})

		// Later formulas in this pass may reference this result, e.g.
		// [post_count]. Execution order is the configured display order;
		// referencing a component that runs later reads zero.
		fctx.SetComputed(comp.ComponentCode+"_count", eval.Value)
	}

	return out, nil
}
