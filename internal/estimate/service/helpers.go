package service

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/stockadefence/stockade/internal/estimate/domain"
	templatedomain "github.com/stockadefence/stockade/internal/formulatemplate/domain"
	producttypedomain "github.com/stockadefence/stockade/internal/producttype/domain"
)

// templateLookup indexes templates for the two-level resolution rule: the
// style-specific formula wins outright; otherwise the base formula applies.
// Within a slot, higher priority wins (repository orders by priority).
type templateLookup struct {
	base     map[snowflake.ID]*templatedomain.FormulaTemplate
	override map[styleComponentKey]*templatedomain.FormulaTemplate
}

type styleComponentKey struct {
	styleID     snowflake.ID
	componentID snowflake.ID
}

func newTemplateLookup(templates []templatedomain.FormulaTemplate) *templateLookup {
	l := &templateLookup{
		base:     make(map[snowflake.ID]*templatedomain.FormulaTemplate),
		override: make(map[styleComponentKey]*templatedomain.FormulaTemplate),
	}
	for i := range templates {
		tpl := &templates[i]
		if tpl.ProductStyleID == nil || *tpl.ProductStyleID == 0 {
			if _, ok := l.base[tpl.ComponentTypeID]; !ok {
				l.base[tpl.ComponentTypeID] = tpl
			}
			continue
		}
		key := styleComponentKey{styleID: *tpl.ProductStyleID, componentID: tpl.ComponentTypeID}
		if _, ok := l.override[key]; !ok {
			l.override[key] = tpl
		}
	}
	return l
}

func (l *templateLookup) resolve(styleID *snowflake.ID, componentID snowflake.ID) *templatedomain.FormulaTemplate {
	if styleID != nil && *styleID != 0 {
		if tpl, ok := l.override[styleComponentKey{styleID: *styleID, componentID: componentID}]; ok {
			return tpl
		}
	}
	return l.base[componentID]
}

// componentVisible checks the externally configured visibility conditions
// (variable → required value) and the optional filter variable against the
// context. A component with a falsy filter variable is deselected.
func componentVisible(comp producttypedomain.AssignedComponent, fctx *domain.Context) bool {
	for name, want := range comp.VisibilityConditions {
		got, ok := fctx.Value(name)
		if !ok {
			return false
		}
		if !looseEqual(got, want) {
			return false
		}
	}
	if comp.FilterVariable != "" {
		val, ok := fctx.Resolve(comp.FilterVariable)
		if !ok || val == 0 {
			return false
		}
	}
	return true
}

func looseEqual(got, want any) bool {
	gn, gok := domain.CoerceNumber(got)
	wn, wok := domain.CoerceNumber(want)
	if gok && wok {
		return gn == wn
	}
	return fmt.Sprint(got) == fmt.Sprint(want)
}
