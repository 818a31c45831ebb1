// Package seed loads a demo fencing catalog so a fresh install has something
// to calculate against: one wood product type, two styles, the standard
// component set with formulas, and a small material list.
package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	templatedomain "github.com/stockadefence/stockade/internal/formulatemplate/domain"
	materialdomain "github.com/stockadefence/stockade/internal/material/domain"
	producttypedomain "github.com/stockadefence/stockade/internal/producttype/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EnsureDemoCatalog seeds the demo catalog. Safe to run repeatedly; existing
// rows are matched by code or SKU and left alone.
func EnsureDemoCatalog(db *gorm.DB, node *snowflake.Node) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if node == nil {
		return errors.New("seed id node is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		productTypeID, err := ensureProductType(tx, node, "Wood Vertical", "wood")
		if err != nil {
			return err
		}

		if _, err := ensureStyle(tx, node, productTypeID, "Standard", nil); err != nil {
			return err
		}
		neighborID, err := ensureStyle(tx, node, productTypeID, "Good Neighbor",
			datatypes.JSONMap{"picket_multiplier": 1.11})
		if err != nil {
			return err
		}

		variables := []producttypedomain.Variable{
			{Name: "post_spacing", Label: "Post Spacing (ft)", VariableType: producttypedomain.VariableTypeNumber, DefaultValue: "8", DisplayOrder: 10},
			{Name: "picket_multiplier", Label: "Picket Multiplier", VariableType: producttypedomain.VariableTypeNumber, DefaultValue: "1", DisplayOrder: 20},
			{Name: "rail_count", Label: "Rails per Section", VariableType: producttypedomain.VariableTypeNumber, DefaultValue: "2", DisplayOrder: 30},
		}
		for _, v := range variables {
			if err := ensureVariable(tx, node, productTypeID, v); err != nil {
				return err
			}
		}

		type componentSpec struct {
			name    string
			unit    string
			order   int
			isLabor bool
			formula string
			level   templatedomain.RoundingLevel
		}
		components := []componentSpec{
			{"Line Post", "ea", 10, false, "ROUNDUP([Quantity]/[post_spacing])+1+[Gates]", templatedomain.RoundingSku},
			{"Rail", "ea", 20, false, "ROUNDUP([Quantity]/[post_spacing])*[rail_count]", templatedomain.RoundingSku},
			{"Picket", "ea", 30, false, "ROUNDUP([Quantity]*12/[picket_width]*[picket_multiplier])", templatedomain.RoundingSku},
			{"Concrete Bag", "bag", 40, false, "[line-post_count]*0.6", templatedomain.RoundingProject},
			{"Install Labor", "hr", 50, true, "[Quantity]*0.25", templatedomain.RoundingNone},
		}
		for _, c := range components {
			componentID, err := ensureComponent(tx, node, productTypeID, c.name, c.unit, c.order, c.isLabor)
			if err != nil {
				return err
			}
			if err := ensureTemplate(tx, node, productTypeID, nil, componentID, c.formula, c.level); err != nil {
				return err
			}
		}

		// Good Neighbor pickets alternate sides, so the multiplier applies
		// after the per-foot rounding rather than inside it.
		picketID, err := ensureComponent(tx, node, productTypeID, "Picket", "ea", 30, false)
		if err != nil {
			return err
		}
		if err := ensureTemplate(tx, node, productTypeID, &neighborID, picketID,
			"ROUNDUP([Quantity]*12/[picket_width])*[picket_multiplier]", templatedomain.RoundingSku); err != nil {
			return err
		}

		materials := []materialdomain.Material{
			{SKU: "POST-4X4-8", Name: "4x4x8 Treated Post", Category: "lumber", Subcategory: "posts", Unit: "ea", UnitCost: mustDecimal("12.50"), Attributes: datatypes.JSONMap{"length": 8}},
			{SKU: "RAIL-2X4-8", Name: "2x4x8 Treated Rail", Category: "lumber", Subcategory: "rails", Unit: "ea", UnitCost: mustDecimal("5.75"), Attributes: datatypes.JSONMap{"length": 8}},
			{SKU: "PICKET-CEDAR-55", Name: "Cedar Picket 5.5in", Category: "lumber", Subcategory: "pickets", Unit: "ea", UnitCost: mustDecimal("2.25"), Attributes: datatypes.JSONMap{"width": 5.5}},
			{SKU: "PICKET-CEDAR-35", Name: "Cedar Picket 3.5in", Category: "lumber", Subcategory: "pickets", Unit: "ea", UnitCost: mustDecimal("1.80"), Attributes: datatypes.JSONMap{"width": 3.5}},
			{SKU: "CONCRETE-60", Name: "Concrete 60lb Bag", Category: "concrete", Unit: "bag", UnitCost: mustDecimal("6.00")},
			{SKU: "LABOR-INSTALL", Name: "Installation Labor", Category: "labor", Unit: "hr", UnitCost: mustDecimal("55.00"), IsLabor: true},
		}
		for _, m := range materials {
			if err := ensureMaterial(tx, node, m); err != nil {
				return err
			}
		}

		rules := []materialdomain.EligibilityRule{
			{Category: "lumber", Subcategory: "posts"},
			{Category: "lumber", Subcategory: "rails"},
			{Category: "lumber", Subcategory: "pickets"},
			{Category: "concrete"},
			{Category: "labor"},
		}
		ruleComponents := []string{"line-post", "rail", "picket", "concrete-bag", "install-labor"}
		for i, r := range rules {
			componentID, err := findComponentID(tx, ruleComponents[i])
			if err != nil {
				return err
			}
			r.ComponentTypeID = componentID
			if err := ensureRule(tx, node, r); err != nil {
				return err
			}
		}

		return nil
	})
}

func ensureProductType(tx *gorm.DB, node *snowflake.Node, name, category string) (snowflake.ID, error) {
	code := slug.Make(name)
	var existing producttypedomain.ProductType
	err := tx.Where("code = ?", code).First(&existing).Error
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	created := producttypedomain.ProductType{
		ID: node.Generate(), Code: code, Name: name, Category: category, Active: true,
	}
	return created.ID, tx.Create(&created).Error
}

func ensureStyle(tx *gorm.DB, node *snowflake.Node, productTypeID snowflake.ID, name string, adjustments datatypes.JSONMap) (snowflake.ID, error) {
	code := slug.Make(name)
	var existing producttypedomain.ProductStyle
	err := tx.Where("product_type_id = ? AND code = ?", productTypeID, code).First(&existing).Error
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	created := producttypedomain.ProductStyle{
		ID: node.Generate(), ProductTypeID: productTypeID, Code: code, Name: name,
		FormulaAdjustments: adjustments, Active: true,
	}
	return created.ID, tx.Create(&created).Error
}

func ensureVariable(tx *gorm.DB, node *snowflake.Node, productTypeID snowflake.ID, v producttypedomain.Variable) error {
	var existing producttypedomain.Variable
	err := tx.Where("product_type_id = ? AND name = ?", productTypeID, v.Name).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	v.ID = node.Generate()
	v.ProductTypeID = productTypeID
	return tx.Create(&v).Error
}

func ensureComponent(tx *gorm.DB, node *snowflake.Node, productTypeID snowflake.ID, name, unit string, order int, isLabor bool) (snowflake.ID, error) {
	code := slug.Make(name)
	var existing producttypedomain.ComponentType
	err := tx.Where("code = ?", code).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		existing = producttypedomain.ComponentType{ID: node.Generate(), Code: code, Name: name, Unit: unit}
		if err := tx.Create(&existing).Error; err != nil {
			return 0, err
		}
	} else if err != nil {
		return 0, err
	}

	var assignment producttypedomain.ComponentAssignment
	err = tx.Where("product_type_id = ? AND component_type_id = ?", productTypeID, existing.ID).First(&assignment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		assignment = producttypedomain.ComponentAssignment{
			ID: node.Generate(), ProductTypeID: productTypeID, ComponentTypeID: existing.ID,
			DisplayOrder: order, IsLabor: isLabor,
		}
		if err := tx.Create(&assignment).Error; err != nil {
			return 0, err
		}
	} else if err != nil {
		return 0, err
	}

	return existing.ID, nil
}

func findComponentID(tx *gorm.DB, code string) (snowflake.ID, error) {
	var existing producttypedomain.ComponentType
	if err := tx.Where("code = ?", code).First(&existing).Error; err != nil {
		return 0, err
	}
	return existing.ID, nil
}

func ensureTemplate(tx *gorm.DB, node *snowflake.Node, productTypeID snowflake.ID, styleID *snowflake.ID, componentID snowflake.ID, formulaText string, level templatedomain.RoundingLevel) error {
	query := tx.Where("product_type_id = ? AND component_type_id = ?", productTypeID, componentID)
	if styleID == nil {
		query = query.Where("product_style_id IS NULL")
	} else {
		query = query.Where("product_style_id = ?", *styleID)
	}

	var existing templatedomain.FormulaTemplate
	err := query.First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return tx.Create(&templatedomain.FormulaTemplate{
		ID: node.Generate(), ProductTypeID: productTypeID, ProductStyleID: styleID,
		ComponentTypeID: componentID, FormulaText: formulaText, RoundingLevel: level, Active: true,
	}).Error
}

func ensureMaterial(tx *gorm.DB, node *snowflake.Node, m materialdomain.Material) error {
	var existing materialdomain.Material
	err := tx.Where("sku = ?", m.SKU).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	m.ID = node.Generate()
	m.Active = true
	return tx.Create(&m).Error
}

func ensureRule(tx *gorm.DB, node *snowflake.Node, r materialdomain.EligibilityRule) error {
	var existing materialdomain.EligibilityRule
	err := tx.Where("component_type_id = ? AND category = ? AND subcategory = ?",
		r.ComponentTypeID, r.Category, r.Subcategory).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	r.ID = node.Generate()
	return tx.Create(&r).Error
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}
