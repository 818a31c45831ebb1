package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/stockadefence/stockade/internal/producttype/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindProductTypeByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.ProductType, error) {
	var pt domain.ProductType
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, name, category, active, created_at, updated_at
		 FROM product_types WHERE id = ?`,
		id,
	).Scan(&pt).Error
	if err != nil {
		return nil, err
	}
	if pt.ID == 0 {
		return nil, nil
	}
	return &pt, nil
}

func (r *repo) FindProductTypeByCode(ctx context.Context, db *gorm.DB, code string) (*domain.ProductType, error) {
	var pt domain.ProductType
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, name, category, active, created_at, updated_at
		 FROM product_types WHERE code = ? LIMIT 1`,
		code,
	).Scan(&pt).Error
	if err != nil {
		return nil, err
	}
	if pt.ID == 0 {
		return nil, nil
	}
	return &pt, nil
}

func (r *repo) FindStyleByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.ProductStyle, error) {
	var style domain.ProductStyle
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&style).Error
	if err != nil {
		return nil, err
	}
	if style.ID == 0 {
		return nil, nil
	}
	return &style, nil
}

func (r *repo) ListStyles(ctx context.Context, db *gorm.DB, productTypeID snowflake.ID) ([]domain.ProductStyle, error) {
	var styles []domain.ProductStyle
	err := db.WithContext(ctx).
		Where("product_type_id = ? AND active = ?", productTypeID, true).
		Order("name ASC").
		Find(&styles).Error
	if err != nil {
		return nil, err
	}
	return styles, nil
}

func (r *repo) ListVariables(ctx context.Context, db *gorm.DB, productTypeID snowflake.ID) ([]domain.Variable, error) {
	var vars []domain.Variable
	err := db.WithContext(ctx).
		Where("product_type_id = ?", productTypeID).
		Order("display_order ASC, name ASC").
		Find(&vars).Error
	if err != nil {
		return nil, err
	}
	return vars, nil
}

func (r *repo) ListAssignedComponents(ctx context.Context, db *gorm.DB, productTypeID snowflake.ID) ([]domain.AssignedComponent, error) {
	var items []domain.AssignedComponent
	err := db.WithContext(ctx).Raw(
		`SELECT ca.id AS assignment_id,
		        ca.component_type_id,
		        ct.code AS component_code,
		        ct.name AS component_name,
		        ct.unit,
		        ca.display_order,
		        ca.is_optional,
		        ca.is_labor,
		        ca.visibility_conditions,
		        ca.filter_variable
		 FROM component_assignments ca
		 JOIN component_types ct ON ct.id = ca.component_type_id
		 WHERE ca.product_type_id = ?
		 ORDER BY ca.display_order ASC, ct.code ASC`,
		productTypeID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
