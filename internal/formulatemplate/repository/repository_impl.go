package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/stockadefence/stockade/internal/formulatemplate/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ListForProductType(ctx context.Context, db *gorm.DB, productTypeID snowflake.ID) ([]domain.FormulaTemplate, error) {
	var items []domain.FormulaTemplate
	err := db.WithContext(ctx).
		Where("product_type_id = ? AND active = ?", productTypeID, true).
		Order("component_type_id ASC, priority DESC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
