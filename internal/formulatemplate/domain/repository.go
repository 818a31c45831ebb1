package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// ListForProductType returns every active template of the product type,
	// base and style-specific alike, highest priority first within a
	// (style, component) pair. The engine picks the applicable one.
	ListForProductType(ctx context.Context, db *gorm.DB, productTypeID snowflake.ID) ([]FormulaTemplate, error)
}
