package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var ErrMaterialNotFound = errors.New("material_not_found")

type Repository interface {
	FindBySKU(ctx context.Context, db *gorm.DB, sku string) (*Material, error)
	ListBySKUs(ctx context.Context, db *gorm.DB, skus []string) ([]Material, error)
	ListEligible(ctx context.Context, db *gorm.DB, componentTypeID snowflake.ID) ([]Material, error)
}
