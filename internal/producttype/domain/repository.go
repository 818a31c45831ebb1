package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrProductTypeNotFound = errors.New("product_type_not_found")
	ErrStyleNotFound       = errors.New("style_not_found")
)

type Repository interface {
	FindProductTypeByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ProductType, error)
	FindProductTypeByCode(ctx context.Context, db *gorm.DB, code string) (*ProductType, error)
	FindStyleByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ProductStyle, error)
	ListStyles(ctx context.Context, db *gorm.DB, productTypeID snowflake.ID) ([]ProductStyle, error)
	ListVariables(ctx context.Context, db *gorm.DB, productTypeID snowflake.ID) ([]Variable, error)
	ListAssignedComponents(ctx context.Context, db *gorm.DB, productTypeID snowflake.ID) ([]AssignedComponent, error)
}
