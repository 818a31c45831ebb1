package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindProject(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Project, error)
	ListLineItems(ctx context.Context, db *gorm.DB, projectID snowflake.ID) ([]LineItem, error)
	UpdateLineItemNetLength(ctx context.Context, db *gorm.DB, id snowflake.ID, netLength float64, at time.Time) error
	ListMaterialRows(ctx context.Context, db *gorm.DB, projectID snowflake.ID) ([]MaterialRowRecord, error)
	// ReplaceMaterialRows swaps the project's entire material list for the
	// given pass. Callers run it inside one transaction with the pass stamp
	// so readers never observe a partial overwrite.
	ReplaceMaterialRows(ctx context.Context, db *gorm.DB, projectID snowflake.ID, rows []MaterialRowRecord) error
	UpdateMaterialRowTotals(ctx context.Context, db *gorm.DB, row *MaterialRowRecord) error
	StampProjectPass(ctx context.Context, db *gorm.DB, projectID snowflake.ID, passID string, at time.Time) error
}
