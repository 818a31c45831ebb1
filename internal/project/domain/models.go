// Package domain contains project persistence models: projects, fence-run
// line items, and the aggregated material list stored per project.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Project struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	Name         string       `gorm:"type:text;not null"`
	CustomerName string       `gorm:"type:text"`
	// LastPassID is the ULID of the most recent completed recalculation.
	LastPassID     string    `gorm:"type:text"`
	LastActivityAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Project) TableName() string { return "projects" }

// LineItem is one fence run. NetLength is derived (total footage minus
// buffer) and restamped on every recalculation. Variables holds per-run
// variable overrides; Selections maps component code to material SKU.
type LineItem struct {
	ID            snowflake.ID      `gorm:"primaryKey"`
	ProjectID     snowflake.ID      `gorm:"not null;index"`
	ProductTypeID snowflake.ID      `gorm:"not null"`
	StyleID       *snowflake.ID     `gorm:""`
	Label         string            `gorm:"type:text"`
	TotalFootage  float64           `gorm:"not null;default:0"`
	Buffer        float64           `gorm:"not null;default:0"`
	NetLength     float64           `gorm:"not null;default:0"`
	NumberOfLines int               `gorm:"not null;default:1"`
	NumberOfGates int               `gorm:"not null;default:0"`
	Height        float64           `gorm:"not null;default:0"`
	PostType      string            `gorm:"type:text"`
	Variables     datatypes.JSONMap `gorm:"type:jsonb"`
	Selections    datatypes.JSONMap `gorm:"type:jsonb"`
	DisplayOrder  int               `gorm:"not null;default:0"`
	CreatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (LineItem) TableName() string { return "line_items" }

// MaterialRowRecord is the persisted form of one aggregated material row.
// The whole set for a project is replaced on each recalculation pass; only
// Adjustment survives by key matching.
type MaterialRowRecord struct {
	ID            snowflake.ID    `gorm:"primaryKey"`
	ProjectID     snowflake.ID    `gorm:"not null;index:idx_material_rows_key"`
	PassID        string          `gorm:"type:text;not null"`
	ComponentCode string          `gorm:"type:text;not null;index:idx_material_rows_key"`
	MaterialSKU   string          `gorm:"type:text;not null;index:idx_material_rows_key"`
	Description   string          `gorm:"type:text"`
	Unit          string          `gorm:"type:text"`
	IsLabor       bool            `gorm:"not null;default:false"`
	RoundingLevel string          `gorm:"type:text;not null"`
	CalculatedQty float64         `gorm:"not null;default:0"`
	RoundedQty    float64         `gorm:"not null;default:0"`
	Adjustment    float64         `gorm:"not null;default:0"`
	TotalQty      float64         `gorm:"not null;default:0"`
	UnitCost      decimal.Decimal `gorm:"type:numeric(12,4);not null"`
	TotalCost     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (MaterialRowRecord) TableName() string { return "project_material_rows" }
