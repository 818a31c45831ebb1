// Package domain contains the material/labor catalog and eligibility rules.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Material is one orderable catalog item (or labor code). Attributes holds
// the physical properties formulas read, e.g. {"width": 5.5, "length": 8}.
type Material struct {
	ID          snowflake.ID      `gorm:"primaryKey"`
	SKU         string            `gorm:"type:text;not null;uniqueIndex"`
	Name        string            `gorm:"type:text;not null"`
	Category    string            `gorm:"type:text;index"`
	Subcategory string            `gorm:"type:text"`
	Unit        string            `gorm:"type:text"`
	UnitCost    decimal.Decimal   `gorm:"type:numeric(12,4);not null"`
	IsLabor     bool              `gorm:"not null;default:false"`
	Attributes  datatypes.JSONMap `gorm:"type:jsonb"`
	Active      bool              `gorm:"not null;default:true"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Material) TableName() string { return "materials" }

// EligibilityRule widens the set of materials selectable for a component:
// by category, by category+subcategory, or by a specific SKU, optionally
// narrowed to materials carrying a given attribute value.
type EligibilityRule struct {
	ID              snowflake.ID `gorm:"primaryKey"`
	ComponentTypeID snowflake.ID `gorm:"not null;index"`
	Category        string       `gorm:"type:text"`
	Subcategory     string       `gorm:"type:text"`
	MaterialSKU     string       `gorm:"type:text"`
	AttributeName   string       `gorm:"type:text"`
	AttributeValue  string       `gorm:"type:text"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (EligibilityRule) TableName() string { return "eligibility_rules" }
