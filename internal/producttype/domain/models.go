// Package domain contains the fence product configuration models: product
// types, styles, configuration variables, and component assignments.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ProductType is a sellable fence family, e.g. wood-vertical or chain-link.
type ProductType struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Code      string       `gorm:"type:text;not null;uniqueIndex"`
	Name      string       `gorm:"type:text;not null"`
	Category  string       `gorm:"type:text"`
	Active    bool         `gorm:"not null;default:true"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ProductType) TableName() string { return "product_types" }

// ProductStyle is a named variant of a product type. FormulaAdjustments is a
// flat variable → value map layered into the formula context above SKU
// variables, e.g. {"picket_multiplier": 1.11} for a Good Neighbor style.
type ProductStyle struct {
	ID                 snowflake.ID      `gorm:"primaryKey"`
	ProductTypeID      snowflake.ID      `gorm:"not null;index"`
	Code               string            `gorm:"type:text;not null"`
	Name               string            `gorm:"type:text;not null"`
	FormulaAdjustments datatypes.JSONMap `gorm:"type:jsonb"`
	Active             bool              `gorm:"not null;default:true"`
	CreatedAt          time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt          time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ProductStyle) TableName() string { return "product_styles" }

// VariableType enumerates how a variable is edited and coerced.
type VariableType string

const (
	VariableTypeNumber VariableType = "number"
	VariableTypeSelect VariableType = "select"
	VariableTypeText   VariableType = "text"
)

// Variable is a configurable input of a product type, with a default applied
// when a SKU or line item does not override it.
type Variable struct {
	ID            snowflake.ID   `gorm:"primaryKey"`
	ProductTypeID snowflake.ID   `gorm:"not null;index"`
	Name          string         `gorm:"type:text;not null"`
	Label         string         `gorm:"type:text"`
	VariableType  VariableType   `gorm:"type:text;not null;default:'number'"`
	DefaultValue  string         `gorm:"type:text"`
	AllowedValues datatypes.JSON `gorm:"type:jsonb"`
	DisplayOrder  int            `gorm:"not null;default:0"`
	CreatedAt     time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Variable) TableName() string { return "product_variables" }

// ComponentType is a named slot in a fence assembly that a formula computes a
// quantity for (post, picket, rail, concrete, labor).
type ComponentType struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Code      string       `gorm:"type:text;not null;uniqueIndex"`
	Name      string       `gorm:"type:text;not null"`
	Unit      string       `gorm:"type:text"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ComponentType) TableName() string { return "component_types" }

// ComponentAssignment attaches a component type to a product type.
// DisplayOrder doubles as execution order: formulas run in this order, so a
// later formula may reference quantities computed by earlier ones.
// VisibilityConditions maps variable names to required values; a component
// whose conditions do not match the current context is skipped.
type ComponentAssignment struct {
	ID                   snowflake.ID      `gorm:"primaryKey"`
	ProductTypeID        snowflake.ID      `gorm:"not null;index"`
	ComponentTypeID      snowflake.ID      `gorm:"not null;index"`
	DisplayOrder         int               `gorm:"not null;default:0"`
	IsOptional           bool              `gorm:"not null;default:false"`
	IsLabor              bool              `gorm:"not null;default:false"`
	VisibilityConditions datatypes.JSONMap `gorm:"type:jsonb"`
	FilterVariable       string            `gorm:"type:text"`
	CreatedAt            time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt            time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ComponentAssignment) TableName() string { return "component_assignments" }

// AssignedComponent is the flattened read model the execution engine
// iterates: one row per assigned component, ordered by DisplayOrder.
type AssignedComponent struct {
	AssignmentID         snowflake.ID
	ComponentTypeID      snowflake.ID
	ComponentCode        string
	ComponentName        string
	Unit                 string
	DisplayOrder         int
	IsOptional           bool
	IsLabor              bool
	VisibilityConditions datatypes.JSONMap
	FilterVariable       string
}
