// Package domain contains stored formula templates and their rounding policy.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// RoundingLevel governs whether and when a component's raw quantity is
// rounded.
type RoundingLevel string

const (
	// RoundingSku rounds up per line item, immediately and independently.
	RoundingSku RoundingLevel = "sku"
	// RoundingProject defers rounding until raw values are summed across all
	// line items for the same (component, material) key, then rounds up the
	// aggregate. This avoids over-ordering bulk goods across many small runs.
	RoundingProject RoundingLevel = "project"
	// RoundingNone passes the raw value through untouched.
	RoundingNone RoundingLevel = "none"
)

// Valid reports whether the level is one of the known policies.
func (l RoundingLevel) Valid() bool {
	switch l {
	case RoundingSku, RoundingProject, RoundingNone:
		return true
	}
	return false
}

// FormulaTemplate is a stored formula for one (product type, optional style,
// component) triple. A nil ProductStyleID marks the base formula for all
// styles of the product type; a non-nil value is a style-specific override
// that replaces the base in its entirety.
type FormulaTemplate struct {
	ID              snowflake.ID  `gorm:"primaryKey"`
	ProductTypeID   snowflake.ID  `gorm:"not null;index:idx_formula_lookup"`
	ProductStyleID  *snowflake.ID `gorm:"index:idx_formula_lookup"`
	ComponentTypeID snowflake.ID  `gorm:"not null;index:idx_formula_lookup"`
	FormulaText     string        `gorm:"type:text;not null"`
	RoundingLevel   RoundingLevel `gorm:"type:text;not null;default:'sku'"`
	Priority        int           `gorm:"not null;default:0"`
	Active          bool          `gorm:"not null;default:true"`
	CreatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (FormulaTemplate) TableName() string { return "formula_templates" }
