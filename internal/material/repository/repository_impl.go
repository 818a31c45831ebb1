package repository

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/stockadefence/stockade/internal/material/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindBySKU(ctx context.Context, db *gorm.DB, sku string) (*domain.Material, error) {
	var m domain.Material
	err := db.WithContext(ctx).
		Where("sku = ?", sku).
		Limit(1).
		Find(&m).Error
	if err != nil {
		return nil, err
	}
	if m.ID == 0 {
		return nil, nil
	}
	return &m, nil
}

func (r *repo) ListBySKUs(ctx context.Context, db *gorm.DB, skus []string) ([]domain.Material, error) {
	if len(skus) == 0 {
		return nil, nil
	}
	var items []domain.Material
	err := db.WithContext(ctx).
		Where("sku IN ?", skus).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListEligible(ctx context.Context, db *gorm.DB, componentTypeID snowflake.ID) ([]domain.Material, error) {
	var rules []domain.EligibilityRule
	err := db.WithContext(ctx).
		Where("component_type_id = ?", componentTypeID).
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, nil
	}

	stmt := db.WithContext(ctx).Where("active = ?", true)
	criteria := db.Session(&gorm.Session{NewDB: true})
	matched := false
	for _, rule := range rules {
		switch {
		case rule.MaterialSKU != "":
			criteria = criteria.Or("sku = ?", rule.MaterialSKU)
			matched = true
		case rule.Subcategory != "":
			criteria = criteria.Or("category = ? AND subcategory = ?", rule.Category, rule.Subcategory)
			matched = true
		case rule.Category != "":
			criteria = criteria.Or("category = ?", rule.Category)
			matched = true
		}
	}
	if !matched {
		return nil, nil
	}

	var items []domain.Material
	if err := stmt.Where(criteria).Order("sku ASC").Find(&items).Error; err != nil {
		return nil, err
	}

	// Attribute filters live in the JSON column, so apply them here rather
	// than in dialect-specific SQL.
	out := make([]domain.Material, 0, len(items))
	for _, m := range items {
		if materialMatchesRules(m, rules) {
			out = append(out, m)
		}
	}
	return out, nil
}

func materialMatchesRules(m domain.Material, rules []domain.EligibilityRule) bool {
	for _, rule := range rules {
		switch {
		case rule.MaterialSKU != "":
			if m.SKU != rule.MaterialSKU {
				continue
			}
		case rule.Subcategory != "":
			if m.Category != rule.Category || m.Subcategory != rule.Subcategory {
				continue
			}
		case rule.Category != "":
			if m.Category != rule.Category {
				continue
			}
		default:
			continue
		}
		if rule.AttributeName == "" {
			return true
		}
		if m.Attributes == nil {
			continue
		}
		if val, ok := m.Attributes[rule.AttributeName]; ok && fmt.Sprint(val) == rule.AttributeValue {
			return true
		}
	}
	return false
}
