package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stockadefence/stockade/internal/project/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindProject(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Project, error) {
	var p domain.Project
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) ListLineItems(ctx context.Context, db *gorm.DB, projectID snowflake.ID) ([]domain.LineItem, error) {
	var items []domain.LineItem
	err := db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("display_order ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateLineItemNetLength(ctx context.Context, db *gorm.DB, id snowflake.ID, netLength float64, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE line_items SET net_length = ?, updated_at = ? WHERE id = ?`,
		netLength, at, id,
	).Error
}

func (r *repo) ListMaterialRows(ctx context.Context, db *gorm.DB, projectID snowflake.ID) ([]domain.MaterialRowRecord, error) {
	var rows []domain.MaterialRowRecord
	err := db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("component_code ASC, material_sku ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) ReplaceMaterialRows(ctx context.Context, db *gorm.DB, projectID snowflake.ID, rows []domain.MaterialRowRecord) error {
	if err := db.WithContext(ctx).Exec(
		`DELETE FROM project_material_rows WHERE project_id = ?`, projectID,
	).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&rows).Error
}

func (r *repo) UpdateMaterialRowTotals(ctx context.Context, db *gorm.DB, row *domain.MaterialRowRecord) error {
	return db.WithContext(ctx).Exec(
		`UPDATE project_material_rows
		 SET adjustment = ?, total_qty = ?, total_cost = ?
		 WHERE id = ?`,
		row.Adjustment, row.TotalQty, row.TotalCost, row.ID,
	).Error
}

func (r *repo) StampProjectPass(ctx context.Context, db *gorm.DB, projectID snowflake.ID, passID string, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE projects SET last_pass_id = ?, last_activity_at = ?, updated_at = ? WHERE id = ?`,
		passID, at, at, projectID,
	).Error
}
