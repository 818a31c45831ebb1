package service

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	estimatedomain "github.com/stockadefence/stockade/internal/estimate/domain"
	templatedomain "github.com/stockadefence/stockade/internal/formulatemplate/domain"
	"github.com/stockadefence/stockade/internal/project/domain"
	"gorm.io/datatypes"
)

func selectionsFromJSON(raw datatypes.JSONMap) []estimatedomain.ComponentSelection {
	if len(raw) == 0 {
		return nil
	}
	selections := make([]estimatedomain.ComponentSelection, 0, len(raw))
	for code, sku := range raw {
		selections = append(selections, estimatedomain.ComponentSelection{
			ComponentCode: code,
			MaterialSKU:   fmt.Sprint(sku),
		})
	}
	return selections
}

func toEngineRow(rec domain.MaterialRowRecord) estimatedomain.MaterialRow {
	return estimatedomain.MaterialRow{
		ComponentCode: rec.ComponentCode,
		MaterialSKU:   rec.MaterialSKU,
		Description:   rec.Description,
		Unit:          rec.Unit,
		IsLabor:       rec.IsLabor,
		RoundingLevel: templatedomain.RoundingLevel(rec.RoundingLevel),
		CalculatedQty: rec.CalculatedQty,
		RoundedQty:    rec.RoundedQty,
		Adjustment:    rec.Adjustment,
		TotalQty:      rec.TotalQty,
		UnitCost:      rec.UnitCost,
		TotalCost:     rec.TotalCost,
	}
}

func toEngineRows(records []domain.MaterialRowRecord) []estimatedomain.MaterialRow {
	rows := make([]estimatedomain.MaterialRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, toEngineRow(rec))
	}
	return rows
}

func toRecords(rows []estimatedomain.MaterialRow, projectID snowflake.ID, passID string, genID *snowflake.Node) []domain.MaterialRowRecord {
	records := make([]domain.MaterialRowRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, domain.MaterialRowRecord{
			ID:            genID.Generate(),
			ProjectID:     projectID,
			PassID:        passID,
			ComponentCode: row.ComponentCode,
			MaterialSKU:   row.MaterialSKU,
			Description:   row.Description,
			Unit:          row.Unit,
			IsLabor:       row.IsLabor,
			RoundingLevel: string(row.RoundingLevel),
			CalculatedQty: row.CalculatedQty,
			RoundedQty:    row.RoundedQty,
			Adjustment:    row.Adjustment,
			TotalQty:      row.TotalQty,
			UnitCost:      row.UnitCost,
			TotalCost:     row.TotalCost,
		})
	}
	return records
}
