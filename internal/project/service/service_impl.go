// Package service orchestrates recalculation passes over persisted projects.
package service

import (
	"context"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
	"github.com/stockadefence/stockade/internal/clock"
	estimatedomain "github.com/stockadefence/stockade/internal/estimate/domain"
	"github.com/stockadefence/stockade/internal/project/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	passesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockade_recalculation_passes_total",
		Help: "Completed recalculation passes by outcome.",
	}, []string{"outcome"})
	passDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stockade_recalculation_pass_seconds",
		Help:    "Wall time of one recalculation pass.",
		Buckets: prometheus.DefBuckets,
	})
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clk   clock.Clock

	estimator estimatedomain.Service
	repo      domain.Repository

	// passSeq tracks the newest pass per project so a stale in-flight pass
	// discards its output instead of overwriting a newer one.
	passMu  sync.Mutex
	passSeq map[snowflake.ID]uint64
}

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Estimator estimatedomain.Service
	Repo      domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("project.service"),
		genID: p.GenID,
		clk:   p.Clock,

		estimator: p.Estimator,
		repo:      p.Repo,

		passSeq: make(map[snowflake.ID]uint64),
	}
}

func (s *Service) beginPass(projectID snowflake.ID) uint64 {
	s.passMu.Lock()
	defer s.passMu.Unlock()
	s.passSeq[projectID]++
	return s.passSeq[projectID]
}

func (s *Service) currentPass(projectID snowflake.ID) uint64 {
	s.passMu.Lock()
	defer s.passMu.Unlock()
	return s.passSeq[projectID]
}

func (s *Service) Recalculate(ctx context.Context, projectID string) (*domain.RecalculateResponse, error) {
	id, err := parseID(projectID)
	if err != nil {
		return nil, domain.ErrInvalidProject
	}

	project, err := s.repo.FindProject(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domain.ErrProjectNotFound
	}

	seq := s.beginPass(id)
	passID := ulid.Make().String()
	started := s.clk.Now(ctx)
	timer := prometheus.NewTimer(passDuration)
	defer timer.ObserveDuration()

	items, err := s.repo.ListLineItems(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	previousRecords, err := s.repo.ListMaterialRows(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	previous := toEngineRows(previousRecords)

	lineResults := make([][]estimatedomain.FormulaResult, 0, len(items))
	var diags []estimatedomain.Diagnostic
	netLengths := make(map[snowflake.ID]float64, len(items))

	for _, item := range items {
		netLength := item.TotalFootage - item.Buffer
		if netLength < 0 {
			netLength = 0
		}
		netLengths[item.ID] = netLength

		inputs := estimatedomain.ProjectInputs{
			NetLength: netLength,
			Lines:     float64(item.NumberOfLines),
			Gates:     float64(item.NumberOfGates),
			Height:    item.Height,
		}
		selections := selectionsFromJSON(item.Selections)

		fctx, err := s.estimator.BuildContext(ctx, item.ProductTypeID, item.StyleID, inputs, item.Variables, selections)
		if err != nil {
			return nil, err
		}
		out, err := s.estimator.ExecuteAllFormulas(ctx, item.ProductTypeID, item.StyleID, fctx, selections)
		if err != nil {
			return nil, err
		}
		diags = append(diags, out.Diagnostics...)
		lineResults = append(lineResults, s.estimator.ApplyRounding(out.Results))
	}

	rows, aggDiags, err := s.estimator.Aggregate(ctx, lineResults, previous)
	if err != nil {
		return nil, err
	}
	diags = append(diags, aggDiags...)

	// A newer pass started while this one was computing: drop this output.
	if s.currentPass(id) != seq {
		passesTotal.WithLabelValues("superseded").Inc()
		s.log.Info("recalculation pass superseded",
			zap.String("project_id", id.String()),
			zap.String("pass_id", passID))
		return nil, domain.ErrPassSuperseded
	}

	records := toRecords(rows, id, passID, s.genID)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for itemID, netLength := range netLengths {
			if err := s.repo.UpdateLineItemNetLength(ctx, tx, itemID, netLength, started); err != nil {
				return err
			}
		}
		if err := s.repo.ReplaceMaterialRows(ctx, tx, id, records); err != nil {
			return err
		}
		return s.repo.StampProjectPass(ctx, tx, id, passID, started)
	})
	if err != nil {
		passesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	passesTotal.WithLabelValues("ok").Inc()
	s.log.Info("recalculation pass complete",
		zap.String("project_id", id.String()),
		zap.String("pass_id", passID),
		zap.Int("line_items", len(items)),
		zap.Int("rows", len(rows)),
		zap.Int("diagnostics", len(diags)))

	return &domain.RecalculateResponse{
		PassID:      passID,
		Rows:        rows,
		Diagnostics: diags,
	}, nil
}

func (s *Service) Materials(ctx context.Context, projectID string) ([]estimatedomain.MaterialRow, error) {
	id, err := parseID(projectID)
	if err != nil {
		return nil, domain.ErrInvalidProject
	}
	project, err := s.repo.FindProject(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domain.ErrProjectNotFound
	}
	records, err := s.repo.ListMaterialRows(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return toEngineRows(records), nil
}

func (s *Service) SetAdjustment(ctx context.Context, projectID string, req domain.SetAdjustmentRequest) (*estimatedomain.MaterialRow, error) {
	id, err := parseID(projectID)
	if err != nil {
		return nil, domain.ErrInvalidProject
	}
	records, err := s.repo.ListMaterialRows(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	for i := range records {
		rec := &records[i]
		if rec.ComponentCode != req.ComponentCode || rec.MaterialSKU != req.MaterialSKU {
			continue
		}
		rec.Adjustment = req.Adjustment
		rec.TotalQty = rec.RoundedQty + rec.Adjustment
		rec.TotalCost = decimal.NewFromFloat(rec.TotalQty).Mul(rec.UnitCost).Round(2)
		if err := s.repo.UpdateMaterialRowTotals(ctx, s.db, rec); err != nil {
			return nil, err
		}
		row := toEngineRow(*rec)
		return &row, nil
	}
	return nil, domain.ErrRowNotFound
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
