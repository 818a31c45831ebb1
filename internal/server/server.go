// Package server exposes the calculation HTTP API consumed by the
// estimating UI.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stockadefence/stockade/internal/config"
	estimatedomain "github.com/stockadefence/stockade/internal/estimate/domain"
	materialdomain "github.com/stockadefence/stockade/internal/material/domain"
	producttypedomain "github.com/stockadefence/stockade/internal/producttype/domain"
	projectdomain "github.com/stockadefence/stockade/internal/project/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB

	estimateSvc estimatedomain.Service
	projectSvc  projectdomain.Service

	productTypeRepo producttypedomain.Repository
	materialRepo    materialdomain.Repository

	engine *gin.Engine
	http   *http.Server
}

type Params struct {
	fx.In

	Cfg             *config.Config
	Log             *zap.Logger
	DB              *gorm.DB
	EstimateSvc     estimatedomain.Service
	ProjectSvc      projectdomain.Service
	ProductTypeRepo producttypedomain.Repository
	MaterialRepo    materialdomain.Repository
}

func NewServer(p Params) *Server {
	s := &Server{
		cfg: p.Cfg,
		log: p.Log.Named("server"),
		db:  p.DB,

		estimateSvc: p.EstimateSvc,
		projectSvc:  p.ProjectSvc,

		productTypeRepo: p.ProductTypeRepo,
		materialRepo:    p.MaterialRepo,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestIDMiddleware())
	engine.Use(requestLogMiddleware(s.log))
	engine.Use(httpMetricsMiddleware())

	s.registerRoutes(engine)
	s.engine = engine
	s.http = &http.Server{Addr: p.Cfg.HTTPAddr, Handler: engine}
	return s
}

func (s *Server) registerRoutes(r *gin.Engine) {
	r.GET("/healthz", s.Health)
	r.GET("/readyz", s.Readiness)
	r.GET("/metrics", metricsHandler())

	v1 := r.Group("/v1")
	{
		v1.POST("/estimate", s.Estimate)
		v1.POST("/formulas/preview", s.PreviewFormula)
		v1.POST("/projects/:id/recalculate", s.RecalculateProject)
		v1.GET("/projects/:id/materials", s.ProjectMaterials)
		v1.PUT("/projects/:id/materials/adjustment", s.SetAdjustment)
		v1.GET("/product-types/:code", s.GetProductType)
		v1.GET("/materials/:sku", s.GetMaterial)
		v1.GET("/components/:id/materials", s.ListEligibleMaterials)
	}
}

// Handler returns the router, mainly for httptest.
func (s *Server) Handler() http.Handler { return s.engine }

func RunHTTP(lc fx.Lifecycle, s *Server) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			s.log.Info("http server listening", zap.String("addr", s.http.Addr))
			go func() {
				if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return s.http.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Invoke(RunHTTP),
)
