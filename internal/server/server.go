package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/propelre/leadpulse/internal/config"
	catalogdomain "github.com/propelre/leadpulse/internal/catalog/domain"
	matchingdomain "github.com/propelre/leadpulse/internal/matching/domain"
	scoringdomain "github.com/propelre/leadpulse/internal/scoring/domain"
	signaldomain "github.com/propelre/leadpulse/internal/signal/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLoggingMiddleware(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	db          *gorm.DB
	scoringSvc  scoringdomain.Service
	matchingSvc matchingdomain.Service
	catalogRepo catalogdomain.Repository
	ingestor    signaldomain.Ingestor
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	ScoringSvc  scoringdomain.Service
	MatchingSvc matchingdomain.Service
	CatalogRepo catalogdomain.Repository
	Ingestor    signaldomain.Ingestor
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		db:          p.DB,
		scoringSvc:  p.ScoringSvc,
		matchingSvc: p.MatchingSvc,
		catalogRepo: p.CatalogRepo,
		ingestor:    p.Ingestor,
	}

	v1 := p.Gin.Group("/v1")
	{
		v1.POST("/scoring/runs", s.TriggerScoringRun)
		v1.GET("/scoring/runs/:id", s.GetScoringRun)

		v1.GET("/contacts/:id/snapshot", s.GetContactSnapshot)
		v1.GET("/contacts/:id/history", s.GetContactHistory)

		v1.POST("/buyers/:id/matches", s.MatchBuyer)

		v1.POST("/sync", s.TriggerSync)
	}

	return s
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
