package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/crudpark/internal/config"
	"github.com/smallbiznis/crudpark/internal/observability"
	obsmiddleware "github.com/smallbiznis/crudpark/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/crudpark/internal/observability/metrics"
	obstracing "github.com/smallbiznis/crudpark/internal/observability/tracing"
	operatordomain "github.com/smallbiznis/crudpark/internal/operator/domain"
	tariffdomain "github.com/smallbiznis/crudpark/internal/tariff/domain"
	ticketdomain "github.com/smallbiznis/crudpark/internal/ticket/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(RunHTTP),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// RunHTTP serves the console API for the lifetime of the app.
func RunHTTP(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.log.Info("http server listening", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.log.Fatal("http server stopped", zap.Error(err))
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

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	ticketSvc   ticketdomain.Service
	operatorSvc operatordomain.Service
	tariffs     tariffdomain.Provider
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	TicketSvc   ticketdomain.Service
	OperatorSvc operatordomain.Service
	Tariffs     tariffdomain.Provider
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		log:         p.Log.Named("http.server"),
		ticketSvc:   p.TicketSvc,
		operatorSvc: p.OperatorSvc,
		tariffs:     p.Tariffs,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.POST("/login", s.Login)

	tickets := api.Group("/tickets", s.OperatorRequired())
	{
		tickets.POST("/entry", s.RegisterEntry)
		tickets.POST("/exit", s.RegisterExit)
		tickets.POST("/payments", s.RegisterManualPayment)
		tickets.GET("/open", s.ListOpenTickets)
		tickets.GET("/:folio", s.GetTicketByFolio)
	}

	api.GET("/tariffs/active", s.OperatorRequired(), s.GetActiveTariff)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
