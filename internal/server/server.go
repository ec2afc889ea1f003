package server

import (
	"context"
	"net/http"
	"time"

	"github.com/adlift/cashout/internal/audittrail"
	auditdomain "github.com/adlift/cashout/internal/audittrail/domain"
	"github.com/adlift/cashout/internal/billingrequest"
	billingdomain "github.com/adlift/cashout/internal/billingrequest/domain"
	"github.com/adlift/cashout/internal/company"
	companydomain "github.com/adlift/cashout/internal/company/domain"
	"github.com/adlift/cashout/internal/config"
	"github.com/adlift/cashout/internal/dashboard"
	dashboarddomain "github.com/adlift/cashout/internal/dashboard/domain"
	"github.com/adlift/cashout/internal/events"
	"github.com/adlift/cashout/internal/fiscal"
	"github.com/adlift/cashout/internal/gamification"
	"github.com/adlift/cashout/internal/providers/pdf"
	"github.com/adlift/cashout/internal/tenantctx"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module assembles the HTTP server and every domain module it serves.
var Module = fx.Module("http.server",
	fiscal.Module,
	events.Module,
	audittrail.Module,
	company.Module,
	gamification.Module,
	billingrequest.Module,
	dashboard.Module,
	pdf.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
)

type ServerParam struct {
	fx.In

	Log       *zap.Logger
	Cfg       config.Config
	Engine    *gin.Engine
	Ledger    billingdomain.Service
	Dashboard dashboarddomain.Service
	AuditSvc  auditdomain.Service
	Companies companydomain.Repository
	Renderer  pdf.Renderer
}

type Server struct {
	log       *zap.Logger
	cfg       config.Config
	engine    *gin.Engine
	ledger    billingdomain.Service
	dashboard dashboarddomain.Service
	auditSvc  auditdomain.Service
	companies companydomain.Repository
	renderer  pdf.Renderer
}

func NewEngine(cfg config.Config) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(ErrorHandlingMiddleware())
	return engine
}

func NewServer(p ServerParam) *Server {
	return &Server{
		log:       p.Log.Named("server"),
		cfg:       p.Cfg,
		engine:    p.Engine,
		ledger:    p.Ledger,
		dashboard: p.Dashboard,
		auditSvc:  p.AuditSvc,
		companies: p.Companies,
		renderer:  p.Renderer,
	}
}

// RegisterRoutes wires the billing API.
func (s *Server) RegisterRoutes() {
	s.engine.GET("/healthz", s.Health)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.engine.Group("/v1", Identity())

	billing := v1.Group("/billing")
	billing.POST("/requests", RequireRole(tenantctx.RoleCompany), s.CreateBillingRequest)
	billing.GET("/requests", s.ListBillingRequests)
	billing.GET("/requests/:id", s.GetBillingRequest)
	billing.PATCH("/requests/:id/calculate", RequireRole(tenantctx.RoleAdmin), s.CalculateBillingRequest)
	billing.PATCH("/requests/:id/approve", RequireRole(tenantctx.RoleCompany), s.ApproveBillingRequest)
	billing.PATCH("/requests/:id/invoice", RequireRole(tenantctx.RoleAdmin), s.InvoiceBillingRequest)
	billing.PATCH("/requests/:id/pay", RequireRole(tenantctx.RoleCompany), s.PayBillingRequest)
	billing.PATCH("/requests/:id/complete", RequireRole(tenantctx.RoleAdmin), s.CompleteBillingRequest)
	billing.PATCH("/requests/:id/fail", RequireRole(tenantctx.RoleAdmin), s.FailBillingRequest)
	billing.GET("/requests/:id/audit", RequireRole(tenantctx.RoleAdmin), s.GetAuditTrail)
	billing.GET("/requests/:id/pdf", s.DownloadInvoicePDF)
	billing.GET("/dashboard", s.GetDashboard)
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.cfg.AppVersion})
}

// RunHTTP starts the HTTP listener under the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.log.Info("http server starting", zap.String("addr", s.cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
