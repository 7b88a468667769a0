package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/promoforge/promoforge/internal/analytics"
	analyticsdomain "github.com/promoforge/promoforge/internal/analytics/domain"
	"github.com/promoforge/promoforge/internal/auth"
	authdomain "github.com/promoforge/promoforge/internal/auth/domain"
	"github.com/promoforge/promoforge/internal/campaign"
	campaigndomain "github.com/promoforge/promoforge/internal/campaign/domain"
	"github.com/promoforge/promoforge/internal/config"
	"github.com/promoforge/promoforge/internal/coupon"
	coupondomain "github.com/promoforge/promoforge/internal/coupon/domain"
	"github.com/promoforge/promoforge/internal/enduser"
	enduserdomain "github.com/promoforge/promoforge/internal/enduser/domain"
	"github.com/promoforge/promoforge/internal/formlink"
	formlinkdomain "github.com/promoforge/promoforge/internal/formlink/domain"
	obslogger "github.com/promoforge/promoforge/internal/observability/logger"
	obsmetrics "github.com/promoforge/promoforge/internal/observability/metrics"
	"github.com/promoforge/promoforge/internal/product"
	productdomain "github.com/promoforge/promoforge/internal/product/domain"
	"github.com/promoforge/promoforge/internal/tenant"
	tenantdomain "github.com/promoforge/promoforge/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	tenant.Module,
	auth.Module,
	campaign.Module,
	product.Module,
	formlink.Module,
	enduser.Module,
	coupon.Module,
	analytics.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics, reg *prometheus.Registry) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log, obslogger.MiddlewareConfig{
		Debug:           !cfg.IsProduction(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	return r
}

func registerGin(cfg config.Config, log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics, reg *prometheus.Registry) *gin.Engine {
	return NewEngine(cfg, log, httpMetrics, reg)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
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
	engine       *gin.Engine
	cfg          config.Config
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	tenantSvc    tenantdomain.Service
	authSvc      authdomain.Service
	campaignSvc  campaigndomain.Service
	productSvc   productdomain.Service
	formLinkSvc  formlinkdomain.Service
	enduserSvc   enduserdomain.Service
	couponSvc    coupondomain.Service
	analyticsSvc analyticsdomain.Service
}

type ServerParams struct {
	fx.In

	Engine       *gin.Engine
	Config       config.Config
	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	TenantSvc    tenantdomain.Service
	AuthSvc      authdomain.Service
	CampaignSvc  campaigndomain.Service
	ProductSvc   productdomain.Service
	FormLinkSvc  formlinkdomain.Service
	EnduserSvc   enduserdomain.Service
	CouponSvc    coupondomain.Service
	AnalyticsSvc analyticsdomain.Service
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:       p.Engine,
		cfg:          p.Config,
		db:           p.DB,
		log:          p.Log.Named("server"),
		genID:        p.GenID,
		tenantSvc:    p.TenantSvc,
		authSvc:      p.AuthSvc,
		campaignSvc:  p.CampaignSvc,
		productSvc:   p.ProductSvc,
		formLinkSvc:  p.FormLinkSvc,
		enduserSvc:   p.EnduserSvc,
		couponSvc:    p.CouponSvc,
		analyticsSvc: p.AnalyticsSvc,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	r := s.engine

	r.POST("/api/signup", s.Signup)
	r.POST("/api/login", s.Login)
	r.POST("/api/logout", s.SessionRequired(), s.Logout)
	r.GET("/api/me", s.SessionRequired(), s.Me)
	r.GET("/api/csrf", s.SessionRequired(), s.CSRFToken)

	// Public single-use token surface. The token alone identifies the
	// tenant and campaign.
	r.GET("/api/form/:token", s.GetForm)
	r.POST("/api/form/:token", s.RedeemForm)

	// Every admin operation is installed twice: the legacy slug-less
	// path infers the tenant from the session, the tenant-scoped path
	// loads it from the slug and cross-checks it against the session.
	legacy := r.Group("/api/admin",
		s.SessionRequired(), s.LegacyTenant(), s.CSRFRequired())
	scoped := r.Group("/t/:tenant/api/admin",
		s.TenantBySlug(), s.SessionRequired(), s.RequireTenantMatch(),
		s.RequireRole(authdomain.RoleAdmin), s.CSRFRequired())

	s.registerAdmin(legacy, scoped, http.MethodGet, "/tenant", s.GetTenant)
	s.registerAdmin(legacy, scoped, http.MethodPut, "/tenant", s.UpdateTenant)

	s.registerAdmin(legacy, scoped, http.MethodGet, "/campaigns", s.ListCampaigns)
	s.registerAdmin(legacy, scoped, http.MethodPost, "/campaigns", s.CreateCampaign)
	s.registerAdmin(legacy, scoped, http.MethodGet, "/campaigns/:id", s.GetCampaign)
	s.registerAdmin(legacy, scoped, http.MethodPut, "/campaigns/:id", s.UpdateCampaign)
	s.registerAdmin(legacy, scoped, http.MethodDelete, "/campaigns/:id", s.DeleteCampaign)
	s.registerAdmin(legacy, scoped, http.MethodPut, "/campaigns/:id/activate", s.ActivateCampaign)
	s.registerAdmin(legacy, scoped, http.MethodPut, "/campaigns/:id/deactivate", s.DeactivateCampaign)
	s.registerAdmin(legacy, scoped, http.MethodPut, "/campaigns/:id/form-config", s.SetFormConfig)
	s.registerAdmin(legacy, scoped, http.MethodGet, "/campaigns/:id/custom-fields", s.GetCustomFields)
	s.registerAdmin(legacy, scoped, http.MethodPut, "/campaigns/:id/custom-fields", s.SetCustomFields)
	s.registerAdmin(legacy, scoped, http.MethodGet, "/campaigns/:id/products", s.ListCampaignProducts)
	s.registerAdmin(legacy, scoped, http.MethodPut, "/campaigns/:id/products", s.SetCampaignProducts)
	s.registerAdmin(legacy, scoped, http.MethodPost, "/campaigns/:id/form-links", s.GenerateFormLinks)
	s.registerAdmin(legacy, scoped, http.MethodGet, "/campaigns/:id/form-links", s.ListFormLinks)

	s.registerAdmin(legacy, scoped, http.MethodGet, "/products", s.ListProducts)
	s.registerAdmin(legacy, scoped, http.MethodPost, "/products", s.CreateProduct)
	s.registerAdmin(legacy, scoped, http.MethodGet, "/products/:id", s.GetProduct)
	s.registerAdmin(legacy, scoped, http.MethodPut, "/products/:id", s.UpdateProduct)
	s.registerAdmin(legacy, scoped, http.MethodDelete, "/products/:id", s.DeleteProduct)

	s.registerAdmin(legacy, scoped, http.MethodGet, "/coupons", s.ListCoupons)
	s.registerAdmin(legacy, scoped, http.MethodGet, "/coupons/:id", s.GetCoupon)
	s.registerAdmin(legacy, scoped, http.MethodPut, "/coupons/:id/redeem", s.RedeemCoupon)
	s.registerAdmin(legacy, scoped, http.MethodDelete, "/coupons/:id", s.DeleteCoupon)

	s.registerAdmin(legacy, scoped, http.MethodGet, "/users", s.ListUsers)
	s.registerAdmin(legacy, scoped, http.MethodGet, "/users/:id", s.GetUser)

	s.registerAdmin(legacy, scoped, http.MethodGet, "/analytics/summary", s.AnalyticsSummary)
	s.registerAdmin(legacy, scoped, http.MethodGet, "/analytics/campaigns", s.AnalyticsCampaigns)
	s.registerAdmin(legacy, scoped, http.MethodGet, "/analytics/temporal", s.AnalyticsTemporal)
	s.registerAdmin(legacy, scoped, http.MethodGet, "/analytics/export", s.AnalyticsExport)
}

// registerAdmin installs one handler body on both admin route groups.
func (s *Server) registerAdmin(legacy, scoped *gin.RouterGroup, method, path string, handler gin.HandlerFunc) {
	legacy.Handle(method, path, handler)
	scoped.Handle(method, path, handler)
}
