package bootstrap

import (
	"github.com/gin-gonic/gin"
	"github.com/plfog/backoffice/internal/infrastructure/logger"
	"github.com/plfog/backoffice/internal/interfaces/http/handler"
	"github.com/plfog/backoffice/internal/interfaces/http/middleware"
	"github.com/plfog/backoffice/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// Engine builds the gin engine with the full middleware stack and every
// route mounted
func (a *App) Engine() *gin.Engine {
	cfg := a.Config
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		a.Logger.Warn("Invalid trusted proxies, trusting none", zap.Error(err))
		_ = engine.SetTrustedProxies(nil)
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	engine.Use(middleware.RequestID(), logger.Recovery(a.Logger))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	})...)
	engine.Use(
		logger.RequestLogger(a.Logger, "/health", "/ready", "/sw.js"),
		middleware.Secure(),
		middleware.CORSWithConfig(corsConfig),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize, map[string]int64{
			"/api/v1/guilds/:id/documents": cfg.Storage.MaxUploadSize + 1<<20,
		}),
	)

	system := handler.NewSystemHandler(cfg.Static.ServiceWorkerPath, a.DB)
	engine.GET("/health", system.Health)
	engine.GET("/ready", system.Ready)
	engine.GET("/sw.js", system.ServiceWorker)

	s := a.Services
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.Authenticate(middleware.AuthConfig{
		Tokens:  a.JWT,
		Revoked: a.Revoked,
		Public: []string{
			r.BasePath() + "/auth/login",
			r.BasePath() + "/push/vapid-key",
			r.BasePath() + "/system/info",
		},
		Logger: a.Logger,
	}))
	r.Register(router.NewGroup("/system").GET("/info", system.GetSystemInfo))
	r.Register(router.Groups(router.Handlers{
		Auth:     handler.NewAuthHandler(s.Auth),
		Push:     handler.NewPushHandler(s.Push),
		Members:  handler.NewMemberHandler(s.Members, s.Spaces),
		Guilds:   handler.NewGuildHandler(s.Guilds),
		Billing:  handler.NewBillingHandler(s.Tabs, s.Payouts),
		Commerce: handler.NewCommerceHandler(s.Enrollments, s.Rentals, s.Purchases),
		Admin:    handler.NewAdminHandler(s.Admin),
	})...)
	r.Setup()

	return engine
}
