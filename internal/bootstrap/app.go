// Package bootstrap builds the back office out of its configuration: the
// database, caches, object storage, telemetry, and every application
// service. The server binary and the plfog CLI both start from here.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/plfog/backoffice/internal/application/admin"
	appbilling "github.com/plfog/backoffice/internal/application/billing"
	appcore "github.com/plfog/backoffice/internal/application/core"
	appeducation "github.com/plfog/backoffice/internal/application/education"
	"github.com/plfog/backoffice/internal/application/fixture"
	appidentity "github.com/plfog/backoffice/internal/application/identity"
	appmembership "github.com/plfog/backoffice/internal/application/membership"
	appoutreach "github.com/plfog/backoffice/internal/application/outreach"
	apptools "github.com/plfog/backoffice/internal/application/tools"
	"github.com/plfog/backoffice/internal/domain/billing"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/plfog/backoffice/internal/infrastructure/auth"
	infrabilling "github.com/plfog/backoffice/internal/infrastructure/billing"
	"github.com/plfog/backoffice/internal/infrastructure/cache"
	"github.com/plfog/backoffice/internal/infrastructure/config"
	"github.com/plfog/backoffice/internal/infrastructure/logger"
	"github.com/plfog/backoffice/internal/infrastructure/persistence"
	"github.com/plfog/backoffice/internal/infrastructure/storage"
	"github.com/plfog/backoffice/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Services are the application services behind the HTTP API and the CLI
type Services struct {
	Auth        *appidentity.AuthService
	Users       *appidentity.UserService
	Roles       *appidentity.RoleService
	Settings    *appcore.SettingService
	Push        *appcore.PushService
	Members     *appmembership.MemberService
	Spaces      *appmembership.SpaceService
	Guilds      *appmembership.GuildService
	Invoices    *appbilling.InvoiceService
	Tabs        *appbilling.TabService
	Payouts     *appbilling.PayoutService
	Enrollments *appeducation.EnrollmentService
	Rentals     *apptools.RentalService
	Purchases   *appoutreach.PurchaseService
	Admin       *admin.Service
	Fixtures    *fixture.Loader
}

// App owns every long-lived resource of one process
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	DB       *persistence.Database
	Caches   *cache.Backends
	Files    shared.ObjectStorage
	JWT      *auth.JWTService
	Revoked  auth.Revocations
	Registry *admin.Registry
	Services *Services

	otel *telemetry.Providers
}

// New connects to the configured backends and wires the services. The
// returned App must be closed.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (_ *App, err error) {
	a := &App{Config: cfg, Logger: log}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()

	a.otel, err = telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}
	log = a.otel.Bridge(log)
	a.Logger = log

	gormLog := logger.NewGormLogger(log, cfg.Log.Level, cfg.Telemetry.DBSlowQueryThresh)
	a.DB, err = persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		return nil, err
	}
	log.Info("Database connected",
		zap.String("driver", cfg.Database.Driver),
		zap.String("database", cfg.Database.DBName))

	if err := telemetry.RegisterDBTracing(a.DB.DB, telemetry.DBTracingConfigFrom(cfg.Telemetry, cfg.Database.Driver), log); err != nil {
		return nil, fmt.Errorf("register db tracing: %w", err)
	}

	if cfg.Database.Driver == "sqlite" {
		if err := a.DB.AutoMigrate(ctx); err != nil {
			return nil, err
		}
		log.Info("SQLite schema migrated")
	}

	a.Caches = cache.NewBackends(cfg.Redis, log)
	if client := a.Caches.Redis(); client != nil {
		a.Revoked = auth.NewRedisRevocations(client)
	} else {
		a.Revoked = auth.NewMemoryRevocations()
	}

	a.Files, err = storage.New(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	a.Registry = admin.NewRegistry(a.DB.DB)
	registered, skipped, err := a.Registry.RegisterAll(persistence.AllModels())
	if err != nil {
		return nil, fmt.Errorf("build admin registry: %w", err)
	}
	log.Debug("Admin registry built", zap.Int("registered", registered), zap.Int("skipped", skipped))

	a.JWT = auth.NewJWTService(cfg.JWT)

	gateway, err := invoiceGateway(cfg.Stripe, log)
	if err != nil {
		return nil, err
	}
	a.Services = a.services(gateway)
	return a, nil
}

// invoiceGateway returns nil when no Stripe key is configured so invoices
// stay local
func invoiceGateway(cfg config.StripeConfig, log *zap.Logger) (billing.InvoiceGateway, error) {
	sc := infrabilling.NewStripeConfig(cfg)
	if !sc.Configured() {
		log.Warn("Stripe key not configured, invoices are recorded locally only")
		return nil, nil
	}
	gw, err := infrabilling.NewStripeGateway(sc, log)
	if err != nil {
		return nil, fmt.Errorf("init stripe: %w", err)
	}
	log.Info("Stripe gateway ready", zap.Bool("live_mode", sc.LiveMode))
	return gw, nil
}

func (a *App) services(gateway billing.InvoiceGateway) *Services {
	db := a.DB.DB
	log := a.Logger
	cfg := a.Config

	userRepo := persistence.NewGormUserRepository(db)
	groupRepo := persistence.NewGormGroupRepository(db)
	permRepo := persistence.NewGormPermissionRepository(db)
	memberRepo := persistence.NewGormMemberRepository(db)
	leaseRepo := persistence.NewGormLeaseRepository(db)
	spaceRepo := persistence.NewGormSpaceRepository(db)
	guildRepo := persistence.NewGormGuildRepository(db)
	loc, err := cfg.App.Location()
	if err != nil {
		log.Warn("Reading business dates in UTC", zap.Error(err))
		loc = time.UTC
	}
	orderRepo := persistence.NewGormOrderRepository(db).InLocation(loc)
	scope := persistence.NewGormTransactionScope(db)

	var metrics appbilling.Metrics
	if bm, err := telemetry.NewBillingMetrics(a.otel.Meter("plfog/billing")); err != nil {
		log.Warn("Billing metrics unavailable", zap.Error(err))
	} else {
		metrics = bm
	}

	invoices := appbilling.NewInvoiceService(gateway, persistence.NewGormInvoiceRepository(db), metrics, log)

	return &Services{
		Auth:     appidentity.NewAuthService(userRepo, permRepo, a.JWT, a.Revoked, log),
		Users:    appidentity.NewUserService(userRepo, log),
		Roles:    appidentity.NewRoleService(groupRepo, permRepo, log),
		Settings: appcore.NewSettingService(persistence.NewGormSettingRepository(db), a.Caches.Settings, cfg.Redis.SettingTTL, log),
		Push:     appcore.NewPushService(persistence.NewGormPushSubscriptionRepository(db), cfg.WebPush.VAPIDPublicKey, log),
		Members:  appmembership.NewMemberService(memberRepo, leaseRepo, log),
		Spaces:   appmembership.NewSpaceService(spaceRepo, log),
		Guilds: appmembership.NewGuildService(guildRepo, persistence.NewGormGuildDocumentRepository(db),
			a.Files, cfg.Storage.PresignExpiration, cfg.Storage.MaxUploadSize, log),
		Invoices:    invoices,
		Tabs:        appbilling.NewTabService(orderRepo, userRepo, invoices, a.Caches.JobLock, cfg.Scheduler.JobTimeout, log),
		Payouts:     appbilling.NewPayoutService(orderRepo, persistence.NewGormPayoutRepository(db), metrics, log),
		Enrollments: appeducation.NewEnrollmentService(scope, log),
		Rentals:     apptools.NewRentalService(scope, log),
		Purchases:   appoutreach.NewPurchaseService(scope, log),
		Admin:       admin.NewService(db, a.Registry, log),
		Fixtures: fixture.NewLoader(fixture.Repositories{
			Plans:   persistence.NewGormPlanRepository(db),
			Guilds:  guildRepo,
			Members: memberRepo,
			Spaces:  spaceRepo,
			Leases:  leaseRepo,
		}, log),
	}
}

// Close releases everything New acquired, reporting every failure
func (a *App) Close(ctx context.Context) error {
	var result *multierror.Error
	if a.Caches != nil {
		if err := a.Caches.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close cache: %w", err))
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close database: %w", err))
		}
	}
	if a.otel != nil {
		if err := a.otel.Shutdown(ctx); err != nil {
			result = multierror.Append(result, fmt.Errorf("shutdown telemetry: %w", err))
		}
	}
	return result.ErrorOrNil()
}
