package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/plfog/backoffice/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig controls the otelgorm plugin
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // include bound variables in spans, dev only
	SlowQueryThresh time.Duration
	DBSystem        string
}

// DBTracingConfigFrom maps telemetry config onto database tracing for driver
func DBTracingConfigFrom(cfg config.TelemetryConfig, driver string) DBTracingConfig {
	system := "postgresql"
	if driver == "sqlite" {
		system = "sqlite"
	}
	return DBTracingConfig{
		Enabled:         cfg.Enabled && cfg.DBTraceEnabled,
		LogFullSQL:      cfg.DBLogFullSQL,
		SlowQueryThresh: cfg.DBSlowQueryThresh,
		DBSystem:        system,
	}
}

type contextKey string

const queryStartTimeKey contextKey = "otel_query_start_time"

// RegisterDBTracing installs otelgorm plus callbacks that mark slow and
// failed statements on the active span
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	cb := &slowQueryCallback{thresh: cfg.SlowQueryThresh}
	if err := cb.register(db); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
		zap.String("db_system", cfg.DBSystem),
	)
	return nil
}

type slowQueryCallback struct {
	thresh time.Duration
}

func (c *slowQueryCallback) before(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
	}
}

func (c *slowQueryCallback) after(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	start, ok := ctx.Value(queryStartTimeKey).(time.Time)
	if !ok || c.thresh <= 0 {
		return
	}
	if elapsed := time.Since(start); elapsed > c.thresh {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query_warning", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", c.thresh.Milliseconds()),
		))
	}
}

type gormRegister interface {
	Register(name string, fn func(*gorm.DB)) error
}

// register hooks around each statement. The after hook is ordered ahead of
// otelgorm's so the statement span is still recording.
func (c *slowQueryCallback) register(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		callback gormRegister
		hook     func(*gorm.DB)
		name     string
	}{
		{cb.Create().Before("gorm:create"), c.before, "before:create"},
		{cb.Create().After("gorm:create").Before("otel:after:create"), c.after, "after:create"},
		{cb.Query().Before("gorm:query"), c.before, "before:query"},
		{cb.Query().After("gorm:query").Before("otel:after:select"), c.after, "after:query"},
		{cb.Update().Before("gorm:update"), c.before, "before:update"},
		{cb.Update().After("gorm:update").Before("otel:after:update"), c.after, "after:update"},
		{cb.Delete().Before("gorm:delete"), c.before, "before:delete"},
		{cb.Delete().After("gorm:delete").Before("otel:after:delete"), c.after, "after:delete"},
		{cb.Row().Before("gorm:row"), c.before, "before:row"},
		{cb.Row().After("gorm:row").Before("otel:after:row"), c.after, "after:row"},
		{cb.Raw().Before("gorm:raw"), c.before, "before:raw"},
		{cb.Raw().After("gorm:raw").Before("otel:after:raw"), c.after, "after:raw"},
	}
	for _, h := range hooks {
		if err := h.callback.Register("plfog_timing:"+h.name, h.hook); err != nil {
			return err
		}
	}
	return nil
}
