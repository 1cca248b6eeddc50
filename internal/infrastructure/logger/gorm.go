package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger sends gorm's output through zap. Statements run inside a
// logged request or job are written with that request's logger, so SQL
// entries carry the same request_id or job field as the surrounding
// entries.
type GormLogger struct {
	base  *zap.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

// NewGormLogger maps the [log] level onto gorm's levels: debug and info
// log every statement, warn logs slow and failed ones, error only failed
// ones. A zero slow threshold disables slow-query warnings.
func NewGormLogger(log *zap.Logger, level string, slow time.Duration) *GormLogger {
	return &GormLogger{base: log.Named("gorm"), level: gormLevel(level), slow: slow}
}

func gormLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error", "fatal":
		return gormlogger.Error
	case "debug", "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		l.forContext(ctx).Sugar().Infof(msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		l.forContext(ctx).Sugar().Warnf(msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		l.forContext(ctx).Sugar().Errorf(msg, data...)
	}
}

// Trace logs one statement. Missing rows are an expected outcome for
// get-or-create lookups and are never logged.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound) && l.level >= gormlogger.Error:
		sql, rows := fc()
		l.forContext(ctx).Error("SQL error", statement(sql, rows, elapsed, zap.Error(err))...)
	case l.slow > 0 && elapsed > l.slow && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.forContext(ctx).Warn("Slow query", statement(sql, rows, elapsed, zap.Duration("threshold", l.slow))...)
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.forContext(ctx).Debug("SQL", statement(sql, rows, elapsed)...)
	}
}

func statement(sql string, rows int64, elapsed time.Duration, extra ...zap.Field) []zap.Field {
	return append([]zap.Field{
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}, extra...)
}

func (l *GormLogger) forContext(ctx context.Context) *zap.Logger {
	if s, ok := scoped(ctx); ok {
		return s.Named("gorm")
	}
	return l.base
}
