package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	jobKey
)

// WithContext stores l for FromContext
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

func scoped(ctx context.Context) (*zap.Logger, bool) {
	if ctx == nil {
		return nil, false
	}
	l, ok := ctx.Value(loggerKey).(*zap.Logger)
	return l, ok
}

// FromContext returns the logger stored in ctx, or a no-op logger. When ctx
// carries a valid span the logger also writes trace_id and span_id.
func FromContext(ctx context.Context) *zap.Logger {
	l, ok := scoped(ctx)
	if !ok {
		return zap.NewNop()
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return l.With(
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	return l
}

// WithUserID tags the logger stored in ctx with the authenticated user.
// Without a stored logger ctx is returned unchanged.
func WithUserID(ctx context.Context, userID string) context.Context {
	l, ok := scoped(ctx)
	if !ok {
		return ctx
	}
	return WithContext(ctx, l.With(zap.String("user_id", userID)))
}

// WithJob tags ctx and its logger with a job or command name
// (bill-tabs, seed-data, ...)
func WithJob(ctx context.Context, l *zap.Logger, job string) (context.Context, *zap.Logger) {
	l = l.With(zap.String("job", job))
	return WithContext(context.WithValue(ctx, jobKey, job), l), l
}

// GetJob returns the name set by WithJob, or ""
func GetJob(ctx context.Context) string {
	job, _ := ctx.Value(jobKey).(string)
	return job
}
