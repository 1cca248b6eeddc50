// Package logger builds the zap loggers used by the server and the plfog
// commands, and adapts them to gin and gorm.
package logger

import (
	"fmt"
	"strings"

	"github.com/plfog/backoffice/internal/infrastructure/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options describes one logger
type Options struct {
	Level  string // debug, info, warn, error
	Format string // json or console
	Output string // stdout, stderr or a file path
	Fields []zap.Field
}

// OptionsFor layers the [log] section over the environment default:
// JSON in production, console elsewhere. Every entry carries the service
// name and environment.
func OptionsFor(app config.AppConfig, lc config.LogConfig) Options {
	o := Options{Level: "info", Format: "console", Output: "stdout"}
	if app.Env == "production" {
		o.Format = "json"
	}
	if lc.Level != "" {
		o.Level = lc.Level
	}
	if lc.Format != "" {
		o.Format = lc.Format
	}
	if lc.Output != "" {
		o.Output = lc.Output
	}
	o.Fields = []zap.Field{zap.String("service", app.Name), zap.String("env", app.Env)}
	return o
}

// New builds a logger. An unknown level or an unwritable output file is
// an error rather than a silent fallback.
func New(o Options) (*zap.Logger, error) {
	level, err := ParseLevel(o.Level)
	if err != nil {
		return nil, err
	}
	output := o.Output
	if output == "" {
		output = "stdout"
	}
	sink, _, err := zap.Open(output)
	if err != nil {
		return nil, fmt.Errorf("open log output %q: %w", output, err)
	}

	core := zapcore.NewCore(encoderFor(o.Format), sink, level)
	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(o.Fields...),
	), nil
}

// FromConfig is New(OptionsFor(app, lc))
func FromConfig(app config.AppConfig, lc config.LogConfig) (*zap.Logger, error) {
	return New(OptionsFor(app, lc))
}

// ParseLevel accepts the level names used in config files. An empty level
// means info.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "":
		return zapcore.InfoLevel, nil
	case "warning":
		return zapcore.WarnLevel, nil
	}
	l, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return l, fmt.Errorf("unknown log level %q", level)
	}
	return l, nil
}

func encoderFor(format string) zapcore.Encoder {
	if strings.EqualFold(format, "console") {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(ec)
	}
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "time"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeDuration = zapcore.MillisDurationEncoder
	return zapcore.NewJSONEncoder(ec)
}

// Sync flushes buffered entries. Syncing a terminal fails on some
// platforms, so the error is dropped.
func Sync(logger *zap.Logger) {
	_ = logger.Sync()
}
