package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/plfog/backoffice/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestOptionsFor(t *testing.T) {
	t.Run("development defaults to console", func(t *testing.T) {
		o := OptionsFor(config.AppConfig{Name: "plfog", Env: "development"}, config.LogConfig{})
		assert.Equal(t, "info", o.Level)
		assert.Equal(t, "console", o.Format)
		assert.Equal(t, "stdout", o.Output)
		assert.Len(t, o.Fields, 2)
	})

	t.Run("production defaults to json", func(t *testing.T) {
		o := OptionsFor(config.AppConfig{Env: "production"}, config.LogConfig{})
		assert.Equal(t, "json", o.Format)
	})

	t.Run("log section wins", func(t *testing.T) {
		o := OptionsFor(config.AppConfig{Env: "production"},
			config.LogConfig{Level: "debug", Format: "console", Output: "stderr"})
		assert.Equal(t, Options{Level: "debug", Format: "console", Output: "stderr", Fields: o.Fields}, o)
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("chatty")
	assert.ErrorContains(t, err, `unknown log level "chatty"`)
}

func TestNew_RejectsBadLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestNew_RejectsUnwritableOutput(t *testing.T) {
	_, err := New(Options{Output: filepath.Join(t.TempDir(), "missing", "dir", "plfog.log")})
	assert.Error(t, err)
}

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plfog.log")
	log, err := New(Options{
		Level:  "info",
		Format: "json",
		Output: path,
		Fields: []zap.Field{zap.String("service", "plfog")},
	})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("Tabs billed", zap.Int("users", 3))
	Sync(log)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "Tabs billed", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "plfog", entry["service"])
	assert.EqualValues(t, 3, entry["users"])
	assert.Contains(t, entry, "time")
	assert.Contains(t, entry, "caller")
}

func TestNew_ConsoleFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")
	log, err := New(Options{Format: "console", Output: path})
	require.NoError(t, err)

	log.Warn("Stripe key not configured")
	Sync(log)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "WARN")
	assert.Contains(t, string(data), "Stripe key not configured")
}

func TestFromConfig(t *testing.T) {
	log, err := FromConfig(config.AppConfig{Name: "plfog", Env: "test"}, config.LogConfig{Level: "error", Output: "stderr"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.WarnLevel))
	assert.True(t, log.Core().Enabled(zapcore.ErrorLevel))
}
