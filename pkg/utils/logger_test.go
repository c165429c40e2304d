package utils

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"Info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"ERROR", LevelError},
		{"unknown", LevelInfo}, // default
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLogLevel(tt.input))
		})
	}
}

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.level.String())
		})
	}
}

func TestDefaultLogger_FilterByLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewDefaultLogger(LevelWarn, buf)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	output := buf.String()
	assert.NotContains(t, output, "debug message")
	assert.NotContains(t, output, "info message")
	assert.Contains(t, output, "[WARN] warn message")
	assert.Contains(t, output, "[ERROR] error message")
}

func TestDefaultLogger_FieldsSorted(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewDefaultLogger(LevelInfo, buf)

	logger.WithField("slots", 2048).
		WithFields(map[string]interface{}{"size": 5, "density": 1.5}).
		Info("grew")

	assert.Contains(t, buf.String(), "[INFO] density=1.5 size=5 slots=2048 grew")
}

func TestDefaultLogger_ChildSharesLevelAtCreation(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewDefaultLogger(LevelInfo, buf)
	child := logger.WithField("component", "registry")

	logger.SetLevel(LevelDebug)
	child.Debug("hidden")
	logger.Debug("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestDefaultLogger_Formatting(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewDefaultLogger(LevelInfo, buf)

	logger.Info("count: %d, name: %s", 42, "test")
	logger.Info("100% literal")

	output := buf.String()
	assert.Contains(t, output, "count: 42, name: test")
	assert.Contains(t, output, "100% literal")
}

func TestDefaultLogger_TimestampFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewDefaultLogger(LevelInfo, buf)

	logger.Info("test message")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "["))
}

func TestNullLogger(t *testing.T) {
	logger := &NullLogger{}

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")

	assert.Equal(t, logger, logger.WithField("key", "value"))
	assert.Equal(t, logger, logger.WithFields(map[string]interface{}{"key": "value"}))
}

func TestZapLogger_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewZapLogger("debug", "json", buf)

	logger.WithField("registry", "main").Debug("grew to %d slots", 2048)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "grew to 2048 slots", line["msg"])
	assert.Equal(t, "main", line["registry"])
}

func TestZapLogger_LevelFilter(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewZapLogger("warn", "console", buf)

	logger.Info("quiet")
	logger.WithFields(map[string]interface{}{"size": 3}).Warn("loud")

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
	assert.Contains(t, buf.String(), `"size": 3`)
}

func TestZapLogger_BadLevelDefaultsToInfo(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewZapLogger("chatty", "json", buf)

	logger.Debug("dropped")
	logger.Info("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestNewLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	assert.IsType(t, &ZapLogger{}, NewLogger("info", "json", buf))
	assert.IsType(t, &ZapLogger{}, NewLogger("info", "console", buf))
	assert.IsType(t, &DefaultLogger{}, NewLogger("info", "text", buf))
}

func TestGlobalLogger(t *testing.T) {
	original := GetGlobalLogger()
	defer SetGlobalLogger(original)

	buf := &bytes.Buffer{}
	SetGlobalLogger(NewDefaultLogger(LevelInfo, buf))

	GetGlobalLogger().Info("global log")

	assert.Contains(t, buf.String(), "global log")
}

func TestLoggerInterface(t *testing.T) {
	var _ Logger = &DefaultLogger{}
	var _ Logger = &NullLogger{}
	var _ Logger = &ZapLogger{}
}
