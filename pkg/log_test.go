package pkg

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLogLevel(t *testing.T) {
	original := GetLogLevel()
	defer SetLogLevel(original)

	tests := []struct {
		name  string
		level slog.Level
	}{
		{"trace", LevelTrace},
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetLogLevel(tt.level)
			assert.Equal(t, tt.level, GetLogLevel())
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"trace", LevelTrace},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestParseLogFormat(t *testing.T) {
	assert.Equal(t, LogFormatJSON, ParseLogFormat("JSON"))
	assert.Equal(t, LogFormatText, ParseLogFormat("text"))
	assert.Equal(t, LogFormatText, ParseLogFormat(""))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, nil)
	require.NotNil(t, logger)

	logger.Warn("test message")
	assert.Contains(t, buf.String(), "test message")
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, nil)
	require.NotNil(t, logger)

	logger.Warn("test message")
	assert.Contains(t, buf.String(), `"msg":"test message"`)
}

func TestComponentLogging(t *testing.T) {
	original := DefaultLogger
	originalLevel := GetLogLevel()
	defer func() {
		SetLogger(original)
		SetLogLevel(originalLevel)
	}()

	tests := []struct {
		name string
		log  func(Component, string, ...any)
	}{
		{"trace", LogTrace},
		{"debug", LogDebug},
		{"info", LogInfo},
		{"warn", LogWarn},
		{"error", LogError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			SetLogLevel(LevelTrace)
			SetLogOutput(&buf, LogFormatText)

			tt.log(ComponentBridge, tt.name+" message", "key", "value")
			out := buf.String()
			assert.Contains(t, out, tt.name+" message")
			assert.Contains(t, out, "component=bridge")
			assert.Contains(t, out, "key=value")
		})
	}
}

func TestLogLevelFilters(t *testing.T) {
	original := DefaultLogger
	originalLevel := GetLogLevel()
	defer func() {
		SetLogger(original)
		SetLogLevel(originalLevel)
	}()

	var buf bytes.Buffer
	SetLogLevel(slog.LevelWarn)
	SetLogOutput(&buf, LogFormatJSON)

	LogDebug(ComponentPort, "hidden")
	LogTrace(ComponentPort, "hidden")
	assert.Empty(t, buf.String())

	LogWarn(ComponentPort, "shown")
	assert.Contains(t, buf.String(), `"component":"port"`)
}
