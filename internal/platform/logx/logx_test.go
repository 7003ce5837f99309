// internal/platform/logx/logx_test.go
package logx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	require.NotNil(t, New())
	require.NotNil(t, NewSilent())
	require.NotNil(t, Nop())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"dbg", LevelDebug},
		{"  debug  ", LevelDebug},

		{"info", LevelInfo},
		{"inf", LevelInfo},
		{"", LevelInfo}, // empty defaults to Info

		{"warn", LevelWarn},
		{"Warning", LevelWarn},

		{"err", LevelError},
		{"ERROR", LevelError},

		{"invalid", LevelInfo},
		{"garbage", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestLogger_WritesStructuredFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewWithCore(core)

	logger.Info("stage finished", "stage", "MasscanScanner", "duration_ms", 12)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "stage finished", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)

	fields := entries[0].ContextMap()
	assert.Equal(t, "MasscanScanner", fields["stage"])
	assert.EqualValues(t, 12, fields["duration_ms"])
}

func TestLogger_WithKeepsScope(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewWithCore(core).With("component", "pipeline")

	logger.Warn("stage failed", "stage", "NmapScanner")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "pipeline", fields["component"])
	assert.Equal(t, "NmapScanner", fields["stage"])
}

func TestLogger_ErrIgnoresNil(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewWithCore(core)

	logger.Err(nil, "stage", "x")
	logger.Err(errors.New("boom"), "stage", "x")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "boom", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}

func TestLogger_SetLevelFilters(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewWithCore(core)

	logger.SetLevel(LevelWarn)
	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0].Message)
}

func TestLogger_SetLevelSharedWithClones(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	parent := NewWithCore(core)
	child := parent.With("component", "child")

	parent.SetLevel(LevelError)
	child.Info("hidden")

	assert.Zero(t, logs.Len())
}

func TestLogger_OddKeyValuesArePadded(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewWithCore(core)

	logger.Info("odd", "dangling")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "(missing)", entries[0].ContextMap()["dangling"])
}
