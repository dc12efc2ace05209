package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStandardLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStandardLogger(WithOutput(&buf), WithLevel(LevelDebug))

	logger.Debug("This is a debug message")
	assert.Contains(t, buf.String(), "[DEBUG] This is a debug message")
	buf.Reset()

	logger.Warn("page %d of table %d", 3, 7)
	assert.Contains(t, buf.String(), "[WARN] page 3 of table 7")
	buf.Reset()

	logger.WithFields(map[string]interface{}{"table_id": 7, "component": "iterator"}).Info("refetch")
	assert.Contains(t, buf.String(), "[INFO] component=iterator table_id=7 refetch")
	buf.Reset()

	// Derived loggers share the parent's level
	child := logger.WithField("module", "client")
	logger.SetLevel(LevelError)
	child.Info("should not appear")
	logger.Warn("should not appear")
	child.Error("error appears")
	output := buf.String()
	assert.NotContains(t, output, "should not appear")
	assert.Contains(t, output, "module=client error appears")
	assert.Equal(t, LevelError, child.GetLevel())
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"":        LevelInfo,
		"warning": LevelWarn,
		" error ": LevelError,
		"fatal":   LevelFatal,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
	assert.Equal(t, "LEVEL(9)", Level(9).String())
}

func TestDefaultLogger(t *testing.T) {
	original := GetDefaultLogger()
	defer SetDefaultLogger(original)

	var buf bytes.Buffer
	SetDefaultLogger(NewStandardLogger(WithOutput(&buf)))

	Info("Global info message")
	WithField("global", true).Info("Global with field")
	Debug("hidden")

	output := buf.String()
	assert.Contains(t, output, "[INFO] Global info message")
	assert.Contains(t, output, "global=true Global with field")
	assert.False(t, strings.Contains(output, "hidden"))
}

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapLoggerFrom(zap.New(core), LevelInfo)

	logger.Debug("dropped")
	logger.WithField("table_id", uint64(7)).Info("fetched %d keys", 100)
	logger.WithFields(map[string]interface{}{"start_key": "k99"}).Warn("refetch failed")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "fetched 100 keys", entries[0].Message)
	assert.Equal(t, uint64(7), entries[0].ContextMap()["table_id"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "k99", entries[1].ContextMap()["start_key"])

	logger.SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, logger.GetLevel())
	logger.Debug("kept")
	assert.Equal(t, 1, logs.FilterMessage("kept").Len())
}
