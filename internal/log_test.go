package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelError, ParseLogLevel("error"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel("WARNING"))
	assert.Equal(t, LogLevelDebug, ParseLogLevel("trace"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel(""))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("chatty"))
}

func TestLoggerWritesThroughZap(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := FromZap(zap.New(core)).With(zap.String("component", "store"))

	l.Info("loaded %d records", 3)
	l.Debug("hidden")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "loaded 3 records", entries[0].Message)
		assert.Equal(t, "store", entries[0].ContextMap()["component"])
	}
}
