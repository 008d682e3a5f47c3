package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "chatty"})
	assert.Error(t, err)
}

func TestNewDefaultsToStderr(t *testing.T) {
	logger, err := New(Config{Level: "warn"})
	require.NoError(t, err)
	assert.NotNil(t, logger.Logger)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestForProcessAddsIdentity(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := (&Logger{Logger: zap.New(core)}).ForProcess("child", "run-1", "self-1")

	logger.Info("doing stuff")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "child", fields["role"])
	assert.Equal(t, "run-1", fields["run_id"])
	assert.Equal(t, "self-1", fields["self_id"])
}

func TestInstallOTelErrorHandler(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger := &Logger{Logger: zap.New(core)}

	logger.InstallOTelErrorHandler()
	otel.Handle(errors.New("export failed"))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "telemetry error", logs.All()[0].Message)
}
