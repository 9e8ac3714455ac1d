package logger_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailseries/pkg/logger"
)

func TestLevelFromVerbosity(t *testing.T) {
	t.Parallel()

	require.Equal(t, slog.LevelWarn, logger.LevelFromVerbosity(-1))
	require.Equal(t, slog.LevelWarn, logger.LevelFromVerbosity(0))
	require.Equal(t, slog.LevelInfo, logger.LevelFromVerbosity(1))
	require.Equal(t, slog.LevelDebug, logger.LevelFromVerbosity(2))
	require.Equal(t, slog.LevelDebug, logger.LevelFromVerbosity(5))
}

func TestNew_ContextAttributes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.Config{Output: &buf, Verbosity: 1})

	ctx := logger.WithRunID(context.Background(), "run-1")
	ctx = logger.WithRecord(ctx, 3)
	log.InfoContext(ctx, "dropping")

	out := buf.String()
	require.Contains(t, out, "msg=dropping")
	require.Contains(t, out, "run_id=run-1")
	require.Contains(t, out, "record=3")
}

func TestNew_LevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.Config{Output: &buf})

	log.Info("hidden")
	log.Warn("shown")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
}

func TestNew_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.Config{Output: &buf, JSON: true})
	log.WarnContext(logger.WithRecord(context.Background(), 7), "render failed")

	require.Contains(t, buf.String(), `"record":7`)
	require.Contains(t, buf.String(), `"msg":"render failed"`)
}

func TestNewContextHandler_SkipsNilAndMissing(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := logger.NewContextHandler(slog.NewTextHandler(&buf, nil), nil, logger.RecordExtractor)
	slog.New(h).Info("no record in context")

	require.NotContains(t, buf.String(), "record=")
}

func TestNewWithSentry_NoDSN(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, flush := logger.NewWithSentry(logger.Config{Output: &buf}, logger.SentryConfig{})
	require.NotNil(t, log)
	require.NotNil(t, flush)
	flush()

	log.Warn("local only")
	require.Contains(t, buf.String(), "local only")
}

func TestNewNope(t *testing.T) {
	t.Parallel()

	log := logger.NewNope()
	require.NotNil(t, log)
	log.Error("discarded")
}
