package logger

import (
	"context"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig holds Sentry integration configuration.
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN"`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"production"`
	// MinLevel determines which log levels to send to Sentry (e.g., slog.LevelWarn for warnings+errors)
	MinLevel slog.Level
}

// NewWithSentry creates a logger that writes to cfg.Output and reports to Sentry.
// If DSN is empty, or Sentry fails to initialize, only local logging is enabled.
// The returned flush function must be called before the process exits,
// since a CLI run is usually shorter than Sentry's background batching.
func NewWithSentry(cfg Config, sentryCfg SentryConfig, extractors ...ContextExtractor) (*slog.Logger, func()) {
	local := baseHandler(cfg)
	extractors = withDefaults(extractors)
	noop := func() {}

	if sentryCfg.DSN == "" {
		return slog.New(NewContextHandler(local, extractors...)), noop
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         sentryCfg.DSN,
		Environment: sentryCfg.Environment,
		EnableLogs:  true,
	}); err != nil {
		slog.New(local).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		return slog.New(NewContextHandler(local, extractors...)), noop
	}

	// Errors create Issues; warnings are kept as searchable logs unless MinLevel is error.
	eventLevel := []slog.Level{slog.LevelError}
	logLevel := []slog.Level{slog.LevelWarn, slog.LevelError}
	if sentryCfg.MinLevel == slog.LevelError {
		logLevel = []slog.Level{slog.LevelError}
	}

	sentryHandler := sentryslog.Option{
		EventLevel: eventLevel,
		LogLevel:   logLevel,
	}.NewSentryHandler(context.Background())

	combined := newMultiHandler(local, sentryHandler)
	flush := func() { sentry.Flush(2 * time.Second) }

	return slog.New(NewContextHandler(combined, extractors...)), flush
}
