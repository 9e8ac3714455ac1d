// Package logger builds the diagnostic logger of a mail series run.
//
// Diagnostics go to stderr so that messages printed in dry-run mode can be
// redirected on their own. Verbosity selects the level (0 warn, 1 info,
// 2+ debug), and context extractors attach the run ID and the record number
// to every entry logged with a context:
//
//	log := logger.New(logger.Config{Verbosity: 1})
//	ctx := logger.WithRunID(context.Background(), uuid.NewString())
//	ctx = logger.WithRecord(ctx, 3)
//	log.InfoContext(ctx, "dropping at facility", slog.String("fid", fid))
//	// level=INFO msg="dropping at facility" fid=... run_id=... record=3
//
// NewWithSentry additionally forwards warnings and errors to Sentry when a
// DSN is configured and falls back to local logging otherwise.
package logger
