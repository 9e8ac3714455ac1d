package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrymomot/mailseries/pkg/delivery"
	"github.com/dmitrymomot/mailseries/pkg/hook"
	"github.com/dmitrymomot/mailseries/pkg/logger"
	"github.com/dmitrymomot/mailseries/pkg/mailer"
	"github.com/dmitrymomot/mailseries/pkg/mailer/smtp"
	"github.com/dmitrymomot/mailseries/pkg/render"
	"github.com/dmitrymomot/mailseries/pkg/series"
)

// ErrInvalidConfig is returned by New for an incomplete configuration.
var ErrInvalidConfig = errors.New("invalid runner configuration")

var separator = strings.Repeat("─", 50)

// Config describes one run over a series.
type Config struct {
	Template        string // path of the template file
	DataPath        string // path of the series document, rewritten after deliveries
	Selected        []int  // 1-based record numbers to process; empty selects all
	ForceResend     bool   // ignore earlier successful deliveries
	SuppressPersist bool   // never write the series document back
	External        any    // exposed to templates as .External
}

// Runner processes every record of a series: hooks, render, assemble,
// then print or deliver and persist.
type Runner struct {
	cfg       Config
	renderer  *render.Renderer
	assembler *mailer.Assembler
	tracker   *delivery.Tracker
	hooks     *hook.Resolver
	logger    *slog.Logger
	out       io.Writer
	name      string
}

// New creates a runner. Templates and hook programs are looked up in the
// directory of cfg.Template unless replaced through options.
func New(cfg Config, opts ...Option) (*Runner, error) {
	if cfg.Template == "" {
		return nil, fmt.Errorf("%w: template path is required", ErrInvalidConfig)
	}
	if cfg.DataPath == "" {
		return nil, fmt.Errorf("%w: series data path is required", ErrInvalidConfig)
	}

	dir := filepath.Dir(cfg.Template)
	r := &Runner{
		cfg:    cfg,
		logger: logger.NewNope(),
		out:    os.Stdout,
		name:   filepath.Base(cfg.Template),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.renderer == nil {
		r.renderer = render.New(os.DirFS(dir))
	}
	if r.assembler == nil {
		r.assembler = mailer.NewAssembler(mailer.WithLogger(r.logger))
	}
	if r.hooks == nil {
		r.hooks = hook.NewResolver(dir, hook.WithLogger(r.logger))
	}
	return r, nil
}

// Run processes the series and returns the per-state counts.
//
// A missing or unparsable template stops the run before any record is
// processed. Render failures are logged and the record is skipped. Malformed messages,
// hook failures, attachment read errors and persistence errors stop the run.
// Delivery failures are recorded in the record's state and never stop it.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	doc, err := series.Load(r.cfg.DataPath)
	if err != nil {
		return sum, err
	}
	if err := r.renderer.Load(r.name); err != nil {
		return sum, err
	}
	sum.Total = doc.Len()

	selected := make(map[int]struct{}, len(r.cfg.Selected))
	for _, n := range r.cfg.Selected {
		if n < 1 || n > doc.Len() {
			r.logger.WarnContext(ctx, "selected record does not exist",
				slog.Int("record", n),
				slog.Int("records", doc.Len()),
			)
		}
		selected[n] = struct{}{}
	}

	global := doc.Global()
	for _, rec := range doc.Records() {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		rctx := logger.WithRecord(ctx, rec.Number())
		record, err := rec.Vars()
		if err != nil {
			return sum, err
		}
		vars := hook.Vars{
			Global:   global,
			Record:   record,
			External: r.cfg.External,
			Number:   rec.Number(),
		}

		if rec.Number() == 1 && len(doc.HooksOnce()) > 0 {
			out, err := r.hooks.Run(rctx, hook.PhaseOnce, doc.HooksOnce(), vars)
			if err != nil {
				return sum, err
			}
			if out.Global != nil {
				global = out.Global
			}
			vars.Global = global
		}

		st, err := r.process(rctx, doc, rec, vars, &global, selected, &sum)
		if err != nil {
			return sum, fmt.Errorf("record #%d: %w", rec.Number(), err)
		}
		r.logger.DebugContext(rctx, "record processed", slog.String("state", st.String()))
		sum.add(st)
	}

	r.logger.InfoContext(ctx, "series complete", slog.Any("summary", sum))
	return sum, nil
}

func (r *Runner) process(
	ctx context.Context,
	doc *series.Document,
	rec *series.Record,
	vars hook.Vars,
	global *map[string]any,
	selected map[int]struct{},
	sum *Summary,
) (State, error) {
	if len(selected) > 0 {
		if _, ok := selected[rec.Number()]; !ok {
			return StateSkippedByFilter, nil
		}
	}

	if !r.cfg.ForceResend && r.alreadySent(ctx, rec.Ledger()) {
		return StateSkippedAlreadySent, nil
	}

	if len(doc.Hooks()) > 0 {
		out, err := r.hooks.Run(ctx, hook.PhaseEach, doc.Hooks(), vars)
		if err != nil {
			return 0, err
		}
		if out.Global == nil {
			out.Global = *global
		}
		vars = out
		*global = out.Global
	}

	collector := mailer.NewCollector()
	rendered, err := r.renderer.Render(r.name, vars, collector)
	if err != nil {
		r.logger.ErrorContext(ctx, "rendering failed", slog.Any("error", err))
		return StateRenderFailed, nil
	}

	email, err := r.assembler.Assemble(ctx, rendered, collector.Specs())
	if err != nil {
		return 0, err
	}

	if !r.delivering() {
		if err := r.print(rec.Number(), email); err != nil {
			return 0, err
		}
		return StatePrinted, nil
	}

	ledger := rec.Ledger()
	if r.tracker.Deliver(ctx, email, ledger, r.cfg.ForceResend) && !r.cfg.SuppressPersist {
		if err := doc.Save(r.cfg.DataPath); err != nil {
			return 0, err
		}
		sum.StateSaves++
	}

	if ledger.Delivered(r.tracker.FIDs()) {
		return StateSent, nil
	}
	return StatePartiallySent, nil
}

// alreadySent reports whether the record is retired: it carries an operator
// marker, or every configured facility has delivered it.
func (r *Runner) alreadySent(ctx context.Context, ledger *delivery.Ledger) bool {
	if at, ok := ledger.Marked(); ok {
		r.logger.InfoContext(ctx, "skipped, record marked as sent", slog.Time("sent", at))
		return true
	}
	if r.delivering() && ledger.Delivered(r.tracker.FIDs()) {
		r.logger.InfoContext(ctx, "skipped, delivered through every facility")
		return true
	}
	return false
}

func (r *Runner) delivering() bool {
	return r.tracker != nil && r.tracker.HasFacilities()
}

func (r *Runner) print(number int, email *mailer.Email) error {
	if _, err := fmt.Fprintf(r.out, "%s Mail #%d %s\n", separator, number, separator); err != nil {
		return err
	}
	if err := smtp.WriteMessage(r.out, email); err != nil {
		return err
	}
	_, err := fmt.Fprintln(r.out)
	return err
}
