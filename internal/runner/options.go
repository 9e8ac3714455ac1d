package runner

import (
	"io"
	"log/slog"

	"github.com/dmitrymomot/mailseries/pkg/delivery"
	"github.com/dmitrymomot/mailseries/pkg/hook"
	"github.com/dmitrymomot/mailseries/pkg/mailer"
	"github.com/dmitrymomot/mailseries/pkg/render"
)

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. If nil, logging is disabled.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTracker enables delivery through the tracker's facilities.
// Without a tracker, or with one that has no facilities, messages are printed.
func WithTracker(t *delivery.Tracker) Option {
	return func(r *Runner) {
		r.tracker = t
	}
}

// WithAssembler replaces the default message assembler.
func WithAssembler(a *mailer.Assembler) Option {
	return func(r *Runner) {
		if a != nil {
			r.assembler = a
		}
	}
}

// WithRenderer replaces the default renderer over the template directory.
func WithRenderer(rd *render.Renderer) Option {
	return func(r *Runner) {
		if rd != nil {
			r.renderer = rd
		}
	}
}

// WithHooks replaces the default hook resolver.
func WithHooks(res *hook.Resolver) Option {
	return func(r *Runner) {
		if res != nil {
			r.hooks = res
		}
	}
}

// WithOutput sets where messages are printed when no facility is configured.
// Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		if w != nil {
			r.out = w
		}
	}
}
