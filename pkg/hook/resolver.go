package hook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dmitrymomot/mailseries/pkg/logger"
)

// Resolver turns descriptors into hooks and runs them in order.
// Registered hooks take priority; any other descriptor runs as an Exec hook
// with its filename resolved relative to the resolver's base directory.
type Resolver struct {
	registry *Registry
	logger   *slog.Logger
	dir      string
	timeout  time.Duration
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithRegistry sets the in-process hooks consulted before external programs.
func WithRegistry(r *Registry) ResolverOption {
	return func(res *Resolver) {
		res.registry = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ResolverOption {
	return func(res *Resolver) {
		if l != nil {
			res.logger = l
		}
	}
}

// WithExecTimeout bounds each external hook invocation.
func WithExecTimeout(d time.Duration) ResolverOption {
	return func(res *Resolver) {
		res.timeout = d
	}
}

// NewResolver creates a resolver for hooks stored next to the template in dir.
func NewResolver(dir string, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		dir:    dir,
		logger: logger.NewNope(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the hook for a descriptor.
func (r *Resolver) Resolve(d Descriptor) (Hook, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if h, ok := r.registry.Lookup(d.Filename); ok {
		return h, nil
	}

	path := d.Filename
	if !filepath.IsAbs(path) && r.dir != "" {
		path = filepath.Join(r.dir, path)
	}
	dir := filepath.Dir(path)
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
		dir = filepath.Dir(abs)
	}
	return &Exec{Path: path, Function: d.Function, Dir: dir, Timeout: r.timeout}, nil
}

// Run applies the hooks named by descs in order, feeding each the variables
// returned by the previous one. The first failure stops the chain.
func (r *Resolver) Run(ctx context.Context, phase Phase, descs []Descriptor, vars Vars) (Vars, error) {
	for _, d := range descs {
		h, err := r.Resolve(d)
		if err != nil {
			return vars, err
		}
		r.logger.DebugContext(ctx, "running hook",
			slog.String("hook", d.String()),
			slog.String("phase", phase.String()),
		)
		vars, err = phase.call(ctx, h, vars)
		if err != nil {
			if !errors.Is(err, ErrHookFailed) {
				err = fmt.Errorf("%w: %w", ErrHookFailed, err)
			}
			return vars, fmt.Errorf("%s hook %s: %w", phase, d, err)
		}
	}
	return vars, nil
}
