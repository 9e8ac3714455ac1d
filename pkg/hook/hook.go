package hook

import (
	"context"
	"fmt"
	"strings"
)

// Default entry points invoked when a descriptor names no function.
const (
	DefaultOnce = "handle_once"
	DefaultEach = "handle_each"
)

// Vars are the variables a template is rendered with.
// Hooks receive them and return the (possibly modified) set.
type Vars struct {
	Global   map[string]any `json:"global"`
	Record   map[string]any `json:"record"`
	External any            `json:"external"`
	Number   int            `json:"number"`
}

// Hook mutates template variables before rendering.
// RunOnce is invoked a single time per series, RunEach once per processed record.
type Hook interface {
	RunOnce(ctx context.Context, vars Vars) (Vars, error)
	RunEach(ctx context.Context, vars Vars) (Vars, error)
}

// Func is a single hook entry point.
type Func func(ctx context.Context, vars Vars) (Vars, error)

// Funcs adapts a pair of functions to the Hook interface.
// A nil function returns the variables unchanged.
type Funcs struct {
	Once Func
	Each Func
}

// RunOnce implements Hook.
func (f Funcs) RunOnce(ctx context.Context, vars Vars) (Vars, error) {
	if f.Once == nil {
		return vars, nil
	}
	return f.Once(ctx, vars)
}

// RunEach implements Hook.
func (f Funcs) RunEach(ctx context.Context, vars Vars) (Vars, error) {
	if f.Each == nil {
		return vars, nil
	}
	return f.Each(ctx, vars)
}

// Descriptor names a hook in the series document.
type Descriptor struct {
	Filename string `json:"filename"`
	Function string `json:"function,omitempty"`
}

// Validate checks that the descriptor names a hook.
func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.Filename) == "" {
		return fmt.Errorf("%w: missing filename", ErrInvalidDescriptor)
	}
	return nil
}

func (d Descriptor) String() string {
	if d.Function == "" {
		return d.Filename
	}
	return d.Filename + ":" + d.Function
}

// Phase selects which entry point of a hook runs.
type Phase int

const (
	PhaseOnce Phase = iota
	PhaseEach
)

func (p Phase) String() string {
	if p == PhaseOnce {
		return "once"
	}
	return "each"
}

func (p Phase) call(ctx context.Context, h Hook, vars Vars) (Vars, error) {
	if p == PhaseOnce {
		return h.RunOnce(ctx, vars)
	}
	return h.RunEach(ctx, vars)
}
