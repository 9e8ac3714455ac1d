package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultExecTimeout bounds a single external hook invocation.
const DefaultExecTimeout = time.Minute

// Exec runs an external program as a hook.
//
// The program is started with the entry point name as its only argument,
// receives the variables as JSON on stdin and writes the updated variables
// as JSON to stdout. Empty output leaves the variables unchanged, and top-level
// keys missing from the output keep their input values.
type Exec struct {
	Path     string
	Function string // overrides DefaultOnce / DefaultEach
	Dir      string // working directory, the program's directory when empty
	Timeout  time.Duration
}

// RunOnce implements Hook.
func (e *Exec) RunOnce(ctx context.Context, vars Vars) (Vars, error) {
	return e.run(ctx, e.entry(DefaultOnce), vars)
}

// RunEach implements Hook.
func (e *Exec) RunEach(ctx context.Context, vars Vars) (Vars, error) {
	return e.run(ctx, e.entry(DefaultEach), vars)
}

func (e *Exec) entry(def string) string {
	if e.Function != "" {
		return e.Function
	}
	return def
}

func (e *Exec) run(ctx context.Context, entry string, vars Vars) (Vars, error) {
	in, err := json.Marshal(vars)
	if err != nil {
		return vars, fmt.Errorf("%w: %s: encode vars: %v", ErrHookFailed, e.Path, err)
	}

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultExecTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.Path, entry)
	cmd.Dir = e.Dir
	cmd.Stdin = bytes.NewReader(in)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return vars, fmt.Errorf("%w: %s %s: %v: %s", ErrHookFailed, e.Path, entry, err, msg)
		}
		return vars, fmt.Errorf("%w: %s %s: %v", ErrHookFailed, e.Path, entry, err)
	}

	if len(bytes.TrimSpace(stdout.Bytes())) == 0 {
		return vars, nil
	}

	var out Vars
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return vars, fmt.Errorf("%w: %s %s: decode output: %v", ErrHookFailed, e.Path, entry, err)
	}
	return merge(vars, out, stdout.Bytes()), nil
}

// merge keeps the input's fields for every top-level key the hook left out.
func merge(in, out Vars, raw []byte) Vars {
	var present map[string]json.RawMessage
	if err := json.Unmarshal(raw, &present); err != nil {
		return out
	}
	if _, ok := present["global"]; !ok {
		out.Global = in.Global
	}
	if _, ok := present["record"]; !ok {
		out.Record = in.Record
	}
	if _, ok := present["external"]; !ok {
		out.External = in.External
	}
	if _, ok := present["number"]; !ok {
		out.Number = in.Number
	}
	return out
}
