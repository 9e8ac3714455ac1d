package hook_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailseries/pkg/hook"
)

func writeScript(t *testing.T, dir, name, body string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell hooks are not supported on windows")
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"+body), 0o755))
}

func TestDescriptor_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, hook.Descriptor{Filename: "h.sh"}.Validate())
	require.ErrorIs(t, hook.Descriptor{Function: "x"}.Validate(), hook.ErrInvalidDescriptor)
	assert.Equal(t, "h.sh:setup", hook.Descriptor{Filename: "h.sh", Function: "setup"}.String())
}

func TestFuncs_NilPassesThrough(t *testing.T) {
	t.Parallel()

	in := hook.Vars{Number: 3}
	out, err := hook.Funcs{}.RunOnce(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	out, err = hook.Funcs{}.RunEach(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestResolver_RegistryFirst(t *testing.T) {
	t.Parallel()

	reg := hook.NewRegistry()
	reg.Register("counter", hook.Funcs{
		Once: func(_ context.Context, v hook.Vars) (hook.Vars, error) {
			v.Global["count"] = 0
			return v, nil
		},
		Each: func(_ context.Context, v hook.Vars) (hook.Vars, error) {
			v.Global["count"] = v.Global["count"].(int) + 1
			v.Record["seen"] = true
			return v, nil
		},
	})
	assert.Equal(t, []string{"counter"}, reg.Names())

	r := hook.NewResolver(t.TempDir(), hook.WithRegistry(reg))
	descs := []hook.Descriptor{{Filename: "counter"}}

	vars := hook.Vars{Global: map[string]any{}, Record: map[string]any{}}
	vars, err := r.Run(context.Background(), hook.PhaseOnce, descs, vars)
	require.NoError(t, err)
	vars, err = r.Run(context.Background(), hook.PhaseEach, descs, vars)
	require.NoError(t, err)
	vars, err = r.Run(context.Background(), hook.PhaseEach, descs, vars)
	require.NoError(t, err)

	assert.Equal(t, 2, vars.Global["count"])
	assert.Equal(t, true, vars.Record["seen"])
}

func TestResolver_RegisteredErrorIsHookFailure(t *testing.T) {
	t.Parallel()

	reg := hook.NewRegistry()
	reg.Register("broken", hook.Funcs{
		Each: func(_ context.Context, v hook.Vars) (hook.Vars, error) {
			return v, errors.New("boom")
		},
	})
	r := hook.NewResolver("", hook.WithRegistry(reg))

	_, err := r.Run(context.Background(), hook.PhaseEach, []hook.Descriptor{{Filename: "broken"}}, hook.Vars{})
	require.ErrorIs(t, err, hook.ErrHookFailed)
	assert.Contains(t, err.Error(), "boom")
}

func TestExec(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeScript(t, dir, "echo.sh", `cat >/dev/null
printf '{"global":{"entry":"%s"},"record":{"name":"changed"},"number":7}' "$1"
`)
	writeScript(t, dir, "noop.sh", "cat >/dev/null\n")
	writeScript(t, dir, "partial.sh", `cat >/dev/null
printf '{"global":{"x":1}}'
`)
	writeScript(t, dir, "fail.sh", "echo 'no such list' >&2\nexit 3\n")
	writeScript(t, dir, "garbage.sh", "echo 'not json'\n")

	r := hook.NewResolver(dir)
	in := hook.Vars{
		Global:   map[string]any{"a": "b"},
		Record:   map[string]any{"name": "orig"},
		External: map[string]any{"tag": "news"},
		Number:   1,
	}

	tests := []struct {
		name    string
		phase   hook.Phase
		desc    hook.Descriptor
		check   func(t *testing.T, out hook.Vars)
		wantErr string
	}{
		{
			name:  "once entry point",
			phase: hook.PhaseOnce,
			desc:  hook.Descriptor{Filename: "echo.sh"},
			check: func(t *testing.T, out hook.Vars) {
				assert.Equal(t, "handle_once", out.Global["entry"])
				assert.Equal(t, "changed", out.Record["name"])
				assert.Equal(t, 7, out.Number)
			},
		},
		{
			name:  "each entry point",
			phase: hook.PhaseEach,
			desc:  hook.Descriptor{Filename: "echo.sh"},
			check: func(t *testing.T, out hook.Vars) {
				assert.Equal(t, "handle_each", out.Global["entry"])
			},
		},
		{
			name:  "custom entry point",
			phase: hook.PhaseEach,
			desc:  hook.Descriptor{Filename: "echo.sh", Function: "prepare"},
			check: func(t *testing.T, out hook.Vars) {
				assert.Equal(t, "prepare", out.Global["entry"])
			},
		},
		{
			name:  "empty output keeps vars",
			phase: hook.PhaseEach,
			desc:  hook.Descriptor{Filename: "noop.sh"},
			check: func(t *testing.T, out hook.Vars) {
				assert.Equal(t, in, out)
			},
		},
		{
			name:  "partial output keeps omitted fields",
			phase: hook.PhaseEach,
			desc:  hook.Descriptor{Filename: "partial.sh"},
			check: func(t *testing.T, out hook.Vars) {
				assert.Equal(t, map[string]any{"x": float64(1)}, out.Global)
				assert.Equal(t, in.Record, out.Record)
				assert.Equal(t, in.External, out.External)
				assert.Equal(t, 1, out.Number)
			},
		},
		{
			name:    "non-zero exit",
			phase:   hook.PhaseEach,
			desc:    hook.Descriptor{Filename: "fail.sh"},
			wantErr: "no such list",
		},
		{
			name:    "invalid output",
			phase:   hook.PhaseEach,
			desc:    hook.Descriptor{Filename: "garbage.sh"},
			wantErr: "decode output",
		},
		{
			name:    "missing program",
			phase:   hook.PhaseEach,
			desc:    hook.Descriptor{Filename: "missing.sh"},
			wantErr: "missing.sh",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := r.Run(context.Background(), tt.phase, []hook.Descriptor{tt.desc}, in)
			if tt.wantErr != "" {
				require.ErrorIs(t, err, hook.ErrHookFailed)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, out)
		})
	}
}

func TestResolver_InvalidDescriptor(t *testing.T) {
	t.Parallel()

	r := hook.NewResolver("")
	_, err := r.Resolve(hook.Descriptor{})
	require.ErrorIs(t, err, hook.ErrInvalidDescriptor)
}
