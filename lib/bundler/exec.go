// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

package bundler

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/capucosmetics/capucosmetic/lib/builderr"
	"github.com/capucosmetics/capucosmetic/lib/codec"
)

// DefaultOutputLimit bounds how much compiler output is kept for
// diagnostics. Engine batch builds are chatty; only the tail matters.
const DefaultOutputLimit = 64 * 1024

// Environment variables exported to the compiler process.
const (
	EnvSource     = "CAPUCOSMETIC_SOURCE"
	EnvTag        = "CAPUCOSMETIC_TAG"
	EnvBundleName = "CAPUCOSMETIC_BUNDLE_NAME"
	EnvOutputDir  = "CAPUCOSMETIC_OUTPUT_DIR"
	EnvTarget     = "CAPUCOSMETIC_TARGET"
)

// ExecCompiler runs an external compiler command for each request.
//
// The request is passed two ways: as a deterministic CBOR document on
// stdin (see [codec]) and as CAPUCOSMETIC_* environment variables, so
// both structured wrappers and plain shell scripts can consume it.
// Exit status 0 reports success. Stdout and stderr are merged and the
// last OutputLimit bytes are returned in [Response.Output].
type ExecCompiler struct {
	// Command is the executable followed by its arguments.
	Command []string

	// Env holds extra environment variables for the compiler.
	Env map[string]string

	// Dir is the working directory. Empty means the current one.
	Dir string

	// Timeout bounds a single compilation. Zero means no limit.
	Timeout time.Duration

	// OutputLimit caps retained output. Zero means DefaultOutputLimit.
	OutputLimit int
}

// Compile runs the compiler command and waits for it to exit.
func (c *ExecCompiler) Compile(ctx context.Context, request Request) (Response, error) {
	if len(c.Command) == 0 || c.Command[0] == "" {
		return Response{}, builderr.Compilation("no compiler command configured")
	}

	stdin, err := codec.Marshal(request)
	if err != nil {
		return Response{}, builderr.Wrap(builderr.KindCompilation, err, "encoding compiler request")
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	limit := c.OutputLimit
	if limit <= 0 {
		limit = DefaultOutputLimit
	}
	output := &tailBuffer{limit: limit}

	cmd := exec.CommandContext(ctx, c.Command[0], c.Command[1:]...)
	cmd.Dir = c.Dir
	cmd.Stdin = bytes.NewReader(stdin)
	cmd.Stdout = output
	cmd.Stderr = output
	cmd.Env = c.environment(request)

	// Engine editors spawn helper processes. Run the compiler in its
	// own process group and kill the whole group on cancellation.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = 5 * time.Second

	err = cmd.Run()
	response := Response{Output: strings.TrimRight(output.String(), "\n")}
	if err == nil {
		return response, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) && c.Timeout > 0 {
			return response, builderr.Compilation("compiler timed out after %v", c.Timeout)
		}
		return response, builderr.Wrap(builderr.KindCompilation, ctxErr, "compiler interrupted")
	}

	var exitError *exec.ExitError
	if errors.As(err, &exitError) {
		return response, builderr.Compilation("compiler %s exited with status %d", c.Command[0], exitError.ExitCode())
	}
	return response, builderr.Wrap(builderr.KindCompilation, err, "running compiler %s", c.Command[0])
}

func (c *ExecCompiler) environment(request Request) []string {
	env := os.Environ()
	env = append(env,
		EnvSource+"="+request.Source,
		EnvTag+"="+request.Tag,
		EnvBundleName+"="+request.BundleName,
		EnvOutputDir+"="+request.OutputDir,
		EnvTarget+"="+string(request.Target),
	)
	for name, value := range c.Env {
		env = append(env, name+"="+value)
	}
	return env
}

// tailBuffer keeps the last limit bytes written to it. exec.Cmd writes
// stdout and stderr from separate goroutines when they are distinct
// writers, but shares one goroutine when both are the same value, so
// no locking is needed here.
type tailBuffer struct {
	limit     int
	data      []byte
	truncated bool
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	if excess := len(b.data) - b.limit; excess > 0 {
		b.data = append(b.data[:0], b.data[excess:]...)
		b.truncated = true
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	if b.truncated {
		return "[earlier output truncated]\n" + string(b.data)
	}
	return string(b.data)
}
