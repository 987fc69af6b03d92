package xcodebuild

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Default executable name.
const DefaultPath = "xcodebuild"

// Output of a build tool execution.
type ExecResult struct {
	ExitCode int    // Exit code of the process.
	Output   string // Captured standard output and standard error, interleaved.
}

// Runs the build tool with a list of arguments.
//
// A nonzero exit code is not an error; the caller decides. An error is
// returned only when the process could not be run to completion.
type Executor interface {
	Execute(ctx context.Context, args []string) (*ExecResult, error)
}

// Runs the build tool as a local process.
type CommandExecutor struct {
	Path    string        // Executable path. Defaults to [DefaultPath].
	Dir     string        // Working directory. Empty uses the current one.
	Env     []string      // KEY=VALUE overrides applied on top of the process environment.
	Timeout time.Duration // Per-invocation timeout. Zero disables it.
}

// Implements [Executor].
func (e *CommandExecutor) Execute(ctx context.Context, args []string) (*ExecResult, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	path := e.Path
	if path == "" {
		path = DefaultPath
	}

	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = e.Dir
	cmd.Stdout = &output
	cmd.Stderr = &output
	if len(e.Env) > 0 {
		cmd.Env = mergeEnv(os.Environ(), e.Env)
	}

	slog.Debug("exec", "path", path, "args", strings.Join(args, " "))

	err := cmd.Run()
	if err == nil {
		return &ExecResult{Output: output.String()}, nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: after %s", ErrTimeout, e.Timeout)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		return &ExecResult{ExitCode: exitErr.ExitCode(), Output: output.String()}, nil
	}

	return nil, fmt.Errorf("%w: %w", ErrExec, err)
}

// Merges override env vars on top of a base env slice.
//
// Entries without an equals sign are dropped. Output order follows the first
// appearance of each key.
func mergeEnv(base, overrides []string) []string {
	merged := make(map[string]string, len(base)+len(overrides))
	var keys []string
	for _, entry := range append(append([]string(nil), base...), overrides...) {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if _, seen := merged[k]; !seen {
			keys = append(keys, k)
		}
		merged[k] = v
	}

	result := make([]string, 0, len(keys))
	for _, k := range keys {
		result = append(result, k+"="+merged[k])
	}
	return result
}
