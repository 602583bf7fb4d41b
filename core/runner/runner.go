// Package runner executes external tools inside ephemeral work directories.
//
// Each execution gets its own directory, removed on every exit path, and a
// deterministic locale so tool output does not depend on the caller's
// environment.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// Request describes a single tool invocation.
type Request struct {
	Executable string
	Args       []string
	Stdin      []byte
	Dir        string
	Env        []string
	Timeout    time.Duration
}

// NewRequest creates a request with the default deterministic environment.
func NewRequest(executable string, args ...string) *Request {
	return &Request{
		Executable: executable,
		Args:       args,
		Env:        DefaultEnv(),
	}
}

// DefaultEnv returns the caller's environment with the locale and time zone
// pinned.
func DefaultEnv() []string {
	return append(os.Environ(),
		"TZ=UTC",
		"LC_ALL=C.UTF-8",
		"LANG=C.UTF-8",
	)
}

// ExecutionResult contains the outcome of a tool run.
type ExecutionResult struct {
	ExitCode int
	Duration time.Duration
	Stdout   []byte
	Stderr   []byte
}

// Execute runs the request and waits for it to finish. A nonzero exit code is
// reported in the result, not as an error; errors are reserved for failures
// to start or wait for the process.
func Execute(ctx context.Context, req *Request) (*ExecutionResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, req.Executable, req.Args...)
	cmd.Dir = req.Dir
	cmd.Env = req.Env
	if req.Stdin != nil {
		cmd.Stdin = bytes.NewReader(req.Stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	startTime := time.Now()
	runErr := cmd.Run()
	duration := time.Since(startTime)

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return nil, fmt.Errorf("failed to run %s: %w", req.Executable, runErr)
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("failed to run %s: %w", req.Executable, ctx.Err())
		}
		exitCode = exitErr.ExitCode()
	}

	return &ExecutionResult{
		ExitCode: exitCode,
		Duration: duration,
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
	}, nil
}

// RunInTempDir creates an ephemeral directory, passes it to fn and removes it
// afterwards, whether fn succeeds, fails or panics.
func RunInTempDir(pattern string, fn func(dir string) error) error {
	workDir, err := osMkdirTemp("", pattern)
	if err != nil {
		return fmt.Errorf("failed to create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	return fn(workDir)
}

// osMkdirTemp is swapped out by tests.
var osMkdirTemp = os.MkdirTemp
