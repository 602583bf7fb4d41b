package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestExecuteCapturesOutput(t *testing.T) {
	skipOnWindows(t)

	req := NewRequest("/bin/sh", "-c", `read line; echo "got $line"; echo warn >&2`)
	req.Stdin = []byte("42|hallo\n")

	result, err := Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", result.ExitCode)
	}
	if got := strings.TrimSpace(string(result.Stdout)); got != "got 42|hallo" {
		t.Errorf("Stdout = %q", got)
	}
	if got := strings.TrimSpace(string(result.Stderr)); got != "warn" {
		t.Errorf("Stderr = %q", got)
	}
}

func TestExecuteNonzeroExit(t *testing.T) {
	skipOnWindows(t)

	result, err := Execute(context.Background(), NewRequest("/bin/sh", "-c", "exit 3"))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", result.ExitCode)
	}
}

func TestExecuteMissingExecutable(t *testing.T) {
	_, err := Execute(context.Background(), NewRequest(filepath.Join(t.TempDir(), "missing")))
	if err == nil {
		t.Error("Execute should fail for a missing executable")
	}
}

func TestExecuteTimeout(t *testing.T) {
	skipOnWindows(t)

	req := NewRequest("/bin/sh", "-c", "sleep 5")
	req.Timeout = 50 * time.Millisecond
	_, err := Execute(context.Background(), req)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Execute() error = %v, want deadline exceeded", err)
	}
}

func TestRunInTempDirRemovesDir(t *testing.T) {
	var seen string
	err := RunInTempDir("runner-test-*", func(dir string) error {
		seen = dir
		return os.WriteFile(filepath.Join(dir, "1.xml"), []byte("<a/>"), 0644)
	})
	if err != nil {
		t.Fatalf("RunInTempDir failed: %v", err)
	}
	if _, err := os.Stat(seen); !os.IsNotExist(err) {
		t.Errorf("work dir %s still exists", seen)
	}
}

func TestRunInTempDirRemovesDirOnError(t *testing.T) {
	var seen string
	sentinel := errors.New("boom")
	err := RunInTempDir("runner-test-*", func(dir string) error {
		seen = dir
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("RunInTempDir() error = %v, want %v", err, sentinel)
	}
	if _, err := os.Stat(seen); !os.IsNotExist(err) {
		t.Errorf("work dir %s still exists", seen)
	}
}

func TestRunInTempDirCreateFailure(t *testing.T) {
	orig := osMkdirTemp
	defer func() { osMkdirTemp = orig }()
	osMkdirTemp = func(string, string) (string, error) { return "", errors.New("disk full") }

	called := false
	err := RunInTempDir("x-*", func(string) error { called = true; return nil })
	if err == nil || called {
		t.Errorf("RunInTempDir() = %v, called = %v", err, called)
	}
}
