package alpino

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/FocuswithJustin/corpus2alpino/core/errors"
	"github.com/FocuswithJustin/corpus2alpino/core/runner"
	"github.com/FocuswithJustin/corpus2alpino/internal/logging"
	"github.com/FocuswithJustin/corpus2alpino/internal/validation"
)

// ProcessConfig configures a ProcessClient.
type ProcessConfig struct {
	// Path is the Alpino executable or the installation directory
	// containing bin/Alpino.
	Path string

	// Args are appended to the fixed parser flags.
	Args []string

	// Timeout bounds each invocation. Zero means no limit.
	Timeout time.Duration
}

// ProcessClient parses sentences by running Alpino as a subprocess.
type ProcessClient struct {
	executable string
	args       []string
	timeout    time.Duration
	info       Info
}

// NewProcessClient resolves the executable. A missing executable is a
// configuration error.
func NewProcessClient(cfg ProcessConfig) (*ProcessClient, error) {
	executable, home, err := resolveExecutable(cfg.Path)
	if err != nil {
		return nil, err
	}
	return &ProcessClient{
		executable: executable,
		args:       cfg.Args,
		timeout:    cfg.Timeout,
		info:       ReadInfo(home),
	}, nil
}

// resolveExecutable returns the executable and installation directory.
func resolveExecutable(path string) (string, string, error) {
	if path == "" {
		return "", "", errors.NewConfig("alpino", "executable path is required", nil)
	}
	st, err := os.Stat(path)
	if err != nil {
		return "", "", errors.NewConfig("alpino", "cannot find Alpino", errors.NewNotFound("executable", path))
	}
	if !st.IsDir() {
		// <home>/bin/Alpino
		return path, filepath.Dir(filepath.Dir(path)), nil
	}

	executable := filepath.Join(path, "bin", "Alpino")
	if st, err := os.Stat(executable); err != nil || st.IsDir() {
		return "", "", errors.NewConfig("alpino", "cannot find Alpino executable within "+path,
			errors.NewNotFound("executable", executable))
	}
	return executable, path, nil
}

// Info returns the parser version, if known.
func (c *ProcessClient) Info() Info {
	return c.info
}

// ParseLine runs the parser for one sentence and reads the tree it writes.
func (c *ProcessClient) ParseLine(ctx context.Context, text, id string) (string, error) {
	outputName := id + ".xml"
	if err := validation.ValidateFilename(outputName); err != nil {
		return "", errors.Wrapf(err, "invalid sentence id %q", id)
	}

	var xml string
	err := runner.RunInTempDir("alpino-*", func(dir string) error {
		args := append([]string{"-notk", "-end_hook=xml", "-flag", "treebank", dir, "-parse"}, c.args...)
		req := runner.NewRequest(c.executable, args...)
		req.Stdin = []byte(id + "|" + strings.TrimRight(text, "\r\n") + "\n")
		req.Timeout = c.timeout

		result, err := runner.Execute(ctx, req)
		if err != nil {
			return err
		}
		if out := strings.TrimSpace(string(result.Stdout)); out != "" {
			logging.WarnContext(ctx, "alpino output", "utterance_id", id, "stdout", out)
		}
		if out := strings.TrimSpace(string(result.Stderr)); out != "" {
			logging.WarnContext(ctx, "alpino output", "utterance_id", id, "stderr", out)
		}
		if result.ExitCode != 0 {
			logging.WarnContext(ctx, "alpino exited with nonzero status", "utterance_id", id, "exit_code", result.ExitCode)
		}

		outputPath := filepath.Join(dir, outputName)
		data, err := os.ReadFile(outputPath)
		if err != nil {
			return errors.NewIO("read", outputPath, err)
		}
		xml = string(data)
		return nil
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to parse sentence %s", id)
	}
	return xml, nil
}
