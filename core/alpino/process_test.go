package alpino

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/FocuswithJustin/corpus2alpino/core/errors"
)

// fakeAlpino writes the tree for the single input line to <dir>/<id>.xml,
// where dir is the argument after "-flag treebank".
const fakeAlpino = `#!/bin/sh
root="$(dirname "$0")/.."
dir="$5"
echo "$dir" > "$root/lastdir"
echo "$@" > "$root/args"
IFS= read -r line
id="${line%%|*}"
text="${line#*|}"
printf '<?xml version="1.0" encoding="UTF-8"?>\n<alpino_ds version="1.3">\n  <sentence sentid="%s">%s</sentence>\n</alpino_ds>\n' "$id" "$text" > "$dir/$id.xml"
echo "parsed $id" >&2
`

// brokenAlpino exits without writing a tree.
const brokenAlpino = `#!/bin/sh
root="$(dirname "$0")/.."
echo "$5" > "$root/lastdir"
echo "out of memory" >&2
exit 1
`

func installAlpino(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake Alpino requires a POSIX shell")
	}
	home := t.TempDir()
	bin := filepath.Join(home, "bin")
	if err := os.MkdirAll(bin, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(bin, "Alpino"), []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(home, "version"), []byte("Alpino-test\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return home
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return strings.TrimSpace(string(data))
}

func TestProcessClientPathResolution(t *testing.T) {
	home := installAlpino(t, fakeAlpino)

	for _, path := range []string{home, filepath.Join(home, "bin", "Alpino")} {
		c, err := NewProcessClient(ProcessConfig{Path: path})
		if err != nil {
			t.Fatalf("NewProcessClient(%s) failed: %v", path, err)
		}
		if c.Info().Version != "Alpino-test" {
			t.Errorf("NewProcessClient(%s): Version = %q", path, c.Info().Version)
		}
	}
}

func TestProcessClientMissingExecutable(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"empty", ""},
		{"does not exist", filepath.Join(t.TempDir(), "nope")},
		{"directory without bin/Alpino", t.TempDir()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProcessClient(ProcessConfig{Path: tt.path})
			if !errors.Is(err, errors.ErrConfig) {
				t.Errorf("NewProcessClient() error = %v, want a configuration error", err)
			}
		})
	}
}

func TestProcessClientParseLine(t *testing.T) {
	home := installAlpino(t, fakeAlpino)
	c, err := NewProcessClient(ProcessConfig{Path: home, Args: []string{"-veryfast"}})
	if err != nil {
		t.Fatalf("NewProcessClient failed: %v", err)
	}

	xml, err := c.ParseLine(context.Background(), "de kat slaapt", "doc-1")
	if err != nil {
		t.Fatalf("ParseLine failed: %v", err)
	}
	if !strings.Contains(xml, `<sentence sentid="doc-1">de kat slaapt</sentence>`) {
		t.Errorf("unexpected tree:\n%s", xml)
	}

	args := readFile(t, filepath.Join(home, "args"))
	if !strings.HasPrefix(args, "-notk -end_hook=xml -flag treebank ") || !strings.HasSuffix(args, "-parse -veryfast") {
		t.Errorf("unexpected arguments: %q", args)
	}

	workDir := readFile(t, filepath.Join(home, "lastdir"))
	if _, err := os.Stat(workDir); !os.IsNotExist(err) {
		t.Errorf("work dir %s was not removed", workDir)
	}
}

func TestProcessClientMissingOutput(t *testing.T) {
	home := installAlpino(t, brokenAlpino)
	c, err := NewProcessClient(ProcessConfig{Path: home})
	if err != nil {
		t.Fatalf("NewProcessClient failed: %v", err)
	}

	if _, err := c.ParseLine(context.Background(), "hallo", "1"); err == nil {
		t.Error("ParseLine should fail when no tree is written")
	}

	workDir := readFile(t, filepath.Join(home, "lastdir"))
	if _, err := os.Stat(workDir); !os.IsNotExist(err) {
		t.Errorf("work dir %s was not removed", workDir)
	}
}

func TestProcessClientRejectsUnsafeID(t *testing.T) {
	home := installAlpino(t, fakeAlpino)
	c, err := NewProcessClient(ProcessConfig{Path: home})
	if err != nil {
		t.Fatalf("NewProcessClient failed: %v", err)
	}
	if _, err := c.ParseLine(context.Background(), "hallo", "../x"); err == nil {
		t.Error("ParseLine should reject ids containing path separators")
	}
}
