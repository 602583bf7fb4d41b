package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/FocuswithJustin/corpus2alpino/core/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// clearEnv unsets the Alpino variables for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvAlpinoHome, EnvAlpinoServer} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "corpus2alpino.yaml", `
server: localhost:7001
timeout: 90s
output: out
split: true
writer: lassy
cache:
  path: parses.db
  size: 10
log:
  level: debug
  format: json
jobs: 4
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server != "localhost:7001" {
		t.Errorf("Server = %q", cfg.Server)
	}
	if cfg.Timeout != 90*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if !cfg.Split || cfg.Output != "out" || cfg.Writer != "lassy" {
		t.Errorf("output settings = %+v", cfg)
	}
	if cfg.Cache != (CacheConfig{Path: "parses.db", Size: 10}) {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Log != (LogConfig{Level: "debug", Format: "json"}) {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Jobs != 4 {
		t.Errorf("Jobs = %d", cfg.Jobs)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Timeout != 60*time.Second || cfg.Jobs != 1 || cfg.Cache.Size != 1024 {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.WriterKind() != "paqu" {
		t.Errorf("WriterKind() = %q, want paqu without a parser", cfg.WriterKind())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(t.TempDir(), "missing.yaml")},
		{"unknown key", writeFile(t, "bad.yaml", "servr: localhost:7001\n")},
		{"malformed", writeFile(t, "bad.yaml", "server: [\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(tt.path); !errors.Is(err, errors.ErrConfig) {
				t.Errorf("Load() error = %v, want ErrConfig", err)
			}
		})
	}
}

func TestLoadEnv(t *testing.T) {
	clearEnv(t)
	env := writeFile(t, ".env", "ALPINO_HOME=/opt/Alpino\nALPINO_SERVER=parser:7001\n")

	cfg := Default()
	if err := cfg.LoadEnv(env); err != nil {
		t.Fatalf("LoadEnv() error: %v", err)
	}
	if cfg.Alpino.Home != "/opt/Alpino" || cfg.Server != "parser:7001" {
		t.Errorf("environment not applied: %+v", cfg)
	}
	if cfg.WriterKind() != "lassy" {
		t.Errorf("WriterKind() = %q, want lassy with a server", cfg.WriterKind())
	}
}

func TestLoadEnvMissingFile(t *testing.T) {
	cfg := Default()
	if err := cfg.LoadEnv(filepath.Join(t.TempDir(), "missing.env")); !errors.Is(err, errors.ErrConfig) {
		t.Errorf("LoadEnv() error = %v, want ErrConfig", err)
	}
}

func TestFileOverridesEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAlpinoServer, "env:7001")
	path := writeFile(t, "c.yaml", "server: file:7001\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server != "file:7001" {
		t.Errorf("Server = %q, want the file value", cfg.Server)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"bad server", func(c *Config) { c.Server = "no port" }, "Server"},
		{"server and local alpino", func(c *Config) { c.Server = "localhost:7001"; c.Alpino.Path = "/opt/Alpino" }, "Server"},
		{"unknown writer", func(c *Config) { c.Writer = "conllu" }, "Writer"},
		{"split without output", func(c *Config) { c.Split = true }, "Output"},
		{"no jobs", func(c *Config) { c.Jobs = 0 }, "Jobs"},
		{"jobs without split", func(c *Config) { c.Jobs = 4 }, "Jobs"},
		{"negative cache", func(c *Config) { c.Cache.Size = -1 }, "Size"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "Level"},
		{"missing rules", func(c *Config) { c.Enrich = "/nonexistent/rules.csv" }, "Enrich"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, errors.ErrConfig) {
				t.Fatalf("Validate() error = %v, want ErrConfig", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("Validate() error = %v, want it to name %s", err, tt.field)
			}
		})
	}
}
