// Package config loads the converter settings from a YAML file and the
// environment.
//
// Values are resolved in this order, later sources winning: defaults,
// environment (ALPINO_HOME, ALPINO_SERVER, optionally from a .env file),
// the YAML file, command line flags.
package config

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/corpus2alpino/core/errors"
)

// Environment variables read by LoadEnv.
const (
	EnvAlpinoHome   = "ALPINO_HOME"
	EnvAlpinoServer = "ALPINO_SERVER"
)

// Config holds every setting of a conversion run.
type Config struct {
	// Server is the host:port of an Alpino server.
	Server string `yaml:"server" validate:"omitempty,hostname_port"`

	Alpino AlpinoConfig `yaml:"alpino"`

	// Timeout bounds a single parse.
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`

	// Output is the output file or directory; empty writes to stdout.
	Output string `yaml:"output" validate:"required_if=Split true"`

	// Split writes one file per input document instead of one merged file.
	Split bool `yaml:"split"`

	// SplitTreebanks writes each Lassy tree to its own file.
	SplitTreebanks bool `yaml:"split_treebanks"`

	// Writer is "paqu" or "lassy"; empty picks lassy when a parser is
	// configured and paqu otherwise.
	Writer string `yaml:"writer" validate:"omitempty,oneof=paqu lassy"`

	// Enrich is a rules file applied to every parse.
	Enrich string `yaml:"enrich" validate:"omitempty,file"`

	Cache CacheConfig `yaml:"cache"`
	Log   LogConfig   `yaml:"log"`

	// Jobs is the number of pipelines run in parallel.
	Jobs int `yaml:"jobs" validate:"gte=1,lte=256"`
}

// AlpinoConfig locates a local Alpino installation.
type AlpinoConfig struct {
	// Path is the Alpino executable or installation root.
	Path string `yaml:"path"`
	// Args are passed to every Alpino run.
	Args []string `yaml:"args"`
	// Home is the installation root used for version information.
	Home string `yaml:"home"`
}

// CacheConfig configures the parse cache.
type CacheConfig struct {
	// Path is the SQLite cache database; empty disables the disk cache.
	Path string `yaml:"path"`
	// Size is the number of parses kept in memory.
	Size int `yaml:"size" validate:"gte=0"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"oneof=json text"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Timeout: 60 * time.Second,
		Cache:   CacheConfig{Size: 1024},
		Log:     LogConfig{Level: "info", Format: "text"},
		Jobs:    1,
	}
}

// HasParser reports whether an Alpino server or installation is configured.
func (c *Config) HasParser() bool {
	return c.Server != "" || c.Alpino.Path != ""
}

// WriterKind resolves the output format.
func (c *Config) WriterKind() string {
	if c.Writer != "" {
		return c.Writer
	}
	if c.HasParser() {
		return "lassy"
	}
	return "paqu"
}

// Load builds a configuration from defaults, the environment and, when path
// is not empty, a YAML file. The result is not validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if err := cfg.LoadEnv(); err != nil {
		return cfg, err
	}

	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, errors.NewConfig("config", "cannot open "+path, err)
	}
	defer f.Close()
	if err := cfg.Decode(f); err != nil {
		return cfg, errors.NewConfig("config", "cannot parse "+path, err)
	}
	return cfg, nil
}

// Decode reads YAML over the current values. Unknown keys are rejected.
func (c *Config) Decode(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(c)
}

// LoadEnv loads the given .env files, or ./.env when it exists, and copies
// the Alpino variables into c.
func (c *Config) LoadEnv(files ...string) error {
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return errors.NewConfig("config", "cannot load environment file", err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}

	if v := os.Getenv(EnvAlpinoHome); v != "" {
		c.Alpino.Home = v
	}
	if v := os.Getenv(EnvAlpinoServer); v != "" {
		c.Server = v
	}
	return nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	validate.RegisterStructValidation(checkCombinations, Config{})
	if err := validate.Struct(c); err != nil {
		return errors.NewConfig("config", "invalid settings", err)
	}
	return nil
}

func checkCombinations(sl validator.StructLevel) {
	c := sl.Current().Interface().(Config)
	if c.Server != "" && c.Alpino.Path != "" {
		sl.ReportError(c.Server, "Server", "server", "excluded_with", "Alpino.Path")
	}
	// parallel pipelines cannot share one output file
	if c.Jobs > 1 && !c.Split {
		sl.ReportError(c.Jobs, "Jobs", "jobs", "split_required", "")
	}
}
