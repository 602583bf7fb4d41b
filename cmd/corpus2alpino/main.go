// Command corpus2alpino converts corpora to Alpino input and treebanks.
// It reads CHAT, FoLiA, Lassy XML, PaQu plain text and TEI, optionally parses
// every sentence with Alpino and writes PaQu text or Lassy XML.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/corpus2alpino/core/alpino"
	"github.com/FocuswithJustin/corpus2alpino/core/errors"
	"github.com/FocuswithJustin/corpus2alpino/core/sqlite"
	"github.com/FocuswithJustin/corpus2alpino/internal/archive"
	"github.com/FocuswithJustin/corpus2alpino/internal/collectors/watch"
	"github.com/FocuswithJustin/corpus2alpino/internal/config"
	"github.com/FocuswithJustin/corpus2alpino/internal/logging"
)

const version = "0.4.0"

// CLI defines the command-line interface.
var CLI struct {
	Config    string `name:"config" short:"c" help:"YAML configuration file" type:"existingfile"`
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)"`
	LogFormat string `name:"log-format" help:"Log format (json, text)"`

	Convert ConvertCmd `cmd:"" help:"Convert corpus files"`
	Watch   WatchCmd   `cmd:"" help:"Convert files as they appear in a directory"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// Options are the conversion flags shared by convert and watch. Flags that
// are set override the configuration file.
type Options struct {
	Server         string        `name:"server" short:"s" help:"Alpino server (host:port)"`
	Alpino         string        `name:"alpino" help:"Alpino executable or installation directory" type:"path"`
	AlpinoArgs     []string      `name:"alpino-arg" help:"Extra argument for a local Alpino run"`
	Timeout        time.Duration `name:"timeout" help:"Timeout per parsed sentence"`
	Output         string        `name:"output" short:"o" help:"Output file, or directory with --split" type:"path"`
	Split          bool          `name:"split" help:"Write one output file per input document"`
	SplitTreebanks bool          `name:"split-treebanks" help:"Write every Lassy tree to its own file"`
	Writer         string        `name:"writer" short:"w" help:"Output format (paqu, lassy)"`
	Enrich         string        `name:"enrich" short:"e" help:"Enrichment rules applied to parses" type:"existingfile"`
	Cache          string        `name:"cache" help:"Parse cache database" type:"path"`
	CacheSize      int           `name:"cache-size" help:"Parses kept in memory"`
	Jobs           int           `name:"jobs" short:"j" help:"Number of parallel pipelines"`
}

func (o *Options) apply(cfg *config.Config) {
	if o.Server != "" {
		cfg.Server = o.Server
	}
	if o.Alpino != "" {
		cfg.Alpino.Path = o.Alpino
	}
	if len(o.AlpinoArgs) > 0 {
		cfg.Alpino.Args = o.AlpinoArgs
	}
	if o.Timeout > 0 {
		cfg.Timeout = o.Timeout
	}
	if o.Output != "" {
		cfg.Output = o.Output
	}
	if o.Split {
		cfg.Split = true
	}
	if o.SplitTreebanks {
		cfg.SplitTreebanks = true
	}
	if o.Writer != "" {
		cfg.Writer = o.Writer
	}
	if o.Enrich != "" {
		cfg.Enrich = o.Enrich
	}
	if o.Cache != "" {
		cfg.Cache.Path = o.Cache
	}
	if o.CacheSize > 0 {
		cfg.Cache.Size = o.CacheSize
	}
	if o.Jobs > 0 {
		cfg.Jobs = o.Jobs
	}
}

// resolve loads the configuration file, applies the flags and sets up
// logging.
func (o *Options) resolve() (config.Config, error) {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return cfg, err
	}
	o.apply(&cfg)
	if CLI.LogLevel != "" {
		cfg.Log.Level = CLI.LogLevel
	}
	if CLI.LogFormat != "" {
		cfg.Log.Format = CLI.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return cfg, errors.NewConfig("log", "invalid level", err)
	}
	format, err := logging.ParseFormat(cfg.Log.Format)
	if err != nil {
		return cfg, errors.NewConfig("log", "invalid format", err)
	}
	logging.InitLogger(level, format)
	return cfg, nil
}

// ConvertCmd converts files, directories and tar archives.
type ConvertCmd struct {
	Options

	Pack  string   `name:"pack" help:"Pack the output directory into a .tar, .tar.gz or .tar.xz archive" type:"path"`
	Files []string `arg:"" help:"Files, directories or tar archives to convert" type:"existingpath"`
}

func (c *ConvertCmd) Run() error {
	cfg, err := c.resolve()
	if err != nil {
		return err
	}
	if c.Pack != "" {
		if !cfg.Split {
			return errors.NewConfig("pack", "--pack needs --split output", nil)
		}
		if !archive.IsArchive(c.Pack) {
			return errors.NewConfig("pack", "unsupported archive "+c.Pack, nil)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	summary, err := convertAll(ctx, cfg, c.Files)
	if err != nil {
		return err
	}
	logging.InfoContext(ctx, "conversion complete",
		"files", summary.Files,
		"documents", summary.Documents,
		"failures", summary.Failures,
		"jobs", cfg.Jobs)

	if c.Pack != "" {
		if err := archive.Create(cfg.Output, c.Pack, filepath.Base(cfg.Output)); err != nil {
			return errors.Wrapf(err, "failed to pack %s", cfg.Output)
		}
		logging.Info("output packed", "archive", c.Pack)
	}
	return nil
}

// WatchCmd converts files created or changed in a directory until
// interrupted.
type WatchCmd struct {
	Options

	Extensions []string      `name:"ext" help:"File extensions to convert" default:".cha,.txt,.xml"`
	Settle     time.Duration `name:"settle" help:"Quiet period before a changed file is read" default:"250ms"`
	Dir        string        `arg:"" help:"Directory to watch" type:"existingdir"`
}

func (c *WatchCmd) Run() error {
	cfg, err := c.resolve()
	if err != nil {
		return err
	}
	cfg.Jobs = 1

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	collector, err := watch.New(c.Dir, c.Extensions...)
	if err != nil {
		return err
	}
	defer collector.Close()
	collector.Settle = c.Settle

	logging.InfoContext(ctx, "watching", "dir", c.Dir, "extensions", c.Extensions)
	_, err = runPipeline(ctx, cfg, collector)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("corpus2alpino version %s\n", version)
	driver := sqlite.GetInfo()
	fmt.Printf("cache driver: %s (%s, %s)\n", driver.DriverName, driver.DriverType, driver.Package)
	if home := os.Getenv(config.EnvAlpinoHome); home != "" {
		if info := alpino.ReadInfo(home); info.Known() {
			fmt.Printf("alpino: %s (%s)\n", info.Version, info.VersionDate.Format(time.DateOnly))
		}
	}
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("corpus2alpino"),
		kong.Description("Convert corpora to Alpino parse input and Lassy treebanks"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
