package main

import (
	"context"
	"iter"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/FocuswithJustin/corpus2alpino/core/alpino"
	"github.com/FocuswithJustin/corpus2alpino/core/cache"
	"github.com/FocuswithJustin/corpus2alpino/core/ir"
	alpinoannotator "github.com/FocuswithJustin/corpus2alpino/internal/annotators/alpino"
	"github.com/FocuswithJustin/corpus2alpino/internal/annotators/enrich"
	"github.com/FocuswithJustin/corpus2alpino/internal/archive"
	archivecollector "github.com/FocuswithJustin/corpus2alpino/internal/collectors/archive"
	"github.com/FocuswithJustin/corpus2alpino/internal/collectors/filesystem"
	"github.com/FocuswithJustin/corpus2alpino/internal/config"
	"github.com/FocuswithJustin/corpus2alpino/internal/converter"
	"github.com/FocuswithJustin/corpus2alpino/internal/formats/auto"
	"github.com/FocuswithJustin/corpus2alpino/internal/logging"
	"github.com/FocuswithJustin/corpus2alpino/internal/targets/console"
	fstarget "github.com/FocuswithJustin/corpus2alpino/internal/targets/filesystem"
	"github.com/FocuswithJustin/corpus2alpino/internal/writers/lassy"
	"github.com/FocuswithJustin/corpus2alpino/internal/writers/paqu"
)

// chain reads its collectors one after the other.
type chain []converter.Collector

func (c chain) Read(ctx context.Context) iter.Seq2[*ir.CollectedFile, error] {
	return func(yield func(*ir.CollectedFile, error) bool) {
		for _, collector := range c {
			for file, err := range collector.Read(ctx) {
				if !yield(file, err) {
					return
				}
			}
		}
	}
}

// partition spreads the inputs over at most jobs groups. Plain files share
// one root so every group lays out its output the same way.
func partition(inputs []string, jobs int) ([]converter.Collector, error) {
	var plain, archives []string
	for _, in := range inputs {
		if archive.IsArchive(in) {
			archives = append(archives, in)
		} else {
			plain = append(plain, in)
		}
	}

	files, err := filesystem.New(plain...).Files()
	if err != nil {
		return nil, err
	}
	root := filesystem.CommonRoot(files)

	if jobs < 1 {
		jobs = 1
	}
	units := len(files) + len(archives)
	if jobs > units {
		jobs = max(units, 1)
	}

	groupFiles := make([][]string, jobs)
	groupArchives := make([][]string, jobs)
	for i, f := range files {
		groupFiles[i%jobs] = append(groupFiles[i%jobs], f)
	}
	for i, a := range archives {
		j := (len(files) + i) % jobs
		groupArchives[j] = append(groupArchives[j], a)
	}

	collectors := make([]converter.Collector, jobs)
	for i := range collectors {
		collectors[i] = chain{
			filesystem.New(groupFiles[i]...).WithRoot(root),
			archivecollector.New(groupArchives[i]...),
		}
	}
	return collectors, nil
}

// convertAll runs one pipeline per group of inputs.
func convertAll(ctx context.Context, cfg config.Config, inputs []string) (converter.Summary, error) {
	collectors, err := partition(inputs, cfg.Jobs)
	if err != nil {
		return converter.Summary{}, err
	}

	var mu sync.Mutex
	var total converter.Summary
	g, ctx := errgroup.WithContext(ctx)
	for _, collector := range collectors {
		g.Go(func() error {
			summary, err := runPipeline(ctx, cfg, collector)
			mu.Lock()
			total.Files += summary.Files
			total.Documents += summary.Documents
			total.Failures += summary.Failures
			mu.Unlock()
			return err
		})
	}
	err = g.Wait()
	return total, err
}

// runPipeline builds a converter with its own parser and target and runs it.
func runPipeline(ctx context.Context, cfg config.Config, collector converter.Collector) (converter.Summary, error) {
	parser, closeParser, err := newParser(ctx, cfg)
	if err != nil {
		return converter.Summary{}, err
	}
	defer closeParser()

	var annotators []converter.Annotator
	if parser != nil {
		annotators = append(annotators, alpinoannotator.New(parser))
	}
	if cfg.Enrich != "" {
		enricher, err := enrich.Load(cfg.Enrich)
		if err != nil {
			return converter.Summary{}, err
		}
		annotators = append(annotators, enricher)
	}

	target, err := newTarget(cfg)
	if err != nil {
		return converter.Summary{}, err
	}

	c := converter.New(collector, auto.New(), newWriter(cfg), target, annotators...)
	defer c.Close()
	return c.Run(ctx)
}

// newParser returns the configured parser, or nil when sentences are not
// parsed.
func newParser(ctx context.Context, cfg config.Config) (alpino.Parser, func(), error) {
	var parser alpino.Parser
	var backend string
	switch {
	case cfg.Server != "":
		client, err := alpino.NewServerClient(ctx, alpino.ServerConfig{
			Address:    cfg.Server,
			Timeout:    cfg.Timeout,
			AlpinoHome: cfg.Alpino.Home,
		})
		if err != nil {
			return nil, nil, err
		}
		parser, backend = client, "server"
	case cfg.Alpino.Path != "":
		client, err := alpino.NewProcessClient(alpino.ProcessConfig{
			Path:    cfg.Alpino.Path,
			Args:    cfg.Alpino.Args,
			Timeout: cfg.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		parser, backend = client, "process"
	default:
		return nil, func() {}, nil
	}

	logging.ParserStartup(ctx, backend, parser.Info().Version)
	if cfg.Cache.Path == "" && cfg.Cache.Size == 0 {
		return parser, func() {}, nil
	}

	cached, err := cache.NewParseCache(parser, cache.ParseCacheConfig{
		Path:       cfg.Cache.Path,
		MaxEntries: cfg.Cache.Size,
	})
	if err != nil {
		return nil, nil, err
	}
	return cached, func() {
		stats := cached.Stats()
		logging.DebugContext(ctx, "parse cache",
			"memory_hits", stats.MemoryHits,
			"disk_hits", stats.DiskHits,
			"misses", stats.Misses)
		if err := cached.Close(); err != nil {
			logging.WarnContext(ctx, "failed to close parse cache", "error", err)
		}
	}, nil
}

func newWriter(cfg config.Config) converter.Writer {
	if cfg.WriterKind() == "lassy" {
		return lassy.New(!cfg.SplitTreebanks)
	}
	return paqu.New()
}

func newTarget(cfg config.Config) (converter.Target, error) {
	if cfg.Output == "" {
		return console.New(os.Stdout), nil
	}
	target, err := fstarget.New(cfg.Output, !cfg.Split)
	if err != nil {
		return nil, err
	}
	return target, nil
}
