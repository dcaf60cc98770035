package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/elucidator/internal/config"
	derrors "git.home.luguber.info/inful/elucidator/internal/errors"
	"git.home.luguber.info/inful/elucidator/internal/logfields"
	"git.home.luguber.info/inful/elucidator/internal/metrics"
	"git.home.luguber.info/inful/elucidator/internal/site"
	"git.home.luguber.info/inful/elucidator/internal/watch"
)

// CLI is the command line of the generator.
type CLI struct {
	Root        string           `arg:"" optional:"" default:"." type:"path" help:"Site root containing config.yaml, content/ and the theme."`
	Verbose     bool             `short:"v" help:"Enable verbose logging"`
	Watch       bool             `short:"w" help:"Rebuild the site whenever files under the root change"`
	MetricsFile string           `name:"metrics-file" type:"path" help:"Write Prometheus metrics in textfile format after each build"`
	Version     kong.VersionFlag `name:"version" help:"Show version and exit"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// Execute runs one build, then keeps rebuilding in watch mode until ctx is
// done. It returns the process exit code.
func (c *CLI) Execute(ctx context.Context, stdout io.Writer) int {
	logger := slog.Default()
	adapter := derrors.NewCLIErrorAdapter(c.Verbose, logger)

	opts := []site.Option{site.WithLogger(logger), site.WithOutput(stdout)}
	var reg *prom.Registry
	if c.MetricsFile != "" {
		reg = prom.NewRegistry()
		opts = append(opts, site.WithRecorder(metrics.NewPrometheusRecorder(reg)))
	}
	gen := site.NewGenerator(opts...)

	outputs := &outputTracker{root: c.Root}
	build := func() error {
		err := gen.Generate(ctx, c.Root)
		if reg != nil {
			if werr := metrics.WriteTextfile(c.MetricsFile, reg); werr != nil {
				logger.Warn("Failed to write metrics", logfields.Path(c.MetricsFile), logfields.Error(werr))
			}
		}
		outputs.refresh()
		return err
	}

	err := build()
	if !c.Watch {
		return adapter.Report(err)
	}
	if err != nil {
		adapter.Report(err)
	}

	var ignoreFiles []string
	if c.MetricsFile != "" {
		ignoreFiles = append(ignoreFiles, c.MetricsFile)
	}
	werr := watch.Run(ctx, watch.Options{
		Root:        c.Root,
		Ignore:      outputs.dirs,
		IgnoreFiles: ignoreFiles,
		Logger:      logger,
	}, build)
	if werr != nil {
		return adapter.Report(derrors.InternalError("watch site root", werr))
	}
	return 0
}

// outputTracker remembers every output directory the configuration has
// named, so the watcher never reacts to files a build wrote. It is refreshed
// after each build because config.yaml may change or only become valid
// while watching.
type outputTracker struct {
	root string
	seen []string
}

func (o *outputTracker) refresh() {
	cfg, err := config.Load(o.root)
	if err != nil {
		return
	}
	out := cfg.OutputPath()
	for _, dir := range o.seen {
		if dir == out {
			return
		}
	}
	o.seen = append(o.seen, out)
}

func (o *outputTracker) dirs() []string {
	return o.seen
}
