// Package site drives a full generation run: it loads the configuration,
// copies static and theme assets, then renders every content page.
package site

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/elucidator/internal/assets"
	"git.home.luguber.info/inful/elucidator/internal/config"
	"git.home.luguber.info/inful/elucidator/internal/logfields"
	"git.home.luguber.info/inful/elucidator/internal/markdown"
	"git.home.luguber.info/inful/elucidator/internal/metrics"
	"git.home.luguber.info/inful/elucidator/internal/render"
)

// Generator builds a site from its root directory.
type Generator struct {
	logger    *slog.Logger
	recorder  metrics.Recorder
	out       io.Writer
	converter *markdown.Converter
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(g *Generator) {
		if r != nil {
			g.recorder = r
		}
	}
}

// WithOutput sets where user-facing progress lines are printed.
func WithOutput(w io.Writer) Option {
	return func(g *Generator) {
		if w != nil {
			g.out = w
		}
	}
}

// WithMarkdownOptions overrides the Markdown converter settings.
func WithMarkdownOptions(opts markdown.Options) Option {
	return func(g *Generator) {
		g.converter = markdown.NewConverter(opts)
	}
}

// NewGenerator creates a Generator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		logger:    slog.Default(),
		recorder:  metrics.NoopRecorder{},
		out:       os.Stdout,
		converter: markdown.NewConverter(markdown.DefaultOptions()),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds the site rooted at root. All asset copying finishes
// before the first page is rendered; the first failure aborts the run.
func (g *Generator) Generate(ctx context.Context, root string) error {
	start := time.Now()
	bs := &buildState{
		root:   root,
		logger: g.logger.With(logfields.BuildID(uuid.NewString()), logfields.Root(root)),
	}

	_, _ = fmt.Fprintln(g.out, "Starting site generation...")
	bs.logger.Info("Starting site generation")

	err := runStages(ctx, bs, g.recorder, []stageDef{
		{StageLoadConfig, g.stageLoadConfig},
		{StageCopyStatic, g.stageCopyStatic},
		{StageCopyTheme, g.stageCopyTheme},
		{StageLoadTheme, g.stageLoadTheme},
		{StageRenderPages, g.stageRenderPages},
	})

	dur := time.Since(start)
	g.recorder.ObserveBuildDuration(dur)
	if err != nil {
		g.recorder.IncBuildOutcome(metrics.OutcomeFailed)
		return err
	}
	g.recorder.IncBuildOutcome(metrics.OutcomeSuccess)

	bs.logger.Info("Generation finished",
		logfields.Count(bs.pages),
		logfields.DurationMS(float64(dur.Milliseconds())))
	_, _ = fmt.Fprintln(g.out, "Generation finished!")
	return nil
}

func (g *Generator) stageLoadConfig(_ context.Context, bs *buildState) error {
	site, err := config.Load(bs.root)
	if err != nil {
		return err
	}
	bs.site = site
	bs.logger.Debug("Loaded configuration",
		logfields.Output(site.OutputPath()),
		logfields.Count(len(site.StaticDirs)))
	return nil
}

func (g *Generator) stageCopyStatic(_ context.Context, bs *buildState) error {
	copier := assets.NewCopier(bs.logger, g.recorder)
	stats, err := copier.CopyStatic(bs.site.ContentPath(), bs.site.OutputPath(), bs.site.StaticDirs)
	if err != nil {
		return err
	}
	bs.logger.Info("Copied static files",
		logfields.Origin(assets.OriginStatic),
		logfields.Count(stats.Copied),
		slog.Int("skipped", stats.Skipped))
	return nil
}

func (g *Generator) stageCopyTheme(_ context.Context, bs *buildState) error {
	copier := assets.NewCopier(bs.logger, g.recorder)
	stats, err := copier.CopyTheme(bs.site.ThemePath(), bs.site.OutputPath())
	if err != nil {
		return err
	}
	bs.logger.Info("Copied theme files",
		logfields.Origin(assets.OriginTheme),
		logfields.Count(stats.Copied),
		slog.Int("skipped", stats.Skipped))
	return nil
}

func (g *Generator) stageLoadTheme(_ context.Context, bs *buildState) error {
	theme, err := render.LoadTheme(bs.site.ThemePath())
	if err != nil {
		return err
	}
	bs.theme = theme
	return nil
}

func (g *Generator) stageRenderPages(ctx context.Context, bs *buildState) error {
	pages, err := Walk(bs.site.ContentPath(), bs.site.OutputPath())
	if err != nil {
		return err
	}

	renderers := map[TemplateKind]*render.Renderer{
		TemplateIndex: render.NewRenderer(g.converter, bs.logger.With(logfields.Template(string(TemplateIndex)))),
		TemplateBase:  render.NewRenderer(g.converter, bs.logger.With(logfields.Template(string(TemplateBase)))),
	}

	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		tmpl := bs.theme.Base
		if p.Template == TemplateIndex {
			tmpl = bs.theme.Index
		}
		if err := renderers[p.Template].RenderPage(bs.site.Metadata, p.Source, p.Output, tmpl); err != nil {
			return err
		}
		g.recorder.IncPageRendered(string(p.Template))
		bs.pages++
	}
	return nil
}
