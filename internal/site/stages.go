package site

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/elucidator/internal/config"
	"git.home.luguber.info/inful/elucidator/internal/logfields"
	"git.home.luguber.info/inful/elucidator/internal/metrics"
	"git.home.luguber.info/inful/elucidator/internal/render"
)

// StageName identifies a generation stage.
type StageName string

// Stages in execution order.
const (
	StageLoadConfig  StageName = "load_config"
	StageCopyStatic  StageName = "copy_static"
	StageCopyTheme   StageName = "copy_theme"
	StageLoadTheme   StageName = "load_theme"
	StageRenderPages StageName = "render_pages"
)

// buildState is shared by the stages of one run.
type buildState struct {
	root   string
	logger *slog.Logger
	site   *config.Site
	theme  *render.Theme
	pages  int
}

type stage func(ctx context.Context, bs *buildState) error

type stageDef struct {
	name StageName
	fn   stage
}

// runStages executes stages in order and stops on the first error.
func runStages(ctx context.Context, bs *buildState, rec metrics.Recorder, stages []stageDef) error {
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return err
		}

		t0 := time.Now()
		err := st.fn(ctx, bs)
		dur := time.Since(t0)
		rec.ObserveStageDuration(string(st.name), dur)

		if err != nil {
			rec.IncStageResult(string(st.name), metrics.ResultFatal)
			bs.logger.Error("Stage failed",
				logfields.Stage(string(st.name)),
				logfields.DurationMS(float64(dur.Milliseconds())),
				logfields.Error(err))
			return err
		}
		rec.IncStageResult(string(st.name), metrics.ResultSuccess)
		bs.logger.Debug("Stage complete", logfields.Stage(string(st.name)), logfields.DurationMS(float64(dur.Milliseconds())))
	}
	return nil
}
