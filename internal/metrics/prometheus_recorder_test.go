package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("copy_static", 150*time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncStageResult("copy_static", ResultSuccess)
	pr.IncBuildOutcome(OutcomeSuccess)
	pr.IncPageRendered("base")
	pr.IncPageRendered("base")
	pr.IncAssetCopied("static")
	pr.IncAssetSkipped("theme")

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)

	require.Equal(t, 2.0, testutil.ToFloat64(pr.pages.WithLabelValues("base")))
	require.Equal(t, 1.0, testutil.ToFloat64(pr.assets.WithLabelValues("static", "copied")))
	require.Equal(t, 1.0, testutil.ToFloat64(pr.assets.WithLabelValues("theme", "skipped")))
	require.Equal(t, 1.0, testutil.ToFloat64(pr.buildOutcome.WithLabelValues(OutcomeSuccess)))
}

func TestPrometheusRecorder_NilReceiver(t *testing.T) {
	var pr *PrometheusRecorder
	require.NotPanics(t, func() {
		pr.IncPageRendered("base")
		pr.ObserveBuildDuration(time.Second)
	})
}

func TestWriteTextfile(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncPageRendered("index")

	path := filepath.Join(t.TempDir(), "build.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `elucidator_pages_rendered_total{template="index"} 1`)
}
