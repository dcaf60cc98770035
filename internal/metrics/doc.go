// Package metrics provides build metrics for site generation.
//
// Components receive a Recorder through their constructors. NoopRecorder is
// the default and does nothing; PrometheusRecorder registers counters and
// histograms on a registry, which WriteTextfile can export after a build in
// the node-exporter textfile format:
//
//	reg := prom.NewRegistry()
//	gen := site.NewGenerator(site.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//	err := gen.Generate(ctx, root)
//	_ = metrics.WriteTextfile("build.prom", reg)
package metrics
