// Package metrics provides build metrics for pagesmith.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection never needs nil checks:
//
//	builder := site.NewBuilder(cfg, site.WithRecorder(metrics.NoopRecorder{}))
//
// When a metrics file is requested, the CLI swaps in a PrometheusRecorder and
// writes the registry in the node-exporter textfile format once the build ends:
//
//	reg := prometheus.NewRegistry()
//	recorder := metrics.NewPrometheusRecorder(reg)
//	...
//	err := metrics.WriteTextfile(path, reg)
package metrics
