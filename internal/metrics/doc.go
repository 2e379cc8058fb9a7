// Package metrics records rotation loop outcomes.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so callers never nil-check:
//
//	loop := rotation.New(reg, store, applier, rotation.WithRecorder(metrics.NoopRecorder{}))
//
// PrometheusRecorder registers its collectors on a caller-supplied registry, and
// HTTPHandler exposes that registry for scraping when a metrics address is configured.
package metrics
