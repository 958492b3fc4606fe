// Package metrics provides observability hooks for rule evaluation and plugin
// loading.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so callers never nil-check:
//
//	checker := lockfile.NewChecker(ws).WithRecorder(recorder)
//
// PrometheusRecorder backs the interface with client_golang collectors. The
// CLI writes its registry to a text file (--metrics-file) for the node
// exporter textfile collector, since a one-shot process has nothing to scrape.
package metrics
