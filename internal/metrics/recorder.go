package metrics

import "time"

// ResultLabel enumerates outcome categories for counters.
type ResultLabel string

const (
	ResultSuccess     ResultLabel = "success"
	ResultFailed      ResultLabel = "failed"
	ResultNeedsUpdate ResultLabel = "needs_update"
)

// Recorder defines observability hooks for rule evaluation and plugin
// activation. Implementations may forward to Prometheus, OpenTelemetry, etc.
type Recorder interface {
	ObserveRuleDuration(rule string, d time.Duration)
	IncRuleResult(rule string, result ResultLabel)
	ObserveTraversal(projects, dependencyPaths int)
	IncPluginLoad(result ResultLabel)
	IncPluginUpdate(result ResultLabel)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveRuleDuration(string, time.Duration) {}
func (NoopRecorder) IncRuleResult(string, ResultLabel)         {}
func (NoopRecorder) ObserveTraversal(int, int)                 {}
func (NoopRecorder) IncPluginLoad(ResultLabel)                 {}
func (NoopRecorder) IncPluginUpdate(ResultLabel)               {}

// ResultFor maps an error to a ResultLabel.
func ResultFor(err error) ResultLabel {
	if err != nil {
		return ResultFailed
	}
	return ResultSuccess
}
