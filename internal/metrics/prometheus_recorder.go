package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once            sync.Once
	registry        *prom.Registry
	ruleDuration    *prom.HistogramVec
	ruleResults     *prom.CounterVec
	projectsVisited prom.Counter
	pathsChecked    prom.Counter
	pluginLoads     *prom.CounterVec
	pluginUpdates   *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.once.Do(func() {
		pr.ruleDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "rushkit",
			Name:      "rule_duration_seconds",
			Help:      "Duration of individual lockfile lint rule evaluations",
			Buckets:   prom.DefBuckets,
		}, []string{"rule"})
		pr.ruleResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "rushkit",
			Name:      "rule_results_total",
			Help:      "Lockfile lint rule results by outcome",
		}, []string{"rule", "result"})
		pr.projectsVisited = prom.NewCounter(prom.CounterOpts{
			Namespace: "rushkit",
			Name:      "projects_visited_total",
			Help:      "Projects visited while walking lockfile dependency graphs",
		})
		pr.pathsChecked = prom.NewCounter(prom.CounterOpts{
			Namespace: "rushkit",
			Name:      "dependency_paths_checked_total",
			Help:      "Lockfile dependency paths checked while walking dependency graphs",
		})
		pr.pluginLoads = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "rushkit",
			Name:      "plugin_loads_total",
			Help:      "Plugin load attempts by outcome",
		}, []string{"result"})
		pr.pluginUpdates = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "rushkit",
			Name:      "plugin_updates_total",
			Help:      "Plugin manifest cache updates by outcome",
		}, []string{"result"})
		reg.MustRegister(pr.ruleDuration, pr.ruleResults, pr.projectsVisited, pr.pathsChecked, pr.pluginLoads, pr.pluginUpdates)
	})
	return pr
}

// Registry returns the registry the collectors were registered with.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.registry }

func (p *PrometheusRecorder) ObserveRuleDuration(rule string, d time.Duration) {
	if p == nil || p.ruleDuration == nil {
		return
	}
	p.ruleDuration.WithLabelValues(rule).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRuleResult(rule string, result ResultLabel) {
	if p == nil || p.ruleResults == nil {
		return
	}
	p.ruleResults.WithLabelValues(rule, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveTraversal(projects, dependencyPaths int) {
	if p == nil || p.projectsVisited == nil {
		return
	}
	p.projectsVisited.Add(float64(projects))
	p.pathsChecked.Add(float64(dependencyPaths))
}

func (p *PrometheusRecorder) IncPluginLoad(result ResultLabel) {
	if p == nil || p.pluginLoads == nil {
		return
	}
	p.pluginLoads.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncPluginUpdate(result ResultLabel) {
	if p == nil || p.pluginUpdates == nil {
		return
	}
	p.pluginUpdates.WithLabelValues(string(result)).Inc()
}

// WriteTextfile writes the current registry contents to path in the text
// exposition format.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	return prom.WriteToTextfile(path, p.registry)
}
