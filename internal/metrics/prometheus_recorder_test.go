package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveRuleDuration("side-by-side", 150*time.Millisecond)
	pr.IncRuleResult("side-by-side", ResultSuccess)
	pr.ObserveTraversal(2, 40)
	pr.IncPluginLoad(ResultNeedsUpdate)
	pr.IncPluginUpdate(ResultSuccess)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatalf("expected metrics, got none")
	}
	if got := testutil.ToFloat64(pr.pathsChecked); got != 40 {
		t.Errorf("paths checked = %v, want 40", got)
	}
	if got := testutil.ToFloat64(pr.ruleResults.WithLabelValues("side-by-side", "success")); got != 1 {
		t.Errorf("rule results = %v, want 1", got)
	}
}

func TestPrometheusRecorder_WriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncRuleResult("side-by-side", ResultFailed)

	path := filepath.Join(t.TempDir(), "rushkit.prom")
	if err := pr.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `rushkit_rule_results_total{result="failed",rule="side-by-side"} 1`) {
		t.Errorf("unexpected textfile contents:\n%s", data)
	}
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.IncRuleResult("x", ResultSuccess)
	pr.ObserveTraversal(1, 1)
	pr.IncPluginLoad(ResultSuccess)
}
