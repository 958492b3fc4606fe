package lint

import (
	"time"

	"github.com/jeremymeng/rushstack/internal/config"
	rerrors "github.com/jeremymeng/rushstack/internal/errors"
	"github.com/jeremymeng/rushstack/internal/lockfile"
)

// RuleSideBySide checks that one package resolves to a single compatible
// version across a project's dependency graph.
const RuleSideBySide = "side-by-side"

// RuleSpec is one entry of lockfile-lint.json.
type RuleSpec struct {
	Rule       string `json:"rule"`
	Project    string `json:"project"`
	Dependency string `json:"dependency"`
	// SpecifiedVersion pins the semver range. When empty only consistency
	// between the discovered versions is checked.
	SpecifiedVersion string `json:"specifiedVersion,omitempty"`
}

// RuleFile is the content of lockfile-lint.json.
type RuleFile struct {
	Rules []RuleSpec `json:"rules"`
}

// LoadRuleFile reads a rule file. Comments and trailing commas are allowed.
func LoadRuleFile(path string) (*RuleFile, error) {
	var f RuleFile
	if err := config.ReadJSONFile(path, &f); err != nil {
		return nil, rerrors.ConfigInvalid(path, err)
	}
	return &f, nil
}

// Outcome is the result of one evaluated rule.
type Outcome struct {
	Spec     RuleSpec
	Check    *lockfile.CheckResult
	Duration time.Duration
}

// Result contains the outcomes of every rule that ran.
type Result struct {
	Outcomes []Outcome
}
