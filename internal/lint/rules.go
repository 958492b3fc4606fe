package lint

import (
	"context"

	"github.com/jeremymeng/rushstack/internal/lockfile"
)

// Rule evaluates one kind of rule spec.
type Rule interface {
	// Name returns the rule kind this rule handles.
	Name() string

	// Check evaluates spec and fails on the first violation.
	Check(ctx context.Context, spec RuleSpec) (*lockfile.CheckResult, error)
}

// SideBySideRule checks version consistency of spec.Dependency under
// spec.Project.
type SideBySideRule struct {
	checker *lockfile.Checker
}

// NewSideBySideRule creates the rule over checker.
func NewSideBySideRule(checker *lockfile.Checker) *SideBySideRule {
	return &SideBySideRule{checker: checker}
}

// Name returns the rule identifier.
func (r *SideBySideRule) Name() string {
	return RuleSideBySide
}

// Check walks the project's lockfile graph.
func (r *SideBySideRule) Check(ctx context.Context, spec RuleSpec) (*lockfile.CheckResult, error) {
	return r.checker.CheckSideBySide(ctx, lockfile.CheckRequest{
		Project:          spec.Project,
		Package:          spec.Dependency,
		SpecifiedVersion: spec.SpecifiedVersion,
	})
}
