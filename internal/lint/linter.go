package lint

import (
	"context"
	"log/slog"
	"time"

	rerrors "github.com/jeremymeng/rushstack/internal/errors"
	"github.com/jeremymeng/rushstack/internal/lockfile"
	"github.com/jeremymeng/rushstack/internal/logfields"
	"github.com/jeremymeng/rushstack/internal/metrics"
	"github.com/jeremymeng/rushstack/internal/workspace"
)

// Linter runs lockfile lint rules one at a time.
type Linter struct {
	rules    map[string]Rule
	logger   *slog.Logger
	recorder metrics.Recorder
}

// Option configures a Linter.
type Option func(*Linter)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(li *Linter) {
		if l != nil {
			li.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(li *Linter) {
		if r != nil {
			li.recorder = r
		}
	}
}

// NewLinter creates a linter for ws with the built-in rules registered.
func NewLinter(ws *workspace.Workspace, opts ...Option) *Linter {
	l := &Linter{
		rules:    make(map[string]Rule),
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(l)
	}
	checker := lockfile.NewChecker(ws).WithLogger(l.logger).WithRecorder(l.recorder)
	l.Register(NewSideBySideRule(checker))
	return l
}

// Register adds or replaces the rule handling rule.Name().
func (l *Linter) Register(rule Rule) {
	l.rules[rule.Name()] = rule
}

// RunFile loads path and runs its rules.
func (l *Linter) RunFile(ctx context.Context, path string) (*Result, error) {
	file, err := LoadRuleFile(path)
	if err != nil {
		return nil, err
	}
	return l.Run(ctx, file)
}

// Run evaluates rules in order. The first failure, including an unknown
// rule kind, stops the run; the returned Result holds the rules that passed.
func (l *Linter) Run(ctx context.Context, file *RuleFile) (*Result, error) {
	result := &Result{}
	for _, spec := range file.Rules {
		rule, ok := l.rules[spec.Rule]
		if !ok {
			l.recorder.IncRuleResult(spec.Rule, metrics.ResultFailed)
			return result, rerrors.UnsupportedRule(spec.Rule)
		}

		l.logger.Debug("Running rule",
			logfields.Rule(spec.Rule),
			logfields.Project(spec.Project),
			logfields.Package(spec.Dependency))
		start := time.Now()
		check, err := rule.Check(ctx, spec)
		elapsed := time.Since(start)
		l.recorder.ObserveRuleDuration(spec.Rule, elapsed)
		l.recorder.IncRuleResult(spec.Rule, metrics.ResultFor(err))
		if err != nil {
			return result, err
		}
		result.Outcomes = append(result.Outcomes, Outcome{Spec: spec, Check: check, Duration: elapsed})
	}
	return result, nil
}
