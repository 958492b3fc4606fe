package lockfile

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	rerrors "github.com/jeremymeng/rushstack/internal/errors"
	"github.com/jeremymeng/rushstack/internal/logfields"
	"github.com/jeremymeng/rushstack/internal/metrics"
	"github.com/jeremymeng/rushstack/internal/workspace"
)

// CheckRequest names the project whose dependency graph is walked and the
// package whose resolutions must agree.
type CheckRequest struct {
	Project          string
	Package          string
	SpecifiedVersion string
}

// Resolution is one place the target package was found.
type Resolution struct {
	Project        string
	DependencyPath string
	Version        string
}

// CheckResult summarizes a successful walk.
type CheckResult struct {
	Range           string
	Anchor          string
	Pinned          bool
	ProjectsVisited []string
	PathsChecked    int
	Resolutions     []Resolution
}

type itemKind int

const (
	visitProject itemKind = iota
	followLink
	checkPath
)

type workItem struct {
	kind    itemKind
	project *workspace.Project

	// followLink
	linkName string

	// checkPath
	lockfilePath string
	doc          *Document
	format       PathFormat
	checked      mapset.Set[string]
	path         string
}

// Checker walks lockfile dependency graphs for the side-by-side rule.
type Checker struct {
	ws       *workspace.Workspace
	read     func(path string) (*Document, error)
	logger   *slog.Logger
	recorder metrics.Recorder
}

// NewChecker returns a Checker reading committed lockfiles of ws.
func NewChecker(ws *workspace.Workspace) *Checker {
	return &Checker{
		ws:       ws,
		read:     ReadFile,
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
	}
}

// WithRecorder attaches a metrics recorder.
func (c *Checker) WithRecorder(r metrics.Recorder) *Checker {
	if r != nil {
		c.recorder = r
	}
	return c
}

// WithLogger replaces the logger.
func (c *Checker) WithLogger(l *slog.Logger) *Checker {
	if l != nil {
		c.logger = l
	}
	return c
}

// walk holds the state of one rule evaluation.
type walk struct {
	req             CheckRequest
	constraint      *Constraint
	checkedProjects mapset.Set[string]
	docs            map[string]*Document
	stack           []workItem
	result          *CheckResult
}

func (w *walk) push(items ...workItem) {
	for i := len(items) - 1; i >= 0; i-- {
		w.stack = append(w.stack, items[i])
	}
}

func (w *walk) pop() workItem {
	item := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	return item
}

// CheckSideBySide verifies that every resolution of req.Package reachable
// from req.Project satisfies one semver range. The first violation aborts the
// walk.
func (c *Checker) CheckSideBySide(ctx context.Context, req CheckRequest) (*CheckResult, error) {
	start, ok := c.ws.ProjectByName(req.Project)
	if !ok {
		return nil, rerrors.ProjectNotFound(req.Project)
	}
	constraint, err := NewConstraint(req.SpecifiedVersion)
	if err != nil {
		return nil, rerrors.ValidationError(err.Error()).WithContext("project", req.Project)
	}

	began := time.Now()
	w := &walk{
		req:             req,
		constraint:      constraint,
		checkedProjects: mapset.NewThreadUnsafeSet(start.PackageName),
		docs:            make(map[string]*Document),
		result:          &CheckResult{},
	}
	w.push(workItem{kind: visitProject, project: start})

	for len(w.stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item := w.pop()
		var err error
		switch item.kind {
		case visitProject:
			err = c.visit(w, item.project)
		case followLink:
			c.follow(w, item)
		case checkPath:
			err = c.check(w, item)
		}
		if err != nil {
			c.recorder.ObserveTraversal(len(w.result.ProjectsVisited), w.result.PathsChecked)
			return nil, err
		}
	}

	c.recorder.ObserveTraversal(len(w.result.ProjectsVisited), w.result.PathsChecked)
	w.result.Range, w.result.Anchor, w.result.Pinned = constraint.Range, constraint.Anchor, constraint.Pinned
	c.logger.Debug("Side-by-side check finished",
		logfields.Project(req.Project),
		logfields.Package(req.Package),
		logfields.Constraint(constraint.Range),
		logfields.Count(w.result.PathsChecked),
		logfields.DurationMS(float64(time.Since(began).Microseconds())/1000))
	return w.result, nil
}

func (c *Checker) visit(w *walk, project *workspace.Project) error {
	c.logger.Info("Checking the project", logfields.Project(project.PackageName))
	w.result.ProjectsVisited = append(w.result.ProjectsVisited, project.PackageName)

	// One parse per distinct project; a project entered again reuses it.
	lockfilePath := c.ws.CommittedLockfilePath(project)
	doc, ok := w.docs[project.PackageName]
	if !ok {
		var err error
		if doc, err = c.read(lockfilePath); err != nil {
			return err
		}
		w.docs[project.PackageName] = doc
	}
	format, err := doc.Format()
	if err != nil {
		return rerrors.LockfileInvalid(lockfilePath, err)
	}

	base := c.ws.ImporterBaseFolder(project)
	checked := mapset.NewThreadUnsafeSet[string]()
	var items []workItem
	for _, imp := range doc.Importers {
		if filepath.Join(base, filepath.FromSlash(imp.Key)) != project.ProjectFolder {
			continue
		}
		for _, dep := range imp.Dependencies {
			depPath := format.Build(dep.Name, dep.Ref.Version)
			if IsLink(depPath) {
				items = append(items, workItem{kind: followLink, project: project, linkName: dep.Name})
				continue
			}
			items = append(items, workItem{
				kind:         checkPath,
				project:      project,
				lockfilePath: lockfilePath,
				doc:          doc,
				format:       format,
				checked:      checked,
				path:         depPath,
			})
		}
	}
	w.push(items...)
	return nil
}

// follow visits a linked workspace project unless it was already checked.
// The referring project is what gets marked, so a target reached through two
// different referrers is visited twice.
func (c *Checker) follow(w *walk, item workItem) {
	target, ok := c.ws.ProjectByName(item.linkName)
	if !ok || w.checkedProjects.Contains(target.PackageName) {
		return
	}
	w.checkedProjects.Add(item.project.PackageName)
	w.push(workItem{kind: visitProject, project: target})
}

func (c *Checker) check(w *walk, item workItem) error {
	snap, ok := item.doc.Package(item.path)
	if !ok || item.checked.Contains(item.path) {
		return nil
	}
	item.checked.Add(item.path)
	w.result.PathsChecked++

	name, version, parsed := item.format.Parse(item.path)
	c.logger.Debug("Checking dependency path",
		logfields.Project(item.project.PackageName),
		logfields.DependencyPath(item.path))

	if parsed && name == w.req.Package {
		if err := c.match(w, item, version); err != nil {
			return err
		}
	}

	children := make([]workItem, 0, len(snap.Dependencies))
	for _, dep := range snap.Dependencies {
		child := item
		child.path = item.format.Build(dep.Name, dep.Ref.Version)
		children = append(children, child)
	}
	w.push(children...)
	return nil
}

func (c *Checker) match(w *walk, item workItem, version string) error {
	w.result.Resolutions = append(w.result.Resolutions, Resolution{
		Project:        item.project.PackageName,
		DependencyPath: item.path,
		Version:        version,
	})

	if !w.constraint.IsSet() {
		if err := w.constraint.Adopt(version); err != nil {
			return rerrors.LockfileInvalid(item.lockfilePath, err)
		}
		c.logger.Debug("Adopted version range",
			logfields.Package(w.req.Package),
			logfields.Version(version),
			logfields.Constraint(w.constraint.Range))
		return nil
	}

	ok, err := w.constraint.Check(version)
	if err != nil || !ok {
		return rerrors.VersionInconsistency(item.project.PackageName, w.req.Package, version,
			w.constraint.Range, w.constraint.Anchor)
	}
	return nil
}
