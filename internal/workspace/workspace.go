package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/jeremymeng/rushstack/internal/config"
	rerrors "github.com/jeremymeng/rushstack/internal/errors"
	"github.com/jeremymeng/rushstack/internal/logfields"
)

// Well-known file and folder names.
const (
	RushJSONFilename       = "rush.json"
	PluginsConfigFilename  = "rush-plugins.json"
	PluginManifestFilename = "rush-plugin-manifest.json"
	LockfileFilename       = "pnpm-lock.yaml"
	LintConfigFilename     = "lockfile-lint.json"
	DefaultSubspaceName    = "default"
	pluginManifestsFolder  = "rush-plugins"
)

// Project is one buildable package in the workspace.
type Project struct {
	PackageName           string
	ProjectRelativeFolder string
	ProjectFolder         string
	SubspaceName          string
}

type rushJSON struct {
	RushVersion string `json:"rushVersion"`
	PnpmVersion string `json:"pnpmVersion"`
	Projects    []struct {
		PackageName   string `json:"packageName"`
		ProjectFolder string `json:"projectFolder"`
		SubspaceName  string `json:"subspaceName"`
	} `json:"projects"`
}

// Workspace is a loaded rush.json and its projects.
type Workspace struct {
	RootFolder  string
	RushVersion string
	PnpmVersion string

	projects []*Project
	byName   map[string]*Project
}

// FindRushJSON walks upward from start looking for rush.json.
func FindRushJSON(start string) (string, bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(dir, RushJSONFilename)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// LoadFromFolder finds and loads the workspace enclosing start.
func LoadFromFolder(start string) (*Workspace, error) {
	path, ok := FindRushJSON(start)
	if !ok {
		return nil, rerrors.ConfigNotFound(start, RushJSONFilename)
	}
	return Load(path)
}

// Load reads the rush.json at path.
func Load(path string) (*Workspace, error) {
	var doc rushJSON
	if err := config.ReadJSONFile(path, &doc); err != nil {
		return nil, rerrors.ConfigInvalid(path, err)
	}

	root, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, rerrors.ConfigInvalid(path, err)
	}

	ws := &Workspace{
		RootFolder:  root,
		RushVersion: doc.RushVersion,
		PnpmVersion: doc.PnpmVersion,
		byName:      make(map[string]*Project, len(doc.Projects)),
	}
	for _, p := range doc.Projects {
		if p.PackageName == "" || p.ProjectFolder == "" {
			return nil, rerrors.ConfigInvalid(path,
				fmt.Errorf("project entries require packageName and projectFolder"))
		}
		if filepath.IsAbs(p.ProjectFolder) {
			return nil, rerrors.ConfigInvalid(path,
				fmt.Errorf("projectFolder for %s must be relative: %s", p.PackageName, p.ProjectFolder))
		}
		if _, dup := ws.byName[p.PackageName]; dup {
			return nil, rerrors.ConfigInvalid(path,
				fmt.Errorf("project %s is listed more than once", p.PackageName))
		}
		subspace := p.SubspaceName
		if subspace == "" {
			subspace = DefaultSubspaceName
		}
		project := &Project{
			PackageName:           p.PackageName,
			ProjectRelativeFolder: filepath.ToSlash(filepath.Clean(p.ProjectFolder)),
			ProjectFolder:         filepath.Join(root, filepath.FromSlash(p.ProjectFolder)),
			SubspaceName:          subspace,
		}
		ws.projects = append(ws.projects, project)
		ws.byName[p.PackageName] = project
	}

	slog.Debug("Loaded workspace", logfields.Path(root), logfields.Count(len(ws.projects)))
	return ws, nil
}

// Projects returns the projects in rush.json order.
func (w *Workspace) Projects() []*Project {
	out := make([]*Project, len(w.projects))
	copy(out, w.projects)
	return out
}

// ProjectNames returns all project names sorted alphabetically.
func (w *Workspace) ProjectNames() []string {
	names := make([]string, 0, len(w.byName))
	for name := range w.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProjectByName looks up a project by its package name.
func (w *Workspace) ProjectByName(name string) (*Project, bool) {
	p, ok := w.byName[name]
	return p, ok
}

// CommonFolder is <root>/common.
func (w *Workspace) CommonFolder() string {
	return filepath.Join(w.RootFolder, "common")
}

// CommonTempFolder is <root>/common/temp, the folder pnpm installs into.
func (w *Workspace) CommonTempFolder() string {
	return filepath.Join(w.CommonFolder(), "temp")
}

// AutoinstallerFolder is the private dependency folder of one autoinstaller.
func (w *Workspace) AutoinstallerFolder(name string) string {
	return filepath.Join(w.CommonFolder(), "autoinstallers", name)
}

// PluginManifestsFolder is the root of the cached plugin manifest tree.
func (w *Workspace) PluginManifestsFolder() string {
	return filepath.Join(w.CommonFolder(), "autoinstallers", pluginManifestsFolder)
}

// PluginOptionsFolder holds per-plugin options JSON files.
func (w *Workspace) PluginOptionsFolder() string {
	return filepath.Join(w.CommonFolder(), "config", "rush-plugins")
}

// PluginsConfigPath is common/config/rush/rush-plugins.json.
func (w *Workspace) PluginsConfigPath() string {
	return filepath.Join(w.CommonFolder(), "config", "rush", PluginsConfigFilename)
}

// LintConfigPath is the lockfile lint rule file at the workspace root.
func (w *Workspace) LintConfigPath() string {
	return filepath.Join(w.RootFolder, LintConfigFilename)
}

// CommittedLockfilePath returns the lockfile that covers project.
func (w *Workspace) CommittedLockfilePath(p *Project) string {
	if p.SubspaceName == "" || p.SubspaceName == DefaultSubspaceName {
		return filepath.Join(w.CommonFolder(), "config", "rush", LockfileFilename)
	}
	return filepath.Join(w.CommonFolder(), "config", "subspaces", p.SubspaceName, LockfileFilename)
}

// ImporterBaseFolder is the folder lockfile importer keys are relative to.
func (w *Workspace) ImporterBaseFolder(p *Project) string {
	if p.SubspaceName == "" || p.SubspaceName == DefaultSubspaceName {
		return w.CommonTempFolder()
	}
	return filepath.Join(w.CommonTempFolder(), p.SubspaceName)
}
