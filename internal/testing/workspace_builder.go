package testing

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// Fixture paths relative to the workspace root.
const (
	DefaultLockfilePath = "common/config/rush/pnpm-lock.yaml"
	PluginsConfigPath   = "common/config/rush/rush-plugins.json"
	PluginOptionsFolder = "common/config/rush-plugins"
	PluginManifestsPath = "common/autoinstallers/rush-plugins"
	LintRulesPath       = "lockfile-lint.json"
)

type projectEntry struct {
	PackageName   string `json:"packageName"`
	ProjectFolder string `json:"projectFolder"`
	SubspaceName  string `json:"subspaceName,omitempty"`
}

// WorkspaceBuilder provides a fluent interface for creating a Rush workspace
// on disk under a test temp dir.
type WorkspaceBuilder struct {
	t        *testing.T
	root     string
	projects []projectEntry
}

// NewWorkspaceBuilder creates a builder rooted in a fresh temp dir.
func NewWorkspaceBuilder(t *testing.T) *WorkspaceBuilder {
	t.Helper()
	return &WorkspaceBuilder{t: t, root: t.TempDir()}
}

// Root returns the workspace root folder.
func (b *WorkspaceBuilder) Root() string { return b.root }

// WithProject adds a project in the default subspace.
func (b *WorkspaceBuilder) WithProject(packageName, projectFolder string) *WorkspaceBuilder {
	b.projects = append(b.projects, projectEntry{PackageName: packageName, ProjectFolder: projectFolder})
	return b
}

// WithSubspaceProject adds a project that belongs to a named subspace.
func (b *WorkspaceBuilder) WithSubspaceProject(packageName, projectFolder, subspace string) *WorkspaceBuilder {
	b.projects = append(b.projects, projectEntry{
		PackageName:   packageName,
		ProjectFolder: projectFolder,
		SubspaceName:  subspace,
	})
	return b
}

// WithLockfile writes the default subspace's committed lockfile.
func (b *WorkspaceBuilder) WithLockfile(content string) *WorkspaceBuilder {
	return b.WithFile(DefaultLockfilePath, content)
}

// WithSubspaceLockfile writes a named subspace's committed lockfile.
func (b *WorkspaceBuilder) WithSubspaceLockfile(subspace, content string) *WorkspaceBuilder {
	return b.WithFile(filepath.Join("common", "config", "subspaces", subspace, "pnpm-lock.yaml"), content)
}

// WithLintRules writes lockfile-lint.json at the workspace root.
func (b *WorkspaceBuilder) WithLintRules(content string) *WorkspaceBuilder {
	return b.WithFile(LintRulesPath, content)
}

// WithPluginsConfig writes common/config/rush/rush-plugins.json.
func (b *WorkspaceBuilder) WithPluginsConfig(content string) *WorkspaceBuilder {
	return b.WithFile(PluginsConfigPath, content)
}

// WithPluginOptions writes an options file under the plugin options root.
func (b *WorkspaceBuilder) WithPluginOptions(relativePath, content string) *WorkspaceBuilder {
	return b.WithFile(filepath.Join(PluginOptionsFolder, relativePath), content)
}

// WithPluginPackage installs packageName into an autoinstaller's node_modules.
// A package.json is generated unless files provides one.
func (b *WorkspaceBuilder) WithPluginPackage(autoinstaller, packageName string, files map[string]string) *WorkspaceBuilder {
	b.t.Helper()
	autoinstallerDir := filepath.Join("common", "autoinstallers", autoinstaller)
	if _, err := os.Stat(filepath.Join(b.root, autoinstallerDir, "package.json")); os.IsNotExist(err) {
		b.WithFile(filepath.Join(autoinstallerDir, "package.json"),
			`{"name": "`+autoinstaller+`", "version": "1.0.0", "private": true}`)
	}
	pkgDir := filepath.Join(autoinstallerDir, "node_modules", filepath.FromSlash(packageName))
	if _, ok := files["package.json"]; !ok {
		b.WithFile(filepath.Join(pkgDir, "package.json"),
			`{"name": "`+packageName+`", "version": "1.0.0"}`)
	}
	for rel, content := range files {
		b.WithFile(filepath.Join(pkgDir, filepath.FromSlash(rel)), content)
	}
	return b
}

// WithFile writes content to a path relative to the workspace root.
func (b *WorkspaceBuilder) WithFile(relativePath, content string) *WorkspaceBuilder {
	b.t.Helper()
	WriteFile(b.t, filepath.Join(b.root, filepath.FromSlash(relativePath)), content)
	return b
}

// Build writes rush.json, creates every project folder and returns the root.
func (b *WorkspaceBuilder) Build() string {
	b.t.Helper()
	doc := struct {
		RushVersion string         `json:"rushVersion"`
		PnpmVersion string         `json:"pnpmVersion"`
		Projects    []projectEntry `json:"projects"`
	}{
		RushVersion: "5.120.0",
		PnpmVersion: "8.15.0",
		Projects:    b.projects,
	}
	if doc.Projects == nil {
		doc.Projects = []projectEntry{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		b.t.Fatalf("marshal rush.json: %v", err)
	}
	WriteFile(b.t, filepath.Join(b.root, "rush.json"), string(data))
	for _, p := range b.projects {
		dir := filepath.Join(b.root, filepath.FromSlash(p.ProjectFolder))
		if err := os.MkdirAll(dir, testDirPermissions); err != nil {
			b.t.Fatalf("create project folder %s: %v", dir, err)
		}
	}
	return b.root
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), testDirPermissions); err != nil {
		t.Fatalf("create dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), testFilePermissions); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
