// Package workspace models a Rush-style monorepo: the rush.json root, its
// projects, and the well-known folders under common/ that hold lockfiles,
// autoinstallers, plugin manifests and plugin options.
//
// A Workspace is located by searching upward from a start folder for
// rush.json. Project folders are stored as absolute paths so that lockfile
// importer keys can be resolved and compared against them directly.
package workspace
