package plugin

import (
	"os"
	"path/filepath"

	rerrors "github.com/jeremymeng/rushstack/internal/errors"
)

// ResolvePackagePath finds packageName the way Node resolves a bare package
// import from a file in baseFolder: node_modules/<packageName> in baseFolder,
// then in each parent. The walk ends after stopFolder, so packages installed
// above it are never found; an empty stopFolder walks to the filesystem root.
// Symlinks are resolved, so pnpm's virtual store paths are returned.
func ResolvePackagePath(baseFolder, stopFolder, packageName string) (string, error) {
	dir, err := filepath.Abs(baseFolder)
	if err != nil {
		return "", rerrors.PackageNotFound(packageName, baseFolder)
	}
	stop := ""
	if stopFolder != "" {
		if stop, err = filepath.Abs(stopFolder); err != nil {
			return "", rerrors.PackageNotFound(packageName, baseFolder)
		}
	}
	for {
		if filepath.Base(dir) != "node_modules" {
			candidate := filepath.Join(dir, "node_modules", filepath.FromSlash(packageName))
			if info, err := os.Stat(filepath.Join(candidate, "package.json")); err == nil && !info.IsDir() {
				resolved, err := filepath.EvalSymlinks(candidate)
				if err != nil {
					return "", rerrors.PackageNotFound(packageName, baseFolder)
				}
				return resolved, nil
			}
		}
		parent := filepath.Dir(dir)
		if dir == stop || parent == dir {
			return "", rerrors.PackageNotFound(packageName, baseFolder)
		}
		dir = parent
	}
}
