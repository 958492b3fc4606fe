package testing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// FileAssertions checks files below a workspace root.
type FileAssertions struct {
	t    *testing.T
	root string
}

// NewFileAssertions creates assertions rooted at root. Paths given to the
// assertion methods are slash-separated and relative to root.
func NewFileAssertions(t *testing.T, root string) *FileAssertions {
	return &FileAssertions{t: t, root: root}
}

func (fa *FileAssertions) path(relativePath string) string {
	return filepath.Join(fa.root, filepath.FromSlash(relativePath))
}

// AssertFileExists fails unless relativePath is a regular file.
func (fa *FileAssertions) AssertFileExists(relativePath string) *FileAssertions {
	fa.t.Helper()
	info, err := os.Stat(fa.path(relativePath))
	if assert.NoError(fa.t, err, "expected %s to exist", relativePath) {
		assert.False(fa.t, info.IsDir(), "expected %s to be a file", relativePath)
	}
	return fa
}

// AssertFileNotExists fails when relativePath exists.
func (fa *FileAssertions) AssertFileNotExists(relativePath string) *FileAssertions {
	fa.t.Helper()
	assert.NoFileExists(fa.t, fa.path(relativePath))
	return fa
}

// AssertSameContent fails unless relativePath holds the same bytes as otherPath.
func (fa *FileAssertions) AssertSameContent(relativePath, otherPath string) *FileAssertions {
	fa.t.Helper()
	want, err := os.ReadFile(otherPath)
	if !assert.NoError(fa.t, err) {
		return fa
	}
	got, err := os.ReadFile(fa.path(relativePath))
	if !assert.NoError(fa.t, err) {
		return fa
	}
	assert.Equal(fa.t, string(want), string(got), "%s differs from %s", relativePath, otherPath)
	return fa
}

// AssertManifestCached fails unless the manifest cache of packageName under
// autoinstaller was written.
func (fa *FileAssertions) AssertManifestCached(packageName, autoinstaller string) *FileAssertions {
	fa.t.Helper()
	return fa.AssertFileExists(manifestCachePath(packageName, autoinstaller))
}

// AssertManifestNotCached fails when the manifest cache of packageName under
// autoinstaller exists.
func (fa *FileAssertions) AssertManifestNotCached(packageName, autoinstaller string) *FileAssertions {
	fa.t.Helper()
	return fa.AssertFileNotExists(manifestCachePath(packageName, autoinstaller))
}

func manifestCachePath(packageName, autoinstaller string) string {
	return PluginManifestsPath + "/" + packageName + "/" + autoinstaller + "/rush-plugin-manifest.json"
}
