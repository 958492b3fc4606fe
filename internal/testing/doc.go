// Package testing contains fixture builders and assertions shared by package
// tests: synthetic Rush workspaces with lockfiles, lint rule files and
// installed plugin packages.
package testing

const (
	// testDirPermissions is the permission mode for creating test directories.
	testDirPermissions = 0o750

	// testFilePermissions is the permission mode for creating test files.
	testFilePermissions = 0o600
)
