package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv_DoesNotOverrideProcessEnv(t *testing.T) {
	dir := t.TempDir()
	content := "RUSHKIT_TEST_FROM_FILE=file\nRUSHKIT_TEST_PRESET=file\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))

	t.Setenv("RUSHKIT_TEST_PRESET", "process")
	t.Cleanup(func() { _ = os.Unsetenv("RUSHKIT_TEST_FROM_FILE") })

	require.NoError(t, LoadEnv(dir))
	assert.Equal(t, "file", os.Getenv("RUSHKIT_TEST_FROM_FILE"))
	assert.Equal(t, "process", os.Getenv("RUSHKIT_TEST_PRESET"))
}

func TestLoadEnv_MissingFilesAreIgnored(t *testing.T) {
	require.NoError(t, LoadEnv(t.TempDir()))
}

func TestSettingsFromEnv(t *testing.T) {
	t.Setenv(EnvWorkingDir, "/repo")
	t.Setenv(EnvVerbose, "true")
	t.Setenv(EnvMetricsFile, "/tmp/rushkit.prom")
	t.Setenv(EnvInstallCommand, "npm ci")

	s := SettingsFromEnv()
	assert.Equal(t, "/repo", s.WorkingDir)
	assert.True(t, s.Verbose)
	assert.Equal(t, "/tmp/rushkit.prom", s.MetricsFile)
	assert.Equal(t, []string{"npm", "ci"}, s.InstallCommand)
}

func TestSettingsFromEnv_Defaults(t *testing.T) {
	t.Setenv(EnvWorkingDir, "")
	t.Setenv(EnvVerbose, "")
	t.Setenv(EnvInstallCommand, "")

	s := SettingsFromEnv()
	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, wd, s.WorkingDir)
	assert.False(t, s.Verbose)
	assert.Equal(t, DefaultInstallCommand, s.InstallCommand)
}
