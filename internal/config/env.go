package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/jeremymeng/rushstack/internal/logfields"
)

// Environment variables understood by rushkit.
const (
	EnvWorkingDir     = "RUSHKIT_CWD"
	EnvVerbose        = "RUSHKIT_VERBOSE"
	EnvMetricsFile    = "RUSHKIT_METRICS_FILE"
	EnvInstallCommand = "RUSHKIT_AUTOINSTALL_COMMAND"
)

// DefaultInstallCommand installs an autoinstaller's dependencies.
var DefaultInstallCommand = []string{"pnpm", "install", "--frozen-lockfile"}

var envFiles = []string{".env", ".env.local"}

// LoadEnv loads environment variables from .env/.env.local files in dir.
// Existing process environment variables are never overwritten. Missing files
// are not an error.
func LoadEnv(dir string) error {
	for _, name := range envFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return err
		}
		slog.Debug("Loaded environment file", logfields.Path(path))
	}
	return nil
}

// Settings carries process-level options that may come from the environment.
type Settings struct {
	WorkingDir     string
	Verbose        bool
	MetricsFile    string
	InstallCommand []string
}

// SettingsFromEnv reads Settings from the process environment, falling back to
// the current directory and the default install command.
func SettingsFromEnv() Settings {
	s := Settings{
		WorkingDir:     os.Getenv(EnvWorkingDir),
		Verbose:        parseBool(os.Getenv(EnvVerbose)),
		MetricsFile:    os.Getenv(EnvMetricsFile),
		InstallCommand: DefaultInstallCommand,
	}
	if s.WorkingDir == "" {
		if wd, err := os.Getwd(); err == nil {
			s.WorkingDir = wd
		}
	}
	if cmd := strings.Fields(os.Getenv(EnvInstallCommand)); len(cmd) > 0 {
		s.InstallCommand = cmd
	}
	return s
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
