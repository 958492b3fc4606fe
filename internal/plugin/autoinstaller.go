package plugin

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/jeremymeng/rushstack/internal/config"
	rerrors "github.com/jeremymeng/rushstack/internal/errors"
	"github.com/jeremymeng/rushstack/internal/logfields"
	"github.com/jeremymeng/rushstack/internal/workspace"
)

// Autoinstaller is a named, isolated dependency folder under
// common/autoinstallers that plugin packages are installed into.
type Autoinstaller struct {
	Name   string
	Folder string

	// InstallCommand is run in Folder when node_modules is missing.
	InstallCommand []string
}

// NewAutoinstaller returns the autoinstaller called name in ws.
func NewAutoinstaller(ws *workspace.Workspace, name string, installCommand []string) *Autoinstaller {
	if len(installCommand) == 0 {
		installCommand = config.DefaultInstallCommand
	}
	return &Autoinstaller{
		Name:           name,
		Folder:         ws.AutoinstallerFolder(name),
		InstallCommand: append([]string(nil), installCommand...),
	}
}

// IsInstalled reports whether node_modules exists.
func (a *Autoinstaller) IsInstalled() bool {
	info, err := os.Stat(filepath.Join(a.Folder, "node_modules"))
	return err == nil && info.IsDir()
}

// EnsureInstalled installs the autoinstaller's dependencies unless they are
// already present.
func (a *Autoinstaller) EnsureInstalled(ctx context.Context, logger *slog.Logger) error {
	if _, err := os.Stat(filepath.Join(a.Folder, "package.json")); err != nil {
		return rerrors.ConfigInvalid(filepath.Join(a.Folder, "package.json"),
			fmt.Errorf("autoinstaller %q is missing its package.json", a.Name)).
			WithContext("autoinstaller", a.Name)
	}
	if a.IsInstalled() {
		return nil
	}
	if len(a.InstallCommand) == 0 {
		return rerrors.ValidationError("autoinstaller install command is empty")
	}

	logger.Info("Installing autoinstaller", logfields.Autoinstaller(a.Name), logfields.Path(a.Folder))
	// #nosec G204 -- the command comes from operator configuration
	cmd := exec.CommandContext(ctx, a.InstallCommand[0], a.InstallCommand[1:]...)
	cmd.Dir = a.Folder
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return rerrors.WrapError(err, rerrors.CategoryPlugin,
			fmt.Sprintf("installing autoinstaller %q failed: %s", a.Name, strings.TrimSpace(out.String()))).
			WithContext("autoinstaller", a.Name)
	}
	return nil
}
