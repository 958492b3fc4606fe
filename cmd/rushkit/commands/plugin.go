package commands

import (
	"context"
	"fmt"

	"github.com/jeremymeng/rushstack/internal/logfields"
	"github.com/jeremymeng/rushstack/internal/plugin"
)

// PluginCmd groups the plugin subcommands.
type PluginCmd struct {
	Update PluginUpdateCmd `cmd:"" help:"Install autoinstallers and refresh cached plugin manifests"`
	Check  PluginCheckCmd  `cmd:"" help:"Load and apply every configured plugin"`
}

// PluginUpdateCmd implements 'plugin update'.
type PluginUpdateCmd struct{}

// Run executes the plugin update command.
func (c *PluginUpdateCmd) Run(ctx context.Context, g *Global) error {
	ws, err := g.LoadWorkspace()
	if err != nil {
		return err
	}
	manager, err := g.PluginManager(ws)
	if err != nil {
		return err
	}
	if err := manager.UpdateAll(ctx); err != nil {
		return err
	}
	_, err = fmt.Fprintf(g.Stdout, "Updated %d plugin manifest(s)\n", manager.Count())
	return err
}

// PluginCheckCmd implements 'plugin check'.
type PluginCheckCmd struct{}

// Run executes the plugin check command.
func (c *PluginCheckCmd) Run(ctx context.Context, g *Global) error {
	ws, err := g.LoadWorkspace()
	if err != nil {
		return err
	}
	host, plugins, err := activatePlugins(ctx, g, ws)
	if err != nil {
		return err
	}
	taps := 0
	for _, hook := range []string{plugin.HookInitialize, plugin.HookBeforeLint, plugin.HookAfterLint} {
		n := host.Hooks.Count(hook)
		g.Logger.Debug("Hook taps", logfields.Hook(hook), logfields.Count(n))
		taps += n
	}
	_, err = fmt.Fprintf(g.Stdout, "Loaded %d plugin(s) with %d hook tap(s)\n", len(plugins), taps)
	return err
}
