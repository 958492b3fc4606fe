package commands

import (
	"context"
	"time"

	"github.com/jeremymeng/rushstack/internal/lint"
	"github.com/jeremymeng/rushstack/internal/plugin"
	"github.com/jeremymeng/rushstack/internal/workspace"
)

// LintCmd implements the 'lint' command.
type LintCmd struct {
	Format   string        `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
	Rules    string        `short:"r" help:"Rule file to run instead of <workspace>/lockfile-lint.json" type:"path"`
	Watch    bool          `short:"w" help:"Re-run when the rule file or a lockfile changes"`
	Debounce time.Duration `default:"500ms" help:"Quiet period before a re-run in watch mode"`
}

// Run executes the lint command.
func (c *LintCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	ws, err := g.LoadWorkspace()
	if err != nil {
		return err
	}

	host, _, err := activatePlugins(ctx, g, ws)
	if err != nil {
		return err
	}

	path := c.Rules
	if path == "" {
		path = ws.LintConfigPath()
	}
	linter := lint.NewLinter(ws, lint.WithLogger(g.Logger), lint.WithRecorder(g.Recorder))

	var formatter lint.Formatter = lint.NewTextFormatter(root.UseColor(), g.Settings.Verbose)
	if c.Format == "json" {
		formatter = lint.NewJSONFormatter()
	}

	once := func(ctx context.Context) error {
		if err := host.Hooks.Run(ctx, plugin.HookBeforeLint); err != nil {
			return err
		}
		result, err := linter.RunFile(ctx, path)
		if err != nil {
			return err
		}
		if err := host.Hooks.Run(ctx, plugin.HookAfterLint); err != nil {
			return err
		}
		return formatter.Format(g.Stdout, result)
	}

	if !c.Watch {
		return once(ctx)
	}

	watcher, err := lint.NewWatcher(lint.WatchPaths(ws, path), c.Debounce, g.Logger)
	if err != nil {
		return err
	}
	reporter := g.Reporter(root)
	report := func(ctx context.Context) {
		if err := once(ctx); err != nil && ctx.Err() == nil {
			reporter.Report(err)
		}
	}
	report(ctx)
	return watcher.Run(ctx, report)
}

// activatePlugins applies every configured plugin to a fresh host. Without a
// rush-plugins.json the host simply has no taps.
func activatePlugins(ctx context.Context, g *Global, ws *workspace.Workspace) (*plugin.Host, []plugin.Plugin, error) {
	host := plugin.NewHost(g.Logger, ws)
	manager, err := g.PluginManager(ws)
	if err != nil {
		return nil, nil, err
	}
	if manager.Count() == 0 {
		return host, nil, nil
	}
	plugins, err := manager.LoadAll(ctx, host)
	if err != nil {
		return nil, nil, err
	}
	if err := host.Hooks.Run(ctx, plugin.HookInitialize); err != nil {
		return nil, nil, err
	}
	return host, plugins, nil
}
