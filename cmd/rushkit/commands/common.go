package commands

import (
	"context"
	"io"
	"log/slog"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/jeremymeng/rushstack/internal/config"
	rerrors "github.com/jeremymeng/rushstack/internal/errors"
	"github.com/jeremymeng/rushstack/internal/logfields"
	"github.com/jeremymeng/rushstack/internal/metrics"
	"github.com/jeremymeng/rushstack/internal/plugin"
	"github.com/jeremymeng/rushstack/internal/version"
	"github.com/jeremymeng/rushstack/internal/workspace"
)

// Global carries state shared by every subcommand.
type Global struct {
	Logger   *slog.Logger
	Settings config.Settings
	Recorder metrics.Recorder
	RunID    string
	Stdout   io.Writer
	Stderr   io.Writer

	prom *metrics.PrometheusRecorder
}

// CLI definition & global flags.
type CLI struct {
	Cwd         string           `short:"C" help:"Start workspace discovery from this folder" type:"path"`
	Verbose     bool             `short:"v" help:"Enable verbose logging"`
	MetricsFile string           `name:"metrics-file" help:"Write Prometheus metrics in text format to this file after the run"`
	NoColor     bool             `name:"no-color" help:"Disable colored output"`
	Version     kong.VersionFlag `name:"version" help:"Show version and exit"`

	Lint   LintCmd   `cmd:"" default:"1" help:"Check lockfile consistency rules from lockfile-lint.json"`
	Plugin PluginCmd `cmd:"" help:"Manage rush plugins"`

	stdout io.Writer
	stderr io.Writer
	global *Global
}

// AfterApply runs after flag parsing; setup logging and shared state once.
func (c *CLI) AfterApply() error {
	dir := c.Cwd
	if dir == "" {
		dir = config.SettingsFromEnv().WorkingDir
	}
	if err := config.LoadEnv(dir); err != nil {
		return rerrors.ConfigInvalid(dir, err)
	}

	// Read again so values from .env files are visible; flags win.
	settings := config.SettingsFromEnv()
	settings.WorkingDir = dir
	settings.Verbose = settings.Verbose || c.Verbose
	if c.MetricsFile != "" {
		settings.MetricsFile = c.MetricsFile
	}

	level := slog.LevelInfo
	if settings.Verbose {
		level = slog.LevelDebug
	}
	runID := uuid.NewString()
	logger := slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{Level: level})).
		With(logfields.RunID(runID))
	slog.SetDefault(logger)

	g := &Global{
		Logger:   logger,
		Settings: settings,
		Recorder: metrics.NoopRecorder{},
		RunID:    runID,
		Stdout:   c.stdout,
		Stderr:   c.stderr,
	}
	if settings.MetricsFile != "" {
		g.prom = metrics.NewPrometheusRecorder(nil)
		g.Recorder = g.prom
	}
	c.global = g
	return nil
}

// UseColor reports whether output to a terminal should be colored.
func (c *CLI) UseColor() bool {
	return !c.NoColor && !color.NoColor
}

// Reporter returns the adapter that prints errors to stderr.
func (g *Global) Reporter(root *CLI) *rerrors.CLIErrorAdapter {
	return rerrors.NewCLIErrorAdapter(g.Settings.Verbose, g.Logger).
		WithColor(root.UseColor()).
		WithOutput(g.Stderr)
}

// LoadWorkspace finds rush.json from the configured working directory.
func (g *Global) LoadWorkspace() (*workspace.Workspace, error) {
	ws, err := workspace.LoadFromFolder(g.Settings.WorkingDir)
	if err != nil {
		return nil, err
	}
	g.Logger.Debug("Loaded workspace", logfields.Path(ws.RootFolder))
	return ws, nil
}

// PluginManager creates a manager for the plugins configured in ws.
func (g *Global) PluginManager(ws *workspace.Workspace) (*plugin.Manager, error) {
	return plugin.NewManagerFromWorkspace(ws, plugin.LoaderOptions{
		Logger:   g.Logger,
		Recorder: g.Recorder,
	}, g.Settings.InstallCommand)
}

// flushMetrics writes the metrics textfile when one was requested.
func (g *Global) flushMetrics() {
	if g.prom == nil {
		return
	}
	if err := g.prom.WriteTextfile(g.Settings.MetricsFile); err != nil {
		g.Logger.Warn("Failed to write metrics file", logfields.Path(g.Settings.MetricsFile), logfields.Error(err))
		return
	}
	g.Logger.Debug("Wrote metrics file", logfields.Path(g.Settings.MetricsFile))
}

// Execute parses args, runs the selected command and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cli := &CLI{stdout: stdout, stderr: stderr}
	parser, err := kong.New(cli,
		kong.Name("rushkit"),
		kong.Description("Lockfile consistency checks and plugin management for Rush monorepos."),
		kong.Vars{"version": version.String()},
		kong.Writers(stdout, stderr),
		kong.UsageOnError(),
	)
	if err != nil {
		return rerrors.NewCLIErrorAdapter(false, nil).WithOutput(stderr).Report(rerrors.InternalError("failed to build command line", err))
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return rerrors.NewCLIErrorAdapter(cli.Verbose, nil).WithOutput(stderr).Report(err)
	}

	g := cli.global
	kctx.BindTo(ctx, (*context.Context)(nil))
	err = kctx.Run(g, cli)
	g.flushMetrics()

	return g.Reporter(cli).Report(err)
}
