package plugin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	cmap "github.com/orcaman/concurrent-map/v2"

	rerrors "github.com/jeremymeng/rushstack/internal/errors"
	"github.com/jeremymeng/rushstack/internal/logfields"
	"github.com/jeremymeng/rushstack/internal/workspace"
)

// Manager owns one Loader per configured plugin.
type Manager struct {
	ws             *workspace.Workspace
	opts           LoaderOptions
	installCommand []string

	loaders cmap.ConcurrentMap[string, *Loader]
	order   []string
}

// NewManager creates loaders for configs. installCommand overrides the
// autoinstaller install command when non-empty.
func NewManager(ws *workspace.Workspace, configs []Configuration, opts LoaderOptions, installCommand []string) (*Manager, error) {
	m := &Manager{
		ws:             ws,
		opts:           opts.withDefaults(),
		installCommand: installCommand,
		loaders:        cmap.New[*Loader](),
	}
	for _, cfg := range configs {
		if err := cfg.Validate(); err != nil {
			return nil, rerrors.ValidationError(err.Error())
		}
		if !m.loaders.SetIfAbsent(cfg.Key(), NewLoader(ws, cfg, m.opts)) {
			return nil, rerrors.ValidationError(fmt.Sprintf("plugin %s is configured more than once", cfg))
		}
		m.order = append(m.order, cfg.Key())
	}
	return m, nil
}

// NewManagerFromWorkspace reads rush-plugins.json and creates a manager.
func NewManagerFromWorkspace(ws *workspace.Workspace, opts LoaderOptions, installCommand []string) (*Manager, error) {
	configs, err := LoadConfigurations(ws)
	if err != nil {
		return nil, err
	}
	return NewManager(ws, configs, opts, installCommand)
}

// Loader returns the loader of one plugin.
func (m *Manager) Loader(packageName, pluginName string) (*Loader, bool) {
	return m.loaders.Get(Configuration{PackageName: packageName, PluginName: pluginName}.Key())
}

// Loaders returns every loader in configuration order.
func (m *Manager) Loaders() []*Loader {
	out := make([]*Loader, 0, len(m.order))
	for _, key := range m.order {
		if l, ok := m.loaders.Get(key); ok {
			out = append(out, l)
		}
	}
	return out
}

// Count returns the number of configured plugins.
func (m *Manager) Count() int { return m.loaders.Count() }

// Autoinstallers returns the distinct autoinstallers the plugins come from.
func (m *Manager) Autoinstallers() []*Autoinstaller {
	seen := make(map[string]bool)
	var out []*Autoinstaller
	for _, l := range m.Loaders() {
		name := l.Configuration().AutoinstallerName
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, NewAutoinstaller(m.ws, name, m.installCommand))
	}
	return out
}

// UpdateAll installs every autoinstaller and refreshes every cached manifest.
func (m *Manager) UpdateAll(ctx context.Context) error {
	for _, a := range m.Autoinstallers() {
		if err := a.EnsureInstalled(ctx, m.opts.Logger); err != nil {
			return err
		}
	}
	for _, l := range m.Loaders() {
		if err := l.Update(ctx); err != nil {
			return err
		}
		m.opts.Logger.Info("Updated plugin",
			logfields.Plugin(l.Configuration().PluginName),
			logfields.Package(l.Configuration().PackageName))
	}
	return nil
}

// LoadAll activates every plugin on host. Plugins whose manifest is not
// cached are collected into a single ErrNeedsUpdate error; any other failure
// aborts immediately.
func (m *Manager) LoadAll(ctx context.Context, host *Host) ([]Plugin, error) {
	var (
		plugins []Plugin
		stale   []string
	)
	for _, l := range m.Loaders() {
		p, err := l.Activate(ctx, host)
		if errors.Is(err, rerrors.ErrNeedsUpdate) {
			stale = append(stale, l.Configuration().String())
			continue
		}
		if err != nil {
			return nil, err
		}
		plugins = append(plugins, p)
	}
	if len(stale) > 0 {
		return plugins, rerrors.New(rerrors.CategoryPlugin, rerrors.SeverityError,
			fmt.Sprintf("plugin manifests are not cached for %s; run \"rushkit plugin update\" first", strings.Join(stale, ", "))).
			WithKind(rerrors.ErrNeedsUpdate).
			WithContext("count", len(stale))
	}
	m.opts.Logger.Debug("Loaded plugins", logfields.Count(len(plugins)))
	return plugins, nil
}
