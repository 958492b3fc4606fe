package plugin

import (
	"context"
	"log/slog"
	"sync"

	rerrors "github.com/jeremymeng/rushstack/internal/errors"
	"github.com/jeremymeng/rushstack/internal/logfields"
	"github.com/jeremymeng/rushstack/internal/workspace"
)

// Well-known hook names.
const (
	HookInitialize = "initialize"
	HookBeforeLint = "beforeLint"
	HookAfterLint  = "afterLint"
)

// HookFunc is a callback registered on a named hook.
type HookFunc func(ctx context.Context) error

type tap struct {
	plugin string
	fn     HookFunc
}

// Hooks is a set of named hooks plugins tap into. Taps run in registration
// order.
type Hooks struct {
	mu   sync.Mutex
	taps map[string][]tap
}

// NewHooks creates an empty hook set.
func NewHooks() *Hooks {
	return &Hooks{taps: make(map[string][]tap)}
}

// Tap registers fn on hook on behalf of pluginName.
func (h *Hooks) Tap(hook, pluginName string, fn HookFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.taps[hook] = append(h.taps[hook], tap{plugin: pluginName, fn: fn})
}

// Count returns the number of taps on hook.
func (h *Hooks) Count(hook string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.taps[hook])
}

// Run calls every tap of hook and stops at the first error.
func (h *Hooks) Run(ctx context.Context, hook string) error {
	h.mu.Lock()
	taps := append([]tap(nil), h.taps[hook]...)
	h.mu.Unlock()

	for _, t := range taps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := t.fn(ctx); err != nil {
			return rerrors.WrapError(err, rerrors.CategoryPlugin, "hook "+hook+" failed in plugin "+t.plugin).
				WithContext("hook", hook).
				WithContext("plugin", t.plugin)
		}
	}
	return nil
}

// Host is what plugins see when applied.
type Host struct {
	// Logger provides structured logging for plugin operations.
	Logger *slog.Logger

	// Workspace is the loaded workspace, nil when plugins run outside one.
	Workspace *workspace.Workspace

	// Hooks are the named extension points of the host.
	Hooks *Hooks
}

// NewHost creates a host with a fresh hook set.
func NewHost(logger *slog.Logger, ws *workspace.Workspace) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	return &Host{Logger: logger, Workspace: ws, Hooks: NewHooks()}
}

// Tap registers fn on hook on behalf of pluginName.
func (h *Host) Tap(hook, pluginName string, fn HookFunc) {
	h.Logger.Debug("Plugin tapped hook", logfields.Plugin(pluginName), logfields.Hook(hook))
	h.Hooks.Tap(hook, pluginName, fn)
}

// ForPlugin returns a logger tagged with the plugin's identity.
func (h *Host) ForPlugin(cfg Configuration) *slog.Logger {
	return h.Logger.With(logfields.Plugin(cfg.PluginName), logfields.Package(cfg.PackageName))
}
