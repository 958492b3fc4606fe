package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/jeremymeng/rushstack/internal/config"
	rerrors "github.com/jeremymeng/rushstack/internal/errors"
	"github.com/jeremymeng/rushstack/internal/logfields"
	"github.com/jeremymeng/rushstack/internal/metrics"
	"github.com/jeremymeng/rushstack/internal/schema"
	"github.com/jeremymeng/rushstack/internal/workspace"
)

// LoaderOptions carries the collaborators of a Loader. Zero values select
// defaults.
type LoaderOptions struct {
	Schemas  *schema.Cache
	Native   *NativeRegistry
	Scripts  ModuleLoader
	Logger   *slog.Logger
	Recorder metrics.Recorder
}

func (o LoaderOptions) withDefaults() LoaderOptions {
	if o.Schemas == nil {
		o.Schemas = schema.Default()
	}
	if o.Native == nil {
		o.Native = DefaultRegistry()
	}
	if o.Scripts == nil {
		o.Scripts = NewScriptLoader()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Recorder == nil {
		o.Recorder = metrics.NoopRecorder{}
	}
	return o
}

// Loader resolves, caches and instantiates one configured plugin. The package
// path and manifest are memoized; instances are never cached.
type Loader struct {
	cfg  Configuration
	ws   *workspace.Workspace
	opts LoaderOptions

	mu          sync.Mutex
	packagePath string
	manifest    *Manifest
}

// NewLoader creates a loader for cfg.
func NewLoader(ws *workspace.Workspace, cfg Configuration, opts LoaderOptions) *Loader {
	return &Loader{cfg: cfg, ws: ws, opts: opts.withDefaults()}
}

// Configuration returns the plugin configuration.
func (l *Loader) Configuration() Configuration { return l.cfg }

// AutoinstallerFolder is the private dependency folder the package is
// resolved from.
func (l *Loader) AutoinstallerFolder() string {
	return l.ws.AutoinstallerFolder(l.cfg.AutoinstallerName)
}

// ManifestCachePath is
// <manifests root>/<packageName>/<autoinstallerName>/rush-plugin-manifest.json.
func (l *Loader) ManifestCachePath() string {
	return filepath.Join(l.ws.PluginManifestsFolder(),
		filepath.FromSlash(l.cfg.PackageName),
		l.cfg.AutoinstallerName,
		workspace.PluginManifestFilename)
}

// PackagePath resolves the plugin package from the autoinstaller folder.
func (l *Loader) PackagePath() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.packagePathLocked()
}

func (l *Loader) packagePathLocked() (string, error) {
	if l.packagePath != "" {
		return l.packagePath, nil
	}
	folder := l.AutoinstallerFolder()
	p, err := ResolvePackagePath(folder, folder, l.cfg.PackageName)
	if err != nil {
		return "", err
	}
	l.packagePath = p
	return p, nil
}

// Update validates the manifest shipped in the plugin package and copies it
// verbatim into the manifest cache.
func (l *Loader) Update(ctx context.Context) (err error) {
	defer func() { l.opts.Recorder.IncPluginUpdate(metrics.ResultFor(err)) }()
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	pkgPath, err := l.packagePathLocked()
	if err != nil {
		return err
	}
	source := filepath.Join(pkgPath, workspace.PluginManifestFilename)
	// #nosec G304 -- path is inside a resolved plugin package
	data, err := os.ReadFile(source)
	if err != nil {
		return rerrors.ConfigInvalid(source, err)
	}
	if err := l.validateManifest(source, data); err != nil {
		return err
	}

	dest := l.ManifestCachePath()
	if err := writeFileAtomic(dest, data); err != nil {
		return rerrors.WrapError(err, rerrors.CategoryFileSystem, "failed to write plugin manifest cache").
			WithContext("path", dest)
	}
	l.manifest = nil
	l.opts.Logger.Debug("Updated plugin manifest cache",
		logfields.Plugin(l.cfg.PluginName),
		logfields.Package(l.cfg.PackageName),
		logfields.Path(dest))
	return nil
}

// Manifest returns the cached manifest entry for the configured plugin. It
// fails with ErrNeedsUpdate when the cache has not been populated.
func (l *Loader) Manifest() (Manifest, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.manifestLocked()
}

func (l *Loader) manifestLocked() (Manifest, error) {
	if l.manifest != nil {
		return *l.manifest, nil
	}
	path := l.ManifestCachePath()
	// #nosec G304 -- path is derived from workspace configuration
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Manifest{}, rerrors.NeedsUpdate(l.cfg.PackageName, l.cfg.PluginName, path)
	}
	if err != nil {
		return Manifest{}, rerrors.ConfigInvalid(path, err)
	}
	if err := l.validateManifest(path, data); err != nil {
		return Manifest{}, err
	}
	doc, err := decodeManifest(data)
	if err != nil {
		return Manifest{}, rerrors.ConfigInvalid(path, err)
	}
	m, ok := doc.Find(l.cfg.PluginName)
	if !ok {
		return Manifest{}, rerrors.ManifestEntryNotFound(l.cfg.PackageName, l.cfg.PluginName)
	}
	l.manifest = &m
	return m, nil
}

func (l *Loader) validateManifest(path string, data []byte) error {
	s, err := l.opts.Schemas.PluginManifest()
	if err != nil {
		return rerrors.InternalError("plugin manifest schema does not compile", err)
	}
	if _, err := s.ValidateBytes(data); err != nil {
		return rerrors.SchemaValidationFailed(path, validationCause(err))
	}
	return nil
}

// validationCause strips the schema-level wrapper so messages name the
// validated file rather than the schema.
func validationCause(err error) error {
	var re *rerrors.RushError
	if errors.As(err, &re) && re.Cause != nil {
		return re.Cause
	}
	return err
}

// Load resolves the entry point, reads options and constructs the plugin.
// No instance is returned unless it satisfies Plugin.
func (l *Loader) Load(ctx context.Context) (Plugin, error) {
	p, _, err := l.load(ctx)
	return p, err
}

// Activate loads the plugin and applies it to host with its options.
func (l *Loader) Activate(ctx context.Context, host *Host) (Plugin, error) {
	p, options, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.Apply(host, l.cfg, options); err != nil {
		return nil, rerrors.WrapError(err, rerrors.CategoryPlugin,
			fmt.Sprintf("applying plugin %s failed", l.cfg.PluginName)).
			WithContext("plugin", l.cfg.PluginName).
			WithContext("package", l.cfg.PackageName)
	}
	return p, nil
}

func (l *Loader) load(ctx context.Context) (p Plugin, options map[string]any, err error) {
	defer func() {
		result := metrics.ResultFor(err)
		if errors.Is(err, rerrors.ErrNeedsUpdate) {
			result = metrics.ResultNeedsUpdate
		}
		l.opts.Recorder.IncPluginLoad(result)
	}()

	l.mu.Lock()
	pkgPath, err := l.packagePathLocked()
	if err != nil {
		l.mu.Unlock()
		return nil, nil, err
	}
	manifest, err := l.manifestLocked()
	l.mu.Unlock()
	if err != nil {
		return nil, nil, err
	}

	options, err = l.options(pkgPath, manifest)
	if err != nil {
		return nil, nil, err
	}

	req := ModuleRequest{
		PackageName:   l.cfg.PackageName,
		PackageFolder: pkgPath,
		EntryPoint:    manifest.EntryPoint,
		Path:          filepath.Join(pkgPath, filepath.FromSlash(manifest.EntryPoint)),
	}
	module, err := l.loadModule(ctx, req)
	if err != nil {
		return nil, nil, rerrors.PluginLoad(req.Path, err)
	}
	l.opts.Logger.Debug(fmt.Sprintf("Loaded rush plugin from %q", req.Path),
		logfields.Plugin(l.cfg.PluginName),
		logfields.Path(req.Path))

	instance, err := module.New(ctx, options)
	if err != nil {
		return nil, nil, rerrors.PluginLoad(req.Path, err)
	}
	plugin, ok := asPlugin(instance)
	if !ok {
		return nil, nil, rerrors.InvalidPlugin(req.Path,
			"either doesn't define an \"apply\" property, or its value isn't a function")
	}
	return plugin, options, nil
}

func (l *Loader) loadModule(ctx context.Context, req ModuleRequest) (Module, error) {
	if l.opts.Native.Has(req.PackageName, req.EntryPoint) {
		return l.opts.Native.Load(ctx, req)
	}
	return l.opts.Scripts.Load(ctx, req)
}

// Options reads the plugin's options file. Plugins without one get an empty
// map.
func (l *Loader) Options() (map[string]any, error) {
	pkgPath, err := l.PackagePath()
	if err != nil {
		return nil, err
	}
	manifest, err := l.Manifest()
	if err != nil {
		return nil, err
	}
	return l.options(pkgPath, manifest)
}

func (l *Loader) options(pkgPath string, manifest Manifest) (map[string]any, error) {
	if l.cfg.OptionsJSONFilePath == "" {
		return map[string]any{}, nil
	}
	path := filepath.Join(l.ws.PluginOptionsFolder(), filepath.FromSlash(l.cfg.OptionsJSONFilePath))
	// #nosec G304 -- path is derived from workspace configuration
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, rerrors.OptionsFileNotFound(path)
	}
	if err != nil {
		return nil, rerrors.ConfigInvalid(path, err)
	}

	if manifest.OptionsSchema == "" {
		l.opts.Logger.Debug("Plugin declares no options schema; options are not validated",
			logfields.Plugin(l.cfg.PluginName), logfields.Path(path))
	} else {
		schemaPath := filepath.Join(pkgPath, filepath.FromSlash(manifest.OptionsSchema))
		s, err := l.opts.Schemas.FromFile(schemaPath)
		if err != nil {
			return nil, rerrors.OptionsInvalid(path, schemaPath, err)
		}
		if _, err := s.ValidateBytes(data); err != nil {
			return nil, rerrors.OptionsInvalid(path, schemaPath, validationCause(err))
		}
	}

	std, err := config.StandardizeJSON(data)
	if err != nil {
		return nil, rerrors.ConfigInvalid(path, err)
	}
	options := map[string]any{}
	if err := json.Unmarshal(std, &options); err != nil {
		return nil, rerrors.ConfigInvalid(path, err)
	}
	return options, nil
}

// writeFileAtomic writes data to a temp file beside path and renames it into
// place, creating parent directories.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".rush-plugin-manifest-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
