package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dop251/goja"
)

// ScriptLoader evaluates JavaScript entry points as CommonJS modules. Each
// entry point gets its own runtime; require resolves relative .js and .json
// files that stay inside the plugin package.
type ScriptLoader struct{}

// NewScriptLoader creates a script loader.
func NewScriptLoader() *ScriptLoader { return &ScriptLoader{} }

// Load evaluates req.Path and returns its export, preferring the "default"
// binding.
func (l *ScriptLoader) Load(ctx context.Context, req ModuleRequest) (Module, error) {
	rt := goja.New()
	s := &scriptModule{
		rt:     rt,
		root:   req.PackageFolder,
		path:   req.Path,
		loaded: make(map[string]*goja.Object),
	}
	stop := context.AfterFunc(ctx, func() { rt.Interrupt(ctx.Err()) })
	defer stop()

	exports, err := s.require(req.Path)
	if err != nil {
		return nil, err
	}

	export := exports
	if obj, ok := exports.(*goja.Object); ok {
		if def := obj.Get("default"); def != nil && !goja.IsUndefined(def) && !goja.IsNull(def) {
			export = def
		}
	}
	if export == nil || goja.IsUndefined(export) || goja.IsNull(export) {
		return nil, errors.New("module is null or undefined")
	}
	s.export = export
	return s, nil
}

type scriptModule struct {
	mu     sync.Mutex
	rt     *goja.Runtime
	root   string
	path   string
	loaded map[string]*goja.Object
	export goja.Value
}

// New constructs the exported class (or constructor function) with options.
func (s *scriptModule) New(ctx context.Context, options map[string]any) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctor, ok := goja.AssertConstructor(s.export)
	if !ok {
		return nil, fmt.Errorf("export of %s is not a constructor", s.path)
	}
	stop := context.AfterFunc(ctx, func() { s.rt.Interrupt(ctx.Err()) })
	defer stop()
	obj, err := ctor(nil, s.rt.ToValue(options))
	if err != nil {
		return nil, err
	}
	return &scriptObject{module: s, obj: obj}, nil
}

func (s *scriptModule) require(file string) (goja.Value, error) {
	if mod, ok := s.loaded[file]; ok {
		return mod.Get("exports"), nil
	}
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	module := s.rt.NewObject()
	if strings.HasSuffix(file, ".json") {
		var v any
		if err := json.Unmarshal(src, &v); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		if err := module.Set("exports", s.rt.ToValue(v)); err != nil {
			return nil, err
		}
		s.loaded[file] = module
		return module.Get("exports"), nil
	}

	exports := s.rt.NewObject()
	if err := module.Set("exports", exports); err != nil {
		return nil, err
	}
	s.loaded[file] = module

	wrapped := "(function (exports, require, module, __filename, __dirname) {" + string(src) + "\n})"
	fnVal, err := s.rt.RunScript(file, wrapped)
	if err != nil {
		delete(s.loaded, file)
		return nil, err
	}
	fn, ok := goja.AssertFunction(fnVal)
	if !ok {
		delete(s.loaded, file)
		return nil, fmt.Errorf("cannot evaluate %s", file)
	}

	dir := filepath.Dir(file)
	requireFn := s.rt.ToValue(func(call goja.FunctionCall) goja.Value {
		target, err := s.resolve(dir, call.Argument(0).String())
		if err != nil {
			panic(s.rt.NewGoError(err))
		}
		v, err := s.require(target)
		if err != nil {
			panic(s.rt.NewGoError(err))
		}
		return v
	})

	if _, err := fn(goja.Undefined(), exports, requireFn, module, s.rt.ToValue(file), s.rt.ToValue(dir)); err != nil {
		delete(s.loaded, file)
		return nil, err
	}
	return module.Get("exports"), nil
}

func (s *scriptModule) resolve(dir, spec string) (string, error) {
	if !strings.HasPrefix(spec, "./") && !strings.HasPrefix(spec, "../") {
		return "", fmt.Errorf("cannot find module %q: only relative requires are supported", spec)
	}
	base := filepath.Join(dir, filepath.FromSlash(spec))
	if rel, err := filepath.Rel(s.root, base); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("cannot find module %q: outside of package %s", spec, s.root)
	}
	for _, candidate := range []string{base, base + ".js", base + ".json", filepath.Join(base, "index.js")} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("cannot find module %q from %s", spec, dir)
}

// scriptObject is a constructed script instance.
type scriptObject struct {
	module *scriptModule
	obj    *goja.Object
}

// AsPlugin returns an adapter when the instance has a callable apply.
func (o *scriptObject) AsPlugin() (Plugin, bool) {
	o.module.mu.Lock()
	defer o.module.mu.Unlock()
	apply, ok := goja.AssertFunction(o.obj.Get("apply"))
	if !ok {
		return nil, false
	}
	return &scriptPlugin{module: o.module, this: o.obj, apply: apply}, true
}

type scriptPlugin struct {
	module *scriptModule
	this   *goja.Object
	apply  goja.Callable
}

// Apply calls the script's apply(host, configuration, options).
func (p *scriptPlugin) Apply(host *Host, cfg Configuration, options map[string]any) error {
	p.module.mu.Lock()
	defer p.module.mu.Unlock()

	rt := p.module.rt
	hostObj, err := p.hostObject(host, cfg)
	if err != nil {
		return err
	}
	cfgObj := rt.ToValue(map[string]any{
		"packageName":         cfg.PackageName,
		"pluginName":          cfg.PluginName,
		"autoinstallerName":   cfg.AutoinstallerName,
		"optionsJsonFilePath": cfg.OptionsJSONFilePath,
	})
	_, err = p.apply(p.this, hostObj, cfgObj, rt.ToValue(options))
	return err
}

func (p *scriptPlugin) hostObject(host *Host, cfg Configuration) (*goja.Object, error) {
	rt := p.module.rt
	logger := host.ForPlugin(cfg)
	obj := rt.NewObject()

	logObj := rt.NewObject()
	for name, fn := range map[string]func(string, ...any){
		"debug": logger.Debug,
		"info":  logger.Info,
		"warn":  logger.Warn,
		"error": logger.Error,
	} {
		if err := logObj.Set(name, func(msg string) { fn(msg) }); err != nil {
			return nil, err
		}
	}
	if err := obj.Set("logger", logObj); err != nil {
		return nil, err
	}

	hooksObj := rt.NewObject()
	tapFn := func(call goja.FunctionCall) goja.Value {
		hook := call.Argument(0).String()
		fn, ok := goja.AssertFunction(call.Argument(1))
		if !ok {
			panic(rt.NewTypeError("hooks.tap(%q) requires a function", hook))
		}
		host.Tap(hook, cfg.PluginName, func(ctx context.Context) error {
			p.module.mu.Lock()
			defer p.module.mu.Unlock()
			stop := context.AfterFunc(ctx, func() { rt.Interrupt(ctx.Err()) })
			defer stop()
			_, err := fn(goja.Undefined())
			return err
		})
		return goja.Undefined()
	}
	if err := hooksObj.Set("tap", tapFn); err != nil {
		return nil, err
	}
	if err := obj.Set("hooks", hooksObj); err != nil {
		return nil, err
	}
	return obj, nil
}
