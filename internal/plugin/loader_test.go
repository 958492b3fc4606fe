package plugin

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rerrors "github.com/jeremymeng/rushstack/internal/errors"
	testfx "github.com/jeremymeng/rushstack/internal/testing"
)

func TestLoader_ManifestBeforeUpdate(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.loader("demo", "").Manifest()
	require.Error(t, err)
	assert.True(t, errors.Is(err, rerrors.ErrNeedsUpdate))
	assert.False(t, errors.Is(err, os.ErrNotExist))

	_, err = f.loader("demo", "").Load(context.Background())
	assert.True(t, errors.Is(err, rerrors.ErrNeedsUpdate))
}

func TestLoader_UpdateCopiesManifest(t *testing.T) {
	f := newFixture(t, nil)
	l := f.loader("demo", "")
	require.NoError(t, l.Update(context.Background()))

	want := filepath.Join(f.root, "common", "autoinstallers", "rush-plugins",
		"@acme", "rush-plugin-demo", demoAutoinstaller, "rush-plugin-manifest.json")
	assert.Equal(t, want, l.ManifestCachePath())

	pkgPath, err := l.PackagePath()
	require.NoError(t, err)
	testfx.NewFileAssertions(t, f.root).
		AssertManifestCached(demoPackage, demoAutoinstaller).
		AssertSameContent("common/autoinstallers/rush-plugins/@acme/rush-plugin-demo/plugins/rush-plugin-manifest.json",
			filepath.Join(pkgPath, "rush-plugin-manifest.json"))

	first, err := l.Manifest()
	require.NoError(t, err)
	second, err := l.Manifest()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, Manifest{
		PluginName:    "demo",
		Description:   "Greets on initialize",
		EntryPoint:    "lib/index.js",
		OptionsSchema: "lib/options.schema.json",
	}, first)

	// a fresh loader reads the same cache
	third, err := f.loader("demo", "").Manifest()
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestLoader_UpdateRejectsInvalidManifest(t *testing.T) {
	f := newFixture(t, func(b *testfx.WorkspaceBuilder) {
		b.WithPluginPackage(demoAutoinstaller, "broken-plugin", map[string]string{
			"rush-plugin-manifest.json": `{"plugins": [{"pluginName": "x"}]}`,
		})
	})
	l := NewLoader(f.ws, Configuration{PackageName: "broken-plugin", PluginName: "x", AutoinstallerName: demoAutoinstaller}, f.opts)

	err := l.Update(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, rerrors.ErrSchemaValidation))
	testfx.NewFileAssertions(t, f.root).
		AssertManifestNotCached("broken-plugin", demoAutoinstaller)
}

func TestLoader_ManifestEntryNotFound(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.loader("demo", "").Update(context.Background()))

	_, err := f.loader("missing", "").Manifest()
	require.Error(t, err)
	assert.True(t, errors.Is(err, rerrors.ErrManifestEntryNotFound))
	assert.False(t, errors.Is(err, rerrors.ErrNeedsUpdate))
}

func TestLoader_PackageNotFound(t *testing.T) {
	f := newFixture(t, nil)
	l := NewLoader(f.ws, Configuration{PackageName: "not-installed", PluginName: "x", AutoinstallerName: demoAutoinstaller}, f.opts)
	err := l.Update(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, rerrors.ErrPackageNotFound))
}

func TestLoader_PackageOutsideAutoinstaller(t *testing.T) {
	f := newFixture(t, func(b *testfx.WorkspaceBuilder) {
		b.WithFile("node_modules/root-only-plugin/package.json", `{"name": "root-only-plugin", "version": "1.0.0"}`)
	})
	l := NewLoader(f.ws, Configuration{PackageName: "root-only-plugin", PluginName: "x", AutoinstallerName: demoAutoinstaller}, f.opts)
	_, err := l.PackagePath()
	require.Error(t, err)
	assert.True(t, errors.Is(err, rerrors.ErrPackageNotFound))
}

func TestLoader_LoadScriptPlugin(t *testing.T) {
	f := newFixture(t, func(b *testfx.WorkspaceBuilder) {
		b.WithPluginOptions("demo.json", `{"name": "demo-user"}`)
	})
	l := f.loader("demo", "demo.json")
	require.NoError(t, l.Update(context.Background()))

	options, err := l.Options()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "demo-user"}, options)

	host := NewHost(f.opts.Logger, f.ws)
	p, err := l.Activate(context.Background(), host)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 1, host.Hooks.Count(HookInitialize))

	require.NoError(t, host.Hooks.Run(context.Background(), HookInitialize))
	assert.Contains(t, f.logs.String(), "applying demo level 3")
	assert.Contains(t, f.logs.String(), "hello demo-user")
	assert.Contains(t, f.logs.String(), "Loaded rush plugin from")
}

func TestLoader_HookErrorsPropagate(t *testing.T) {
	f := newFixture(t, func(b *testfx.WorkspaceBuilder) {
		b.WithPluginOptions("demo.json", `{"name": "demo-user", "fail": true}`)
	})
	l := f.loader("demo", "demo.json")
	require.NoError(t, l.Update(context.Background()))

	host := NewHost(f.opts.Logger, f.ws)
	_, err := l.Activate(context.Background(), host)
	require.NoError(t, err)

	err = host.Hooks.Run(context.Background(), HookInitialize)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initialize refused")
}

func TestLoader_Options(t *testing.T) {
	tests := []struct {
		name        string
		optionsFile string
		content     string
		wantKind    rerrors.Kind
		want        map[string]any
	}{
		{name: "no options file configured", want: map[string]any{}},
		{name: "options file missing", optionsFile: "absent.json", wantKind: rerrors.ErrOptionsFileNotFound},
		{name: "options fail schema", optionsFile: "demo.json", content: `{"name": 7}`, wantKind: rerrors.ErrOptionsValidation},
		{name: "options with comments", optionsFile: "demo.json", content: `{"name": "x", /* why not */ "fail": false}`,
			want: map[string]any{"name": "x", "fail": false}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, func(b *testfx.WorkspaceBuilder) {
				if tc.content != "" {
					b.WithPluginOptions(tc.optionsFile, tc.content)
				}
			})
			l := f.loader("demo", tc.optionsFile)
			require.NoError(t, l.Update(context.Background()))

			options, err := l.Options()
			if tc.wantKind != "" {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tc.wantKind), "got %v", err)
				if tc.wantKind == rerrors.ErrOptionsFileNotFound {
					assert.Contains(t, err.Error(), "optionsJsonFile does not exist at ")
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, options)
		})
	}
}

func TestLoader_ContractFailures(t *testing.T) {
	tests := []struct {
		plugin   string
		wantKind rerrors.Kind
	}{
		{"no-apply", rerrors.ErrInvalidPlugin},
		{"null-export", rerrors.ErrPluginLoad},
		{"escape", rerrors.ErrPluginLoad},
	}
	for _, tc := range tests {
		t.Run(tc.plugin, func(t *testing.T) {
			f := newFixture(t, nil)
			l := f.loader(tc.plugin, "")
			require.NoError(t, l.Update(context.Background()))

			p, err := l.Load(context.Background())
			require.Error(t, err)
			assert.Nil(t, p)
			assert.True(t, errors.Is(err, tc.wantKind), "got %v", err)
		})
	}
}

func TestLoader_RawExport(t *testing.T) {
	f := newFixture(t, nil)
	l := f.loader("raw-export", "")
	require.NoError(t, l.Update(context.Background()))
	p, err := l.Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, p.Apply(NewHost(f.opts.Logger, f.ws), l.Configuration(), map[string]any{}))
}

type notAPlugin struct{}

func TestLoader_NativePlugin(t *testing.T) {
	f := newFixture(t, nil)
	var applied Configuration
	require.NoError(t, f.opts.Native.Register(demoPackage, "lib/native.js", func(options map[string]any) (any, error) {
		return PluginFunc(func(host *Host, cfg Configuration, options map[string]any) error {
			applied = cfg
			return nil
		}), nil
	}))

	l := f.loader("native", "")
	require.NoError(t, l.Update(context.Background()))
	_, err := l.Activate(context.Background(), NewHost(f.opts.Logger, f.ws))
	require.NoError(t, err)
	assert.Equal(t, "native", applied.PluginName)

	require.NoError(t, f.opts.Native.Unregister(demoPackage, "lib/native.js"))
	require.NoError(t, f.opts.Native.Register(demoPackage, "./lib/native.js", func(map[string]any) (any, error) {
		return notAPlugin{}, nil
	}))
	p, err := f.loader("native", "").Load(context.Background())
	assert.Nil(t, p)
	assert.True(t, errors.Is(err, rerrors.ErrInvalidPlugin))
}
