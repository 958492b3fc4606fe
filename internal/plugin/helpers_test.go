package plugin

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeremymeng/rushstack/internal/schema"
	testfx "github.com/jeremymeng/rushstack/internal/testing"
	"github.com/jeremymeng/rushstack/internal/workspace"
)

const (
	demoPackage       = "@acme/rush-plugin-demo"
	demoAutoinstaller = "plugins"
)

const demoManifest = `{
  // comments are allowed
  "plugins": [
    {
      "pluginName": "demo",
      "description": "Greets on initialize",
      "entryPoint": "lib/index.js",
      "optionsSchema": "lib/options.schema.json"
    },
    { "pluginName": "no-apply", "description": "Missing apply", "entryPoint": "lib/noapply.js" },
    { "pluginName": "null-export", "description": "Exports null", "entryPoint": "lib/null.js" },
    { "pluginName": "raw-export", "description": "No default binding", "entryPoint": "lib/raw.js" },
    { "pluginName": "escape", "description": "Requires outside its package", "entryPoint": "lib/escape.js" },
    { "pluginName": "native", "description": "Compiled in", "entryPoint": "lib/native.js" }
  ]
}`

var demoFiles = map[string]string{
	"rush-plugin-manifest.json": demoManifest,
	"lib/helper.js":             `module.exports = { greet: function (name) { return 'hello ' + name; } };`,
	"lib/index.js": `
const helper = require('./helper');
const defaults = require('./defaults.json');

class DemoPlugin {
  constructor(options) {
    this.options = options;
  }
  apply(host, configuration, options) {
    host.logger.info('applying ' + configuration.pluginName + ' level ' + defaults.level);
    host.hooks.tap('initialize', function () {
      if (options.fail) {
        throw new Error('initialize refused');
      }
      host.logger.info(helper.greet(options.name));
    });
  }
}
exports.default = DemoPlugin;
`,
	"lib/defaults.json":       `{"level": 3}`,
	"lib/noapply.js":          `module.exports = class NoApply { constructor(options) { this.options = options; } };`,
	"lib/null.js":             `module.exports = null;`,
	"lib/raw.js":              `module.exports = function Raw(options) { this.apply = function () {}; };`,
	"lib/escape.js":           `module.exports = require('../../../secret');`,
	"lib/options.schema.json": `{"type": "object", "properties": {"name": {"type": "string"}, "fail": {"type": "boolean"}}, "required": ["name"], "additionalProperties": false}`,
}

type fixture struct {
	root string
	ws   *workspace.Workspace
	logs *bytes.Buffer
	opts LoaderOptions
}

func newFixture(t *testing.T, configure func(b *testfx.WorkspaceBuilder)) *fixture {
	t.Helper()
	b := testfx.NewWorkspaceBuilder(t).
		WithProject("app", "apps/app").
		WithPluginPackage(demoAutoinstaller, demoPackage, demoFiles)
	if configure != nil {
		configure(b)
	}
	root := b.Build()
	ws, err := workspace.LoadFromFolder(root)
	require.NoError(t, err)

	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return &fixture{
		root: root,
		ws:   ws,
		logs: logs,
		opts: LoaderOptions{
			Schemas: schema.NewCache(8),
			Native:  NewNativeRegistry(),
			Logger:  logger,
		},
	}
}

func (f *fixture) loader(pluginName, optionsFile string) *Loader {
	return NewLoader(f.ws, Configuration{
		PackageName:         demoPackage,
		PluginName:          pluginName,
		AutoinstallerName:   demoAutoinstaller,
		OptionsJSONFilePath: optionsFile,
	}, f.opts)
}
