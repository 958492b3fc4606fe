package plugin

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testfx "github.com/jeremymeng/rushstack/internal/testing"
)

func loadScript(t *testing.T, src string) Module {
	t.Helper()
	root := t.TempDir()
	entry := filepath.Join(root, "lib", "index.js")
	testfx.WriteFile(t, entry, src)
	module, err := NewScriptLoader().Load(context.Background(), ModuleRequest{
		PackageName:   "script-test",
		PackageFolder: root,
		EntryPoint:    "lib/index.js",
		Path:          entry,
	})
	require.NoError(t, err)
	return module
}

func TestScriptModule_NewStopsWhenContextDone(t *testing.T) {
	module := loadScript(t, `
module.exports = class Spinner {
  constructor(options) {
    if (options.spin) {
      for (;;) {}
    }
  }
  apply() {}
};
`)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := module.New(ctx, map[string]any{"spin": true})
	require.Error(t, err)
	var interrupted *goja.InterruptedError
	assert.ErrorAs(t, err, &interrupted)

	// The runtime stays usable once the interrupt has been delivered.
	instance, err := module.New(context.Background(), map[string]any{"spin": false})
	require.NoError(t, err)
	_, ok := asPlugin(instance)
	assert.True(t, ok)
}
