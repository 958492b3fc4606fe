package plugin

import (
	"encoding/json"
	"os"

	"github.com/jeremymeng/rushstack/internal/config"
	rerrors "github.com/jeremymeng/rushstack/internal/errors"
	"github.com/jeremymeng/rushstack/internal/workspace"
)

// Manifest describes one plugin provided by a plugin package.
type Manifest struct {
	PluginName    string `json:"pluginName"`
	Description   string `json:"description"`
	EntryPoint    string `json:"entryPoint"`
	OptionsSchema string `json:"optionsSchema,omitempty"`
}

// ManifestDocument is the content of rush-plugin-manifest.json.
type ManifestDocument struct {
	Plugins []Manifest `json:"plugins"`
}

// Find returns the manifest entry for pluginName.
func (d ManifestDocument) Find(pluginName string) (Manifest, bool) {
	for _, m := range d.Plugins {
		if m.PluginName == pluginName {
			return m, true
		}
	}
	return Manifest{}, false
}

func decodeManifest(data []byte) (ManifestDocument, error) {
	var doc ManifestDocument
	std, err := config.StandardizeJSON(data)
	if err != nil {
		return doc, err
	}
	err = json.Unmarshal(std, &doc)
	return doc, err
}

type pluginsFile struct {
	Plugins []Configuration `json:"plugins"`
}

// LoadConfigurations reads the workspace's rush-plugins.json. A missing file
// means no plugins are configured.
func LoadConfigurations(ws *workspace.Workspace) ([]Configuration, error) {
	path := ws.PluginsConfigPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	var doc pluginsFile
	if err := config.ReadJSONFile(path, &doc); err != nil {
		return nil, rerrors.ConfigInvalid(path, err)
	}
	seen := make(map[string]bool, len(doc.Plugins))
	for _, cfg := range doc.Plugins {
		if err := cfg.Validate(); err != nil {
			return nil, rerrors.ConfigInvalid(path, err)
		}
		if seen[cfg.Key()] {
			return nil, rerrors.ConfigInvalid(path,
				rerrors.ValidationError("plugin "+cfg.PluginName+" from "+cfg.PackageName+" is configured more than once"))
		}
		seen[cfg.Key()] = true
	}
	return doc.Plugins, nil
}
