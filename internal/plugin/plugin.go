// Package plugin resolves, caches and activates workspace plugins.
//
// A plugin package is installed into an autoinstaller folder and ships a
// rush-plugin-manifest.json listing the plugins it provides. Update copies
// that manifest into the workspace's manifest cache; Load reads the cached
// manifest, loads the plugin's entry point and constructs an instance that
// must satisfy Plugin.
package plugin

import (
	"fmt"
)

// Plugin is the capability every loaded plugin provides.
type Plugin interface {
	// Apply registers the plugin's behavior with the host, typically by
	// tapping hooks.
	Apply(host *Host, cfg Configuration, options map[string]any) error
}

// PluginFunc adapts a function to Plugin.
type PluginFunc func(host *Host, cfg Configuration, options map[string]any) error

// Apply calls f.
func (f PluginFunc) Apply(host *Host, cfg Configuration, options map[string]any) error {
	return f(host, cfg, options)
}

// Configuration identifies one plugin within one autoinstaller.
type Configuration struct {
	PackageName         string `json:"packageName"`
	PluginName          string `json:"pluginName"`
	AutoinstallerName   string `json:"autoinstallerName"`
	OptionsJSONFilePath string `json:"optionsJsonFilePath,omitempty"`
}

// Key is the registry key of the configuration.
func (c Configuration) Key() string {
	return c.PackageName + "::" + c.PluginName
}

// String returns a human-readable representation of the configuration.
func (c Configuration) String() string {
	return fmt.Sprintf("%s (%s via %s)", c.PluginName, c.PackageName, c.AutoinstallerName)
}

// Validate checks that the required fields are present.
func (c Configuration) Validate() error {
	if c.PackageName == "" {
		return fmt.Errorf("plugin packageName is required")
	}
	if c.PluginName == "" {
		return fmt.Errorf("plugin pluginName is required")
	}
	if c.AutoinstallerName == "" {
		return fmt.Errorf("plugin autoinstallerName is required")
	}
	return nil
}
