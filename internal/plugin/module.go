package plugin

import (
	"context"
)

// ModuleRequest identifies an entry point to load.
type ModuleRequest struct {
	PackageName   string
	PackageFolder string
	// EntryPoint is relative to PackageFolder, as written in the manifest.
	EntryPoint string
	// Path is the absolute entry point path.
	Path string
}

// Module is a loaded entry point. New constructs a plugin instance from it;
// constructors that run script code stop when ctx is done.
type Module interface {
	New(ctx context.Context, options map[string]any) (any, error)
}

// ModuleLoader loads entry points.
type ModuleLoader interface {
	Load(ctx context.Context, req ModuleRequest) (Module, error)
}

// adaptable is implemented by instances that are not Go plugins themselves
// but can expose one, such as script objects.
type adaptable interface {
	AsPlugin() (Plugin, bool)
}

// asPlugin checks the apply contract on a constructed instance.
func asPlugin(instance any) (Plugin, bool) {
	switch v := instance.(type) {
	case nil:
		return nil, false
	case Plugin:
		return v, true
	case adaptable:
		return v.AsPlugin()
	default:
		return nil, false
	}
}
