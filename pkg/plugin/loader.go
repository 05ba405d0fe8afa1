package plugin

import (
	"errors"
	"fmt"
	goplugin "plugin"
)

// Loader resolves plugin binaries into Plugin implementations.
type Loader interface {
	Load(path string) (Plugin, error)
}

// GoPluginLoader opens Go plugin shared objects built with
// `go build -buildmode=plugin`.
type GoPluginLoader struct{}

// Load opens the shared object and resolves its exported `Plugin` symbol,
// which may be a Plugin value, a pointer to one, or a constructor.
func (GoPluginLoader) Load(path string) (Plugin, error) {
	if path == "" {
		return nil, errors.New("plugin path cannot be empty")
	}
	so, err := goplugin.Open(path)
	if err != nil {
		return nil, err
	}
	symbol, err := so.Lookup("Plugin")
	if err != nil {
		return nil, err
	}
	return resolveSymbol(symbol)
}

func resolveSymbol(symbol any) (Plugin, error) {
	switch p := symbol.(type) {
	case *Plugin:
		if p == nil || *p == nil {
			return nil, errors.New("plugin symbol is nil")
		}
		return *p, nil
	case Plugin:
		return p, nil
	case func() Plugin:
		if built := p(); built != nil {
			return built, nil
		}
		return nil, errors.New("plugin constructor returned nil")
	default:
		return nil, fmt.Errorf("plugin symbol of type %T does not implement plugin.Plugin", symbol)
	}
}
