// Package modules wires the concrete processing modules into the chain
// through an explicit name-to-factory registry. There is no dynamic
// discovery; a module exists here or it does not load.
package modules

import (
	"log/slog"

	"github.com/deforce/multichat/internal/bus"
	"github.com/deforce/multichat/internal/modules/blacklist"
	"github.com/deforce/multichat/internal/modules/replacer"
)

// Factory builds a module from its configuration directory, returning the
// module and its chain priority.
type Factory func(confDir string) (bus.Module, int, error)

var registry = map[string]Factory{
	blacklist.Name: blacklist.New,
	replacer.Name:  replacer.New,
}

// Known reports whether a module name has a registered factory.
func Known(name string) bool {
	_, ok := registry[name]
	return ok
}

// Load instantiates the enabled modules and registers them on the chain. A
// module that fails to load is excluded and logged; the remaining modules
// keep their relative order.
func Load(chain *bus.Chain, confDir string, enabled []string) {
	for _, name := range enabled {
		factory, ok := registry[name]
		if !ok {
			slog.Error("Unknown module requested", "module", name)
			continue
		}
		mod, priority, err := factory(confDir)
		if err != nil {
			slog.Error("Unable to load module", "module", name, "error", err)
			continue
		}
		chain.Register(mod, priority)
		slog.Info("Module loaded", "module", name, "priority", priority)
	}
}
