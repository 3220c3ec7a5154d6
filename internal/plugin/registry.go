package plugin

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jakoblorz/npm-clean/internal/detector"
	"github.com/jakoblorz/npm-clean/internal/logger"
)

// ErrUnknownPlugin is returned when a plugin name is not in the catalog.
var ErrUnknownPlugin = errors.New("unknown plugin")

// Factory creates a plugin instance.
type Factory func(log logger.Logger) Plugin

// catalog lists the plugins compiled into the binary.
var catalog = map[string]Factory{
	ExamplePluginName: func(log logger.Logger) Plugin { return NewExamplePlugin(log) },
}

// Available returns the names of all compiled-in plugins, sorted.
func Available() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Registry holds the initialized plugins of a run. It is built before
// scanning and read-only afterwards.
type Registry struct {
	plugins []Plugin
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Enable instantiates the catalog plugins by name and registers them.
func (r *Registry) Enable(log logger.Logger, names ...string) error {
	for _, name := range names {
		factory, ok := catalog[name]
		if !ok {
			return fmt.Errorf("%w: %s (available: %v)", ErrUnknownPlugin, name, Available())
		}
		if err := r.Register(factory(log)); err != nil {
			return err
		}
	}
	return nil
}

// Register initializes p and adds it to the registry. A plugin whose name is
// already registered is ignored.
func (r *Registry) Register(p Plugin) error {
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return nil
		}
	}
	if err := p.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize plugin %s: %w", p.Name(), err)
	}
	r.plugins = append(r.plugins, p)
	return nil
}

// Plugins returns the registered plugins in registration order.
func (r *Registry) Plugins() []Plugin {
	if r == nil {
		return nil
	}
	return append([]Plugin(nil), r.plugins...)
}

// Detectors collects the detectors contributed by every plugin.
func (r *Registry) Detectors() []detector.Detector {
	if r == nil {
		return nil
	}
	var detectors []detector.Detector
	for _, p := range r.plugins {
		detectors = append(detectors, p.Detectors()...)
	}
	return detectors
}

// Run delivers hook to every plugin. A failing or panicking plugin does not
// prevent the others from running; its error is returned for the caller to
// log.
func (r *Registry) Run(hook HookType, hc HookContext) []error {
	if r == nil {
		return nil
	}
	var errs []error
	for _, p := range r.plugins {
		if err := runHook(p, hook, hc); err != nil {
			errs = append(errs, fmt.Errorf("plugin %s: %s hook failed: %w", p.Name(), hook, err))
		}
	}
	return errs
}

func runHook(p Plugin, hook HookType, hc HookContext) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return p.OnHook(hook, hc)
}
