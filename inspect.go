package hull

import (
	"reflect"

	"go.uber.org/multierr"
)

// BindingInfo contains diagnostic information about a binding.
type BindingInfo struct {
	Capability     string
	Implementation string
	Lifetime       Lifetime
	Registered     bool
	// Dependencies lists the capabilities resolved before the constructor runs, in parameter order.
	Dependencies []string
	// LazyDependencies lists capabilities received through *Lazy handles.
	LazyDependencies []string
	// Instantiated is true for singletons that have been built.
	Instantiated bool
}

// Inspect returns diagnostic information about a capability.
func (c *Container) Inspect(capability reflect.Type) BindingInfo {
	b, ok := c.registry.get(capability)
	if !ok {
		return BindingInfo{Capability: typeName(capability)}
	}

	return c.describe(b)
}

// InspectType returns diagnostic information about C.
func InspectType[C any](c *Container) BindingInfo {
	return c.Inspect(typeOf[C]())
}

// Bindings returns information about every binding in registration order.
func (c *Container) Bindings() []BindingInfo {
	bindings := c.registry.snapshot()

	infos := make([]BindingInfo, len(bindings))
	for i, b := range bindings {
		infos[i] = c.describe(b)
	}

	return infos
}

// FindByLifetime returns all bindings with a specific lifetime.
func FindByLifetime(c *Container, lifetime Lifetime) []BindingInfo {
	var results []BindingInfo
	for _, info := range c.Bindings() {
		if info.Lifetime == lifetime {
			results = append(results, info)
		}
	}

	return results
}

// Validate walks the dependency graph of every binding and reports each
// missing dependency and cycle. Problems are combined with multierr; use
// multierr.Errors to split them. Validate does not seal the container.
func (c *Container) Validate() error {
	bindings := c.registry.snapshot()
	results := newDependencyGraph(bindings).analyze()

	var (
		err  error
		seen = make(map[string]bool)
	)

	for _, b := range bindings {
		problem := results[b.capability]
		if problem == nil || seen[problem.Error()] {
			continue
		}

		seen[problem.Error()] = true
		err = multierr.Append(err, problem)
	}

	return err
}

// InitializationOrder returns capabilities sorted so that every capability
// appears after the capabilities it depends on eagerly.
func (c *Container) InitializationOrder() ([]reflect.Type, error) {
	return newDependencyGraph(c.registry.snapshot()).topologicalSort()
}

func (c *Container) describe(b *binding) BindingInfo {
	info := BindingInfo{
		Capability:     typeName(b.capability),
		Implementation: typeName(b.plan.ctor.out),
		Lifetime:       b.lifetime,
		Registered:     true,
		Dependencies:   typeNames(b.plan.eagerDependencies()),
	}

	if lazy := b.plan.lazyDependencies(); len(lazy) > 0 {
		info.LazyDependencies = typeNames(lazy)
	}

	if b.lifetime == LifetimeSingleton {
		info.Instantiated = c.singletons.has(b.capability)
	}

	return info
}

func typeNames(types []reflect.Type) []string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = typeName(t)
	}

	return names
}
