// Package hull is a dependency injection container that compiles constructor
// functions into reusable construction plans.
//
// A capability is a Go type, usually an interface, that consumers depend on.
// Each capability is bound once to a set of candidate constructors and a
// lifetime. The constructor with the most parameters is selected when the
// binding is registered, and its parameters are resolved recursively through
// the container whenever an instance is needed.
//
// Basic usage:
//
//	c := hull.New()
//
//	_ = hull.Singleton[Logger](c, NewConsoleLogger)
//	_ = hull.Transient[Service](c, NewService) // func NewService(l Logger) *ServiceImpl
//
//	svc, err := hull.Get[Service](c)
//
// Lifetimes:
//   - LifetimeAlwaysUnique: a new instance every time the capability is resolved,
//     even several times inside one object graph.
//   - LifetimeTransient: one instance per top-level Get call, shared by the whole
//     graph built by that call.
//   - LifetimeSingleton: one instance for the lifetime of the container.
//
// The container is build-then-freeze: the first resolution seals it and any
// later registration fails with ErrContainerSealed.
package hull

// New creates a new container.
func New(opts ...Option) *Container {
	return newContainer(opts...)
}
