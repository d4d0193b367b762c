package hull

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/xraph/go-utils/log"
)

// Container holds bindings, the singleton cache and resolution middleware.
// Register everything first; the first resolution seals the container.
// A sealed container is safe for concurrent use.
type Container struct {
	registry   *registry
	singletons *singletonCache
	middleware *middlewareChain
	logger     log.Logger
	duplicates DuplicatePolicy
}

// newContainer creates a new container implementation.
func newContainer(opts ...Option) *Container {
	c := &Container{
		registry:   newRegistry(),
		singletons: newSingletonCache(),
		middleware: newMiddlewareChain(),
		logger:     log.NewNoopLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// register compiles a plan from constructors and binds it to capability.
func (c *Container) register(capability reflect.Type, lifetime Lifetime, constructors []any) error {
	if capability == nil {
		return errInvalidBinding(nil, "capability type is nil")
	}

	if !lifetime.valid() {
		return errInvalidBinding(capability, "unknown "+lifetime.String())
	}

	p, err := compilePlan(capability, constructors)
	if err != nil {
		c.logger.Warn("registration rejected",
			log.Stringer("capability", capability),
			log.Error(err),
		)

		return err
	}

	err = c.registry.register(&binding{
		capability: capability,
		lifetime:   lifetime,
		plan:       p,
	})

	var dup *DuplicateBindingError
	if errors.As(err, &dup) && c.duplicates == IgnoreDuplicates {
		c.logger.Warn("duplicate registration ignored",
			log.Stringer("capability", capability),
			log.Stringer("lifetime", lifetime),
		)

		return nil
	}

	if err != nil {
		return err
	}

	c.logger.Debug("capability registered",
		log.Stringer("capability", capability),
		log.Stringer("implementation", p.ctor.out),
		log.Stringer("lifetime", lifetime),
		log.Int("dependencies", len(p.ctor.params)),
	)

	return nil
}

// Seal closes the container for registration and checks every binding's
// dependency graph. The first resolution seals implicitly; calling Seal is
// only needed to close registration early. It returns the result of Validate.
func (c *Container) Seal() error {
	c.seal()

	return c.Validate()
}

func (c *Container) seal() {
	if !c.registry.seal(c.analyze) {
		return
	}

	c.logger.Debug("container sealed", log.Int("bindings", len(c.registry.bindings)))
}

// analyze records each binding's static graph error. Runs under the
// registry write lock.
func (c *Container) analyze(bindings map[reflect.Type]*binding) {
	ordered := make([]*binding, 0, len(c.registry.order))
	ordered = append(ordered, c.registry.order...)

	results := newDependencyGraph(ordered).analyze()
	for capability, b := range bindings {
		b.graphErr = results[capability]
	}
}

// Sealed reports whether registration is closed.
func (c *Container) Sealed() bool {
	return c.registry.isSealed()
}

// Resolve returns a fully constructed instance of capability.
func (c *Container) Resolve(capability reflect.Type) (any, error) {
	return c.ResolveContext(context.Background(), capability)
}

// ResolveContext is Resolve with a context handed to middleware.
func (c *Container) ResolveContext(ctx context.Context, capability reflect.Type) (any, error) {
	c.seal()

	if c.middleware.empty() {
		return c.resolveRoot(capability)
	}

	ctx = context.WithValue(ctx, startTimeKey{}, time.Now())

	// Call middleware before resolve
	if err := c.middleware.beforeResolve(ctx, capability); err != nil {
		return nil, err
	}

	instance, err := c.resolveRoot(capability)

	// Call middleware after resolve
	if mwErr := c.middleware.afterResolve(ctx, capability, instance, err); mwErr != nil {
		return nil, mwErr
	}

	return instance, err
}

// resolveRoot runs one top-level resolution with a fresh context.
func (c *Container) resolveRoot(capability reflect.Type) (any, error) {
	b, ok := c.registry.lookup(capability)
	if !ok {
		return nil, newUnregisteredCapabilityError(capability, nil)
	}

	// Fail before constructing anything when the graph is known to be broken
	if b.graphErr != nil {
		return nil, b.graphErr
	}

	r := resolution{container: c}

	return r.resolveBinding(b)
}

// Use adds middleware to the container. Middleware is called in the order
// added. It fails with ErrContainerSealed once the container is sealed.
func (c *Container) Use(middleware Middleware) error {
	c.registry.mu.Lock()
	defer c.registry.mu.Unlock()

	if c.registry.sealed {
		return ErrContainerSealed
	}

	c.middleware.add(middleware)

	return nil
}

// Has checks if a capability is registered.
func (c *Container) Has(capability reflect.Type) bool {
	_, ok := c.registry.get(capability)
	return ok
}

func (c *Container) logSingletonCreated(b *binding, instance any) {
	c.logger.Debug("singleton created",
		log.Stringer("capability", b.capability),
		log.String("instance", fmt.Sprintf("%T", instance)),
	)
}
