package hull

import (
	"context"
	"fmt"
	"reflect"
)

// typeOf returns the reflect.Type of T, including interface types.
func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Register binds capability C to the given constructors under lifetime.
// The constructor with the most parameters is used; ties go to the one
// listed first. Each parameter is resolved as a capability of its own.
//
// Example:
//
//	func NewService(logger Logger, repo Repository) *ServiceImpl { ... }
//
//	err := hull.Register[Service](c, hull.LifetimeTransient, NewService)
func Register[C any](c *Container, lifetime Lifetime, constructors ...any) error {
	return c.register(typeOf[C](), lifetime, constructors)
}

// Singleton binds C with LifetimeSingleton.
func Singleton[C any](c *Container, constructors ...any) error {
	return Register[C](c, LifetimeSingleton, constructors...)
}

// Transient binds C with LifetimeTransient.
func Transient[C any](c *Container, constructors ...any) error {
	return Register[C](c, LifetimeTransient, constructors...)
}

// AlwaysUnique binds C with LifetimeAlwaysUnique.
func AlwaysUnique[C any](c *Container, constructors ...any) error {
	return Register[C](c, LifetimeAlwaysUnique, constructors...)
}

// RegisterValue binds C to a pre-built instance (always singleton).
func RegisterValue[C any](c *Container, value C) error {
	return Singleton[C](c, func() C { return value })
}

// Get resolves C and returns the fully constructed graph rooted at it.
// Each call is one top-level resolution: Transient instances are shared
// inside the call and discarded afterwards.
func Get[C any](c *Container) (C, error) {
	return GetContext[C](context.Background(), c)
}

// GetContext is Get with a context handed to middleware.
func GetContext[C any](ctx context.Context, c *Container) (C, error) {
	var zero C

	t := typeOf[C]()

	instance, err := c.ResolveContext(ctx, t)
	if err != nil {
		return zero, err
	}

	if instance == nil {
		return zero, nil
	}

	typed, ok := instance.(C)
	if !ok {
		return zero, errTypeMismatch(t, instance)
	}

	return typed, nil
}

// MustGet resolves or panics - use only during startup.
func MustGet[C any](c *Container) C {
	instance, err := Get[C](c)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %s: %v", typeName(typeOf[C]()), err))
	}

	return instance
}

// Has checks if C is registered.
func Has[C any](c *Container) bool {
	return c.Has(typeOf[C]())
}

// TypeOf returns the capability token for C. It is the key accepted by
// Container.Resolve and Container.Inspect.
func TypeOf[C any]() reflect.Type {
	return typeOf[C]()
}
