package hull

import "reflect"

// Registration holds one binding to be registered with RegisterAll.
type Registration struct {
	Capability   reflect.Type
	Lifetime     Lifetime
	Constructors []any
}

// Bind creates a Registration for capability C.
//
// Example:
//
//	err := hull.RegisterAll(c,
//	    hull.Bind[Logger](hull.LifetimeSingleton, NewConsoleLogger),
//	    hull.Bind[Service](hull.LifetimeTransient, NewService),
//	)
func Bind[C any](lifetime Lifetime, constructors ...any) Registration {
	return Registration{
		Capability:   typeOf[C](),
		Lifetime:     lifetime,
		Constructors: constructors,
	}
}

// RegisterAll registers multiple bindings in a single call.
// Returns the first registration error; bindings before it stay registered.
func RegisterAll(c *Container, registrations ...Registration) error {
	for _, reg := range registrations {
		if err := c.register(reg.Capability, reg.Lifetime, reg.Constructors); err != nil {
			return err
		}
	}
	return nil
}
