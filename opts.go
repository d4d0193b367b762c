package hull

import "github.com/xraph/go-utils/log"

// Option configures a Container.
type Option func(*Container)

// DuplicatePolicy decides what happens when a capability is registered twice.
type DuplicatePolicy uint8

const (
	// RejectDuplicates fails the second registration with a DuplicateBindingError (default).
	RejectDuplicates DuplicatePolicy = iota

	// IgnoreDuplicates keeps the first binding and silently drops later ones.
	// The dropped registration is logged at warn level.
	IgnoreDuplicates
)

// WithLogger sets the logger used for registration and construction events.
// A nil logger is ignored.
func WithLogger(logger log.Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDuplicatePolicy sets how duplicate registrations are handled.
func WithDuplicatePolicy(policy DuplicatePolicy) Option {
	return func(c *Container) {
		c.duplicates = policy
	}
}

// WithMiddleware installs resolution middleware. Middleware runs in the order given.
func WithMiddleware(middleware ...Middleware) Option {
	return func(c *Container) {
		for _, mw := range middleware {
			c.middleware.add(mw)
		}
	}
}
