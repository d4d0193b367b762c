package hull

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/xraph/go-utils/log"
)

// Middleware provides hooks around each top-level resolution.
// Middleware can be used for logging, metrics, access control, testing, etc.
// Nested dependency resolutions do not pass through middleware.
type Middleware interface {
	// BeforeResolve is called before resolving a capability.
	// Return error to abort resolution.
	BeforeResolve(ctx context.Context, capability reflect.Type) error

	// AfterResolve is called after resolving a capability.
	// Called even if resolution failed (instance is nil and err is set).
	// A non-nil return replaces the result with that error.
	AfterResolve(ctx context.Context, capability reflect.Type, instance any, err error) error
}

// middlewareChain manages multiple middleware.
type middlewareChain struct {
	middleware []Middleware
}

// newMiddlewareChain creates a new middleware chain.
func newMiddlewareChain() *middlewareChain {
	return &middlewareChain{}
}

// add appends middleware to the chain.
func (m *middlewareChain) add(middleware Middleware) {
	if middleware != nil {
		m.middleware = append(m.middleware, middleware)
	}
}

func (m *middlewareChain) empty() bool {
	return len(m.middleware) == 0
}

// beforeResolve calls BeforeResolve on all middleware.
func (m *middlewareChain) beforeResolve(ctx context.Context, capability reflect.Type) error {
	for _, mw := range m.middleware {
		if err := mw.BeforeResolve(ctx, capability); err != nil {
			return err
		}
	}
	return nil
}

// afterResolve calls AfterResolve on all middleware.
func (m *middlewareChain) afterResolve(ctx context.Context, capability reflect.Type, instance any, err error) error {
	for _, mw := range m.middleware {
		if mwErr := mw.AfterResolve(ctx, capability, instance, err); mwErr != nil {
			return mwErr
		}
	}
	return nil
}

// FuncMiddleware wraps functions as Middleware.
type FuncMiddleware struct {
	BeforeResolveFunc func(ctx context.Context, capability reflect.Type) error
	AfterResolveFunc  func(ctx context.Context, capability reflect.Type, instance any, err error) error
}

// BeforeResolve implements Middleware.
func (f *FuncMiddleware) BeforeResolve(ctx context.Context, capability reflect.Type) error {
	if f.BeforeResolveFunc != nil {
		return f.BeforeResolveFunc(ctx, capability)
	}
	return nil
}

// AfterResolve implements Middleware.
func (f *FuncMiddleware) AfterResolve(ctx context.Context, capability reflect.Type, instance any, err error) error {
	if f.AfterResolveFunc != nil {
		return f.AfterResolveFunc(ctx, capability, instance, err)
	}
	return nil
}

type startTimeKey struct{}

// ResolveStartTime returns the time the current top-level resolution began.
// It is available to middleware through the context passed to its hooks.
func ResolveStartTime(ctx context.Context) (time.Time, bool) {
	start, ok := ctx.Value(startTimeKey{}).(time.Time)
	return start, ok
}

// loggingMiddleware logs every top-level resolution.
type loggingMiddleware struct {
	logger log.Logger
	now    func() time.Time
}

// LoggingMiddleware returns middleware that logs each top-level resolution
// with its duration. Successful resolutions log at debug, failures at warn.
func LoggingMiddleware(logger log.Logger) Middleware {
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	return &loggingMiddleware{logger: logger, now: time.Now}
}

func (l *loggingMiddleware) BeforeResolve(ctx context.Context, capability reflect.Type) error {
	return nil
}

func (l *loggingMiddleware) AfterResolve(ctx context.Context, capability reflect.Type, instance any, err error) error {
	if err != nil {
		l.logger.Warn("resolution failed",
			log.Stringer("capability", capability),
			log.Error(err),
		)
		return nil
	}

	fields := []log.Field{
		log.Stringer("capability", capability),
		log.String("instance", fmt.Sprintf("%T", instance)),
	}
	if start, ok := ResolveStartTime(ctx); ok {
		fields = append(fields, log.Duration("elapsed", l.now().Sub(start)))
	}
	l.logger.Debug("resolved", fields...)

	return nil
}
