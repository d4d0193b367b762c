package hull

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// lazyHandle is implemented by *Lazy[T]. The constructor compiler uses it to
// recognise lazy parameters without knowing T.
type lazyHandle interface {
	capability() reflect.Type
	bind(c *Container)
}

// Lazy wraps a dependency that is resolved on first access.
// Declare a constructor parameter as *hull.Lazy[T] to receive one. Lazy edges
// are ignored by cycle detection, so they can break a construction cycle.
//
// Get runs its own top-level resolution: Transient instances it produces are
// not shared with the graph that received the handle. Do not call Get from the
// constructor that received the handle when the target leads back to a
// singleton still being built; that singleton's entry is locked until the
// constructor returns.
type Lazy[T any] struct {
	container *Container
	once      sync.Once
	value     T
	err       error
	resolved  atomic.Bool
}

// NewLazy creates a lazy handle bound to c.
func NewLazy[T any](c *Container) *Lazy[T] {
	return &Lazy[T]{container: c}
}

func (l *Lazy[T]) capability() reflect.Type {
	return typeOf[T]()
}

func (l *Lazy[T]) bind(c *Container) {
	l.container = c
}

// Get resolves the dependency and returns it.
// The resolution happens only once; subsequent calls return the cached result.
func (l *Lazy[T]) Get() (T, error) {
	l.once.Do(func() {
		if l.container == nil {
			l.err = fmt.Errorf("lazy %s: no container bound", typeName(typeOf[T]()))
			return
		}

		l.value, l.err = Get[T](l.container)
		l.resolved.Store(true)
	})

	return l.value, l.err
}

// MustGet resolves the dependency and returns it, panicking on error.
func (l *Lazy[T]) MustGet() T {
	value, err := l.Get()
	if err != nil {
		panic(fmt.Sprintf("lazy dependency %s failed: %v", typeName(typeOf[T]()), err))
	}

	return value
}

// IsResolved returns true once Get has completed.
func (l *Lazy[T]) IsResolved() bool {
	return l.resolved.Load()
}

// newLazyValue allocates a *Lazy[T] for a parameter of type ptrType and binds it to c.
func newLazyValue(ptrType reflect.Type, c *Container) reflect.Value {
	v := reflect.New(ptrType.Elem())
	v.Interface().(lazyHandle).bind(c)

	return v
}
