package hull

import (
	"reflect"
	"sync"
)

// binding associates a capability with its lifetime and compiled plan.
type binding struct {
	capability reflect.Type
	lifetime   Lifetime
	plan       *plan

	// graphErr is the static result of walking this binding's eager
	// dependency graph, computed when the registry seals.
	graphErr error
}

// registry maps capabilities to bindings. It is written during the
// registration phase and read-only once sealed.
type registry struct {
	bindings map[reflect.Type]*binding
	order    []*binding // registration order
	sealed   bool
	sealOnce sync.Once
	mu       sync.RWMutex
}

// newRegistry creates an empty registry
func newRegistry() *registry {
	return &registry{
		bindings: make(map[reflect.Type]*binding),
	}
}

// register adds a binding. It fails with ErrContainerSealed after sealing and
// with a DuplicateBindingError when the capability is already bound.
func (r *registry) register(b *binding) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return ErrContainerSealed
	}

	if _, exists := r.bindings[b.capability]; exists {
		return newDuplicateBindingError(b.capability)
	}

	r.bindings[b.capability] = b
	r.order = append(r.order, b)

	return nil
}

// seal closes the registry for writes and runs analyze over the final
// binding set exactly once. It reports whether this call did the sealing.
func (r *registry) seal(analyze func(map[reflect.Type]*binding)) bool {
	sealedNow := false

	r.sealOnce.Do(func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		r.sealed = true
		analyze(r.bindings)
		sealedNow = true
	})

	return sealedNow
}

// isSealed reports whether registration is closed.
func (r *registry) isSealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sealed
}

// lookup returns the binding for t without locking. Callers must have sealed
// the registry first; the map is never written after that.
func (r *registry) lookup(t reflect.Type) (*binding, bool) {
	b, ok := r.bindings[t]
	return b, ok
}

// get retrieves a binding under the read lock. Safe before sealing.
func (r *registry) get(t reflect.Type) (*binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bindings[t]

	return b, ok
}

// snapshot returns the bindings in registration order.
func (r *registry) snapshot() []*binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*binding, len(r.order))
	copy(out, r.order)

	return out
}
