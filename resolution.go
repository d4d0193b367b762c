package hull

import "reflect"

// resolution is the per-call context of a top-level Get. It owns the cache of
// Transient instances built during the call and is never shared between
// goroutines.
type resolution struct {
	container  *Container
	transients map[reflect.Type]any
}

// resolve returns an instance of t according to its binding's lifetime.
// requester is the capability whose constructor needs t, nil at the top level.
func (r *resolution) resolve(t, requester reflect.Type) (any, error) {
	b, ok := r.container.registry.lookup(t)
	if !ok {
		return nil, newUnregisteredCapabilityError(t, requester)
	}

	return r.resolveBinding(b)
}

// resolveBinding applies the lifetime policy of b.
func (r *resolution) resolveBinding(b *binding) (any, error) {
	switch b.lifetime {
	case LifetimeTransient:
		if instance, ok := r.transients[b.capability]; ok {
			return instance, nil
		}

		instance, err := b.plan.build(r)
		if err != nil {
			return nil, err
		}

		if r.transients == nil {
			r.transients = make(map[reflect.Type]any)
		}
		r.transients[b.capability] = instance

		return instance, nil

	case LifetimeSingleton:
		instance, created, err := r.container.singletons.getOrCreate(b.capability, func() (any, error) {
			return b.plan.build(r)
		})
		if created {
			r.container.logSingletonCreated(b, instance)
		}

		return instance, err

	default:
		return b.plan.build(r)
	}
}
