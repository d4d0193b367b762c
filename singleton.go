package hull

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// singletonEntry holds one singleton. The entry mutex serialises construction
// so racing first accesses build at most one instance. A failed construction
// leaves done unset and the next caller tries again.
type singletonEntry struct {
	mu    sync.Mutex
	done  atomic.Bool
	value any
}

// singletonCache manages singleton instances with thread-safe lazy initialization.
type singletonCache struct {
	entries map[reflect.Type]*singletonEntry
	mu      sync.RWMutex
}

// newSingletonCache creates a new singleton cache.
func newSingletonCache() *singletonCache {
	return &singletonCache{
		entries: make(map[reflect.Type]*singletonEntry),
	}
}

// entry returns the entry for t, creating an empty one if needed.
func (sc *singletonCache) entry(t reflect.Type) *singletonEntry {
	// Fast path: check if the entry exists (read lock)
	sc.mu.RLock()
	e, exists := sc.entries[t]
	sc.mu.RUnlock()

	if exists {
		return e
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	// Double-check after acquiring write lock
	if e, exists = sc.entries[t]; !exists {
		e = &singletonEntry{}
		sc.entries[t] = e
	}

	return e
}

// getOrCreate returns the singleton for t, calling create only if no instance
// has been stored yet. created reports whether this call built the instance.
//
// This method is goroutine-safe.
func (sc *singletonCache) getOrCreate(t reflect.Type, create func() (any, error)) (instance any, created bool, err error) {
	e := sc.entry(t)

	if e.done.Load() {
		return e.value, false, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Another goroutine may have finished while we waited
	if e.done.Load() {
		return e.value, false, nil
	}

	value, err := create()
	if err != nil {
		return nil, false, err
	}

	e.value = value
	e.done.Store(true)

	return value, true, nil
}

// has reports whether a singleton for t has been built.
func (sc *singletonCache) has(t reflect.Type) bool {
	sc.mu.RLock()
	e, exists := sc.entries[t]
	sc.mu.RUnlock()

	return exists && e.done.Load()
}
