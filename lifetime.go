package hull

import (
	"fmt"
	"strings"
)

// Lifetime is the caching policy applied to a binding.
type Lifetime uint8

const (
	// LifetimeAlwaysUnique builds a new instance on every resolution. Nothing is cached.
	LifetimeAlwaysUnique Lifetime = iota

	// LifetimeTransient builds one instance per top-level resolution and shares it
	// across that resolution's graph.
	LifetimeTransient

	// LifetimeSingleton builds one instance for the lifetime of the container.
	LifetimeSingleton
)

// String returns the lower-case name of the lifetime.
func (l Lifetime) String() string {
	switch l {
	case LifetimeAlwaysUnique:
		return "always_unique"
	case LifetimeTransient:
		return "transient"
	case LifetimeSingleton:
		return "singleton"
	default:
		return fmt.Sprintf("lifetime(%d)", uint8(l))
	}
}

func (l Lifetime) valid() bool {
	return l <= LifetimeSingleton
}

// ParseLifetime parses the names produced by String. Matching is case-insensitive
// and accepts "unique" and "always-unique" as spellings of always_unique.
func ParseLifetime(s string) (Lifetime, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "always_unique", "always-unique", "alwaysunique", "unique":
		return LifetimeAlwaysUnique, nil
	case "transient":
		return LifetimeTransient, nil
	case "singleton":
		return LifetimeSingleton, nil
	default:
		return 0, fmt.Errorf("unknown lifetime %q", s)
	}
}
