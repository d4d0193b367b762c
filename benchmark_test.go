package hull

import (
	"testing"
)

// Benchmark registration (plan compilation).
func BenchmarkRegister_Singleton(b *testing.B) {
	for i := 0; i < b.N; i++ {
		c := New()
		_ = Singleton[testLogger](c, newConsoleLogger)
	}
}

func BenchmarkRegister_WithDependencies(b *testing.B) {
	for i := 0; i < b.N; i++ {
		c := New()
		_ = Transient[testService](c, newServiceImpl)
	}
}

func newBenchContainer(b *testing.B, service Lifetime) *Container {
	b.Helper()

	c := New()
	if err := Singleton[testLogger](c, newConsoleLogger); err != nil {
		b.Fatal(err)
	}
	if err := Register[testService](c, service, newServiceImpl); err != nil {
		b.Fatal(err)
	}

	// Warm up cache
	if _, err := Get[testService](c); err != nil {
		b.Fatal(err)
	}

	return c
}

// Benchmark resolution.
func BenchmarkGet_Singleton_Cached(b *testing.B) {
	c := newBenchContainer(b, LifetimeSingleton)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Get[testService](c)
	}
}

func BenchmarkGet_Transient(b *testing.B) {
	c := newBenchContainer(b, LifetimeTransient)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Get[testService](c)
	}
}

func BenchmarkGet_AlwaysUnique(b *testing.B) {
	c := newBenchContainer(b, LifetimeAlwaysUnique)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Get[testService](c)
	}
}

func BenchmarkGet_DeepGraph(b *testing.B) {
	c := New()
	_ = Transient[testB](c, newBImpl)
	_ = AlwaysUnique[testA](c, newAImpl)
	_ = AlwaysUnique[*pair](c, newPair)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Get[*pair](c)
		_, _ = Get[testA](c)
	}
}

func BenchmarkGet_WithMiddleware(b *testing.B) {
	c := New(WithMiddleware(&FuncMiddleware{}))
	_ = Singleton[testLogger](c, newConsoleLogger)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Get[testLogger](c)
	}
}

// Benchmark concurrent resolution.
func BenchmarkGet_Singleton_Parallel(b *testing.B) {
	c := newBenchContainer(b, LifetimeSingleton)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = Get[testService](c)
		}
	})
}

func BenchmarkGet_Transient_Parallel(b *testing.B) {
	c := newBenchContainer(b, LifetimeTransient)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = Get[testService](c)
		}
	})
}

// Baseline: constructing the same graph by hand.
func BenchmarkNative_Transient(b *testing.B) {
	logger := newConsoleLogger()

	for i := 0; i < b.N; i++ {
		_ = newServiceImpl(logger)
	}
}
