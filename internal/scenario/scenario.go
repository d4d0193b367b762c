// Package scenario is the small service graph used to compare hull against
// hand-written construction:
//
//	SomeService
//	├── ValueService ── Logger
//	└── EvenStrategy ── Logger
package scenario

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/xraph/hull"
	"github.com/xraph/hull/internal/bench"
)

// Logger receives diagnostic lines from the services.
type Logger interface {
	Log(text string)
}

// IgnoreLogger discards everything. It only counts what it dropped.
type IgnoreLogger struct {
	discarded atomic.Int64
}

func NewIgnoreLogger() *IgnoreLogger { return &IgnoreLogger{} }

func (l *IgnoreLogger) Log(string) { l.discarded.Add(1) }

// Discarded returns the number of lines dropped so far.
func (l *IgnoreLogger) Discarded() int64 { return l.discarded.Load() }

// ValueService produces the value SomeService reports on.
type ValueService interface {
	Value() int
}

type GetSomeValueService struct {
	logger Logger
}

func NewGetSomeValueService(logger Logger) *GetSomeValueService {
	return &GetSomeValueService{logger: logger}
}

func (s *GetSomeValueService) Value() int {
	s.logger.Log("Returning 12")
	return 12
}

// EvenStrategy decides whether a value is even.
type EvenStrategy interface {
	IsEven(value int) bool
}

type IsValueEvenStrategy struct {
	logger Logger
}

func NewIsValueEvenStrategy(logger Logger) *IsValueEvenStrategy {
	return &IsValueEvenStrategy{logger: logger}
}

func (s *IsValueEvenStrategy) IsEven(value int) bool {
	even := value%2 == 0

	parity := "odd"
	if even {
		parity = "even"
	}
	s.logger.Log(fmt.Sprintf("%d is %s", value, parity))

	return even
}

// SomeService is the root of the graph. It computes its fields on construction.
type SomeService interface {
	SomeValue() int
	SomeValueIsEven() bool
}

type someService struct {
	value int
	even  bool
}

func NewSomeService(values ValueService, strategy EvenStrategy) SomeService {
	s := &someService{value: values.Value()}
	s.even = strategy.IsEven(s.value)
	return s
}

func (s *someService) SomeValue() int        { return s.value }
func (s *someService) SomeValueIsEven() bool { return s.even }

// Factory builds SomeService by hand with a fresh logger each time.
type Factory struct{}

func (Factory) CreateSomeService() SomeService {
	logger := NewIgnoreLogger()
	return NewSomeService(NewGetSomeValueService(logger), NewIsValueEvenStrategy(logger))
}

// Register binds the graph: SomeService and ValueService are transient,
// EvenStrategy and Logger are singletons.
func Register(c *hull.Container) error {
	return hull.RegisterAll(c,
		hull.Bind[SomeService](hull.LifetimeTransient, NewSomeService),
		hull.Bind[ValueService](hull.LifetimeTransient, NewGetSomeValueService),
		hull.Bind[EvenStrategy](hull.LifetimeSingleton, NewIsValueEvenStrategy),
		hull.Bind[Logger](hull.LifetimeSingleton, NewIgnoreLogger),
	)
}

// Cases returns the benchmark cases for the graph. NativeCtor is the
// baseline. c must have been passed to Register: SomeService is resolved once
// up front so a broken container fails here rather than inside the timed loop.
func Cases(c *hull.Container) ([]bench.Case, error) {
	if _, err := hull.Get[SomeService](c); err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}

	factory := Factory{}
	ctx := context.Background()

	return []bench.Case{
		{
			Name: "NativeCtor",
			Fn: func() {
				logger := NewIgnoreLogger()
				_ = NewSomeService(NewGetSomeValueService(logger), NewIsValueEvenStrategy(logger))
			},
			Default: true,
		},
		{
			Name: "SimpleFactory",
			Fn: func() {
				_ = factory.CreateSomeService()
			},
		},
		{
			Name: "HullGet",
			Fn: func() {
				if _, err := hull.Get[SomeService](c); err != nil {
					panic(err)
				}
			},
		},
		{
			Name: "HullGetContext",
			Fn: func() {
				if _, err := hull.GetContext[SomeService](ctx, c); err != nil {
					panic(err)
				}
			},
		},
	}, nil
}
