// Package bench times named cases against each other and reports the
// average cost of one call per case, relative to a baseline.
package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/xraph/go-utils/log"
)

// TimeScale is the unit averages are reported in.
type TimeScale string

const (
	Nanoseconds  TimeScale = "ns"
	Milliseconds TimeScale = "ms"
)

// ParseTimeScale accepts "ns" and "ms" in any case.
func ParseTimeScale(s string) (TimeScale, error) {
	switch TimeScale(strings.ToLower(strings.TrimSpace(s))) {
	case Nanoseconds:
		return Nanoseconds, nil
	case Milliseconds:
		return Milliseconds, nil
	default:
		return "", fmt.Errorf("unknown time scale %q", s)
	}
}

// ErrNoCases is returned by Run when there is nothing to measure.
var ErrNoCases = errors.New("bench: no cases")

// Case is one measured function.
type Case struct {
	Name string
	Fn   func()

	// Default marks the baseline other cases are compared to.
	// Without one, the slowest case is the baseline.
	Default bool
}

// Result is the measurement of one case.
type Result struct {
	Name    string
	Total   time.Duration
	Average float64 // per call, in Unit
	Unit    TimeScale
	Percent float64 // Total relative to the baseline
}

// Runner executes cases.
type Runner struct {
	repetitions int
	scale       TimeScale
	logger      log.Logger
	clock       func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithRepetitions sets how many timed calls each case gets. Values below one
// are raised to one.
func WithRepetitions(n int) Option {
	return func(r *Runner) {
		r.repetitions = max(n, 1)
	}
}

// WithTimeScale sets the reporting unit.
func WithTimeScale(scale TimeScale) Option {
	return func(r *Runner) {
		r.scale = scale
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(logger log.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner returns a Runner doing 1000 repetitions reported in nanoseconds.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		repetitions: 1_000,
		scale:       Nanoseconds,
		logger:      log.NewNoopLogger(),
		clock:       time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run measures every case: one untimed warm-up call, then the configured
// number of timed calls. Results are sorted fastest first. The context is
// checked between cases.
func (r *Runner) Run(ctx context.Context, cases ...Case) ([]Result, error) {
	if len(cases) == 0 {
		return nil, ErrNoCases
	}

	results := make([]Result, 0, len(cases))
	baseline := -1

	for i, c := range cases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if c.Fn == nil {
			return nil, fmt.Errorf("bench: case %q has no function", c.Name)
		}

		total := r.measure(c.Fn)
		results = append(results, Result{
			Name:    c.Name,
			Total:   total,
			Average: r.average(total),
			Unit:    r.scale,
		})

		if c.Default && baseline < 0 {
			baseline = i
		}

		r.logger.Debug("case measured",
			log.String("case", c.Name),
			log.Duration("total", total),
			log.Int("repetitions", r.repetitions),
		)
	}

	var base time.Duration
	if baseline >= 0 {
		base = results[baseline].Total
	} else {
		for _, res := range results {
			base = max(base, res.Total)
		}
	}

	for i := range results {
		if base > 0 {
			results[i].Percent = float64(results[i].Total) / float64(base) * 100
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Total < results[j].Total
	})

	r.logger.Info("benchmark finished",
		log.Int("cases", len(results)),
		log.String("fastest", results[0].Name),
	)

	return results, nil
}

func (r *Runner) measure(fn func()) time.Duration {
	fn() // warm-up

	var total time.Duration
	for i := 0; i < r.repetitions; i++ {
		start := r.clock()
		fn()
		total += r.clock().Sub(start)
	}

	return total
}

func (r *Runner) average(total time.Duration) float64 {
	switch r.scale {
	case Milliseconds:
		return float64(total) / float64(time.Millisecond) / float64(r.repetitions)
	default:
		return float64(total) / float64(r.repetitions)
	}
}

// Report writes one aligned line per result:
//
//	NativeCtor : Average      41.20 ns     100.00%
func Report(w io.Writer, results []Result) error {
	width := 0
	for _, res := range results {
		width = max(width, len(res.Name))
	}

	for _, res := range results {
		if _, err := fmt.Fprintf(w, "%-*s : Average %10.2f %s %10.2f%%\n",
			width, res.Name, res.Average, res.Unit, res.Percent); err != nil {
			return err
		}
	}

	return nil
}
