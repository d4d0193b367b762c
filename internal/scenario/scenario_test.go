package scenario

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xraph/go-utils/log"

	"github.com/xraph/hull"
	"github.com/xraph/hull/internal/bench"
	"github.com/xraph/hull/internal/dispatch"
)

func newContainer(t *testing.T) *hull.Container {
	t.Helper()

	c := hull.New()
	require.NoError(t, Register(c))
	require.NoError(t, RegisterControllers(c))
	require.NoError(t, c.Seal())

	return c
}

func TestRegister_Lifetimes(t *testing.T) {
	c := newContainer(t)

	s1, err := hull.Get[SomeService](c)
	require.NoError(t, err)
	s2, err := hull.Get[SomeService](c)
	require.NoError(t, err)

	assert.NotSame(t, s1, s2)
	assert.Equal(t, 12, s1.SomeValue())
	assert.True(t, s1.SomeValueIsEven())

	strategy1, err := hull.Get[EvenStrategy](c)
	require.NoError(t, err)
	strategy2, err := hull.Get[EvenStrategy](c)
	require.NoError(t, err)
	assert.Same(t, strategy1, strategy2)

	logger, err := hull.Get[Logger](c)
	require.NoError(t, err)

	// Two services built, each logging once from ValueService and once from
	// EvenStrategy, all into the one singleton logger.
	assert.Equal(t, int64(4), logger.(*IgnoreLogger).Discarded())
}

func TestFactory(t *testing.T) {
	s := Factory{}.CreateSomeService()
	assert.Equal(t, 12, s.SomeValue())
	assert.True(t, s.SomeValueIsEven())
}

func TestIsValueEvenStrategy(t *testing.T) {
	logger := NewIgnoreLogger()
	strategy := NewIsValueEvenStrategy(logger)

	assert.True(t, strategy.IsEven(4))
	assert.False(t, strategy.IsEven(7))
	assert.Equal(t, int64(2), logger.Discarded())
}

func TestCases(t *testing.T) {
	c := newContainer(t)

	cases, err := Cases(c)
	require.NoError(t, err)
	require.Len(t, cases, 4)
	assert.True(t, cases[0].Default)

	results, err := bench.NewRunner(bench.WithRepetitions(10)).Run(context.Background(), cases...)
	require.NoError(t, err)
	require.Len(t, results, 4)

	var buf bytes.Buffer
	require.NoError(t, bench.Report(&buf, results))
	for _, name := range []string{"NativeCtor", "SimpleFactory", "HullGet", "HullGetContext"} {
		assert.Contains(t, buf.String(), name)
	}
}

func TestCases_UnregisteredGraph(t *testing.T) {
	c := hull.New()
	require.NoError(t, RegisterControllers(c))

	cases, err := Cases(c)
	require.Error(t, err)
	assert.ErrorIs(t, err, hull.ErrUnregisteredCapability)
	assert.Nil(t, cases)
}

func TestRandomController(t *testing.T) {
	c := newContainer(t)

	d := dispatch.New(c, log.NewNoopLogger())
	require.NoError(t, Mount(d))

	for i := 0; i < 20; i++ {
		rec := httptest.NewRecorder()
		d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/random/number", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		n, err := strconv.Atoi(rec.Body.String())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 100)
	}

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/random/number", strings.NewReader("7")))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	logger, err := hull.Get[Logger](c)
	require.NoError(t, err)
	assert.Equal(t, int64(1), logger.(*IgnoreLogger).Discarded())
}

func TestRandomController_DistinctPerRequest(t *testing.T) {
	c := newContainer(t)

	a, err := hull.Get[*RandomController](c)
	require.NoError(t, err)
	b, err := hull.Get[*RandomController](c)
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Same(t, a.logger, b.logger)
}
