package hull

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventBus interface{ Publish(topic string) }

type bus struct {
	handlers *handlerSet
	sent     []string
}

func (b *bus) Publish(topic string) { b.sent = append(b.sent, topic) }

type handlerSet struct {
	bus *Lazy[eventBus]
}

func TestLazy_BreaksCycle(t *testing.T) {
	c := New()
	require.NoError(t, Singleton[eventBus](c, func(h *handlerSet) *bus { return &bus{handlers: h} }))
	require.NoError(t, Singleton[*handlerSet](c, func(b *Lazy[eventBus]) *handlerSet { return &handlerSet{bus: b} }))

	require.NoError(t, c.Seal())

	eb, err := Get[eventBus](c)
	require.NoError(t, err)

	handlers := eb.(*bus).handlers
	require.NotNil(t, handlers)
	assert.False(t, handlers.bus.IsResolved())

	resolved, err := handlers.bus.Get()
	require.NoError(t, err)
	assert.Same(t, eb, resolved)
	assert.True(t, handlers.bus.IsResolved())
}

func TestLazy_NotResolvedUntilGet(t *testing.T) {
	c := New()

	var calls atomic.Int32
	require.NoError(t, Transient[eventBus](c, func() *bus {
		calls.Add(1)
		return &bus{}
	}))
	require.NoError(t, Transient[*handlerSet](c, func(b *Lazy[eventBus]) *handlerSet { return &handlerSet{bus: b} }))

	h, err := Get[*handlerSet](c)
	require.NoError(t, err)
	assert.Equal(t, int32(0), calls.Load())

	first := h.bus.MustGet()
	second := h.bus.MustGet()
	assert.Same(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
}

func TestLazy_MissingCapabilityIsNotAGraphError(t *testing.T) {
	c := New()
	require.NoError(t, Transient[*handlerSet](c, func(b *Lazy[eventBus]) *handlerSet { return &handlerSet{bus: b} }))

	assert.NoError(t, c.Validate())

	h, err := Get[*handlerSet](c)
	require.NoError(t, err)

	_, err = h.bus.Get()
	assert.ErrorIs(t, err, ErrUnregisteredCapability)
	assert.True(t, h.bus.IsResolved())

	assert.Panics(t, func() { h.bus.MustGet() })
}

func TestLazy_Unbound(t *testing.T) {
	var l Lazy[eventBus]

	_, err := l.Get()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no container bound")
	assert.False(t, l.IsResolved())
}

func TestNewLazy(t *testing.T) {
	c := New()
	require.NoError(t, RegisterValue[eventBus](c, &bus{sent: []string{"boot"}}))

	l := NewLazy[eventBus](c)

	eb, err := l.Get()
	require.NoError(t, err)
	assert.Equal(t, []string{"boot"}, eb.(*bus).sent)
}

func TestLazy_InspectReportsLazyDependencies(t *testing.T) {
	c := New()
	require.NoError(t, Transient[*handlerSet](c, func(b *Lazy[eventBus]) *handlerSet { return &handlerSet{bus: b} }))

	info := InspectType[*handlerSet](c)
	assert.Empty(t, info.Dependencies)
	assert.Equal(t, []string{"hull.eventBus"}, info.LazyDependencies)
}
