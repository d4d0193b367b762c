package hull

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type (
	nodeA struct{ n int }
	nodeB struct{ n int }
	nodeC struct{ n int }
	nodeD struct{ n int }
)

var (
	typeA = TypeOf[nodeA]()
	typeB = TypeOf[nodeB]()
	typeC = TypeOf[nodeC]()
	typeD = TypeOf[nodeD]()
)

func newTestGraph() *dependencyGraph {
	return &dependencyGraph{nodes: make(map[reflect.Type]*node)}
}

func TestDependencyGraph_TopologicalSort(t *testing.T) {
	g := newTestGraph()
	g.addNode(typeA, nil)
	g.addNode(typeB, []reflect.Type{typeA})
	g.addNode(typeC, []reflect.Type{typeB})

	order, err := g.topologicalSort()
	require.NoError(t, err)
	assert.Equal(t, []reflect.Type{typeA, typeB, typeC}, order)
}

func TestDependencyGraph_TopologicalSort_RegistrationOrderIndependent(t *testing.T) {
	g := newTestGraph()
	g.addNode(typeC, []reflect.Type{typeB})
	g.addNode(typeB, []reflect.Type{typeA})
	g.addNode(typeA, nil)

	order, err := g.topologicalSort()
	require.NoError(t, err)
	assert.Equal(t, []reflect.Type{typeA, typeB, typeC}, order)
}

func TestDependencyGraph_Diamond(t *testing.T) {
	g := newTestGraph()
	g.addNode(typeA, nil)
	g.addNode(typeB, []reflect.Type{typeA})
	g.addNode(typeC, []reflect.Type{typeA})
	g.addNode(typeD, []reflect.Type{typeB, typeC})

	order, err := g.topologicalSort()
	require.NoError(t, err)
	require.Len(t, order, 4)

	pos := make(map[reflect.Type]int, len(order))
	for i, capability := range order {
		pos[capability] = i
	}

	assert.Less(t, pos[typeA], pos[typeB])
	assert.Less(t, pos[typeA], pos[typeC])
	assert.Less(t, pos[typeB], pos[typeD])
	assert.Less(t, pos[typeC], pos[typeD])

	for capability, err := range g.analyze() {
		assert.NoError(t, err, "capability %s", capability)
	}
}

func TestDependencyGraph_Cycle(t *testing.T) {
	g := newTestGraph()
	g.addNode(typeA, []reflect.Type{typeB})
	g.addNode(typeB, []reflect.Type{typeC})
	g.addNode(typeC, []reflect.Type{typeA})

	_, err := g.topologicalSort()
	require.Error(t, err)

	var cyc *CyclicDependencyError
	require.ErrorAs(t, err, &cyc)
	assert.Equal(t, []reflect.Type{typeA, typeB, typeC, typeA}, cyc.Path)
	assert.Contains(t, err.Error(), "hull.nodeA -> hull.nodeB -> hull.nodeC -> hull.nodeA")
}

func TestDependencyGraph_SelfReference(t *testing.T) {
	g := newTestGraph()
	g.addNode(typeA, []reflect.Type{typeA})

	results := g.analyze()

	var cyc *CyclicDependencyError
	require.ErrorAs(t, results[typeA], &cyc)
	assert.Equal(t, []reflect.Type{typeA, typeA}, cyc.Path)
}

func TestDependencyGraph_DependentOfCycleFails(t *testing.T) {
	g := newTestGraph()
	g.addNode(typeA, []reflect.Type{typeB})
	g.addNode(typeB, []reflect.Type{typeA})
	g.addNode(typeC, []reflect.Type{typeA})
	g.addNode(typeD, nil)

	results := g.analyze()

	assert.ErrorIs(t, results[typeA], ErrCyclicDependency)
	assert.ErrorIs(t, results[typeB], ErrCyclicDependency)
	assert.ErrorIs(t, results[typeC], ErrCyclicDependency)
	assert.NoError(t, results[typeD])
}

func TestDependencyGraph_MissingDependency(t *testing.T) {
	g := newTestGraph()
	g.addNode(typeA, []reflect.Type{typeB})
	g.addNode(typeC, []reflect.Type{typeA})

	results := g.analyze()

	var unreg *UnregisteredCapabilityError
	require.ErrorAs(t, results[typeA], &unreg)
	assert.Equal(t, typeB, unreg.Capability)
	assert.Equal(t, typeA, unreg.Requester)

	// The transitive dependent reports the same root cause
	assert.Same(t, results[typeA], results[typeC])
}

func TestDependencyGraph_FromBindings(t *testing.T) {
	c := New()
	require.NoError(t, Singleton[nodeA](c, func() nodeA { return nodeA{} }))
	require.NoError(t, Transient[nodeB](c, func(a nodeA, lazy *Lazy[nodeC]) nodeB { return nodeB{} }))
	require.NoError(t, Transient[nodeC](c, func(b nodeB) nodeC { return nodeC{} }))

	order, err := c.InitializationOrder()
	require.NoError(t, err)
	assert.Equal(t, []reflect.Type{typeA, typeB, typeC}, order)
}
