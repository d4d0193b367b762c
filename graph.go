package hull

import "reflect"

// dependencyGraph is the static view of the registry: one node per binding,
// edges to the capabilities its constructor resolves eagerly. Lazy
// parameters are not edges.
type dependencyGraph struct {
	nodes map[reflect.Type]*node
	order []reflect.Type // Preserve registration order
}

type node struct {
	capability   reflect.Type
	dependencies []reflect.Type
}

// newDependencyGraph builds the graph of the given bindings.
func newDependencyGraph(bindings []*binding) *dependencyGraph {
	g := &dependencyGraph{
		nodes: make(map[reflect.Type]*node, len(bindings)),
		order: make([]reflect.Type, 0, len(bindings)),
	}

	for _, b := range bindings {
		g.addNode(b.capability, b.plan.eagerDependencies())
	}

	return g
}

// addNode adds a node with its dependencies.
func (g *dependencyGraph) addNode(capability reflect.Type, dependencies []reflect.Type) {
	g.nodes[capability] = &node{
		capability:   capability,
		dependencies: dependencies,
	}
	g.order = append(g.order, capability)
}

// analyze walks every node and returns, per capability, the first problem
// reachable from it: a *CyclicDependencyError or an
// *UnregisteredCapabilityError for a missing dependency. Healthy nodes map
// to nil.
func (g *dependencyGraph) analyze() map[reflect.Type]error {
	results := make(map[reflect.Type]error, len(g.nodes))
	onStack := make(map[reflect.Type]bool)
	stack := make([]reflect.Type, 0, 8)

	for _, capability := range g.order {
		g.visit(capability, &stack, onStack, results)
	}

	return results
}

// visit performs DFS traversal.
func (g *dependencyGraph) visit(capability reflect.Type, stack *[]reflect.Type, onStack map[reflect.Type]bool, results map[reflect.Type]error) error {
	if err, done := results[capability]; done {
		return err
	}

	if onStack[capability] {
		// Build the cycle chain for better error message
		start := 0
		for i, t := range *stack {
			if t == capability {
				start = i
				break
			}
		}

		path := make([]reflect.Type, 0, len(*stack)-start+1)
		path = append(path, (*stack)[start:]...)
		path = append(path, capability)

		return newCyclicDependencyError(path)
	}

	n := g.nodes[capability]

	onStack[capability] = true
	*stack = append(*stack, capability)

	var err error
	for _, dep := range n.dependencies {
		if _, registered := g.nodes[dep]; !registered {
			err = newUnregisteredCapabilityError(dep, capability)
			break
		}

		if err = g.visit(dep, stack, onStack, results); err != nil {
			break
		}
	}

	*stack = (*stack)[:len(*stack)-1]
	onStack[capability] = false
	results[capability] = err

	return err
}

// topologicalSort returns capabilities with dependencies before dependents.
// Nodes without dependencies keep their registration order.
// Returns the first cycle or missing dependency found.
func (g *dependencyGraph) topologicalSort() ([]reflect.Type, error) {
	results := g.analyze()

	visited := make(map[reflect.Type]bool, len(g.nodes))
	sorted := make([]reflect.Type, 0, len(g.nodes))

	var place func(reflect.Type)
	place = func(capability reflect.Type) {
		if visited[capability] {
			return
		}
		visited[capability] = true

		for _, dep := range g.nodes[capability].dependencies {
			place(dep)
		}

		sorted = append(sorted, capability)
	}

	for _, capability := range g.order {
		if err := results[capability]; err != nil {
			return nil, err
		}
		place(capability)
	}

	return sorted, nil
}
