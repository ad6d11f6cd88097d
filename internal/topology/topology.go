package topology

import (
	"errors"

	"github.com/specialistvlad/pixelgrid/internal/graph"
)

// ErrCycle is returned when the graph's connections are not acyclic. Graphs
// built through the mutation API never hit it.
var ErrCycle = errors.New("graph contains a cycle")

// Order returns every node in a deterministic topological order.
func Order(g *graph.Graph) ([]graph.NodeID, error) {
	ids := g.NodeIDs()
	indegree := make(map[graph.NodeID]int, len(ids))
	for _, id := range ids {
		indegree[id] = len(g.Predecessors(id))
	}

	// position keeps the tie-break stable by insertion order.
	position := make(map[graph.NodeID]int, len(ids))
	for i, id := range ids {
		position[id] = i
	}

	ready := make([]bool, len(ids))
	for i, id := range ids {
		ready[i] = indegree[id] == 0
	}

	order := make([]graph.NodeID, 0, len(ids))
	for len(order) < len(ids) {
		next := -1
		for i, ok := range ready {
			if ok {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, ErrCycle
		}
		ready[next] = false
		id := ids[next]
		order = append(order, id)

		for _, succ := range g.Successors(id) {
			indegree[succ]--
			if indegree[succ] == 0 {
				ready[position[succ]] = true
			}
		}
	}
	return order, nil
}

// Depths assigns each node its dependency depth.
func Depths(g *graph.Graph) (map[graph.NodeID]int, error) {
	order, err := Order(g)
	if err != nil {
		return nil, err
	}
	depth := make(map[graph.NodeID]int, len(order))
	for _, id := range order {
		d := 0
		for _, p := range g.Predecessors(id) {
			d = max(d, depth[p]+1)
		}
		depth[id] = d
	}
	return depth, nil
}

// Batches groups nodes by depth. Within a batch nodes keep their topological
// order.
func Batches(g *graph.Graph) ([][]graph.NodeID, error) {
	order, err := Order(g)
	if err != nil {
		return nil, err
	}
	depth, err := Depths(g)
	if err != nil {
		return nil, err
	}

	var batches [][]graph.NodeID
	for _, id := range order {
		d := depth[id]
		for len(batches) <= d {
			batches = append(batches, nil)
		}
		batches[d] = append(batches[d], id)
	}
	return batches, nil
}

// CriticalPathLength is the number of nodes on the longest dependency chain,
// which equals the number of batches.
func CriticalPathLength(g *graph.Graph) (int, error) {
	batches, err := Batches(g)
	if err != nil {
		return 0, err
	}
	return len(batches), nil
}

// ConnectedSubgraphs partitions the nodes into weakly connected components.
// Components are ordered by their first node's insertion position.
func ConnectedSubgraphs(g *graph.Graph) [][]graph.NodeID {
	seen := make(map[graph.NodeID]bool)
	var out [][]graph.NodeID

	for _, start := range g.NodeIDs() {
		if seen[start] {
			continue
		}
		var component []graph.NodeID
		stack := []graph.NodeID{start}
		seen[start] = true
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			component = append(component, cur)

			neighbors := append(g.Predecessors(cur), g.Successors(cur)...)
			for _, n := range neighbors {
				if !seen[n] {
					seen[n] = true
					stack = append(stack, n)
				}
			}
		}
		out = append(out, sortByInsertion(g, component))
	}
	return out
}

// ReadyToExecute returns the nodes, in insertion order, that are not yet
// completed and whose predecessors all are.
func ReadyToExecute(g *graph.Graph, completed map[graph.NodeID]bool) []graph.NodeID {
	var out []graph.NodeID
	for _, id := range g.NodeIDs() {
		if completed[id] {
			continue
		}
		ready := true
		for _, p := range g.Predecessors(id) {
			if !completed[p] {
				ready = false
				break
			}
		}
		if ready {
			out = append(out, id)
		}
	}
	return out
}

// HasCycle re-checks acyclicity with a three-color depth-first search.
func HasCycle(g *graph.Graph) bool {
	const (
		white = iota
		grey
		black
	)
	color := make(map[graph.NodeID]int)

	var visit func(id graph.NodeID) bool
	visit = func(id graph.NodeID) bool {
		color[id] = grey
		for _, next := range g.Successors(id) {
			switch color[next] {
			case grey:
				return true
			case white:
				if visit(next) {
					return true
				}
			}
		}
		color[id] = black
		return false
	}

	for _, id := range g.NodeIDs() {
		if color[id] == white && visit(id) {
			return true
		}
	}
	return false
}

func sortByInsertion(g *graph.Graph, ids []graph.NodeID) []graph.NodeID {
	in := make(map[graph.NodeID]bool, len(ids))
	for _, id := range ids {
		in[id] = true
	}
	out := make([]graph.NodeID, 0, len(ids))
	for _, id := range g.NodeIDs() {
		if in[id] {
			out = append(out, id)
		}
	}
	return out
}
