package graph

import (
	"maps"

	"github.com/specialistvlad/pixelgrid/internal/operation"
	"github.com/specialistvlad/pixelgrid/internal/value"
)

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// ConnectionCount returns the number of connections.
func (g *Graph) ConnectionCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.conns)
}

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	if !ok {
		return nil, false
	}
	return n.clone(), true
}

// NodeIDs returns all node ids in insertion order.
func (g *Graph) NodeIDs() []NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]NodeID, len(g.nodeOrder))
	copy(out, g.nodeOrder)
	return out
}

// Nodes returns copies of all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Node, len(g.nodeOrder))
	for i, id := range g.nodeOrder {
		out[i] = g.nodes[id].clone()
	}
	return out
}

// Connections returns all connections in insertion order.
func (g *Graph) Connections() []Connection {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Connection, len(g.connOrder))
	for i, id := range g.connOrder {
		out[i] = *g.conns[id]
	}
	return out
}

// Connection returns the connection with the given id.
func (g *Graph) Connection(id ConnectionID) (Connection, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	c, ok := g.conns[id]
	if !ok {
		return Connection{}, false
	}
	return *c, true
}

// Incoming returns the connections feeding node, in insertion order.
func (g *Graph) Incoming(node NodeID) []Connection {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []Connection
	for _, id := range g.connOrder {
		if c := g.conns[id]; c.To.Node == node {
			out = append(out, *c)
		}
	}
	return out
}

// Outgoing returns the connections leaving node, in insertion order.
func (g *Graph) Outgoing(node NodeID) []Connection {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Connection, 0, len(g.outgoing[node]))
	for _, id := range g.outgoing[node] {
		out = append(out, *g.conns[id])
	}
	return out
}

// InputConnection returns the connection feeding node's input port.
func (g *Graph) InputConnection(node NodeID, port string) (Connection, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := g.incoming[node][port]
	if !ok {
		return Connection{}, false
	}
	return *g.conns[id], true
}

// Predecessors returns the distinct direct upstream nodes of node.
func (g *Graph) Predecessors(node NodeID) []NodeID {
	var out []NodeID
	seen := make(map[NodeID]bool)
	for _, c := range g.Incoming(node) {
		if !seen[c.From.Node] {
			seen[c.From.Node] = true
			out = append(out, c.From.Node)
		}
	}
	return out
}

// Successors returns the distinct direct downstream nodes of node.
func (g *Graph) Successors(node NodeID) []NodeID {
	var out []NodeID
	seen := make(map[NodeID]bool)
	for _, c := range g.Outgoing(node) {
		if !seen[c.To.Node] {
			seen[c.To.Node] = true
			out = append(out, c.To.Node)
		}
	}
	return out
}

// Downstream returns every node reachable from node, excluding node itself.
func (g *Graph) Downstream(node NodeID) map[NodeID]bool {
	return g.closure(node, g.Successors)
}

// Upstream returns every node from which node is reachable, excluding node itself.
func (g *Graph) Upstream(node NodeID) map[NodeID]bool {
	return g.closure(node, g.Predecessors)
}

func (g *Graph) closure(start NodeID, next func(NodeID) []NodeID) map[NodeID]bool {
	seen := make(map[NodeID]bool)
	stack := []NodeID{start}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, n := range next(cur) {
			if !seen[n] && n != start {
				seen[n] = true
				stack = append(stack, n)
			}
		}
	}
	return seen
}

// IsReachable reports whether to can be reached from from along connections.
func (g *Graph) IsReachable(from, to NodeID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.reachable(from, to)
}

// Sources returns nodes without incoming connections, in insertion order.
func (g *Graph) Sources() []NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []NodeID
	for _, id := range g.nodeOrder {
		if len(g.incoming[id]) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// Sinks returns nodes without outgoing connections, in insertion order.
func (g *Graph) Sinks() []NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []NodeID
	for _, id := range g.nodeOrder {
		if len(g.outgoing[id]) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// Metadata returns a copy of the graph-level metadata.
func (g *Graph) Metadata() map[string]string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return maps.Clone(g.metadata)
}

// OperationOf returns the metadata of the operation a node instantiates.
func (g *Graph) OperationOf(node NodeID) (*operation.Metadata, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[node]
	if !ok {
		return nil, newError(ErrNodeNotFound, node, "", "")
	}
	return g.metaOf(n), nil
}

// ResolvedParameters merges a node's overrides over its operation defaults.
func (g *Graph) ResolvedParameters(node NodeID) (map[string]value.Value, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[node]
	if !ok {
		return nil, newError(ErrNodeNotFound, node, "", "")
	}
	meta := g.metaOf(n)
	out := make(map[string]value.Value, len(meta.Parameters))
	for _, p := range meta.Parameters {
		out[p.Name] = p.Default
	}
	for name, v := range n.Parameters {
		out[name] = v
	}
	return out, nil
}
