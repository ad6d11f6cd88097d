package graph

import (
	"maps"
	"slices"
	"sync"

	"github.com/specialistvlad/pixelgrid/internal/operation"
	"github.com/specialistvlad/pixelgrid/internal/registry"
	"github.com/specialistvlad/pixelgrid/internal/value"
)

// Node is an instance of an operation within a graph.
type Node struct {
	ID          NodeID
	OperationID string
	// Parameters holds only the values overridden on this node; defaults
	// come from the operation's metadata.
	Parameters map[string]value.Value
	Label      string
	Disabled   bool
	// Placement is editor data such as screen position. It is carried
	// through serialization but never interpreted.
	Placement map[string]any
}

// DisplayName returns the label, or the operation id when unlabeled.
func (n *Node) DisplayName() string {
	if n.Label != "" {
		return n.Label
	}
	return n.OperationID
}

func (n *Node) clone() *Node {
	out := *n
	out.Parameters = maps.Clone(n.Parameters)
	out.Placement = maps.Clone(n.Placement)
	return &out
}

// Endpoint names a port on a node.
type Endpoint struct {
	Node NodeID `json:"node" yaml:"node"`
	Port string `json:"port" yaml:"port"`
}

// Connection is a directed edge from an output port to an input port.
type Connection struct {
	ID   ConnectionID
	From Endpoint
	To   Endpoint
}

// Graph is a mutable DAG of operation nodes. Nodes and connections live in
// maps keyed by their ids; the insertion order of both is kept so that every
// traversal is deterministic.
//
// All methods are safe for concurrent use. Executing a graph while it is
// being mutated is not supported; callers run a Clone instead.
type Graph struct {
	mu       sync.RWMutex
	registry *registry.Registry

	nodes     map[NodeID]*Node
	nodeOrder []NodeID

	conns     map[ConnectionID]*Connection
	connOrder []ConnectionID
	// incoming maps a node to its connected input ports.
	incoming map[NodeID]map[string]ConnectionID
	outgoing map[NodeID][]ConnectionID

	metadata map[string]string
}

// New creates an empty graph whose nodes are resolved against reg. The
// registry must be frozen.
func New(reg *registry.Registry) *Graph {
	if !reg.Frozen() {
		panic("graph: registry must be frozen before use")
	}
	return &Graph{
		registry: reg,
		nodes:    make(map[NodeID]*Node),
		conns:    make(map[ConnectionID]*Connection),
		incoming: make(map[NodeID]map[string]ConnectionID),
		outgoing: make(map[NodeID][]ConnectionID),
		metadata: make(map[string]string),
	}
}

// Registry returns the registry the graph resolves operations against.
func (g *Graph) Registry() *registry.Registry { return g.registry }

// AddNode adds an instance of the operation registered as operationID.
func (g *Graph) AddNode(operationID string) (NodeID, error) {
	id := NewNodeID()
	if err := g.AddNodeWithID(id, operationID); err != nil {
		return NodeID{}, err
	}
	return id, nil
}

// AddNodeWithID adds a node with a caller-chosen id. Loaders use it to keep
// ids stable across save and load.
func (g *Graph) AddNodeWithID(id NodeID, operationID string) error {
	if _, ok := g.registry.Metadata(operationID); !ok {
		return newError(ErrOperationNotFound, NodeID{}, "", "'%s'", operationID)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[id]; exists {
		return newError(ErrDuplicateNode, id, "", "")
	}
	g.nodes[id] = &Node{
		ID:          id,
		OperationID: operationID,
		Parameters:  make(map[string]value.Value),
	}
	g.nodeOrder = append(g.nodeOrder, id)
	return nil
}

// RemoveNode deletes a node and every connection touching it.
func (g *Graph) RemoveNode(id NodeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[id]; !ok {
		return newError(ErrNodeNotFound, id, "", "")
	}
	for _, cid := range slices.Clone(g.connOrder) {
		c := g.conns[cid]
		if c.From.Node == id || c.To.Node == id {
			g.removeConnection(cid)
		}
	}
	delete(g.nodes, id)
	delete(g.incoming, id)
	delete(g.outgoing, id)
	g.nodeOrder = slices.DeleteFunc(g.nodeOrder, func(n NodeID) bool { return n == id })
	return nil
}

// Connect adds an edge from src's output port to dst's input port. Every
// check runs before anything is modified, in this order: both nodes exist,
// both ports exist, the port types are assignable, the input is free, and the
// edge would not close a cycle.
func (g *Graph) Connect(src NodeID, srcPort string, dst NodeID, dstPort string) (ConnectionID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	srcNode, ok := g.nodes[src]
	if !ok {
		return ConnectionID{}, newError(ErrNodeNotFound, src, "", "source")
	}
	dstNode, ok := g.nodes[dst]
	if !ok {
		return ConnectionID{}, newError(ErrNodeNotFound, dst, "", "target")
	}

	out, ok := g.metaOf(srcNode).Output(srcPort)
	if !ok {
		return ConnectionID{}, newError(ErrPortNotFound, src, srcPort, "no such output on '%s'", srcNode.OperationID)
	}
	in, ok := g.metaOf(dstNode).Input(dstPort)
	if !ok {
		return ConnectionID{}, newError(ErrPortNotFound, dst, dstPort, "no such input on '%s'", dstNode.OperationID)
	}

	if !value.Assignable(out.Type, in.Type) {
		return ConnectionID{}, newError(ErrTypeMismatch, dst, dstPort, "cannot connect %s to %s", out.Type, in.Type)
	}

	if _, taken := g.incoming[dst][dstPort]; taken {
		return ConnectionID{}, newError(ErrDuplicateConnection, dst, dstPort, "disconnect the existing connection first")
	}

	if src == dst || g.reachable(dst, src) {
		return ConnectionID{}, newError(ErrCycleWouldForm, dst, dstPort, "%s is downstream of %s", srcNode.DisplayName(), dstNode.DisplayName())
	}

	c := &Connection{
		ID:   NewConnectionID(),
		From: Endpoint{Node: src, Port: srcPort},
		To:   Endpoint{Node: dst, Port: dstPort},
	}
	g.conns[c.ID] = c
	g.connOrder = append(g.connOrder, c.ID)
	if g.incoming[dst] == nil {
		g.incoming[dst] = make(map[string]ConnectionID)
	}
	g.incoming[dst][dstPort] = c.ID
	g.outgoing[src] = append(g.outgoing[src], c.ID)
	return c.ID, nil
}

// Disconnect removes a connection.
func (g *Graph) Disconnect(id ConnectionID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.conns[id]; !ok {
		return newError(ErrConnectionNotFound, NodeID{}, "", "%s", id)
	}
	g.removeConnection(id)
	return nil
}

// DisconnectInput removes the connection feeding node's input port, if any.
// It reports whether a connection was removed.
func (g *Graph) DisconnectInput(node NodeID, port string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[node]; !ok {
		return false, newError(ErrNodeNotFound, node, "", "")
	}
	cid, ok := g.incoming[node][port]
	if !ok {
		return false, nil
	}
	g.removeConnection(cid)
	return true, nil
}

func (g *Graph) removeConnection(id ConnectionID) {
	c := g.conns[id]
	delete(g.conns, id)
	delete(g.incoming[c.To.Node], c.To.Port)
	g.outgoing[c.From.Node] = slices.DeleteFunc(g.outgoing[c.From.Node], func(x ConnectionID) bool { return x == id })
	g.connOrder = slices.DeleteFunc(g.connOrder, func(x ConnectionID) bool { return x == id })
}

// SetParameter overrides a parameter on a node. The value must have the
// parameter's type; constraints are checked by validation, not here.
func (g *Graph) SetParameter(node NodeID, name string, v value.Value) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[node]
	if !ok {
		return newError(ErrNodeNotFound, node, "", "")
	}
	def, ok := g.metaOf(n).Parameter(name)
	if !ok {
		return newError(ErrParameterNotFound, node, "", "'%s' on '%s'", name, n.OperationID)
	}
	if !value.Conforms(v, def.Type) {
		return newError(ErrTypeMismatch, node, "", "parameter '%s' expects %s, got %s", name, def.Type, value.TypeOf(v))
	}
	n.Parameters[name] = v
	return nil
}

// ResetParameter drops an override so the default applies again.
func (g *Graph) ResetParameter(node NodeID, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[node]
	if !ok {
		return newError(ErrNodeNotFound, node, "", "")
	}
	delete(n.Parameters, name)
	return nil
}

// SetLabel sets a node's display label.
func (g *Graph) SetLabel(node NodeID, label string) error {
	return g.update(node, func(n *Node) { n.Label = label })
}

// SetDisabled toggles whether the engine skips the node.
func (g *Graph) SetDisabled(node NodeID, disabled bool) error {
	return g.update(node, func(n *Node) { n.Disabled = disabled })
}

// SetPlacement stores opaque editor data on a node.
func (g *Graph) SetPlacement(node NodeID, placement map[string]any) error {
	return g.update(node, func(n *Node) { n.Placement = maps.Clone(placement) })
}

// SetMetadata stores a graph-level key/value pair such as a title.
func (g *Graph) SetMetadata(key, val string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.metadata[key] = val
}

func (g *Graph) update(node NodeID, fn func(n *Node)) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[node]
	if !ok {
		return newError(ErrNodeNotFound, node, "", "")
	}
	fn(n)
	return nil
}

// metaOf never fails: nodes are only created for registered operations and
// the registry is frozen.
func (g *Graph) metaOf(n *Node) *operation.Metadata {
	m, _ := g.registry.Metadata(n.OperationID)
	return m
}

// reachable runs a breadth-first search along outgoing edges. Callers hold
// the lock.
func (g *Graph) reachable(from, to NodeID) bool {
	if from == to {
		return true
	}
	visited := map[NodeID]bool{from: true}
	queue := []NodeID{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, cid := range g.outgoing[cur] {
			next := g.conns[cid].To.Node
			if next == to {
				return true
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

// Clone returns an independent deep copy sharing only the registry and the
// (immutable) parameter values.
func (g *Graph) Clone() *Graph {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := &Graph{
		registry:  g.registry,
		nodes:     make(map[NodeID]*Node, len(g.nodes)),
		nodeOrder: slices.Clone(g.nodeOrder),
		conns:     make(map[ConnectionID]*Connection, len(g.conns)),
		connOrder: slices.Clone(g.connOrder),
		incoming:  make(map[NodeID]map[string]ConnectionID, len(g.incoming)),
		outgoing:  make(map[NodeID][]ConnectionID, len(g.outgoing)),
		metadata:  maps.Clone(g.metadata),
	}
	for id, n := range g.nodes {
		out.nodes[id] = n.clone()
	}
	for id, c := range g.conns {
		cc := *c
		out.conns[id] = &cc
	}
	for id, ports := range g.incoming {
		out.incoming[id] = maps.Clone(ports)
	}
	for id, list := range g.outgoing {
		out.outgoing[id] = slices.Clone(list)
	}
	return out
}
