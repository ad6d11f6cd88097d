package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/specialistvlad/pixelgrid/internal/registry"
	"github.com/specialistvlad/pixelgrid/internal/value"
	"gopkg.in/yaml.v3"
)

// FormatVersion is written into every serialized document.
const FormatVersion = "1.0.0"

// Document is the serialized form of a graph, shared by the JSON and YAML
// encodings.
type Document struct {
	Version     string               `json:"version" yaml:"version"`
	Metadata    map[string]string    `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Nodes       []NodeDocument       `json:"nodes" yaml:"nodes"`
	Connections []ConnectionDocument `json:"connections" yaml:"connections"`
}

// NodeDocument is one serialized node. Parameters hold only overrides.
type NodeDocument struct {
	ID          NodeID                 `json:"id" yaml:"id"`
	OperationID string                 `json:"operation_id" yaml:"operation_id"`
	Parameters  map[string]value.Value `json:"parameters" yaml:"parameters"`
	Label       string                 `json:"label,omitempty" yaml:"label,omitempty"`
	Disabled    bool                   `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Placement   map[string]any         `json:"placement,omitempty" yaml:"placement,omitempty"`
}

// ConnectionDocument is one serialized connection.
type ConnectionDocument struct {
	From Endpoint `json:"from" yaml:"from"`
	To   Endpoint `json:"to" yaml:"to"`
}

// Document captures the graph's nodes and connections in insertion order.
func (g *Graph) Document() *Document {
	g.mu.RLock()
	defer g.mu.RUnlock()

	doc := &Document{
		Version:     FormatVersion,
		Nodes:       make([]NodeDocument, 0, len(g.nodeOrder)),
		Connections: make([]ConnectionDocument, 0, len(g.connOrder)),
	}
	if len(g.metadata) > 0 {
		doc.Metadata = maps.Clone(g.metadata)
	}
	for _, id := range g.nodeOrder {
		n := g.nodes[id]
		doc.Nodes = append(doc.Nodes, NodeDocument{
			ID:          n.ID,
			OperationID: n.OperationID,
			Parameters:  maps.Clone(n.Parameters),
			Label:       n.Label,
			Disabled:    n.Disabled,
			Placement:   maps.Clone(n.Placement),
		})
	}
	for _, id := range g.connOrder {
		c := g.conns[id]
		doc.Connections = append(doc.Connections, ConnectionDocument{From: c.From, To: c.To})
	}
	return doc
}

// FromDocument rebuilds a graph through the regular mutation API, so a
// document that violates any graph invariant is rejected.
func FromDocument(reg *registry.Registry, doc *Document) (*Graph, error) {
	if doc.Version != "" && doc.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported graph format version %q", doc.Version)
	}
	g := New(reg)
	for k, v := range doc.Metadata {
		g.SetMetadata(k, v)
	}
	for i, nd := range doc.Nodes {
		id := nd.ID
		if id.IsZero() {
			id = NewNodeID()
		}
		if err := g.AddNodeWithID(id, nd.OperationID); err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		for _, name := range slices.Sorted(maps.Keys(nd.Parameters)) {
			if err := g.SetParameter(id, name, nd.Parameters[name]); err != nil {
				return nil, fmt.Errorf("node %d: %w", i, err)
			}
		}
		if err := g.update(id, func(n *Node) {
			n.Label = nd.Label
			n.Disabled = nd.Disabled
			n.Placement = maps.Clone(nd.Placement)
		}); err != nil {
			return nil, err
		}
	}
	for i, cd := range doc.Connections {
		if _, err := g.Connect(cd.From.Node, cd.From.Port, cd.To.Node, cd.To.Port); err != nil {
			return nil, fmt.Errorf("connection %d: %w", i, err)
		}
	}
	return g, nil
}

// MarshalJSON encodes the graph as its Document.
func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Document())
}

// EncodeJSON writes the graph as indented JSON.
func (g *Graph) EncodeJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(g.Document())
}

// DecodeJSON reads a graph written by EncodeJSON.
func DecodeJSON(reg *registry.Registry, r io.Reader) (*Graph, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode graph JSON: %w", err)
	}
	return FromDocument(reg, &doc)
}

// EncodeYAML writes the graph as YAML.
func (g *Graph) EncodeYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(g.Document()); err != nil {
		return err
	}
	return enc.Close()
}

// DecodeYAML reads a graph written by EncodeYAML.
func DecodeYAML(reg *registry.Registry, r io.Reader) (*Graph, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode graph YAML: %w", err)
	}
	return FromDocument(reg, &doc)
}
