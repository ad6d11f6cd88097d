package graph

import (
	"fmt"

	"github.com/google/uuid"
)

// NodeID is the stable identity of a node within a graph.
type NodeID uuid.UUID

// ConnectionID is the stable identity of a connection within a graph.
type ConnectionID uuid.UUID

// NewNodeID returns a random NodeID.
func NewNodeID() NodeID { return NodeID(uuid.New()) }

// ParseNodeID parses the canonical UUID form.
func ParseNodeID(s string) (NodeID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return NodeID{}, fmt.Errorf("invalid node id %q: %w", s, err)
	}
	return NodeID(u), nil
}

func (id NodeID) String() string { return uuid.UUID(id).String() }

// IsZero reports whether id is the zero value.
func (id NodeID) IsZero() bool { return id == NodeID{} }

func (id NodeID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *NodeID) UnmarshalText(text []byte) error {
	parsed, err := ParseNodeID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// NewConnectionID returns a random ConnectionID.
func NewConnectionID() ConnectionID { return ConnectionID(uuid.New()) }

func (id ConnectionID) String() string { return uuid.UUID(id).String() }
