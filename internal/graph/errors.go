package graph

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds of GraphError. Match them with errors.Is.
var (
	ErrNodeNotFound        = errors.New("node not found")
	ErrConnectionNotFound  = errors.New("connection not found")
	ErrPortNotFound        = errors.New("port not found")
	ErrParameterNotFound   = errors.New("parameter not found")
	ErrOperationNotFound   = errors.New("operation not found")
	ErrTypeMismatch        = errors.New("type mismatch")
	ErrDuplicateConnection = errors.New("input already connected")
	ErrCycleWouldForm      = errors.New("connection would form a cycle")
	ErrDuplicateNode       = errors.New("node id already in use")
)

// Error is returned by every rejected mutation. The graph is unchanged when
// an Error is returned.
type Error struct {
	Kind   error
	Node   NodeID
	Port   string
	Detail string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if !e.Node.IsZero() {
		fmt.Fprintf(&b, ": node %s", e.Node)
		if e.Port != "" {
			fmt.Fprintf(&b, " port '%s'", e.Port)
		}
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, node NodeID, port string, format string, args ...any) *Error {
	return &Error{Kind: kind, Node: node, Port: port, Detail: fmt.Sprintf(format, args...)}
}
