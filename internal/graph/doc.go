// Package graph implements the mutable processing graph: operation nodes
// joined by typed connections from output ports to input ports.
//
// # Structure
//
// Nodes and connections are stored in an arena keyed by stable handles
// (NodeID, ConnectionID, both UUIDs) instead of nested owning pointers.
// Removing a node or checking reachability is a matter of map lookups, and
// the insertion order of nodes and connections is recorded so that every
// traversal and serialization is deterministic.
//
// # Invariants
//
// After every successful mutation:
//   - the connection set is acyclic,
//   - every input port has at most one incoming connection,
//   - every connection references existing ports on existing nodes,
//   - every NodeID is unique.
//
// Mutations validate first and commit second. A rejected call returns a
// *Error whose Kind is one of the Err* sentinels and leaves the graph exactly
// as it was, which can be verified by comparing serialized documents.
//
// # Types
//
// Connect uses value.Assignable, the same relation the validation pipeline
// applies later, so a connection accepted here is never reported as a type
// error afterwards.
//
// # Serialization
//
// Document is the portable form ({nodes: [{id, operation_id, parameters}],
// connections: [{from: {node, port}, to: {node, port}}]}) shared by the JSON
// and YAML encodings. Loading replays the document through the mutation API.
//
// # Concurrency
//
// A Graph guards itself with a RWMutex, so concurrent readers are safe. The
// engine treats a graph as read-only while it executes; editors that keep
// mutating during a run should execute a Clone.
package graph
