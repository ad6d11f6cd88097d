// Package topology computes execution orders over a graph.
//
// # What It Provides
//
//   - Order: a topological order using Kahn's algorithm over in-degree. Ties
//     are broken by node insertion order, so two calls on an unchanged graph
//     return the same sequence.
//   - Batches: nodes grouped by dependency depth. A source has depth 0 and
//     every other node has depth 1 + max(depth of its predecessors). For every
//     connection a→b, batch(a) < batch(b).
//   - ConnectedSubgraphs: the direction-ignoring connectivity partition, used
//     to report disconnected islands.
//   - ReadyToExecute, CriticalPathLength, HasCycle: helpers for schedulers and
//     validation.
//
// # Relationship with Other Components
//
//   - **Graph:** read through its query API only; this package never mutates.
//   - **Engine:** runs nodes in Order when sequential and per Batch when
//     parallel, with a barrier between batches.
//   - **Validation:** uses HasCycle and ConnectedSubgraphs in the structural
//     stage.
package topology
