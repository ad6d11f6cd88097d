// Package engine executes a processing graph.
//
// # How It Works
//
// Execute computes an order with the topology package: the plain
// topological order when Settings.Parallel is false, depth batches
// otherwise. Batches run on a bounded errgroup; Wait is the barrier, so
// every node of batch d has finished before any node of batch d+1 starts.
//
// For each node the engine:
//  1. skips it if it is disabled or a predecessor did not complete,
//  2. resolves inputs from upstream outputs or port defaults and merges
//     parameter overrides over defaults,
//  3. consults the cache for deterministic operations,
//  4. routes large images of tileable operations through the chunked
//     processor, or calls Execute directly,
//  5. records the Pending → Running → Completed/Failed/Skipped transition in
//     the run's store and emits an Event.
//
// # Failure Policy
//
// With FailAggregate a failure only skips the nodes that depend on it.
// With FailFast no node starts after the first failure; members of the
// current batch that are already running finish.
//
// # Cancellation
//
// The context is polled between nodes and between tiles. A running node or
// tile is never interrupted. A cancelled run returns its partial Result
// together with an error matching ErrCancelled.
package engine
