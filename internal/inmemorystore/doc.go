// Package inmemorystore holds the mutable state of one engine run: each
// node's status, outputs and error.
//
// # Characteristics
//
//   - **Ephemeral:** created for a single run and discarded afterwards; only
//     cache entries outlive a run.
//   - **Thread-Safe:** backed by sync.Map, so workers of one batch update
//     their own nodes without contending on a global lock.
//   - **Write-Once Outputs:** a node's outputs are stored once, when it
//     completes, and read by every downstream node of later batches.
//
// # Status Transitions
//
// Every node starts Pending. Transition moves a node between statuses
// atomically and only from the expected status, so a node can never be
// started twice or completed after it was skipped.
package inmemorystore
