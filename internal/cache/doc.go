// Package cache stores node outputs keyed by a canonical fingerprint of the
// node, its operation, its parameters and its resolved inputs.
//
// The store is an LRU (hashicorp/golang-lru) bounded by entry count, with a
// second bound on approximate memory enforced by evicting the oldest entries
// after each insert. Every entry carries a time-to-live; an expired entry is
// evicted on access and reported as a miss.
//
// GetOrCompute gives at most one concurrent computation per key. In-flight
// claims live in a sharded map, so unrelated keys never wait on each other.
//
// A Cache is owned by whoever creates it and passed to each engine run;
// there is no package-level instance.
package cache
