// Package operation defines the contract between the engine and the concrete
// processing steps it runs.
//
// An Operation publishes static Metadata (ports, parameters, category and
// spatial extent), can validate a node configuration, and executes against
// an ExecutionContext. The engine never looks inside an operation's
// algorithm; it only routes values in and out and decides, based on the
// declared SpatialExtent, whether an image may be processed tile by tile.
package operation
