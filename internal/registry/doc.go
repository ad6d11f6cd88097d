// Package registry provides the central "glue" for the operation system.
//
// The Registry maps the string identifiers stored in graphs (e.g. "box_blur")
// to factories that produce the compiled Go operations, and caches each
// operation's metadata so that graph editing and validation never have to
// instantiate anything.
//
// During application startup every Module registers its operations, the
// registry is validated to catch inconsistent metadata early, and then it is
// frozen. A frozen registry is read-only and safe for concurrent use by any
// number of graphs and engines.
package registry
