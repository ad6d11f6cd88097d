// Package value defines the data that flows through a processing graph.
//
// A Value is a tagged union over images, integers, floats, booleans,
// strings, colors, arrays, maps and the absent value. Every port and
// parameter is described by a PortType, and Assignable decides whether a
// source port may feed a target port. The same relation is used when a
// connection is created and when a finished graph is type-checked, so the
// two can never disagree.
package value
