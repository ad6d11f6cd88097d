// Package schema declares the shape of an operation: its input and output
// ports, its parameters, and the constraints those parameters must satisfy.
package schema
