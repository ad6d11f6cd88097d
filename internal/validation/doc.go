// Package validation inspects a finished graph and produces an aggregate
// report of errors and warnings without executing anything.
//
// A Pipeline is an ordered list of Stages. Every stage always runs and only
// appends to the shared Report; no stage can abort the pipeline. Full runs
// Structural, Type, Constraint, Custom and Resource; Minimal runs Structural
// and Type. A report is valid iff it holds no errors.
package validation
