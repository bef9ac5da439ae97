// Package lower defines the backend's sole upstream interface: a pure,
// per-name-group transform from high-level NIR to the low-level subset the
// codegen package accepts. The transform itself — virtual-call dispatch,
// allocation, type tests — is an external collaborator; this package only
// states its contract and offers a pass-through default for NIR that is
// already fully lowered (as the test fixtures in codegen are).
package lower

import "nirgen/nir"

// Lowerer transforms the definitions belonging to a single top-level name
// group from high-level NIR into the closed low-level subset defined by
// package nir. It must be a pure function of its input: the pipeline may
// invoke it from any goroutine and assumes no shared state between calls.
type Lowerer interface {
	// LowerGroup lowers every Defn whose name shares the top-level name
	// top, returning the replacement (possibly unchanged) set of defns.
	LowerGroup(top nir.Name, defns []nir.Defn) []nir.Defn
}

// Identity is a Lowerer that returns its input unchanged. It is the
// correct choice when the producer has already emitted fully-lowered NIR,
// which is the case for every fixture in this repository's own test
// suite.
type Identity struct{}

// LowerGroup implements Lowerer.
func (Identity) LowerGroup(_ nir.Name, defns []nir.Defn) []nir.Defn {
	return defns
}
