// Package api defines the public data model of the weft interpreter:
// tokens, environments, the two program authoring flavors and the
// suspension protocol that unifies them, the error taxonomy, run records,
// and the observer and handler-metadata interfaces the surrounding toolkit
// builds on.
//
// Most applications import the root weft package, which re-exports
// everything here; api exists so lower-level packages (the driver, workers,
// transports) can share these types without cycles.
package api
