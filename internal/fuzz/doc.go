// Package fuzztests houses Go fuzz harnesses for the universe loader and
// the conversion engine. They guard against panics and hangs on arbitrary
// manifests and type expressions, and check that every classification
// keeps the structural result invariants.
//
// Dependencies: internal/universe, internal/conv, internal/testkit.
package fuzztests
