// Package ctype models C type expressions as a closed set of Go types.
//
// A spelling from the ABI description is parsed once:
//
//	"const char *"  -> Pointer{Primitive{AtomChar}}
//	"float[4]"      -> Array{Primitive{AtomFloat}, 4}
//	"Vector3 *"     -> Pointer{Named{"Vector3"}}
//	"..."           -> Variadic{}
//
// Consumers switch on the concrete type instead of re-inspecting strings.
package ctype
