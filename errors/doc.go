// Package errors provides structured error types for the binding generator
// and the binding runtime.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type carries the declaration path, the C and Go type
// names involved, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLayout, errors.KindUnknownAtom).
//		Path("Mesh", "vboId").
//		CType("GLuint").
//		Detail("size defaults to 0").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnresolvedType([]string{"Model", "meshes"}, "Mesh3")
//	err := errors.OutOfBounds(addr, 4)
//
// Recoverable generation defects are not returned; they are reported as
// diagnostics and generation continues. All errors implement the standard
// error interface and support errors.Is/As.
package errors
