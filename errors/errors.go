package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseParse   Phase = "parse"   // ABI description decoding
	PhaseConfig  Phase = "config"  // configuration loading
	PhaseResolve Phase = "resolve" // type registry
	PhaseLayout  Phase = "layout"  // size and offset computation
	PhaseMarshal Phase = "marshal" // strategy selection
	PhaseEmit    Phase = "emit"    // code generation
	PhaseRuntime Phase = "runtime" // memory and struct access
	PhaseCall    Phase = "call"    // native function invocation
	PhasePreload Phase = "preload" // file staging
)

// Kind categorizes the error
type Kind string

const (
	KindUnresolvedType Kind = "unresolved_type"
	KindUnknownAtom    Kind = "unknown_atom"
	KindDuplicate      Kind = "duplicate"
	KindInvalidData    Kind = "invalid_data"
	KindInvalidInput   Kind = "invalid_input"
	KindUnsupported    Kind = "unsupported"
	KindNotFound       Kind = "not_found"
	KindNotInitialized Kind = "not_initialized"
	KindOutOfBounds    Kind = "out_of_bounds"
	KindAllocation     Kind = "allocation"
	KindNilPointer     Kind = "nil_pointer"
	KindNotOwner       Kind = "not_owner"
	KindReleased       Kind = "released"
	KindTrap           Kind = "trap"
	KindFetch          Kind = "fetch"
	KindFilesystem     Kind = "filesystem"
	KindMissingExport  Kind = "missing_export"
)

// Error is the structured error type used throughout the generator and the
// binding runtime.
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	GoType string
	CType  string
	Detail string
	Path   []string
}

// Error renders "[phase] kind at path: types - detail (caused by: cause)".
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Phase, e.Kind)
	if len(e.Path) > 0 {
		b.WriteString(" at " + strings.Join(e.Path, "."))
	}

	var types []string
	if e.GoType != "" {
		types = append(types, "Go type "+e.GoType)
	}
	if e.CType != "" {
		types = append(types, "C type "+e.CType)
	}
	sep := ": "
	if len(types) > 0 {
		b.WriteString(sep + strings.Join(types, ", "))
		sep = " - "
	}
	if e.Detail != "" {
		b.WriteString(sep + e.Detail)
	}

	if e.Cause != nil {
		fmt.Fprintf(&b, " (caused by: %v)", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Is forwards to the standard library so callers need a single errors import.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As forwards to the standard library.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the declaration path (struct.field, function.param)
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// CType sets the C type expression
func (b *Builder) CType(t string) *Builder {
	b.err.CType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// UnresolvedType reports a reference to a name that is neither a struct, an
// alias, a callback nor a known atom.
func UnresolvedType(path []string, name string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindUnresolvedType,
		Path:   path,
		CType:  name,
		Detail: fmt.Sprintf("unknown type %q", name),
	}
}

// UnknownAtom reports a type with no entry in the atom table.
func UnknownAtom(phase Phase, path []string, ctype string, fallback string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownAtom,
		Path:   path,
		CType:  ctype,
		Detail: fallback,
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(size uint32, cause error) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes", size),
		Cause:  cause,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, path []string, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Path:   path,
		Detail: what,
	}
}

// OutOfBounds creates an out of bounds memory access error
func OutOfBounds(offset, length uint32) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("memory access out of bounds: offset=%d, length=%d", offset, length),
		Value:  offset,
	}
}

// NilPointer creates a nil pointer error
func NilPointer(phase Phase, path []string, goType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Path:   path,
		GoType: goType,
		Detail: "nil pointer",
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// NotInitialized creates a not-initialized error for a missing collaborator
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}

// MissingExportsError is returned when a module lacks functions the bindings
// were generated for.
type MissingExportsError struct {
	Module  string
	Exports []string
}

// NewMissingExportsError creates an error listing the missing export names.
func NewMissingExportsError(module string, exports []string) *MissingExportsError {
	return &MissingExportsError{
		Module:  module,
		Exports: append([]string(nil), exports...),
	}
}

func (e *MissingExportsError) Error() string {
	if len(e.Exports) == 0 {
		return "[call] missing_export: no exports specified"
	}

	var b strings.Builder
	if e.Module != "" {
		fmt.Fprintf(&b, "module %q is missing %d export(s):", e.Module, len(e.Exports))
	} else {
		fmt.Fprintf(&b, "module is missing %d export(s):", len(e.Exports))
	}
	for _, name := range e.Exports {
		b.WriteString("\n  - ")
		b.WriteString(name)
	}
	return b.String()
}

// Is reports whether target matches this error type
func (e *MissingExportsError) Is(target error) bool {
	_, ok := target.(*MissingExportsError)
	return ok
}
