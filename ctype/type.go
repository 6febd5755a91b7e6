package ctype

import (
	"strconv"
	"strings"
)

// Type is a parsed C type expression. The set of implementations is closed:
// Primitive, Pointer, Array, Named, Void and Variadic.
type Type interface {
	String() string
	isType()
}

// Primitive is a scalar atom.
type Primitive struct {
	Atom Atom
}

// Pointer is an indirection to Elem.
type Pointer struct {
	Elem Type
}

// Array is a fixed-size array of Len elements.
type Array struct {
	Elem Type
	Len  uint32
}

// Named refers to a struct, alias, callback or configured atom alias by name.
// What it denotes is decided by the registry.
type Named struct {
	Name string
}

// Void is the void type. It only appears as a return type or behind a pointer.
type Void struct{}

// Variadic is the "..." parameter marker.
type Variadic struct{}

func (Primitive) isType() {}
func (Pointer) isType()   {}
func (Array) isType()     {}
func (Named) isType()     {}
func (Void) isType()      {}
func (Variadic) isType()  {}

func (p Primitive) String() string { return p.Atom.String() }

func (p Pointer) String() string {
	inner := p.Elem.String()
	if strings.HasSuffix(inner, "*") {
		return inner + "*"
	}
	return inner + " *"
}

func (a Array) String() string {
	// Arrays of arrays keep C's order: T[outer][inner].
	base, dims := Type(a), ""
	for {
		arr, ok := base.(Array)
		if !ok {
			break
		}
		dims += "[" + strconv.FormatUint(uint64(arr.Len), 10) + "]"
		base = arr.Elem
	}
	return base.String() + dims
}

func (n Named) String() string  { return n.Name }
func (Void) String() string     { return "void" }
func (Variadic) String() string { return "..." }

// IsCString reports whether t is a pointer to char, the C spelling of a
// null-terminated string.
func IsCString(t Type) bool {
	p, ok := t.(Pointer)
	if !ok {
		return false
	}
	prim, ok := p.Elem.(Primitive)
	return ok && isCharSpelled(prim)
}

// isCharSpelled keeps unsigned char * as a byte pointer; only char and
// signed char pointers are strings.
func isCharSpelled(p Primitive) bool {
	return p.Atom == AtomChar || p.Atom == AtomSChar
}

// IsCharArray reports whether t is char[N], which holds inline text.
func IsCharArray(t Type) bool {
	a, ok := t.(Array)
	if !ok {
		return false
	}
	prim, ok := a.Elem.(Primitive)
	return ok && isCharSpelled(prim)
}
