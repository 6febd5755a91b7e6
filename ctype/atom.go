package ctype

import "strings"

// Atom is a C scalar type with a fixed place in the size table.
type Atom uint8

const (
	AtomInvalid Atom = iota
	AtomBool
	AtomChar
	AtomSChar
	AtomUChar
	AtomShort
	AtomUShort
	AtomInt
	AtomUInt
	AtomLong
	AtomULong
	AtomLongLong
	AtomULongLong
	AtomFloat
	AtomDouble
)

var atomNames = [...]string{
	AtomInvalid:   "invalid",
	AtomBool:      "bool",
	AtomChar:      "char",
	AtomSChar:     "signed char",
	AtomUChar:     "unsigned char",
	AtomShort:     "short",
	AtomUShort:    "unsigned short",
	AtomInt:       "int",
	AtomUInt:      "unsigned int",
	AtomLong:      "long",
	AtomULong:     "unsigned long",
	AtomLongLong:  "long long",
	AtomULongLong: "unsigned long long",
	AtomFloat:     "float",
	AtomDouble:    "double",
}

func (a Atom) String() string {
	if int(a) < len(atomNames) {
		return atomNames[a]
	}
	return "unknown"
}

// Unsigned reports whether the atom has no sign bit.
func (a Atom) Unsigned() bool {
	switch a {
	case AtomBool, AtomUChar, AtomUShort, AtomUInt, AtomULong, AtomULongLong:
		return true
	}
	return false
}

// Float reports whether the atom is a floating point type.
func (a Atom) Float() bool {
	return a == AtomFloat || a == AtomDouble
}

// spellings maps normalized C spellings, including the fixed-width typedefs
// every libc provides, to atoms.
var spellings = map[string]Atom{
	"bool":                   AtomBool,
	"_Bool":                  AtomBool,
	"char":                   AtomChar,
	"signed char":            AtomSChar,
	"unsigned char":          AtomUChar,
	"short":                  AtomShort,
	"short int":              AtomShort,
	"signed short":           AtomShort,
	"unsigned short":         AtomUShort,
	"unsigned short int":     AtomUShort,
	"int":                    AtomInt,
	"signed":                 AtomInt,
	"signed int":             AtomInt,
	"unsigned":               AtomUInt,
	"unsigned int":           AtomUInt,
	"long":                   AtomLong,
	"long int":               AtomLong,
	"signed long":            AtomLong,
	"unsigned long":          AtomULong,
	"unsigned long int":      AtomULong,
	"long long":              AtomLongLong,
	"long long int":          AtomLongLong,
	"unsigned long long":     AtomULongLong,
	"unsigned long long int": AtomULongLong,
	"float":                  AtomFloat,
	"double":                 AtomDouble,
	"int8_t":                 AtomSChar,
	"uint8_t":                AtomUChar,
	"int16_t":                AtomShort,
	"uint16_t":               AtomUShort,
	"int32_t":                AtomInt,
	"uint32_t":               AtomUInt,
	"int64_t":                AtomLongLong,
	"uint64_t":               AtomULongLong,
	"size_t":                 AtomULong,
	"ssize_t":                AtomLong,
	"ptrdiff_t":              AtomLong,
	"intptr_t":               AtomLong,
	"uintptr_t":              AtomULong,
}

// LookupAtom resolves a C scalar spelling. Runs of whitespace are ignored.
func LookupAtom(spelling string) (Atom, bool) {
	a, ok := spellings[strings.Join(strings.Fields(spelling), " ")]
	return a, ok
}
