package ctype

import (
	"strconv"
	"strings"

	"github.com/wippyai/abi-bindgen/errors"
)

// qualifiers carry no layout or marshaling meaning.
var qualifiers = map[string]bool{
	"const":    true,
	"volatile": true,
	"restrict": true,
	"struct":   true,
	"enum":     true,
	"union":    true,
}

// Parse converts a C type spelling such as "const char *", "float[4]" or
// "Vector3 *" into a Type. Qualifiers are dropped; "T[]" is a pointer.
func Parse(spelling string) (Type, error) {
	s := strings.TrimSpace(spelling)
	if s == "" {
		return nil, errors.InvalidData(errors.PhaseResolve, nil, "empty type")
	}
	if s == "..." {
		return Variadic{}, nil
	}

	// Array suffixes, outermost first in the source: T[2][3].
	var dims []int64
	for strings.HasSuffix(s, "]") {
		open := strings.LastIndexByte(s, '[')
		if open < 0 {
			return nil, errors.InvalidData(errors.PhaseResolve, nil, "unbalanced brackets in "+spelling)
		}
		inner := strings.TrimSpace(s[open+1 : len(s)-1])
		if inner == "" {
			dims = append(dims, -1)
		} else {
			n, err := strconv.ParseUint(inner, 10, 32)
			if err != nil {
				return nil, errors.New(errors.PhaseResolve, errors.KindInvalidData).
					CType(spelling).
					Detail("array length %q", inner).
					Cause(err).
					Build()
			}
			dims = append(dims, int64(n))
		}
		s = strings.TrimSpace(s[:open])
	}

	stars := strings.Count(s, "*")
	s = strings.ReplaceAll(s, "*", " ")

	var words []string
	for _, w := range strings.Fields(s) {
		if !qualifiers[w] {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return nil, errors.InvalidData(errors.PhaseResolve, nil, "no base type in "+spelling)
	}
	base := strings.Join(words, " ")

	var t Type
	switch {
	case base == "void":
		t = Void{}
	default:
		if atom, ok := LookupAtom(base); ok {
			t = Primitive{Atom: atom}
		} else if len(words) == 1 && isIdent(base) {
			t = Named{Name: base}
		} else {
			return nil, errors.New(errors.PhaseResolve, errors.KindInvalidData).
				CType(spelling).
				Detail("cannot parse base type %q", base).
				Build()
		}
	}

	for i := 0; i < stars; i++ {
		t = Pointer{Elem: t}
	}
	for _, n := range dims {
		if n < 0 {
			t = Pointer{Elem: t}
			continue
		}
		t = Array{Elem: t, Len: uint32(n)}
	}
	return t, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// static tables.
func MustParse(spelling string) Type {
	t, err := Parse(spelling)
	if err != nil {
		panic(err)
	}
	return t
}

func isIdent(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return s != ""
}
