package marshal

import (
	"unicode"
	"unicode/utf8"
)

// GoName returns the exported Go identifier generated for a C type name.
func GoName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}
