package codegen

import (
	"go/token"
	"strconv"
	"strings"

	"github.com/wippyai/abi-bindgen/marshal"
)

// exportName upper-cases the first letter of a C identifier.
func exportName(name string) string {
	return marshal.GoName(name)
}

// structMethods are promoted from host.Struct or emitted on every struct
// type. Field accessors with these names would shadow them.
var structMethods = map[string]bool{
	"Address": true, "Size": true, "Owned": true, "Released": true,
	"Release": true, "Runtime": true, "Sub": true, "Bytes": true, "SetBytes": true,
	"Get": true, "Set": true,
	"U8": true, "SetU8": true, "Bool": true, "SetBool": true,
	"I8": true, "SetI8": true, "U16": true, "SetU16": true,
	"I16": true, "SetI16": true, "U32": true, "SetU32": true,
	"I32": true, "SetI32": true, "U64": true, "SetU64": true,
	"I64": true, "SetI64": true, "F32": true, "SetF32": true,
	"F64": true, "SetF64": true, "Ptr": true, "SetPtr": true,
	"CString": true, "InlineString": true, "SetInlineString": true,
}

// accessorName returns the getter name for a struct field.
func accessorName(field string) string {
	name := exportName(field)
	if structMethods[name] || structMethods["Set"+name] || structMethods[name+"Ptr"] {
		name += "Field"
	}
	return name
}

// reservedLocals are identifiers used inside generated function bodies.
var reservedLocals = map[string]bool{
	"b": true, "ctx": true, "opts": true, "f": true, "err": true,
	"res": true, "ret": true, "addr": true, "api": true, "host": true,
	"context": true,
}

// paramName makes a C parameter name safe as a Go identifier.
func paramName(name string, index int) string {
	if name == "" {
		return "arg" + strconv.Itoa(index)
	}
	if token.IsKeyword(name) || reservedLocals[name] {
		return name + "Arg"
	}
	return name
}

// constName keeps C constant names, escaping keywords.
func constName(name string) string {
	if token.IsKeyword(name) {
		return name + "_"
	}
	return name
}

// comment renders text as // lines, one per source line.
func comment(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		b.WriteString("// ")
		b.WriteString(strings.TrimSpace(line))
		b.WriteByte('\n')
	}
	return b.String()
}

// doc renders "name: text" as a comment, or nothing without text.
func doc(name, text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return comment(name + ": " + text)
}
