package abi

import (
	"strconv"
	"strings"

	"github.com/go-json-experiment/json/jsontext"
)

// Description is the decoded ABI surface of a native library.
type Description struct {
	Defines   []Define   `json:"defines"`
	Structs   []Struct   `json:"structs"`
	Aliases   []Alias    `json:"aliases"`
	Enums     []Enum     `json:"enums"`
	Callbacks []Callback `json:"callbacks"`
	Functions []Function `json:"functions"`
}

// Define is a named preprocessor constant. Value holds the raw JSON token
// because the description mixes numbers and strings.
type Define struct {
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Value       jsontext.Value `json:"value"`
	Description string         `json:"description"`
}

// Define type tags understood by the generator.
const (
	DefineColor  = "COLOR"
	DefineInt    = "INT"
	DefineFloat  = "FLOAT"
	DefineDouble = "DOUBLE"
	DefineString = "STRING"
)

// Text returns the define's value as text: strings are unquoted, numbers
// are returned verbatim.
func (d Define) Text() string {
	raw := strings.TrimSpace(string(d.Value))
	if raw == "" || raw == "null" {
		return ""
	}
	if raw[0] == '"' {
		if s, err := strconv.Unquote(raw); err == nil {
			return s
		}
		return strings.Trim(raw, `"`)
	}
	return raw
}

// Field is one member of a struct, in declaration order.
type Field struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Struct is a struct declaration.
type Struct struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Fields      []Field `json:"fields"`
}

// Alias is a typedef of an existing struct.
type Alias struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// EnumValue is one enumerator.
type EnumValue struct {
	Name        string `json:"name"`
	Value       int64  `json:"value"`
	Description string `json:"description"`
}

// Enum is an enum declaration.
type Enum struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Values      []EnumValue `json:"values"`
}

// Param is a function or callback parameter.
type Param struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Callback is a named function-pointer type.
type Callback struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ReturnType  string  `json:"returnType"`
	Params      []Param `json:"params"`
}

// Function is a native function. Preload lists parameters that name files
// which must be staged into the module's filesystem before the call.
type Function struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	ReturnType  string   `json:"returnType"`
	Params      []Param  `json:"params"`
	Preload     []string `json:"preload,omitempty"`
}
