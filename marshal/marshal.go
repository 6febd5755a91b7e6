// Package marshal selects how each C type is moved across the memory and
// call boundaries.
//
// Field strategies describe struct member access inside linear memory. Call
// categories describe how a parameter or return value is coerced to and from
// the uint64 slots of a wasm call. Both carry the Go type and the host
// accessor or encoder the emitters splice into generated code.
package marshal

import (
	"strconv"

	"github.com/wippyai/abi-bindgen/ctype"
	"github.com/wippyai/abi-bindgen/errors"
	"github.com/wippyai/abi-bindgen/internal/diag"
	"github.com/wippyai/abi-bindgen/registry"
)

// Strategy is the field access strategy.
type Strategy uint8

const (
	// StrategyNone marks a field whose type could not be resolved. It has no
	// accessors.
	StrategyNone Strategy = iota
	StrategyByte
	StrategyWord
	StrategySized
	StrategyString
	StrategyStruct
	StrategyArray
)

var strategyNames = [...]string{
	StrategyNone:   "none",
	StrategyByte:   "byte",
	StrategyWord:   "word",
	StrategySized:  "sized",
	StrategyString: "string",
	StrategyStruct: "struct",
	StrategyArray:  "array",
}

func (s Strategy) String() string {
	if int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return "unknown"
}

// FieldAccess is the selected strategy for one struct field type.
type FieldAccess struct {
	Strategy Strategy
	Width    Width
	// GoType is the Go type of the field's value. For StrategyStruct it is
	// the exported struct name; the values form appends "Values".
	GoType string
	// Read and Write name host.Struct methods.
	Read  string
	Write string
	// Inline is set for char[N] text; Len is N. For arrays Len is the
	// element count.
	Inline bool
	Len    uint32
	Struct string
	Elem   *FieldAccess
}

// Category is the call-boundary coercion category.
type Category uint8

const (
	CategoryVoid Category = iota
	CategoryBoolean
	CategoryNumber
	CategoryString
	CategoryPointer
)

var categoryNames = [...]string{
	CategoryVoid:    "void",
	CategoryBoolean: "boolean",
	CategoryNumber:  "number",
	CategoryString:  "string",
	CategoryPointer: "pointer",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "unknown"
}

// CallCoercion is the selected coercion for a parameter or return type.
type CallCoercion struct {
	Category Category
	Width    Width
	// Param and Result are the Go types used for parameters and return
	// values. They differ for pointers: parameters accept any host.Pointer.
	Param  string
	Result string
	// Encode and Decode are format strings over one expression. String
	// coercion needs a call frame and leaves them empty.
	Encode string
	Decode string
	// Struct names the pointee (pointer to struct) or the value type
	// (struct by value).
	Struct  string
	ByValue bool
}

// Options tunes strategy selection.
type Options struct {
	// Strict turns unknown atoms into errors instead of diagnostics.
	Strict      bool
	PointerSize uint32
}

// Selector maps types to strategies. It holds no mutable state besides the
// reporter.
type Selector struct {
	reg  *registry.Registry
	opts Options
	rep  *diag.Reporter
}

// New creates a Selector. A zero pointer size defaults to 4.
func New(reg *registry.Registry, opts Options, rep *diag.Reporter) *Selector {
	if opts.PointerSize == 0 {
		opts.PointerSize = 4
	}
	return &Selector{reg: reg, opts: opts, rep: rep}
}

// Strict reports whether unknown atoms are fatal.
func (s *Selector) Strict() bool {
	return s.opts.Strict
}

func (s *Selector) ptrWidth() Width {
	if s.opts.PointerSize == 8 {
		return WidthU64
	}
	return WidthPtr
}

func (s *Selector) longWidth(unsigned bool) Width {
	switch {
	case s.opts.PointerSize == 8 && unsigned:
		return WidthU64
	case s.opts.PointerSize == 8:
		return WidthI64
	case unsigned:
		return WidthU32
	}
	return WidthI32
}

func (s *Selector) atomWidth(a ctype.Atom) Width {
	switch a {
	case ctype.AtomBool, ctype.AtomUChar:
		return WidthU8
	case ctype.AtomChar, ctype.AtomSChar:
		return WidthI8
	case ctype.AtomShort:
		return WidthI16
	case ctype.AtomUShort:
		return WidthU16
	case ctype.AtomInt:
		return WidthI32
	case ctype.AtomUInt:
		return WidthU32
	case ctype.AtomLong:
		return s.longWidth(false)
	case ctype.AtomULong:
		return s.longWidth(true)
	case ctype.AtomLongLong:
		return WidthI64
	case ctype.AtomULongLong:
		return WidthU64
	case ctype.AtomFloat:
		return WidthF32
	case ctype.AtomDouble:
		return WidthF64
	}
	return WidthNone
}

func sized(w Width) FieldAccess {
	info := w.info()
	return FieldAccess{Strategy: StrategySized, Width: w, GoType: info.goType, Read: info.read, Write: info.write}
}

// Field selects the access strategy for a struct field of type t. path is
// used for diagnostics only.
func (s *Selector) Field(t ctype.Type, path ...string) (FieldAccess, error) {
	switch typ := s.reg.Resolve(t).(type) {
	case ctype.Primitive:
		w := s.atomWidth(typ.Atom)
		switch {
		case typ.Atom == ctype.AtomBool:
			return FieldAccess{Strategy: StrategyByte, Width: WidthU8, GoType: "bool", Read: "Bool", Write: "SetBool"}, nil
		case w == WidthU8:
			return FieldAccess{Strategy: StrategyByte, Width: WidthU8, GoType: "uint8", Read: "U8", Write: "SetU8"}, nil
		case w == WidthU32:
			return FieldAccess{Strategy: StrategyWord, Width: WidthU32, GoType: "uint32", Read: "U32", Write: "SetU32"}, nil
		}
		return sized(w), nil
	case ctype.Pointer:
		// host decodes strings through 32-bit pointers only.
		if ctype.IsCString(typ) && s.ptrWidth() == WidthPtr {
			return FieldAccess{Strategy: StrategyString, Width: WidthPtr, GoType: "string", Read: "CString"}, nil
		}
		return sized(s.ptrWidth()), nil
	case ctype.Array:
		if ctype.IsCharArray(typ) {
			return FieldAccess{
				Strategy: StrategyString,
				GoType:   "string",
				Read:     "InlineString",
				Write:    "SetInlineString",
				Inline:   true,
				Len:      typ.Len,
			}, nil
		}
		elem, err := s.Field(typ.Elem, path...)
		if err != nil {
			return FieldAccess{}, err
		}
		if elem.Strategy == StrategyNone {
			return elem, nil
		}
		// Elements of char *names[N] are kept as raw pointers.
		if elem.Strategy == StrategyString && !elem.Inline {
			elem = sized(WidthPtr)
		}
		goType := elem.GoType
		if elem.Strategy == StrategyStruct {
			goType += "Values"
		}
		return FieldAccess{
			Strategy: StrategyArray,
			GoType:   "[" + strconv.FormatUint(uint64(typ.Len), 10) + "]" + goType,
			Len:      typ.Len,
			Elem:     &elem,
		}, nil
	case ctype.Named:
		switch s.reg.Kind(typ.Name) {
		case registry.KindStruct:
			return FieldAccess{Strategy: StrategyStruct, GoType: GoName(typ.Name), Struct: typ.Name}, nil
		case registry.KindCallback:
			return sized(s.ptrWidth()), nil
		}
		if err := s.unknown(typ.Name, "no accessor", path); err != nil {
			return FieldAccess{}, err
		}
		return FieldAccess{Strategy: StrategyNone}, nil
	}
	return FieldAccess{}, errors.New(errors.PhaseMarshal, errors.KindUnsupported).
		Path(path...).
		CType(t.String()).
		Detail("%s cannot be a struct field", t).
		Build()
}

// Call selects the coercion for a parameter or return value of type t.
func (s *Selector) Call(t ctype.Type, path ...string) (CallCoercion, error) {
	switch typ := s.reg.Resolve(t).(type) {
	case ctype.Void:
		return CallCoercion{Category: CategoryVoid}, nil
	case ctype.Primitive:
		if typ.Atom == ctype.AtomBool {
			return CallCoercion{
				Category: CategoryBoolean,
				Width:    WidthU32,
				Param:    "bool",
				Result:   "bool",
				Encode:   "host.EncodeBool(%s)",
				Decode:   "(api.DecodeU32(%s) != 0)",
			}, nil
		}
		w := s.atomWidth(typ.Atom)
		return CallCoercion{
			Category: CategoryNumber,
			Width:    w,
			Param:    w.GoType(),
			Result:   w.GoType(),
			Encode:   w.Encode(),
			Decode:   w.Decode(),
		}, nil
	case ctype.Pointer:
		if ctype.IsCString(typ) {
			return CallCoercion{Category: CategoryString, Width: WidthPtr, Param: "string", Result: "string"}, nil
		}
		if named, ok := typ.Elem.(ctype.Named); ok && s.reg.Kind(named.Name) == registry.KindStruct {
			c := pointer()
			c.Struct = named.Name
			c.Result = "*" + named.Name
			return c, nil
		}
		return pointer(), nil
	case ctype.Array:
		return pointer(), nil
	case ctype.Named:
		switch s.reg.Kind(typ.Name) {
		case registry.KindStruct:
			c := pointer()
			c.Struct = typ.Name
			c.ByValue = true
			c.Result = "*" + GoName(typ.Name)
			return c, nil
		case registry.KindCallback:
			return pointer(), nil
		}
		if err := s.unknown(typ.Name, "pointer", path); err != nil {
			return CallCoercion{}, err
		}
		return pointer(), nil
	}
	return CallCoercion{}, errors.Unsupported(errors.PhaseMarshal, path, t.String()+" at the call boundary")
}

func pointer() CallCoercion {
	return CallCoercion{
		Category: CategoryPointer,
		Width:    WidthPtr,
		Param:    "host.Pointer",
		Result:   "host.Addr",
		Encode:   "api.EncodeU32(host.AddressOf(%s))",
		Decode:   "host.Addr(api.DecodeU32(%s))",
	}
}

// unknown reports an unresolved atom, or returns it as an error in strict
// mode.
func (s *Selector) unknown(name, fallback string, path []string) error {
	err := errors.UnknownAtom(errors.PhaseMarshal, path, name, fallback)
	if s.opts.Strict {
		return err
	}
	s.rep.Report(err)
	return nil
}
