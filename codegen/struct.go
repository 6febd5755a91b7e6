package codegen

import (
	"strconv"

	"github.com/wippyai/abi-bindgen/ctype"
	"github.com/wippyai/abi-bindgen/errors"
	"github.com/wippyai/abi-bindgen/layout"
	"github.com/wippyai/abi-bindgen/marshal"
)

type fieldBinding struct {
	field  ctype.Field
	typ    ctype.Type
	access marshal.FieldAccess
	name   string
	offset string
}

// valueName is the field's name in the values struct.
func (fb fieldBinding) valueName() string {
	if fb.access.Strategy == marshal.StrategyString && !fb.access.Inline {
		return fb.name + "Ptr"
	}
	return fb.name
}

// valueType is the field's Go type in the values struct.
func (fb fieldBinding) valueType() string {
	switch {
	case fb.access.Strategy == marshal.StrategyStruct:
		return exportName(fb.access.Struct) + "Values"
	case fb.access.Strategy == marshal.StrategyString && !fb.access.Inline:
		return "uint32"
	}
	return fb.access.GoType
}

// Struct renders the Go binding for one struct or alias.
func (e *Emitter) Struct(def *ctype.Struct) (string, error) {
	if def.IsAlias() {
		if _, ok := e.reg.Lookup(def.Alias); ok {
			return e.alias(def), nil
		}
	}

	info, _ := e.layout.Layout(def.Name)
	typeName := exportName(def.Name)

	var fields []fieldBinding
	for _, f := range def.Fields {
		acc, err := e.sel.Field(f.Type, def.Name, f.Name)
		if err != nil {
			return "", err
		}
		fb := fieldBinding{
			field:  f,
			typ:    e.reg.Resolve(f.Type),
			access: acc,
			name:   accessorName(f.Name),
			offset: "offset" + typeName + exportName(f.Name),
		}
		if acc.Strategy == marshal.StrategyNone {
			e.rep.Report(errors.Unsupported(errors.PhaseEmit, []string{def.Name, f.Name}, "field "+f.Type.String()+" has no accessor"))
		}
		fields = append(fields, fb)
	}

	var w writer
	e.structType(&w, def, typeName, fields)
	e.structConsts(&w, typeName, info, fields)
	e.structConstructors(&w, typeName)
	for _, fb := range fields {
		if err := e.fieldAccessors(&w, typeName, fb); err != nil {
			return "", err
		}
	}
	e.structCopy(&w, typeName, fields)
	return w.String(), nil
}

func (e *Emitter) alias(def *ctype.Struct) string {
	name, base := exportName(def.Name), exportName(def.Alias)
	var w writer
	w.line("// %s is an alias of %s.", name, base)
	if def.Description != "" {
		w.line("//")
		w.WriteString(comment(def.Description))
	}
	w.line("type %s = %s", name, base)
	w.blank()
	w.line("// %sValues initializes a %s.", name, name)
	w.line("type %sValues = %sValues", name, base)
	w.blank()
	w.line("// Sizeof%s is the byte size of %s.", name, name)
	w.line("const Sizeof%s = Sizeof%s", name, base)
	w.blank()
	w.line("// New%s allocates an owning %s and writes v into it.", name, name)
	w.line("func (b *Bindings) New%s(v %sValues) (*%s, error) {", name, name, name)
	w.line("\treturn b.New%s(v)", base)
	w.line("}")
	w.blank()
	w.line("// New%sAt writes v into the %s at addr without taking ownership.", name, name)
	w.line("func (b *Bindings) New%sAt(addr uint32, v %sValues) (*%s, error) {", name, name, name)
	w.line("\treturn b.New%sAt(addr, v)", base)
	w.line("}")
	w.blank()
	w.line("// %sAt views the %s at addr.", name, name)
	w.line("func (b *Bindings) %sAt(addr uint32) *%s {", name, name)
	w.line("\treturn b.%sAt(addr)", base)
	w.line("}")
	w.blank()
	return w.String()
}

func (e *Emitter) structType(w *writer, def *ctype.Struct, typeName string, fields []fieldBinding) {
	if def.Description != "" {
		w.WriteString(doc(typeName, def.Description))
	} else {
		w.line("// %s is a native struct.", typeName)
	}
	if def.IsAlias() {
		w.line("//")
		w.line("// Its base %s was not declared, so it has no fields.", def.Alias)
	}
	w.line("type %s struct {", typeName)
	w.line("\thost.Struct")
	w.line("}")
	w.blank()

	w.line("// %sValues initializes a %s. The zero value writes zeroes.", typeName, typeName)
	w.line("type %sValues struct {", typeName)
	for _, fb := range fields {
		if fb.access.Strategy == marshal.StrategyNone {
			continue
		}
		w.line("\t%s %s", fb.valueName(), fb.valueType())
	}
	w.line("}")
	w.blank()
}

func (e *Emitter) structConsts(w *writer, typeName string, info layout.Info, fields []fieldBinding) {
	w.line("const (")
	w.line("\t// Sizeof%s is the byte size of %s.", typeName, typeName)
	w.line("\tSizeof%s = %d", typeName, info.Size)
	if len(fields) > 0 {
		w.blank()
	}
	for i, fb := range fields {
		var off uint32
		if i < len(info.Offsets) {
			off = info.Offsets[i].Offset
		}
		w.line("\t%s = %d", fb.offset, off)
	}
	w.line(")")
	w.blank()
}

func (e *Emitter) structConstructors(w *writer, typeName string) {
	w.line("// New%s allocates an owning %s and writes v into it. Release it when done.", typeName, typeName)
	w.line("func (b *Bindings) New%s(v %sValues) (*%s, error) {", typeName, typeName, typeName)
	w.line("\tst, err := b.rt.NewStruct(Sizeof%s)", typeName)
	w.line("\tif err != nil {")
	w.line("\t\treturn nil, err")
	w.line("\t}")
	w.line("\ts := &%s{Struct: st}", typeName)
	w.line("\tif err := s.Set(v); err != nil {")
	w.line("\t\t_ = s.Release()")
	w.line("\t\treturn nil, err")
	w.line("\t}")
	w.line("\treturn s, nil")
	w.line("}")
	w.blank()

	w.line("// New%sAt writes v into the %s at addr without taking ownership.", typeName, typeName)
	w.line("func (b *Bindings) New%sAt(addr uint32, v %sValues) (*%s, error) {", typeName, typeName, typeName)
	w.line("\ts := b.%sAt(addr)", typeName)
	w.line("\tif err := s.Set(v); err != nil {")
	w.line("\t\treturn nil, err")
	w.line("\t}")
	w.line("\treturn s, nil")
	w.line("}")
	w.blank()

	w.line("// %sAt views the %s at addr.", typeName, typeName)
	w.line("func (b *Bindings) %sAt(addr uint32) *%s {", typeName, typeName)
	w.line("\treturn &%s{Struct: b.rt.View(addr, Sizeof%s)}", typeName, typeName)
	w.line("}")
	w.blank()
}

func (e *Emitter) fieldAccessors(w *writer, typeName string, fb fieldBinding) error {
	acc := fb.access
	recv := "func (s *" + typeName + ") "

	switch acc.Strategy {
	case marshal.StrategyNone:
		return nil

	case marshal.StrategyByte, marshal.StrategyWord, marshal.StrategySized:
		w.WriteString(doc(fb.name, fb.field.Description))
		w.line("%s%s() (%s, error) {", recv, fb.name, acc.GoType)
		w.line("\treturn s.%s(%s)", acc.Read, fb.offset)
		w.line("}")
		w.blank()
		w.line("%sSet%s(v %s) error {", recv, fb.name, acc.GoType)
		w.line("\treturn s.%s(%s, v)", acc.Write, fb.offset)
		w.line("}")
		w.blank()

	case marshal.StrategyString:
		w.WriteString(doc(fb.name, fb.field.Description))
		if acc.Inline {
			w.line("%s%s() (string, error) {", recv, fb.name)
			w.line("\treturn s.InlineString(%s, %d)", fb.offset, acc.Len)
			w.line("}")
			w.blank()
			w.line("// Set%s truncates v to %d bytes.", fb.name, max(acc.Len, 1)-1)
			w.line("%sSet%s(v string) error {", recv, fb.name)
			w.line("\treturn s.SetInlineString(%s, %d, v)", fb.offset, acc.Len)
			w.line("}")
			w.blank()
			return nil
		}
		w.line("%s%s() (string, error) {", recv, fb.name)
		w.line("\treturn s.CString(%s)", fb.offset)
		w.line("}")
		w.blank()
		w.line("// %sPtr returns the address stored in %s.", fb.name, fb.field.Name)
		w.line("%s%sPtr() (uint32, error) {", recv, fb.name)
		w.line("\treturn s.Ptr(%s)", fb.offset)
		w.line("}")
		w.blank()
		w.line("%sSet%sPtr(p uint32) error {", recv, fb.name)
		w.line("\treturn s.SetPtr(%s, p)", fb.offset)
		w.line("}")
		w.blank()

	case marshal.StrategyStruct:
		nested := exportName(acc.Struct)
		w.WriteString(doc(fb.name, fb.field.Description))
		w.line("%s%s() *%s {", recv, fb.name, nested)
		w.line("\treturn &%s{Struct: s.Sub(%s, Sizeof%s)}", nested, fb.offset, nested)
		w.line("}")
		w.blank()
		w.line("%sSet%s(v %sValues) error {", recv, fb.name, nested)
		w.line("\treturn s.%s().Set(v)", fb.name)
		w.line("}")
		w.blank()

	case marshal.StrategyArray:
		arr, ok := fb.typ.(ctype.Array)
		if !ok {
			return errors.New(errors.PhaseEmit, errors.KindInvalidData).
				Path(typeName, fb.field.Name).
				CType(fb.typ.String()).
				Detail("array strategy for non-array type").
				Build()
		}
		w.WriteString(doc(fb.name, fb.field.Description))
		w.line("%s%s() (%s, error) {", recv, fb.name, acc.GoType)
		w.line("\tvar out %s", acc.GoType)
		e.readArray(w, acc, arr, "out", fb.offset, 0, "\t")
		w.line("\treturn out, nil")
		w.line("}")
		w.blank()
		w.line("%sSet%s(v %s) error {", recv, fb.name, acc.GoType)
		e.writeArray(w, acc, arr, "v", fb.offset, 0, "\t")
		w.line("\treturn nil")
		w.line("}")
		w.blank()
	}
	return nil
}

func loopVar(depth int) string {
	return "i" + strconv.Itoa(depth)
}

// readArray emits nested loops that fill dst from memory.
func (e *Emitter) readArray(w *writer, acc marshal.FieldAccess, arr ctype.Array, dst, off string, depth int, indent string) {
	i := loopVar(depth)
	elemSize := e.layout.SizeOf(arr.Elem)
	elemDst := dst + "[" + i + "]"
	elemOff := off + " + uint32(" + i + ")*" + strconv.FormatUint(uint64(elemSize), 10)
	elem := *acc.Elem

	w.line("%sfor %s := range %s {", indent, i, dst)
	inner := indent + "\t"
	switch elem.Strategy {
	case marshal.StrategyArray:
		e.readArray(w, elem, e.reg.Resolve(arr.Elem).(ctype.Array), elemDst, elemOff, depth+1, inner)
	case marshal.StrategyStruct:
		nested := exportName(elem.Struct)
		w.line("%sv, err := (&%s{Struct: s.Sub(%s, Sizeof%s)}).Get()", inner, nested, elemOff, nested)
		e.assign(w, elemDst, inner)
	case marshal.StrategyString:
		w.line("%sv, err := s.InlineString(%s, %d)", inner, elemOff, elem.Len)
		e.assign(w, elemDst, inner)
	default:
		w.line("%sv, err := s.%s(%s)", inner, elem.Read, elemOff)
		e.assign(w, elemDst, inner)
	}
	w.line("%s}", indent)
}

func (e *Emitter) assign(w *writer, dst, indent string) {
	w.line("%sif err != nil {", indent)
	w.line("%s\treturn out, err", indent)
	w.line("%s}", indent)
	w.line("%s%s = v", indent, dst)
}

// writeArray emits nested loops that store src into memory.
func (e *Emitter) writeArray(w *writer, acc marshal.FieldAccess, arr ctype.Array, src, off string, depth int, indent string) {
	i := loopVar(depth)
	elemSize := e.layout.SizeOf(arr.Elem)
	elemSrc := src + "[" + i + "]"
	elemOff := off + " + uint32(" + i + ")*" + strconv.FormatUint(uint64(elemSize), 10)
	elem := *acc.Elem

	w.line("%sfor %s := range %s {", indent, i, src)
	inner := indent + "\t"
	var call string
	switch elem.Strategy {
	case marshal.StrategyArray:
		e.writeArray(w, elem, e.reg.Resolve(arr.Elem).(ctype.Array), elemSrc, elemOff, depth+1, inner)
		w.line("%s}", indent)
		return
	case marshal.StrategyStruct:
		nested := exportName(elem.Struct)
		call = "(&" + nested + "{Struct: s.Sub(" + elemOff + ", Sizeof" + nested + ")}).Set(" + elemSrc + ")"
	case marshal.StrategyString:
		call = "s.SetInlineString(" + elemOff + ", " + strconv.FormatUint(uint64(elem.Len), 10) + ", " + elemSrc + ")"
	default:
		call = "s." + elem.Write + "(" + elemOff + ", " + elemSrc + ")"
	}
	w.line("%sif err := %s; err != nil {", inner, call)
	w.line("%s\treturn err", inner)
	w.line("%s}", inner)
	w.line("%s}", indent)
}

func (e *Emitter) structCopy(w *writer, typeName string, fields []fieldBinding) {
	var live []fieldBinding
	for _, fb := range fields {
		if fb.access.Strategy != marshal.StrategyNone {
			live = append(live, fb)
		}
	}

	w.line("// Get copies the %s out of memory.", typeName)
	w.line("func (s *%s) Get() (%sValues, error) {", typeName, typeName)
	w.line("\tvar v %sValues", typeName)
	if len(live) > 0 {
		w.line("\tvar err error")
	}
	for _, fb := range live {
		getter := "s." + fb.name + "()"
		switch {
		case fb.access.Strategy == marshal.StrategyStruct:
			getter = "s." + fb.name + "().Get()"
		case fb.access.Strategy == marshal.StrategyString && !fb.access.Inline:
			getter = "s." + fb.name + "Ptr()"
		}
		w.line("\tif v.%s, err = %s; err != nil {", fb.valueName(), getter)
		w.line("\t\treturn v, err")
		w.line("\t}")
	}
	w.line("\treturn v, nil")
	w.line("}")
	w.blank()

	w.line("// Set writes every field of v.")
	w.line("func (s *%s) Set(v %sValues) error {", typeName, typeName)
	for _, fb := range live {
		setter := "Set" + fb.name
		if fb.access.Strategy == marshal.StrategyString && !fb.access.Inline {
			setter += "Ptr"
		}
		w.line("\tif err := s.%s(v.%s); err != nil {", setter, fb.valueName())
		w.line("\t\treturn err")
		w.line("\t}")
	}
	w.line("\treturn nil")
	w.line("}")
	w.blank()
}
