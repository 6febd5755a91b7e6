package layout

import (
	"github.com/wippyai/abi-bindgen/ctype"
	"github.com/wippyai/abi-bindgen/errors"
	"github.com/wippyai/abi-bindgen/internal/diag"
	"github.com/wippyai/abi-bindgen/registry"
)

// FieldOffset is the placement of one struct field.
type FieldOffset struct {
	Name   string
	Offset uint32
	Size   uint32
}

// Info is the computed layout of a type.
type Info struct {
	Size    uint32
	Align   uint32
	Offsets []FieldOffset
}

// Offset returns the byte offset of the named field.
func (i Info) Offset(field string) (uint32, bool) {
	for _, f := range i.Offsets {
		if f.Name == field {
			return f.Offset, true
		}
	}
	return 0, false
}

// Calculator computes sizes and field offsets. Struct layouts are cached by
// name; the registry is immutable so entries never go stale.
type Calculator struct {
	reg    *registry.Registry
	policy Policy
	rep    *diag.Reporter
	cache  map[string]Info
	active map[string]bool
	cyclic map[string]bool
}

// New creates a Calculator. A zero pointer size defaults to 4.
func New(reg *registry.Registry, policy Policy, rep *diag.Reporter) *Calculator {
	if policy.PointerSize == 0 {
		policy.PointerSize = DefaultPointerSize
	}
	return &Calculator{
		reg:    reg,
		policy: policy,
		rep:    rep,
		cache:  make(map[string]Info),
		active: make(map[string]bool),
		cyclic: make(map[string]bool),
	}
}

// Policy returns the policy in effect.
func (c *Calculator) Policy() Policy {
	return c.policy
}

// SizeOf returns the byte size of t. Unknown names are 0.
func (c *Calculator) SizeOf(t ctype.Type) uint32 {
	return c.calculate(t, nil).Size
}

// AtomSize returns the byte size of a scalar under the current policy.
func (c *Calculator) AtomSize(a ctype.Atom) uint32 {
	switch a {
	case ctype.AtomBool, ctype.AtomChar, ctype.AtomSChar, ctype.AtomUChar:
		return 1
	case ctype.AtomShort, ctype.AtomUShort:
		return 2
	case ctype.AtomInt, ctype.AtomUInt, ctype.AtomFloat:
		return 4
	case ctype.AtomLong, ctype.AtomULong:
		return c.policy.PointerSize
	case ctype.AtomLongLong, ctype.AtomULongLong, ctype.AtomDouble:
		return 8
	}
	return 0
}

// Layout returns the layout of the named struct or alias.
func (c *Calculator) Layout(name string) (Info, bool) {
	def, ok := c.reg.Lookup(name)
	if !ok {
		return Info{}, false
	}
	return c.calculateStruct(def), true
}

func (c *Calculator) scalar(size uint32) Info {
	if c.policy.Alignment == AlignPacked || size == 0 {
		return Info{Size: size, Align: 1}
	}
	return Info{Size: size, Align: size}
}

func (c *Calculator) calculate(t ctype.Type, path []string) Info {
	switch typ := c.reg.Resolve(t).(type) {
	case ctype.Primitive:
		return c.scalar(c.AtomSize(typ.Atom))
	case ctype.Pointer:
		return c.scalar(c.policy.PointerSize)
	case ctype.Array:
		elem := c.calculate(typ.Elem, path)
		size, ok := safeMulU32(elem.Size, typ.Len)
		if !ok {
			c.rep.Report(errors.New(errors.PhaseLayout, errors.KindInvalidData).
				Path(path...).
				CType(typ.String()).
				Detail("array size overflows uint32").
				Build())
			return Info{Align: 1}
		}
		return Info{Size: size, Align: elem.Align}
	case ctype.Named:
		switch c.reg.Kind(typ.Name) {
		case registry.KindStruct:
			def, _ := c.reg.Lookup(typ.Name)
			return c.calculateStruct(def)
		case registry.KindCallback:
			return c.scalar(c.policy.PointerSize)
		}
		c.rep.Report(errors.UnknownAtom(errors.PhaseLayout, path, typ.Name, "size 0"))
		return Info{Align: 1}
	case ctype.Void, ctype.Variadic:
		c.rep.Report(errors.New(errors.PhaseLayout, errors.KindInvalidData).
			Path(path...).
			CType(typ.String()).
			Detail("%s has no size", typ).
			Build())
	}
	return Info{Align: 1}
}

func (c *Calculator) calculateStruct(def *ctype.Struct) Info {
	if cached, ok := c.cache[def.Name]; ok {
		return cached
	}
	if c.active[def.Name] {
		c.cyclic[def.Name] = true
		return Info{Align: 1}
	}
	c.active[def.Name] = true
	defer delete(c.active, def.Name)

	info := c.calculateRecord(def)
	if c.cyclic[def.Name] {
		c.rep.Report(errors.New(errors.PhaseLayout, errors.KindInvalidData).
			Path(def.Name).
			Detail("struct %s contains itself by value", def.Name).
			Build())
		info.Size = 0
	}

	c.cache[def.Name] = info
	return info
}

func (c *Calculator) calculateRecord(def *ctype.Struct) Info {
	if len(def.Fields) == 0 {
		return Info{Size: 0, Align: 1}
	}

	offsets := make([]FieldOffset, 0, len(def.Fields))
	maxAlign := uint32(1)
	offset := uint32(0)

	for _, field := range def.Fields {
		fieldLayout := c.calculate(field.Type, []string{def.Name, field.Name})

		offset = AlignTo(offset, fieldLayout.Align)
		offsets = append(offsets, FieldOffset{Name: field.Name, Offset: offset, Size: fieldLayout.Size})

		if fieldLayout.Align > maxAlign {
			maxAlign = fieldLayout.Align
		}

		next, ok := safeAddU32(offset, fieldLayout.Size)
		if !ok {
			c.rep.Report(errors.New(errors.PhaseLayout, errors.KindInvalidData).
				Path(def.Name, field.Name).
				Detail("struct size overflows uint32").
				Build())
			return Info{Align: 1, Offsets: offsets}
		}
		offset = next
	}

	return Info{
		Size:    AlignTo(offset, maxAlign),
		Align:   maxAlign,
		Offsets: offsets,
	}
}
