package marshal

// Width tags the machine representation used by the Sized strategy and by
// number coercion at the call boundary.
type Width uint8

const (
	WidthNone Width = iota
	WidthI8
	WidthU8
	WidthI16
	WidthU16
	WidthI32
	WidthU32
	WidthI64
	WidthU64
	WidthF32
	WidthF64
	WidthPtr
)

type widthInfo struct {
	name   string
	goType string
	read   string
	write  string
	encode string
	decode string
}

// Encoders and decoders are format strings over one Go expression; they
// produce and consume the uint64 slots of api.Function.Call.
var widths = [...]widthInfo{
	WidthNone: {name: "none"},
	WidthI8:   {"i8", "int8", "I8", "SetI8", "api.EncodeI32(int32(%s))", "int8(api.DecodeI32(%s))"},
	WidthU8:   {"u8", "uint8", "U8", "SetU8", "api.EncodeU32(uint32(%s))", "uint8(api.DecodeU32(%s))"},
	WidthI16:  {"i16", "int16", "I16", "SetI16", "api.EncodeI32(int32(%s))", "int16(api.DecodeI32(%s))"},
	WidthU16:  {"u16", "uint16", "U16", "SetU16", "api.EncodeU32(uint32(%s))", "uint16(api.DecodeU32(%s))"},
	WidthI32:  {"i32", "int32", "I32", "SetI32", "api.EncodeI32(%s)", "api.DecodeI32(%s)"},
	WidthU32:  {"u32", "uint32", "U32", "SetU32", "api.EncodeU32(%s)", "api.DecodeU32(%s)"},
	WidthI64:  {"i64", "int64", "I64", "SetI64", "api.EncodeI64(%s)", "int64(%s)"},
	WidthU64:  {"u64", "uint64", "U64", "SetU64", "%s", "%s"},
	WidthF32:  {"f32", "float32", "F32", "SetF32", "api.EncodeF32(%s)", "api.DecodeF32(%s)"},
	WidthF64:  {"f64", "float64", "F64", "SetF64", "api.EncodeF64(%s)", "api.DecodeF64(%s)"},
	WidthPtr:  {"ptr", "uint32", "Ptr", "SetPtr", "api.EncodeU32(%s)", "api.DecodeU32(%s)"},
}

func (w Width) info() widthInfo {
	if int(w) < len(widths) {
		return widths[w]
	}
	return widths[WidthNone]
}

func (w Width) String() string { return w.info().name }

// GoType is the Go type that holds a value of this width.
func (w Width) GoType() string { return w.info().goType }

// Encode formats expr as a call slot.
func (w Width) Encode() string { return w.info().encode }

// Decode formats a call slot expression as a Go value.
func (w Width) Decode() string { return w.info().decode }
