package marshal

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/abi-bindgen/abi"
	"github.com/wippyai/abi-bindgen/ctype"
	"github.com/wippyai/abi-bindgen/errors"
	"github.com/wippyai/abi-bindgen/internal/diag"
	"github.com/wippyai/abi-bindgen/registry"
)

func newSelector(t *testing.T, opts Options) (*Selector, *diag.Reporter) {
	t.Helper()
	desc, err := abi.Load(context.Background(), "../testdata/raylib_api.json")
	if err != nil {
		t.Fatalf("load testdata: %v", err)
	}
	rep := diag.New(nil)
	reg, err := registry.Build(desc, registry.Options{Atoms: map[string]string{"GLenum": "unsigned int"}}, rep)
	if err != nil {
		t.Fatalf("registry.Build: %v", err)
	}
	return New(reg, opts, rep), rep
}

func TestField(t *testing.T) {
	s, _ := newSelector(t, Options{})

	tests := []struct {
		typ      string
		strategy Strategy
		width    Width
		goType   string
		read     string
	}{
		{"unsigned char", StrategyByte, WidthU8, "uint8", "U8"},
		{"bool", StrategyByte, WidthU8, "bool", "Bool"},
		{"unsigned int", StrategyWord, WidthU32, "uint32", "U32"},
		{"unsigned long", StrategyWord, WidthU32, "uint32", "U32"},
		{"GLenum", StrategyWord, WidthU32, "uint32", "U32"},
		{"char", StrategySized, WidthI8, "int8", "I8"},
		{"short", StrategySized, WidthI16, "int16", "I16"},
		{"unsigned short", StrategySized, WidthU16, "uint16", "U16"},
		{"int", StrategySized, WidthI32, "int32", "I32"},
		{"long long", StrategySized, WidthI64, "int64", "I64"},
		{"unsigned long long", StrategySized, WidthU64, "uint64", "U64"},
		{"float", StrategySized, WidthF32, "float32", "F32"},
		{"double", StrategySized, WidthF64, "float64", "F64"},
		{"void *", StrategySized, WidthPtr, "uint32", "Ptr"},
		{"char **", StrategySized, WidthPtr, "uint32", "Ptr"},
		{"TraceLogCallback", StrategySized, WidthPtr, "uint32", "Ptr"},
		{"const char *", StrategyString, WidthPtr, "string", "CString"},
		{"char[32]", StrategyString, WidthNone, "string", "InlineString"},
		{"Vector3", StrategyStruct, WidthNone, "Vector3", ""},
	}

	for _, tc := range tests {
		t.Run(tc.typ, func(t *testing.T) {
			got, err := s.Field(ctype.MustParse(tc.typ))
			if err != nil {
				t.Fatalf("Field: %v", err)
			}
			if got.Strategy != tc.strategy {
				t.Errorf("strategy: got %v, want %v", got.Strategy, tc.strategy)
			}
			if got.Width != tc.width {
				t.Errorf("width: got %v, want %v", got.Width, tc.width)
			}
			if got.GoType != tc.goType {
				t.Errorf("go type: got %s, want %s", got.GoType, tc.goType)
			}
			if got.Read != tc.read {
				t.Errorf("read: got %s, want %s", got.Read, tc.read)
			}
		})
	}
}

func TestField_Arrays(t *testing.T) {
	s, _ := newSelector(t, Options{})

	got, err := s.Field(ctype.MustParse("float[4]"))
	if err != nil {
		t.Fatal(err)
	}
	if got.Strategy != StrategyArray || got.GoType != "[4]float32" || got.Len != 4 {
		t.Errorf("float[4]: got %+v", got)
	}
	if got.Elem == nil || got.Elem.Read != "F32" {
		t.Errorf("element strategy: got %+v", got.Elem)
	}

	got, err = s.Field(ctype.MustParse("Vector2[3]"))
	if err != nil {
		t.Fatal(err)
	}
	if got.GoType != "[3]Vector2Values" {
		t.Errorf("Vector2[3]: got %s", got.GoType)
	}

	got, err = s.Field(ctype.MustParse("char[4][16]"))
	if err != nil {
		t.Fatal(err)
	}
	if got.GoType != "[4]string" || !got.Elem.Inline || got.Elem.Len != 16 {
		t.Errorf("char[4][16]: got %+v", got)
	}
}

func TestField_LowercaseStruct(t *testing.T) {
	desc := &abi.Description{
		Structs: []abi.Struct{
			{Name: "float3", Fields: []abi.Field{{Name: "v", Type: "float[3]"}}},
		},
	}
	rep := diag.New(nil)
	reg, err := registry.Build(desc, registry.Options{}, rep)
	if err != nil {
		t.Fatalf("registry.Build: %v", err)
	}
	s := New(reg, Options{}, rep)

	tests := []struct {
		typ    string
		goType string
	}{
		{"float3", "Float3"},
		{"float3[2]", "[2]Float3Values"},
		{"float3[2][4]", "[2][4]Float3Values"},
	}
	for _, tc := range tests {
		t.Run(tc.typ, func(t *testing.T) {
			got, err := s.Field(ctype.MustParse(tc.typ))
			if err != nil {
				t.Fatal(err)
			}
			if got.GoType != tc.goType {
				t.Errorf("go type: got %s, want %s", got.GoType, tc.goType)
			}
		})
	}

	c, err := s.Call(ctype.MustParse("float3"))
	if err != nil {
		t.Fatal(err)
	}
	if c.Result != "*Float3" || c.Struct != "float3" {
		t.Errorf("by-value result: got %s for %s, want *Float3 for float3", c.Result, c.Struct)
	}
}

func TestGoName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"float3", "Float3"},
		{"Vector2", "Vector2"},
		{"_private", "_private"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := GoName(tc.in); got != tc.want {
			t.Errorf("GoName(%q): got %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestField_Unknown(t *testing.T) {
	s, rep := newSelector(t, Options{})
	got, err := s.Field(ctype.Named{Name: "GLrect"}, "Rect", "r")
	if err != nil {
		t.Fatalf("lenient Field: %v", err)
	}
	if got.Strategy != StrategyNone {
		t.Errorf("strategy: got %v, want none", got.Strategy)
	}
	if rep.Count(errors.KindUnknownAtom) != 1 {
		t.Errorf("unknown_atom diagnostics: got %d, want 1", rep.Count(errors.KindUnknownAtom))
	}

	strict, _ := newSelector(t, Options{Strict: true})
	if _, err := strict.Field(ctype.Named{Name: "GLrect"}); err == nil {
		t.Error("strict Field: expected error")
	}
}

func TestCall(t *testing.T) {
	s, _ := newSelector(t, Options{})

	tests := []struct {
		typ      string
		category Category
		param    string
		result   string
		byValue  bool
		strct    string
	}{
		{"void", CategoryVoid, "", "", false, ""},
		{"bool", CategoryBoolean, "bool", "bool", false, ""},
		{"int", CategoryNumber, "int32", "int32", false, ""},
		{"unsigned int", CategoryNumber, "uint32", "uint32", false, ""},
		{"float", CategoryNumber, "float32", "float32", false, ""},
		{"double", CategoryNumber, "float64", "float64", false, ""},
		{"unsigned char", CategoryNumber, "uint8", "uint8", false, ""},
		{"KeyboardKey", CategoryNumber, "int32", "int32", false, ""},
		{"const char *", CategoryString, "string", "string", false, ""},
		{"char *", CategoryString, "string", "string", false, ""},
		{"void *", CategoryPointer, "host.Pointer", "host.Addr", false, ""},
		{"unsigned char *", CategoryPointer, "host.Pointer", "host.Addr", false, ""},
		{"Camera *", CategoryPointer, "host.Pointer", "*Camera", false, "Camera"},
		{"Texture2D", CategoryPointer, "host.Pointer", "*Texture2D", true, "Texture2D"},
		{"TraceLogCallback", CategoryPointer, "host.Pointer", "host.Addr", false, ""},
	}

	for _, tc := range tests {
		t.Run(tc.typ, func(t *testing.T) {
			got, err := s.Call(ctype.MustParse(tc.typ))
			if err != nil {
				t.Fatalf("Call: %v", err)
			}
			want := struct {
				Category      Category
				Param, Result string
				ByValue       bool
				Struct        string
			}{tc.category, tc.param, tc.result, tc.byValue, tc.strct}
			gotView := struct {
				Category      Category
				Param, Result string
				ByValue       bool
				Struct        string
			}{got.Category, got.Param, got.Result, got.ByValue, got.Struct}
			if diff := cmp.Diff(want, gotView); diff != "" {
				t.Errorf("coercion (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCall_UnknownAtom(t *testing.T) {
	s, rep := newSelector(t, Options{})
	got, err := s.Call(ctype.Named{Name: "GLrect"}, "SetShapesTexture", "source")
	if err != nil {
		t.Fatalf("lenient Call: %v", err)
	}
	if got.Category != CategoryPointer {
		t.Errorf("category: got %v, want pointer", got.Category)
	}
	if rep.Count(errors.KindUnknownAtom) != 1 {
		t.Errorf("unknown_atom diagnostics: got %d, want 1", rep.Count(errors.KindUnknownAtom))
	}

	strict, _ := newSelector(t, Options{Strict: true})
	_, err = strict.Call(ctype.Named{Name: "GLrect"}, "SetShapesTexture", "source")
	if !errors.Is(err, &errors.Error{Phase: errors.PhaseMarshal, Kind: errors.KindUnknownAtom}) {
		t.Errorf("strict Call: got %v, want marshal/unknown_atom", err)
	}
}

func TestCall_Variadic(t *testing.T) {
	s, _ := newSelector(t, Options{})
	if _, err := s.Call(ctype.Variadic{}); err == nil {
		t.Error("expected error for variadic")
	}
}

func TestPointerSize8(t *testing.T) {
	s, _ := newSelector(t, Options{PointerSize: 8})
	got, _ := s.Field(ctype.MustParse("long"))
	if got.Width != WidthI64 {
		t.Errorf("long width: got %v, want i64", got.Width)
	}
	got, _ = s.Field(ctype.MustParse("void *"))
	if got.Width != WidthU64 {
		t.Errorf("pointer width: got %v, want u64", got.Width)
	}
}

func TestField_PointerArray(t *testing.T) {
	s, _ := newSelector(t, Options{})
	got, err := s.Field(ctype.MustParse("char *[4]"))
	if err != nil {
		t.Fatal(err)
	}
	if got.GoType != "[4]uint32" || got.Elem.Strategy != StrategySized {
		t.Errorf("char *[4]: got %s with element %v", got.GoType, got.Elem.Strategy)
	}
}
