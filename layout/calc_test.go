package layout

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

func newCalculator(t *testing.T, desc *abi.Description, policy Policy) (*Calculator, *diag.Reporter) {
	t.Helper()
	rep := diag.New(nil)
	reg, err := registry.Build(desc, registry.Options{}, rep)
	if err != nil {
		t.Fatalf("registry.Build: %v", err)
	}
	return New(reg, policy, rep), rep
}

func testdataCalculator(t *testing.T, policy Policy) (*Calculator, *diag.Reporter) {
	t.Helper()
	desc, err := abi.Load(context.Background(), "../testdata/raylib_api.json")
	if err != nil {
		t.Fatalf("load testdata: %v", err)
	}
	return newCalculator(t, desc, policy)
}

func offsetsOf(info Info) []uint32 {
	out := make([]uint32, 0, len(info.Offsets))
	for _, f := range info.Offsets {
		out = append(out, f.Offset)
	}
	return out
}

func TestCalculatePrimitives(t *testing.T) {
	c, _ := newCalculator(t, &abi.Description{}, DefaultPolicy())

	tests := []struct {
		typ  string
		size uint32
	}{
		{"bool", 1},
		{"char", 1},
		{"unsigned char", 1},
		{"short", 2},
		{"unsigned short", 2},
		{"int", 4},
		{"unsigned int", 4},
		{"float", 4},
		{"long", 4},
		{"unsigned long", 4},
		{"long long", 8},
		{"double", 8},
		{"void *", 4},
		{"const char *", 4},
		{"float[4]", 16},
		{"char[32]", 32},
		{"int[2][3]", 24},
	}

	for _, tc := range tests {
		t.Run(tc.typ, func(t *testing.T) {
			if got := c.SizeOf(ctype.MustParse(tc.typ)); got != tc.size {
				t.Errorf("size: got %d, want %d", got, tc.size)
			}
		})
	}
}

func TestPointerSize(t *testing.T) {
	c, _ := newCalculator(t, &abi.Description{}, Policy{PointerSize: 8})
	if got := c.SizeOf(ctype.MustParse("char *")); got != 8 {
		t.Errorf("pointer: got %d, want 8", got)
	}
	if got := c.SizeOf(ctype.MustParse("long")); got != 8 {
		t.Errorf("long: got %d, want 8", got)
	}
}

func TestPackedLayout(t *testing.T) {
	c, rep := testdataCalculator(t, DefaultPolicy())

	tests := []struct {
		name    string
		size    uint32
		offsets []uint32
	}{
		{"Vector2", 8, []uint32{0, 4}},
		{"Vector3", 12, []uint32{0, 4, 8}},
		{"Color", 4, []uint32{0, 1, 2, 3}},
		{"Image", 20, []uint32{0, 4, 8, 12, 16}},
		{"Camera3D", 44, []uint32{0, 12, 24, 36, 40}},
		{"BoneInfo", 36, []uint32{0, 32}},
		{"FilePathList", 12, []uint32{0, 4, 8}},
		{"GlyphInfo", 36, []uint32{0, 4, 8, 12, 16}},
		{"AutomationEvent", 24, []uint32{0, 4, 8}},
		{"Camera", 44, []uint32{0, 12, 24, 36, 40}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info, ok := c.Layout(tc.name)
			if !ok {
				t.Fatalf("%s not found", tc.name)
			}
			if info.Size != tc.size {
				t.Errorf("size: got %d, want %d", info.Size, tc.size)
			}
			if diff := cmp.Diff(tc.offsets, offsetsOf(info)); diff != "" {
				t.Errorf("offsets (-want +got):\n%s", diff)
			}
		})
	}

	if rep.Len() != 0 {
		t.Errorf("unexpected diagnostics: %v", rep.Items())
	}
}

func TestPackedOffsetsAreRunningSums(t *testing.T) {
	c, _ := testdataCalculator(t, DefaultPolicy())
	for _, def := range c.reg.Structs() {
		info, _ := c.Layout(def.Name)
		var sum uint32
		for i, f := range def.Fields {
			if info.Offsets[i].Offset != sum {
				t.Errorf("%s.%s: got offset %d, want %d", def.Name, f.Name, info.Offsets[i].Offset, sum)
			}
			sum += c.SizeOf(f.Type)
		}
		if info.Size != sum {
			t.Errorf("%s: got size %d, want %d", def.Name, info.Size, sum)
		}
	}
}

func TestAliasLayoutMatchesBase(t *testing.T) {
	c, _ := testdataCalculator(t, DefaultPolicy())
	for alias, base := range map[string]string{"Texture2D": "Texture", "Quaternion": "Vector4", "Camera": "Camera3D"} {
		a, _ := c.Layout(alias)
		b, _ := c.Layout(base)
		if diff := cmp.Diff(b, a); diff != "" {
			t.Errorf("%s differs from %s (-base +alias):\n%s", alias, base, diff)
		}
	}
}

func TestArraySize(t *testing.T) {
	c, _ := testdataCalculator(t, DefaultPolicy())
	for _, n := range []uint32{1, 2, 7} {
		arr := ctype.Array{Elem: ctype.Named{Name: "Vector3"}, Len: n}
		if got, want := c.SizeOf(arr), n*12; got != want {
			t.Errorf("Vector3[%d]: got %d, want %d", n, got, want)
		}
	}
}

func TestUnknownAtom(t *testing.T) {
	c, rep := newCalculator(t, &abi.Description{
		Structs: []abi.Struct{{
			Name: "Wrapper",
			Fields: []abi.Field{
				{Name: "handle", Type: "GLuint"},
				{Name: "count", Type: "int"},
			},
		}},
	}, DefaultPolicy())

	if got := c.SizeOf(ctype.Named{Name: "GLuint"}); got != 0 {
		t.Errorf("size: got %d, want 0", got)
	}
	info, _ := c.Layout("Wrapper")
	if info.Size != 4 {
		t.Errorf("Wrapper size: got %d, want 4", info.Size)
	}
	if diff := cmp.Diff([]uint32{0, 0}, offsetsOf(info)); diff != "" {
		t.Errorf("offsets (-want +got):\n%s", diff)
	}
	if rep.Count(errors.KindUnknownAtom) == 0 {
		t.Error("expected an unknown_atom diagnostic")
	}
}

func TestNaturalAlignment(t *testing.T) {
	c, _ := newCalculator(t, &abi.Description{
		Structs: []abi.Struct{
			{Name: "Mixed", Fields: []abi.Field{
				{Name: "a", Type: "unsigned char"},
				{Name: "b", Type: "unsigned int"},
				{Name: "c", Type: "unsigned char"},
			}},
			{Name: "Wide", Fields: []abi.Field{
				{Name: "flag", Type: "bool"},
				{Name: "value", Type: "double"},
			}},
			{Name: "Outer", Fields: []abi.Field{
				{Name: "tag", Type: "char"},
				{Name: "inner", Type: "Mixed"},
			}},
		},
	}, Policy{PointerSize: 4, Alignment: AlignNatural})

	tests := []struct {
		name    string
		size    uint32
		align   uint32
		offsets []uint32
	}{
		{"Mixed", 12, 4, []uint32{0, 4, 8}},
		{"Wide", 16, 8, []uint32{0, 8}},
		{"Outer", 16, 4, []uint32{0, 4}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info, _ := c.Layout(tc.name)
			if info.Size != tc.size {
				t.Errorf("size: got %d, want %d", info.Size, tc.size)
			}
			if info.Align != tc.align {
				t.Errorf("align: got %d, want %d", info.Align, tc.align)
			}
			if diff := cmp.Diff(tc.offsets, offsetsOf(info)); diff != "" {
				t.Errorf("offsets (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRecursiveStruct(t *testing.T) {
	c, rep := newCalculator(t, &abi.Description{
		Structs: []abi.Struct{{Name: "Node", Fields: []abi.Field{
			{Name: "value", Type: "int"},
			{Name: "next", Type: "Node"},
		}}},
	}, DefaultPolicy())

	info, _ := c.Layout("Node")
	if info.Size != 0 {
		t.Errorf("size: got %d, want 0", info.Size)
	}
	if rep.Count(errors.KindInvalidData) != 1 {
		t.Errorf("invalid_data diagnostics: got %d, want 1", rep.Count(errors.KindInvalidData))
	}
}

func TestParseAlignment(t *testing.T) {
	for in, want := range map[string]Alignment{"": AlignPacked, "packed": AlignPacked, "Natural": AlignNatural} {
		got, err := ParseAlignment(in)
		if err != nil || got != want {
			t.Errorf("ParseAlignment(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseAlignment("pragma"); err == nil {
		t.Error("expected error")
	}
}

func TestAlignTo(t *testing.T) {
	tests := []struct{ off, align, want uint32 }{
		{0, 4, 0}, {1, 4, 4}, {4, 4, 4}, {5, 8, 8}, {3, 0, 3}, {3, 1, 3},
	}
	for _, tc := range tests {
		if got := AlignTo(tc.off, tc.align); got != tc.want {
			t.Errorf("AlignTo(%d, %d): got %d, want %d", tc.off, tc.align, got, tc.want)
		}
	}
}
