package abi

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/abi-bindgen/errors"
)

func loadTestdata(t *testing.T) *Description {
	t.Helper()
	d, err := Load(context.Background(), filepath.Join("..", "testdata", "raylib_api.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return d
}

func TestLoad_Testdata(t *testing.T) {
	d := loadTestdata(t)

	if len(d.Structs) == 0 || len(d.Functions) == 0 {
		t.Fatalf("expected structs and functions, got %d/%d", len(d.Structs), len(d.Functions))
	}

	vec2 := d.Structs[0]
	want := Struct{
		Name:        "Vector2",
		Description: "Vector2, 2 components",
		Fields: []Field{
			{Name: "x", Type: "float", Description: "Vector x component"},
			{Name: "y", Type: "float", Description: "Vector y component"},
		},
	}
	if diff := cmp.Diff(want, vec2); diff != "" {
		t.Errorf("Vector2 mismatch (-want +got):\n%s", diff)
	}

	if len(d.Aliases) != 3 || d.Aliases[1].Name != "Texture2D" || d.Aliases[1].Type != "Texture" {
		t.Errorf("unexpected aliases: %+v", d.Aliases)
	}
	if len(d.Callbacks) != 1 || d.Callbacks[0].Name != "TraceLogCallback" {
		t.Errorf("unexpected callbacks: %+v", d.Callbacks)
	}

	var loadTexture *Function
	for i := range d.Functions {
		if d.Functions[i].Name == "LoadTexture" {
			loadTexture = &d.Functions[i]
		}
	}
	if loadTexture == nil {
		t.Fatal("LoadTexture not decoded")
	}
	if diff := cmp.Diff([]string{"fileName"}, loadTexture.Preload); diff != "" {
		t.Errorf("preload mismatch (-want +got):\n%s", diff)
	}
}

func TestDefine_Text(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"5.5"`, "5.5"},
		{`5`, "5"},
		{`3.141592653589793`, "3.141592653589793"},
		{`"CLITERAL(Color){ 200, 200, 200, 255 }"`, "CLITERAL(Color){ 200, 200, 200, 255 }"},
		{`""`, ""},
		{``, ""},
		{`null`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			d := Define{Value: []byte(tt.raw)}
			if got := d.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte(`{"structs": 5}`))
	if err == nil {
		t.Fatal("expected error")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseParse, Kind: errors.KindInvalidData}) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParse_IgnoresUnknownMembers(t *testing.T) {
	d, err := Parse([]byte(`{"structs": [{"name": "A", "fields": [], "packed": true}], "version": 2}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(d.Structs) != 1 || d.Structs[0].Name != "A" {
		t.Errorf("unexpected structs: %+v", d.Structs)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseParse, Kind: errors.KindNotFound}) {
		t.Fatalf("expected parse/not_found, got %v", err)
	}
}

func TestLoad_URL(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "testdata", "raylib_api.json"))
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/raylib_api.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	d, err := Load(context.Background(), srv.URL+"/raylib_api.json")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(d.Structs) != len(loadTestdata(t).Structs) {
		t.Errorf("remote and local descriptions differ")
	}

	_, err = Load(context.Background(), srv.URL+"/missing.json")
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseParse, Kind: errors.KindNotFound}) {
		t.Errorf("expected parse/not_found for 404, got %v", err)
	}
}

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Literal
		wantErr bool
	}{
		{
			name: "color",
			in:   "CLITERAL(Color){ 200, 200, 200, 255 }",
			want: Literal{Type: "Color", Values: []float64{200, 200, 200, 255}},
		},
		{
			name: "cast form",
			in:   "(Vector2){ 1.5f, -2 }",
			want: Literal{Type: "Vector2", Values: []float64{1.5, -2}},
		},
		{
			name:    "not a literal",
			in:      "5.5",
			wantErr: true,
		},
		{
			name:    "bad component",
			in:      "CLITERAL(Color){ 1, x, 3, 4 }",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLiteral(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
