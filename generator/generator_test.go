package generator

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/wippyai/abi-bindgen/config"
	"github.com/wippyai/abi-bindgen/errors"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Input = filepath.Join("..", "testdata", "raylib_api.json")
	cfg.Package = "raylib"
	return cfg
}

func TestGenerate(t *testing.T) {
	g, err := Load(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	out, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if !bytes.HasPrefix(out, []byte("// Code generated by abi-bindgen from raylib_api.json. DO NOT EDIT.")) {
		t.Errorf("unexpected header: %.80s", out)
	}
	if !bytes.Contains(out, []byte("package raylib")) {
		t.Error("package clause missing")
	}

	again, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !bytes.Equal(out, again) {
		t.Error("output is not deterministic")
	}

	var unknown, unsupported int
	for _, d := range g.Diagnostics() {
		switch d.Kind {
		case errors.KindUnknownAtom:
			unknown++
		case errors.KindUnsupported:
			unsupported++
		}
	}
	if unknown == 0 {
		t.Error("expected an unknown atom diagnostic for GLrect")
	}
	if unsupported == 0 {
		t.Error("expected an unsupported diagnostic for TraceLog")
	}
}

func TestGenerate_AtomOption(t *testing.T) {
	cfg := testConfig(t)
	cfg.Strict = true
	cfg.Atoms = map[string]string{"GLrect": "unsigned int"}

	g, err := Load(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	out, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !bytes.Contains(out, []byte("source uint32")) {
		t.Error("GLrect not bound as uint32")
	}
}

func TestGenerate_Strict(t *testing.T) {
	cfg := testConfig(t)
	cfg.Strict = true

	g, err := Load(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := g.Generate(); err == nil {
		t.Fatal("expected strict generation to fail")
	}
}

func TestWrite(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output = filepath.Join(t.TempDir(), "raylib", "bindings_gen.go")

	g, err := Load(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := g.Write(); err != nil {
		t.Fatalf("Write: %v", err)
	}
	info, err := os.Stat(cfg.Output)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Error("empty output")
	}
}

func TestNew_NilDescription(t *testing.T) {
	if _, err := New(nil, nil); err == nil {
		t.Fatal("expected error")
	}
}
