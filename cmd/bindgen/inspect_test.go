package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/abi-bindgen/config"
	"github.com/wippyai/abi-bindgen/generator"
)

func loadGenerator(t *testing.T) (*generator.Generator, *config.Config) {
	t.Helper()
	cfg := config.Default()
	cfg.Input = filepath.Join("..", "..", "testdata", "raylib_api.json")
	g, err := generator.Load(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return g, cfg
}

func find(entries []entry, name string) (entry, bool) {
	for _, e := range entries {
		if e.name == name {
			return e, true
		}
	}
	return entry{}, false
}

func TestBuildEntries(t *testing.T) {
	g, _ := loadGenerator(t)
	entries := buildEntries(g)

	tests := []struct {
		name    string
		kind    string
		summary string
	}{
		{"Vector2", "struct", "size 8,"},
		{"Camera3D", "struct", "size 44,"},
		{"Texture2D", "alias", "alias of Texture"},
		{"LoadTexture", "func", "LoadTexture(char *)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := find(entries, tt.name)
			if !ok {
				t.Fatalf("%s not listed", tt.name)
			}
			if e.kind != tt.kind {
				t.Errorf("got kind %q, want %q", e.kind, tt.kind)
			}
			if !strings.Contains(e.summary, tt.summary) {
				t.Errorf("got summary %q, want it to contain %q", e.summary, tt.summary)
			}
		})
	}

	load, _ := find(entries, "LoadTexture")
	if !strings.Contains(strings.Join(load.detail, "\n"), "(preloaded)") {
		t.Error("preloaded parameter not marked")
	}
}

func TestInspectModel_FilterAndSelect(t *testing.T) {
	g, cfg := loadGenerator(t)
	m := newInspectModel(cfg.Input, buildEntries(g))
	total := len(m.visible)

	for _, r := range "vector" {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	if len(m.visible) == 0 || len(m.visible) >= total {
		t.Fatalf("got %d visible entries of %d", len(m.visible), total)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.selected != 1 {
		t.Errorf("got selection %d, want 1", m.selected)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != stateDetail {
		t.Fatalf("got state %d, want detail", m.state)
	}
	if !strings.Contains(m.View(), "offset") {
		t.Error("detail view has no layout table")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != stateList {
		t.Errorf("got state %d, want list", m.state)
	}
}

func TestPrintSummary(t *testing.T) {
	g, cfg := loadGenerator(t)
	if _, err := g.Generate(); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	var buf bytes.Buffer
	printSummary(&buf, g, cfg, false)
	out := buf.String()

	for _, want := range []string{"-> stdout", "functions", "diagnostics", "SetShapesTexture.source"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary is missing %q:\n%s", want, out)
		}
	}
}
