package codegen

import (
	"fmt"
	"strings"

	"github.com/wippyai/abi-bindgen/internal/diag"
	"github.com/wippyai/abi-bindgen/layout"
	"github.com/wippyai/abi-bindgen/marshal"
	"github.com/wippyai/abi-bindgen/registry"
)

// Options controls emission.
type Options struct {
	// Package is the package clause of the generated file.
	Package string
	// Source names the description in the generated header.
	Source string
	// Skip lists functions that are not bound.
	Skip []string
}

// Emitter renders Go source for registry entries. Output order follows
// declaration order so generation is deterministic.
type Emitter struct {
	reg    *registry.Registry
	layout *layout.Calculator
	sel    *marshal.Selector
	rep    *diag.Reporter
	opts   Options
	skip   map[string]bool
}

// New creates an Emitter.
func New(reg *registry.Registry, calc *layout.Calculator, sel *marshal.Selector, rep *diag.Reporter, opts Options) *Emitter {
	if opts.Package == "" {
		opts.Package = "bindings"
	}
	skip := make(map[string]bool, len(opts.Skip))
	for _, name := range opts.Skip {
		skip[name] = true
	}
	return &Emitter{
		reg:    reg,
		layout: calc,
		sel:    sel,
		rep:    rep,
		opts:   opts,
		skip:   skip,
	}
}

// writer accumulates generated source.
type writer struct {
	strings.Builder
}

func (w *writer) line(format string, args ...any) {
	if len(args) > 0 {
		fmt.Fprintf(&w.Builder, format, args...)
	} else {
		w.WriteString(format)
	}
	w.WriteByte('\n')
}

func (w *writer) blank() {
	w.WriteByte('\n')
}
