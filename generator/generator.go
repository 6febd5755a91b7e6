// Package generator turns an ABI description and a config into one
// formatted Go source file.
package generator

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/tools/imports"

	"github.com/wippyai/abi-bindgen/abi"
	"github.com/wippyai/abi-bindgen/codegen"
	"github.com/wippyai/abi-bindgen/config"
	"github.com/wippyai/abi-bindgen/errors"
	"github.com/wippyai/abi-bindgen/internal/diag"
	"github.com/wippyai/abi-bindgen/layout"
	"github.com/wippyai/abi-bindgen/marshal"
	"github.com/wippyai/abi-bindgen/registry"
)

// Generator holds the resolved model for one description.
type Generator struct {
	desc   *abi.Description
	cfg    *config.Config
	rep    *diag.Reporter
	reg    *registry.Registry
	layout *layout.Calculator
	sel    *marshal.Selector
}

// New resolves desc under cfg. Recoverable defects are collected as
// diagnostics; see Diagnostics.
func New(desc *abi.Description, cfg *config.Config) (*Generator, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	rep := diag.New(Logger())
	reg, err := registry.Build(desc, cfg.RegistryOptions(), rep)
	if err != nil {
		return nil, err
	}
	return &Generator{
		desc:   desc,
		cfg:    cfg,
		rep:    rep,
		reg:    reg,
		layout: layout.New(reg, cfg.Policy(), rep),
		sel:    marshal.New(reg, cfg.MarshalOptions(), rep),
	}, nil
}

// Load fetches cfg.Input and resolves it.
func Load(ctx context.Context, cfg *config.Config) (*Generator, error) {
	desc, err := abi.Load(ctx, cfg.Input)
	if err != nil {
		return nil, err
	}
	return New(desc, cfg)
}

// Registry returns the resolved types.
func (g *Generator) Registry() *registry.Registry {
	return g.reg
}

// Layout returns the layout calculator bound to the configured policy.
func (g *Generator) Layout() *layout.Calculator {
	return g.layout
}

// Diagnostics returns everything reported so far, in report order.
func (g *Generator) Diagnostics() []*errors.Error {
	return g.rep.Items()
}

func (g *Generator) filename() string {
	if g.cfg.Output != "" {
		return g.cfg.Output
	}
	return "bindings_gen.go"
}

// Generate renders and formats the bindings file.
func (g *Generator) Generate() ([]byte, error) {
	e := codegen.New(g.reg, g.layout, g.sel, g.rep, codegen.Options{
		Package: g.cfg.Package,
		Source:  path.Base(filepath.ToSlash(g.cfg.Input)),
		Skip:    g.cfg.Skip,
	})
	src, err := e.Module(g.desc)
	if err != nil {
		return nil, err
	}

	out, err := imports.Process(g.filename(), []byte(src), &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return nil, errors.Wrap(errors.PhaseEmit, errors.KindInvalidData, err, "generated code does not format")
	}

	Logger().Debug("generated bindings",
		zap.String("output", g.filename()),
		zap.Int("bytes", len(out)),
		zap.Int("structs", len(g.reg.Structs())),
		zap.Int("functions", len(g.reg.Functions())),
		zap.Int("diagnostics", g.rep.Len()),
	)
	return out, nil
}

// Write generates and writes the output file, creating its directory.
func (g *Generator) Write() error {
	out, err := g.Generate()
	if err != nil {
		return err
	}
	name := g.filename()
	if dir := filepath.Dir(name); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.PhaseEmit, errors.KindFilesystem, err, "create "+dir)
		}
	}
	if err := os.WriteFile(name, out, 0o644); err != nil {
		return errors.Wrap(errors.PhaseEmit, errors.KindFilesystem, err, "write "+name)
	}
	return nil
}
