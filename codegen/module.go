package codegen

import (
	"sort"

	"github.com/wippyai/abi-bindgen/abi"
	"github.com/wippyai/abi-bindgen/errors"
)

// bindingsMethods are declared on Bindings by every generated file.
var bindingsMethods = []string{"Runtime", "Free", "Stage", "Check", "Symbols", "ExportTo"}

// Module renders the complete bindings file for desc. The output still
// needs gofmt-style formatting.
func (e *Emitter) Module(desc *abi.Description) (string, error) {
	if desc == nil {
		return "", errors.InvalidInput(errors.PhaseEmit, "nil description")
	}

	var w writer
	source := e.opts.Source
	if source == "" {
		source = "an ABI description"
	}
	w.line("// Code generated by abi-bindgen from %s. DO NOT EDIT.", source)
	w.blank()
	w.line("package %s", e.opts.Package)
	w.blank()
	w.line("import (")
	w.line("\t\"context\"")
	w.blank()
	w.line("\t\"github.com/tetratelabs/wazero/api\"")
	w.blank()
	w.line("\t\"github.com/wippyai/abi-bindgen/host\"")
	w.line(")")
	w.blank()

	e.prelude(&w)

	methods := make(map[string]bool)
	for _, m := range bindingsMethods {
		methods[m] = true
	}
	taken := make(map[string]bool)
	for _, def := range e.reg.Structs() {
		name := exportName(def.Name)
		taken[name] = true
		taken[name+"Values"] = true
		taken["Sizeof"+name] = true
	}
	for _, cb := range e.reg.Callbacks() {
		taken[exportName(cb.Name)] = true
	}
	taken["Bindings"] = true
	taken["New"] = true

	syms := e.constants(&w, desc, taken)
	syms = append(syms, e.colors(&w, desc, taken)...)

	for _, cb := range e.reg.Callbacks() {
		name := exportName(cb.Name)
		w.WriteString(doc(name, cb.Description))
		if cb.Description != "" {
			w.line("//")
		}
		w.line("// A function pointer, passed as a table index.")
		w.line("type %s = host.Addr", name)
		w.blank()
	}

	for _, def := range e.reg.Structs() {
		code, err := e.Struct(def)
		if err != nil {
			return "", err
		}
		w.WriteString(code)
		name := exportName(def.Name)
		methods["New"+name] = true
		methods["New"+name+"At"] = true
		methods[name+"At"] = true
		syms = append(syms, symbol{key: def.Name, expr: "b.New" + name})
	}

	var bound []string
	for _, fn := range e.reg.Functions() {
		name := exportName(fn.Name)
		if methods[name] {
			e.rep.Report(errors.New(errors.PhaseEmit, errors.KindDuplicate).
				Path(fn.Name).
				Detail("method %s already declared on Bindings", name).
				Build())
			continue
		}
		code, ok, err := e.Function(fn)
		if err != nil {
			return "", err
		}
		if !ok {
			continue
		}
		methods[name] = true
		w.WriteString(code)
		bound = append(bound, fn.Name)
		syms = append(syms, symbol{key: fn.Name, expr: "b." + name})
	}

	e.check(&w, bound)
	e.symbols(&w, syms)
	return w.String(), nil
}

func (e *Emitter) prelude(w *writer) {
	w.line("// Bindings exposes the native library to Go. Create it with New.")
	w.line("type Bindings struct {")
	w.line("\trt *host.Runtime")
	w.line("}")
	w.blank()
	w.line("// New binds the generated API to rt. Nothing is installed globally;")
	w.line("// use ExportTo to publish the symbols into a scope.")
	w.line("func New(rt *host.Runtime) *Bindings {")
	w.line("\treturn &Bindings{rt: rt}")
	w.line("}")
	w.blank()
	w.line("// Runtime returns the underlying runtime.")
	w.line("func (b *Bindings) Runtime() *host.Runtime {")
	w.line("\treturn b.rt")
	w.line("}")
	w.blank()
	w.line("// Free releases an owning struct instance, or a block the library")
	w.line("// allocated and handed to the caller.")
	w.line("func (b *Bindings) Free(p host.Pointer) error {")
	w.line("\treturn b.rt.Free(p)")
	w.line("}")
	w.blank()
	w.line("// Stage fetches remote and writes it to target in the library's filesystem.")
	w.line("func (b *Bindings) Stage(ctx context.Context, remote, target string) error {")
	w.line("\treturn b.rt.Stage(ctx, remote, target)")
	w.line("}")
	w.blank()
}

func (e *Emitter) check(w *writer, bound []string) {
	names := append([]string(nil), bound...)
	sort.Strings(names)
	w.line("// Check reports every bound function the module does not export.")
	w.line("func (b *Bindings) Check() error {")
	if len(names) == 0 {
		w.line("\treturn nil")
		w.line("}")
		w.blank()
		return
	}
	w.line("\treturn b.rt.Check(")
	for _, n := range names {
		w.line("\t\t%q,", n)
	}
	w.line("\t)")
	w.line("}")
	w.blank()
}

func (e *Emitter) symbols(w *writer, syms []symbol) {
	w.line("// Symbols returns every bound entity keyed by its C name. Structs map to")
	w.line("// their constructors.")
	w.line("func (b *Bindings) Symbols() map[string]any {")
	w.line("\treturn map[string]any{")
	seen := make(map[string]bool)
	syms = append([]symbol{{"Free", "b.Free"}, {"Stage", "b.Stage"}}, syms...)
	for _, s := range syms {
		if seen[s.key] {
			continue
		}
		seen[s.key] = true
		w.line("\t\t%q: %s,", s.key, s.expr)
	}
	w.line("\t}")
	w.line("}")
	w.blank()
	w.line("// ExportTo copies Symbols into scope, overwriting existing keys.")
	w.line("func (b *Bindings) ExportTo(scope map[string]any) {")
	w.line("\tfor k, v := range b.Symbols() {")
	w.line("\t\tscope[k] = v")
	w.line("\t}")
	w.line("}")
}
