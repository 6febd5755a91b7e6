// Package registry resolves an ABI description into canonical definitions.
//
// Type strings are parsed once into ctype values, aliases are expanded to
// the field list of their base struct, and configured atom aliases
// (GLenum -> unsigned int) are recorded so later stages can rewrite them.
package registry

import (
	"github.com/wippyai/abi-bindgen/abi"
	"github.com/wippyai/abi-bindgen/ctype"
	"github.com/wippyai/abi-bindgen/errors"
	"github.com/wippyai/abi-bindgen/internal/diag"
)

// Kind classifies a name referenced by a Named type.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindStruct
	KindCallback
	KindAtom
)

var kindNames = [...]string{
	KindUnknown:  "unknown",
	KindStruct:   "struct",
	KindCallback: "callback",
	KindAtom:     "atom",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Options tunes registry construction.
type Options struct {
	// Atoms maps extra type names to C scalar spellings.
	Atoms map[string]string
	// Preload adds file-path flags per function name. They are merged with
	// flags carried by the description.
	Preload map[string][]string
}

// Param is a resolved function parameter.
type Param struct {
	Name string
	Type ctype.Type
}

// Function is a resolved function declaration.
type Function struct {
	Name        string
	Description string
	Return      ctype.Type
	Params      []Param
	// Preload lists parameter names that carry file paths, in parameter order.
	Preload []string
}

// Variadic reports whether the last parameter is "...".
func (f *Function) Variadic() bool {
	if len(f.Params) == 0 {
		return false
	}
	_, ok := f.Params[len(f.Params)-1].Type.(ctype.Variadic)
	return ok
}

// PreloadParam reports whether the named parameter is a file-path input.
func (f *Function) PreloadParam(name string) bool {
	for _, p := range f.Preload {
		if p == name {
			return true
		}
	}
	return false
}

// Callback is a resolved function-pointer type.
type Callback struct {
	Name        string
	Description string
	Return      ctype.Type
	Params      []Param
}

// Registry holds canonical definitions. It is immutable after Build.
type Registry struct {
	structs   map[string]*ctype.Struct
	order     []string
	callbacks map[string]*Callback
	cbOrder   []string
	atoms     map[string]ctype.Atom
	functions []*Function
	rep       *diag.Reporter
}

// Build resolves desc. Data-integrity defects (unknown alias bases,
// duplicates, unparseable type strings) are reported to rep and do not fail
// the build. Invalid options do.
func Build(desc *abi.Description, opts Options, rep *diag.Reporter) (*Registry, error) {
	if desc == nil {
		return nil, errors.InvalidInput(errors.PhaseResolve, "nil description")
	}
	r := &Registry{
		structs:   make(map[string]*ctype.Struct),
		callbacks: make(map[string]*Callback),
		atoms:     make(map[string]ctype.Atom),
		rep:       rep,
	}

	for name, spelling := range opts.Atoms {
		atom, ok := ctype.LookupAtom(spelling)
		if !ok {
			return nil, errors.New(errors.PhaseConfig, errors.KindUnknownAtom).
				Path("atoms", name).
				CType(spelling).
				Detail("atom alias %q maps to unknown C type %q", name, spelling).
				Build()
		}
		r.atoms[name] = atom
	}
	for _, e := range desc.Enums {
		if _, ok := r.atoms[e.Name]; !ok {
			r.atoms[e.Name] = ctype.AtomInt
		}
	}

	for _, s := range desc.Structs {
		if r.duplicate(s.Name) {
			continue
		}
		def := &ctype.Struct{
			Name:        s.Name,
			Description: s.Description,
			Fields:      make([]ctype.Field, 0, len(s.Fields)),
		}
		for _, f := range s.Fields {
			def.Fields = append(def.Fields, ctype.Field{
				Name:        f.Name,
				Type:        r.parse(f.Type, s.Name, f.Name),
				Description: f.Description,
			})
		}
		r.add(def)
	}

	for _, cb := range desc.Callbacks {
		if r.duplicate(cb.Name) {
			continue
		}
		c := &Callback{
			Name:        cb.Name,
			Description: cb.Description,
			Return:      r.parse(cb.ReturnType, cb.Name, "return"),
		}
		for _, p := range cb.Params {
			c.Params = append(c.Params, Param{Name: p.Name, Type: r.parse(p.Type, cb.Name, p.Name)})
		}
		r.callbacks[cb.Name] = c
		r.cbOrder = append(r.cbOrder, cb.Name)
	}

	for _, a := range desc.Aliases {
		r.alias(a)
	}

	for _, fn := range desc.Functions {
		f := &Function{
			Name:        fn.Name,
			Description: fn.Description,
			Return:      r.parse(fn.ReturnType, fn.Name, "return"),
		}
		flagged := make(map[string]bool)
		for _, p := range fn.Preload {
			flagged[p] = true
		}
		for _, p := range opts.Preload[fn.Name] {
			flagged[p] = true
		}
		for _, p := range fn.Params {
			f.Params = append(f.Params, Param{Name: p.Name, Type: r.parse(p.Type, fn.Name, p.Name)})
			if flagged[p.Name] {
				f.Preload = append(f.Preload, p.Name)
				delete(flagged, p.Name)
			}
		}
		for _, name := range append(append([]string(nil), fn.Preload...), opts.Preload[fn.Name]...) {
			if !flagged[name] {
				continue
			}
			delete(flagged, name)
			rep.Report(errors.New(errors.PhaseResolve, errors.KindNotFound).
				Path(fn.Name, name).
				Detail("preload parameter %q not declared by %s", name, fn.Name).
				Build())
		}
		r.functions = append(r.functions, f)
	}

	return r, nil
}

func (r *Registry) alias(a abi.Alias) {
	if r.duplicate(a.Name) {
		return
	}
	base := r.parse(a.Type, a.Name)
	named, ok := base.(ctype.Named)
	if !ok {
		if prim, ok := base.(ctype.Primitive); ok {
			r.atoms[a.Name] = prim.Atom
			return
		}
		r.rep.Report(errors.Unsupported(errors.PhaseResolve, []string{a.Name}, "alias of "+base.String()))
		r.add(&ctype.Struct{Name: a.Name, Description: a.Description, Alias: base.String()})
		return
	}
	if atom, ok := r.atoms[named.Name]; ok {
		r.atoms[a.Name] = atom
		return
	}

	def := &ctype.Struct{
		Name:        a.Name,
		Description: a.Description,
		Alias:       named.Name,
	}
	if target, ok := r.structs[named.Name]; ok {
		def.Fields = append([]ctype.Field(nil), target.Fields...)
	} else {
		r.rep.Report(errors.UnresolvedType([]string{a.Name}, named.Name))
	}
	r.add(def)
}

func (r *Registry) add(def *ctype.Struct) {
	r.structs[def.Name] = def
	r.order = append(r.order, def.Name)
}

func (r *Registry) duplicate(name string) bool {
	_, isStruct := r.structs[name]
	_, isCallback := r.callbacks[name]
	if !isStruct && !isCallback {
		return false
	}
	r.rep.Report(errors.New(errors.PhaseResolve, errors.KindDuplicate).
		Path(name).
		Detail("duplicate declaration %q, keeping the first", name).
		Build())
	return true
}

// parse converts a type string, degrading to a Named placeholder that later
// stages treat as unknown.
func (r *Registry) parse(spelling string, path ...string) ctype.Type {
	t, err := ctype.Parse(spelling)
	if err != nil {
		r.rep.Report(errors.New(errors.PhaseResolve, errors.KindInvalidData).
			Path(path...).
			CType(spelling).
			Detail("unparseable type %q", spelling).
			Cause(err).
			Build())
		return ctype.Named{Name: spelling}
	}
	return t
}

// Lookup returns the canonical struct for name.
func (r *Registry) Lookup(name string) (*ctype.Struct, bool) {
	s, ok := r.structs[name]
	return s, ok
}

// Structs returns all structs in declaration order, aliases after structs.
func (r *Registry) Structs() []*ctype.Struct {
	out := make([]*ctype.Struct, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.structs[name])
	}
	return out
}

// Callbacks returns callback types in declaration order.
func (r *Registry) Callbacks() []*Callback {
	out := make([]*Callback, 0, len(r.cbOrder))
	for _, name := range r.cbOrder {
		out = append(out, r.callbacks[name])
	}
	return out
}

// Functions returns functions in declaration order.
func (r *Registry) Functions() []*Function {
	return r.functions
}

// Kind classifies name.
func (r *Registry) Kind(name string) Kind {
	if _, ok := r.structs[name]; ok {
		return KindStruct
	}
	if _, ok := r.callbacks[name]; ok {
		return KindCallback
	}
	if _, ok := r.atoms[name]; ok {
		return KindAtom
	}
	return KindUnknown
}

// Resolve rewrites Named references to atom aliases into primitives,
// descending through pointers and arrays. Struct, callback and unknown names
// are left as is.
func (r *Registry) Resolve(t ctype.Type) ctype.Type {
	switch v := t.(type) {
	case ctype.Named:
		if atom, ok := r.atoms[v.Name]; ok {
			return ctype.Primitive{Atom: atom}
		}
	case ctype.Pointer:
		return ctype.Pointer{Elem: r.Resolve(v.Elem)}
	case ctype.Array:
		return ctype.Array{Elem: r.Resolve(v.Elem), Len: v.Len}
	}
	return t
}
