// Package wasmtest builds small guest modules that stand in for a native
// library in tests.
//
// A library is a guest module exporting one page of memory plus every
// function of an "env" host module, imported and re-exported unchanged.
// Callers see a regular guest module, so ExportedFunction and Memory work
// the same way they do for a compiled library.
package wasmtest

import (
	"context"
	"fmt"
	"reflect"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// Func is a host function exported by the library under Name. Fn is any Go
// function accepted by wazero's HostFunctionBuilder.WithFunc. Functions that
// touch memory should capture the library's Memory after Instantiate.
type Func struct {
	Name string
	Fn   any
}

// ImportModule is the module name the guest imports its functions from.
const ImportModule = "env"

// Instantiate builds and instantiates a library named name in r.
func Instantiate(ctx context.Context, r wazero.Runtime, name string, funcs ...Func) (api.Module, error) {
	builder := r.NewHostModuleBuilder(ImportModule)
	sigs := make([]signature, 0, len(funcs))
	for _, f := range funcs {
		sig, err := signatureOf(f.Fn)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		sigs = append(sigs, sig)
		builder = builder.NewFunctionBuilder().WithFunc(f.Fn).Export(f.Name)
	}
	if _, err := builder.Instantiate(ctx); err != nil {
		return nil, fmt.Errorf("instantiate %s: %w", ImportModule, err)
	}

	compiled, err := r.CompileModule(ctx, encode(funcs, sigs))
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}
	return r.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(name))
}

type signature struct {
	params  []api.ValueType
	results []api.ValueType
}

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	moduleType  = reflect.TypeOf((*api.Module)(nil)).Elem()
)

// signatureOf maps a Go function to its wasm signature. A leading
// context.Context and api.Module are skipped.
func signatureOf(fn any) (signature, error) {
	t := reflect.TypeOf(fn)
	if t == nil || t.Kind() != reflect.Func {
		return signature{}, fmt.Errorf("not a function: %T", fn)
	}

	var sig signature
	i := 0
	if i < t.NumIn() && t.In(i) == contextType {
		i++
	}
	if i < t.NumIn() && t.In(i) == moduleType {
		i++
	}
	for ; i < t.NumIn(); i++ {
		vt, err := valueType(t.In(i))
		if err != nil {
			return signature{}, err
		}
		sig.params = append(sig.params, vt)
	}
	for i := 0; i < t.NumOut(); i++ {
		vt, err := valueType(t.Out(i))
		if err != nil {
			return signature{}, err
		}
		sig.results = append(sig.results, vt)
	}
	return sig, nil
}

func valueType(t reflect.Type) (api.ValueType, error) {
	switch t.Kind() {
	case reflect.Int32, reflect.Uint32:
		return api.ValueTypeI32, nil
	case reflect.Int64, reflect.Uint64:
		return api.ValueTypeI64, nil
	case reflect.Float32:
		return api.ValueTypeF32, nil
	case reflect.Float64:
		return api.ValueTypeF64, nil
	}
	return 0, fmt.Errorf("unsupported wasm type %s", t)
}

// encode returns the binary guest module: one type and one import per
// function, one page of memory, and exports for the memory and every import.
func encode(funcs []Func, sigs []signature) []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	var types []byte
	types = uleb(types, uint32(len(sigs)))
	for _, sig := range sigs {
		types = append(types, 0x60)
		types = valueTypes(types, sig.params)
		types = valueTypes(types, sig.results)
	}
	out = section(out, 1, types)

	var imports []byte
	imports = uleb(imports, uint32(len(funcs)))
	for i, f := range funcs {
		imports = name(imports, ImportModule)
		imports = name(imports, f.Name)
		imports = append(imports, 0x00)
		imports = uleb(imports, uint32(i))
	}
	out = section(out, 2, imports)

	// One page, no maximum.
	out = section(out, 5, []byte{0x01, 0x00, 0x01})

	var exports []byte
	exports = uleb(exports, uint32(len(funcs)+1))
	exports = name(exports, "memory")
	exports = append(exports, 0x02, 0x00)
	for i, f := range funcs {
		exports = name(exports, f.Name)
		exports = append(exports, 0x00)
		exports = uleb(exports, uint32(i))
	}
	return section(out, 7, exports)
}

func section(out []byte, id byte, body []byte) []byte {
	out = append(out, id)
	out = uleb(out, uint32(len(body)))
	return append(out, body...)
}

func name(out []byte, s string) []byte {
	out = uleb(out, uint32(len(s)))
	return append(out, s...)
}

func valueTypes(out []byte, vts []api.ValueType) []byte {
	out = uleb(out, uint32(len(vts)))
	return append(out, vts...)
}

func uleb(out []byte, v uint32) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
			continue
		}
		return append(out, b)
	}
}
