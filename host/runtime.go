package host

import (
	"context"
	"sort"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	bindgen "github.com/wippyai/abi-bindgen"
	"github.com/wippyai/abi-bindgen/errors"
)

// FunctionResolver looks up exported functions. A guest api.Module
// satisfies it. wazero host modules panic on ExportedFunction; the Runtime
// turns that panic into an error, so pass the guest that imports them.
type FunctionResolver interface {
	ExportedFunction(name string) api.Function
}

// Default allocator export names, as emitted by emscripten builds.
const (
	DefaultMalloc = "malloc"
	DefaultFree   = "free"
)

type options struct {
	mem       bindgen.Memory
	alloc     bindgen.Allocator
	funcs     FunctionResolver
	preloader *Preloader
	malloc    string
	free      string
	name      string
}

// Option configures a Runtime.
type Option func(*options)

// WithMemory overrides the module's exported memory.
func WithMemory(mem bindgen.Memory) Option {
	return func(o *options) { o.mem = mem }
}

// WithAllocator overrides the module's malloc and free exports.
func WithAllocator(alloc bindgen.Allocator) Option {
	return func(o *options) { o.alloc = alloc }
}

// WithFunctions resolves native functions from r instead of the module.
func WithFunctions(r FunctionResolver) Option {
	return func(o *options) { o.funcs = r }
}

// WithPreloader enables staging of file-path arguments.
func WithPreloader(p *Preloader) Option {
	return func(o *options) { o.preloader = p }
}

// WithAllocatorExports renames the malloc and free exports.
func WithAllocatorExports(malloc, free string) Option {
	return func(o *options) {
		o.malloc = malloc
		o.free = free
	}
}

// WithName sets the module name used in error messages.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// Runtime binds generated code to one instantiated native library. It is
// not safe for concurrent use.
type Runtime struct {
	name      string
	mem       bindgen.Memory
	alloc     bindgen.Allocator
	funcs     FunctionResolver
	fnCache   map[string]api.Function
	preloader *Preloader
	log       *zap.Logger
}

// New binds to mod. mod may be nil when memory, allocator and functions are
// all supplied as options. ctx is used for allocator calls.
func New(ctx context.Context, mod api.Module, opts ...Option) (*Runtime, error) {
	o := options{malloc: DefaultMalloc, free: DefaultFree}
	for _, opt := range opts {
		opt(&o)
	}

	if mod != nil {
		if o.mem == nil {
			o.mem = WrapMemory(mod.Memory())
		}
		if o.funcs == nil {
			o.funcs = mod
		}
		if o.name == "" {
			o.name = mod.Name()
		}
	}
	if o.mem == nil {
		return nil, errors.NotInitialized(errors.PhaseRuntime, "memory")
	}
	if o.funcs == nil {
		return nil, errors.NotInitialized(errors.PhaseRuntime, "function resolver")
	}

	rt := &Runtime{
		name:      o.name,
		mem:       o.mem,
		alloc:     o.alloc,
		funcs:     o.funcs,
		fnCache:   make(map[string]api.Function),
		preloader: o.preloader,
		log:       Logger(),
	}

	if rt.alloc == nil {
		if err := rt.Check(o.malloc, o.free); err != nil {
			return nil, err
		}
		malloc, _ := rt.lookup(o.malloc)
		free, _ := rt.lookup(o.free)
		rt.alloc = WrapAllocator(ctx, malloc, free)
	}
	return rt, nil
}

// Memory returns the linear memory.
func (r *Runtime) Memory() bindgen.Memory { return r.mem }

// Allocator returns the allocator.
func (r *Runtime) Allocator() bindgen.Allocator { return r.alloc }

// Preloader returns the configured preloader, or nil.
func (r *Runtime) Preloader() *Preloader { return r.preloader }

// Check verifies that every named function is exported.
func (r *Runtime) Check(names ...string) error {
	var missing []string
	for _, name := range names {
		fn, err := r.lookup(name)
		if err != nil {
			return err
		}
		if fn == nil {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return errors.NewMissingExportsError(r.name, missing)
}

// lookup asks the resolver for name. A resolver that panics, such as a
// wazero host module, yields an error instead.
func (r *Runtime) lookup(name string) (fn api.Function, err error) {
	defer func() {
		if p := recover(); p != nil {
			fn = nil
			err = errors.New(errors.PhaseCall, errors.KindUnsupported).
				Path(name).
				Value(p).
				Detail("function resolver cannot look up exports: %v", p).
				Build()
		}
	}()
	return r.funcs.ExportedFunction(name), nil
}

// Function resolves an exported function.
func (r *Runtime) Function(name string) (api.Function, error) {
	if fn, ok := r.fnCache[name]; ok {
		return fn, nil
	}
	fn, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, errors.NotFound(errors.PhaseCall, "export", name)
	}
	r.fnCache[name] = fn
	return fn, nil
}

// Call invokes an exported function with raw slots.
func (r *Runtime) Call(ctx context.Context, name string, args ...uint64) ([]uint64, error) {
	fn, err := r.Function(name)
	if err != nil {
		return nil, err
	}
	results, err := fn.Call(ctx, args...)
	if err != nil {
		return nil, errors.New(errors.PhaseCall, errors.KindTrap).
			Path(name).
			Detail("native call failed").
			Cause(err).
			Build()
	}
	return results, nil
}

// NewStruct allocates an owning instance of size bytes. The memory is
// zeroed.
func (r *Runtime) NewStruct(size uint32) (Struct, error) {
	// malloc(0) may legally return NULL.
	n := max(size, 1)
	addr, err := r.alloc.Malloc(n)
	if err != nil {
		return Struct{}, err
	}
	if err := r.mem.Write(addr, make([]byte, n)); err != nil {
		_ = r.alloc.Free(addr)
		return Struct{}, err
	}
	return Struct{rt: r, addr: addr, size: size, owner: &ownership{}}, nil
}

// View wraps memory at addr without taking ownership.
func (r *Runtime) View(addr, size uint32) Struct {
	return Struct{rt: r, addr: addr, size: size}
}

// Free releases memory that the library allocated on the caller's behalf,
// or an owning struct instance.
func (r *Runtime) Free(p Pointer) error {
	if s, ok := p.(interface{ Release() error }); ok {
		return s.Release()
	}
	addr := AddressOf(p)
	if addr == 0 {
		return nil
	}
	return r.alloc.Free(addr)
}

// CString decodes a NUL-terminated string at addr.
func (r *Runtime) CString(addr uint32) (string, error) {
	return ReadCString(r.mem, addr)
}

// Frame returns a call frame for temporaries. Close it when the call returns.
func (r *Runtime) Frame() *Frame {
	f := framePool.Get().(*Frame)
	f.rt = r
	return f
}
