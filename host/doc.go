// Package host is the runtime imported by generated bindings.
//
// A Runtime binds to one instantiated wasm build of a native library. It
// exposes the module's linear memory through the bindgen.Memory interface,
// allocates through the library's exported malloc and free, and invokes
// exports with api.Function.Call.
//
// Struct is the instance type embedded by every generated struct. Owning
// instances come from Runtime.NewStruct or from a struct-returning call and
// must be released; views come from Runtime.View or nested field access and
// must not be.
//
// A Frame collects the temporaries of one call (argument strings, the hidden
// return buffer) and frees them on Close:
//
//	f := rt.Frame()
//	defer f.Close()
//	p, err := f.CString(path)
//	...
//	ret, err := f.CallStruct(ctx, "LoadImage", SizeofImage, api.EncodeU32(p))
//
// Functions that read files from the module's filesystem run a Preloader
// first, which fetches each file and stages it in a VFS. DirFS roots that
// VFS in a host directory and mounts it into the module.
package host
