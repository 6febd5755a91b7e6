package host

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"
)

// Frame tracks temporaries allocated for one native call: argument strings
// and other scratch buffers. Close frees them.
type Frame struct {
	rt     *Runtime
	allocs []uint32
}

var framePool = sync.Pool{
	New: func() any {
		return &Frame{allocs: make([]uint32, 0, 8)}
	},
}

const maxPooledFrameCapacity = 128

// Alloc allocates size bytes that live until Close.
func (f *Frame) Alloc(size uint32) (uint32, error) {
	addr, err := f.rt.alloc.Malloc(max(size, 1))
	if err != nil {
		return 0, err
	}
	f.allocs = append(f.allocs, addr)
	return addr, nil
}

// CString copies s into linear memory with a terminating NUL.
func (f *Frame) CString(s string) (uint32, error) {
	n := uint32(len(s)) + 1
	addr, err := f.Alloc(n)
	if err != nil {
		return 0, err
	}
	buf := make([]byte, n)
	copy(buf, s)
	if err := f.rt.mem.Write(addr, buf); err != nil {
		return 0, err
	}
	return addr, nil
}

// Bool encodes a C bool argument.
func (f *Frame) Bool(b bool) uint64 {
	return EncodeBool(b)
}

// Pointer encodes a pointer argument. nil is NULL.
func (f *Frame) Pointer(p Pointer) uint64 {
	return api.EncodeU32(AddressOf(p))
}

// Call invokes name.
func (f *Frame) Call(ctx context.Context, name string, args ...uint64) ([]uint64, error) {
	return f.rt.Call(ctx, name, args...)
}

// CallStruct invokes a function that returns a struct by value. The caller
// side allocates an owning result of size bytes and passes its address as
// the leading argument. On failure the result is released.
func (f *Frame) CallStruct(ctx context.Context, name string, size uint32, args ...uint64) (Struct, error) {
	ret, err := f.rt.NewStruct(size)
	if err != nil {
		return Struct{}, err
	}
	slots := make([]uint64, 0, len(args)+1)
	slots = append(slots, api.EncodeU32(ret.Address()))
	slots = append(slots, args...)
	if _, err := f.rt.Call(ctx, name, slots...); err != nil {
		if rerr := ret.Release(); rerr != nil {
			f.rt.log.Debug("release after failed call", zap.String("function", name), zap.Error(rerr))
		}
		return Struct{}, err
	}
	return ret, nil
}

// Count returns the number of live temporaries.
func (f *Frame) Count() int {
	return len(f.allocs)
}

// Close frees all temporaries and returns the frame to the pool. The frame
// must not be used afterwards.
func (f *Frame) Close() {
	for _, addr := range f.allocs {
		if err := f.rt.alloc.Free(addr); err != nil {
			f.rt.log.Debug("free temporary", zap.Uint32("addr", addr), zap.Error(err))
		}
	}
	if cap(f.allocs) > maxPooledFrameCapacity {
		return
	}
	f.allocs = f.allocs[:0]
	f.rt = nil
	framePool.Put(f)
}
