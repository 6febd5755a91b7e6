package host

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	bindgen "github.com/wippyai/abi-bindgen"
	"github.com/wippyai/abi-bindgen/errors"
)

// WrapMemory wraps a wazero api.Memory to implement bindgen.Memory.
func WrapMemory(mem api.Memory) bindgen.Memory {
	if mem == nil {
		return nil
	}
	return &Wrapper{Mem: mem}
}

// WrapAllocator wraps exported malloc and free functions to implement
// bindgen.Allocator.
func WrapAllocator(ctx context.Context, malloc, free api.Function) bindgen.Allocator {
	if malloc == nil || free == nil {
		return nil
	}
	return &AllocatorWrapper{Ctx: ctx, MallocFn: malloc, FreeFn: free}
}

// Wrapper adapts wazero api.Memory to the bindgen.Memory interface.
type Wrapper struct {
	Mem api.Memory
}

// Size returns the current memory size in bytes.
func (m *Wrapper) Size() uint32 {
	return m.Mem.Size()
}

// Read reads bytes from memory. The returned slice aliases linear memory.
func (m *Wrapper) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.Mem.Read(offset, length)
	if !ok {
		return nil, errors.OutOfBounds(offset, length)
	}
	return data, nil
}

// Write writes bytes to memory.
func (m *Wrapper) Write(offset uint32, data []byte) error {
	if !m.Mem.Write(offset, data) {
		return errors.OutOfBounds(offset, uint32(len(data)))
	}
	return nil
}

// ReadU8 reads a uint8 at offset.
func (m *Wrapper) ReadU8(offset uint32) (uint8, error) {
	v, ok := m.Mem.ReadByte(offset)
	if !ok {
		return 0, errors.OutOfBounds(offset, 1)
	}
	return v, nil
}

// ReadU16 reads a little-endian uint16 at offset.
func (m *Wrapper) ReadU16(offset uint32) (uint16, error) {
	v, ok := m.Mem.ReadUint16Le(offset)
	if !ok {
		return 0, errors.OutOfBounds(offset, 2)
	}
	return v, nil
}

// ReadU32 reads a little-endian uint32 at offset.
func (m *Wrapper) ReadU32(offset uint32) (uint32, error) {
	v, ok := m.Mem.ReadUint32Le(offset)
	if !ok {
		return 0, errors.OutOfBounds(offset, 4)
	}
	return v, nil
}

// ReadU64 reads a little-endian uint64 at offset.
func (m *Wrapper) ReadU64(offset uint32) (uint64, error) {
	v, ok := m.Mem.ReadUint64Le(offset)
	if !ok {
		return 0, errors.OutOfBounds(offset, 8)
	}
	return v, nil
}

// WriteU8 writes a uint8 at offset.
func (m *Wrapper) WriteU8(offset uint32, value uint8) error {
	if !m.Mem.WriteByte(offset, value) {
		return errors.OutOfBounds(offset, 1)
	}
	return nil
}

// WriteU16 writes a little-endian uint16 at offset.
func (m *Wrapper) WriteU16(offset uint32, value uint16) error {
	if !m.Mem.WriteUint16Le(offset, value) {
		return errors.OutOfBounds(offset, 2)
	}
	return nil
}

// WriteU32 writes a little-endian uint32 at offset.
func (m *Wrapper) WriteU32(offset uint32, value uint32) error {
	if !m.Mem.WriteUint32Le(offset, value) {
		return errors.OutOfBounds(offset, 4)
	}
	return nil
}

// WriteU64 writes a little-endian uint64 at offset.
func (m *Wrapper) WriteU64(offset uint32, value uint64) error {
	if !m.Mem.WriteUint64Le(offset, value) {
		return errors.OutOfBounds(offset, 8)
	}
	return nil
}

// AllocatorWrapper adapts the library's exported malloc and free to
// bindgen.Allocator.
type AllocatorWrapper struct {
	Ctx      context.Context
	MallocFn api.Function
	FreeFn   api.Function
}

// Malloc allocates size bytes. A NULL result is an allocation error.
func (a *AllocatorWrapper) Malloc(size uint32) (uint32, error) {
	results, err := a.MallocFn.Call(a.Ctx, api.EncodeU32(size))
	if err != nil {
		return 0, errors.AllocationFailed(size, err)
	}
	if len(results) == 0 {
		return 0, errors.AllocationFailed(size, nil)
	}
	ptr := api.DecodeU32(results[0])
	if ptr == 0 {
		return 0, errors.AllocationFailed(size, nil)
	}
	return ptr, nil
}

// Free releases a block returned by Malloc.
func (a *AllocatorWrapper) Free(ptr uint32) error {
	if _, err := a.FreeFn.Call(a.Ctx, api.EncodeU32(ptr)); err != nil {
		return errors.Wrap(errors.PhaseRuntime, errors.KindAllocation, err, "free failed")
	}
	return nil
}

// maxCString bounds the scan for a terminating NUL.
const maxCString = 1 << 24

// ReadCString reads a NUL-terminated string at addr. NULL reads as "".
func ReadCString(mem bindgen.Memory, addr uint32) (string, error) {
	if addr == 0 {
		return "", nil
	}
	limit := uint32(maxCString)
	if sizer, ok := mem.(bindgen.MemorySizer); ok {
		if addr >= sizer.Size() {
			return "", errors.OutOfBounds(addr, 1)
		}
		limit = min(limit, sizer.Size()-addr)
		data, err := mem.Read(addr, limit)
		if err != nil {
			return "", err
		}
		for i, b := range data {
			if b == 0 {
				return string(data[:i]), nil
			}
		}
		return "", errors.InvalidData(errors.PhaseRuntime, nil, "unterminated string")
	}

	var buf []byte
	for i := uint32(0); i < limit; i++ {
		b, err := mem.ReadU8(addr + i)
		if err != nil {
			return "", err
		}
		if b == 0 {
			return string(buf), nil
		}
		buf = append(buf, b)
	}
	return "", errors.InvalidData(errors.PhaseRuntime, nil, "unterminated string")
}
