package host

import (
	"math"

	"github.com/wippyai/abi-bindgen/errors"
)

// ownership is shared by every copy of an owning Struct so a release through
// one copy is seen by all.
type ownership struct {
	released bool
}

// Struct is a native struct instance: a base address and a size inside the
// runtime's linear memory. Generated struct types embed it.
//
// Owning instances were allocated through the runtime's allocator and must
// be released with Release. Viewing instances wrap memory owned elsewhere.
type Struct struct {
	rt    *Runtime
	addr  uint32
	size  uint32
	owner *ownership
	// lease is the enclosing instance's ownership for views made by Sub.
	lease *ownership
}

// Address returns the base address. It implements Pointer.
func (s *Struct) Address() uint32 {
	if s == nil {
		return 0
	}
	return s.addr
}

// Size returns the struct size in bytes.
func (s *Struct) Size() uint32 { return s.size }

// Owned reports whether this instance owns its memory.
func (s *Struct) Owned() bool { return s.owner != nil }

// Released reports whether an owning instance has been released.
func (s *Struct) Released() bool { return s.owner != nil && s.owner.released }

// Runtime returns the runtime the instance lives in.
func (s *Struct) Runtime() *Runtime { return s.rt }

// Release frees an owning instance. Releasing a view or releasing twice is
// an error.
func (s *Struct) Release() error {
	if s.owner == nil {
		return errors.New(errors.PhaseRuntime, errors.KindNotOwner).
			Value(s.addr).
			Detail("struct at 0x%x is a view", s.addr).
			Build()
	}
	if s.owner.released {
		return errors.New(errors.PhaseRuntime, errors.KindReleased).
			Value(s.addr).
			Detail("struct at 0x%x already released", s.addr).
			Build()
	}
	s.owner.released = true
	return s.rt.alloc.Free(s.addr)
}

// Sub returns a view of size bytes at off inside s. Nested struct fields
// are exposed this way. The view fails with a released error once the
// outermost owning instance is released.
func (s *Struct) Sub(off, size uint32) Struct {
	lease := s.owner
	if lease == nil {
		lease = s.lease
	}
	return Struct{rt: s.rt, addr: s.addr + off, size: size, lease: lease}
}

// at validates an access of n bytes at off and returns the absolute address.
func (s *Struct) at(off, n uint32) (uint32, error) {
	if s.rt == nil {
		return 0, errors.NotInitialized(errors.PhaseRuntime, "struct")
	}
	if (s.owner != nil && s.owner.released) || (s.lease != nil && s.lease.released) {
		return 0, errors.New(errors.PhaseRuntime, errors.KindReleased).
			Value(s.addr).
			Detail("struct at 0x%x used after release", s.addr).
			Build()
	}
	if uint64(off)+uint64(n) > uint64(s.size) {
		return 0, errors.New(errors.PhaseRuntime, errors.KindOutOfBounds).
			Value(off).
			Detail("field at %d+%d exceeds struct size %d", off, n, s.size).
			Build()
	}
	return s.addr + off, nil
}

// U8 reads the unsigned 8-bit field at off.
func (s *Struct) U8(off uint32) (uint8, error) {
	addr, err := s.at(off, 1)
	if err != nil {
		return 0, err
	}
	return s.rt.mem.ReadU8(addr)
}

// SetU8 writes the unsigned 8-bit field at off.
func (s *Struct) SetU8(off uint32, v uint8) error {
	addr, err := s.at(off, 1)
	if err != nil {
		return err
	}
	return s.rt.mem.WriteU8(addr, v)
}

// Bool reads a one-byte bool field. Any nonzero byte is true.
func (s *Struct) Bool(off uint32) (bool, error) {
	v, err := s.U8(off)
	return v != 0, err
}

// SetBool writes v as 0 or 1.
func (s *Struct) SetBool(off uint32, v bool) error {
	var b uint8
	if v {
		b = 1
	}
	return s.SetU8(off, b)
}

// I8 reads the signed 8-bit field at off.
func (s *Struct) I8(off uint32) (int8, error) {
	v, err := s.U8(off)
	return int8(v), err
}

// SetI8 writes the signed 8-bit field at off.
func (s *Struct) SetI8(off uint32, v int8) error {
	return s.SetU8(off, uint8(v))
}

// U16 reads the unsigned 16-bit field at off.
func (s *Struct) U16(off uint32) (uint16, error) {
	addr, err := s.at(off, 2)
	if err != nil {
		return 0, err
	}
	return s.rt.mem.ReadU16(addr)
}

// SetU16 writes the unsigned 16-bit field at off.
func (s *Struct) SetU16(off uint32, v uint16) error {
	addr, err := s.at(off, 2)
	if err != nil {
		return err
	}
	return s.rt.mem.WriteU16(addr, v)
}

// I16 reads the signed 16-bit field at off.
func (s *Struct) I16(off uint32) (int16, error) {
	v, err := s.U16(off)
	return int16(v), err
}

// SetI16 writes the signed 16-bit field at off.
func (s *Struct) SetI16(off uint32, v int16) error {
	return s.SetU16(off, uint16(v))
}

// U32 reads the unsigned 32-bit field at off.
func (s *Struct) U32(off uint32) (uint32, error) {
	addr, err := s.at(off, 4)
	if err != nil {
		return 0, err
	}
	return s.rt.mem.ReadU32(addr)
}

// SetU32 writes the unsigned 32-bit field at off.
func (s *Struct) SetU32(off uint32, v uint32) error {
	addr, err := s.at(off, 4)
	if err != nil {
		return err
	}
	return s.rt.mem.WriteU32(addr, v)
}

// I32 reads the signed 32-bit field at off.
func (s *Struct) I32(off uint32) (int32, error) {
	v, err := s.U32(off)
	return int32(v), err
}

// SetI32 writes the signed 32-bit field at off.
func (s *Struct) SetI32(off uint32, v int32) error {
	return s.SetU32(off, uint32(v))
}

// U64 reads the unsigned 64-bit field at off.
func (s *Struct) U64(off uint32) (uint64, error) {
	addr, err := s.at(off, 8)
	if err != nil {
		return 0, err
	}
	return s.rt.mem.ReadU64(addr)
}

// SetU64 writes the unsigned 64-bit field at off.
func (s *Struct) SetU64(off uint32, v uint64) error {
	addr, err := s.at(off, 8)
	if err != nil {
		return err
	}
	return s.rt.mem.WriteU64(addr, v)
}

// I64 reads the signed 64-bit field at off.
func (s *Struct) I64(off uint32) (int64, error) {
	v, err := s.U64(off)
	return int64(v), err
}

// SetI64 writes the signed 64-bit field at off.
func (s *Struct) SetI64(off uint32, v int64) error {
	return s.SetU64(off, uint64(v))
}

// F32 reads the float field at off.
func (s *Struct) F32(off uint32) (float32, error) {
	v, err := s.U32(off)
	return math.Float32frombits(v), err
}

// SetF32 writes the float field at off.
func (s *Struct) SetF32(off uint32, v float32) error {
	return s.SetU32(off, math.Float32bits(v))
}

// F64 reads the double field at off.
func (s *Struct) F64(off uint32) (float64, error) {
	v, err := s.U64(off)
	return math.Float64frombits(v), err
}

// SetF64 writes the double field at off.
func (s *Struct) SetF64(off uint32, v float64) error {
	return s.SetU64(off, math.Float64bits(v))
}

// Ptr reads a 32-bit pointer field.
func (s *Struct) Ptr(off uint32) (uint32, error) {
	return s.U32(off)
}

// SetPtr writes a 32-bit pointer field.
func (s *Struct) SetPtr(off uint32, v uint32) error {
	return s.SetU32(off, v)
}

// CString follows the char * stored at off and decodes the text it points
// to. A NULL pointer reads as "".
func (s *Struct) CString(off uint32) (string, error) {
	ptr, err := s.Ptr(off)
	if err != nil {
		return "", err
	}
	return ReadCString(s.rt.mem, ptr)
}

// InlineString decodes a char[n] field up to its first NUL.
func (s *Struct) InlineString(off, n uint32) (string, error) {
	addr, err := s.at(off, n)
	if err != nil {
		return "", err
	}
	data, err := s.rt.mem.Read(addr, n)
	if err != nil {
		return "", err
	}
	for i, b := range data {
		if b == 0 {
			return string(data[:i]), nil
		}
	}
	return string(data), nil
}

// SetInlineString writes v into a char[n] field, truncated to n-1 bytes and
// NUL padded.
func (s *Struct) SetInlineString(off, n uint32, v string) error {
	addr, err := s.at(off, n)
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	buf := make([]byte, n)
	copy(buf[:n-1], v)
	return s.rt.mem.Write(addr, buf)
}

// Bytes copies the instance's raw bytes.
func (s *Struct) Bytes() ([]byte, error) {
	addr, err := s.at(0, s.size)
	if err != nil {
		return nil, err
	}
	data, err := s.rt.mem.Read(addr, s.size)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), data...), nil
}

// SetBytes overwrites the instance with data, which must be exactly Size
// bytes.
func (s *Struct) SetBytes(data []byte) error {
	if uint32(len(data)) != s.size {
		return errors.InvalidInput(errors.PhaseRuntime, "byte length does not match struct size")
	}
	addr, err := s.at(0, s.size)
	if err != nil {
		return err
	}
	return s.rt.mem.Write(addr, data)
}
