package host

// Pointer is anything that denotes an address in linear memory. Struct
// instances and Addr satisfy it.
type Pointer interface {
	Address() uint32
}

// Addr is a raw linear-memory address.
type Addr uint32

// Address implements Pointer.
func (a Addr) Address() uint32 { return uint32(a) }

// AddressOf returns p's address, or 0 for a nil interface.
func AddressOf(p Pointer) uint32 {
	if p == nil {
		return 0
	}
	return p.Address()
}

// EncodeBool encodes a C bool argument.
func EncodeBool(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// Result returns the first result slot, or 0 when the export returned none.
func Result(res []uint64) uint64 {
	if len(res) == 0 {
		return 0
	}
	return res[0]
}
