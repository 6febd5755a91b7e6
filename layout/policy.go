package layout

import (
	"strings"

	"github.com/wippyai/abi-bindgen/errors"
)

// Alignment selects how fields are placed inside a struct.
type Alignment uint8

const (
	// AlignPacked inserts no padding: each field starts where the previous
	// one ended.
	AlignPacked Alignment = iota
	// AlignNatural aligns fields to their natural alignment and pads the
	// struct to its largest member alignment.
	AlignNatural
)

func (a Alignment) String() string {
	if a == AlignNatural {
		return "natural"
	}
	return "packed"
}

// ParseAlignment accepts "packed" or "natural". Empty means packed.
func ParseAlignment(s string) (Alignment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "packed":
		return AlignPacked, nil
	case "natural":
		return AlignNatural, nil
	}
	return AlignPacked, errors.InvalidInput(errors.PhaseConfig, "alignment must be packed or natural, got "+s)
}

// DefaultPointerSize is the pointer width of wasm32.
const DefaultPointerSize = 4

// Policy is the target's layout rules.
type Policy struct {
	PointerSize uint32
	Alignment   Alignment
}

// DefaultPolicy is wasm32 with packed structs.
func DefaultPolicy() Policy {
	return Policy{PointerSize: DefaultPointerSize, Alignment: AlignPacked}
}
