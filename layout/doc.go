// Package layout computes byte sizes and field offsets of C types.
//
// Two policies are supported. AlignPacked, the default, places fields back to
// back, so a field's offset is the sum of the sizes before it. AlignNatural
// follows the wasm32 C ABI: scalars align to their size and structs pad to
// their widest member.
//
// Pointers and long take Policy.PointerSize bytes. Unknown type names are
// reported and sized 0 so generation can continue.
package layout
