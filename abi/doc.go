// Package abi models the machine-readable description of a native library's
// ABI surface: defines, structs, aliases, enums, callbacks and functions, in
// the JSON layout produced by raylib's API parser.
//
// Types are kept as the C spellings found in the description ("const char *",
// "float[4]"). They are parsed into type expressions by package ctype.
package abi
