// Package bindgen generates Go bindings for native libraries compiled to
// 32-bit WebAssembly and hosted by wazero.
//
// The generator reads a machine-readable ABI description (the raylib
// *_api.json format: defines, structs, aliases, enums, callbacks, functions)
// and emits a single Go file exposing one type per struct, one constant per
// enum value, and one method per native function.
//
// # Architecture Overview
//
//	bindgen/             Root package with core Memory and Allocator interfaces
//	├── abi/             ABI description model and JSON decoding
//	├── ctype/           C type expressions, atoms and resolved structs
//	├── registry/        Canonical struct table with aliases resolved
//	├── layout/          Sizes and field offsets under an alignment policy
//	├── marshal/         Field access strategies and call-boundary categories
//	├── codegen/         Struct and function binding emitters
//	├── generator/       Orchestration and formatting of the output file
//	├── config/          YAML configuration
//	├── host/            Runtime support imported by generated bindings
//	├── errors/          Structured error types
//	├── internal/diag/   Diagnostics for recoverable generation defects
//	└── cmd/bindgen/     Command line tool and layout inspector
//
// # Quick Start
//
// Generate bindings:
//
//	desc, err := abi.Load(ctx, "raylib_api.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	gen, err := generator.New(desc, config.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	src, err := gen.Generate()
//
// Use them against a running module:
//
//	rt, err := host.New(ctx, mod, host.WithPreloader(host.NewPreloader(fetcher, vfs)))
//	rl := raylib.New(rt)
//	pos, err := rl.GetMousePosition(ctx)
//	x, err := pos.X()
//	_ = pos.Release()
//
// # Memory Model
//
// Struct values live in the module's linear memory. A struct wrapper either
// owns its bytes (allocated through the module's malloc and freed by
// Release) or views memory owned by someone else. Struct-valued returns are
// always owning: the caller must release them.
//
// # Layout
//
// Layout is packed by default: fields follow each other with no padding.
// Set alignment to natural in the
// configuration when the native side was built with regular C padding.
package bindgen
