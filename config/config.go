// Package config loads bindgen.yaml.
package config

import (
	"bytes"
	"fmt"
	"go/token"
	"os"
	"sort"

	"github.com/goccy/go-yaml"

	"github.com/wippyai/abi-bindgen/ctype"
	"github.com/wippyai/abi-bindgen/errors"
	"github.com/wippyai/abi-bindgen/layout"
	"github.com/wippyai/abi-bindgen/marshal"
	"github.com/wippyai/abi-bindgen/registry"
)

// Config describes one generation run.
type Config struct {
	// Input is the ABI description: a file path or an http(s) URL.
	Input string `yaml:"input"`
	// Output is the generated file. Empty writes to stdout.
	Output      string `yaml:"output,omitempty"`
	Package     string `yaml:"package,omitempty"`
	PointerSize uint32 `yaml:"pointer_size,omitempty"`
	// Alignment is packed or natural.
	Alignment string `yaml:"alignment,omitempty"`
	Strict    bool   `yaml:"strict,omitempty"`
	// Atoms maps extra type names to primitive spellings.
	Atoms map[string]string `yaml:"atoms,omitempty"`
	// Preload adds preload parameters per function.
	Preload map[string][]string `yaml:"preload,omitempty"`
	Skip    []string            `yaml:"skip,omitempty"`
}

// Default returns the wasm32 defaults.
func Default() *Config {
	return &Config{
		Package:     "bindings",
		PointerSize: layout.DefaultPointerSize,
		Alignment:   layout.AlignPacked.String(),
	}
}

// Load reads and validates the file at path. Environment variables in the
// file are expanded before decoding.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "unable to read config")
	}
	return Parse(data)
}

// Parse decodes data over Default and validates the result.
func Parse(data []byte) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader([]byte(os.ExpandEnv(string(data)))), yaml.DisallowUnknownField())
	if err := dec.Decode(c); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "unable to parse config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks every field that does not depend on the description.
func (c *Config) Validate() error {
	if c.Input == "" {
		return errors.InvalidInput(errors.PhaseConfig, "input is required")
	}
	if c.Package != "" && !token.IsIdentifier(c.Package) {
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("package %q is not a Go identifier", c.Package))
	}
	if c.PointerSize != 0 && c.PointerSize != 4 && c.PointerSize != 8 {
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("pointer_size must be 4 or 8, got %d", c.PointerSize))
	}
	if _, err := layout.ParseAlignment(c.Alignment); err != nil {
		return err
	}

	names := make([]string, 0, len(c.Atoms))
	for name := range c.Atoms {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := ctype.LookupAtom(c.Atoms[name]); !ok {
			return errors.New(errors.PhaseConfig, errors.KindUnknownAtom).
				Path("atoms", name).
				CType(c.Atoms[name]).
				Detail("%s is not a primitive type", c.Atoms[name]).
				Build()
		}
	}
	return nil
}

// RegistryOptions returns the registry settings.
func (c *Config) RegistryOptions() registry.Options {
	return registry.Options{Atoms: c.Atoms, Preload: c.Preload}
}

// Policy returns the layout policy. Call Validate first.
func (c *Config) Policy() layout.Policy {
	align, _ := layout.ParseAlignment(c.Alignment)
	size := c.PointerSize
	if size == 0 {
		size = layout.DefaultPointerSize
	}
	return layout.Policy{PointerSize: size, Alignment: align}
}

// MarshalOptions returns the strategy selector settings.
func (c *Config) MarshalOptions() marshal.Options {
	return marshal.Options{Strict: c.Strict, PointerSize: c.Policy().PointerSize}
}
