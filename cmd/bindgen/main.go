package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/abi-bindgen/config"
	"github.com/wippyai/abi-bindgen/errors"
	"github.com/wippyai/abi-bindgen/generator"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Path to bindgen.yaml")
		input       = flag.String("input", "", "ABI description file or URL")
		output      = flag.String("output", "", "Generated file (stdout when empty)")
		pkg         = flag.String("package", "", "Package clause of the generated file")
		strict      = flag.Bool("strict", false, "Fail on unknown atoms")
		pointerSize = flag.Uint("pointer-size", 0, "Pointer width in bytes (4 or 8)")
		alignment   = flag.String("alignment", "", "Struct layout: packed or natural")
		interactive = flag.Bool("i", false, "Browse struct layouts and functions")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *configFile == "" && *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: bindgen -config bindgen.yaml")
		fmt.Fprintln(os.Stderr, "       bindgen -input raylib_api.json [-output file.go] [-package name]")
		fmt.Fprintln(os.Stderr, "       bindgen -input raylib_api.json -i  (inspect layouts)")
		os.Exit(1)
	}

	if *verbose {
		log, err := zap.NewDevelopment()
		if err == nil {
			generator.SetLogger(log)
			defer func() { _ = log.Sync() }()
		}
	}

	cfg := config.Default()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			fail(err)
		}
		cfg = loaded
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.Input = *input
		case "output":
			cfg.Output = *output
		case "package":
			cfg.Package = *pkg
		case "strict":
			cfg.Strict = *strict
		case "pointer-size":
			cfg.PointerSize = uint32(*pointerSize)
		case "alignment":
			cfg.Alignment = *alignment
		}
	})
	if err := cfg.Validate(); err != nil {
		fail(err)
	}

	if err := run(context.Background(), cfg, *interactive); err != nil {
		fail(err)
	}
}

func run(ctx context.Context, cfg *config.Config, interactive bool) error {
	g, err := generator.Load(ctx, cfg)
	if err != nil {
		return err
	}

	if interactive {
		return runInspector(g, cfg.Input)
	}

	if cfg.Output == "" {
		out, err := g.Generate()
		if err != nil {
			return err
		}
		if _, err := os.Stdout.Write(out); err != nil {
			return err
		}
	} else if err := g.Write(); err != nil {
		return err
	}

	printSummary(os.Stderr, g, cfg, term.IsTerminal(int(os.Stderr.Fd())))
	return nil
}

var (
	summaryTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	summaryWarn  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB86C"))
	summaryDim   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

func printSummary(w io.Writer, g *generator.Generator, cfg *config.Config, color bool) {
	render := func(s lipgloss.Style, text string) string {
		if !color {
			return text
		}
		return s.Render(text)
	}

	target := cfg.Output
	if target == "" {
		target = "stdout"
	}
	reg := g.Registry()
	fmt.Fprintf(w, "%s %s -> %s\n", render(summaryTitle, "bindgen"), cfg.Input, target)
	fmt.Fprintf(w, "  %d structs, %d callbacks, %d functions\n",
		len(reg.Structs()), len(reg.Callbacks()), len(reg.Functions()))

	diags := g.Diagnostics()
	if len(diags) == 0 {
		return
	}
	fmt.Fprintf(w, "  %s\n", render(summaryWarn, fmt.Sprintf("%d diagnostics", len(diags))))
	for _, d := range diags {
		fmt.Fprintf(w, "    %s %s\n", render(summaryDim, string(d.Phase)+"/"+string(d.Kind)), describe(d))
	}
}

func describe(d *errors.Error) string {
	var parts []string
	if len(d.Path) > 0 {
		parts = append(parts, strings.Join(d.Path, "."))
	}
	if d.Detail != "" {
		parts = append(parts, d.Detail)
	}
	if d.CType != "" {
		parts = append(parts, "("+d.CType+")")
	}
	return strings.Join(parts, ": ")
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
