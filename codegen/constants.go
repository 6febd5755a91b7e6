package codegen

import (
	"strconv"
	"strings"

	"github.com/wippyai/abi-bindgen/abi"
	"github.com/wippyai/abi-bindgen/errors"
	"github.com/wippyai/abi-bindgen/marshal"
)

// symbol is a generated package-level name exported through Symbols.
type symbol struct {
	key  string
	expr string
}

// constants renders enum values and defines. Names already taken are
// reported and skipped.
func (e *Emitter) constants(w *writer, desc *abi.Description, taken map[string]bool) []symbol {
	var syms []symbol

	claim := func(name string, path ...string) bool {
		if taken[name] {
			e.rep.Report(errors.New(errors.PhaseEmit, errors.KindDuplicate).
				Path(path...).
				Detail("constant %s already declared", name).
				Build())
			return false
		}
		taken[name] = true
		return true
	}

	for _, enum := range desc.Enums {
		if len(enum.Values) == 0 {
			continue
		}
		w.WriteString(doc(enum.Name, enum.Description))
		w.line("const (")
		for _, v := range enum.Values {
			name := constName(v.Name)
			if !claim(name, enum.Name, v.Name) {
				continue
			}
			if v.Description != "" {
				w.line("\t%s = %d // %s", name, v.Value, strings.TrimSpace(v.Description))
			} else {
				w.line("\t%s = %d", name, v.Value)
			}
			syms = append(syms, symbol{key: v.Name, expr: name})
		}
		w.line(")")
		w.blank()
	}

	var defines writer
	for _, d := range desc.Defines {
		value, ok := e.defineValue(d)
		if !ok {
			continue
		}
		name := constName(d.Name)
		if !claim(name, d.Name) {
			continue
		}
		if d.Description != "" {
			defines.line("\t%s = %s // %s", name, value, strings.TrimSpace(d.Description))
		} else {
			defines.line("\t%s = %s", name, value)
		}
		syms = append(syms, symbol{key: d.Name, expr: name})
	}
	if defines.Len() > 0 {
		w.line("const (")
		w.WriteString(defines.String())
		w.line(")")
		w.blank()
	}

	return syms
}

// defineValue renders a define as a Go constant expression.
func (e *Emitter) defineValue(d abi.Define) (string, bool) {
	text := d.Text()
	switch d.Type {
	case abi.DefineInt:
		if _, err := strconv.ParseInt(text, 0, 64); err != nil {
			e.rep.Report(errors.InvalidData(errors.PhaseEmit, []string{d.Name}, "INT define "+strconv.Quote(text)))
			return "", false
		}
		return text, true
	case abi.DefineFloat, abi.DefineDouble:
		text = strings.TrimRight(text, "fF")
		if _, err := strconv.ParseFloat(text, 64); err != nil {
			e.rep.Report(errors.InvalidData(errors.PhaseEmit, []string{d.Name}, "FLOAT define "+strconv.Quote(text)))
			return "", false
		}
		return text, true
	case abi.DefineString:
		return strconv.Quote(text), true
	}
	return "", false
}

// colors renders COLOR defines as values of their literal's struct.
func (e *Emitter) colors(w *writer, desc *abi.Description, taken map[string]bool) []symbol {
	var syms []symbol
	for _, d := range desc.Defines {
		if d.Type != abi.DefineColor {
			continue
		}
		lit, err := abi.ParseLiteral(d.Text())
		if err != nil {
			e.rep.Report(errors.Wrap(errors.PhaseEmit, errors.KindInvalidData, err, d.Name+": "+d.Text()))
			continue
		}
		def, ok := e.reg.Lookup(lit.Type)
		if !ok {
			e.rep.Report(errors.UnresolvedType([]string{d.Name}, lit.Type))
			continue
		}
		if len(lit.Values) > len(def.Fields) {
			e.rep.Report(errors.InvalidData(errors.PhaseEmit, []string{d.Name}, "literal has more values than "+lit.Type+" has fields"))
			continue
		}

		parts := make([]string, 0, len(lit.Values))
		valid := true
		for i, v := range lit.Values {
			f := def.Fields[i]
			acc, err := e.sel.Field(f.Type, def.Name, f.Name)
			if err != nil || !numeric(acc) {
				e.rep.Report(errors.Unsupported(errors.PhaseEmit, []string{d.Name, f.Name}, "non-numeric literal field"))
				valid = false
				break
			}
			parts = append(parts, accessorName(f.Name)+": "+formatNumber(v, acc.GoType))
		}
		name := constName(d.Name)
		if !valid || taken[name] {
			continue
		}
		taken[name] = true

		w.WriteString(doc(name, d.Description))
		w.line("var %s = %sValues{%s}", name, exportName(lit.Type), strings.Join(parts, ", "))
		w.blank()
		syms = append(syms, symbol{key: d.Name, expr: name})
	}
	return syms
}

func numeric(acc marshal.FieldAccess) bool {
	switch acc.Strategy {
	case marshal.StrategyByte, marshal.StrategyWord, marshal.StrategySized:
		return acc.GoType != "bool"
	}
	return false
}

func formatNumber(v float64, goType string) string {
	if strings.HasPrefix(goType, "float") {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatInt(int64(v), 10)
}
