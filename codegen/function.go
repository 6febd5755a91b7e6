package codegen

import (
	"fmt"
	"strings"

	"github.com/wippyai/abi-bindgen/ctype"
	"github.com/wippyai/abi-bindgen/errors"
	"github.com/wippyai/abi-bindgen/marshal"
	"github.com/wippyai/abi-bindgen/registry"
)

type paramBinding struct {
	param    registry.Param
	name     string
	coercion marshal.CallCoercion
}

// Function renders the wrapper method for fn. ok is false when fn is not
// bound: listed in Options.Skip, or variadic.
func (e *Emitter) Function(fn *registry.Function) (code string, ok bool, err error) {
	if e.skip[fn.Name] {
		return "", false, nil
	}
	if fn.Variadic() {
		e.rep.Report(errors.Unsupported(errors.PhaseEmit, []string{fn.Name}, "variadic function is not bound"))
		return "", false, nil
	}

	ret, err := e.sel.Call(fn.Return, fn.Name, "return")
	if err != nil {
		return "", false, err
	}

	var params []paramBinding
	for i, p := range fn.Params {
		if _, isVoid := p.Type.(ctype.Void); isVoid {
			continue
		}
		c, err := e.sel.Call(p.Type, fn.Name, p.Name)
		if err != nil {
			return "", false, err
		}
		params = append(params, paramBinding{param: p, name: paramName(p.Name, i), coercion: c})
	}

	var preload []string
	for _, name := range fn.Preload {
		for _, pb := range params {
			if pb.param.Name != name {
				continue
			}
			if pb.coercion.Category != marshal.CategoryString {
				e.rep.Report(errors.Unsupported(errors.PhaseEmit, []string{fn.Name, name}, "preload of a non-string parameter"))
				break
			}
			preload = append(preload, pb.name)
		}
	}

	var w writer
	e.functionDoc(&w, fn, preload)
	e.functionSignature(&w, fn, params, ret, len(preload) > 0)
	e.functionBody(&w, fn, params, ret, preload)
	return w.String(), true, nil
}

func cSignature(fn *registry.Function) string {
	parts := make([]string, 0, len(fn.Params))
	for _, p := range fn.Params {
		spelled := p.Type.String()
		if p.Name != "" {
			if strings.HasSuffix(spelled, "*") {
				spelled += p.Name
			} else {
				spelled += " " + p.Name
			}
		}
		parts = append(parts, spelled)
	}
	return fmt.Sprintf("%s %s(%s)", fn.Return, fn.Name, strings.Join(parts, ", "))
}

func (e *Emitter) functionDoc(w *writer, fn *registry.Function, preload []string) {
	name := exportName(fn.Name)
	if fn.Description != "" {
		w.WriteString(doc(name, fn.Description))
		w.line("//")
	}
	w.line("// C: %s", cSignature(fn))
	if len(preload) > 0 {
		w.line("//")
		w.line("// %s is staged through the preloader first unless host.SkipPreload is passed.", strings.Join(preload, ", "))
	}
}

func zeroValue(ret marshal.CallCoercion) string {
	switch ret.Category {
	case marshal.CategoryBoolean:
		return "false"
	case marshal.CategoryString:
		return `""`
	case marshal.CategoryPointer:
		if ret.Struct != "" {
			return "nil"
		}
		return "0"
	}
	return "0"
}

func (e *Emitter) functionSignature(w *writer, fn *registry.Function, params []paramBinding, ret marshal.CallCoercion, withOpts bool) {
	args := []string{"ctx context.Context"}
	for _, pb := range params {
		args = append(args, pb.name+" "+pb.coercion.Param)
	}
	if withOpts {
		args = append(args, "opts ...host.CallOption")
	}
	results := "error"
	switch {
	case ret.Struct != "":
		results = "(*" + exportName(ret.Struct) + ", error)"
	case ret.Category != marshal.CategoryVoid:
		results = "(" + ret.Result + ", error)"
	}
	w.line("func (b *Bindings) %s(%s) %s {", exportName(fn.Name), strings.Join(args, ", "), results)
}

func (e *Emitter) functionBody(w *writer, fn *registry.Function, params []paramBinding, ret marshal.CallCoercion, preload []string) {
	fail := "return err"
	if ret.Category != marshal.CategoryVoid {
		fail = "return " + zeroValue(ret) + ", err"
	}

	if len(preload) > 0 {
		w.line("\tif err := b.rt.Preload(ctx, opts, %s); err != nil {", strings.Join(preload, ", "))
		w.line("\t\t%s", fail)
		w.line("\t}")
	}

	needFrame := ret.ByValue
	for _, pb := range params {
		if pb.coercion.Category == marshal.CategoryString {
			needFrame = true
		}
	}
	caller := "b.rt"
	if needFrame {
		caller = "f"
		w.line("\tf := b.rt.Frame()")
		w.line("\tdefer f.Close()")
	}

	slots := make([]string, 0, len(params))
	for _, pb := range params {
		if pb.coercion.Category == marshal.CategoryString {
			ptr := pb.name + "Ptr"
			w.line("\t%s, err := f.CString(%s)", ptr, pb.name)
			w.line("\tif err != nil {")
			w.line("\t\t%s", fail)
			w.line("\t}")
			slots = append(slots, "api.EncodeU32("+ptr+")")
			continue
		}
		slots = append(slots, fmt.Sprintf(pb.coercion.Encode, pb.name))
	}

	var slotList string
	if len(slots) > 0 {
		slotList = ", " + strings.Join(slots, ", ")
	}

	switch {
	case ret.Category == marshal.CategoryVoid:
		w.line("\tif _, err := %s.Call(ctx, %q%s); err != nil {", caller, fn.Name, slotList)
		w.line("\t\treturn err")
		w.line("\t}")
		w.line("\treturn nil")

	case ret.ByValue:
		typeName := exportName(ret.Struct)
		w.line("\tret, err := f.CallStruct(ctx, %q, Sizeof%s%s)", fn.Name, typeName, slotList)
		w.line("\tif err != nil {")
		w.line("\t\treturn nil, err")
		w.line("\t}")
		w.line("\treturn &%s{Struct: ret}, nil", typeName)

	default:
		w.line("\tres, err := %s.Call(ctx, %q%s)", caller, fn.Name, slotList)
		w.line("\tif err != nil {")
		w.line("\t\t%s", fail)
		w.line("\t}")
		switch {
		case ret.Category == marshal.CategoryString:
			w.line("\treturn b.rt.CString(api.DecodeU32(host.Result(res)))")
		case ret.Category == marshal.CategoryPointer && ret.Struct != "":
			w.line("\taddr := api.DecodeU32(host.Result(res))")
			w.line("\tif addr == 0 {")
			w.line("\t\treturn nil, nil")
			w.line("\t}")
			w.line("\treturn b.%sAt(addr), nil", exportName(ret.Struct))
		default:
			w.line("\treturn %s, nil", fmt.Sprintf(ret.Decode, "host.Result(res)"))
		}
	}
	w.line("}")
	w.blank()
}
