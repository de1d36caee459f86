package natives

import (
	"fmt"

	yaml "gopkg.in/yaml.v3"

	"github.com/yscript-lang/yscript/internal/vm"
)

// registerYAML wires gopkg.in/yaml.v3, grounded on the teacher's
// internal/evaluator/builtins_yaml.go, as a pair of natives that serialize
// plain data (not code) between a yscript Value and a YAML document
// (SPEC_FULL.md §2). Maps and sequences become Instances of two small
// synthetic classes rather than a new core value type.
func registerYAML(v *vm.VM) {
	mapClass := v.NewHostClass("Map")
	listClass := v.NewHostClass("List")

	v.DefineNative("toYAML", func(vmRef *vm.VM, args []vm.Value) (vm.Value, error) {
		if len(args) != 1 {
			return vm.NilValue(), arityError("toYAML", 1, len(args))
		}
		out, err := yaml.Marshal(valueToAny(args[0]))
		if err != nil {
			return vm.NilValue(), vm.RuntimeError("toYAML(): %v", err)
		}
		return vm.ObjValue(vmRef.NewHostString(string(out))), nil
	})

	v.DefineNative("parseYAML", func(vmRef *vm.VM, args []vm.Value) (vm.Value, error) {
		if len(args) != 1 {
			return vm.NilValue(), arityError("parseYAML", 1, len(args))
		}
		if !args[0].IsObjType(vm.ObjTypeString) {
			return vm.NilValue(), typeError("parseYAML", 1, "string")
		}
		var doc any
		src := args[0].AsObject().String()
		if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
			return vm.NilValue(), vm.RuntimeError("parseYAML(): %v", err)
		}
		return anyToValue(vmRef, mapClass, listClass, doc), nil
	})
}

// valueToAny converts a yscript Value into a plain Go value yaml.Marshal can
// walk. Values with no data representation (closures, classes, native
// functions, bound methods) encode as a descriptive string rather than
// failing the whole document (SPEC_FULL.md §2).
func valueToAny(v vm.Value) any {
	switch {
	case v.IsNil():
		return nil
	case v.IsBool():
		return v.AsBool()
	case v.IsNumber():
		return v.AsNumber()
	case v.IsObjType(vm.ObjTypeString):
		return v.AsObject().String()
	case v.IsObjType(vm.ObjTypeInstance):
		inst := v.AsObject().(*vm.ObjInstance)
		out := map[string]any{}
		inst.Fields.Each(func(key *vm.ObjString, val vm.Value) {
			out[key.Chars] = valueToAny(val)
		})
		return out
	default:
		return fmt.Sprintf("<error: cannot serialize %s>", v.String())
	}
}

// anyToValue converts a decoded YAML document into a yscript Value. Maps and
// sequences become Instances of the given synthetic classes so they can be
// passed around and field-accessed like any other object.
func anyToValue(vmRef *vm.VM, mapClass, listClass *vm.ObjClass, x any) vm.Value {
	switch t := x.(type) {
	case nil:
		return vm.NilValue()
	case bool:
		return vm.BoolValue(t)
	case int:
		return vm.NumberValue(float64(t))
	case int64:
		return vm.NumberValue(float64(t))
	case uint64:
		return vm.NumberValue(float64(t))
	case float64:
		return vm.NumberValue(t)
	case string:
		return vm.ObjValue(vmRef.NewHostString(t))
	case map[string]any:
		inst := vmRef.NewHostInstance(mapClass)
		for k, val := range t {
			inst.Fields.Set(vmRef.NewHostString(k), anyToValue(vmRef, mapClass, listClass, val))
		}
		return vm.ObjValue(inst)
	case []any:
		inst := vmRef.NewHostInstance(listClass)
		for i, val := range t {
			inst.Fields.Set(vmRef.NewHostString(fmt.Sprintf("%d", i)), anyToValue(vmRef, mapClass, listClass, val))
		}
		inst.Fields.Set(vmRef.NewHostString("length"), vm.NumberValue(float64(len(t))))
		return vm.ObjValue(inst)
	default:
		return vm.ObjValue(vmRef.NewHostString(fmt.Sprintf("%v", t)))
	}
}
