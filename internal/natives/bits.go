package natives

import (
	"github.com/funvibe/funbit/pkg/funbit"

	"github.com/yscript-lang/yscript/internal/vm"
)

// registerBits wires github.com/funvibe/funbit, the teacher's bit-string
// construction/matching library, as a pair of natives that pack/unpack an
// unsigned integer into a fixed-width big-endian byte string (SPEC_FULL.md
// §2). This is the one dependency wired from funbit's documented public API
// rather than an observed call site in the retrieved pack.
func registerBits(v *vm.VM) {
	v.DefineNative("packBits", func(vmRef *vm.VM, args []vm.Value) (vm.Value, error) {
		if len(args) != 2 {
			return vm.NilValue(), arityError("packBits", 2, len(args))
		}
		if !args[0].IsNumber() || !args[1].IsNumber() {
			return vm.NilValue(), typeError("packBits", 1, "number")
		}
		value := int64(args[0].AsNumber())
		size := uint(args[1].AsNumber())

		builder := funbit.NewBuilder()
		funbit.AddInteger(builder, value, funbit.WithSize(size), funbit.WithEndianness("big"))
		bs, err := funbit.Build(builder)
		if err != nil {
			return vm.NilValue(), vm.RuntimeError("packBits(): %v", err)
		}
		return vm.ObjValue(vmRef.NewHostString(string(bs.ToBytes()))), nil
	})

	v.DefineNative("unpackBits", func(vmRef *vm.VM, args []vm.Value) (vm.Value, error) {
		if len(args) != 2 {
			return vm.NilValue(), arityError("unpackBits", 2, len(args))
		}
		if !args[0].IsObjType(vm.ObjTypeString) {
			return vm.NilValue(), typeError("unpackBits", 1, "string")
		}
		if !args[1].IsNumber() {
			return vm.NilValue(), typeError("unpackBits", 2, "number")
		}
		data := []byte(args[0].AsObject().String())
		size := uint(args[1].AsNumber())

		bs := funbit.NewBitStringFromBytes(data)
		matcher := funbit.NewMatcher()
		var result int64
		funbit.Integer(matcher, &result, funbit.WithSize(size), funbit.WithEndianness("big"))
		if _, err := funbit.Match(matcher, bs); err != nil {
			return vm.NilValue(), vm.RuntimeError("unpackBits(): %v", err)
		}
		return vm.NumberValue(float64(result)), nil
	})
}
