package natives

import (
	"github.com/google/uuid"

	"github.com/yscript-lang/yscript/internal/vm"
)

// registerUUID wires github.com/google/uuid, the teacher's own go.mod
// dependency, as a single zero-argument native returning a fresh random v4
// UUID string (SPEC_FULL.md §2).
func registerUUID(v *vm.VM) {
	v.DefineNative("uuid", func(vmRef *vm.VM, args []vm.Value) (vm.Value, error) {
		if len(args) != 0 {
			return vm.NilValue(), arityError("uuid", 0, len(args))
		}
		return vm.ObjValue(vmRef.NewHostString(uuid.NewString())), nil
	})
}
