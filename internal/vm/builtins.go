package vm

import "time"

// defineBuiltins registers the one native binding the core language itself
// depends on (spec.md §6 "clock()"). Host-facing domain natives (uuid,
// YAML, bit-level packing, SQLite) are registered separately by
// internal/natives, which calls DefineNative on this same VM after NewVM
// returns — the core stays ignorant of those concerns.
func (vm *VM) defineBuiltins() {
	vm.DefineNative("clock", func(vm *VM, args []Value) (Value, error) {
		return NumberValue(float64(time.Now().UnixNano()) / float64(time.Second)), nil
	})
}
