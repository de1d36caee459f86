// Package natives registers the host-facing domain dependencies
// (SPEC_FULL.md §2 "Domain Stack") into a yscript VM via its native-function
// binding surface. Nothing in internal/vm imports this package: the core
// stays ignorant of uuid/yaml/funbit/sqlite, and a host that doesn't call
// Register gets a VM with only clock() defined.
package natives

import "github.com/yscript-lang/yscript/internal/vm"

// Register defines every domain native on v. Call it once after vm.NewVM
// and before the first Interpret call.
func Register(v *vm.VM) {
	registerUUID(v)
	registerYAML(v)
	registerBits(v)
	registerDB(v)
}

func arityError(name string, want int, got int) error {
	return vm.RuntimeError("%s() expects %d argument(s), got %d.", name, want, got)
}

func typeError(name string, argPos int, expected string) error {
	return vm.RuntimeError("%s(): argument %d must be a %s.", name, argPos, expected)
}
