package vm

// The constructors below are the exported half of the allocator in gc.go,
// for use by host-side native modules (internal/natives) that need to hand
// yscript code a Class/Instance/String value without reaching into the VM's
// unexported allocation path directly (spec.md §6 "Host API").

// NewHostString interns s, returning the canonical *ObjString.
func (vm *VM) NewHostString(s string) *ObjString { return vm.newString(s) }

// NewHostClass allocates a new, empty (method-less) class named name. Native
// modules use this to give a host resource (e.g. a database handle) a class
// identity in the value model, per spec.md GLOSSARY "Host Instance".
func (vm *VM) NewHostClass(name string) *ObjClass { return vm.newClass(vm.newString(name)) }

// NewHostInstance allocates a new instance of class with an empty Fields
// table.
func (vm *VM) NewHostInstance(class *ObjClass) *ObjInstance { return vm.newInstance(class) }

// RuntimeError constructs the one error type the dispatch loop recognizes
// for a trace-carrying failure, letting native functions raise errors with
// the same user-facing shape as built-in runtime errors (spec.md §7).
func RuntimeError(format string, args ...any) error { return newRuntimeError(format, args...) }
