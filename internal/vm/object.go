package vm

import "fmt"

// ObjType identifies the concrete heap-object variant, part of the object
// header every allocated object carries (spec.md §3).
type ObjType uint8

const (
	ObjTypeString ObjType = iota
	ObjTypeFunction
	ObjTypeNative
	ObjTypeClosure
	ObjTypeUpvalue
	ObjTypeClass
	ObjTypeInstance
	ObjTypeBoundMethod
)

// Obj is the interface every heap object satisfies. It is intentionally
// small: the mark bit and the object-list link live on the embedded
// ObjHeader each concrete type carries, not on the interface itself.
type Obj interface {
	objType() ObjType
	header() *ObjHeader
	String() string
}

// ObjHeader is the common prefix every heap object embeds: a type tag, the
// GC mark bit, and the intrusive next-object link that roots the VM's
// single linked list of live-or-not-yet-collected objects.
type ObjHeader struct {
	Type   ObjType
	Marked bool
	Next   Obj
	Size   int // bytes charged to the VM's bytesAllocated accounting
}

func (h *ObjHeader) header() *ObjHeader { return h }

// ObjString is an immutable, interned byte sequence with a precomputed
// FNV-1a hash (spec.md §3).
type ObjString struct {
	ObjHeader
	Chars string
	Hash  uint32
}

func (s *ObjString) objType() ObjType { return ObjTypeString }
func (s *ObjString) String() string   { return s.Chars }

func hashString(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

// ObjFunction is a compiled unit: arity, upvalue count, its Chunk, and an
// optional name (nil/empty for the top-level script, spec.md §3).
type ObjFunction struct {
	ObjHeader
	Arity        int
	UpvalueCount int
	Chunk        *Chunk
	Name         *ObjString
}

func (f *ObjFunction) objType() ObjType { return ObjTypeFunction }
func (f *ObjFunction) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name.Chars)
}

// NativeFn is a host-supplied callable with a fixed (vm, args) -> (Value,
// error) signature; the argument count is len(args) (spec.md §3).
type NativeFn func(vm *VM, args []Value) (Value, error)

// ObjNative wraps a NativeFn so it can live in a Value and globals table.
type ObjNative struct {
	ObjHeader
	Name string
	Fn   NativeFn
}

func (n *ObjNative) objType() ObjType { return ObjTypeNative }
func (n *ObjNative) String() string   { return fmt.Sprintf("<native fn %s>", n.Name) }

// ObjUpvalue is a handle to a captured local. While open, Location indexes
// into the VM's value stack; NextOpen threads it into the VM's open-upvalues
// list, sorted by descending stack address (spec.md §3, §4.5).
type ObjUpvalue struct {
	ObjHeader
	Location int
	Closed   Value
	isOpen   bool
	NextOpen *ObjUpvalue
}

func (u *ObjUpvalue) objType() ObjType { return ObjTypeUpvalue }
func (u *ObjUpvalue) String() string   { return "<upvalue>" }

// ObjClosure bundles a Function with its captured upvalues (spec.md §3).
type ObjClosure struct {
	ObjHeader
	Function *ObjFunction
	Upvalues []*ObjUpvalue
}

func (c *ObjClosure) objType() ObjType { return ObjTypeClosure }
func (c *ObjClosure) String() string   { return c.Function.String() }

// ObjClass is {name, methods} with single inheritance resolved by
// copy-down at OP_INHERIT time (spec.md §3, §4.5).
type ObjClass struct {
	ObjHeader
	Name    *ObjString
	Methods *Table
}

func (c *ObjClass) objType() ObjType { return ObjTypeClass }
func (c *ObjClass) String() string   { return fmt.Sprintf("<class %s>", c.Name.Chars) }

// ObjInstance is {class, fields} (spec.md §3).
type ObjInstance struct {
	ObjHeader
	Class  *ObjClass
	Fields *Table
}

func (i *ObjInstance) objType() ObjType { return ObjTypeInstance }
func (i *ObjInstance) String() string   { return fmt.Sprintf("<%s instance>", i.Class.Name.Chars) }

// ObjBoundMethod is {receiver, method} produced by OP_GET_PROPERTY when the
// looked-up name resolves to a class method rather than a field (spec.md
// §3, §4.5).
type ObjBoundMethod struct {
	ObjHeader
	Receiver Value
	Method   *ObjClosure
}

func (b *ObjBoundMethod) objType() ObjType { return ObjTypeBoundMethod }
func (b *ObjBoundMethod) String() string   { return b.Method.String() }
