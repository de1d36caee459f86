package vm

import "github.com/yscript-lang/yscript/internal/config"

// Rough per-object byte charges used for the bytesAllocated/nextGC
// heuristic (spec.md §4.6). Go has no sizeof, so these are fixed estimates
// of header + fixed fields; variable-length payloads (string bytes, a
// closure's upvalue array) are charged on top. Table backing arrays are not
// charged.
const (
	sizeObjHeader  = 24
	sizeString     = sizeObjHeader + 16
	sizeFunction   = sizeObjHeader + 48
	sizeNative     = sizeObjHeader + 32
	sizeClosure    = sizeObjHeader + 24
	sizeUpvalue    = sizeObjHeader + 24
	sizeClass      = sizeObjHeader + 24
	sizeInstance   = sizeObjHeader + 24
	sizeBoundMethd = sizeObjHeader + 24
)

// allocate links a freshly constructed object into the VM's intrusive
// object list and charges its size against bytesAllocated, possibly
// triggering a collection first (spec.md §4.6 "Allocator contract"). The
// collection point is BEFORE linking obj in, mirroring reallocate() running
// before the new object exists: obj cannot yet be a GC root, so running the
// collector first vs. after makes no observable difference, but matches the
// reference ordering.
func (vm *VM) allocate(obj Obj, size int) Obj {
	vm.bytesAllocated += size
	if vm.stressGC || vm.bytesAllocated > vm.nextGC {
		vm.collectGarbage()
	}
	h := obj.header()
	h.Size = size
	h.Next = vm.objects
	vm.objects = obj
	return obj
}

// newString interns chars, allocating a new ObjString only on a miss. The
// new string is pushed onto the VM stack around the table insertion so it
// stays reachable there; Table.Set grows its entries with Go's own
// allocator and never triggers a collection itself (spec.md §4.6 "GC
// safety around raw allocations", §9).
func (vm *VM) newString(chars string) *ObjString {
	hash := hashString(chars)
	if existing := vm.strings.FindString(chars, hash); existing != nil {
		return existing
	}
	str := &ObjString{Chars: chars, Hash: hash}
	vm.allocate(str, sizeString+len(chars))
	vm.push(ObjValue(str))
	vm.strings.Set(str, BoolValue(true))
	vm.pop()
	return str
}

func (vm *VM) newFunction() *ObjFunction {
	fn := &ObjFunction{Chunk: NewChunk()}
	vm.allocate(fn, sizeFunction)
	return fn
}

func (vm *VM) newNative(name string, fn NativeFn) *ObjNative {
	n := &ObjNative{Name: name, Fn: fn}
	vm.allocate(n, sizeNative)
	return n
}

func (vm *VM) newClosure(fn *ObjFunction) *ObjClosure {
	c := &ObjClosure{Function: fn, Upvalues: make([]*ObjUpvalue, fn.UpvalueCount)}
	vm.allocate(c, sizeClosure+8*fn.UpvalueCount)
	return c
}

func (vm *VM) newUpvalue(location int) *ObjUpvalue {
	u := &ObjUpvalue{Location: location, isOpen: true}
	vm.allocate(u, sizeUpvalue)
	return u
}

func (vm *VM) newClass(name *ObjString) *ObjClass {
	c := &ObjClass{Name: name, Methods: NewTable()}
	vm.allocate(c, sizeClass)
	return c
}

func (vm *VM) newInstance(class *ObjClass) *ObjInstance {
	i := &ObjInstance{Class: class, Fields: NewTable()}
	vm.allocate(i, sizeInstance)
	return i
}

func (vm *VM) newBoundMethod(receiver Value, method *ObjClosure) *ObjBoundMethod {
	b := &ObjBoundMethod{Receiver: receiver, Method: method}
	vm.allocate(b, sizeBoundMethd)
	return b
}

// collectGarbage runs one full mark-sweep cycle (spec.md §4.6).
func (vm *VM) collectGarbage() {
	vm.markRoots()
	vm.traceReferences()
	vm.strings.RemoveWhite()
	vm.sweep()
	vm.nextGC = vm.bytesAllocated * config.GCGrowthFactor
	if vm.nextGC < config.InitialGCThreshold {
		vm.nextGC = config.InitialGCThreshold
	}
}

func (vm *VM) markValue(v Value) {
	if v.IsObject() {
		vm.markObject(v.AsObject())
	}
}

func (vm *VM) markObject(obj Obj) {
	if obj == nil {
		return
	}
	h := obj.header()
	if h.Marked {
		return
	}
	h.Marked = true
	vm.grayStack = append(vm.grayStack, obj)
}

func (vm *VM) markTable(t *Table) {
	t.Each(func(key *ObjString, value Value) {
		vm.markObject(key)
		vm.markValue(value)
	})
}

// markRoots marks every GC root named in spec.md §4.6: the live stack, the
// active call frames' closures, the open-upvalues list, the globals table,
// the interned init string, and the currently active compiler chain.
func (vm *VM) markRoots() {
	for i := 0; i < vm.sp; i++ {
		vm.markValue(vm.stack[i])
	}
	for i := 0; i < vm.frameCount; i++ {
		vm.markObject(vm.frames[i].closure)
	}
	for uv := vm.openUpvalues; uv != nil; uv = uv.NextOpen {
		vm.markObject(uv)
	}
	vm.markTable(vm.globals)
	// A bare VM (newBareVM) has no interned "init" yet; a nil *ObjString
	// boxed into Obj would slip past markObject's nil check.
	if vm.initString != nil {
		vm.markObject(vm.initString)
	}
	for c := vm.compilerRoot; c != nil; c = c.enclosing {
		vm.markObject(c.function)
	}
}

// traceReferences drains the gray stack, blackening each object by marking
// everything it references (spec.md §4.6 "Trace").
func (vm *VM) traceReferences() {
	for len(vm.grayStack) > 0 {
		n := len(vm.grayStack) - 1
		obj := vm.grayStack[n]
		vm.grayStack = vm.grayStack[:n]
		vm.blackenObject(obj)
	}
}

func (vm *VM) blackenObject(obj Obj) {
	switch o := obj.(type) {
	case *ObjString:
		// no outgoing references
	case *ObjFunction:
		// The top-level script function has a nil Name (compiler.go's
		// initCompiler only sets it for named functions); markObject's own
		// nil check can't catch that because a nil *ObjString boxed into
		// the Obj interface is a non-nil interface value.
		if o.Name != nil {
			vm.markObject(o.Name)
		}
		for _, c := range o.Chunk.Constants {
			vm.markValue(c)
		}
	case *ObjNative:
		// no outgoing references
	case *ObjClosure:
		vm.markObject(o.Function)
		for _, uv := range o.Upvalues {
			// OP_CLOSURE fills Upvalues one by one while the closure is
			// already on the stack, so a collection can see nil slots.
			if uv != nil {
				vm.markObject(uv)
			}
		}
	case *ObjUpvalue:
		vm.markValue(o.Closed)
	case *ObjClass:
		vm.markObject(o.Name)
		vm.markTable(o.Methods)
	case *ObjInstance:
		vm.markObject(o.Class)
		vm.markTable(o.Fields)
	case *ObjBoundMethod:
		vm.markValue(o.Receiver)
		vm.markObject(o.Method)
	}
}

// sweep walks the intrusive object list once: unmarked objects are unlinked
// and freed (bytesAllocated decremented), marked objects have their bit
// cleared for the next cycle (spec.md §4.6 "Sweep").
func (vm *VM) sweep() {
	var prev Obj
	obj := vm.objects
	for obj != nil {
		h := obj.header()
		if h.Marked {
			h.Marked = false
			prev = obj
			obj = h.Next
			continue
		}
		unreached := obj
		obj = h.Next
		if prev != nil {
			prev.header().Next = obj
		} else {
			vm.objects = obj
		}
		vm.bytesAllocated -= unreached.header().Size
		releaseObjectRef(unreached)
	}
}

// freeObjects drains the entire object list unconditionally, used by
// FreeVM (spec.md §5 "Resource release is scope-bound").
func (vm *VM) freeObjects() {
	for obj := vm.objects; obj != nil; obj = obj.header().Next {
		releaseObjectRef(obj)
	}
	vm.objects = nil
	vm.bytesAllocated = 0
}
