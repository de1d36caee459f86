// Package vm implements the core of yscript: the tagged Value and heap
// object model, the bytecode Chunk, the single-pass Pratt compiler, the
// stack-based virtual machine, and the mark-and-sweep garbage collector
// (spec.md §2).
package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/yscript-lang/yscript/internal/config"
)

// CallFrame is the VM's per-invocation record: the closure being run, an
// instruction pointer into its chunk, and the base stack slot at which its
// locals begin (spec.md §4.5, GLOSSARY).
type CallFrame struct {
	closure *ObjClosure
	ip      int
	base    int
}

// VM is the stack machine that owns the value stack, the call-frame stack,
// the globals table, the string-interning table, the open-upvalue list, and
// the GC root set (spec.md §2, §4.5).
type VM struct {
	stack []Value
	sp    int

	frames     []CallFrame
	frameCount int

	globals *Table
	strings *Table

	openUpvalues *ObjUpvalue

	initString *ObjString

	objects         Obj
	bytesAllocated  int
	nextGC          int
	grayStack       []Obj
	stressGC        bool
	compilerRoot    *Compiler // active compiler chain, for mid-compile GC roots

	Stdout io.Writer
}

// newBareVM constructs a VM. It does not seed globals/natives; callers use
// NewVM for the full host-facing lifecycle (spec.md §6 init_vm).
func newBareVM() *VM {
	vm := &VM{
		stack:   make([]Value, config.StackSlotsMax),
		frames:  make([]CallFrame, config.FramesMax),
		globals: NewTable(),
		strings: NewTable(),
		nextGC:  config.InitialGCThreshold,
		Stdout:  os.Stdout,
	}
	return vm
}

// NewVM is the host API's init_vm: constructs the VM, seeds the strings
// table, interns "init", and registers the one builtin native spec.md §6
// requires (clock()). Host code may call DefineNative further before the
// first Interpret call.
func NewVM() *VM {
	vm := newBareVM()
	vm.initString = vm.newString("init")
	vm.defineBuiltins()
	return vm
}

// SetStressGC toggles collect-on-every-allocation mode (spec.md §4.6,
// §8 "Running a script under stress-GC... yields the same observable
// output").
func (vm *VM) SetStressGC(on bool) { vm.stressGC = on }

// FreeVM releases the globals and strings tables, the gray stack, and
// every object on the intrusive list (spec.md §5).
func (vm *VM) FreeVM() {
	vm.globals = NewTable()
	vm.strings = NewTable()
	vm.grayStack = nil
	vm.freeObjects()
}

// DefineNative adds a native binding to globals (spec.md §6). Must be
// called between NewVM and Interpret to be visible to top-level code, but
// nothing prevents calling it mid-session; it just defines (or overwrites)
// a global like any `var`.
func (vm *VM) DefineNative(name string, fn NativeFn) {
	nameStr := vm.newString(name)
	vm.push(ObjValue(nameStr))
	native := vm.newNative(name, fn)
	vm.push(ObjValue(native))
	vm.globals.Set(nameStr, vm.stack[vm.sp-1])
	vm.pop()
	vm.pop()
}

func (vm *VM) resetStack() {
	vm.sp = 0
	vm.frameCount = 0
	vm.openUpvalues = nil
}

func (vm *VM) push(v Value) {
	vm.stack[vm.sp] = v
	vm.sp++
}

func (vm *VM) pop() Value {
	vm.sp--
	return vm.stack[vm.sp]
}

func (vm *VM) peek(distance int) Value {
	return vm.stack[vm.sp-1-distance]
}

// Interpret compiles source then runs it (spec.md §6).
func (vm *VM) Interpret(source string) InterpretResult {
	fn, errs := Compile(vm, source)
	if fn == nil {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e.Error())
		}
		return InterpretCompileError
	}

	vm.push(ObjValue(fn))
	closure := vm.newClosure(fn)
	vm.pop()
	vm.push(ObjValue(closure))
	vm.callClosure(closure, 0)

	if err := vm.run(); err != nil {
		vm.reportRuntimeError(err)
		vm.resetStack()
		return InterpretRuntimeError
	}
	return InterpretOK
}

func (vm *VM) reportRuntimeError(err error) {
	fmt.Fprintln(os.Stderr, err.Error())
	if re, ok := err.(*runtimeError); ok {
		for _, f := range re.trace {
			if f.name == "" {
				fmt.Fprintf(os.Stderr, "[line %d] in script\n", f.line)
			} else {
				fmt.Fprintf(os.Stderr, "[line %d] in %s()\n", f.line, f.name)
			}
		}
	}
}

// currentLine returns the source line the active frame's instruction
// pointer is at, used for runtime error reporting (spec.md §4.5).
func (vm *VM) currentLine() int {
	frame := &vm.frames[vm.frameCount-1]
	if frame.ip-1 < 0 || frame.ip-1 >= len(frame.closure.Function.Chunk.Lines) {
		return -1
	}
	return frame.closure.Function.Chunk.Lines[frame.ip-1]
}

// captureTrace walks the active frames innermost-first for an error report
// (spec.md §4.5 "Runtime errors").
func (vm *VM) captureTrace() []traceFrame {
	trace := make([]traceFrame, 0, vm.frameCount)
	for i := vm.frameCount - 1; i >= 0; i-- {
		f := &vm.frames[i]
		line := 0
		if f.ip-1 >= 0 && f.ip-1 < len(f.closure.Function.Chunk.Lines) {
			line = f.closure.Function.Chunk.Lines[f.ip-1]
		}
		name := ""
		if f.closure.Function.Name != nil {
			name = f.closure.Function.Name.Chars
		}
		trace = append(trace, traceFrame{line: line, name: name})
	}
	return trace
}
