package vm

import "fmt"

// run is the interpreter dispatch loop: read the next opcode from the
// active frame, switch on it, mutate the stack. After every instruction the
// frame's ip points at the next instruction and the stack is consistent
// before any operation that may allocate (spec.md §4.5 "Dispatch").
func (vm *VM) run() (err error) {
	frame := &vm.frames[vm.frameCount-1]

	readByte := func() byte {
		b := frame.closure.Function.Chunk.Code[frame.ip]
		frame.ip++
		return b
	}
	readShort := func() int {
		hi := readByte()
		lo := readByte()
		return int(hi)<<8 | int(lo)
	}
	readConstant := func() Value {
		return frame.closure.Function.Chunk.Constants[readByte()]
	}
	readString := func() *ObjString {
		return readConstant().AsObject().(*ObjString)
	}
	fail := func(e error) error {
		if re, ok := e.(*runtimeError); ok && re.trace == nil {
			re.trace = vm.captureTrace()
		}
		return e
	}

	for {
		op := OpCode(readByte())
		switch op {
		case OpConstant:
			vm.push(readConstant())

		case OpNil:
			vm.push(NilValue())
		case OpTrue:
			vm.push(BoolValue(true))
		case OpFalse:
			vm.push(BoolValue(false))
		case OpPop:
			vm.pop()

		case OpGetLocal:
			slot := int(readByte())
			vm.push(vm.stack[frame.base+slot])
		case OpSetLocal:
			slot := int(readByte())
			vm.stack[frame.base+slot] = vm.peek(0)

		case OpGetGlobal:
			name := readString()
			v, ok := vm.globals.Get(name)
			if !ok {
				return fail(newRuntimeError("Undefined variable '%s'.", name.Chars))
			}
			vm.push(v)
		case OpDefineGlobal:
			name := readString()
			vm.globals.Set(name, vm.peek(0))
			vm.pop()
		case OpSetGlobal:
			name := readString()
			if vm.globals.Set(name, vm.peek(0)) {
				vm.globals.Delete(name)
				return fail(newRuntimeError("Undefined variable '%s'.", name.Chars))
			}

		case OpGetUpvalue:
			slot := int(readByte())
			uv := frame.closure.Upvalues[slot]
			if uv.isOpen {
				vm.push(vm.stack[uv.Location])
			} else {
				vm.push(uv.Closed)
			}
		case OpSetUpvalue:
			slot := int(readByte())
			uv := frame.closure.Upvalues[slot]
			if uv.isOpen {
				vm.stack[uv.Location] = vm.peek(0)
			} else {
				uv.Closed = vm.peek(0)
			}

		case OpGetProperty:
			if !vm.peek(0).IsObjType(ObjTypeInstance) {
				return fail(newRuntimeError("Only instances have properties."))
			}
			instance := vm.peek(0).AsObject().(*ObjInstance)
			name := readString()
			if field, ok := instance.Fields.Get(name); ok {
				vm.pop()
				vm.push(field)
				break
			}
			if err := vm.bindMethod(instance.Class, name); err != nil {
				return fail(err)
			}

		case OpSetProperty:
			if !vm.peek(1).IsObjType(ObjTypeInstance) {
				return fail(newRuntimeError("Only instances have fields."))
			}
			instance := vm.peek(1).AsObject().(*ObjInstance)
			name := readString()
			instance.Fields.Set(name, vm.peek(0))
			value := vm.pop()
			vm.pop()
			vm.push(value)

		case OpGetSuper:
			name := readString()
			superclass := vm.pop().AsObject().(*ObjClass)
			if err := vm.bindMethod(superclass, name); err != nil {
				return fail(err)
			}

		case OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(BoolValue(a.Equals(b)))
		case OpGreater:
			if err := vm.binaryCompare(OpGreater); err != nil {
				return fail(err)
			}
		case OpLess:
			if err := vm.binaryCompare(OpLess); err != nil {
				return fail(err)
			}

		case OpAdd:
			if err := vm.binaryAdd(); err != nil {
				return fail(err)
			}
		case OpSubtract:
			if err := vm.binaryArith(OpSubtract); err != nil {
				return fail(err)
			}
		case OpMultiply:
			if err := vm.binaryArith(OpMultiply); err != nil {
				return fail(err)
			}
		case OpDivide:
			if err := vm.binaryArith(OpDivide); err != nil {
				return fail(err)
			}
		case OpNot:
			vm.push(BoolValue(!vm.pop().IsTruthy()))
		case OpNegate:
			if err := vm.negate(); err != nil {
				return fail(err)
			}

		case OpPrint:
			fmt.Fprintln(vm.Stdout, vm.pop().String())

		case OpJump:
			offset := readShort()
			frame.ip += offset
		case OpJumpIfFalse:
			offset := readShort()
			if !vm.peek(0).IsTruthy() {
				frame.ip += offset
			}
		case OpLoop:
			offset := readShort()
			frame.ip -= offset

		case OpCall:
			argCount := int(readByte())
			if err := vm.callValue(vm.peek(argCount), argCount); err != nil {
				return fail(err)
			}
			frame = &vm.frames[vm.frameCount-1]

		case OpInvoke:
			name := readString()
			argCount := int(readByte())
			if err := vm.invoke(name, argCount); err != nil {
				return fail(err)
			}
			frame = &vm.frames[vm.frameCount-1]

		case OpSuperInvoke:
			name := readString()
			argCount := int(readByte())
			superclass := vm.pop().AsObject().(*ObjClass)
			if err := vm.invokeFromClass(superclass, name, argCount); err != nil {
				return fail(err)
			}
			frame = &vm.frames[vm.frameCount-1]

		case OpClosure:
			fn := readConstant().AsObject().(*ObjFunction)
			closure := vm.newClosure(fn)
			vm.push(ObjValue(closure))
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := readByte()
				index := int(readByte())
				if isLocal != 0 {
					closure.Upvalues[i] = vm.captureUpvalue(frame.base + index)
				} else {
					closure.Upvalues[i] = frame.closure.Upvalues[index]
				}
			}

		case OpCloseUpvalue:
			vm.closeUpvalues(vm.sp - 1)
			vm.pop()

		case OpReturn:
			result := vm.pop()
			vm.closeUpvalues(frame.base)
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.pop() // the script closure itself
				return nil
			}
			vm.sp = frame.base
			vm.push(result)
			frame = &vm.frames[vm.frameCount-1]

		case OpClass:
			vm.push(ObjValue(vm.newClass(readString())))

		case OpInherit:
			superVal := vm.peek(1)
			if !superVal.IsObjType(ObjTypeClass) {
				return fail(newRuntimeError("Superclass must be a class."))
			}
			superclass := superVal.AsObject().(*ObjClass)
			subclass := vm.peek(0).AsObject().(*ObjClass)
			subclass.Methods.AddAll(superclass.Methods)
			vm.pop() // pop the redundant subclass copy; the superclass stays bound to the enclosing "super" local

		case OpMethod:
			name := readString()
			method := vm.peek(0)
			class := vm.peek(1).AsObject().(*ObjClass)
			class.Methods.Set(name, method)
			vm.pop()

		default:
			return fail(newRuntimeError("Unknown opcode %d.", op))
		}
	}
}
