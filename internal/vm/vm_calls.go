package vm

import "github.com/yscript-lang/yscript/internal/config"

// callClosure pushes a new CallFrame for closure, given argCount arguments
// already sitting on the stack below the current top (spec.md §4.5 "Call
// protocol"). The callee itself occupies stack[-argCount-1], which becomes
// frame.base — slot 0 of the new frame.
func (vm *VM) callClosure(closure *ObjClosure, argCount int) error {
	if argCount != closure.Function.Arity {
		return newRuntimeError("Expected %d arguments but got %d.", closure.Function.Arity, argCount)
	}
	if vm.frameCount == config.FramesMax {
		return newRuntimeError("Stack overflow.")
	}
	frame := &vm.frames[vm.frameCount]
	vm.frameCount++
	frame.closure = closure
	frame.ip = 0
	frame.base = vm.sp - argCount - 1
	return nil
}

// callValue implements the full CALL protocol of spec.md §4.5: Closure,
// Native, Class (constructor + optional init), BoundMethod, or a runtime
// error for anything else.
func (vm *VM) callValue(callee Value, argCount int) error {
	if callee.IsObject() {
		switch obj := callee.AsObject().(type) {
		case *ObjClosure:
			return vm.callClosure(obj, argCount)
		case *ObjNative:
			args := vm.stack[vm.sp-argCount : vm.sp]
			result, err := obj.Fn(vm, args)
			if err != nil {
				return err
			}
			vm.sp -= argCount + 1
			vm.push(result)
			return nil
		case *ObjClass:
			instance := vm.newInstance(obj)
			vm.stack[vm.sp-argCount-1] = ObjValue(instance)
			if initializer, ok := obj.Methods.Get(vm.initString); ok {
				return vm.callClosure(initializer.AsObject().(*ObjClosure), argCount)
			}
			if argCount != 0 {
				return newRuntimeError("Expected 0 arguments but got %d.", argCount)
			}
			return nil
		case *ObjBoundMethod:
			vm.stack[vm.sp-argCount-1] = obj.Receiver
			return vm.callClosure(obj.Method, argCount)
		}
	}
	return newRuntimeError("Can only call functions and classes.")
}

// invoke fuses a GET_PROPERTY + CALL for the common `receiver.method(...)`
// shape (spec.md §4.4 INVOKE).
func (vm *VM) invoke(name *ObjString, argCount int) error {
	receiver := vm.peek(argCount)
	if !receiver.IsObjType(ObjTypeInstance) {
		return newRuntimeError("Only instances have methods.")
	}
	instance := receiver.AsObject().(*ObjInstance)

	if field, ok := instance.Fields.Get(name); ok {
		vm.stack[vm.sp-argCount-1] = field
		return vm.callValue(field, argCount)
	}
	return vm.invokeFromClass(instance.Class, name, argCount)
}

func (vm *VM) invokeFromClass(class *ObjClass, name *ObjString, argCount int) error {
	method, ok := class.Methods.Get(name)
	if !ok {
		return newRuntimeError("Undefined property '%s'.", name.Chars)
	}
	return vm.callClosure(method.AsObject().(*ObjClosure), argCount)
}

// bindMethod looks up name in class.Methods and, on success, replaces the
// top of stack (the instance) with a BoundMethod (spec.md §4.5 "Property
// access").
func (vm *VM) bindMethod(class *ObjClass, name *ObjString) error {
	method, ok := class.Methods.Get(name)
	if !ok {
		return newRuntimeError("Undefined property '%s'.", name.Chars)
	}
	bound := vm.newBoundMethod(vm.peek(0), method.AsObject().(*ObjClosure))
	vm.pop()
	vm.push(ObjValue(bound))
	return nil
}

// captureUpvalue walks the open-upvalues list (sorted by descending stack
// address) and either returns an existing handle for location or splices in
// a new one (spec.md §4.5 "Upvalue capture").
func (vm *VM) captureUpvalue(location int) *ObjUpvalue {
	var prev *ObjUpvalue
	cur := vm.openUpvalues
	for cur != nil && cur.Location > location {
		prev = cur
		cur = cur.NextOpen
	}
	if cur != nil && cur.Location == location {
		return cur
	}

	created := vm.newUpvalue(location)
	created.NextOpen = cur
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.NextOpen = created
	}
	return created
}

// closeUpvalues closes every open upvalue at stack location >= from: it
// copies the slot's value into the upvalue's closed cell, marks it closed,
// and unlinks it from the open list (spec.md §4.5 "Upvalue capture").
func (vm *VM) closeUpvalues(from int) {
	for vm.openUpvalues != nil && vm.openUpvalues.Location >= from {
		uv := vm.openUpvalues
		uv.Closed = vm.stack[uv.Location]
		uv.isOpen = false
		uv.Location = -1
		vm.openUpvalues = uv.NextOpen
		uv.NextOpen = nil
	}
}
