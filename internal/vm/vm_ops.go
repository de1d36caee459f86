package vm

// binaryAdd and binaryArith implement ADD/SUB/MUL/DIV's numbers-only cases,
// binaryAdd also covering the ADD string-concatenation special case (spec.md
// §4.4). Comparisons use their own helper below since they return bool, not
// number/string.
func (vm *VM) binaryAdd() error {
	b := vm.peek(0)
	a := vm.peek(1)
	switch {
	case a.IsNumber() && b.IsNumber():
		vm.pop()
		vm.pop()
		vm.push(NumberValue(a.AsNumber() + b.AsNumber()))
		return nil
	case a.IsObjType(ObjTypeString) && b.IsObjType(ObjTypeString):
		vm.pop()
		vm.pop()
		as := a.AsObject().(*ObjString)
		bs := b.AsObject().(*ObjString)
		vm.push(ObjValue(vm.newString(as.Chars + bs.Chars)))
		return nil
	default:
		return newRuntimeError("Operands must be two numbers or two strings.")
	}
}

func (vm *VM) binaryArith(op OpCode) error {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return newRuntimeError("Operands must be numbers.")
	}
	b := vm.pop().AsNumber()
	a := vm.pop().AsNumber()
	var result float64
	switch op {
	case OpSubtract:
		result = a - b
	case OpMultiply:
		result = a * b
	case OpDivide:
		result = a / b
	}
	vm.push(NumberValue(result))
	return nil
}

func (vm *VM) binaryCompare(op OpCode) error {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return newRuntimeError("Operands must be numbers.")
	}
	b := vm.pop().AsNumber()
	a := vm.pop().AsNumber()
	var result bool
	switch op {
	case OpGreater:
		result = a > b
	case OpLess:
		result = a < b
	}
	vm.push(BoolValue(result))
	return nil
}

func (vm *VM) negate() error {
	if !vm.peek(0).IsNumber() {
		return newRuntimeError("Operand must be a number.")
	}
	v := vm.pop()
	vm.push(NumberValue(-v.AsNumber()))
	return nil
}
