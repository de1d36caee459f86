package vm

// OpCode is a single VM instruction (spec.md §4.4). One byte opcode;
// operands are encoded in bytes as documented per-instruction below. All
// constant-pool/local/upvalue operands are one byte; jump offsets are
// two-byte big-endian.
type OpCode byte

const (
	OpConstant OpCode = iota
	OpNil
	OpTrue
	OpFalse
	OpPop

	OpGetLocal
	OpSetLocal
	OpGetGlobal
	OpDefineGlobal
	OpSetGlobal
	OpGetUpvalue
	OpSetUpvalue
	OpGetProperty
	OpSetProperty
	OpGetSuper

	OpEqual
	OpGreater
	OpLess

	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpNot
	OpNegate

	OpPrint

	OpJump
	OpJumpIfFalse
	OpLoop

	OpCall
	OpInvoke
	OpSuperInvoke
	OpClosure
	OpCloseUpvalue
	OpReturn

	OpClass
	OpInherit
	OpMethod
)

var opcodeNames = map[OpCode]string{
	OpConstant:     "CONSTANT",
	OpNil:          "NIL",
	OpTrue:         "TRUE",
	OpFalse:        "FALSE",
	OpPop:          "POP",
	OpGetLocal:     "GET_LOCAL",
	OpSetLocal:     "SET_LOCAL",
	OpGetGlobal:    "GET_GLOBAL",
	OpDefineGlobal: "DEFINE_GLOBAL",
	OpSetGlobal:    "SET_GLOBAL",
	OpGetUpvalue:   "GET_UPVALUE",
	OpSetUpvalue:   "SET_UPVALUE",
	OpGetProperty:  "GET_PROPERTY",
	OpSetProperty:  "SET_PROPERTY",
	OpGetSuper:     "GET_SUPER",
	OpEqual:        "EQUAL",
	OpGreater:      "GREATER",
	OpLess:         "LESS",
	OpAdd:          "ADD",
	OpSubtract:     "SUBTRACT",
	OpMultiply:     "MULTIPLY",
	OpDivide:       "DIVIDE",
	OpNot:          "NOT",
	OpNegate:       "NEGATE",
	OpPrint:        "PRINT",
	OpJump:         "JUMP",
	OpJumpIfFalse:  "JUMP_IF_FALSE",
	OpLoop:         "LOOP",
	OpCall:         "CALL",
	OpInvoke:       "INVOKE",
	OpSuperInvoke:  "SUPER_INVOKE",
	OpClosure:      "CLOSURE",
	OpCloseUpvalue: "CLOSE_UPVALUE",
	OpReturn:       "RETURN",
	OpClass:        "CLASS",
	OpInherit:      "INHERIT",
	OpMethod:       "METHOD",
}

func (op OpCode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "UNKNOWN"
}
