package vm

import (
	"fmt"
	"io"
)

// Disassemble writes a human-readable listing of every instruction in chunk
// to w, labeled with name. It is a development/test aid, not part of the
// host API (spec.md §4.1 "Chunk is a linear bytecode buffer"); grounded on
// the teacher's disassembler, trimmed to this language's opcode set.
func Disassemble(w io.Writer, chunk *Chunk, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	for offset := 0; offset < len(chunk.Code); {
		offset = disassembleInstruction(w, chunk, offset)
	}
}

func disassembleInstruction(w io.Writer, chunk *Chunk, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)
	if offset > 0 && chunk.Lines[offset] == chunk.Lines[offset-1] {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", chunk.Lines[offset])
	}

	op := OpCode(chunk.Code[offset])
	switch op {
	case OpConstant:
		return constantInstruction(w, op, chunk, offset)
	case OpGetLocal, OpSetLocal, OpGetUpvalue, OpSetUpvalue, OpCall:
		return byteInstruction(w, op, chunk, offset)
	case OpGetGlobal, OpDefineGlobal, OpSetGlobal, OpGetProperty, OpSetProperty,
		OpGetSuper, OpClass, OpMethod:
		return constantInstruction(w, op, chunk, offset)
	case OpInvoke, OpSuperInvoke:
		return invokeInstruction(w, op, chunk, offset)
	case OpJump, OpJumpIfFalse:
		return jumpInstruction(w, op, 1, chunk, offset)
	case OpLoop:
		return jumpInstruction(w, op, -1, chunk, offset)
	case OpClosure:
		return closureInstruction(w, chunk, offset)
	default:
		fmt.Fprintf(w, "%s\n", op)
		return offset + 1
	}
}

func byteInstruction(w io.Writer, op OpCode, chunk *Chunk, offset int) int {
	slot := chunk.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d\n", op, slot)
	return offset + 2
}

func constantInstruction(w io.Writer, op OpCode, chunk *Chunk, offset int) int {
	constant := chunk.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d '%s'\n", op, constant, chunk.Constants[constant].String())
	return offset + 2
}

func invokeInstruction(w io.Writer, op OpCode, chunk *Chunk, offset int) int {
	constant := chunk.Code[offset+1]
	argCount := chunk.Code[offset+2]
	fmt.Fprintf(w, "%-16s (%d args) %4d '%s'\n", op, argCount, constant, chunk.Constants[constant].String())
	return offset + 3
}

func jumpInstruction(w io.Writer, op OpCode, sign int, chunk *Chunk, offset int) int {
	jump := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
	target := offset + 3 + sign*jump
	fmt.Fprintf(w, "%-16s %4d -> %d\n", op, offset, target)
	return offset + 3
}

func closureInstruction(w io.Writer, chunk *Chunk, offset int) int {
	offset++
	constant := chunk.Code[offset]
	offset++
	fmt.Fprintf(w, "%-16s %4d '%s'\n", OpClosure, constant, chunk.Constants[constant].String())

	fn := chunk.Constants[constant].AsObject().(*ObjFunction)
	for i := 0; i < fn.UpvalueCount; i++ {
		isLocal := chunk.Code[offset]
		offset++
		index := chunk.Code[offset]
		offset++
		kind := "upvalue"
		if isLocal != 0 {
			kind = "local"
		}
		fmt.Fprintf(w, "%04d      |                     %s %d\n", offset-2, kind, index)
	}
	return offset
}
