package vm

import (
	"bytes"
	"strings"
	"testing"
)

// TestDisassembleCoversEveryInstructionForm compiles two top-level-only
// scripts (no nested-chunk traversal needed) and checks that Disassemble
// walks each chunk without going out of sync with chunk.Lines/chunk.Code,
// covering each operand form disassembleInstruction handles: a constant
// load and global access, a one-byte operand (CALL), a jump, a loop, a
// fused INVOKE, a CLOSURE, and a class/method declaration.
func TestDisassembleCoversEveryInstructionForm(t *testing.T) {
	v := newBareVM()

	loopFn, errs := Compile(v, `
var i = 0;
while (i < 1) {
  print i;
  i = i + 1;
}
`)
	if len(errs) != 0 {
		t.Fatalf("expected clean compile, got %v", errs)
	}
	var loopOut bytes.Buffer
	Disassemble(&loopOut, loopFn.Chunk, "loop script")
	got := loopOut.String()
	if !strings.HasPrefix(got, "== loop script ==\n") {
		t.Fatalf("expected a header line, got %q", got)
	}
	for _, want := range []string{"CONSTANT", "PRINT", "LOOP", "JUMP_IF_FALSE"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected disassembly to mention %s, got:\n%s", want, got)
		}
	}

	classFn, errs := Compile(v, `
class Greeter {
  init(name) { this.name = name; }
  greet() { print this.name; }
}
Greeter("world").greet();
`)
	if len(errs) != 0 {
		t.Fatalf("expected clean compile, got %v", errs)
	}
	var classOut bytes.Buffer
	Disassemble(&classOut, classFn.Chunk, "class script")
	got = classOut.String()
	for _, want := range []string{"CLASS", "METHOD", "CLOSURE", "CALL", "INVOKE"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected disassembly to mention %s, got:\n%s", want, got)
		}
	}
}

// TestDisassembleClosureUpvalueRecord confirms closureInstruction advances
// exactly 2 + 2*UpvalueCount bytes past OP_CLOSURE, matching the
// variable-length upvalue-capture record compiler_statements.go's
// function() emits (one (isLocal, index) byte pair per captured upvalue).
func TestDisassembleClosureUpvalueRecord(t *testing.T) {
	v := newBareVM()
	fn, errs := Compile(v, `
fun makeCounter() {
  var i = 0;
  fun count() { i = i + 1; return i; }
  return count;
}
`)
	if len(errs) != 0 {
		t.Fatalf("expected clean compile, got %v", errs)
	}

	// The top-level chunk's only function constant is makeCounter itself;
	// the OP_CLOSURE instruction that captures count's upvalue is emitted
	// into makeCounter's own chunk (function(), compiler_statements.go),
	// not the top-level one.
	var outer, inner *ObjFunction
	for _, c := range fn.Chunk.Constants {
		if c.IsObject() {
			if f, ok := c.AsObject().(*ObjFunction); ok {
				outer = f
			}
		}
	}
	if outer == nil {
		t.Fatalf("expected to find makeCounter() among the top-level compiled constants")
	}
	for _, cc := range outer.Chunk.Constants {
		if cc.IsObject() {
			if nested, ok := cc.AsObject().(*ObjFunction); ok {
				inner = nested
			}
		}
	}
	if inner == nil {
		t.Fatalf("expected to find the nested count() function among makeCounter's constants")
	}
	if inner.UpvalueCount != 1 {
		t.Fatalf("expected count() to capture exactly 1 upvalue, got %d", inner.UpvalueCount)
	}

	var out bytes.Buffer
	offset := indexOfClosureOp(t, outer.Chunk)
	next := closureInstruction(&out, outer.Chunk, offset)
	consumed := next - offset
	if want := 2 + 2*inner.UpvalueCount; consumed != want {
		t.Fatalf("expected closureInstruction to consume %d bytes, consumed %d", want, consumed)
	}
}

func indexOfClosureOp(t *testing.T, chunk *Chunk) int {
	t.Helper()
	for i, b := range chunk.Code {
		if OpCode(b) == OpClosure {
			return i
		}
	}
	t.Fatalf("expected an OP_CLOSURE instruction in the chunk")
	return -1
}
