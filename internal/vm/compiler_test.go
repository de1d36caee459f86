package vm

import (
	"strings"
	"testing"
)

func compileSource(t *testing.T, source string) (*ObjFunction, []CompileError) {
	t.Helper()
	v := newBareVM()
	return Compile(v, source)
}

// TestConstantBoundary guards spec.md §8 "A chunk with exactly 256
// constants compiles; 257 errors."
func TestConstantBoundary(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 256; i++ {
		b.WriteString("1;")
	}
	if _, errs := compileSource(t, b.String()); len(errs) != 0 {
		t.Fatalf("expected 256 constants to compile cleanly, got errors: %v", errs)
	}

	b.WriteString("1;")
	if fn, errs := compileSource(t, b.String()); fn != nil || len(errs) == 0 {
		t.Fatalf("expected 257 constants to error")
	}
}

// TestParameterBoundary guards spec.md §8 "A function with 255 parameters
// compiles; 256 errors."
func TestParameterBoundary(t *testing.T) {
	params := make([]string, 255)
	for i := range params {
		params[i] = "p" + itoa(i)
	}
	src := "fun f(" + strings.Join(params, ",") + ") { return 0; }"
	if _, errs := compileSource(t, src); len(errs) != 0 {
		t.Fatalf("expected 255 parameters to compile cleanly, got %v", errs)
	}

	src256 := "fun f(" + strings.Join(params, ",") + ",extra) { return 0; }"
	if fn, errs := compileSource(t, src256); fn != nil || len(errs) == 0 {
		t.Fatalf("expected 256 parameters to error")
	}
}

func TestDuplicateLocalInSameScope(t *testing.T) {
	src := "{ var a = 1; var a = 2; }"
	if fn, errs := compileSource(t, src); fn != nil || len(errs) == 0 {
		t.Fatalf("expected duplicate local declaration to error")
	}
}

func TestThisOutsideClass(t *testing.T) {
	src := "print this;"
	if fn, errs := compileSource(t, src); fn != nil || len(errs) == 0 {
		t.Fatalf("expected 'this' outside a class to error")
	}
}

func TestReturnFromTopLevel(t *testing.T) {
	src := "return 1;"
	if fn, errs := compileSource(t, src); fn != nil || len(errs) == 0 {
		t.Fatalf("expected return from top-level to error")
	}
}

func TestSelfReferenceInInitializer(t *testing.T) {
	src := "{ var a = a; }"
	if fn, errs := compileSource(t, src); fn != nil || len(errs) == 0 {
		t.Fatalf("expected self-reference in initializer to error")
	}
}

func TestEmptyProgramCompiles(t *testing.T) {
	fn, errs := compileSource(t, "")
	if fn == nil || len(errs) != 0 {
		t.Fatalf("expected empty source to compile to a valid (empty) script function")
	}
}

// TestJumpBoundary guards spec.md §8 "A jump at exactly 65535 bytes
// compiles; 65536 errors," exercised directly against patchJump rather than
// through a ~65KB generated program.
func TestJumpBoundary(t *testing.T) {
	v := newBareVM()
	c := &compilerCtx{vm: v, parser: &parserState{}}
	c.initCompiler(TypeScript, "")

	offset := c.emitJump(OpJump)
	for len(c.currentChunk().Code) < offset+2+65535 {
		c.emitByte(0)
	}
	c.patchJump(offset)
	if c.parser.hadError {
		t.Fatalf("expected a jump of exactly 65535 to patch cleanly")
	}

	c2 := &compilerCtx{vm: v, parser: &parserState{}}
	c2.initCompiler(TypeScript, "")
	offset2 := c2.emitJump(OpJump)
	for len(c2.currentChunk().Code) < offset2+2+65536 {
		c2.emitByte(0)
	}
	c2.patchJump(offset2)
	if !c2.parser.hadError {
		t.Fatalf("expected a jump of 65536 to error")
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
