package vm

import (
	"github.com/yscript-lang/yscript/internal/config"
	"github.com/yscript-lang/yscript/internal/scanner"
	"github.com/yscript-lang/yscript/internal/token"
)

// FunctionType distinguishes the top-level script, plain functions, methods,
// and the special "init" initializer, which implicitly returns `this`
// instead of nil (spec.md §4.3).
type FunctionType int

const (
	TypeFunction FunctionType = iota
	TypeInitializer
	TypeMethod
	TypeScript
)

// Local is a compile-time record of one local variable's name, the scope
// depth it was declared at (-1 while its own initializer is still being
// compiled, per spec.md §4.3 "Locals"), and whether any nested function
// closes over it.
type Local struct {
	name       token.Token
	depth      int
	isCaptured bool
}

// Upvalue is a compile-time record of one captured variable: either a slot
// in the immediately enclosing function's locals, or an upvalue index in
// that enclosing function's own upvalue list (spec.md §4.3 "Upvalues").
type Upvalue struct {
	index   int
	isLocal bool
}

// Compiler is one activation of the compiler, one per function body being
// compiled (including the implicit top-level script). Compiler.enclosing
// threads these into a stack matching the nesting of function declarations,
// and is also the chain gc.go walks as a GC root set during compilation.
type Compiler struct {
	enclosing *Compiler
	function  *ObjFunction
	fnType    FunctionType

	locals     []Local
	scopeDepth int
	upvalues   []Upvalue
}

// ClassCompiler tracks the class currently being compiled, for `this`/`super`
// validation. A class declared inside a method body of another class links
// to that outer class through enclosing, which classDeclaration restores
// when the inner class body ends (spec.md §4.3 "ClassCompiler").
type ClassCompiler struct {
	enclosing     *ClassCompiler
	hasSuperclass bool
}

type parserState struct {
	current, previous token.Token
	hadError           bool
	panicMode          bool
	errors             []CompileError
}

// compilerCtx bundles the scanner, parser state, and the active Compiler
// and ClassCompiler chains — the single-pass Pratt compiler of spec.md §4.3,
// translating source directly to bytecode with no intermediate AST.
type compilerCtx struct {
	vm      *VM
	scanner *scanner.Scanner
	parser  *parserState

	current *Compiler
	class   *ClassCompiler
}

// Compile is the compiler's entry point (spec.md §6 "Host API"): on success
// it returns the top-level script as an ObjFunction with a nil error slice;
// on failure it returns a nil function and the accumulated diagnostics.
func Compile(vm *VM, source string) (*ObjFunction, []CompileError) {
	c := &compilerCtx{
		vm:      vm,
		scanner: scanner.New(source),
		parser:  &parserState{},
	}
	c.initCompiler(TypeScript, "")

	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}

	fn := c.endCompiler()
	vm.compilerRoot = nil

	if c.parser.hadError {
		return nil, c.parser.errors
	}
	return fn, nil
}

func (c *compilerCtx) initCompiler(fnType FunctionType, name string) {
	comp := &Compiler{enclosing: c.current, fnType: fnType}
	comp.function = c.vm.newFunction()
	// Root the new function before allocating its name, which may collect.
	c.current = comp
	c.vm.compilerRoot = comp
	if name != "" {
		comp.function.Name = c.vm.newString(name)
	}
	// Slot 0 is reserved: `this` for methods/initializers, unnamed (and so
	// unreferenceable from source) for plain functions and the script.
	slotName := ""
	if fnType != TypeFunction && fnType != TypeScript {
		slotName = "this"
	}
	comp.locals = append(comp.locals, Local{name: token.Token{Lexeme: slotName}, depth: 0})
}

func (c *compilerCtx) endCompiler() *ObjFunction {
	c.emitReturn()
	fn := c.current.function
	c.current = c.current.enclosing
	c.vm.compilerRoot = c.current
	return fn
}

func (c *compilerCtx) emitReturn() {
	if c.current.fnType == TypeInitializer {
		c.emitBytes(byte(OpGetLocal), 0)
	} else {
		c.emitByte(byte(OpNil))
	}
	c.emitByte(byte(OpReturn))
}

func (c *compilerCtx) currentChunk() *Chunk { return c.current.function.Chunk }

func (c *compilerCtx) emitByte(b byte) {
	c.currentChunk().Write(b, c.parser.previous.Line)
}

func (c *compilerCtx) emitBytes(a, b byte) {
	c.emitByte(a)
	c.emitByte(b)
}

func (c *compilerCtx) emitOp(op OpCode) { c.emitByte(byte(op)) }

// makeConstant appends value to the current chunk's constant pool, erroring
// (rather than silently truncating) if it would overflow the one-byte
// operand spec.md §4.3/§7 mandate.
func (c *compilerCtx) makeConstant(value Value) byte {
	index := c.currentChunk().AddConstant(value)
	if index > config.MaxConstants-1 {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return byte(index)
}

func (c *compilerCtx) emitConstant(value Value) {
	c.emitBytes(byte(OpConstant), c.makeConstant(value))
}

// --- token stream plumbing ---

func (c *compilerCtx) advance() {
	c.parser.previous = c.parser.current
	for {
		c.parser.current = c.scanner.Next()
		if c.parser.current.Kind != token.ERROR {
			break
		}
		c.errorAtCurrent(c.parser.current.Lexeme)
	}
}

func (c *compilerCtx) check(kind token.Kind) bool { return c.parser.current.Kind == kind }

func (c *compilerCtx) match(kind token.Kind) bool {
	if !c.check(kind) {
		return false
	}
	c.advance()
	return true
}

func (c *compilerCtx) consume(kind token.Kind, message string) {
	if c.parser.current.Kind == kind {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

func (c *compilerCtx) errorAtCurrent(message string) { c.errorAt(c.parser.current, message) }
func (c *compilerCtx) error(message string)          { c.errorAt(c.parser.previous, message) }

// errorAt records one diagnostic and enters panic mode, which suppresses
// further diagnostics (a single syntax error tends to cascade into bogus
// follow-on ones) until synchronize() finds a statement boundary (spec.md
// §4.3 "Error recovery", §7).
func (c *compilerCtx) errorAt(tok token.Token, message string) {
	if c.parser.panicMode {
		return
	}
	c.parser.panicMode = true
	c.parser.hadError = true
	c.parser.errors = append(c.parser.errors, CompileError{Line: tok.Line, Message: message})
}

// synchronize skips tokens until it finds a plausible statement boundary,
// so the compiler can keep parsing and report more than one error per
// source file (spec.md §4.3, §7).
func (c *compilerCtx) synchronize() {
	c.parser.panicMode = false
	for c.parser.current.Kind != token.EOF {
		if c.parser.previous.Kind == token.SEMICOLON {
			return
		}
		switch c.parser.current.Kind {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		c.advance()
	}
}
