package vm

import "github.com/yscript-lang/yscript/internal/token"

// declaration is the top of the statement grammar: declarations first, then
// falls through to statement(). On a parse error it synchronizes to the
// next statement boundary so compilation can continue collecting
// diagnostics (spec.md §4.3, §7).
func (c *compilerCtx) declaration() {
	switch {
	case c.match(token.CLASS):
		c.classDeclaration()
	case c.match(token.FUN):
		c.funDeclaration()
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.statement()
	}

	if c.parser.panicMode {
		c.synchronize()
	}
}

func (c *compilerCtx) statement() {
	switch {
	case c.match(token.PRINT):
		c.printStatement()
	case c.match(token.IF):
		c.ifStatement()
	case c.match(token.RETURN):
		c.returnStatement()
	case c.match(token.WHILE):
		c.whileStatement()
	case c.match(token.FOR):
		c.forStatement()
	case c.match(token.LEFT_BRACE):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *compilerCtx) block() {
	for !c.check(token.RIGHT_BRACE) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RIGHT_BRACE, "Expect '}' after block.")
}

func (c *compilerCtx) printStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after value.")
	c.emitOp(OpPrint)
}

// returnStatement forbids returning a value from an initializer (spec.md
// §4.3, §7: `init` implicitly returns `this`), and at the top level of the
// script entirely (there's no call frame to return early from).
func (c *compilerCtx) returnStatement() {
	if c.current.fnType == TypeScript {
		c.error("Can't return from top-level code.")
	}
	if c.match(token.SEMICOLON) {
		c.emitReturn()
		return
	}
	if c.current.fnType == TypeInitializer {
		c.error("Can't return a value from an initializer.")
	}
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after return value.")
	c.emitOp(OpReturn)
}

func (c *compilerCtx) expressionStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after expression.")
	c.emitOp(OpPop)
}

func (c *compilerCtx) varDeclaration() {
	global := c.parseVariable("Expect variable name.")

	if c.match(token.EQUAL) {
		c.expression()
	} else {
		c.emitOp(OpNil)
	}
	c.consume(token.SEMICOLON, "Expect ';' after variable declaration.")

	c.defineVariable(global)
}

func (c *compilerCtx) funDeclaration() {
	global := c.parseVariable("Expect function name.")
	c.markInitialized()
	c.function(TypeFunction)
	c.defineVariable(global)
}

// function compiles one function body (shared by top-level `fun`
// declarations and class methods) as its own Compiler activation, then
// emits OP_CLOSURE in the *enclosing* compiler together with one
// (isLocal, index) pair per captured upvalue (spec.md §4.3, §4.5).
func (c *compilerCtx) function(fnType FunctionType) {
	name := c.parser.previous.Lexeme
	c.initCompiler(fnType, name)
	c.beginScope()

	c.consume(token.LEFT_PAREN, "Expect '(' after function name.")
	if !c.check(token.RIGHT_PAREN) {
		for {
			c.current.function.Arity++
			if c.current.function.Arity > 255 {
				c.errorAtCurrent("Can't have more than 255 parameters.")
			}
			paramConstant := c.parseVariable("Expect parameter name.")
			c.defineVariable(paramConstant)
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RIGHT_PAREN, "Expect ')' after parameters.")
	c.consume(token.LEFT_BRACE, "Expect '{' before function body.")

	inner := c.current
	c.block()
	fn := c.endCompiler()

	c.emitBytes(byte(OpClosure), c.makeConstant(ObjValue(fn)))
	for _, uv := range inner.upvalues {
		isLocal := byte(0)
		if uv.isLocal {
			isLocal = 1
		}
		c.emitByte(isLocal)
		c.emitByte(byte(uv.index))
	}
}

// method compiles a single method inside a class body. A method named
// "init" is compiled as TypeInitializer rather than TypeMethod so emitReturn
// and returnStatement treat it specially (spec.md §3 "init", §4.5 "Call
// protocol").
func (c *compilerCtx) method() {
	c.consume(token.IDENTIFIER, "Expect method name.")
	name := c.parser.previous
	constant := c.identifierConstant(name)

	fnType := TypeMethod
	if name.Lexeme == "init" {
		fnType = TypeInitializer
	}
	c.function(fnType)
	c.emitBytes(byte(OpMethod), constant)
}

// classDeclaration compiles `class Name [< Super] { methods... }`. The
// stack shape it builds around OP_INHERIT and OP_METHOD must match what
// vm_exec.go's OP_INHERIT/OP_METHOD handlers expect: the class sits at
// peek(1) under each compiled method while methods are defined, and while
// inheriting, the superclass sits below a redundant copy of the subclass
// that OP_INHERIT immediately pops (spec.md §4.5).
func (c *compilerCtx) classDeclaration() {
	c.consume(token.IDENTIFIER, "Expect class name.")
	className := c.parser.previous
	nameConstant := c.identifierConstant(className)
	c.declareVariable(className)

	c.emitBytes(byte(OpClass), nameConstant)
	c.defineVariable(nameConstant)

	classCompiler := &ClassCompiler{enclosing: c.class}
	c.class = classCompiler

	if c.match(token.LESS) {
		c.consume(token.IDENTIFIER, "Expect superclass name.")
		c.namedVariable(c.parser.previous, false)
		if identifiersEqual(className, c.parser.previous) {
			c.error("A class can't inherit from itself.")
		}

		c.beginScope()
		c.addLocal(token.Token{Lexeme: "super"})
		c.defineVariable(0)

		c.namedVariable(className, false)
		c.emitOp(OpInherit)
		classCompiler.hasSuperclass = true
	}

	c.namedVariable(className, false)
	c.consume(token.LEFT_BRACE, "Expect '{' before class body.")
	for !c.check(token.RIGHT_BRACE) && !c.check(token.EOF) {
		c.method()
	}
	c.consume(token.RIGHT_BRACE, "Expect '}' after class body.")
	c.emitOp(OpPop)

	if classCompiler.hasSuperclass {
		c.endScope()
	}
	c.class = c.class.enclosing
}
