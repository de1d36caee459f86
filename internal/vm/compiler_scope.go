package vm

import (
	"github.com/yscript-lang/yscript/internal/config"
	"github.com/yscript-lang/yscript/internal/token"
)

func (c *compilerCtx) beginScope() { c.current.scopeDepth++ }

// endScope closes the current block's scope, popping its locals off both
// the compile-time Local list and the runtime stack. A captured local emits
// OP_CLOSE_UPVALUE instead of a plain OP_POP so any closure over it keeps a
// live copy after the stack slot is gone (spec.md §4.3, §4.5).
func (c *compilerCtx) endScope() {
	c.current.scopeDepth--
	locals := c.current.locals
	for len(locals) > 0 && locals[len(locals)-1].depth > c.current.scopeDepth {
		if locals[len(locals)-1].isCaptured {
			c.emitOp(OpCloseUpvalue)
		} else {
			c.emitOp(OpPop)
		}
		locals = locals[:len(locals)-1]
	}
	c.current.locals = locals
}

func identifiersEqual(a, b token.Token) bool { return a.Lexeme == b.Lexeme }

// declareVariable registers the variable currently in parser.previous as a
// new local (global variables are instead resolved lazily by name at
// runtime and need no declare step). Redeclaring a name already local to
// this exact scope is an error (spec.md §4.3, §7).
func (c *compilerCtx) declareVariable(name token.Token) {
	if c.current.scopeDepth == 0 {
		return
	}
	for i := len(c.current.locals) - 1; i >= 0; i-- {
		local := c.current.locals[i]
		if local.depth != -1 && local.depth < c.current.scopeDepth {
			break
		}
		if identifiersEqual(name, local.name) {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name)
}

func (c *compilerCtx) addLocal(name token.Token) {
	if len(c.current.locals) >= config.MaxLocals {
		c.error("Too many local variables in function.")
		return
	}
	c.current.locals = append(c.current.locals, Local{name: name, depth: -1})
}

func (c *compilerCtx) markInitialized() {
	if c.current.scopeDepth == 0 {
		return
	}
	c.current.locals[len(c.current.locals)-1].depth = c.current.scopeDepth
}

// resolveLocal searches innermost-out; a depth of -1 means "declared but not
// yet initialized" — reading a local in its own initializer is an error
// (spec.md §4.3, §7, e.g. `var a = a;`).
func (c *compilerCtx) resolveLocal(comp *Compiler, name token.Token) int {
	for i := len(comp.locals) - 1; i >= 0; i-- {
		if identifiersEqual(name, comp.locals[i].name) {
			if comp.locals[i].depth == -1 {
				c.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

func (c *compilerCtx) addUpvalue(comp *Compiler, index int, isLocal bool) int {
	for i, uv := range comp.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	if len(comp.upvalues) >= config.MaxUpvalues {
		c.error("Too many closure variables in function.")
		return 0
	}
	comp.upvalues = append(comp.upvalues, Upvalue{index: index, isLocal: isLocal})
	comp.function.UpvalueCount = len(comp.upvalues)
	return len(comp.upvalues) - 1
}

// resolveUpvalue recursively resolves name through enclosing compilers,
// marking the captured local (once found) so endScope knows to close it
// instead of popping it (spec.md §4.3, §4.5 "Upvalue capture").
func (c *compilerCtx) resolveUpvalue(comp *Compiler, name token.Token) int {
	if comp.enclosing == nil {
		return -1
	}
	if local := c.resolveLocal(comp.enclosing, name); local != -1 {
		comp.enclosing.locals[local].isCaptured = true
		return c.addUpvalue(comp, local, true)
	}
	if upvalue := c.resolveUpvalue(comp.enclosing, name); upvalue != -1 {
		return c.addUpvalue(comp, upvalue, false)
	}
	return -1
}

func (c *compilerCtx) identifierConstant(name token.Token) byte {
	return c.makeConstant(ObjValue(c.vm.newString(name.Lexeme)))
}

// parseVariable consumes an identifier and, for a local, declares it; for a
// global it returns the name's constant-pool index to be used by
// OP_DEFINE_GLOBAL later (spec.md §4.3 "Declarations").
func (c *compilerCtx) parseVariable(errorMessage string) byte {
	c.consume(token.IDENTIFIER, errorMessage)
	name := c.parser.previous
	c.declareVariable(name)
	if c.current.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(name)
}

func (c *compilerCtx) defineVariable(global byte) {
	if c.current.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitBytes(byte(OpDefineGlobal), global)
}

// namedVariable compiles a single identifier reference, resolving it local,
// upvalue, or global (in that order) and emitting the matching GET/SET pair;
// an `=` immediately following is an assignment only when canAssign, which
// is false while parsing a higher-precedence context (spec.md §4.3 "Pratt
// parsing", §4.4 assignment ops).
func (c *compilerCtx) namedVariable(name token.Token, canAssign bool) {
	var getOp, setOp OpCode
	arg := c.resolveLocal(c.current, name)
	if arg != -1 {
		getOp, setOp = OpGetLocal, OpSetLocal
	} else if arg = c.resolveUpvalue(c.current, name); arg != -1 {
		getOp, setOp = OpGetUpvalue, OpSetUpvalue
	} else {
		arg = int(c.identifierConstant(name))
		getOp, setOp = OpGetGlobal, OpSetGlobal
	}

	if canAssign && c.match(token.EQUAL) {
		c.expression()
		c.emitBytes(byte(setOp), byte(arg))
	} else {
		c.emitBytes(byte(getOp), byte(arg))
	}
}

func (c *compilerCtx) argumentList() int {
	argCount := 0
	if !c.check(token.RIGHT_PAREN) {
		for {
			c.expression()
			if argCount == 255 {
				c.error("Can't have more than 255 arguments.")
			}
			argCount++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RIGHT_PAREN, "Expect ')' after arguments.")
	return argCount
}
