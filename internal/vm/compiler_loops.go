package vm

import (
	"github.com/yscript-lang/yscript/internal/config"
	"github.com/yscript-lang/yscript/internal/token"
)

// emitJump writes a jump opcode with a two-byte placeholder offset and
// returns the offset of the first placeholder byte, to be fixed up later by
// patchJump (spec.md §4.3 "Control-flow patching").
func (c *compilerCtx) emitJump(op OpCode) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.currentChunk().Code) - 2
}

// patchJump backpatches the jump instruction at offset to land at the
// current end of the chunk, erroring if the jump distance overflows the
// two-byte operand (spec.md §4.3, §7).
func (c *compilerCtx) patchJump(offset int) {
	jump := len(c.currentChunk().Code) - offset - 2
	if jump > config.MaxJump-1 {
		c.error("Too much code to jump over.")
	}
	code := c.currentChunk().Code
	code[offset] = byte((jump >> 8) & 0xff)
	code[offset+1] = byte(jump & 0xff)
}

// emitLoop emits OP_LOOP with a back-offset to loopStart (spec.md §4.4).
func (c *compilerCtx) emitLoop(loopStart int) {
	c.emitOp(OpLoop)
	offset := len(c.currentChunk().Code) - loopStart + 2
	if offset > config.MaxJump-1 {
		c.error("Loop body too large.")
	}
	c.emitByte(byte((offset >> 8) & 0xff))
	c.emitByte(byte(offset & 0xff))
}

func (c *compilerCtx) ifStatement() {
	c.consume(token.LEFT_PAREN, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RIGHT_PAREN, "Expect ')' after condition.")

	thenJump := c.emitJump(OpJumpIfFalse)
	c.emitOp(OpPop)
	c.statement()

	elseJump := c.emitJump(OpJump)
	c.patchJump(thenJump)
	c.emitOp(OpPop)

	if c.match(token.ELSE) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *compilerCtx) whileStatement() {
	loopStart := len(c.currentChunk().Code)
	c.consume(token.LEFT_PAREN, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RIGHT_PAREN, "Expect ')' after condition.")

	exitJump := c.emitJump(OpJumpIfFalse)
	c.emitOp(OpPop)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(OpPop)
}

// forStatement desugars to the equivalent while loop: an optional
// initializer runs once in its own scope, the condition (default true) and
// increment wrap a JUMP/LOOP pair exactly like whileStatement's (spec.md
// §4.3 "for desugaring").
func (c *compilerCtx) forStatement() {
	c.beginScope()
	c.consume(token.LEFT_PAREN, "Expect '(' after 'for'.")

	switch {
	case c.match(token.SEMICOLON):
		// no initializer
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := len(c.currentChunk().Code)
	exitJump := -1
	if !c.match(token.SEMICOLON) {
		c.expression()
		c.consume(token.SEMICOLON, "Expect ';' after loop condition.")
		exitJump = c.emitJump(OpJumpIfFalse)
		c.emitOp(OpPop)
	}

	if !c.match(token.RIGHT_PAREN) {
		bodyJump := c.emitJump(OpJump)
		incrementStart := len(c.currentChunk().Code)
		c.expression()
		c.emitOp(OpPop)
		c.consume(token.RIGHT_PAREN, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(OpPop)
	}

	c.endScope()
}

// and_ and or_ are the Pratt infix handlers for `&&`/`||`-style short
// circuiting: the right operand is compiled only when the left side's
// truthiness doesn't already decide the result (spec.md §4.4).
func and_(c *compilerCtx, canAssign bool) {
	endJump := c.emitJump(OpJumpIfFalse)
	c.emitOp(OpPop)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

func or_(c *compilerCtx, canAssign bool) {
	elseJump := c.emitJump(OpJumpIfFalse)
	endJump := c.emitJump(OpJump)

	c.patchJump(elseJump)
	c.emitOp(OpPop)

	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}
