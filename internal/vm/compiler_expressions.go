package vm

import (
	"strconv"

	"github.com/yscript-lang/yscript/internal/token"
)

// precedence mirrors spec.md §4.3's Pratt precedence ladder, lowest to
// highest binding.
type precedence int

const (
	precNone precedence = iota
	precAssignment
	precOr
	precAnd
	precEquality
	precComparison
	precTerm
	precFactor
	precUnary
	precCall
	precPrimary
)

type parseFn func(c *compilerCtx, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence precedence
}

// rules is the token-kind-keyed Pratt table: for each token kind, what to do
// when it starts an expression (prefix), what to do when it follows one
// (infix), and the infix's binding precedence (spec.md §4.3 "Pratt parsing
// strategy").
var rules map[token.Kind]parseRule

func init() {
	rules = map[token.Kind]parseRule{
		token.LEFT_PAREN:    {prefix: grouping, infix: call_, precedence: precCall},
		token.DOT:           {infix: dot_, precedence: precCall},
		token.MINUS:         {prefix: unary, infix: binary, precedence: precTerm},
		token.PLUS:          {infix: binary, precedence: precTerm},
		token.SLASH:         {infix: binary, precedence: precFactor},
		token.STAR:          {infix: binary, precedence: precFactor},
		token.BANG:          {prefix: unary},
		token.BANG_EQUAL:    {infix: binary, precedence: precEquality},
		token.EQUAL_EQUAL:   {infix: binary, precedence: precEquality},
		token.GREATER:       {infix: binary, precedence: precComparison},
		token.GREATER_EQUAL: {infix: binary, precedence: precComparison},
		token.LESS:          {infix: binary, precedence: precComparison},
		token.LESS_EQUAL:    {infix: binary, precedence: precComparison},
		token.IDENTIFIER:    {prefix: variable_},
		token.STRING:        {prefix: stringLiteral},
		token.NUMBER:        {prefix: number},
		token.AND:           {infix: and_, precedence: precAnd},
		token.OR:            {infix: or_, precedence: precOr},
		token.FALSE:         {prefix: literal},
		token.NIL:           {prefix: literal},
		token.TRUE:          {prefix: literal},
		token.THIS:          {prefix: this_},
		token.SUPER:         {prefix: super_},
	}
}

func (c *compilerCtx) getRule(kind token.Kind) parseRule { return rules[kind] }

func (c *compilerCtx) expression() { c.parsePrecedence(precAssignment) }

// parsePrecedence is the Pratt engine's core loop: consume a prefix
// expression, then keep consuming infix operators whose precedence is at
// least prec. canAssign guards `=` so `a + b = c` isn't silently accepted as
// an assignment (spec.md §4.3, §7 "Invalid assignment target").
func (c *compilerCtx) parsePrecedence(prec precedence) {
	c.advance()
	prefixRule := c.getRule(c.parser.previous.Kind).prefix
	if prefixRule == nil {
		c.error("Expect expression.")
		return
	}

	canAssign := prec <= precAssignment
	prefixRule(c, canAssign)

	for prec <= c.getRule(c.parser.current.Kind).precedence {
		c.advance()
		infixRule := c.getRule(c.parser.previous.Kind).infix
		infixRule(c, canAssign)
	}

	if canAssign && c.match(token.EQUAL) {
		c.error("Invalid assignment target.")
	}
}

func number(c *compilerCtx, canAssign bool) {
	n, _ := strconv.ParseFloat(c.parser.previous.Lexeme, 64)
	c.emitConstant(NumberValue(n))
}

// stringLiteral strips the surrounding quotes and interns the contents
// (spec.md §3 "every run-time string is interned").
func stringLiteral(c *compilerCtx, canAssign bool) {
	lexeme := c.parser.previous.Lexeme
	chars := lexeme[1 : len(lexeme)-1]
	c.emitConstant(ObjValue(c.vm.newString(chars)))
}

func literal(c *compilerCtx, canAssign bool) {
	switch c.parser.previous.Kind {
	case token.FALSE:
		c.emitOp(OpFalse)
	case token.TRUE:
		c.emitOp(OpTrue)
	case token.NIL:
		c.emitOp(OpNil)
	}
}

func grouping(c *compilerCtx, canAssign bool) {
	c.expression()
	c.consume(token.RIGHT_PAREN, "Expect ')' after expression.")
}

func unary(c *compilerCtx, canAssign bool) {
	opKind := c.parser.previous.Kind
	c.parsePrecedence(precUnary)
	switch opKind {
	case token.BANG:
		c.emitOp(OpNot)
	case token.MINUS:
		c.emitOp(OpNegate)
	}
}

func binary(c *compilerCtx, canAssign bool) {
	opKind := c.parser.previous.Kind
	rule := c.getRule(opKind)
	c.parsePrecedence(rule.precedence + 1)

	switch opKind {
	case token.BANG_EQUAL:
		c.emitOp(OpEqual)
		c.emitOp(OpNot)
	case token.EQUAL_EQUAL:
		c.emitOp(OpEqual)
	case token.GREATER:
		c.emitOp(OpGreater)
	case token.GREATER_EQUAL:
		c.emitOp(OpLess)
		c.emitOp(OpNot)
	case token.LESS:
		c.emitOp(OpLess)
	case token.LESS_EQUAL:
		c.emitOp(OpGreater)
		c.emitOp(OpNot)
	case token.PLUS:
		c.emitOp(OpAdd)
	case token.MINUS:
		c.emitOp(OpSubtract)
	case token.STAR:
		c.emitOp(OpMultiply)
	case token.SLASH:
		c.emitOp(OpDivide)
	}
}

func call_(c *compilerCtx, canAssign bool) {
	argCount := c.argumentList()
	c.emitBytes(byte(OpCall), byte(argCount))
}

// dot_ compiles property access, fusing into OP_INVOKE when a call
// immediately follows (`a.b(...)`) rather than emitting the wasteful
// GET_PROPERTY+CALL pair (spec.md §4.4 "INVOKE").
func dot_(c *compilerCtx, canAssign bool) {
	c.consume(token.IDENTIFIER, "Expect property name after '.'.")
	name := c.identifierConstant(c.parser.previous)

	switch {
	case canAssign && c.match(token.EQUAL):
		c.expression()
		c.emitBytes(byte(OpSetProperty), name)
	case c.match(token.LEFT_PAREN):
		argCount := c.argumentList()
		c.emitBytes(byte(OpInvoke), name)
		c.emitByte(byte(argCount))
	default:
		c.emitBytes(byte(OpGetProperty), name)
	}
}

func variable_(c *compilerCtx, canAssign bool) {
	c.namedVariable(c.parser.previous, canAssign)
}

// this_ compiles the `this` keyword as a read-only reference to slot 0 of
// the enclosing method/initializer (spec.md §3, §4.5 "this binding").
func this_(c *compilerCtx, canAssign bool) {
	if c.class == nil {
		c.error("Can't use 'this' outside of a class.")
		return
	}
	variable_(c, false)
}

// super_ compiles `super.method` / fused `super.method(...)`, resolving
// `this` as the method's slot 0 (bound by initCompiler) and `super` as the
// synthetic local the enclosing classDeclaration bound (spec.md §4.5
// "Superclass method dispatch").
func super_(c *compilerCtx, canAssign bool) {
	if c.class == nil {
		c.error("Can't use 'super' outside of a class.")
	} else if !c.class.hasSuperclass {
		c.error("Can't use 'super' in a class with no superclass.")
	}

	c.consume(token.DOT, "Expect '.' after 'super'.")
	c.consume(token.IDENTIFIER, "Expect superclass method name.")
	name := c.identifierConstant(c.parser.previous)

	c.namedVariable(token.Token{Kind: token.IDENTIFIER, Lexeme: "this"}, false)
	if c.match(token.LEFT_PAREN) {
		argCount := c.argumentList()
		c.namedVariable(token.Token{Kind: token.IDENTIFIER, Lexeme: "super"}, false)
		c.emitBytes(byte(OpSuperInvoke), name)
		c.emitByte(byte(argCount))
	} else {
		c.namedVariable(token.Token{Kind: token.IDENTIFIER, Lexeme: "super"}, false)
		c.emitBytes(byte(OpGetSuper), name)
	}
}
