// Package parser turns the lexer's token stream into one Statement AST
// per logical line.
//
// Grounded on _examples/opal-lang-opal/runtime/parser/parser.go (token
// buffer + pos cursor, current()/advance()/at()/expect() helpers, one
// parseX method per grammar construct) and spec.md §4.5's precedence
// table. Parser buffers every token for a line and only parses once the
// lexer reports the closing Newline, which makes "discard everything
// since the last good statement" (the required error-recovery behavior)
// as simple as dropping the buffered slice — no panic/recover needed.
package parser

import (
	"math"

	"github.com/gcode-engine/engine/ast"
	"github.com/gcode-engine/engine/gcerr"
	"github.com/gcode-engine/engine/keyword"
	"github.com/gcode-engine/engine/lexer"
)

// StatementSink receives one Statement per successfully parsed line and
// one Error per line that failed to lex or parse. Ownership of a
// Statement transfers to the callback, mirroring the lexer's Sink.
type StatementSink interface {
	Statement(*ast.Statement)
	Error(*gcerr.Error)
}

// Parser implements lexer.Sink itself: it is fed raw bytes, buffers the
// tokens of the line currently being scanned, and runs the full
// recursive-descent parse only once the lexer reports Keyword(Newline).
type Parser struct {
	sink StatementSink
	lx   *lexer.Lexer

	tokens      []token
	sawLexError bool

	pos int
}

// New creates a Parser reporting statements and errors to sink.
func New(sink StatementSink) *Parser {
	p := &Parser{sink: sink}
	p.lx = lexer.New(p)
	return p
}

// Parse feeds more source bytes through the lexer. Input need not be
// aligned on line boundaries.
func (p *Parser) Parse(data []byte) { p.lx.Scan(data) }

// Finish flushes a trailing unterminated line, as if a final newline had
// been seen.
func (p *Parser) Finish() { p.lx.Finish() }

// Reset discards all buffered state, as if New had just been called.
func (p *Parser) Reset() {
	p.lx.Reset()
	p.tokens = p.tokens[:0]
	p.sawLexError = false
	p.pos = 0
}

// --- lexer.Sink ---

func (p *Parser) Keyword(id keyword.ID, loc gcerr.Location) {
	if id == keyword.Newline {
		p.closeLine()
		return
	}
	p.tokens = append(p.tokens, token{kind: tokKeyword, id: id, loc: loc})
}

func (p *Parser) Identifier(text string, loc gcerr.Location) {
	p.tokens = append(p.tokens, token{kind: tokIdent, text: text, loc: loc})
}

func (p *Parser) StrLiteral(text string, loc gcerr.Location) {
	p.tokens = append(p.tokens, token{kind: tokStr, text: text, loc: loc})
}

func (p *Parser) IntLiteral(value int64, loc gcerr.Location) {
	p.tokens = append(p.tokens, token{kind: tokInt, ival: value, loc: loc})
}

func (p *Parser) FloatLiteral(value float64, loc gcerr.Location) {
	p.tokens = append(p.tokens, token{kind: tokFloat, fval: value, loc: loc})
}

func (p *Parser) Bridge(loc gcerr.Location) {
	p.tokens = append(p.tokens, token{kind: tokBridge, loc: loc})
}

func (p *Parser) Error(err *gcerr.Error) {
	p.sawLexError = true
	p.sink.Error(err)
}

// closeLine runs once per Newline token, real or synthetic. A lex error
// anywhere since the previous Newline means the buffered tokens are
// unreliable (the lexer was mid-recovery); discard them without
// attempting a parse. An empty buffer (blank line, comment-only line) is
// silently dropped too — neither is a syntax error.
func (p *Parser) closeLine() {
	tokens := p.tokens
	p.tokens = nil
	lexErrored := p.sawLexError
	p.sawLexError = false

	if lexErrored || len(tokens) == 0 {
		return
	}

	p.tokens = tokens
	p.pos = 0

	stmt, err := p.parseStatement()
	if err != nil {
		p.sink.Error(err)
		p.tokens = nil
		return
	}
	if p.pos != len(p.tokens) {
		p.sink.Error(gcerr.NewAt(p.tokens[p.pos].loc, "unexpected token after statement"))
		p.tokens = nil
		return
	}
	p.sink.Statement(stmt)
	p.tokens = nil
}

// --- cursor helpers ---

func (p *Parser) current() token {
	if p.pos >= len(p.tokens) {
		return token{kind: -1}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() token {
	t := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *Parser) atKeyword(id keyword.ID) bool {
	c := p.current()
	return c.kind == tokKeyword && c.id == id
}

func (p *Parser) atBridge() bool {
	return p.current().kind == tokBridge
}

func (p *Parser) here() gcerr.Location {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos].loc
	}
	if len(p.tokens) > 0 {
		return p.tokens[len(p.tokens)-1].loc
	}
	return gcerr.Location{}
}

func (p *Parser) expectKeyword(id keyword.ID, context string) *gcerr.Error {
	if p.atKeyword(id) {
		p.advance()
		return nil
	}
	return gcerr.NewAt(p.here(), "expected %q in %s", id.String(), context)
}

// --- statement / field assembly ---

func (p *Parser) parseStatement() (*ast.Statement, *gcerr.Error) {
	var fields []ast.Node
	for p.pos < len(p.tokens) {
		f, err := p.parseField()
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return ast.NewStatement(fields...), nil
}

// parseField assembles one statement field: a run of word and expression
// pieces joined by Bridge markers. A bare word (no adjacent expression)
// and a pure expression (no adjacent word) both fall out of this as the
// single-piece case; only a genuine word<->expression seam produces a
// multi-piece Concat. Treating a leading word as "just another primary
// expression" (see parseAtom's tokStr case) means this never needs to
// special-case word-vs-expression: the operator loop below it naturally
// stops at the first token it doesn't recognize, which for a bare word is
// immediately the next Bridge or the end of the line.
func (p *Parser) parseField() (ast.Node, *gcerr.Error) {
	first, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	pieces := []ast.Node{first}
	for p.atBridge() {
		p.advance()
		next, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		pieces = append(pieces, next)
	}
	if len(pieces) == 1 {
		return pieces[0], nil
	}
	return ast.NewOperator(ast.OpConcat, pieces...), nil
}

// --- expression precedence ladder, low to high ---

func (p *Parser) parseOr() (ast.Node, *gcerr.Error) {
	lhs, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.atKeyword(keyword.Or) {
		p.advance()
		rhs, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		lhs = ast.NewOperator(ast.OpOr, lhs, rhs)
	}
	return lhs, nil
}

func (p *Parser) parseAnd() (ast.Node, *gcerr.Error) {
	lhs, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.atKeyword(keyword.And) {
		p.advance()
		rhs, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		lhs = ast.NewOperator(ast.OpAnd, lhs, rhs)
	}
	return lhs, nil
}

// parseNot handles the unary, right-associative "!" prefix. The keyword
// table has no separate word spelling for NOT (see DESIGN.md); "!" is the
// only lexable form.
func (p *Parser) parseNot() (ast.Node, *gcerr.Error) {
	if p.atKeyword(keyword.Bang) {
		p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return ast.NewOperator(ast.OpNot, operand), nil
	}
	return p.parseCompare()
}

var compareOps = map[keyword.ID]ast.Op{
	keyword.Assign: ast.OpEquals,
	keyword.Lt:     ast.OpLt,
	keyword.Gt:     ast.OpGt,
	keyword.Lte:    ast.OpLte,
	keyword.Gte:    ast.OpGte,
}

func (p *Parser) parseCompare() (ast.Node, *gcerr.Error) {
	lhs, err := p.parseAddSub()
	if err != nil {
		return nil, err
	}
	for {
		c := p.current()
		op, ok := compareOps[c.id]
		if c.kind != tokKeyword || !ok {
			return lhs, nil
		}
		p.advance()
		rhs, err := p.parseAddSub()
		if err != nil {
			return nil, err
		}
		lhs = ast.NewOperator(op, lhs, rhs)
	}
}

var addSubOps = map[keyword.ID]ast.Op{
	keyword.Plus:   ast.OpAdd,
	keyword.Minus:  ast.OpSubtract,
	keyword.Concat: ast.OpConcat,
}

func (p *Parser) parseAddSub() (ast.Node, *gcerr.Error) {
	lhs, err := p.parseMulDiv()
	if err != nil {
		return nil, err
	}
	for {
		c := p.current()
		op, ok := addSubOps[c.id]
		if c.kind != tokKeyword || !ok {
			return lhs, nil
		}
		p.advance()
		rhs, err := p.parseMulDiv()
		if err != nil {
			return nil, err
		}
		lhs = ast.NewOperator(op, lhs, rhs)
	}
}

var mulDivOps = map[keyword.ID]ast.Op{
	keyword.Star:    ast.OpMultiply,
	keyword.Slash:   ast.OpDivide,
	keyword.Percent: ast.OpModulus,
}

func (p *Parser) parseMulDiv() (ast.Node, *gcerr.Error) {
	lhs, err := p.parsePow()
	if err != nil {
		return nil, err
	}
	for {
		c := p.current()
		op, ok := mulDivOps[c.id]
		if c.kind != tokKeyword || !ok {
			return lhs, nil
		}
		p.advance()
		rhs, err := p.parsePow()
		if err != nil {
			return nil, err
		}
		lhs = ast.NewOperator(op, lhs, rhs)
	}
}

// parsePow is right-associative: 2**3**2 is 2**(3**2).
func (p *Parser) parsePow() (ast.Node, *gcerr.Error) {
	lhs, err := p.parseUnaryNeg()
	if err != nil {
		return nil, err
	}
	if p.atKeyword(keyword.Pow) {
		p.advance()
		rhs, err := p.parsePow()
		if err != nil {
			return nil, err
		}
		return ast.NewOperator(ast.OpPower, lhs, rhs), nil
	}
	return lhs, nil
}

// parseUnaryNeg is right-associative: --1 is negate(negate(1)).
func (p *Parser) parseUnaryNeg() (ast.Node, *gcerr.Error) {
	if p.atKeyword(keyword.Minus) {
		p.advance()
		operand, err := p.parseUnaryNeg()
		if err != nil {
			return nil, err
		}
		return ast.NewOperator(ast.OpNegate, operand), nil
	}
	return p.parseConditional()
}

// parseConditional is the highest-precedence level (spec.md §4.5 item
// 10): it wraps a single atom with an optional trailing Python-style
// ternary, "then IF cond ELSE else". There's no THEN keyword in the
// closed keyword set, so THEN-expr is just whatever atom preceded IF; cond
// and else-expr are each parsed at full expression breadth (parseOr), and
// else-expr recurses back through parseConditional so ternaries chain
// ("a IF b ELSE c IF d ELSE e" reads as "a IF b ELSE (c IF d ELSE e)").
// See DESIGN.md for why this precedence placement was chosen over the
// more common "ternary is the loosest-binding operator" convention.
func (p *Parser) parseConditional() (ast.Node, *gcerr.Error) {
	then, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if !p.atKeyword(keyword.If) {
		return then, nil
	}
	p.advance()
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword(keyword.Else, "conditional expression"); err != nil {
		return nil, err
	}
	elseVal, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	return ast.NewOperator(ast.OpIfElse, cond, then, elseVal), nil
}

func (p *Parser) parseAtom() (ast.Node, *gcerr.Error) {
	c := p.current()
	var node ast.Node

	switch {
	case c.kind == tokInt:
		p.advance()
		node = ast.NewInt(c.ival)
	case c.kind == tokFloat:
		p.advance()
		node = ast.NewFloat(c.fval)
	case c.kind == tokStr:
		p.advance()
		node = ast.NewStr(c.text)
	case c.kind == tokIdent:
		p.advance()
		node, err := p.parseIdentOrCall(c.text)
		if err != nil {
			return nil, err
		}
		return p.parseLookupChain(node)
	case c.kind == tokKeyword:
		switch c.id {
		case keyword.True:
			p.advance()
			node = ast.NewBool(true)
		case keyword.False:
			p.advance()
			node = ast.NewBool(false)
		case keyword.Nan:
			p.advance()
			node = ast.NewFloat(math.NaN())
		case keyword.Infinity:
			p.advance()
			node = ast.NewFloat(math.Inf(1))
		case keyword.LParen:
			p.advance()
			inner, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if err := p.expectKeyword(keyword.RParen, "parenthesized expression"); err != nil {
				return nil, err
			}
			node = inner
		default:
			return nil, gcerr.NewAt(c.loc, "unexpected token %q", c.id.String())
		}
	default:
		return nil, gcerr.NewAt(p.here(), "unexpected end of expression")
	}
	return p.parseLookupChain(node)
}

// parseIdentOrCall resolves a bare identifier as either a Parameter
// reference or, if immediately followed by '(', a Function call with a
// comma-separated argument list.
func (p *Parser) parseIdentOrCall(name string) (ast.Node, *gcerr.Error) {
	if !p.atKeyword(keyword.LParen) {
		return ast.NewParameter(name), nil
	}
	p.advance()
	var args []ast.Node
	if !p.atKeyword(keyword.RParen) {
		for {
			arg, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.atKeyword(keyword.Comma) {
				break
			}
			p.advance()
		}
	}
	if err := p.expectKeyword(keyword.RParen, "function call arguments"); err != nil {
		return nil, err
	}
	return ast.NewFunction(name, args...), nil
}

// parseLookupChain applies zero or more postfix ".key" lookups:
// A.B.C -> Lookup(Lookup(A, Str("B")), Str("C")).
func (p *Parser) parseLookupChain(node ast.Node) (ast.Node, *gcerr.Error) {
	for p.atKeyword(keyword.Dot) {
		p.advance()
		key := p.current()
		if key.kind != tokIdent {
			return nil, gcerr.NewAt(p.here(), "expected identifier after '.'")
		}
		p.advance()
		node = ast.NewOperator(ast.OpLookup, node, ast.NewStr(key.text))
	}
	return node, nil
}
