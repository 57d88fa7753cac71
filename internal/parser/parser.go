package parser

import (
	"fmt"

	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/lexer"
	"github.com/rill-lang/rill/internal/token"
)

// Operator precedence, lowest first.
const (
	_ int = iota
	LOWEST
	LOGIC_OR    // ||
	LOGIC_AND   // &&
	EQUALS      // == !=
	LESSGREATER // < > <= >=
	SUM         // + -
	PRODUCT     // * / %
	PREFIX      // -x !x
	CALL        // f(x) a[i] a.b T::V
)

var precedences = map[token.Type]int{
	token.OR:         LOGIC_OR,
	token.AND:        LOGIC_AND,
	token.EQ:         EQUALS,
	token.NOTEQ:      EQUALS,
	token.LT:         LESSGREATER,
	token.GT:         LESSGREATER,
	token.LTEQ:       LESSGREATER,
	token.GTEQ:       LESSGREATER,
	token.PLUS:       SUM,
	token.MINUS:      SUM,
	token.ASTERISK:   PRODUCT,
	token.SLASH:      PRODUCT,
	token.PERCENT:    PRODUCT,
	token.LPAREN:     CALL,
	token.LBRACKET:   CALL,
	token.DOT:        CALL,
	token.COLONCOLON: CALL,
}

// MaxRecursionDepth bounds expression nesting during parsing so a
// pathological input fails with one error instead of a stack overflow.
const MaxRecursionDepth = 500

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	l *lexer.Lexer

	curToken  token.Token
	peekToken token.Token

	errors []string
	depth  int

	// Struct literals are suppressed in control-clause headers to keep
	// `if cond { ... }` unambiguous.
	allowStructLit bool

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l, allowStructLit: true}

	p.prefixParseFns = map[token.Type]prefixParseFn{
		token.IDENT:    p.parseIdentifier,
		token.INT:      p.parseIntegerLiteral,
		token.FLOAT:    p.parseFloatLiteral,
		token.STRING:   p.parseStringLiteral,
		token.CHAR:     p.parseCharLiteral,
		token.TRUE:     p.parseBooleanLiteral,
		token.FALSE:    p.parseBooleanLiteral,
		token.BANG:     p.parsePrefixExpression,
		token.MINUS:    p.parsePrefixExpression,
		token.LPAREN:   p.parseGroupedOrTuple,
		token.LBRACKET: p.parseArrayLiteral,
		token.IF:       p.parseIfExpression,
		token.MATCH:    p.parseMatchExpression,
		token.LOOP:     p.parseLoopExpression,
		token.WHILE:    p.parseWhileExpression,
		token.FOR:      p.parseForExpression,
		token.FN:       p.parseFunctionLiteral,
	}
	p.infixParseFns = map[token.Type]infixParseFn{
		token.OR:         p.parseInfixExpression,
		token.AND:        p.parseInfixExpression,
		token.EQ:         p.parseInfixExpression,
		token.NOTEQ:      p.parseInfixExpression,
		token.LT:         p.parseInfixExpression,
		token.GT:         p.parseInfixExpression,
		token.LTEQ:       p.parseInfixExpression,
		token.GTEQ:       p.parseInfixExpression,
		token.PLUS:       p.parseInfixExpression,
		token.MINUS:      p.parseInfixExpression,
		token.ASTERISK:   p.parseInfixExpression,
		token.SLASH:      p.parseInfixExpression,
		token.PERCENT:    p.parseInfixExpression,
		token.LPAREN:     p.parseCallExpression,
		token.LBRACKET:   p.parseIndexExpression,
		token.DOT:        p.parseFieldExpression,
		token.COLONCOLON: p.parseVariantExpression,
	}

	// Prime curToken and peekToken.
	p.nextToken()
	p.nextToken()
	return p
}

// Parse is the convenience entry point for one source text.
func Parse(input string) (*ast.Program, []string) {
	p := New(lexer.New(input))
	prog := p.ParseProgram()
	return prog, p.Errors()
}

func (p *Parser) Errors() []string { return p.errors }

func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}

	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.NEWLINE) || p.curTokenIs(token.SEMICOLON) {
			p.nextToken()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		} else {
			p.skipToStatementBoundary()
		}
		p.nextToken()
	}
	return program
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.Type) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.Type) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

// skipNewlines moves past newline tokens so that a construct may continue on
// the next line (after a comma, an operator, an opening brace).
func (p *Parser) skipNewlines() {
	for p.curTokenIs(token.NEWLINE) {
		p.nextToken()
	}
}

func (p *Parser) peekSkipNewlines() {
	for p.peekTokenIs(token.NEWLINE) {
		p.nextToken()
	}
}

func (p *Parser) errorf(tok token.Token, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	p.errors = append(p.errors, fmt.Sprintf("%d:%d: %s", tok.Line, tok.Column, msg))
}

func (p *Parser) peekError(t token.Type) {
	p.errorf(p.peekToken, "expected %s, got %s", t, p.peekToken.Type)
}

func (p *Parser) noPrefixParseFnError(t token.Type) {
	p.errorf(p.curToken, "unexpected token %s", t)
}

// skipToStatementBoundary advances to the next separator so one syntax error
// does not cascade into dozens.
func (p *Parser) skipToStatementBoundary() {
	for !p.curTokenIs(token.NEWLINE) &&
		!p.curTokenIs(token.SEMICOLON) &&
		!p.curTokenIs(token.RBRACE) &&
		!p.curTokenIs(token.EOF) {
		p.nextToken()
	}
}
