package parser

import (
	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/config"
	"github.com/rill-lang/rill/internal/token"
)

// parsePattern parses one match-arm pattern with curToken on its first
// token.
func (p *Parser) parsePattern() ast.Pattern {
	switch p.curToken.Type {
	case token.UNDERSCORE:
		return &ast.WildcardPattern{Token: p.curToken}
	case token.INT:
		lit := p.parseIntegerLiteral()
		if lit == nil {
			return nil
		}
		return &ast.LiteralPattern{Token: p.curToken, Literal: lit}
	case token.FLOAT:
		lit := p.parseFloatLiteral()
		if lit == nil {
			return nil
		}
		return &ast.LiteralPattern{Token: p.curToken, Literal: lit}
	case token.STRING:
		return &ast.LiteralPattern{Token: p.curToken, Literal: p.parseStringLiteral()}
	case token.CHAR:
		lit := p.parseCharLiteral()
		if lit == nil {
			return nil
		}
		return &ast.LiteralPattern{Token: p.curToken, Literal: lit}
	case token.TRUE, token.FALSE:
		return &ast.LiteralPattern{Token: p.curToken, Literal: p.parseBooleanLiteral()}
	case token.MINUS:
		// Negative number literals.
		tok := p.curToken
		p.nextToken()
		if !p.curTokenIs(token.INT) && !p.curTokenIs(token.FLOAT) {
			p.errorf(p.curToken, "expected a number after - in pattern")
			return nil
		}
		inner := p.parsePattern()
		lit, ok := inner.(*ast.LiteralPattern)
		if !ok {
			return nil
		}
		return &ast.LiteralPattern{
			Token:   tok,
			Literal: &ast.PrefixExpression{Token: tok, Operator: "-", Right: lit.Literal},
		}
	case token.LPAREN:
		return p.parseTuplePattern()
	case token.IDENT:
		return p.parseNamePattern()
	default:
		p.errorf(p.curToken, "unexpected token %s in pattern", p.curToken.Type)
		return nil
	}
}

func (p *Parser) parseTuplePattern() ast.Pattern {
	tok := p.curToken

	if p.peekTokenIs(token.RPAREN) {
		// () matches the unit value.
		p.nextToken()
		return &ast.LiteralPattern{Token: tok, Literal: &ast.UnitLiteral{Token: tok}}
	}

	pattern := &ast.TuplePattern{Token: tok}
	sawComma := false
	for {
		p.nextToken()
		p.skipNewlines()
		el := p.parsePattern()
		if el == nil {
			return nil
		}
		pattern.Elements = append(pattern.Elements, el)

		p.peekSkipNewlines()
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		sawComma = true
		p.nextToken() // consume ','
		p.peekSkipNewlines()
		if p.peekTokenIs(token.RPAREN) {
			break // trailing comma
		}
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if len(pattern.Elements) == 1 && !sawComma {
		// (p) is grouping, not a 1-tuple.
		return pattern.Elements[0]
	}
	return pattern
}

// parseNamePattern disambiguates identifiers in pattern position: a
// qualified Type::Variant, one of the builtin constructors, or a plain
// binding.
func (p *Parser) parseNamePattern() ast.Pattern {
	ident := &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if p.peekTokenIs(token.COLONCOLON) {
		p.nextToken() // consume '::'
		pattern := &ast.VariantPattern{Token: p.curToken, TypeName: ident}
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		pattern.Variant = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
		if p.peekTokenIs(token.LPAREN) {
			pattern.Elements = p.parsePatternPayload()
			if pattern.Elements == nil {
				return nil
			}
		}
		return pattern
	}

	switch ident.Value {
	case config.SomeCtorName, config.NoneCtorName, config.OkCtorName, config.ErrCtorName:
		pattern := &ast.VariantPattern{Token: ident.Token, Variant: ident}
		if p.peekTokenIs(token.LPAREN) {
			pattern.Elements = p.parsePatternPayload()
			if pattern.Elements == nil {
				return nil
			}
		}
		return pattern
	}
	return &ast.IdentifierPattern{Token: ident.Token, Name: ident}
}

// parsePatternPayload parses (p1, p2, ...) with peekToken on '('. Returns a
// non-nil empty slice only on the degenerate `()` payload, which the
// evaluator rejects by arity.
func (p *Parser) parsePatternPayload() []ast.Pattern {
	p.nextToken() // consume '('

	elements := []ast.Pattern{}
	p.peekSkipNewlines()
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return elements
	}

	for {
		p.nextToken()
		p.skipNewlines()
		el := p.parsePattern()
		if el == nil {
			return nil
		}
		elements = append(elements, el)

		p.peekSkipNewlines()
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken() // consume ','
		p.peekSkipNewlines()
		if p.peekTokenIs(token.RPAREN) {
			break // trailing comma
		}
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return elements
}
