package parser

import (
	"strconv"
	"strings"

	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/token"
)

func (p *Parser) parseExpression(precedence int) ast.Expression {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > MaxRecursionDepth {
		p.errorf(p.curToken, "expression too deeply nested")
		p.skipToStatementBoundary()
		return nil
	}

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken.Type)
		return nil
	}
	leftExp := prefix()

	for leftExp != nil && !p.peekTokenIs(token.NEWLINE) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
	}
	return leftExp
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

// parseControlExpression parses a condition, match subject or for iterable.
// Struct literals are not recognized here, so `while done { }` never parses
// `done { }` as a literal; parenthesize when one is genuinely wanted.
func (p *Parser) parseControlExpression() ast.Expression {
	prev := p.allowStructLit
	p.allowStructLit = false
	exp := p.parseExpression(LOWEST)
	p.allowStructLit = prev
	return exp
}

func (p *Parser) parseIdentifier() ast.Expression {
	if p.allowStructLit && p.peekTokenIs(token.LBRACE) && isTypeName(p.curToken.Lexeme) {
		return p.parseStructLiteral()
	}
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
}

// Type names are capitalized by convention; the parser leans on that to tell
// a struct literal from a block.
func isTypeName(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	lit := &ast.IntegerLiteral{Token: p.curToken}

	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		// Large u64 literals overflow int64; keep the bit pattern.
		uvalue, uerr := strconv.ParseUint(p.curToken.Literal, 10, 64)
		if uerr != nil {
			p.errorf(p.curToken, "could not parse %q as integer", p.curToken.Lexeme)
			return nil
		}
		value = int64(uvalue)
	}
	lit.Value = value
	lit.Suffix = strings.TrimPrefix(p.curToken.Lexeme, p.curToken.Literal)
	return lit
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	lit := &ast.FloatLiteral{Token: p.curToken}

	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.errorf(p.curToken, "could not parse %q as float", p.curToken.Lexeme)
		return nil
	}
	lit.Value = value
	lit.Suffix = strings.TrimPrefix(p.curToken.Lexeme, p.curToken.Literal)
	return lit
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseCharLiteral() ast.Expression {
	runes := []rune(p.curToken.Literal)
	if len(runes) != 1 {
		p.errorf(p.curToken, "invalid char literal %s", p.curToken.Lexeme)
		return nil
	}
	return &ast.CharLiteral{Token: p.curToken, Value: runes[0]}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Lexeme,
	}
	p.nextToken()
	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Lexeme,
		Left:     left,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	p.skipNewlines() // operand may continue on the next line
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}
	return expression
}

// parseGroupedOrTuple handles (), (x) and (a, b). Inside the parentheses
// struct literals are legal again even in a control-clause header.
func (p *Parser) parseGroupedOrTuple() ast.Expression {
	tok := p.curToken

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return &ast.UnitLiteral{Token: tok}
	}

	prev := p.allowStructLit
	p.allowStructLit = true
	defer func() { p.allowStructLit = prev }()

	p.nextToken()
	p.skipNewlines()
	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}

	if !p.peekTokenIs(token.COMMA) {
		if !p.expectPeek(token.RPAREN) {
			return nil
		}
		return exp
	}

	tuple := &ast.TupleLiteral{Token: tok, Elements: []ast.Expression{exp}}
	for p.peekTokenIs(token.COMMA) {
		p.nextToken() // consume ','
		p.peekSkipNewlines()
		if p.peekTokenIs(token.RPAREN) {
			break // trailing comma
		}
		p.nextToken()
		el := p.parseExpression(LOWEST)
		if el == nil {
			return nil
		}
		tuple.Elements = append(tuple.Elements, el)
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return tuple
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	array := &ast.ArrayLiteral{Token: p.curToken}
	array.Elements = p.parseExpressionList(token.RBRACKET)
	if array.Elements == nil {
		return nil
	}
	return array
}

// parseExpressionList parses a comma-separated list with curToken on the
// opener, tolerating newlines around elements and a trailing comma.
func (p *Parser) parseExpressionList(end token.Type) []ast.Expression {
	list := []ast.Expression{}

	p.peekSkipNewlines()
	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}

	prev := p.allowStructLit
	p.allowStructLit = true
	defer func() { p.allowStructLit = prev }()

	for {
		p.nextToken()
		el := p.parseExpression(LOWEST)
		if el == nil {
			return nil
		}
		list = append(list, el)

		p.peekSkipNewlines()
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken() // consume ','
		p.peekSkipNewlines()
		if p.peekTokenIs(end) {
			break // trailing comma
		}
	}

	if !p.expectPeek(end) {
		return nil
	}
	return list
}

func (p *Parser) parseCallExpression(callee ast.Expression) ast.Expression {
	call := &ast.CallExpression{Token: p.curToken, Callee: callee}
	call.Arguments = p.parseExpressionList(token.RPAREN)
	if call.Arguments == nil {
		return nil
	}
	return call
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	exp := &ast.IndexExpression{Token: p.curToken, Left: left}

	p.nextToken()
	exp.Index = p.parseExpression(LOWEST)
	if exp.Index == nil {
		return nil
	}
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return exp
}

func (p *Parser) parseFieldExpression(left ast.Expression) ast.Expression {
	exp := &ast.FieldExpression{Token: p.curToken, Object: left}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	exp.Field = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	return exp
}

func (p *Parser) parseVariantExpression(left ast.Expression) ast.Expression {
	typeName, ok := left.(*ast.Identifier)
	if !ok {
		p.errorf(p.curToken, "left side of :: must be a type name")
		return nil
	}
	exp := &ast.VariantExpression{Token: p.curToken, TypeName: typeName}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	exp.Variant = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	return exp
}

// parseStructLiteral parses Name { field: value, ... } with curToken on the
// type name.
func (p *Parser) parseStructLiteral() ast.Expression {
	lit := &ast.StructLiteral{
		Token: p.curToken,
		Name:  &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme},
	}
	p.nextToken() // consume '{'

	p.peekSkipNewlines()
	for !p.peekTokenIs(token.RBRACE) {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		name := &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
		for _, seen := range lit.Names {
			if seen.Value == name.Value {
				p.errorf(p.curToken, "duplicate field %s", name.Value)
			}
		}
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		p.skipNewlines()
		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}
		lit.Names = append(lit.Names, name)
		lit.Values = append(lit.Values, value)

		p.peekSkipNewlines()
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.peekSkipNewlines()
		} else if !p.peekTokenIs(token.RBRACE) {
			p.peekError(token.RBRACE)
			return nil
		}
	}
	p.nextToken() // consume '}'
	return lit
}

func (p *Parser) parseIfExpression() ast.Expression {
	exp := &ast.IfExpression{Token: p.curToken}

	p.nextToken()
	exp.Condition = p.parseControlExpression()
	if exp.Condition == nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	exp.Consequence = p.parseBlockStatement()
	if exp.Consequence == nil {
		return nil
	}

	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		if p.peekTokenIs(token.IF) {
			// else-if chains wrap the nested if in a synthetic block.
			p.nextToken()
			nested := p.parseIfExpression()
			if nested == nil {
				return nil
			}
			exp.Alternative = &ast.BlockStatement{
				Token: nested.GetToken(),
				Statements: []ast.Statement{
					&ast.ExpressionStatement{Token: nested.GetToken(), Expression: nested},
				},
			}
			return exp
		}
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		exp.Alternative = p.parseBlockStatement()
		if exp.Alternative == nil {
			return nil
		}
	}
	return exp
}

func (p *Parser) parseLoopExpression() ast.Expression {
	exp := &ast.LoopExpression{Token: p.curToken}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	exp.Body = p.parseBlockStatement()
	if exp.Body == nil {
		return nil
	}
	return exp
}

func (p *Parser) parseWhileExpression() ast.Expression {
	exp := &ast.WhileExpression{Token: p.curToken}

	p.nextToken()
	exp.Condition = p.parseControlExpression()
	if exp.Condition == nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	exp.Body = p.parseBlockStatement()
	if exp.Body == nil {
		return nil
	}
	return exp
}

func (p *Parser) parseForExpression() ast.Expression {
	exp := &ast.ForExpression{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	exp.Item = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if !p.expectPeek(token.IN) {
		return nil
	}
	p.nextToken()
	exp.Iterable = p.parseControlExpression()
	if exp.Iterable == nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	exp.Body = p.parseBlockStatement()
	if exp.Body == nil {
		return nil
	}
	return exp
}

func (p *Parser) parseFunctionLiteral() ast.Expression {
	lit := &ast.FunctionLiteral{Token: p.curToken}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	lit.Parameters = p.parseParameterList()
	if lit.Parameters == nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	lit.Body = p.parseBlockStatement()
	if lit.Body == nil {
		return nil
	}
	return lit
}

func (p *Parser) parseMatchExpression() ast.Expression {
	exp := &ast.MatchExpression{Token: p.curToken}

	p.nextToken()
	exp.Subject = p.parseControlExpression()
	if exp.Subject == nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}

	p.peekSkipNewlines()
	for !p.peekTokenIs(token.RBRACE) {
		arm := p.parseMatchArm()
		if arm == nil {
			return nil
		}
		exp.Arms = append(exp.Arms, arm)

		p.peekSkipNewlines()
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.peekSkipNewlines()
		}
	}
	p.nextToken() // consume '}'

	if len(exp.Arms) == 0 {
		p.errorf(exp.Token, "match expression has no arms")
		return nil
	}
	return exp
}

func (p *Parser) parseMatchArm() *ast.MatchArm {
	p.nextToken()
	arm := &ast.MatchArm{Token: p.curToken}

	arm.Pattern = p.parsePattern()
	if arm.Pattern == nil {
		return nil
	}
	if !p.expectPeek(token.FATARR) {
		return nil
	}
	p.nextToken()
	p.skipNewlines()
	arm.Body = p.parseExpression(LOWEST)
	if arm.Body == nil {
		return nil
	}
	return arm
}
