package parser

import (
	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/token"
)

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.LET:
		return p.parseLetStatement()
	case token.FN:
		// A name after fn makes it a definition; otherwise it is an
		// anonymous function in expression position.
		if p.peekTokenIs(token.IDENT) {
			return p.parseFunctionStatement()
		}
		return p.parseExpressionStatement()
	case token.STRUCT:
		return p.parseStructStatement()
	case token.ENUM:
		return p.parseEnumStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.BREAK:
		return p.parseBreakStatement()
	case token.CONTINUE:
		return &ast.ContinueStatement{Token: p.curToken}
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseLetStatement() *ast.LetStatement {
	stmt := &ast.LetStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	p.skipNewlines()

	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseFunctionStatement() *ast.FunctionStatement {
	stmt := &ast.FunctionStatement{Token: p.curToken}

	p.nextToken()
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	stmt.Parameters = p.parseParameterList()
	if stmt.Parameters == nil {
		return nil
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

// parseParameterList parses (a, b, c) with curToken on '('. Returns an empty
// non-nil slice for an empty list.
func (p *Parser) parseParameterList() []*ast.Identifier {
	params := []*ast.Identifier{}

	p.peekSkipNewlines()
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params
	}

	for {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		ident := &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
		for _, seen := range params {
			if seen.Value == ident.Value {
				p.errorf(p.curToken, "duplicate parameter %s", ident.Value)
			}
		}
		params = append(params, ident)

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
	return params
}

func (p *Parser) parseStructStatement() *ast.StructStatement {
	stmt := &ast.StructStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}

	p.peekSkipNewlines()
	for !p.peekTokenIs(token.RBRACE) {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		field := &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
		for _, seen := range stmt.Fields {
			if seen.Value == field.Value {
				p.errorf(p.curToken, "duplicate field %s", field.Value)
			}
		}
		stmt.Fields = append(stmt.Fields, field)

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
	return stmt
}

func (p *Parser) parseEnumStatement() *ast.EnumStatement {
	stmt := &ast.EnumStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}

	p.peekSkipNewlines()
	for !p.peekTokenIs(token.RBRACE) {
		variant := p.parseEnumVariant()
		if variant == nil {
			return nil
		}
		for _, seen := range stmt.Variants {
			if seen.Name.Value == variant.Name.Value {
				p.errorf(variant.Token, "duplicate variant %s", variant.Name.Value)
			}
		}
		stmt.Variants = append(stmt.Variants, variant)

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
	return stmt
}

func (p *Parser) parseEnumVariant() *ast.EnumVariant {
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	variant := &ast.EnumVariant{
		Token: p.curToken,
		Name:  &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme},
	}
	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		variant.Params = p.parseParameterList()
		if variant.Params == nil {
			return nil
		}
	}
	return variant
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	stmt := &ast.ReturnStatement{Token: p.curToken}

	if p.peekIsStatementEnd() {
		return stmt // bare return
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	return stmt
}

func (p *Parser) parseBreakStatement() *ast.BreakStatement {
	stmt := &ast.BreakStatement{Token: p.curToken}

	if p.peekIsStatementEnd() {
		return stmt // bare break
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	return stmt
}

func (p *Parser) peekIsStatementEnd() bool {
	return p.peekTokenIs(token.NEWLINE) ||
		p.peekTokenIs(token.SEMICOLON) ||
		p.peekTokenIs(token.RBRACE) ||
		p.peekTokenIs(token.EOF)
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil {
		return nil
	}
	return stmt
}

// parseBlockStatement parses { ... } with curToken on '{'. A semicolon after
// the final statement marks the block as Unit-valued.
func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}
	p.nextToken()

	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.errorf(p.curToken, "unterminated block")
			return nil
		}
		if p.curTokenIs(token.NEWLINE) {
			p.nextToken()
			continue
		}
		if p.curTokenIs(token.SEMICOLON) {
			if len(block.Statements) > 0 {
				block.TrailingSeparator = true
			}
			p.nextToken()
			continue
		}

		stmt := p.parseStatement()
		if stmt == nil {
			p.skipToStatementBoundary()
			continue
		}
		block.Statements = append(block.Statements, stmt)
		block.TrailingSeparator = false
		p.nextToken()
	}
	return block
}
