package ast

import (
	"strings"

	"github.com/rill-lang/rill/internal/token"
)

// TokenProvider is implemented by any node that can report its primary token.
// Used for attaching source spans to runtime failures.
type TokenProvider interface {
	GetToken() token.Token
}

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
	String() string
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
	GetToken() token.Token
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
	GetToken() token.Token
}

// Program is the root node of every parse.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out strings.Builder
	for i, s := range p.Statements {
		if i > 0 {
			out.WriteString("; ")
		}
		out.WriteString(s.String())
	}
	return out.String()
}

// LetStatement binds a name: let x = 5. At the top level of a REPL form it
// defines a global; inside a block it extends the local frame chain.
type LetStatement struct {
	Token token.Token // the 'let' token
	Name  *Identifier
	Value Expression
}

func (ls *LetStatement) statementNode()        {}
func (ls *LetStatement) TokenLiteral() string  { return ls.Token.Lexeme }
func (ls *LetStatement) GetToken() token.Token { return ls.Token }
func (ls *LetStatement) String() string {
	return "let " + ls.Name.String() + " = " + ls.Value.String()
}

// FunctionStatement defines a named function: fn add(a, b) { a + b }.
// Top-level function statements are installed into the module registry and
// called through late binding; nested ones become locally bound closures.
type FunctionStatement struct {
	Token      token.Token // the 'fn' token
	Name       *Identifier
	Parameters []*Identifier
	Body       *BlockStatement
}

func (fs *FunctionStatement) statementNode()        {}
func (fs *FunctionStatement) TokenLiteral() string  { return fs.Token.Lexeme }
func (fs *FunctionStatement) GetToken() token.Token { return fs.Token }
func (fs *FunctionStatement) String() string {
	params := make([]string, len(fs.Parameters))
	for i, p := range fs.Parameters {
		params[i] = p.String()
	}
	return "fn " + fs.Name.String() + "(" + strings.Join(params, ", ") + ") " + fs.Body.String()
}

// StructStatement declares a struct type: struct Point { x, y }.
type StructStatement struct {
	Token  token.Token // the 'struct' token
	Name   *Identifier
	Fields []*Identifier
}

func (ss *StructStatement) statementNode()        {}
func (ss *StructStatement) TokenLiteral() string  { return ss.Token.Lexeme }
func (ss *StructStatement) GetToken() token.Token { return ss.Token }
func (ss *StructStatement) String() string {
	fields := make([]string, len(ss.Fields))
	for i, f := range ss.Fields {
		fields[i] = f.String()
	}
	return "struct " + ss.Name.String() + " { " + strings.Join(fields, ", ") + " }"
}

// EnumVariant is one variant of an enum declaration. Params is nil for bare
// variants (Red) and non-nil for payload variants (Rgb(r, g, b)).
type EnumVariant struct {
	Token  token.Token
	Name   *Identifier
	Params []*Identifier
}

func (ev *EnumVariant) String() string {
	if len(ev.Params) == 0 {
		return ev.Name.String()
	}
	params := make([]string, len(ev.Params))
	for i, p := range ev.Params {
		params[i] = p.String()
	}
	return ev.Name.String() + "(" + strings.Join(params, ", ") + ")"
}

// EnumStatement declares an enum type: enum Color { Red, Rgb(r, g, b) }.
type EnumStatement struct {
	Token    token.Token // the 'enum' token
	Name     *Identifier
	Variants []*EnumVariant
}

func (es *EnumStatement) statementNode()        {}
func (es *EnumStatement) TokenLiteral() string  { return es.Token.Lexeme }
func (es *EnumStatement) GetToken() token.Token { return es.Token }
func (es *EnumStatement) String() string {
	variants := make([]string, len(es.Variants))
	for i, v := range es.Variants {
		variants[i] = v.String()
	}
	return "enum " + es.Name.String() + " { " + strings.Join(variants, ", ") + " }"
}

// ReturnStatement unwinds to the nearest enclosing call boundary.
type ReturnStatement struct {
	Token token.Token // the 'return' token
	Value Expression  // nil for bare return
}

func (rs *ReturnStatement) statementNode()        {}
func (rs *ReturnStatement) TokenLiteral() string  { return rs.Token.Lexeme }
func (rs *ReturnStatement) GetToken() token.Token { return rs.Token }
func (rs *ReturnStatement) String() string {
	if rs.Value == nil {
		return "return"
	}
	return "return " + rs.Value.String()
}

// BreakStatement unwinds to the nearest enclosing loop boundary, optionally
// carrying the loop's result value.
type BreakStatement struct {
	Token token.Token
	Value Expression // nil for bare break
}

func (bs *BreakStatement) statementNode()        {}
func (bs *BreakStatement) TokenLiteral() string  { return bs.Token.Lexeme }
func (bs *BreakStatement) GetToken() token.Token { return bs.Token }
func (bs *BreakStatement) String() string {
	if bs.Value == nil {
		return "break"
	}
	return "break " + bs.Value.String()
}

// ContinueStatement skips to the next loop iteration.
type ContinueStatement struct {
	Token token.Token
}

func (cs *ContinueStatement) statementNode()        {}
func (cs *ContinueStatement) TokenLiteral() string  { return cs.Token.Lexeme }
func (cs *ContinueStatement) GetToken() token.Token { return cs.Token }
func (cs *ContinueStatement) String() string        { return "continue" }

// ExpressionStatement wraps an expression appearing in statement position.
type ExpressionStatement struct {
	Token      token.Token
	Expression Expression
}

func (es *ExpressionStatement) statementNode()        {}
func (es *ExpressionStatement) TokenLiteral() string  { return es.Token.Lexeme }
func (es *ExpressionStatement) GetToken() token.Token { return es.Token }
func (es *ExpressionStatement) String() string        { return es.Expression.String() }

// BlockStatement is a brace-delimited statement sequence. The last
// expression's value escapes the block; if the final statement is followed by
// an explicit separator the block evaluates to Unit.
type BlockStatement struct {
	Token             token.Token // the '{' token
	Statements        []Statement
	TrailingSeparator bool
}

func (bs *BlockStatement) statementNode()        {}
func (bs *BlockStatement) TokenLiteral() string  { return bs.Token.Lexeme }
func (bs *BlockStatement) GetToken() token.Token { return bs.Token }
func (bs *BlockStatement) String() string {
	var out strings.Builder
	out.WriteString("{ ")
	for i, s := range bs.Statements {
		if i > 0 {
			out.WriteString("; ")
		}
		out.WriteString(s.String())
	}
	if bs.TrailingSeparator {
		out.WriteString(";")
	}
	out.WriteString(" }")
	return out.String()
}
