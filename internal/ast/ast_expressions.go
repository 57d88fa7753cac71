package ast

import (
	"strings"

	"github.com/rill-lang/rill/internal/token"
)

type Identifier struct {
	Token token.Token
	Value string
}

func (i *Identifier) expressionNode()       {}
func (i *Identifier) TokenLiteral() string  { return i.Token.Lexeme }
func (i *Identifier) GetToken() token.Token { return i.Token }
func (i *Identifier) String() string        { return i.Value }

// IntegerLiteral carries the parsed value plus the width suffix from the
// source ("i64" when none was written).
type IntegerLiteral struct {
	Token  token.Token
	Value  int64
	Suffix string
}

func (il *IntegerLiteral) expressionNode()       {}
func (il *IntegerLiteral) TokenLiteral() string  { return il.Token.Lexeme }
func (il *IntegerLiteral) GetToken() token.Token { return il.Token }
func (il *IntegerLiteral) String() string        { return il.Token.Lexeme }

type FloatLiteral struct {
	Token  token.Token
	Value  float64
	Suffix string // "f32" or "f64"
}

func (fl *FloatLiteral) expressionNode()       {}
func (fl *FloatLiteral) TokenLiteral() string  { return fl.Token.Lexeme }
func (fl *FloatLiteral) GetToken() token.Token { return fl.Token }
func (fl *FloatLiteral) String() string        { return fl.Token.Lexeme }

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()       {}
func (bl *BooleanLiteral) TokenLiteral() string  { return bl.Token.Lexeme }
func (bl *BooleanLiteral) GetToken() token.Token { return bl.Token }
func (bl *BooleanLiteral) String() string        { return bl.Token.Lexeme }

type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()       {}
func (sl *StringLiteral) TokenLiteral() string  { return sl.Token.Lexeme }
func (sl *StringLiteral) GetToken() token.Token { return sl.Token }
func (sl *StringLiteral) String() string        { return sl.Token.Lexeme }

type CharLiteral struct {
	Token token.Token
	Value rune
}

func (cl *CharLiteral) expressionNode()       {}
func (cl *CharLiteral) TokenLiteral() string  { return cl.Token.Lexeme }
func (cl *CharLiteral) GetToken() token.Token { return cl.Token }
func (cl *CharLiteral) String() string        { return cl.Token.Lexeme }

// UnitLiteral is the empty tuple: ().
type UnitLiteral struct {
	Token token.Token
}

func (ul *UnitLiteral) expressionNode()       {}
func (ul *UnitLiteral) TokenLiteral() string  { return ul.Token.Lexeme }
func (ul *UnitLiteral) GetToken() token.Token { return ul.Token }
func (ul *UnitLiteral) String() string        { return "()" }

type TupleLiteral struct {
	Token    token.Token // the '(' token
	Elements []Expression
}

func (tl *TupleLiteral) expressionNode()       {}
func (tl *TupleLiteral) TokenLiteral() string  { return tl.Token.Lexeme }
func (tl *TupleLiteral) GetToken() token.Token { return tl.Token }
func (tl *TupleLiteral) String() string {
	elems := make([]string, len(tl.Elements))
	for i, e := range tl.Elements {
		elems[i] = e.String()
	}
	return "(" + strings.Join(elems, ", ") + ")"
}

type ArrayLiteral struct {
	Token    token.Token // the '[' token
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()       {}
func (al *ArrayLiteral) TokenLiteral() string  { return al.Token.Lexeme }
func (al *ArrayLiteral) GetToken() token.Token { return al.Token }
func (al *ArrayLiteral) String() string {
	elems := make([]string, len(al.Elements))
	for i, e := range al.Elements {
		elems[i] = e.String()
	}
	return "[" + strings.Join(elems, ", ") + "]"
}

type PrefixExpression struct {
	Token    token.Token
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()       {}
func (pe *PrefixExpression) TokenLiteral() string  { return pe.Token.Lexeme }
func (pe *PrefixExpression) GetToken() token.Token { return pe.Token }
func (pe *PrefixExpression) String() string {
	return "(" + pe.Operator + pe.Right.String() + ")"
}

type InfixExpression struct {
	Token    token.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()       {}
func (ie *InfixExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *InfixExpression) GetToken() token.Token { return ie.Token }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}

type IfExpression struct {
	Token       token.Token
	Condition   Expression
	Consequence *BlockStatement
	Alternative *BlockStatement // nil when there is no else
}

func (ie *IfExpression) expressionNode()       {}
func (ie *IfExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *IfExpression) GetToken() token.Token { return ie.Token }
func (ie *IfExpression) String() string {
	out := "if " + ie.Condition.String() + " " + ie.Consequence.String()
	if ie.Alternative != nil {
		out += " else " + ie.Alternative.String()
	}
	return out
}

// MatchArm is one arm of a match expression: pattern => body.
type MatchArm struct {
	Token   token.Token
	Pattern Pattern
	Body    Expression
}

func (ma *MatchArm) String() string {
	return ma.Pattern.String() + " => " + ma.Body.String()
}

type MatchExpression struct {
	Token   token.Token
	Subject Expression
	Arms    []*MatchArm
}

func (me *MatchExpression) expressionNode()       {}
func (me *MatchExpression) TokenLiteral() string  { return me.Token.Lexeme }
func (me *MatchExpression) GetToken() token.Token { return me.Token }
func (me *MatchExpression) String() string {
	arms := make([]string, len(me.Arms))
	for i, a := range me.Arms {
		arms[i] = a.String()
	}
	return "match " + me.Subject.String() + " { " + strings.Join(arms, ", ") + " }"
}

type LoopExpression struct {
	Token token.Token
	Body  *BlockStatement
}

func (le *LoopExpression) expressionNode()       {}
func (le *LoopExpression) TokenLiteral() string  { return le.Token.Lexeme }
func (le *LoopExpression) GetToken() token.Token { return le.Token }
func (le *LoopExpression) String() string        { return "loop " + le.Body.String() }

type WhileExpression struct {
	Token     token.Token
	Condition Expression
	Body      *BlockStatement
}

func (we *WhileExpression) expressionNode()       {}
func (we *WhileExpression) TokenLiteral() string  { return we.Token.Lexeme }
func (we *WhileExpression) GetToken() token.Token { return we.Token }
func (we *WhileExpression) String() string {
	return "while " + we.Condition.String() + " " + we.Body.String()
}

type ForExpression struct {
	Token    token.Token
	Item     *Identifier
	Iterable Expression
	Body     *BlockStatement
}

func (fe *ForExpression) expressionNode()       {}
func (fe *ForExpression) TokenLiteral() string  { return fe.Token.Lexeme }
func (fe *ForExpression) GetToken() token.Token { return fe.Token }
func (fe *ForExpression) String() string {
	return "for " + fe.Item.String() + " in " + fe.Iterable.String() + " " + fe.Body.String()
}

// FunctionLiteral is an anonymous function: fn(x) { x * 2 }. Evaluating one
// produces a closure capturing the defining environment.
type FunctionLiteral struct {
	Token      token.Token
	Parameters []*Identifier
	Body       *BlockStatement
}

func (fl *FunctionLiteral) expressionNode()       {}
func (fl *FunctionLiteral) TokenLiteral() string  { return fl.Token.Lexeme }
func (fl *FunctionLiteral) GetToken() token.Token { return fl.Token }
func (fl *FunctionLiteral) String() string {
	params := make([]string, len(fl.Parameters))
	for i, p := range fl.Parameters {
		params[i] = p.String()
	}
	return "fn(" + strings.Join(params, ", ") + ") " + fl.Body.String()
}

type CallExpression struct {
	Token     token.Token // the '(' token
	Callee    Expression
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()       {}
func (ce *CallExpression) TokenLiteral() string  { return ce.Token.Lexeme }
func (ce *CallExpression) GetToken() token.Token { return ce.Token }
func (ce *CallExpression) String() string {
	args := make([]string, len(ce.Arguments))
	for i, a := range ce.Arguments {
		args[i] = a.String()
	}
	return ce.Callee.String() + "(" + strings.Join(args, ", ") + ")"
}

type IndexExpression struct {
	Token token.Token // the '[' token
	Left  Expression
	Index Expression
}

func (ie *IndexExpression) expressionNode()       {}
func (ie *IndexExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *IndexExpression) GetToken() token.Token { return ie.Token }
func (ie *IndexExpression) String() string {
	return "(" + ie.Left.String() + "[" + ie.Index.String() + "])"
}

type FieldExpression struct {
	Token  token.Token // the '.' token
	Object Expression
	Field  *Identifier
}

func (fe *FieldExpression) expressionNode()       {}
func (fe *FieldExpression) TokenLiteral() string  { return fe.Token.Lexeme }
func (fe *FieldExpression) GetToken() token.Token { return fe.Token }
func (fe *FieldExpression) String() string {
	return fe.Object.String() + "." + fe.Field.String()
}

// StructLiteral constructs a struct value: Point { x: 1, y: 2 }.
type StructLiteral struct {
	Token  token.Token
	Name   *Identifier
	Names  []*Identifier
	Values []Expression
}

func (sl *StructLiteral) expressionNode()       {}
func (sl *StructLiteral) TokenLiteral() string  { return sl.Token.Lexeme }
func (sl *StructLiteral) GetToken() token.Token { return sl.Token }
func (sl *StructLiteral) String() string {
	fields := make([]string, len(sl.Names))
	for i := range sl.Names {
		fields[i] = sl.Names[i].String() + ": " + sl.Values[i].String()
	}
	return sl.Name.String() + " { " + strings.Join(fields, ", ") + " }"
}

// VariantExpression names an enum variant: Color::Red. A payload variant is
// built by calling it: Color::Rgb(1, 2, 3).
type VariantExpression struct {
	Token    token.Token // the '::' token
	TypeName *Identifier
	Variant  *Identifier
}

func (ve *VariantExpression) expressionNode()       {}
func (ve *VariantExpression) TokenLiteral() string  { return ve.Token.Lexeme }
func (ve *VariantExpression) GetToken() token.Token { return ve.Token }
func (ve *VariantExpression) String() string {
	return ve.TypeName.String() + "::" + ve.Variant.String()
}
