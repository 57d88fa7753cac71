package ast

import (
	"strings"

	"github.com/rill-lang/rill/internal/token"
)

// Pattern is the interface for match-arm patterns. Arms are tested in order;
// the first matching arm wins.
type Pattern interface {
	Node
	patternNode()
	GetToken() token.Token
}

// LiteralPattern matches by equality against a literal value.
type LiteralPattern struct {
	Token   token.Token
	Literal Expression
}

func (lp *LiteralPattern) patternNode()          {}
func (lp *LiteralPattern) TokenLiteral() string  { return lp.Token.Lexeme }
func (lp *LiteralPattern) GetToken() token.Token { return lp.Token }
func (lp *LiteralPattern) String() string        { return lp.Literal.String() }

// IdentifierPattern always matches and binds the subject to the name.
type IdentifierPattern struct {
	Token token.Token
	Name  *Identifier
}

func (ip *IdentifierPattern) patternNode()          {}
func (ip *IdentifierPattern) TokenLiteral() string  { return ip.Token.Lexeme }
func (ip *IdentifierPattern) GetToken() token.Token { return ip.Token }
func (ip *IdentifierPattern) String() string        { return ip.Name.String() }

// WildcardPattern always matches and binds nothing.
type WildcardPattern struct {
	Token token.Token
}

func (wp *WildcardPattern) patternNode()          {}
func (wp *WildcardPattern) TokenLiteral() string  { return wp.Token.Lexeme }
func (wp *WildcardPattern) GetToken() token.Token { return wp.Token }
func (wp *WildcardPattern) String() string        { return "_" }

// TuplePattern destructures a tuple element-wise.
type TuplePattern struct {
	Token    token.Token
	Elements []Pattern
}

func (tp *TuplePattern) patternNode()          {}
func (tp *TuplePattern) TokenLiteral() string  { return tp.Token.Lexeme }
func (tp *TuplePattern) GetToken() token.Token { return tp.Token }
func (tp *TuplePattern) String() string {
	elems := make([]string, len(tp.Elements))
	for i, e := range tp.Elements {
		elems[i] = e.String()
	}
	return "(" + strings.Join(elems, ", ") + ")"
}

// VariantPattern matches an enum variant, an Optional (Some/None) or an
// Outcome (Ok/Err), destructuring any payload. TypeName is nil for the
// unqualified builtin constructors.
type VariantPattern struct {
	Token    token.Token
	TypeName *Identifier // nil for Some/None/Ok/Err
	Variant  *Identifier
	Elements []Pattern
}

func (vp *VariantPattern) patternNode()          {}
func (vp *VariantPattern) TokenLiteral() string  { return vp.Token.Lexeme }
func (vp *VariantPattern) GetToken() token.Token { return vp.Token }
func (vp *VariantPattern) String() string {
	name := vp.Variant.String()
	if vp.TypeName != nil {
		name = vp.TypeName.String() + "::" + name
	}
	if len(vp.Elements) == 0 {
		return name
	}
	elems := make([]string, len(vp.Elements))
	for i, e := range vp.Elements {
		elems[i] = e.String()
	}
	return name + "(" + strings.Join(elems, ", ") + ")"
}
