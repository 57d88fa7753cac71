package lexer

import (
	"testing"

	"github.com/rill-lang/rill/internal/token"
)

func TestNextToken(t *testing.T) {
	input := `let five = 5
fn add(a, b) { a + b }
if x <= 10 { true } else { false }
match c { Color::Red => 1, _ => 0 }
s[0].field
1 == 2; 3 != 4; a && b || !c
break continue return loop while for in struct enum
`

	expected := []struct {
		tt     token.Type
		lexeme string
	}{
		{token.LET, "let"}, {token.IDENT, "five"}, {token.ASSIGN, "="}, {token.INT, "5"}, {token.NEWLINE, "\\n"},
		{token.FN, "fn"}, {token.IDENT, "add"}, {token.LPAREN, "("}, {token.IDENT, "a"}, {token.COMMA, ","},
		{token.IDENT, "b"}, {token.RPAREN, ")"}, {token.LBRACE, "{"}, {token.IDENT, "a"}, {token.PLUS, "+"},
		{token.IDENT, "b"}, {token.RBRACE, "}"}, {token.NEWLINE, "\\n"},
		{token.IF, "if"}, {token.IDENT, "x"}, {token.LTEQ, "<="}, {token.INT, "10"}, {token.LBRACE, "{"},
		{token.TRUE, "true"}, {token.RBRACE, "}"}, {token.ELSE, "else"}, {token.LBRACE, "{"},
		{token.FALSE, "false"}, {token.RBRACE, "}"}, {token.NEWLINE, "\\n"},
		{token.MATCH, "match"}, {token.IDENT, "c"}, {token.LBRACE, "{"}, {token.IDENT, "Color"},
		{token.COLONCOLON, "::"}, {token.IDENT, "Red"}, {token.FATARR, "=>"}, {token.INT, "1"},
		{token.COMMA, ","}, {token.UNDERSCORE, "_"}, {token.FATARR, "=>"}, {token.INT, "0"},
		{token.RBRACE, "}"}, {token.NEWLINE, "\\n"},
		{token.IDENT, "s"}, {token.LBRACKET, "["}, {token.INT, "0"}, {token.RBRACKET, "]"},
		{token.DOT, "."}, {token.IDENT, "field"}, {token.NEWLINE, "\\n"},
		{token.INT, "1"}, {token.EQ, "=="}, {token.INT, "2"}, {token.SEMICOLON, ";"},
		{token.INT, "3"}, {token.NOTEQ, "!="}, {token.INT, "4"}, {token.SEMICOLON, ";"},
		{token.IDENT, "a"}, {token.AND, "&&"}, {token.IDENT, "b"}, {token.OR, "||"},
		{token.BANG, "!"}, {token.IDENT, "c"}, {token.NEWLINE, "\\n"},
		{token.BREAK, "break"}, {token.CONTINUE, "continue"}, {token.RETURN, "return"},
		{token.LOOP, "loop"}, {token.WHILE, "while"}, {token.FOR, "for"}, {token.IN, "in"},
		{token.STRUCT, "struct"}, {token.ENUM, "enum"}, {token.NEWLINE, "\\n"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want.tt {
			t.Fatalf("token %d: type %q, want %q (lexeme %q)", i, tok.Type, want.tt, tok.Lexeme)
		}
		if tok.Lexeme != want.lexeme {
			t.Fatalf("token %d: lexeme %q, want %q", i, tok.Lexeme, want.lexeme)
		}
	}
}

func TestNumberLiterals(t *testing.T) {
	tests := []struct {
		input   string
		tt      token.Type
		lexeme  string
		literal string
	}{
		{"42", token.INT, "42", "42"},
		{"42u8", token.INT, "42u8", "42"},
		{"7i16", token.INT, "7i16", "7"},
		{"1.5", token.FLOAT, "1.5", "1.5"},
		{"2.0f32", token.FLOAT, "2.0f32", "2.0"},
		{"3f64", token.FLOAT, "3f64", "3"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := New(tt.input).NextToken()
			if tok.Type != tt.tt {
				t.Errorf("type %q, want %q", tok.Type, tt.tt)
			}
			if tok.Lexeme != tt.lexeme {
				t.Errorf("lexeme %q, want %q", tok.Lexeme, tt.lexeme)
			}
			if tok.Literal != tt.literal {
				t.Errorf("literal %q, want %q", tok.Literal, tt.literal)
			}
		})
	}
}

func TestStringLiterals(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"hello"`, "hello"},
		{`""`, ""},
		{`"a\nb"`, "a\nb"},
		{`"tab\there"`, "tab\there"},
		{`"quote \" inside"`, `quote " inside`},
		{`"back\\slash"`, `back\slash`},
		{`"héllo"`, "héllo"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := New(tt.input).NextToken()
			if tok.Type != token.STRING {
				t.Fatalf("type %q, want STRING", tok.Type)
			}
			if tok.Literal != tt.want {
				t.Errorf("literal %q, want %q", tok.Literal, tt.want)
			}
		})
	}

	t.Run("unterminated", func(t *testing.T) {
		tok := New(`"abc`).NextToken()
		if tok.Type != token.ILLEGAL {
			t.Errorf("type %q, want ILLEGAL", tok.Type)
		}
	})
}

func TestCharLiterals(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"'a'", "a"},
		{`'\n'`, "\n"},
		{`'\''`, "'"},
		{"'é'", "é"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := New(tt.input).NextToken()
			if tok.Type != token.CHAR {
				t.Fatalf("type %q, want CHAR", tok.Type)
			}
			if tok.Literal != tt.want {
				t.Errorf("literal %q, want %q", tok.Literal, tt.want)
			}
		})
	}

	t.Run("unterminated", func(t *testing.T) {
		tok := New("'ab'").NextToken()
		if tok.Type != token.ILLEGAL {
			t.Errorf("type %q, want ILLEGAL", tok.Type)
		}
	})
}

func TestCommentsAreSkipped(t *testing.T) {
	input := "// leading comment\nlet x = 1 // trailing\n"
	l := New(input)

	types := []token.Type{token.NEWLINE, token.LET, token.IDENT, token.ASSIGN, token.INT, token.NEWLINE, token.EOF}
	for i, want := range types {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("token %d: type %q, want %q", i, tok.Type, want)
		}
	}
}

func TestPositions(t *testing.T) {
	l := New("let x\nlet y")

	tok := l.NextToken() // let
	if tok.Line != 1 || tok.Column != 1 {
		t.Errorf("first token at %d:%d, want 1:1", tok.Line, tok.Column)
	}
	l.NextToken() // x
	l.NextToken() // newline
	tok = l.NextToken() // second let
	if tok.Line != 2 || tok.Column != 1 {
		t.Errorf("second let at %d:%d, want 2:1", tok.Line, tok.Column)
	}
	l.NextToken() // y
	tok = l.NextToken()
	if tok.Type != token.EOF {
		t.Errorf("expected EOF, got %q", tok.Type)
	}
}

func TestIllegalRunes(t *testing.T) {
	for _, input := range []string{"&", "|", "#", "@"} {
		tok := New(input).NextToken()
		if tok.Type != token.ILLEGAL {
			t.Errorf("%q: type %q, want ILLEGAL", input, tok.Type)
		}
	}
}
