package lexer

import (
	"unicode"
	"unicode/utf8"

	"github.com/rill-lang/rill/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int
	column       int
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.readPosition++
		l.column++
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	var tok token.Token

	switch l.ch {
	case '\n':
		tok = l.newToken(token.NEWLINE, "\\n")
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.newToken(token.EQ, "==")
		} else if l.peekChar() == '>' {
			l.readChar()
			tok = l.newToken(token.FATARR, "=>")
		} else {
			tok = l.newToken(token.ASSIGN, "=")
		}
	case '+':
		tok = l.newToken(token.PLUS, "+")
	case '-':
		tok = l.newToken(token.MINUS, "-")
	case '*':
		tok = l.newToken(token.ASTERISK, "*")
	case '/':
		tok = l.newToken(token.SLASH, "/")
	case '%':
		tok = l.newToken(token.PERCENT, "%")
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.newToken(token.NOTEQ, "!=")
		} else {
			tok = l.newToken(token.BANG, "!")
		}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.newToken(token.LTEQ, "<=")
		} else {
			tok = l.newToken(token.LT, "<")
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.newToken(token.GTEQ, ">=")
		} else {
			tok = l.newToken(token.GT, ">")
		}
	case '&':
		if l.peekChar() == '&' {
			l.readChar()
			tok = l.newToken(token.AND, "&&")
		} else {
			tok = l.newToken(token.ILLEGAL, string(l.ch))
		}
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			tok = l.newToken(token.OR, "||")
		} else {
			tok = l.newToken(token.ILLEGAL, string(l.ch))
		}
	case ',':
		tok = l.newToken(token.COMMA, ",")
	case ';':
		tok = l.newToken(token.SEMICOLON, ";")
	case ':':
		if l.peekChar() == ':' {
			l.readChar()
			tok = l.newToken(token.COLONCOLON, "::")
		} else {
			tok = l.newToken(token.COLON, ":")
		}
	case '.':
		tok = l.newToken(token.DOT, ".")
	case '(':
		tok = l.newToken(token.LPAREN, "(")
	case ')':
		tok = l.newToken(token.RPAREN, ")")
	case '{':
		tok = l.newToken(token.LBRACE, "{")
	case '}':
		tok = l.newToken(token.RBRACE, "}")
	case '[':
		tok = l.newToken(token.LBRACKET, "[")
	case ']':
		tok = l.newToken(token.RBRACKET, "]")
	case '"':
		return l.readString()
	case '\'':
		return l.readCharLiteral()
	case 0:
		tok = token.Token{Type: token.EOF, Line: l.line, Column: l.column}
	default:
		if isLetter(l.ch) {
			return l.readIdentifier()
		}
		if unicode.IsDigit(l.ch) {
			return l.readNumber()
		}
		tok = l.newToken(token.ILLEGAL, string(l.ch))
	}

	l.readChar()
	return tok
}

func (l *Lexer) newToken(tt token.Type, lexeme string) token.Token {
	return token.Token{Type: tt, Lexeme: lexeme, Literal: lexeme, Line: l.line, Column: l.column}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
			l.readChar()
		}
		if l.ch == '/' && l.peekChar() == '/' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		return
	}
}

func (l *Lexer) readIdentifier() token.Token {
	line, column := l.line, l.column
	start := l.position
	for isLetter(l.ch) || unicode.IsDigit(l.ch) {
		l.readChar()
	}
	lexeme := l.input[start:l.position]
	return token.Token{Type: token.LookupIdent(lexeme), Lexeme: lexeme, Literal: lexeme, Line: line, Column: column}
}

// readNumber scans integer and float literals, including optional width
// suffixes: 42u8, 7i16, 1.5f32. The suffix stays in Lexeme; Literal holds
// only the digits.
func (l *Lexer) readNumber() token.Token {
	line, column := l.line, l.column
	start := l.position
	tt := token.Type(token.INT)

	for unicode.IsDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && unicode.IsDigit(l.peekChar()) {
		tt = token.FLOAT
		l.readChar()
		for unicode.IsDigit(l.ch) {
			l.readChar()
		}
	}
	digitsEnd := l.position

	// width suffix: i8 i16 i32 i64 u8 u16 u32 u64 f32 f64
	if l.ch == 'i' || l.ch == 'u' || l.ch == 'f' {
		if l.ch == 'f' {
			tt = token.FLOAT
		}
		l.readChar()
		for unicode.IsDigit(l.ch) {
			l.readChar()
		}
	}

	return token.Token{
		Type:    tt,
		Lexeme:  l.input[start:l.position],
		Literal: l.input[start:digitsEnd],
		Line:    line,
		Column:  column,
	}
}

func (l *Lexer) readString() token.Token {
	line, column := l.line, l.column
	var out []rune
	for {
		l.readChar()
		if l.ch == '"' || l.ch == 0 {
			break
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			case '"':
				out = append(out, '"')
			case '\\':
				out = append(out, '\\')
			default:
				out = append(out, l.ch)
			}
			continue
		}
		out = append(out, l.ch)
	}
	tt := token.Type(token.STRING)
	if l.ch == 0 {
		tt = token.ILLEGAL
	}
	l.readChar() // consume closing quote
	return token.Token{Type: tt, Lexeme: `"` + string(out) + `"`, Literal: string(out), Line: line, Column: column}
}

func (l *Lexer) readCharLiteral() token.Token {
	line, column := l.line, l.column
	l.readChar()
	ch := l.ch
	if ch == '\\' {
		l.readChar()
		switch l.ch {
		case 'n':
			ch = '\n'
		case 't':
			ch = '\t'
		case 'r':
			ch = '\r'
		case '\'':
			ch = '\''
		case '\\':
			ch = '\\'
		default:
			ch = l.ch
		}
	}
	l.readChar()
	tt := token.Type(token.CHAR)
	if l.ch != '\'' {
		tt = token.ILLEGAL
	}
	l.readChar() // consume closing quote
	return token.Token{Type: tt, Lexeme: "'" + string(ch) + "'", Literal: string(ch), Line: line, Column: column}
}

func isLetter(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}
