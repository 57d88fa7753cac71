package token

type Type string

type Token struct {
	Type    Type
	Lexeme  string // exact source text
	Literal string // processed literal (unquoted strings, digits without suffix)
	Line    int
	Column  int
}

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"
	NEWLINE = "NEWLINE"

	// Identifiers and literals
	IDENT  = "IDENT"  // add, count_down, x
	INT    = "INT"    // 42, 42u8, 7i16
	FLOAT  = "FLOAT"  // 1.5, 2.0f32
	STRING = "STRING" // "hello"
	CHAR   = "CHAR"   // 'a'

	// Operators
	ASSIGN   = "="
	PLUS     = "+"
	MINUS    = "-"
	BANG     = "!"
	ASTERISK = "*"
	SLASH    = "/"
	PERCENT  = "%"

	LT     = "<"
	GT     = ">"
	LTEQ   = "<="
	GTEQ   = ">="
	EQ     = "=="
	NOTEQ  = "!="
	AND    = "&&"
	OR     = "||"
	FATARR = "=>"

	// Delimiters
	COMMA      = ","
	SEMICOLON  = ";"
	COLON      = ":"
	COLONCOLON = "::"
	DOT        = "."

	LPAREN   = "("
	RPAREN   = ")"
	LBRACE   = "{"
	RBRACE   = "}"
	LBRACKET = "["
	RBRACKET = "]"

	// Keywords
	FN         = "FN"
	LET        = "LET"
	TRUE       = "TRUE"
	FALSE      = "FALSE"
	IF         = "IF"
	ELSE       = "ELSE"
	MATCH      = "MATCH"
	LOOP       = "LOOP"
	WHILE      = "WHILE"
	FOR        = "FOR"
	IN         = "IN"
	BREAK      = "BREAK"
	CONTINUE   = "CONTINUE"
	RETURN     = "RETURN"
	STRUCT     = "STRUCT"
	ENUM       = "ENUM"
	UNDERSCORE = "UNDERSCORE"
)

var keywords = map[string]Type{
	"fn":       FN,
	"let":      LET,
	"true":     TRUE,
	"false":    FALSE,
	"if":       IF,
	"else":     ELSE,
	"match":    MATCH,
	"loop":     LOOP,
	"while":    WHILE,
	"for":      FOR,
	"in":       IN,
	"break":    BREAK,
	"continue": CONTINUE,
	"return":   RETURN,
	"struct":   STRUCT,
	"enum":     ENUM,
	"_":        UNDERSCORE,
}

// LookupIdent returns the keyword type for ident, or IDENT.
func LookupIdent(ident string) Type {
	if tt, ok := keywords[ident]; ok {
		return tt
	}
	return IDENT
}
