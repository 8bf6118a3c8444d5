package move

type TokenType int

const (
	ILLEGAL TokenType = iota
	EOF

	IDENTIFIER
	ADDRESS
	NUMBER
	BYTE_STRING

	// Keywords
	ADDRESS_KW
	MODULE
	SCRIPT
	USE
	AS
	FUN
	PUBLIC
	NATIVE

	LEFT_BRACE
	RIGHT_BRACE
	LEFT_PAREN
	RIGHT_PAREN
	SEMICOLON
	COLON
	DOUBLE_COLON
	COMMA
	PUNCT
)

var tokenNames = map[TokenType]string{
	ILLEGAL:      "illegal token",
	EOF:          "end of file",
	IDENTIFIER:   "identifier",
	ADDRESS:      "address literal",
	NUMBER:       "number",
	BYTE_STRING:  "byte string",
	ADDRESS_KW:   "'address'",
	MODULE:       "'module'",
	SCRIPT:       "'script'",
	USE:          "'use'",
	AS:           "'as'",
	FUN:          "'fun'",
	PUBLIC:       "'public'",
	NATIVE:       "'native'",
	LEFT_BRACE:   "'{'",
	RIGHT_BRACE:  "'}'",
	LEFT_PAREN:   "'('",
	RIGHT_PAREN:  "')'",
	SEMICOLON:    "';'",
	COLON:        "':'",
	DOUBLE_COLON: "'::'",
	COMMA:        "','",
	PUNCT:        "operator",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "unknown token"
}

var KEYWORDS = map[string]TokenType{
	"address": ADDRESS_KW,
	"module":  MODULE,
	"script":  SCRIPT,
	"use":     USE,
	"as":      AS,
	"fun":     FUN,
	"public":  PUBLIC,
	"native":  NATIVE,
}

type Token struct {
	Type   TokenType
	Lexeme string
	Offset int
}

func (t Token) End() int {
	return t.Offset + len(t.Lexeme)
}

// describe renders a token for "unexpected X" messages.
func (t Token) describe() string {
	switch t.Type {
	case EOF:
		return "end of file"
	case IDENTIFIER, ADDRESS, NUMBER:
		return t.Type.String() + " '" + t.Lexeme + "'"
	}
	return "'" + t.Lexeme + "'"
}
