package move

import (
	cerrors "github.com/dfinance/move-tools/internal/errors"
)

// Scanner tokenizes comment-free Move source.
type Scanner struct {
	filename string
	source   string
	tokens   []Token
	start    int
	current  int
	errors   cerrors.List
}

func NewScanner(filename, source string) *Scanner {
	return &Scanner{filename: filename, source: source}
}

func (s *Scanner) ScanTokens() ([]Token, cerrors.List) {
	for !s.isAtEnd() {
		s.start = s.current
		s.scanToken()
	}
	s.tokens = append(s.tokens, Token{Type: EOF, Offset: s.current})
	return s.tokens, s.errors
}

func (s *Scanner) scanToken() {
	c := s.advance()
	switch c {
	case '{':
		s.addToken(LEFT_BRACE)
	case '}':
		s.addToken(RIGHT_BRACE)
	case '(':
		s.addToken(LEFT_PAREN)
	case ')':
		s.addToken(RIGHT_PAREN)
	case ';':
		s.addToken(SEMICOLON)
	case ',':
		s.addToken(COMMA)
	case ':':
		if s.matchNext(':') {
			s.addToken(DOUBLE_COLON)
		} else {
			s.addToken(COLON)
		}
	case ' ', '\r', '\t', '\n':
		// Ignore whitespace
	case '"':
		s.scanString()
	default:
		s.scanDefault(c)
	}
}

func (s *Scanner) scanDefault(c byte) {
	switch {
	case (c == 'b' || c == 'x') && s.peek() == '"':
		s.advance()
		s.scanString()
	case c == '0' && s.peek() == 'x':
		s.scanAddress()
	case isDigit(c):
		s.scanNumber()
	case isAlpha(c):
		s.scanIdentifier()
	case c < 0x20 || c > 0x7e:
		loc := cerrors.Location{File: s.filename, Span: cerrors.Span{Start: s.start, End: s.current}}
		s.errors = append(s.errors, cerrors.InvalidCharacter(loc, rune(c)))
	default:
		s.addToken(PUNCT)
	}
}

func (s *Scanner) scanAddress() {
	s.advance() // x
	if !isHexDigit(s.peek()) {
		loc := cerrors.Location{File: s.filename, Span: cerrors.Span{Start: s.start, End: s.current}}
		s.errors = append(s.errors, cerrors.UnexpectedToken(loc, "hex digit after '0x'", s.describeNext()))
		return
	}
	for isHexDigit(s.peek()) {
		s.advance()
	}
	s.addToken(ADDRESS)
}

func (s *Scanner) scanNumber() {
	for isDigit(s.peek()) || s.peek() == '_' {
		s.advance()
	}
	// Integer suffixes such as u8, u64, u128
	if s.peek() == 'u' {
		for isAlpha(s.peek()) || isDigit(s.peek()) {
			s.advance()
		}
	}
	s.addToken(NUMBER)
}

func (s *Scanner) scanIdentifier() {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.advance()
	}
	text := s.source[s.start:s.current]
	if t, ok := KEYWORDS[text]; ok {
		s.addToken(t)
		return
	}
	s.addToken(IDENTIFIER)
}

func (s *Scanner) scanString() {
	for s.peek() != '"' && !s.isAtEnd() {
		if s.peek() == '\\' {
			s.advance()
			if s.isAtEnd() {
				break
			}
		}
		s.advance()
	}
	if s.isAtEnd() {
		loc := cerrors.Location{File: s.filename, Span: cerrors.Span{Start: s.start, End: s.current}}
		s.errors = append(s.errors, cerrors.UnterminatedString(loc))
		return
	}
	s.advance()
	s.addToken(BYTE_STRING)
}

func (s *Scanner) describeNext() string {
	if s.isAtEnd() {
		return "end of file"
	}
	return "'" + string(s.peek()) + "'"
}

func (s *Scanner) advance() byte {
	c := s.source[s.current]
	s.current++
	return c
}

func (s *Scanner) matchNext(expected byte) bool {
	if s.isAtEnd() || s.source[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) peek() byte {
	if s.isAtEnd() {
		return 0
	}
	return s.source[s.current]
}

func (s *Scanner) addToken(tokenType TokenType) {
	s.tokens = append(s.tokens, Token{
		Type:   tokenType,
		Lexeme: s.source[s.start:s.current],
		Offset: s.start,
	})
}

func (s *Scanner) isAtEnd() bool {
	return s.current >= len(s.source)
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isAlpha(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_'
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') ||
		('a' <= c && c <= 'f') ||
		('A' <= c && c <= 'F')
}
