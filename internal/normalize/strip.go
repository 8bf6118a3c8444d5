package normalize

import (
	"strings"
	"unicode/utf8"

	cerrors "github.com/dfinance/move-tools/internal/errors"
)

// stripper blanks out comments while keeping every byte offset: comment
// bytes become spaces, newlines stay. Text outside comments is checked
// against the permitted character set.
type stripper struct {
	path    string
	source  string
	out     []byte
	start   int
	current int
	docs    FileComments
	errors  cerrors.List
}

func newStripper(path, source string) *stripper {
	return &stripper{
		path:   path,
		source: source,
		out:    make([]byte, 0, len(source)),
		docs:   make(FileComments),
	}
}

// stripComments returns text of the same length as source with comments
// blanked and the doc comments found. Scanning stops at the first error.
func stripComments(path, source string) (string, FileComments, cerrors.List) {
	s := newStripper(path, source)
	for !s.isAtEnd() && len(s.errors) == 0 {
		s.start = s.current
		s.scan()
	}
	return string(s.out), s.docs, s.errors
}

func (s *stripper) scan() {
	c := s.peek()
	switch {
	case c == '/' && s.peekNext() == '/':
		s.scanLineComment()
	case c == '/' && s.peekNext() == '*':
		s.scanBlockComment()
	case c == '"':
		s.scanString()
	case (c == 'b' || c == 'x') && s.peekNext() == '"' && !s.afterIdentifier():
		s.keep()
		s.scanString()
	default:
		s.keepChecked()
	}
}

func (s *stripper) scanLineComment() {
	for !s.isAtEnd() && s.peek() != '\n' {
		s.blank()
	}
	text := s.source[s.start:s.current]
	if strings.HasPrefix(text, "///") && !strings.HasPrefix(text, "////") {
		s.addDoc(strings.TrimSpace(text[3:]))
	}
}

func (s *stripper) scanBlockComment() {
	depth := 0
	for !s.isAtEnd() {
		if s.peek() == '/' && s.peekNext() == '*' {
			depth++
			s.blank()
			s.blank()
			continue
		}
		if s.peek() == '*' && s.peekNext() == '/' {
			depth--
			s.blank()
			s.blank()
			if depth == 0 {
				break
			}
			continue
		}
		s.blank()
	}

	if depth > 0 {
		loc := cerrors.Location{File: s.path, Span: cerrors.Span{Start: s.start, End: s.start + 2}}
		s.errors = append(s.errors, cerrors.UnterminatedBlockComment(loc, depth))
		return
	}

	text := s.source[s.start:s.current]
	if strings.HasPrefix(text, "/**") && text != "/**/" && !strings.HasPrefix(text, "/***") {
		s.addDoc(strings.TrimSpace(text[3 : len(text)-2]))
	}
}

// scanString copies a string literal, starting at its opening quote.
// Contents are never treated as comments.
func (s *stripper) scanString() {
	s.keep()
	for !s.isAtEnd() {
		c := s.peek()
		if c == '\\' && s.current+1 < len(s.source) {
			s.keepChecked()
			s.keepChecked()
			continue
		}
		s.keepChecked()
		if c == '"' {
			return
		}
	}
}

func (s *stripper) addDoc(text string) {
	s.docs[cerrors.Span{Start: s.start, End: s.current}] = text
}

// keepChecked copies one character, reporting it if it is not printable
// ASCII, a tab, or a line ending.
func (s *stripper) keepChecked() {
	c := s.peek()
	if isPermitted(c) {
		s.keep()
		return
	}
	r, size := utf8.DecodeRuneInString(s.source[s.current:])
	loc := cerrors.Location{File: s.path, Span: cerrors.Span{Start: s.current, End: s.current + size}}
	s.errors = append(s.errors, cerrors.InvalidCharacter(loc, r))
	for i := 0; i < size; i++ {
		s.keep()
	}
}

func (s *stripper) keep() {
	s.out = append(s.out, s.source[s.current])
	s.current++
}

func (s *stripper) blank() {
	if s.source[s.current] == '\n' {
		s.out = append(s.out, '\n')
	} else {
		s.out = append(s.out, ' ')
	}
	s.current++
}

func (s *stripper) peek() byte {
	if s.isAtEnd() {
		return 0
	}
	return s.source[s.current]
}

func (s *stripper) peekNext() byte {
	if s.current+1 >= len(s.source) {
		return 0
	}
	return s.source[s.current+1]
}

// afterIdentifier reports whether the previous byte continues a word, so
// the `b` of `verb"` is not read as a byte-string prefix.
func (s *stripper) afterIdentifier() bool {
	if s.current == 0 {
		return false
	}
	p := s.source[s.current-1]
	return p == '_' || ('0' <= p && p <= '9') || ('a' <= p && p <= 'z') || ('A' <= p && p <= 'Z')
}

func (s *stripper) isAtEnd() bool {
	return s.current >= len(s.source)
}

func isPermitted(c byte) bool {
	return (c >= 0x20 && c <= 0x7e) || c == '\t' || c == '\n' || c == '\r'
}
