package move

import (
	cerrors "github.com/dfinance/move-tools/internal/errors"
)

func (p *Parser) advance() Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) check(tt TokenType) bool {
	if p.isAtEnd() {
		return tt == EOF
	}
	return p.peek().Type == tt
}

func (p *Parser) match(types ...TokenType) bool {
	for _, tt := range types {
		if p.check(tt) {
			p.advance()
			return true
		}
	}
	return false
}

// consume returns the expected token, or reports an error and returns an
// ILLEGAL token without advancing.
func (p *Parser) consume(tt TokenType, expected string) (Token, bool) {
	if p.check(tt) {
		return p.advance(), true
	}
	p.errorAtCurrent(expected)
	return Token{Type: ILLEGAL, Offset: p.peek().Offset}, false
}

func (p *Parser) peek() Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() Token {
	return p.tokens[p.current-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == EOF
}

func (p *Parser) errorAtCurrent(expected string) {
	tok := p.peek()
	end := tok.End()
	if tok.Type == EOF {
		end = tok.Offset
	}
	p.errors = append(p.errors, cerrors.UnexpectedToken(p.loc(tok.Offset, end), expected, tok.describe()))
}

func (p *Parser) loc(start, end int) cerrors.Location {
	return cerrors.Location{File: p.filename, Span: cerrors.Span{Start: start, End: end}}
}

func (p *Parser) tokenLoc(tok Token) cerrors.Location {
	return p.loc(tok.Offset, tok.End())
}

// synchronize skips to the next top-level keyword after an error.
func (p *Parser) synchronize() {
	for !p.isAtEnd() {
		switch p.peek().Type {
		case MODULE, SCRIPT, ADDRESS_KW:
			return
		}
		p.advance()
	}
}

// skipBalanced consumes tokens up to and including the brace that closes
// the one just consumed. It reports false when the file ends first.
func (p *Parser) skipBalanced(open, close TokenType) bool {
	depth := 1
	for !p.isAtEnd() {
		tok := p.advance()
		switch tok.Type {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return true
			}
		}
	}
	return false
}
