package move

import (
	cerrors "github.com/dfinance/move-tools/internal/errors"
	"github.com/dfinance/move-tools/internal/toolchain"
)

// Parser reads the structure of a Move file: address blocks, modules,
// scripts, their use declarations and function signatures. Function
// bodies are skipped.
type Parser struct {
	filename string
	tokens   []Token
	current  int
	errors   cerrors.List
}

// ParseFile scans and parses one normalized file.
func ParseFile(path, text string) ([]toolchain.Definition, cerrors.List) {
	tokens, scanErrs := NewScanner(path, text).ScanTokens()
	if len(scanErrs) > 0 {
		return nil, scanErrs
	}
	p := &Parser{filename: path, tokens: tokens}
	defs := p.parseFile()
	if len(p.errors) > 0 {
		return nil, p.errors
	}
	return defs, nil
}

func (p *Parser) parseFile() []toolchain.Definition {
	var defs []toolchain.Definition
	for !p.isAtEnd() {
		switch {
		case p.check(ADDRESS_KW):
			defs = append(defs, p.parseAddressBlock()...)
		case p.check(MODULE):
			if def, ok := p.parseModule(""); ok {
				defs = append(defs, def)
			} else {
				p.synchronize()
			}
		case p.check(SCRIPT):
			if def, ok := p.parseScript(); ok {
				defs = append(defs, def)
			} else {
				p.synchronize()
			}
		default:
			p.errorAtCurrent("'address', 'module' or 'script'")
			p.advance()
			p.synchronize()
		}
	}
	return defs
}

// parseAddressBlock parses `address 0x.. { module* }`.
func (p *Parser) parseAddressBlock() []toolchain.Definition {
	p.advance() // address
	addrTok, ok := p.consume(ADDRESS, "address literal")
	if !ok {
		p.synchronize()
		return nil
	}
	if _, ok := p.consume(LEFT_BRACE, "'{'"); !ok {
		p.synchronize()
		return nil
	}

	var defs []toolchain.Definition
	for !p.check(RIGHT_BRACE) && !p.isAtEnd() {
		if !p.check(MODULE) {
			p.errorAtCurrent("'module'")
			p.advance()
			p.synchronize()
			return defs
		}
		def, ok := p.parseModule(addrTok.Lexeme)
		if !ok {
			p.synchronize()
			return defs
		}
		defs = append(defs, def)
	}
	p.consume(RIGHT_BRACE, "'}'")
	return defs
}

// parseModule parses `module [0x..::]Name { ... }`. blockAddr is the
// address of an enclosing address block, if any.
func (p *Parser) parseModule(blockAddr string) (toolchain.Definition, bool) {
	p.advance() // module
	def := toolchain.Definition{Kind: toolchain.ModuleDefinition, Address: blockAddr}

	if p.check(ADDRESS) {
		addrTok := p.advance()
		if _, ok := p.consume(DOUBLE_COLON, "'::'"); !ok {
			return def, false
		}
		def.Address = addrTok.Lexeme
	}

	nameTok, ok := p.consume(IDENTIFIER, "module name")
	if !ok {
		return def, false
	}
	def.Name = nameTok.Lexeme
	def.Loc = p.tokenLoc(nameTok)

	if _, ok := p.consume(LEFT_BRACE, "'{'"); !ok {
		return def, false
	}
	return def, p.parseBody(&def)
}

func (p *Parser) parseScript() (toolchain.Definition, bool) {
	tok := p.advance() // script
	def := toolchain.Definition{Kind: toolchain.ScriptDefinition, Loc: p.tokenLoc(tok)}
	if _, ok := p.consume(LEFT_BRACE, "'{'"); !ok {
		return def, false
	}
	return def, p.parseBody(&def)
}

// parseBody reads members up to the closing brace of a module or script.
func (p *Parser) parseBody(def *toolchain.Definition) bool {
	for {
		switch {
		case p.match(RIGHT_BRACE):
			return true
		case p.isAtEnd():
			p.errorAtCurrent("'}'")
			return false
		case p.check(USE):
			use, ok := p.parseUse()
			if !ok {
				return false
			}
			def.Uses = append(def.Uses, use)
		case p.check(PUBLIC), p.check(NATIVE), p.check(FUN):
			fn, ok := p.parseFunction()
			if !ok {
				return false
			}
			def.Functions = append(def.Functions, fn)
		case p.match(LEFT_BRACE):
			if !p.skipBalanced(LEFT_BRACE, RIGHT_BRACE) {
				p.errorAtCurrent("'}'")
				return false
			}
		default:
			p.advance()
		}
	}
}

// parseUse parses `use 0x..::Module [as Alias | ::member | ::{members}];`.
func (p *Parser) parseUse() (toolchain.Use, bool) {
	p.advance() // use
	var use toolchain.Use

	addrTok, ok := p.consume(ADDRESS, "address literal")
	if !ok {
		return use, false
	}
	if _, ok := p.consume(DOUBLE_COLON, "'::'"); !ok {
		return use, false
	}
	nameTok, ok := p.consume(IDENTIFIER, "module name")
	if !ok {
		return use, false
	}
	use.Address = addrTok.Lexeme
	use.Module = nameTok.Lexeme
	use.Loc = p.tokenLoc(nameTok)

	switch {
	case p.match(AS):
		aliasTok, ok := p.consume(IDENTIFIER, "alias")
		if !ok {
			return use, false
		}
		use.Alias = aliasTok.Lexeme
	case p.match(DOUBLE_COLON):
		if p.match(LEFT_BRACE) {
			if !p.skipBalanced(LEFT_BRACE, RIGHT_BRACE) {
				p.errorAtCurrent("'}'")
				return use, false
			}
		} else if _, ok := p.consume(IDENTIFIER, "member name"); !ok {
			return use, false
		}
	}

	_, ok = p.consume(SEMICOLON, "';'")
	return use, ok
}

// parseFunction parses a function signature and skips its body.
func (p *Parser) parseFunction() (toolchain.Function, bool) {
	var fn toolchain.Function
	fn.Public = p.match(PUBLIC)
	fn.Native = p.match(NATIVE)
	if _, ok := p.consume(FUN, "'fun'"); !ok {
		return fn, false
	}
	nameTok, ok := p.consume(IDENTIFIER, "function name")
	if !ok {
		return fn, false
	}
	fn.Name = nameTok.Lexeme
	fn.Loc = p.tokenLoc(nameTok)

	// Type parameters
	for p.check(PUNCT) || p.check(IDENTIFIER) || p.check(COLON) || p.check(COMMA) {
		p.advance()
	}
	if _, ok := p.consume(LEFT_PAREN, "'('"); !ok {
		return fn, false
	}
	if !p.skipBalanced(LEFT_PAREN, RIGHT_PAREN) {
		p.errorAtCurrent("')'")
		return fn, false
	}

	// Return type and acquires list
	for {
		switch {
		case p.match(SEMICOLON):
			return fn, true
		case p.match(LEFT_BRACE):
			if !p.skipBalanced(LEFT_BRACE, RIGHT_BRACE) {
				p.errorAtCurrent("'}'")
				return fn, false
			}
			return fn, true
		case p.isAtEnd(), p.check(RIGHT_BRACE):
			p.errorAtCurrent("function body")
			return fn, false
		default:
			p.advance()
		}
	}
}
