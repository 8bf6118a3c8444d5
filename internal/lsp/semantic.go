package lsp

import (
	"strings"

	"github.com/dfinance/move-tools/internal/normalize"
	"github.com/dfinance/move-tools/internal/toolchain/move"
)

// SemanticTokenTypes is the legend advertised to clients. The order is the
// wire encoding.
var SemanticTokenTypes = []string{
	"namespace",
	"function",
	"keyword",
	"number",
	"string",
}

var SemanticTokenModifiers = []string{
	"declaration",
}

// SemanticToken is one entry before delta encoding. Line and StartChar are
// 0-based, StartChar and Length count UTF-16 code units.
type SemanticToken struct {
	Line           uint32
	StartChar      uint32
	Length         uint32
	TokenType      int // index into SemanticTokenTypes
	TokenModifiers int // bitmask
}

// collectSemanticTokens scans the normalized text, so placeholders and
// dialect addresses are seen as the address literals they become, and maps
// each token back onto the original text.
func collectSemanticTokens(n normalize.Normalized, original string) []SemanticToken {
	tokens, _ := move.NewScanner(n.File.Path, n.File.Content).ScanTokens()
	li := newLineIndex(original)

	var out []SemanticToken
	for i, tok := range tokens {
		tokenType, decl, ok := classify(tokens, i)
		if !ok {
			continue
		}
		start := n.Offsets.Translate(tok.Offset)
		end := n.Offsets.Translate(tok.End())
		if end <= start || strings.Contains(original[start:end], "\n") {
			continue
		}
		from, to := li.position(start), li.position(end)
		out = append(out, makeToken(from.Line, from.Character, to.Character-from.Character, tokenType, decl))
	}
	return out
}

func classify(tokens []move.Token, i int) (tokenType string, decl bool, ok bool) {
	tok := tokens[i]
	switch tok.Type {
	case move.ADDRESS_KW, move.MODULE, move.SCRIPT, move.USE, move.AS, move.FUN, move.PUBLIC, move.NATIVE:
		return "keyword", false, true
	case move.ADDRESS, move.NUMBER:
		return "number", false, true
	case move.BYTE_STRING:
		return "string", false, true
	case move.IDENTIFIER:
	default:
		return "", false, false
	}

	at := func(j int) move.TokenType {
		if j < 0 || j >= len(tokens) {
			return move.ILLEGAL
		}
		return tokens[j].Type
	}
	switch {
	case at(i-1) == move.FUN:
		return "function", true, true
	case at(i-1) == move.MODULE:
		return "namespace", true, true
	case at(i-1) == move.DOUBLE_COLON && at(i-2) == move.ADDRESS:
		// module 0x1::M declares, use 0x1::M references
		return "namespace", at(i-3) == move.MODULE, true
	case at(i-1) == move.AS:
		return "namespace", true, true
	case at(i+1) == move.DOUBLE_COLON:
		return "namespace", false, true
	case at(i-1) == move.DOUBLE_COLON:
		return "function", false, true
	}
	return "", false, false
}

func makeToken(line, startChar, length uint32, tokenType string, decl bool) SemanticToken {
	modifiers := 0
	if decl {
		modifiers = 1 << indexOf("declaration", SemanticTokenModifiers)
	}
	return SemanticToken{
		Line:           line,
		StartChar:      startChar,
		Length:         length,
		TokenType:      indexOf(tokenType, SemanticTokenTypes),
		TokenModifiers: modifiers,
	}
}

// encodeTokens applies the delta-line, delta-start compression of the wire
// format.
func encodeTokens(tokens []SemanticToken) []uint32 {
	data := make([]uint32, 0, len(tokens)*5)
	var prevLine, prevStart uint32
	for _, token := range tokens {
		deltaLine := token.Line - prevLine
		deltaStart := token.StartChar
		if deltaLine == 0 {
			deltaStart = token.StartChar - prevStart
		}
		data = append(data, deltaLine, deltaStart, token.Length, uint32(token.TokenType), uint32(token.TokenModifiers))
		prevLine = token.Line
		prevStart = token.StartChar
	}
	return data
}

// indexOf returns the index of a string in a slice, or 0 if not found
func indexOf(target string, list []string) int {
	for i, v := range list {
		if v == target {
			return i
		}
	}
	return 0
}
