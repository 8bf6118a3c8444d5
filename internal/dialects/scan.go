package dialects

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	cerrors "github.com/dfinance/move-tools/internal/errors"
	"github.com/dfinance/move-tools/internal/sourcemap"
)

// wordLexer splits source text into identifier-like words. String
// literals are their own tokens so nothing inside them is ever rewritten.
var wordLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `[bx]?"(?:\\.|[^"\\])*"`},
	{Name: "Word", Pattern: `[A-Za-z0-9_]+`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Punct", Pattern: `.`},
})

var wordType = wordLexer.Symbols()["Word"]

type word struct {
	text  string
	start int
}

func (w word) end() int {
	return w.start + len(w.text)
}

func scanWords(text string) ([]word, error) {
	lex, err := wordLexer.LexString("", text)
	if err != nil {
		return nil, err
	}
	var words []word
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF() {
			return words, nil
		}
		if tok.Type == wordType {
			words = append(words, word{text: tok.Value, start: tok.Pos.Offset})
		}
	}
}

// MalformedAddress is an address-looking literal that failed validation.
// Span is in the coordinates of the rewritten text.
type MalformedAddress struct {
	Literal string
	Span    cerrors.Span
	Cause   error
}

// MalformedAddresses is returned by ReplaceAddresses under the Report policy.
type MalformedAddresses []MalformedAddress

func (m MalformedAddresses) Error() string {
	parts := make([]string, len(m))
	for i, bad := range m {
		parts[i] = fmt.Sprintf("%s at %d-%d: %v", bad.Literal, bad.Span.Start, bad.Span.End, bad.Cause)
	}
	return "malformed addresses: " + strings.Join(parts, "; ")
}

// AsMalformed unwraps a MalformedAddresses error.
func AsMalformed(err error) (MalformedAddresses, bool) {
	var m MalformedAddresses
	if errors.As(err, &m) {
		return m, true
	}
	return nil, false
}

// converter returns the canonical literal for a word. matched is false for
// words that are not candidates at all.
type converter func(w string) (literal string, matched bool, err error)

// rewrite builds the output left to right, one edit per replaced word.
// Edit offsets are the end of each replacement in the output, which is the
// text as it stood right after that edit.
func rewrite(text string, fmap *sourcemap.FileOffsetMap, convert converter, policy MalformedPolicy) (string, error) {
	words, err := scanWords(text)
	if err != nil {
		log.Errorf("address scan failed: %s", err.Error())
		return text, nil
	}

	var out strings.Builder
	out.Grow(len(text))
	var malformed MalformedAddresses
	last := 0
	for _, w := range words {
		literal, matched, err := convert(w.text)
		if !matched {
			continue
		}
		out.WriteString(text[last:w.start])
		last = w.end()
		if err != nil {
			start := out.Len()
			out.WriteString(w.text)
			if policy == Report {
				malformed = append(malformed, MalformedAddress{
					Literal: w.text,
					Span:    cerrors.Span{Start: start, End: out.Len()},
					Cause:   err,
				})
			} else {
				log.Debugf("leaving malformed address %s untouched: %s", w.text, err.Error())
			}
			continue
		}
		out.WriteString(literal)
		if literal != w.text {
			fmap.InsertEdit(out.Len(), len(literal)-len(w.text))
		}
	}
	out.WriteString(text[last:])

	if len(malformed) > 0 {
		return out.String(), malformed
	}
	return out.String(), nil
}
