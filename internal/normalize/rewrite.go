package normalize

import (
	"strings"

	"github.com/dfinance/move-tools/internal/sourcemap"
)

var senderPlaceholders = []string{"{{sender}}", "{{ sender }}"}

// normalizeLineEndings turns every CRLF into LF, one edit per pair.
func normalizeLineEndings(text string, fmap *sourcemap.FileOffsetMap) string {
	if !strings.Contains(text, "\r\n") {
		return text
	}
	var out strings.Builder
	out.Grow(len(text))
	last := 0
	for {
		idx := strings.Index(text[last:], "\r\n")
		if idx < 0 {
			break
		}
		out.WriteString(text[last : last+idx])
		out.WriteByte('\n')
		fmap.InsertEdit(out.Len(), -1)
		last += idx + 2
	}
	out.WriteString(text[last:])
	return out.String()
}

// replaceSender substitutes the sender literal for every placeholder, left
// to right, resuming after the end of each replacement.
func replaceSender(text, sender string, fmap *sourcemap.FileOffsetMap) string {
	for cursor := 0; ; {
		pos, placeholder := nextPlaceholder(text, cursor)
		if pos < 0 {
			return text
		}
		text = text[:pos] + sender + text[pos+len(placeholder):]
		cursor = pos + len(sender)
		fmap.InsertEdit(cursor, len(sender)-len(placeholder))
	}
}

func nextPlaceholder(text string, from int) (int, string) {
	best, which := -1, ""
	for _, p := range senderPlaceholders {
		idx := strings.Index(text[from:], p)
		if idx < 0 {
			continue
		}
		if best < 0 || from+idx < best {
			best, which = from+idx, p
		}
	}
	return best, which
}
