package lsp

import (
	"sort"
	"strings"
	"unicode/utf16"

	protocol "github.com/tliron/glsp/protocol_3_16"

	cerrors "github.com/dfinance/move-tools/internal/errors"
)

const diagnosticSource = "movec"

// lineIndex converts byte offsets of one file into LSP positions, which
// count UTF-16 code units.
type lineIndex struct {
	text   string
	starts []int
}

func newLineIndex(text string) *lineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{text: text, starts: starts}
}

func (li *lineIndex) position(offset int) protocol.Position {
	if offset > len(li.text) {
		offset = len(li.text)
	}
	if offset < 0 {
		offset = 0
	}
	line := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset }) - 1

	character := 0
	for _, r := range li.text[li.starts[line]:offset] {
		character += utf16.RuneLen(r)
	}
	return protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(character)}
}

func (li *lineIndex) rangeOf(span cerrors.Span) protocol.Range {
	return protocol.Range{Start: li.position(span.Start), End: li.position(span.End)}
}

// Diagnostics converts errors that are already in original coordinates into
// LSP diagnostics, grouped by the file of their primary part. Related parts
// become related information and may point into other files. sources holds
// the original text of every file the errors may reference.
func Diagnostics(errs cerrors.List, sources map[string]string) map[string][]protocol.Diagnostic {
	indexes := make(map[string]*lineIndex)
	index := func(path string) *lineIndex {
		li, ok := indexes[path]
		if !ok {
			li = newLineIndex(sources[path])
			indexes[path] = li
		}
		return li
	}

	out := make(map[string][]protocol.Diagnostic)
	for _, err := range errs {
		primary := err.Primary()
		var message strings.Builder
		message.WriteString(primary.Message)

		diagnostic := protocol.Diagnostic{
			Severity: ptrSeverity(severity(err.Level)),
			Source:   ptrString(diagnosticSource),
		}
		if primary.Unmapped {
			message.WriteString(" (<unmapped location>)")
		} else {
			diagnostic.Range = index(primary.Location.File).rangeOf(primary.Location.Span)
		}
		if err.Code != "" {
			diagnostic.Code = &protocol.IntegerOrString{Value: err.Code}
		}

		for _, related := range err.Related() {
			if related.Unmapped {
				message.WriteString("\nnote: <unmapped location>: ")
				message.WriteString(related.Message)
				continue
			}
			diagnostic.RelatedInformation = append(diagnostic.RelatedInformation, protocol.DiagnosticRelatedInformation{
				Location: protocol.Location{
					URI:   pathToURI(related.Location.File),
					Range: index(related.Location.File).rangeOf(related.Location.Span),
				},
				Message: related.Message,
			})
		}
		for _, note := range err.Notes {
			message.WriteString("\nnote: ")
			message.WriteString(note)
		}
		for _, suggestion := range err.Suggestions {
			message.WriteString("\nhelp: ")
			message.WriteString(suggestion.Message)
		}

		diagnostic.Message = message.String()
		out[primary.Location.File] = append(out[primary.Location.File], diagnostic)
	}
	return out
}

// forwardDiagnostic moves an error raised in a closed file onto the start
// of the checked document. The original location becomes the first related
// entry so the editor can still jump to it.
func forwardDiagnostic(path string, d protocol.Diagnostic) protocol.Diagnostic {
	message := d.Message
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		message = message[:i]
	}
	related := []protocol.DiagnosticRelatedInformation{{
		Location: protocol.Location{URI: pathToURI(path), Range: d.Range},
		Message:  message,
	}}
	d.RelatedInformation = append(related, d.RelatedInformation...)
	d.Message = "dependency " + path + ": " + d.Message
	d.Range = protocol.Range{}
	return d
}

func severity(level cerrors.ErrorLevel) protocol.DiagnosticSeverity {
	switch level {
	case cerrors.Warning:
		return protocol.DiagnosticSeverityWarning
	case cerrors.Note, cerrors.Help:
		return protocol.DiagnosticSeverityInformation
	}
	return protocol.DiagnosticSeverityError
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func ptrString(s string) *string {
	return &s
}
