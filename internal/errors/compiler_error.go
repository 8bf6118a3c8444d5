package errors

import (
	"fmt"
	"strings"
)

// ErrorLevel represents the severity of an error
type ErrorLevel string

const (
	Error   ErrorLevel = "error"
	Warning ErrorLevel = "warning"
	Note    ErrorLevel = "note"
	Help    ErrorLevel = "help"
)

// Kind classifies where in the front-end an error was raised.
type Kind string

const (
	FormatError       Kind = "format"        // address literal fails a dialect's grammar or checksum
	CommentStripError Kind = "comment-strip" // malformed comment nesting or characters
	SyntaxError       Kind = "syntax"        // reported by the parser, per file
	SemanticError     Kind = "semantic"      // reported by the checker over the merged program
	TranslationError  Kind = "translation"   // reported by the bytecode translator
)

// FileLocal reports whether errors of this kind only affect the file they were raised in.
func (k Kind) FileLocal() bool {
	switch k {
	case FormatError, CommentStripError, SyntaxError:
		return true
	default:
		return false
	}
}

// Span is a half-open byte range [Start, End).
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}

// Location ties a span to the file it belongs to.
type Location struct {
	File string
	Span Span
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d-%d", l.File, l.Span.Start, l.Span.End)
}

// ErrorPart is one labelled location of a compiler error.
type ErrorPart struct {
	Location Location
	Message  string
	// Unmapped is set when the span could not be translated back to the
	// original file and is still in normalized-text coordinates.
	Unmapped bool
}

// CompilerError is an ordered list of parts. Part 0 is the primary
// location, the remaining parts are related information and may point
// into other files.
type CompilerError struct {
	Level       ErrorLevel
	Kind        Kind
	Code        string // Error code like E0100
	Parts       []ErrorPart
	Suggestions []Suggestion
	Notes       []string
	HelpText    string
}

// Suggestion represents a suggested fix
type Suggestion struct {
	Message     string // Description of the suggestion
	Replacement string // Suggested replacement text (optional)
}

// Primary returns the primary part. A CompilerError without parts yields a zero part.
func (e CompilerError) Primary() ErrorPart {
	if len(e.Parts) == 0 {
		return ErrorPart{}
	}
	return e.Parts[0]
}

// Related returns every part after the primary one.
func (e CompilerError) Related() []ErrorPart {
	if len(e.Parts) < 2 {
		return nil
	}
	return e.Parts[1:]
}

// Files returns the distinct files referenced by the parts, in part order.
func (e CompilerError) Files() []string {
	var files []string
	seen := make(map[string]bool, len(e.Parts))
	for _, part := range e.Parts {
		if !seen[part.Location.File] {
			seen[part.Location.File] = true
			files = append(files, part.Location.File)
		}
	}
	return files
}

func (e CompilerError) Error() string {
	primary := e.Primary()
	if e.Code != "" {
		return fmt.Sprintf("%s: %s[%s]: %s", primary.Location, e.level(), e.Code, primary.Message)
	}
	return fmt.Sprintf("%s: %s: %s", primary.Location, e.level(), primary.Message)
}

func (e CompilerError) level() ErrorLevel {
	if e.Level == "" {
		return Error
	}
	return e.Level
}

// List is a batch of compiler errors returned as a single error value.
type List []CompilerError

func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d errors:", len(l))
	for _, err := range l {
		b.WriteString("\n\t")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Err returns nil for an empty list so callers can write `return errs.Err()`.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}
