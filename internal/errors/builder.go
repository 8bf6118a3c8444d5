package errors

import (
	"fmt"
	"strings"
)

// Builder provides a fluent interface for creating compiler errors with suggestions
type Builder struct {
	err CompilerError
}

// NewError creates a new error builder with its primary location
func NewError(kind Kind, code string, loc Location, message string) *Builder {
	return &Builder{
		err: CompilerError{
			Level: Error,
			Kind:  kind,
			Code:  code,
			Parts: []ErrorPart{{Location: loc, Message: message}},
		},
	}
}

// NewWarning creates a new warning builder
func NewWarning(kind Kind, code string, loc Location, message string) *Builder {
	b := NewError(kind, code, loc, message)
	b.err.Level = Warning
	return b
}

// WithRelated appends a related location, possibly in another file
func (b *Builder) WithRelated(loc Location, message string) *Builder {
	b.err.Parts = append(b.err.Parts, ErrorPart{Location: loc, Message: message})
	return b
}

// WithSuggestion adds a suggestion to the error
func (b *Builder) WithSuggestion(message string) *Builder {
	b.err.Suggestions = append(b.err.Suggestions, Suggestion{Message: message})
	return b
}

// WithReplacement adds a suggestion with replacement text
func (b *Builder) WithReplacement(message, replacement string) *Builder {
	b.err.Suggestions = append(b.err.Suggestions, Suggestion{Message: message, Replacement: replacement})
	return b
}

// WithNote adds a note to the error
func (b *Builder) WithNote(note string) *Builder {
	b.err.Notes = append(b.err.Notes, note)
	return b
}

// WithHelp adds help text to the error
func (b *Builder) WithHelp(help string) *Builder {
	b.err.HelpText = help
	return b
}

// Build returns the completed compiler error
func (b *Builder) Build() CompilerError {
	return b.err
}

// UnterminatedBlockComment reports a `/*` without its matching `*/`.
func UnterminatedBlockComment(loc Location, depth int) CompilerError {
	b := NewError(CommentStripError, ErrorUnterminatedComment, loc, "unclosed block comment")
	if depth > 1 {
		b = b.WithNote(fmt.Sprintf("%d nested comments are still open at the end of the file", depth))
	}
	return b.WithHelp("block comments nest: every '/*' needs its own '*/'").Build()
}

// InvalidCharacter reports a character outside the printable ASCII source alphabet.
func InvalidCharacter(loc Location, ch rune) CompilerError {
	return NewError(CommentStripError, ErrorInvalidCharacter, loc, fmt.Sprintf("invalid character %q", ch)).
		WithHelp("source text outside comments must be ASCII").
		Build()
}

// MalformedAddress reports an address-looking literal that failed validation.
func MalformedAddress(loc Location, literal, dialect string, cause error) CompilerError {
	return NewError(FormatError, ErrorMalformedAddress, loc,
		fmt.Sprintf("malformed %s address '%s': %v", dialect, literal, cause)).
		WithSuggestion("check the literal for typos, its checksum is invalid").
		Build()
}

// UnexpectedToken reports a parser mismatch.
func UnexpectedToken(loc Location, expected, found string) CompilerError {
	return NewError(SyntaxError, ErrorUnexpectedToken, loc,
		fmt.Sprintf("unexpected %s, expected %s", found, expected)).
		Build()
}

// UnterminatedString reports a byte string literal that runs to the end of the file.
func UnterminatedString(loc Location) CompilerError {
	return NewError(SyntaxError, ErrorUnterminatedString, loc, "unterminated byte string").Build()
}

// DuplicateModule reports a module defined twice; the related part points at the first definition.
func DuplicateModule(name string, dup, first Location) CompilerError {
	return NewError(SemanticError, ErrorDuplicateModule, dup, fmt.Sprintf("duplicate declaration of module '%s'", name)).
		WithRelated(first, "previously declared here").
		WithSuggestion(fmt.Sprintf("rename one of the '%s' modules or publish it under another address", name)).
		Build()
}

// DuplicateFunction reports a function declared twice in a unit.
func DuplicateFunction(name string, dup, first Location) CompilerError {
	return NewError(SemanticError, ErrorDuplicateFunction, dup, fmt.Sprintf("duplicate declaration of function '%s'", name)).
		WithRelated(first, "previously declared here").
		Build()
}

// UnboundModule reports a use declaration naming an unknown module.
func UnboundModule(name string, loc Location, knownModules []string) CompilerError {
	b := NewError(SemanticError, ErrorUnboundModule, loc, fmt.Sprintf("unbound module '%s'", name))

	similar := findSimilarNames(name, knownModules)
	if len(similar) > 0 {
		for _, s := range similar {
			b = b.WithSuggestion(fmt.Sprintf("did you mean '%s'?", s))
		}
	} else {
		b = b.WithSuggestion("make sure the module is part of the dependency set")
	}
	return b.Build()
}

// EmptyScript reports a script block without any function.
func EmptyScript(loc Location) CompilerError {
	return NewError(TranslationError, ErrorEmptyScript, loc, "script has no function to execute").
		WithHelp("a script must declare exactly the functions it runs, e.g. 'fun main() {}'").
		Build()
}

// EmptyModule warns about a module without functions.
func EmptyModule(name string, loc Location) CompilerError {
	return NewWarning(SemanticError, WarningEmptyModule, loc, fmt.Sprintf("module '%s' declares no functions", name)).Build()
}

// findSimilarNames finds names similar to the target using Levenshtein distance
func findSimilarNames(target string, candidates []string) []string {
	var similar []string
	maxDistance := 2

	for _, candidate := range candidates {
		if candidate == target {
			continue
		}
		if levenshteinDistance(strings.ToLower(target), strings.ToLower(candidate)) <= maxDistance {
			similar = append(similar, candidate)
		}
	}

	return similar
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
	}

	for i := 0; i <= len(a); i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len(b); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}

			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}
