package normalize

import (
	"sort"

	cerrors "github.com/dfinance/move-tools/internal/errors"
	"github.com/dfinance/move-tools/internal/sourcemap"
)

// FileComments maps the span of each doc comment (`///` or `/** */`) in a
// file to its text with the delimiters removed.
type FileComments map[cerrors.Span]string

// CommentMap holds the doc comments of every file of a program, keyed by path.
type CommentMap map[string]FileComments

// Sorted returns the spans in source order.
func (fc FileComments) Sorted() []cerrors.Span {
	spans := make([]cerrors.Span, 0, len(fc))
	for span := range fc {
		spans = append(spans, span)
	}
	sort.Slice(spans, func(i, j int) bool {
		return spans[i].Start < spans[j].Start
	})
	return spans
}

// translate rewrites every span through fmap into original coordinates.
func (fc FileComments) translate(fmap *sourcemap.FileOffsetMap) FileComments {
	out := make(FileComments, len(fc))
	for span, text := range fc {
		out[cerrors.Span{Start: fmap.Translate(span.Start), End: fmap.Translate(span.End)}] = text
	}
	return out
}
