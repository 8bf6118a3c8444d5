// Package normalize rewrites source files into the canonical form the
// toolchain parses, recording every length-changing edit so diagnostics can
// be mapped back to the files as written.
package normalize

import (
	"fmt"

	"github.com/dfinance/move-tools/internal/address"
	"github.com/dfinance/move-tools/internal/dialects"
	cerrors "github.com/dfinance/move-tools/internal/errors"
	"github.com/dfinance/move-tools/internal/file"
	"github.com/dfinance/move-tools/internal/sourcemap"
)

// Normalizer holds everything that is fixed for one invocation.
type Normalizer struct {
	Dialect dialects.Dialect
	Sender  address.AccountAddress
	// StdlibDir holds files written in canonical form already; address
	// rewriting is skipped for them.
	StdlibDir string
}

// Normalized is one file after normalization.
type Normalized struct {
	// File carries the original path and the normalized text.
	File     file.File
	Offsets  *sourcemap.FileOffsetMap
	Comments FileComments
}

// NormalizeFile runs the passes in order: line endings, comment stripping,
// sender placeholders, dialect addresses. A failure carries the offsets
// recorded so far for this file only.
func (n *Normalizer) NormalizeFile(f file.File) (Normalized, *sourcemap.ExecError) {
	fmap := sourcemap.NewFileOffsetMap(len(f.Content))

	text := normalizeLineEndings(f.Content, fmap)

	text, docs, errs := stripComments(f.Path, text)
	if len(errs) > 0 {
		log.Debugf("%s: %d comment errors", f.Path, len(errs))
		return Normalized{}, sourcemap.NewExecError(errs, sourcemap.WithFileMap(f.Path, fmap.Clone()))
	}

	text = replaceSender(text, n.Sender.Literal, fmap)

	if file.Within(f.Path, n.StdlibDir) {
		log.Debugf("%s: inside stdlib, skipping address rewrite", f.Path)
	} else {
		var err error
		text, err = n.Dialect.ReplaceAddresses(text, fmap)
		if err != nil {
			return Normalized{}, sourcemap.NewExecError(formatErrors(f.Path, n.Dialect.Name(), err),
				sourcemap.WithFileMap(f.Path, fmap.Clone()))
		}
	}

	log.Debugf("%s: normalized with %d edits", f.Path, fmap.Len())
	return Normalized{
		File:     f.WithContent(text),
		Offsets:  fmap,
		Comments: docs.translate(fmap),
	}, nil
}

// formatErrors reports the first malformed literal of the file; the rest
// are counted in a note.
func formatErrors(path, dialect string, err error) cerrors.List {
	malformed, ok := dialects.AsMalformed(err)
	if !ok || len(malformed) == 0 {
		loc := cerrors.Location{File: path}
		return cerrors.List{cerrors.NewError(cerrors.FormatError, cerrors.ErrorMalformedAddress, loc, err.Error()).Build()}
	}
	first := malformed[0]
	compErr := cerrors.MalformedAddress(cerrors.Location{File: path, Span: first.Span}, first.Literal, dialect, first.Cause)
	if len(malformed) > 1 {
		compErr.Notes = append(compErr.Notes, fmt.Sprintf("%d more malformed addresses in this file", len(malformed)-1))
	}
	return cerrors.List{compErr}
}
