package sourcemap

import (
	"sort"
	"strings"

	cerrors "github.com/dfinance/move-tools/internal/errors"
)

// ProjectOffsetMap holds one FileOffsetMap per file that reached
// normalization. It may be partial when normalization stopped early.
type ProjectOffsetMap struct {
	files map[string]*FileOffsetMap
}

func NewProjectOffsetMap() *ProjectOffsetMap {
	return &ProjectOffsetMap{files: make(map[string]*FileOffsetMap)}
}

// WithFileMap builds a single-entry map, used when a file fails before the
// rest of the project is processed.
func WithFileMap(path string, fmap *FileOffsetMap) *ProjectOffsetMap {
	p := NewProjectOffsetMap()
	p.Insert(path, fmap)
	return p
}

// Insert adds or overwrites the entry for path.
func (p *ProjectOffsetMap) Insert(path string, fmap *FileOffsetMap) {
	p.files[path] = fmap
}

func (p *ProjectOffsetMap) Get(path string) (*FileOffsetMap, bool) {
	if p == nil {
		return nil, false
	}
	fmap, ok := p.files[path]
	return fmap, ok
}

func (p *ProjectOffsetMap) Len() int {
	if p == nil {
		return 0
	}
	return len(p.files)
}

// Paths returns the files with an entry, sorted.
func (p *ProjectOffsetMap) Paths() []string {
	if p == nil {
		return nil
	}
	paths := make([]string, 0, len(p.files))
	for path := range p.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Merge inserts every entry of other, overwriting existing ones.
func (p *ProjectOffsetMap) Merge(other *ProjectOffsetMap) {
	if other == nil {
		return
	}
	for path, fmap := range other.files {
		p.files[path] = fmap
	}
}

// TranslateError rewrites every part's span into original-file
// coordinates. A part whose file has no entry keeps its span and is
// flagged Unmapped.
func (p *ProjectOffsetMap) TranslateError(err cerrors.CompilerError) cerrors.CompilerError {
	parts := make([]cerrors.ErrorPart, len(err.Parts))
	for i, part := range err.Parts {
		fmap, ok := p.Get(part.Location.File)
		if !ok {
			log.Warningf("no offset map for %s, leaving span %d-%d unmapped",
				part.Location.File, part.Location.Span.Start, part.Location.Span.End)
			part.Unmapped = true
			parts[i] = part
			continue
		}
		part.Location.Span = cerrors.Span{
			Start: fmap.Translate(part.Location.Span.Start),
			End:   fmap.Translate(part.Location.Span.End),
		}
		parts[i] = part
	}
	err.Parts = parts
	return err
}

// ExecError pairs errors that are still in normalized coordinates with the
// offsets needed to translate them. It only ever leaves the front-end
// through Translate.
type ExecError struct {
	Errors  cerrors.List
	Offsets *ProjectOffsetMap
}

func NewExecError(errs cerrors.List, offsets *ProjectOffsetMap) *ExecError {
	if offsets == nil {
		offsets = NewProjectOffsetMap()
	}
	return &ExecError{Errors: errs, Offsets: offsets}
}

func (e *ExecError) Error() string {
	var b strings.Builder
	b.WriteString("untranslated: ")
	b.WriteString(e.Errors.Error())
	return b.String()
}

// Extend appends the errors of other and merges its offsets.
func (e *ExecError) Extend(other *ExecError) {
	if other == nil {
		return
	}
	e.Errors = append(e.Errors, other.Errors...)
	e.Offsets.Merge(other.Offsets)
}

func (e *ExecError) Empty() bool {
	return e == nil || len(e.Errors) == 0
}

// Translate maps every error into original-file coordinates.
func (e *ExecError) Translate() cerrors.List {
	out := make(cerrors.List, len(e.Errors))
	for i, err := range e.Errors {
		out[i] = e.Offsets.TranslateError(err)
	}
	return out
}
