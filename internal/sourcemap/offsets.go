// Package sourcemap records the length-changing edits applied while
// normalizing source files and maps normalized offsets back to the
// original text.
package sourcemap

// TextEdit is the effect of one substitution. Offset is the end of the
// replacement in the text as it stood right after the edit was applied,
// Delta is new length minus old length.
type TextEdit struct {
	Offset int
	Delta  int
}

// FileOffsetMap is the ordered list of edits applied to one file across the
// whole normalization chain.
type FileOffsetMap struct {
	originalLen int
	edits       []TextEdit
}

func NewFileOffsetMap(originalLen int) *FileOffsetMap {
	return &FileOffsetMap{originalLen: originalLen}
}

// InsertEdit appends one edit. Edits must be inserted in application order.
func (m *FileOffsetMap) InsertEdit(offset, delta int) {
	m.edits = append(m.edits, TextEdit{Offset: offset, Delta: delta})
}

// Translate maps an offset in the final text to the original text by
// undoing edits from the last applied to the first.
func (m *FileOffsetMap) Translate(offset int) int {
	if m == nil {
		return offset
	}
	for i := len(m.edits) - 1; i >= 0; i-- {
		edit := m.edits[i]
		if offset >= edit.Offset {
			offset -= edit.Delta
		}
	}
	if offset < 0 {
		return 0
	}
	if offset > m.originalLen {
		return m.originalLen
	}
	return offset
}

func (m *FileOffsetMap) OriginalLen() int {
	return m.originalLen
}

// Edits returns a copy of the recorded edits in application order.
func (m *FileOffsetMap) Edits() []TextEdit {
	out := make([]TextEdit, len(m.edits))
	copy(out, m.edits)
	return out
}

func (m *FileOffsetMap) Len() int {
	return len(m.edits)
}

// Clone returns an independent copy, used when a partial map is handed to an
// error before normalization of the file goes on.
func (m *FileOffsetMap) Clone() *FileOffsetMap {
	return &FileOffsetMap{originalLen: m.originalLen, edits: m.Edits()}
}
