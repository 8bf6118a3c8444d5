// Package file loads Move source files from disk.
package file

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/tliron/commonlog"
)

// Extension is the suffix of Move source files.
const Extension = ".move"

var log = commonlog.GetLogger("movec.file")

// File is a source file. Path is its identity for the whole invocation.
type File struct {
	Path    string
	Content string
}

func New(path, content string) File {
	return File{Path: path, Content: content}
}

// WithContent returns a file with the same identity and new content.
func (f File) WithContent(content string) File {
	return File{Path: f.Path, Content: content}
}

// Load reads one file.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	return File{Path: path, Content: string(data)}, nil
}

// LoadAll loads every path in order. A directory contributes every Move
// file below it. A path given twice, directly or through a directory, is
// loaded once.
func LoadAll(paths []string) ([]File, error) {
	seen := mapset.NewThreadUnsafeSet[string]()
	var files []File
	add := func(f File) {
		key := filepath.Clean(f.Path)
		if seen.Contains(key) {
			return
		}
		seen.Add(key)
		files = append(files, f)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("cannot open %q: %w", path, err)
		}
		if !info.IsDir() {
			f, err := Load(path)
			if err != nil {
				return nil, err
			}
			add(f)
			continue
		}
		for _, f := range ReadDir(path) {
			add(f)
		}
	}
	return files, nil
}

// ReadDir loads every Move file below dir. Files that cannot be read are
// skipped with a warning.
func ReadDir(dir string) []File {
	var files []File
	for _, path := range List(dir) {
		f, err := Load(path)
		if err != nil {
			log.Warningf("cannot read file %s, skipping: %s", path, err.Error())
			continue
		}
		files = append(files, f)
	}
	return files
}

// List returns the Move files below dir in lexical order, skipping hidden
// files and directories.
func List(dir string) []string {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warningf("cannot walk %s: %s", path, err.Error())
			return nil
		}
		hidden := strings.HasPrefix(d.Name(), ".") && path != dir
		if d.IsDir() {
			if hidden {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden {
			return nil
		}
		if filepath.Ext(path) == Extension {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		log.Warningf("cannot walk %s: %s", dir, err.Error())
	}
	return paths
}

// Within reports whether path lies inside dir.
func Within(path, dir string) bool {
	if dir == "" {
		return false
	}
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
