package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWithContentKeepsIdentity(t *testing.T) {
	f := New("a.move", "one")
	g := f.WithContent("two")
	assert.Equal(t, "a.move", g.Path)
	assert.Equal(t, "two", g.Content)
	assert.Equal(t, "one", f.Content)
}

func TestListSkipsHiddenAndForeignFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.move"), "b")
	writeFile(t, filepath.Join(dir, "a.move"), "a")
	writeFile(t, filepath.Join(dir, ".hidden.move"), "h")
	writeFile(t, filepath.Join(dir, ".git", "x.move"), "x")
	writeFile(t, filepath.Join(dir, "notes.txt"), "n")
	writeFile(t, filepath.Join(dir, "nested", "c.move"), "c")

	paths := List(dir)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.move"),
		filepath.Join(dir, "b.move"),
		filepath.Join(dir, "nested", "c.move"),
	}, paths)
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	single := filepath.Join(dir, "single.move")
	writeFile(t, single, "script {}")
	writeFile(t, filepath.Join(dir, "lib", "x.move"), "module X {}")

	files, err := LoadAll([]string{single, dir, filepath.Join(dir, "lib")})
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{single, filepath.Join(dir, "lib", "x.move")}, paths)
	assert.Equal(t, "script {}", files[0].Content)
}

func TestLoadAllMissingPath(t *testing.T) {
	_, err := LoadAll([]string{filepath.Join(t.TempDir(), "nope.move")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot open")
}

func TestWithin(t *testing.T) {
	assert.True(t, Within("/std/lib/a.move", "/std"))
	assert.True(t, Within("std/a.move", "std/"))
	assert.False(t, Within("/stdx/a.move", "/std"))
	assert.False(t, Within("/other/a.move", "/std"))
	assert.False(t, Within("/std/a.move", ""))
}
