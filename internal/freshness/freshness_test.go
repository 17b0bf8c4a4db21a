package freshness

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestMarkerRoundTrip(t *testing.T) {
	m := Marker{
		Patterns: []string{"internal/**/*.go", "cmd/**/*.go"},
		Hash:     "0123456789abcdef",
		Reviewed: "2026-01-15",
	}

	parsed, ok := Parse("Intro text.\n\n" + m.String() + "\n")
	require.True(t, ok)
	assert.Equal(t, m, parsed)
}

func TestParseNoMarker(t *testing.T) {
	_, ok := Parse("just a document\n")
	assert.False(t, ok)
}

func TestComputeHashStable(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.go", "package a\n")
	writeFile(t, root, "src/b.go", "package b\n")

	h1, err := ComputeHash(root, []string{"src/**/*.go"})
	require.NoError(t, err)
	assert.Len(t, h1, HashLength)

	h2, err := ComputeHash(root, []string{"src/**/*.go"})
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestComputeHashChangesOnEdit(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.go", "package a\n")

	before, err := ComputeHash(root, []string{"src/*.go"})
	require.NoError(t, err)

	writeFile(t, root, "src/a.go", "package a // changed\n")
	after, err := ComputeHash(root, []string{"src/*.go"})
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestComputeHashChangesOnNewFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.go", "package a\n")

	before, err := ComputeHash(root, []string{"src/*.go"})
	require.NoError(t, err)

	writeFile(t, root, "src/b.go", "package b\n")
	after, err := ComputeHash(root, []string{"src/*.go"})
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestComputeHashDeduplicatesPatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.go", "package a\n")

	single, err := ComputeHash(root, []string{"src/*.go"})
	require.NoError(t, err)

	overlapping, err := ComputeHash(root, []string{"src/*.go", "src/a.go"})
	require.NoError(t, err)
	assert.Equal(t, single, overlapping)
}

func TestMarkAndCheck(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.go", "package a\n")
	doc := filepath.Join(root, "docs.md")
	require.NoError(t, os.WriteFile(doc, []byte("# Docs\n\nContent.\n"), 0644))

	marker, err := Mark(root, doc, []string{"src/*.go"})
	require.NoError(t, err)
	assert.Equal(t, time.Now().Format("2006-01-02"), marker.Reviewed)

	result, found, err := CheckFile(root, doc)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, result.Fresh)

	writeFile(t, root, "src/a.go", "package a // edited\n")
	result, found, err = CheckFile(root, doc)
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, result.Fresh)
	assert.NotEqual(t, result.Expected, result.Actual)
}

func TestMarkReplacesExistingMarker(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.go", "package a\n")
	doc := filepath.Join(root, "docs.md")
	require.NoError(t, os.WriteFile(doc, []byte("# Docs\n"), 0644))

	_, err := Mark(root, doc, []string{"src/*.go"})
	require.NoError(t, err)
	_, err = Mark(root, doc, []string{"src/*.go"})
	require.NoError(t, err)

	data, err := os.ReadFile(doc)
	require.NoError(t, err)
	assert.Equal(t, 1, len(markerRe.FindAllString(string(data), -1)))
}

func TestMarkPatternWithDollar(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a$1.go", "package a\n")
	doc := filepath.Join(root, "docs.md")
	require.NoError(t, os.WriteFile(doc, []byte("# Docs\n"), 0644))

	patterns := []string{"src/a$1.go"}
	_, err := Mark(root, doc, patterns)
	require.NoError(t, err)
	_, err = Mark(root, doc, patterns)
	require.NoError(t, err)

	data, err := os.ReadFile(doc)
	require.NoError(t, err)
	marker, ok := Parse(string(data))
	require.True(t, ok)
	assert.Equal(t, patterns, marker.Patterns)

	result, found, err := CheckFile(root, doc)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, result.Fresh)
}

func TestRefresh(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.go", "package a\n")
	doc := filepath.Join(root, "docs.md")
	require.NoError(t, os.WriteFile(doc, []byte("# Docs\n"), 0644))

	_, err := Mark(root, doc, []string{"src/*.go"})
	require.NoError(t, err)

	writeFile(t, root, "src/a.go", "package a // edited\n")
	marker, err := Refresh(root, doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/*.go"}, marker.Patterns)

	result, found, err := CheckFile(root, doc)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, result.Fresh)
}

func TestRefreshWithoutMarker(t *testing.T) {
	root := t.TempDir()
	doc := filepath.Join(root, "docs.md")
	require.NoError(t, os.WriteFile(doc, []byte("# Docs\n"), 0644))

	_, err := Refresh(root, doc)
	assert.ErrorContains(t, err, "no freshness marker")
}

func TestCheckFileWithoutMarker(t *testing.T) {
	root := t.TempDir()
	doc := filepath.Join(root, "docs.md")
	require.NoError(t, os.WriteFile(doc, []byte("# Docs\n"), 0644))

	_, found, err := CheckFile(root, doc)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFindMarked(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.go", "package a\n")

	marked := filepath.Join(root, "marked.md")
	require.NoError(t, os.WriteFile(marked, []byte("# M\n"), 0644))
	_, err := Mark(root, marked, []string{"src/*.go"})
	require.NoError(t, err)

	writeFile(t, root, "plain.md", "# P\n")
	writeFile(t, root, "node_modules/dep.md", "ignored")
	writeFile(t, root, ".git/doc.md", "ignored")

	files, err := FindMarked(root)
	require.NoError(t, err)
	assert.Equal(t, []string{marked}, files)
}
