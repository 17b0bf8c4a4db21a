// Package freshness embeds and checks freshness markers in context files.
// A marker records which source files a document describes (as glob
// patterns) and a content hash taken when the document was last reviewed:
//
//	<!-- freshness: pattern="internal/**/*.go" hash=sha256:0123456789abcdef reviewed=2026-01-15 -->
//
// When the hash no longer matches the files on disk, the document is stale.
package freshness

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// HashLength is the number of hex digits kept from the full digest.
const HashLength = 16

// PatternSeparator joins multiple globs inside one marker.
const PatternSeparator = ";"

var markerRe = regexp.MustCompile(`<!-- freshness: pattern="([^"]+)" hash=sha256:([0-9a-f]+) reviewed=(\d{4}-\d{2}-\d{2}) -->`)

// Marker is a parsed freshness marker.
type Marker struct {
	Patterns []string
	Hash     string
	Reviewed string
}

// String renders the marker as an HTML comment.
func (m Marker) String() string {
	return fmt.Sprintf(`<!-- freshness: pattern=%q hash=sha256:%s reviewed=%s -->`,
		strings.Join(m.Patterns, PatternSeparator), m.Hash, m.Reviewed)
}

// Parse extracts the first marker from content. ok is false when no marker
// is present.
func Parse(content string) (Marker, bool) {
	match := markerRe.FindStringSubmatch(content)
	if match == nil {
		return Marker{}, false
	}
	return Marker{
		Patterns: strings.Split(match[1], PatternSeparator),
		Hash:     match[2],
		Reviewed: match[3],
	}, true
}

// ComputeHash hashes the files matched by patterns under root. The digest
// covers the sorted relative paths and each file's content, so renames,
// additions, deletions, and edits all change it.
func ComputeHash(root string, patterns []string) (string, error) {
	paths, err := matchFiles(root, patterns)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	for _, rel := range paths {
		io.WriteString(h, rel)
		h.Write([]byte{0})

		f, err := os.Open(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", rel, err)
		}
		fileHash := sha256.New()
		_, copyErr := io.Copy(fileHash, f)
		f.Close()
		if copyErr != nil {
			return "", fmt.Errorf("failed to hash %s: %w", rel, copyErr)
		}

		h.Write(fileHash.Sum(nil))
	}

	return fmt.Sprintf("%x", h.Sum(nil))[:HashLength], nil
}

// matchFiles expands globs relative to root and returns sorted, deduplicated
// slash-separated relative paths of regular files.
func matchFiles(root string, patterns []string) ([]string, error) {
	rootFS := os.DirFS(root)
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		matches, err := doublestar.Glob(rootFS, pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			info, err := os.Stat(filepath.Join(root, filepath.FromSlash(m)))
			if err != nil || info.IsDir() {
				continue
			}
			seen[m] = true
		}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

// NewMarker computes a marker for patterns under root, stamped today.
func NewMarker(root string, patterns []string) (Marker, error) {
	hash, err := ComputeHash(root, patterns)
	if err != nil {
		return Marker{}, err
	}
	return Marker{
		Patterns: patterns,
		Hash:     hash,
		Reviewed: time.Now().Format("2006-01-02"),
	}, nil
}

// Result is the outcome of checking one document.
type Result struct {
	File     string   `json:"file"`
	Fresh    bool     `json:"fresh"`
	Patterns []string `json:"patterns"`
	Reviewed string   `json:"reviewed"`
	Expected string   `json:"expected_hash"`
	Actual   string   `json:"actual_hash"`
}

// CheckFile checks the marker in a document against the files on disk.
// found is false when the document carries no marker.
func CheckFile(root, file string) (Result, bool, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return Result{}, false, fmt.Errorf("failed to read %s: %w", file, err)
	}

	marker, ok := Parse(string(data))
	if !ok {
		return Result{}, false, nil
	}

	actual, err := ComputeHash(root, marker.Patterns)
	if err != nil {
		return Result{}, true, err
	}

	return Result{
		File:     file,
		Fresh:    actual == marker.Hash,
		Patterns: marker.Patterns,
		Reviewed: marker.Reviewed,
		Expected: marker.Hash,
		Actual:   actual,
	}, true, nil
}

// Mark writes a marker for patterns into a document, replacing an existing
// marker or appending one at the end.
func Mark(root, file string, patterns []string) (Marker, error) {
	marker, err := NewMarker(root, patterns)
	if err != nil {
		return Marker{}, err
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return Marker{}, fmt.Errorf("failed to read %s: %w", file, err)
	}

	content := string(data)
	if markerRe.MatchString(content) {
		content = markerRe.ReplaceAllLiteralString(content, marker.String())
	} else {
		content = strings.TrimRight(content, "\n") + "\n\n" + marker.String() + "\n"
	}

	if err := os.WriteFile(file, []byte(content), 0644); err != nil {
		return Marker{}, fmt.Errorf("failed to write %s: %w", file, err)
	}
	return marker, nil
}

// Refresh recomputes the hash for a document's existing marker and stamps
// today's date.
func Refresh(root, file string) (Marker, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return Marker{}, fmt.Errorf("failed to read %s: %w", file, err)
	}

	existing, ok := Parse(string(data))
	if !ok {
		return Marker{}, fmt.Errorf("%s has no freshness marker", file)
	}
	return Mark(root, file, existing.Patterns)
}

// FindMarked walks root and returns markdown files carrying a marker.
// Hidden directories, node_modules, and .git are skipped.
func FindMarked(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || name == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(name, ".md") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		if markerRe.Match(data) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
