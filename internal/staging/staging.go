// Package staging manages the local staging area where imported skills wait
// for review before shipping. Staged skills live under
// <staging>/<author>/<name>.
package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/malarbase/skillctl/internal/skill"
)

// Area is a staging directory on disk.
type Area struct {
	Root string
}

// New returns an Area rooted at dir, creating it if needed.
func New(dir string) (*Area, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	return &Area{Root: dir}, nil
}

// Entry is one staged skill.
type Entry struct {
	Author string
	Name   string
	Dir    string
}

// RelPath returns the repo-relative destination path, skills/<author>/<name>.
func (e Entry) RelPath() string {
	return filepath.ToSlash(filepath.Join("skills", e.Author, e.Name))
}

// Path returns the staging directory for an author/name pair.
func (a *Area) Path(author, name string) string {
	return filepath.Join(a.Root, author, name)
}

// Stage copies a skill directory into the staging area, replacing any
// previously staged copy.
func (a *Area) Stage(srcDir, author, name string) (Entry, error) {
	if author == "" || name == "" {
		return Entry{}, fmt.Errorf("author and name are required to stage a skill")
	}

	dest := a.Path(author, name)
	if err := skill.ReplaceDir(srcDir, dest); err != nil {
		return Entry{}, fmt.Errorf("failed to stage %s: %w", name, err)
	}
	return Entry{Author: author, Name: name, Dir: dest}, nil
}

// Get returns the staged entry for name, searching all authors. When author
// is non-empty only that author is considered.
func (a *Area) Get(author, name string) (Entry, bool) {
	entries, err := a.List()
	if err != nil {
		return Entry{}, false
	}
	for _, e := range entries {
		if e.Name == name && (author == "" || e.Author == author) {
			return e, true
		}
	}
	return Entry{}, false
}

// List returns all staged skills sorted by author then name.
func (a *Area) List() ([]Entry, error) {
	authors, err := os.ReadDir(a.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read staging directory: %w", err)
	}

	var entries []Entry
	for _, authorDir := range authors {
		if !authorDir.IsDir() {
			continue
		}
		skills, err := os.ReadDir(filepath.Join(a.Root, authorDir.Name()))
		if err != nil {
			continue
		}
		for _, skillDir := range skills {
			if !skillDir.IsDir() {
				continue
			}
			entries = append(entries, Entry{
				Author: authorDir.Name(),
				Name:   skillDir.Name(),
				Dir:    filepath.Join(a.Root, authorDir.Name(), skillDir.Name()),
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Author != entries[j].Author {
			return entries[i].Author < entries[j].Author
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// Remove deletes a staged skill and prunes the author directory when it
// becomes empty.
func (a *Area) Remove(author, name string) error {
	dir := a.Path(author, name)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("skill %s/%s is not staged", author, name)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove staged skill: %w", err)
	}

	authorDir := filepath.Join(a.Root, author)
	if remaining, err := os.ReadDir(authorDir); err == nil && len(remaining) == 0 {
		os.Remove(authorDir)
	}
	return nil
}

// Clear removes all staged skills.
func (a *Area) Clear() error {
	entries, err := a.List()
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := a.Remove(e.Author, e.Name); err != nil {
			return err
		}
	}
	return nil
}
