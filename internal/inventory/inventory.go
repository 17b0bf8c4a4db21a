// Package inventory scans a curated repository's skills/ tree and maintains
// the "Skills Inventory" section of its README.
package inventory

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/malarbase/skillctl/internal/skill"
)

// SectionHeading marks the README section this package owns.
const SectionHeading = "## Skills Inventory"

// Item is one skill in the inventory.
type Item struct {
	Author      string   `json:"author"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
	Path        string   `json:"path"`
}

// Scan walks repoRoot/skills/<author>/<name> and loads each skill's
// frontmatter. Directories without a readable SKILL.md are skipped.
func Scan(repoRoot string) ([]Item, error) {
	skillsDir := filepath.Join(repoRoot, "skills")
	authors, err := os.ReadDir(skillsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", skillsDir, err)
	}

	var items []Item
	for _, authorDir := range authors {
		if !authorDir.IsDir() {
			continue
		}
		skills, err := os.ReadDir(filepath.Join(skillsDir, authorDir.Name()))
		if err != nil {
			continue
		}
		for _, skillDir := range skills {
			if !skillDir.IsDir() {
				continue
			}
			dir := filepath.Join(skillsDir, authorDir.Name(), skillDir.Name())
			s, err := skill.Load(dir)
			if err != nil {
				continue
			}

			item := Item{
				Author:      authorDir.Name(),
				Name:        skillDir.Name(),
				Description: FirstSentence(s.Description),
				Path:        filepath.ToSlash(filepath.Join("skills", authorDir.Name(), skillDir.Name())),
			}
			if s.Meta != nil && s.Meta.Metadata != nil {
				item.Tags = s.Meta.Metadata.Tags
			}
			items = append(items, item)
		}
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Author != items[j].Author {
			return items[i].Author < items[j].Author
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

// FirstSentence returns the first sentence of a description, capped at the
// first period followed by whitespace or end of string.
func FirstSentence(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	for i := 0; i < len(s); i++ {
		if s[i] != '.' {
			continue
		}
		if i == len(s)-1 {
			return s[:i+1]
		}
		if s[i+1] == ' ' || s[i+1] == '\t' {
			return s[:i+1]
		}
	}
	return s
}

// Render produces the inventory section as markdown: a heading followed by
// per-author subsections with linked bullet items.
func Render(items []Item) string {
	var b strings.Builder
	b.WriteString(SectionHeading + "\n")

	if len(items) == 0 {
		b.WriteString("\nNo skills curated yet.\n")
		return b.String()
	}

	current := ""
	for _, item := range items {
		if item.Author != current {
			current = item.Author
			fmt.Fprintf(&b, "\n### %s\n\n", current)
		}
		fmt.Fprintf(&b, "- [%s](%s/) - %s", item.Name, item.Path, item.Description)
		if len(item.Tags) > 0 {
			fmt.Fprintf(&b, " `%s`", strings.Join(item.Tags, "` `"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

var sectionRe = regexp.MustCompile(`(?s)## Skills Inventory\n.*?(\n## |\z)`)

// UpdateReadme replaces the inventory section of repoRoot/README.md with a
// freshly rendered one, appending the section when absent. It reports
// whether the file changed.
func UpdateReadme(repoRoot string, items []Item) (bool, error) {
	readmePath := filepath.Join(repoRoot, "README.md")
	section := Render(items)

	data, err := os.ReadFile(readmePath)
	if err != nil {
		if os.IsNotExist(err) {
			content := "# Skills\n\n" + section
			return true, os.WriteFile(readmePath, []byte(content), 0644)
		}
		return false, fmt.Errorf("failed to read README: %w", err)
	}

	original := string(data)
	var updated string
	if sectionRe.MatchString(original) {
		updated = sectionRe.ReplaceAllString(original, section+"$1")
	} else {
		updated = strings.TrimRight(original, "\n") + "\n\n" + section
	}

	if updated == original {
		return false, nil
	}
	return true, os.WriteFile(readmePath, []byte(updated), 0644)
}
