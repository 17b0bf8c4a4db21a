package skill

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// migratableFields are legacy top-level frontmatter keys that belong in the
// metadata block.
var migratableFields = []string{"author", "repo", "tags", "displayName", "version"}

// EnsureMetadata guarantees that metadata.author, metadata.repo, and
// metadata.tags are populated in the skill's SKILL.md, migrating any legacy
// top-level author/repo/tags/displayName/version fields into the metadata
// block first. When tags is empty and no tags are supplied, tags are derived
// from the skill name. The file is rewritten in place.
//
// Skills without a SKILL.md or without frontmatter are left untouched.
func EnsureMetadata(dir, author, sourceRepo string, tags []string) error {
	path := filepath.Join(dir, FileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	fmText, body, ok := Split(string(raw))
	if !ok {
		return nil
	}

	fm, err := ParseFrontmatter(fmText)
	if err != nil {
		return err
	}

	changed := migrateLegacyFields(fm)

	if fm.Metadata == nil {
		fm.Metadata = &Metadata{}
	}
	m := fm.Metadata

	if m.Author == "" {
		m.Author = author
		changed = true
	}
	if sourceRepo != "" && m.Repo == "" {
		m.Repo = sourceRepo
		changed = true
	}
	if len(m.Tags) == 0 {
		if len(tags) > 0 {
			m.Tags = dedupe(tags)
		} else {
			m.Tags = DeriveTags(NameFromPath(dir))
		}
		changed = true
	}

	if !changed {
		return nil
	}

	content, err := Render(fm, body)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}

// migrateLegacyFields moves legacy top-level fields into the metadata block.
// Returns true if anything moved.
func migrateLegacyFields(fm *Frontmatter) bool {
	if len(fm.Extra) == 0 {
		return false
	}

	changed := false
	for _, field := range migratableFields {
		value, ok := fm.Extra[field]
		if !ok {
			continue
		}
		if fm.Metadata == nil {
			fm.Metadata = &Metadata{}
		}
		m := fm.Metadata
		switch field {
		case "author":
			if s, ok := value.(string); ok && m.Author == "" {
				m.Author = s
			}
		case "repo":
			if s, ok := value.(string); ok && m.Repo == "" {
				m.Repo = s
			}
		case "displayName":
			if s, ok := value.(string); ok && m.DisplayName == "" {
				m.DisplayName = s
			}
		case "version":
			if s, ok := value.(string); ok && m.Version == "" {
				m.Version = s
			}
		case "tags":
			if len(m.Tags) == 0 {
				m.Tags = toStringSlice(value)
			}
		}
		delete(fm.Extra, field)
		changed = true
	}
	return changed
}

// DeriveTags derives default tags from a skill name: up to the first three
// hyphen-separated name parts plus "curated", deduplicated in order.
func DeriveTags(name string) []string {
	parts := strings.Split(name, "-")
	derived := parts
	if len(parts) > 3 {
		derived = parts[:3]
	}
	return dedupe(append(append([]string{}, derived...), "curated"))
}

// dedupe removes duplicates while preserving order.
func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// toStringSlice converts a decoded YAML value into a string slice.
func toStringSlice(v interface{}) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []interface{}:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{vv}
	default:
		return nil
	}
}
