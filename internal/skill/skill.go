// Package skill provides the skill package model: SKILL.md frontmatter
// parsing and rendering, metadata normalization, and validation.
//
// A skill is a directory containing a SKILL.md file with YAML frontmatter
// describing the skill, plus optional scripts/ and references/
// subdirectories. Identity is the (author, name) pair, where author is the
// namespace directory the skill is published under.
package skill

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the canonical skill definition file.
const FileName = "SKILL.md"

// Skill represents a loaded skill package.
type Skill struct {
	Name        string       // Unique name from frontmatter
	Description string       // Brief description for model decision-making
	Directory   string       // Full path to the skill directory
	Content     string       // Body of SKILL.md (frontmatter stripped)
	Meta        *Frontmatter // Parsed frontmatter
}

// Frontmatter models the YAML frontmatter of a SKILL.md file.
//
// Legacy skills carry author/repo/tags at the top level; those land in
// Extra and are migrated into the metadata block by EnsureMetadata.
type Frontmatter struct {
	Name          string                 `yaml:"name,omitempty"`
	Description   string                 `yaml:"description,omitempty"`
	License       string                 `yaml:"license,omitempty"`
	AllowedTools  interface{}            `yaml:"allowed-tools,omitempty"`
	Compatibility interface{}            `yaml:"compatibility,omitempty"`
	Metadata      *Metadata              `yaml:"metadata,omitempty"`
	Extra         map[string]interface{} `yaml:",inline"`
}

// Metadata is the curated metadata block inside the frontmatter.
type Metadata struct {
	Author      string                 `yaml:"author,omitempty"`
	Repo        string                 `yaml:"repo,omitempty"`
	DisplayName string                 `yaml:"displayName,omitempty"`
	Version     string                 `yaml:"version,omitempty"`
	Tags        []string               `yaml:"tags,omitempty"`
	Extra       map[string]interface{} `yaml:",inline"`
}

// Split separates SKILL.md content into frontmatter text and body.
// Returns ok=false if the content has no frontmatter block.
func Split(content string) (fm string, body string, ok bool) {
	if !strings.HasPrefix(content, "---") {
		return "", content, false
	}

	lines := strings.Split(content, "\n")
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end == -1 {
		return "", content, false
	}

	fm = strings.Join(lines[1:end], "\n")
	body = strings.Join(lines[end+1:], "\n")
	return fm, body, true
}

// ParseFrontmatter parses the YAML frontmatter text into a Frontmatter.
func ParseFrontmatter(text string) (*Frontmatter, error) {
	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(text), &fm); err != nil {
		return nil, fmt.Errorf("invalid YAML in frontmatter: %w", err)
	}
	return &fm, nil
}

// Render renders the frontmatter and body back into SKILL.md content.
func Render(fm *Frontmatter, body string) (string, error) {
	out, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("failed to render frontmatter: %w", err)
	}
	return "---\n" + strings.TrimRight(string(out), "\n") + "\n---\n" + body, nil
}

// Load reads and parses the skill at the given directory.
func Load(dir string) (*Skill, error) {
	path := filepath.Join(dir, FileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	fmText, body, ok := Split(string(raw))
	if !ok {
		return nil, fmt.Errorf("%s has no YAML frontmatter", path)
	}

	fm, err := ParseFrontmatter(fmText)
	if err != nil {
		return nil, err
	}

	return &Skill{
		Name:        fm.Name,
		Description: fm.Description,
		Directory:   dir,
		Content:     strings.TrimLeft(body, "\n"),
		Meta:        fm,
	}, nil
}

// Flat returns a flattened view of the frontmatter for metadata filtering:
// top-level fields plus metadata.* fields under their original keys.
func (f *Frontmatter) Flat() map[string]interface{} {
	flat := make(map[string]interface{})
	if f.Name != "" {
		flat["name"] = f.Name
	}
	if f.Description != "" {
		flat["description"] = f.Description
	}
	if f.License != "" {
		flat["license"] = f.License
	}
	for k, v := range f.Extra {
		flat[k] = v
	}
	if m := f.Metadata; m != nil {
		if m.Author != "" {
			flat["author"] = m.Author
		}
		if m.Repo != "" {
			flat["repo"] = m.Repo
		}
		if m.DisplayName != "" {
			flat["displayName"] = m.DisplayName
		}
		if m.Version != "" {
			flat["version"] = m.Version
		}
		if m.Tags != nil {
			flat["tags"] = m.Tags
		}
		for k, v := range m.Extra {
			flat[k] = v
		}
	}
	return flat
}

// NameFromPath derives a skill name from a filesystem path.
func NameFromPath(path string) string {
	return filepath.Base(strings.TrimRight(path, "/"))
}
