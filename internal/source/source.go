// Package source resolves and fetches skill sources: GitHub URLs,
// owner/repo:path shorthands, and local paths.
package source

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Type discriminates source kinds.
type Type string

const (
	// TypeLocal is a skill directory on the local filesystem.
	TypeLocal Type = "local"
	// TypeGitHub is a skill hosted in a GitHub repository.
	TypeGitHub Type = "github"
)

// DefaultRef is the git ref used when a source does not specify one.
const DefaultRef = "main"

// Source is a parsed skill source.
type Source struct {
	Type Type

	// LocalPath is set for local sources.
	LocalPath string

	// GitHub coordinates, set for github sources.
	Owner string
	Repo  string
	Ref   string
	Path  string
}

// RepoSlug returns "owner/repo" for GitHub sources.
func (s *Source) RepoSlug() string {
	return s.Owner + "/" + s.Repo
}

// CloneURL returns the HTTPS clone URL for GitHub sources.
func (s *Source) CloneURL() string {
	return fmt.Sprintf("https://github.com/%s/%s.git", s.Owner, s.Repo)
}

// SSHURL returns the SSH clone URL for GitHub sources.
func (s *Source) SSHURL() string {
	return fmt.Sprintf("git@github.com:%s/%s.git", s.Owner, s.Repo)
}

// String returns a canonical source string that Parse accepts: the local
// path, the owner/repo[:path] shorthand, or a full URL when a non-default
// ref is set.
func (s *Source) String() string {
	switch {
	case s.Type == TypeLocal:
		return s.LocalPath
	case s.Ref != "" && s.Ref != DefaultRef:
		u := fmt.Sprintf("https://github.com/%s/%s/tree/%s", s.Owner, s.Repo, s.Ref)
		if s.Path != "" {
			u += "/" + s.Path
		}
		return u
	case s.Path == "":
		return s.RepoSlug()
	default:
		return s.RepoSlug() + ":" + s.Path
	}
}

// SkillName returns the skill directory name a source refers to: the last
// path segment, or the repository name when the source is a whole repo.
func (s *Source) SkillName() string {
	if s.Type == TypeLocal {
		return filepath.Base(strings.TrimRight(s.LocalPath, "/"))
	}
	if s.Path != "" {
		return filepath.Base(strings.TrimRight(s.Path, "/"))
	}
	return s.Repo
}

// Parse parses a source string into a Source. Accepted forms:
//   - a local path (existing, or starting with ./, /, or ~/)
//   - a GitHub URL: https://github.com/owner/repo[/tree/ref/path...]
//   - the shorthand owner/repo:path/to/skill
func Parse(raw string) (*Source, error) {
	// Local path
	if strings.HasPrefix(raw, "./") || strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "~/") {
		return &Source{Type: TypeLocal, LocalPath: expandHome(raw)}, nil
	}
	if _, err := os.Stat(raw); err == nil {
		return &Source{Type: TypeLocal, LocalPath: raw}, nil
	}

	// GitHub URL
	if strings.HasPrefix(raw, "https://github.com/") {
		return parseGitHubURL(raw)
	}

	// owner/repo:path shorthand
	if idx := strings.Index(raw, ":"); idx > 0 && strings.Contains(raw[:idx], "/") {
		repoPart, path := raw[:idx], raw[idx+1:]
		parts := strings.Split(repoPart, "/")
		if len(parts) == 2 {
			return &Source{
				Type:  TypeGitHub,
				Owner: parts[0],
				Repo:  parts[1],
				Ref:   DefaultRef,
				Path:  path,
			}, nil
		}
	}

	// Bare owner/repo slug
	if parts := strings.Split(raw, "/"); len(parts) == 2 &&
		parts[0] != "" && parts[1] != "" && !strings.ContainsAny(raw, " \t:") {
		return &Source{
			Type:  TypeGitHub,
			Owner: parts[0],
			Repo:  parts[1],
			Ref:   DefaultRef,
		}, nil
	}

	return nil, fmt.Errorf("cannot parse source %q: expected a GitHub URL, owner/repo:path, or local path", raw)
}

// ParseGitHubURL parses a full GitHub URL into a Source.
// URLs may embed a ref and path via /tree/<ref>/<path> or /blob/<ref>/<path>.
func ParseGitHubURL(raw string) (*Source, error) {
	return parseGitHubURL(raw)
}

func parseGitHubURL(raw string) (*Source, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub URL %q: %w", raw, err)
	}
	if u.Host != "github.com" {
		return nil, fmt.Errorf("only github.com URLs are supported, got %q", u.Host)
	}

	var parts []string
	for _, p := range strings.Split(u.Path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid GitHub URL: %s", raw)
	}

	src := &Source{
		Type:  TypeGitHub,
		Owner: parts[0],
		Repo:  strings.TrimSuffix(parts[1], ".git"),
		Ref:   DefaultRef,
	}

	if len(parts) > 2 {
		if parts[2] == "tree" || parts[2] == "blob" {
			if len(parts) > 3 {
				src.Ref = parts[3]
			}
			src.Path = strings.Join(parts[4:], "/")
		} else {
			src.Path = strings.Join(parts[2:], "/")
		}
	}

	return src, nil
}

// ValidateRelativePath ensures a repo-relative skill path cannot escape the
// repository root.
func ValidateRelativePath(path string) error {
	if filepath.IsAbs(path) {
		return fmt.Errorf("skill path must be relative, got %q", path)
	}
	clean := filepath.Clean(path)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("skill path %q escapes the repository", path)
	}
	return nil
}

// ValidateSkillName ensures a name is a single safe path segment.
func ValidateSkillName(name string) error {
	if name == "" || strings.ContainsRune(name, filepath.Separator) || strings.ContainsRune(name, '/') {
		return fmt.Errorf("skill name must be a single path segment, got %q", name)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("invalid skill name %q", name)
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
