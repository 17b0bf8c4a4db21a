package skill

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// MaxNameLength is the maximum skill name length.
const MaxNameLength = 64

// MaxDescriptionLength is the maximum description length.
const MaxDescriptionLength = 1024

// RecommendedMaxLines is the recommended SKILL.md size; larger files get a
// warning but still validate.
const RecommendedMaxLines = 500

// allowedProperties are the top-level frontmatter keys a skill may carry.
var allowedProperties = map[string]bool{
	"name":          true,
	"description":   true,
	"license":       true,
	"allowed-tools": true,
	"metadata":      true,
	"compatibility": true,
}

// nameRegex validates skill names (kebab-case).
var nameRegex = regexp.MustCompile(`^[a-z0-9-]+$`)

// sensitivePatterns are filename substrings flagged by the sensitive scan.
var sensitivePatterns = []string{".env", "credentials", ".key", ".pem", ".p12", ".secret"}

// ValidateName checks that a name is a valid kebab-case skill name.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("skill name cannot be empty")
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("name %q must be kebab-case (lowercase letters, digits, hyphens)", name)
	}
	if strings.HasPrefix(name, "-") || strings.HasSuffix(name, "-") || strings.Contains(name, "--") {
		return fmt.Errorf("name %q cannot start/end with hyphen or contain consecutive hyphens", name)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("name too long (%d chars, max %d)", len(name), MaxNameLength)
	}
	return nil
}

// ValidateDir runs the full validation suite against a skill directory:
// spec-level frontmatter checks, repository conventions (name must match
// the directory), and the sensitive-file scan. Returns nil when the skill
// is valid, otherwise an aggregated error listing every problem found.
func ValidateDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return multierror.Append(nil, fmt.Errorf("not a directory: %s", dir))
	}

	var result *multierror.Error

	skillMD := filepath.Join(dir, FileName)
	raw, err := os.ReadFile(skillMD)
	if err != nil {
		return multierror.Append(result, fmt.Errorf("%s not found", FileName))
	}

	fmText, _, ok := Split(string(raw))
	if !ok {
		return multierror.Append(result, fmt.Errorf("no YAML frontmatter found"))
	}

	fm, err := ParseFrontmatter(fmText)
	if err != nil {
		return multierror.Append(result, err)
	}

	// Unexpected top-level keys
	var unexpected []string
	for k := range fm.Extra {
		if !allowedProperties[k] {
			unexpected = append(unexpected, k)
		}
	}
	if len(unexpected) > 0 {
		sort.Strings(unexpected)
		result = multierror.Append(result, fmt.Errorf(
			"unexpected frontmatter key(s): %s", strings.Join(unexpected, ", ")))
	}

	// name
	if fm.Name == "" {
		result = multierror.Append(result, fmt.Errorf("missing 'name' in frontmatter"))
	} else {
		if err := ValidateName(fm.Name); err != nil {
			result = multierror.Append(result, err)
		}
		dirName := NameFromPath(dir)
		if fm.Name != dirName {
			result = multierror.Append(result, fmt.Errorf(
				"name %q does not match directory name %q", fm.Name, dirName))
		}
	}

	// description
	if fm.Description == "" {
		result = multierror.Append(result, fmt.Errorf("missing 'description' in frontmatter"))
	} else {
		if strings.ContainsAny(fm.Description, "<>") {
			result = multierror.Append(result, fmt.Errorf("description cannot contain angle brackets"))
		}
		if len(fm.Description) > MaxDescriptionLength {
			result = multierror.Append(result, fmt.Errorf(
				"description too long (%d chars, max %d)", len(fm.Description), MaxDescriptionLength))
		}
	}

	// metadata block shape
	if m := fm.Metadata; m != nil {
		if m.Author != "" && strings.TrimSpace(m.Author) == "" {
			result = multierror.Append(result, fmt.Errorf("metadata.author must be a non-empty string"))
		}
		for _, tag := range m.Tags {
			if strings.TrimSpace(tag) == "" {
				result = multierror.Append(result, fmt.Errorf("metadata.tags must not contain empty entries"))
				break
			}
		}
	}

	// Sensitive files
	for _, rel := range ScanSensitive(dir) {
		result = multierror.Append(result, fmt.Errorf("potentially sensitive file: %s", rel))
	}

	return result.ErrorOrNil()
}

// ScanSensitive walks a skill directory and returns relative paths of files
// whose names match a sensitive pattern (.env, credentials, keys, etc.).
func ScanSensitive(dir string) []string {
	var flagged []string
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		lower := strings.ToLower(d.Name())
		for _, pattern := range sensitivePatterns {
			if strings.Contains(lower, pattern) {
				rel, relErr := filepath.Rel(dir, path)
				if relErr != nil {
					rel = path
				}
				flagged = append(flagged, rel)
				break
			}
		}
		return nil
	})
	return flagged
}

// LineCountWarning returns a warning message when SKILL.md exceeds the
// recommended line count. The second return is false when no warning applies.
func LineCountWarning(dir string) (string, bool) {
	f, err := os.Open(filepath.Join(dir, FileName))
	if err != nil {
		return "", false
	}
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines++
	}
	if lines > RecommendedMaxLines {
		return fmt.Sprintf("%s is %d lines (recommended max %d)", FileName, lines, RecommendedMaxLines), true
	}
	return "", false
}

// ValidationErrors flattens an error returned by ValidateDir into a list of
// individual problem strings, suitable for line-by-line display.
func ValidationErrors(err error) []string {
	if err == nil {
		return nil
	}
	if merr, ok := err.(*multierror.Error); ok {
		out := make([]string, 0, len(merr.Errors))
		for _, e := range merr.Errors {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}
