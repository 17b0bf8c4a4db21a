// Package editors knows where agent editors keep their skills, detects
// which editor is present, and lists installed skills.
package editors

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Editor describes one supported editor or agent runtime.
type Editor struct {
	// Name is the identifier used by --editor flags.
	Name string
	// EnvVar overrides the home directory when set.
	EnvVar string
	// Home is the default home directory, relative to $HOME.
	Home string
	// ProjectDir is the per-project directory name.
	ProjectDir string
	// RuntimeEnv names an environment variable set while the editor's
	// agent is running.
	RuntimeEnv string
}

// Registry lists supported editors in detection priority order.
var Registry = []Editor{
	{Name: "claude", EnvVar: "CLAUDE_HOME", Home: ".claude", ProjectDir: ".claude", RuntimeEnv: "CLAUDE_CODE"},
	{Name: "opencode", EnvVar: "OPENCODE_HOME", Home: ".opencode", ProjectDir: ".opencode", RuntimeEnv: "OPENCODE"},
	{Name: "antigravity", EnvVar: "ANTIGRAVITY_HOME", Home: ".antigravity", ProjectDir: ".agent"},
	{Name: "gemini-cli", EnvVar: "GEMINI_HOME", Home: ".gemini", ProjectDir: ".gemini"},
	{Name: "cursor", EnvVar: "CURSOR_HOME", Home: ".cursor", ProjectDir: ".cursor", RuntimeEnv: "CURSOR_AGENT"},
	{Name: "windsurf", EnvVar: "WINDSURF_HOME", Home: ".windsurf", ProjectDir: ".windsurf"},
	{Name: "agent", EnvVar: "AGENT_HOME", Home: ".agent", ProjectDir: ".agent"},
	{Name: "agents", EnvVar: "AGENTS_HOME", Home: ".agents", ProjectDir: ".agents"},
}

// FallbackName is used when nothing can be detected.
const FallbackName = "agent"

// Lookup returns the registry entry for name.
func Lookup(name string) (Editor, bool) {
	for _, e := range Registry {
		if e.Name == name {
			return e, true
		}
	}
	return Editor{}, false
}

// HomeDir returns the editor's home directory, honoring its env override.
func (e Editor) HomeDir() string {
	if v := os.Getenv(e.EnvVar); e.EnvVar != "" && v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return e.Home
	}
	return filepath.Join(home, e.Home)
}

// SkillsDir returns the global skills directory for the editor.
func (e Editor) SkillsDir() string {
	return filepath.Join(e.HomeDir(), "skills")
}

// ProjectSkillsDir returns the per-project skills directory under root.
func (e Editor) ProjectSkillsDir(root string) string {
	return filepath.Join(root, e.ProjectDir, "skills")
}

// Running reports whether the editor's agent runtime appears active.
func (e Editor) Running() bool {
	if e.RuntimeEnv == "" {
		return false
	}
	v := os.Getenv(e.RuntimeEnv)
	return v != "" && v != "0"
}

// Installed reports whether the editor's home directory exists.
func (e Editor) Installed() bool {
	info, err := os.Stat(e.HomeDir())
	return err == nil && info.IsDir()
}

// Detect picks the editor to install into, in priority order: a running
// agent runtime, an env-var override, an existing home directory, then the
// "agent" fallback.
func Detect() Editor {
	for _, e := range Registry {
		if e.Running() {
			return e
		}
	}
	for _, e := range Registry {
		if e.EnvVar != "" && os.Getenv(e.EnvVar) != "" {
			return e
		}
	}
	for _, e := range Registry {
		if e.Installed() {
			return e
		}
	}
	fallback, _ := Lookup(FallbackName)
	return fallback
}

// DetectProject walks up from dir looking for a known project skills
// directory, stopping at the git root or filesystem root. The editor whose
// project directory is found first (in registry order per level) wins.
func DetectProject(dir string) (Editor, string, bool) {
	current := dir
	for {
		for _, e := range Registry {
			candidate := filepath.Join(current, e.ProjectDir)
			if info, err := os.Stat(candidate); err == nil && info.IsDir() {
				return e, current, true
			}
		}

		if isGitRoot(current) {
			return Editor{}, "", false
		}
		parent := filepath.Dir(current)
		if parent == current {
			return Editor{}, "", false
		}
		current = parent
	}
}

func isGitRoot(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// InstalledSkill is one skill found in an editor's skills directory.
type InstalledSkill struct {
	Name   string `json:"name"`
	Dir    string `json:"dir"`
	Editor string `json:"editor"`
}

// InstalledSkills lists skills installed in the editor's global skills
// directory. A directory counts as a skill when it holds a SKILL.md.
func (e Editor) InstalledSkills() []InstalledSkill {
	return skillsIn(e.SkillsDir(), e.Name)
}

func skillsIn(dir, editorName string) []InstalledSkill {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var skills []InstalledSkill
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, entry.Name(), "SKILL.md")); err != nil {
			continue
		}
		skills = append(skills, InstalledSkill{
			Name:   entry.Name(),
			Dir:    filepath.Join(dir, entry.Name()),
			Editor: editorName,
		})
	}

	sort.Slice(skills, func(i, j int) bool { return skills[i].Name < skills[j].Name })
	return skills
}

// Status summarizes one editor for the editors command.
type Status struct {
	Name      string `json:"name"`
	Home      string `json:"home"`
	Installed bool   `json:"installed"`
	Running   bool   `json:"running"`
	Skills    int    `json:"skills"`
}

// ListAll returns the status of every registered editor.
func ListAll() []Status {
	statuses := make([]Status, 0, len(Registry))
	for _, e := range Registry {
		statuses = append(statuses, Status{
			Name:      e.Name,
			Home:      e.HomeDir(),
			Installed: e.Installed(),
			Running:   e.Running(),
			Skills:    len(e.InstalledSkills()),
		})
	}
	return statuses
}
