package editors

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEditorEnv(t *testing.T) {
	t.Helper()
	for _, e := range Registry {
		if e.EnvVar != "" {
			t.Setenv(e.EnvVar, "")
			os.Unsetenv(e.EnvVar)
		}
		if e.RuntimeEnv != "" {
			t.Setenv(e.RuntimeEnv, "")
			os.Unsetenv(e.RuntimeEnv)
		}
	}
}

func TestLookup(t *testing.T) {
	e, ok := Lookup("claude")
	require.True(t, ok)
	assert.Equal(t, ".claude", e.Home)

	_, ok = Lookup("emacs")
	assert.False(t, ok)
}

func TestHomeDirEnvOverride(t *testing.T) {
	clearEditorEnv(t)
	custom := t.TempDir()
	t.Setenv("CLAUDE_HOME", custom)

	e, _ := Lookup("claude")
	assert.Equal(t, custom, e.HomeDir())
	assert.Equal(t, filepath.Join(custom, "skills"), e.SkillsDir())
}

func TestRunning(t *testing.T) {
	clearEditorEnv(t)
	e, _ := Lookup("opencode")
	assert.False(t, e.Running())

	t.Setenv("OPENCODE", "1")
	assert.True(t, e.Running())

	t.Setenv("OPENCODE", "0")
	assert.False(t, e.Running())
}

func TestDetectPrefersRunningRuntime(t *testing.T) {
	clearEditorEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CURSOR_AGENT", "1")

	assert.Equal(t, "cursor", Detect().Name)
}

func TestDetectEnvOverride(t *testing.T) {
	clearEditorEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GEMINI_HOME", t.TempDir())

	assert.Equal(t, "gemini-cli", Detect().Name)
}

func TestDetectExistingHome(t *testing.T) {
	clearEditorEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".windsurf"), 0755))

	assert.Equal(t, "windsurf", Detect().Name)
}

func TestDetectFallback(t *testing.T) {
	clearEditorEnv(t)
	t.Setenv("HOME", t.TempDir())

	assert.Equal(t, FallbackName, Detect().Name)
}

func TestDetectProject(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".claude"), 0755))
	nested := filepath.Join(root, "src", "deep")
	require.NoError(t, os.MkdirAll(nested, 0755))

	e, foundRoot, ok := DetectProject(nested)
	require.True(t, ok)
	assert.Equal(t, "claude", e.Name)
	assert.Equal(t, root, foundRoot)
	assert.Equal(t, filepath.Join(root, ".claude", "skills"), e.ProjectSkillsDir(foundRoot))
}

func TestDetectProjectStopsAtGitRoot(t *testing.T) {
	outer := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(outer, ".claude"), 0755))
	inner := filepath.Join(outer, "project")
	require.NoError(t, os.MkdirAll(filepath.Join(inner, ".git"), 0755))

	_, _, ok := DetectProject(inner)
	assert.False(t, ok)
}

func TestInstalledSkills(t *testing.T) {
	clearEditorEnv(t)
	home := t.TempDir()
	t.Setenv("CLAUDE_HOME", home)

	skillsDir := filepath.Join(home, "skills")
	require.NoError(t, os.MkdirAll(filepath.Join(skillsDir, "docx"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(skillsDir, "docx", "SKILL.md"), []byte("---\nname: docx\n---\n"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(skillsDir, "not-a-skill"), 0755))

	e, _ := Lookup("claude")
	skills := e.InstalledSkills()
	require.Len(t, skills, 1)
	assert.Equal(t, "docx", skills[0].Name)
	assert.Equal(t, "claude", skills[0].Editor)
}

func TestListAll(t *testing.T) {
	clearEditorEnv(t)
	t.Setenv("HOME", t.TempDir())

	statuses := ListAll()
	assert.Len(t, statuses, len(Registry))
	for _, s := range statuses {
		assert.False(t, s.Installed)
	}
}
