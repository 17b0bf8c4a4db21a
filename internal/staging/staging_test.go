package staging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSkill(t *testing.T, dir, name string) string {
	t.Helper()
	skillDir := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(skillDir, 0755))
	content := "---\nname: " + name + "\ndescription: A test skill.\n---\nBody\n"
	require.NoError(t, os.WriteFile(filepath.Join(skillDir, "SKILL.md"), []byte(content), 0644))
	return skillDir
}

func TestStageAndList(t *testing.T) {
	area, err := New(filepath.Join(t.TempDir(), "staging"))
	require.NoError(t, err)

	src := writeSkill(t, t.TempDir(), "web-tools")
	entry, err := area.Stage(src, "alice", "web-tools")
	require.NoError(t, err)
	assert.Equal(t, "skills/alice/web-tools", entry.RelPath())

	entries, err := area.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "alice", entries[0].Author)
	assert.Equal(t, "web-tools", entries[0].Name)

	_, err = os.Stat(filepath.Join(entry.Dir, "SKILL.md"))
	assert.NoError(t, err)
}

func TestStageReplacesExisting(t *testing.T) {
	area, err := New(filepath.Join(t.TempDir(), "staging"))
	require.NoError(t, err)

	src := writeSkill(t, t.TempDir(), "web-tools")
	require.NoError(t, os.WriteFile(filepath.Join(src, "old.txt"), []byte("old"), 0644))
	_, err = area.Stage(src, "alice", "web-tools")
	require.NoError(t, err)

	src2 := writeSkill(t, t.TempDir(), "web-tools")
	entry, err := area.Stage(src2, "alice", "web-tools")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(entry.Dir, "old.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestListSorted(t *testing.T) {
	area, err := New(filepath.Join(t.TempDir(), "staging"))
	require.NoError(t, err)

	for _, pair := range [][2]string{{"bob", "zeta"}, {"alice", "beta"}, {"alice", "alpha"}} {
		src := writeSkill(t, t.TempDir(), pair[1])
		_, err := area.Stage(src, pair[0], pair[1])
		require.NoError(t, err)
	}

	entries, err := area.List()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "alpha", entries[0].Name)
	assert.Equal(t, "beta", entries[1].Name)
	assert.Equal(t, "zeta", entries[2].Name)
}

func TestGet(t *testing.T) {
	area, err := New(filepath.Join(t.TempDir(), "staging"))
	require.NoError(t, err)

	src := writeSkill(t, t.TempDir(), "web-tools")
	_, err = area.Stage(src, "alice", "web-tools")
	require.NoError(t, err)

	entry, ok := area.Get("", "web-tools")
	assert.True(t, ok)
	assert.Equal(t, "alice", entry.Author)

	_, ok = area.Get("bob", "web-tools")
	assert.False(t, ok)

	_, ok = area.Get("", "missing")
	assert.False(t, ok)
}

func TestRemovePrunesAuthorDir(t *testing.T) {
	area, err := New(filepath.Join(t.TempDir(), "staging"))
	require.NoError(t, err)

	src := writeSkill(t, t.TempDir(), "web-tools")
	_, err = area.Stage(src, "alice", "web-tools")
	require.NoError(t, err)

	require.NoError(t, area.Remove("alice", "web-tools"))
	_, err = os.Stat(filepath.Join(area.Root, "alice"))
	assert.True(t, os.IsNotExist(err))

	assert.Error(t, area.Remove("alice", "web-tools"))
}

func TestClear(t *testing.T) {
	area, err := New(filepath.Join(t.TempDir(), "staging"))
	require.NoError(t, err)

	for _, name := range []string{"one", "two"} {
		src := writeSkill(t, t.TempDir(), name)
		_, err := area.Stage(src, "alice", name)
		require.NoError(t, err)
	}

	require.NoError(t, area.Clear())
	entries, err := area.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}
