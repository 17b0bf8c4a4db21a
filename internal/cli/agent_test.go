package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malarbase/skillctl/internal/skill"
)

func TestSelfFSContainsExpectedFiles(t *testing.T) {
	fs, err := skill.SelfFS()
	require.NoError(t, err)

	f, err := fs.Open("SKILL.md")
	require.NoError(t, err)
	f.Close()

	f, err = fs.Open("references/commands.md")
	require.NoError(t, err)
	f.Close()
}

func TestDetectAgentTargets(t *testing.T) {
	home := t.TempDir()
	assert.Empty(t, detectAgentTargets(home))

	require.NoError(t, os.MkdirAll(filepath.Join(home, ".claude"), 0755))
	targets := detectAgentTargets(home)
	require.Len(t, targets, 1)
	assert.Equal(t, filepath.Join(home, ".claude", "skills", "skillctl"), targets[0])

	require.NoError(t, os.MkdirAll(filepath.Join(home, ".openclaw"), 0755))
	assert.Len(t, detectAgentTargets(home), 2)
}

func TestInstallSelfSkillToDir(t *testing.T) {
	target := filepath.Join(t.TempDir(), "skills", "skillctl")

	result, err := installSelfSkillToDir(target, false)
	require.NoError(t, err)
	assert.True(t, result.Installed)
	assert.False(t, result.Overwritten)
	assert.Contains(t, result.Files, "SKILL.md")

	_, err = os.Stat(filepath.Join(target, "SKILL.md"))
	assert.NoError(t, err)

	// Second install without force fails
	_, err = installSelfSkillToDir(target, false)
	assert.ErrorContains(t, err, "already exist")

	// Force overwrites
	result, err = installSelfSkillToDir(target, true)
	require.NoError(t, err)
	assert.True(t, result.Overwritten)
}

func TestListExistingFiles(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "file1.txt"), []byte("test"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "subdir"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "subdir", "file2.txt"), []byte("test"), 0644))

	files, err := listExistingFiles(tmpDir)
	require.NoError(t, err)

	assert.Len(t, files, 2)
	assert.Contains(t, files, "file1.txt")
	assert.Contains(t, files, filepath.Join("subdir", "file2.txt"))
}

func TestListExistingFilesNonExistent(t *testing.T) {
	files, err := listExistingFiles("/nonexistent/path")
	assert.Error(t, err)
	assert.True(t, os.IsNotExist(err))
	assert.Empty(t, files)
}
