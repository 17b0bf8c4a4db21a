package inventory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSkill(t *testing.T, root, author, name, description string, tags []string) {
	t.Helper()
	dir := filepath.Join(root, "skills", author, name)
	require.NoError(t, os.MkdirAll(dir, 0755))

	content := "---\nname: " + name + "\ndescription: " + description + "\n"
	if len(tags) > 0 {
		content += "metadata:\n  tags:\n"
		for _, tag := range tags {
			content += "    - " + tag + "\n"
		}
	}
	content += "---\nBody\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "SKILL.md"), []byte(content), 0644))
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "bob", "zeta", "Zeta skill. Extra detail.", nil)
	writeSkill(t, root, "alice", "alpha", "Alpha skill.", []string{"web", "curated"})

	items, err := Scan(root)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "alice", items[0].Author)
	assert.Equal(t, "alpha", items[0].Name)
	assert.Equal(t, "Alpha skill.", items[0].Description)
	assert.Equal(t, []string{"web", "curated"}, items[0].Tags)
	assert.Equal(t, "skills/alice/alpha", items[0].Path)

	assert.Equal(t, "Zeta skill.", items[1].Description)
}

func TestScanMissingSkillsDir(t *testing.T) {
	items, err := Scan(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFirstSentence(t *testing.T) {
	assert.Equal(t, "One.", FirstSentence("One. Two. Three."))
	assert.Equal(t, "No trailing period", FirstSentence("No trailing period"))
	assert.Equal(t, "Ends here.", FirstSentence("Ends here."))
	assert.Equal(t, "Uses v1.2 of the API.", FirstSentence("Uses v1.2 of the API. More."))
	assert.Equal(t, "Multi line.", FirstSentence("Multi\nline. Rest."))
}

func TestRender(t *testing.T) {
	items := []Item{
		{Author: "alice", Name: "alpha", Description: "Alpha.", Path: "skills/alice/alpha", Tags: []string{"web"}},
		{Author: "bob", Name: "beta", Description: "Beta.", Path: "skills/bob/beta"},
	}

	out := Render(items)
	assert.Contains(t, out, SectionHeading)
	assert.Contains(t, out, "### alice")
	assert.Contains(t, out, "- [alpha](skills/alice/alpha/) - Alpha. `web`")
	assert.Contains(t, out, "### bob")
	assert.Contains(t, out, "- [beta](skills/bob/beta/) - Beta.")
}

func TestRenderEmpty(t *testing.T) {
	out := Render(nil)
	assert.Contains(t, out, "No skills curated yet.")
}

func TestUpdateReadmeReplacesSection(t *testing.T) {
	root := t.TempDir()
	readme := "# Skills\n\nIntro text.\n\n## Skills Inventory\n\nstale content\n\n## Contributing\n\nHow to contribute.\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte(readme), 0644))
	writeSkill(t, root, "alice", "alpha", "Alpha skill.", nil)

	items, err := Scan(root)
	require.NoError(t, err)

	changed, err := UpdateReadme(root, items)
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := os.ReadFile(filepath.Join(root, "README.md"))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "- [alpha](skills/alice/alpha/) - Alpha skill.")
	assert.NotContains(t, content, "stale content")
	assert.Contains(t, content, "## Contributing")
	assert.Contains(t, content, "Intro text.")
}

func TestUpdateReadmeAppendsWhenMissing(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("# Skills\n"), 0644))

	changed, err := UpdateReadme(root, nil)
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := os.ReadFile(filepath.Join(root, "README.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), SectionHeading)
}

func TestUpdateReadmeCreatesFile(t *testing.T) {
	root := t.TempDir()
	changed, err := UpdateReadme(root, nil)
	require.NoError(t, err)
	assert.True(t, changed)

	_, err = os.Stat(filepath.Join(root, "README.md"))
	assert.NoError(t, err)
}

func TestUpdateReadmeNoChange(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "alice", "alpha", "Alpha skill.", nil)
	items, err := Scan(root)
	require.NoError(t, err)

	_, err = UpdateReadme(root, items)
	require.NoError(t, err)

	changed, err := UpdateReadme(root, items)
	require.NoError(t, err)
	assert.False(t, changed)
}
