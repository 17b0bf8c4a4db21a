package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malarbase/skillctl/internal/skill"
	"github.com/malarbase/skillctl/internal/staging"
)

func TestShipBranchName(t *testing.T) {
	assert.Empty(t, shipBranchName(nil))

	single := []staging.Entry{{Author: "alice", Name: "web-tools"}}
	assert.Equal(t, "curate/add-web-tools", shipBranchName(single))

	multi := []staging.Entry{
		{Author: "alice", Name: "web-tools"},
		{Author: "bob", Name: "docx"},
	}
	branch := shipBranchName(multi)
	assert.Contains(t, branch, "curate/add-batch-")
	assert.Len(t, branch, len("curate/add-batch-")+8)
}

func TestCommitMessage(t *testing.T) {
	single := []staging.Entry{{Author: "alice", Name: "web-tools"}}
	assert.Equal(t, "Add skill alice/web-tools", commitMessage(single))

	multi := []staging.Entry{
		{Author: "alice", Name: "web-tools"},
		{Author: "bob", Name: "docx"},
	}
	msg := commitMessage(multi)
	assert.Contains(t, msg, "Add 2 skills")
	assert.Contains(t, msg, "- alice/web-tools")
	assert.Contains(t, msg, "- bob/docx")
}

func TestPRTitle(t *testing.T) {
	single := []staging.Entry{{Author: "alice", Name: "web-tools"}}
	assert.Equal(t, "Add skill: web-tools", prTitle(single))

	multi := []staging.Entry{
		{Author: "alice", Name: "web-tools"},
		{Author: "bob", Name: "docx"},
	}
	assert.Equal(t, "Add 2 skills: web-tools, docx", prTitle(multi))
}

func TestPRBodyUsesTemplate(t *testing.T) {
	repoDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(repoDir, ".github"), 0755))
	require.NoError(t, os.WriteFile(
		filepath.Join(repoDir, ".github", "pull_request_template.md"),
		[]byte("## Checklist\n- [ ] reviewed\n"), 0644))

	entries := []staging.Entry{{Author: "alice", Name: "web-tools", Dir: t.TempDir()}}
	body := prBody(repoDir, entries)

	assert.Contains(t, body, "## Checklist")
	assert.Contains(t, body, "## Skills")
	assert.Contains(t, body, "`skills/alice/web-tools`")
}

func TestPRBodyWithoutTemplate(t *testing.T) {
	entries := []staging.Entry{{Author: "alice", Name: "web-tools", Dir: t.TempDir()}}
	body := prBody(t.TempDir(), entries)

	assert.NotContains(t, body, "Checklist")
	assert.Contains(t, body, "- `skills/alice/web-tools`")
}

func TestValidateDirReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "good-skill")
	require.NoError(t, os.MkdirAll(dir, 0755))
	content := "---\nname: good-skill\ndescription: A valid skill.\n---\nBody\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "SKILL.md"), []byte(content), 0644))

	report := validateDir(dir)
	assert.True(t, report.Valid)
	assert.Empty(t, report.Problems)

	report = validateDir(filepath.Join(t.TempDir(), "missing"))
	assert.False(t, report.Valid)
	assert.NotEmpty(t, report.Problems)
}

func TestUpstreamInstallTarget(t *testing.T) {
	target, err := upstreamInstallTarget("anthropics/skills", "docx", "main")
	require.NoError(t, err)
	assert.Equal(t, "docx", target.Name)
	assert.Equal(t, "anthropics", target.Source.Owner)
	assert.Equal(t, "skills", target.Source.Repo)
	assert.Equal(t, "skills/docx", target.Source.Path)
	assert.Equal(t, "main", target.Source.Ref)

	_, err = upstreamInstallTarget("not-a-slug", "docx", "main")
	assert.Error(t, err)
	_, err = upstreamInstallTarget("owner/", "docx", "main")
	assert.Error(t, err)
}

func TestParseFilters(t *testing.T) {
	filters, err := parseFilters([]string{"author=alice", "version=1.2"})
	require.NoError(t, err)
	assert.Equal(t, "alice", filters["author"])
	assert.Equal(t, "1.2", filters["version"])

	_, err = parseFilters([]string{"no-equals"})
	assert.Error(t, err)
}

func TestMatchesMetadataTags(t *testing.T) {
	meta := &skill.Frontmatter{
		Name: "web-tools",
		Metadata: &skill.Metadata{
			Author: "alice",
			Tags:   []string{"web", "curated"},
		},
	}

	installTags = []string{"web"}
	installAllTags = false
	installAuthor = ""
	installFromRepo = ""
	defer func() { installTags = nil }()

	assert.True(t, matchesMetadata(meta, nil))

	installTags = []string{"web", "missing"}
	assert.True(t, matchesMetadata(meta, nil))

	installAllTags = true
	assert.False(t, matchesMetadata(meta, nil))
	installAllTags = false

	installTags = []string{"missing"}
	assert.False(t, matchesMetadata(meta, nil))
}

func TestMatchesMetadataAuthorAndFilters(t *testing.T) {
	meta := &skill.Frontmatter{
		Name: "web-tools",
		Metadata: &skill.Metadata{
			Author: "alice",
			Repo:   "github.com/owner/repo",
		},
	}

	installTags = nil
	installAllTags = false
	installFromRepo = ""

	installAuthor = "alice"
	assert.True(t, matchesMetadata(meta, nil))
	installAuthor = "bob"
	assert.False(t, matchesMetadata(meta, nil))
	installAuthor = ""

	installFromRepo = "owner/repo"
	assert.True(t, matchesMetadata(meta, nil))
	installFromRepo = "other/repo"
	assert.False(t, matchesMetadata(meta, nil))
	installFromRepo = ""

	assert.True(t, matchesMetadata(meta, map[string]string{"author": "alice"}))
	assert.False(t, matchesMetadata(meta, map[string]string{"author": "bob"}))
	assert.False(t, matchesMetadata(meta, map[string]string{"unknown": "x"}))
}

func TestBranchSlugAndWorktreePath(t *testing.T) {
	assert.Equal(t, "curate-add-docx", branchSlug("curate/add-docx"))

	path := getWorktreePath("/home/u/repos/agent-skills", "curate/add-docx")
	assert.Equal(t, "/home/u/repos/agent-skills-worktrees/curate-add-docx", path)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, home+"/.skillctl/skillctl.db", expandPath("~/.skillctl/skillctl.db"))
	assert.Equal(t, "/absolute/path", expandPath("/absolute/path"))
	assert.Equal(t, "", expandPath(""))
}

func TestShortCommitAndDate(t *testing.T) {
	assert.Equal(t, "unknown", shortCommit())
	assert.Equal(t, "unknown", shortDate())
}
