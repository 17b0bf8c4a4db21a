package source

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGitHubTreeURL(t *testing.T) {
	src, err := Parse("https://github.com/anthropics/skills/tree/main/document-skills/docx")
	require.NoError(t, err)

	assert.Equal(t, TypeGitHub, src.Type)
	assert.Equal(t, "anthropics", src.Owner)
	assert.Equal(t, "skills", src.Repo)
	assert.Equal(t, "main", src.Ref)
	assert.Equal(t, "document-skills/docx", src.Path)
}

func TestParseGitHubRepoURL(t *testing.T) {
	src, err := Parse("https://github.com/owner/repo")
	require.NoError(t, err)

	assert.Equal(t, "owner", src.Owner)
	assert.Equal(t, "repo", src.Repo)
	assert.Equal(t, DefaultRef, src.Ref)
	assert.Empty(t, src.Path)
}

func TestParseGitHubURLWithRef(t *testing.T) {
	src, err := Parse("https://github.com/owner/repo/tree/v1.2.0/skills/web")
	require.NoError(t, err)

	assert.Equal(t, "v1.2.0", src.Ref)
	assert.Equal(t, "skills/web", src.Path)
}

func TestParseShorthand(t *testing.T) {
	src, err := Parse("owner/repo:skills/my-skill")
	require.NoError(t, err)

	assert.Equal(t, TypeGitHub, src.Type)
	assert.Equal(t, "owner", src.Owner)
	assert.Equal(t, "repo", src.Repo)
	assert.Equal(t, "skills/my-skill", src.Path)
	assert.Equal(t, DefaultRef, src.Ref)
}

func TestParseLocalPath(t *testing.T) {
	dir := t.TempDir()

	src, err := Parse(dir)
	require.NoError(t, err)
	assert.Equal(t, TypeLocal, src.Type)
	assert.Equal(t, dir, src.LocalPath)

	src, err = Parse("./relative/path")
	require.NoError(t, err)
	assert.Equal(t, TypeLocal, src.Type)
}

func TestParseBareSlug(t *testing.T) {
	src, err := Parse("owner/repo")
	require.NoError(t, err)

	assert.Equal(t, TypeGitHub, src.Type)
	assert.Equal(t, "owner", src.Owner)
	assert.Equal(t, "repo", src.Repo)
	assert.Empty(t, src.Path)
}

func TestSourceStringRoundTrip(t *testing.T) {
	for _, raw := range []string{
		"owner/repo",
		"owner/repo:skills/web",
		"https://github.com/owner/repo/tree/v1.2.0/skills/web",
	} {
		src, err := Parse(raw)
		require.NoError(t, err)

		back, err := Parse(src.String())
		require.NoError(t, err)
		assert.Equal(t, src, back, "round trip of %q", raw)
	}
}

func TestSkillName(t *testing.T) {
	src, err := Parse("owner/repo:document-skills/docx")
	require.NoError(t, err)
	assert.Equal(t, "docx", src.SkillName())

	src, err = Parse("owner/repo")
	require.NoError(t, err)
	assert.Equal(t, "repo", src.SkillName())

	src = &Source{Type: TypeLocal, LocalPath: "/tmp/skills/web-tools/"}
	assert.Equal(t, "web-tools", src.SkillName())
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("not a source at all")
	assert.Error(t, err)
}

func TestParseRejectsNonGitHubHost(t *testing.T) {
	_, err := Parse("https://github.com.evil.example/owner/repo")
	assert.Error(t, err)
}

func TestCloneURLs(t *testing.T) {
	src := &Source{Type: TypeGitHub, Owner: "owner", Repo: "repo"}
	assert.Equal(t, "https://github.com/owner/repo.git", src.CloneURL())
	assert.Equal(t, "git@github.com:owner/repo.git", src.SSHURL())
	assert.Equal(t, "owner/repo", src.RepoSlug())
}

func TestValidateRelativePath(t *testing.T) {
	assert.NoError(t, ValidateRelativePath("skills/web"))
	assert.NoError(t, ValidateRelativePath("a/b/../c"))
	assert.Error(t, ValidateRelativePath("/etc/passwd"))
	assert.Error(t, ValidateRelativePath("../outside"))
	assert.Error(t, ValidateRelativePath("a/../../outside"))
}

func TestValidateSkillName(t *testing.T) {
	assert.NoError(t, ValidateSkillName("my-skill"))
	assert.Error(t, ValidateSkillName(""))
	assert.Error(t, ValidateSkillName("a/b"))
	assert.Error(t, ValidateSkillName(".."))
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("auto")
	require.NoError(t, err)
	assert.Equal(t, MethodAuto, m)

	_, err = ParseMethod("carrier-pigeon")
	assert.Error(t, err)
}

func buildArchive(t *testing.T, files map[string]string) *zip.Reader {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	r, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	return r
}

func TestExtractSubtree(t *testing.T) {
	r := buildArchive(t, map[string]string{
		"repo-main/README.md":               "readme",
		"repo-main/skills/web/SKILL.md":     "---\nname: web\n---\nbody",
		"repo-main/skills/web/scripts/x.sh": "#!/bin/sh\n",
		"repo-main/skills/other/SKILL.md":   "other",
	})

	dest := filepath.Join(t.TempDir(), "out")
	require.NoError(t, extractSubtree(r, "skills/web", dest))

	data, err := os.ReadFile(filepath.Join(dest, "SKILL.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: web")

	_, err = os.Stat(filepath.Join(dest, "scripts", "x.sh"))
	assert.NoError(t, err)

	_, err = os.Stat(filepath.Join(dest, "README.md"))
	assert.True(t, os.IsNotExist(err))
}

func TestExtractSubtreeWholeRepo(t *testing.T) {
	r := buildArchive(t, map[string]string{
		"repo-main/README.md": "readme",
		"repo-main/a/b.txt":   "b",
	})

	dest := filepath.Join(t.TempDir(), "out")
	require.NoError(t, extractSubtree(r, "", dest))

	_, err := os.Stat(filepath.Join(dest, "README.md"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dest, "a", "b.txt"))
	assert.NoError(t, err)
}

func TestExtractSubtreeMissingPath(t *testing.T) {
	r := buildArchive(t, map[string]string{
		"repo-main/README.md": "readme",
	})

	dest := filepath.Join(t.TempDir(), "out")
	err := extractSubtree(r, "skills/missing", dest)
	assert.ErrorContains(t, err, "not found")
}

func TestExtractSubtreeRejectsTraversal(t *testing.T) {
	r := buildArchive(t, map[string]string{
		"repo-main/../../escape.txt": "evil",
	})

	dest := filepath.Join(t.TempDir(), "out")
	err := extractSubtree(r, "", dest)
	assert.ErrorContains(t, err, "escapes")
}
