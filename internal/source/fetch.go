package source

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Method selects how a GitHub source is materialized locally.
type Method string

const (
	// MethodAuto tries a codeload download first, then falls back to git.
	MethodAuto Method = "auto"
	// MethodDownload only uses the codeload zip endpoint.
	MethodDownload Method = "download"
	// MethodGit only uses a git sparse checkout.
	MethodGit Method = "git"
)

// ParseMethod validates a method flag value.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodAuto, MethodDownload, MethodGit:
		return Method(s), nil
	}
	return "", fmt.Errorf("invalid method %q: expected auto, download, or git", s)
}

const downloadTimeout = 60 * time.Second

// Fetcher materializes GitHub sources into local directories.
type Fetcher struct {
	// Client is used for codeload downloads. Defaults to a client with a
	// request timeout.
	Client *http.Client
}

// NewFetcher returns a Fetcher with default settings.
func NewFetcher() *Fetcher {
	return &Fetcher{Client: &http.Client{Timeout: downloadTimeout}}
}

// Fetch materializes the repository subtree (or the whole repository when
// src.Path is empty) into destDir, which must not already exist. The
// returned path is the directory holding the requested subtree.
func (f *Fetcher) Fetch(ctx context.Context, src *Source, destDir string, method Method) (string, error) {
	if src.Type != TypeGitHub {
		return "", fmt.Errorf("fetch requires a GitHub source")
	}
	if src.Path != "" {
		if err := ValidateRelativePath(src.Path); err != nil {
			return "", err
		}
	}

	switch method {
	case MethodDownload:
		return f.fetchZip(ctx, src, destDir)
	case MethodGit:
		return fetchGit(ctx, src, destDir)
	default:
		path, err := f.fetchZip(ctx, src, destDir)
		if err == nil {
			return path, nil
		}
		os.RemoveAll(destDir)
		gitPath, gitErr := fetchGit(ctx, src, destDir)
		if gitErr != nil {
			return "", fmt.Errorf("download failed (%v); git fallback failed: %w", err, gitErr)
		}
		return gitPath, nil
	}
}

// fetchZip downloads the repository archive from codeload and extracts the
// requested subtree into destDir.
func (f *Fetcher) fetchZip(ctx context.Context, src *Source, destDir string) (string, error) {
	url := fmt.Sprintf("https://codeload.github.com/%s/%s/zip/refs/heads/%s", src.Owner, src.Repo, src.Ref)
	data, err := f.download(ctx, url)
	if err != nil {
		// Tags and commit SHAs are not under refs/heads.
		url = fmt.Sprintf("https://codeload.github.com/%s/%s/zip/%s", src.Owner, src.Repo, src.Ref)
		data, err = f.download(ctx, url)
		if err != nil {
			return "", err
		}
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("invalid archive for %s: %w", src.RepoSlug(), err)
	}

	if err := extractSubtree(reader, src.Path, destDir); err != nil {
		return "", err
	}
	return destDir, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: downloadTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if token := githubToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: %s returned %s", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// extractSubtree extracts entries under subtree (repo-relative, empty means
// everything) into destDir. Archive entries are rooted at "<repo>-<ref>/",
// which is stripped. Entries that would escape destDir are rejected.
func extractSubtree(r *zip.Reader, subtree, destDir string) error {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return err
	}

	prefix := subtree
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	found := false
	for _, file := range r.File {
		// Strip the top-level "<repo>-<ref>/" directory.
		idx := strings.Index(file.Name, "/")
		if idx < 0 {
			continue
		}
		rel := file.Name[idx+1:]
		if rel == "" {
			continue
		}

		if prefix != "" {
			if !strings.HasPrefix(rel, prefix) {
				continue
			}
			rel = strings.TrimPrefix(rel, prefix)
			if rel == "" {
				found = true
				continue
			}
		}
		found = true

		target := filepath.Join(destDir, filepath.FromSlash(rel))
		if !strings.HasPrefix(target, filepath.Clean(destDir)+string(filepath.Separator)) {
			return fmt.Errorf("archive entry %q escapes destination", file.Name)
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		if err := extractFile(file, target); err != nil {
			return err
		}
	}

	if !found {
		if subtree == "" {
			return fmt.Errorf("archive is empty")
		}
		return fmt.Errorf("path %q not found in repository archive", subtree)
	}
	return nil
}

func extractFile(file *zip.File, target string) error {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	mode := file.Mode().Perm()
	if mode == 0 {
		mode = 0644
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}

// fetchGit clones the source with a sparse checkout limited to src.Path and
// returns the directory holding the subtree. The clone is shallow and
// blobless. HTTPS is tried first, then SSH for private repositories.
func fetchGit(ctx context.Context, src *Source, destDir string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(destDir), 0755); err != nil {
		return "", err
	}

	err := sparseClone(ctx, src.CloneURL(), src, destDir)
	if err != nil {
		os.RemoveAll(destDir)
		if sshErr := sparseClone(ctx, src.SSHURL(), src, destDir); sshErr != nil {
			os.RemoveAll(destDir)
			return "", fmt.Errorf("git clone failed over https (%v) and ssh: %w", err, sshErr)
		}
	}

	subtree := destDir
	if src.Path != "" {
		subtree = filepath.Join(destDir, filepath.FromSlash(src.Path))
	} else {
		// Whole-repo fetches hand back the clone root; the git metadata
		// is not part of the skill.
		os.RemoveAll(filepath.Join(destDir, ".git"))
	}
	if _, err := os.Stat(subtree); err != nil {
		return "", fmt.Errorf("path %q not found in %s@%s", src.Path, src.RepoSlug(), src.Ref)
	}
	return subtree, nil
}

func sparseClone(ctx context.Context, cloneURL string, src *Source, destDir string) error {
	args := []string{
		"clone", "--filter=blob:none", "--depth=1", "--single-branch",
		"--branch", src.Ref,
	}
	if src.Path != "" {
		args = append(args, "--sparse")
	}
	args = append(args, cloneURL, destDir)

	if out, err := runGit(ctx, "", args...); err != nil {
		// The ref may be a tag or SHA rather than a branch.
		os.RemoveAll(destDir)
		fallback := []string{"clone", "--filter=blob:none", "--single-branch"}
		if src.Path != "" {
			fallback = append(fallback, "--sparse")
		}
		fallback = append(fallback, cloneURL, destDir)
		if out2, err2 := runGit(ctx, "", fallback...); err2 != nil {
			return fmt.Errorf("%s: %s", err2, firstLine(out2))
		}
		if out3, err3 := runGit(ctx, destDir, "checkout", src.Ref); err3 != nil {
			return fmt.Errorf("checkout %s failed: %s (clone: %s)", src.Ref, firstLine(out3), firstLine(out))
		}
	}

	if src.Path != "" {
		if out, err := runGit(ctx, destDir, "sparse-checkout", "set", src.Path); err != nil {
			return fmt.Errorf("sparse-checkout failed: %s", firstLine(out))
		}
	}
	return nil
}

func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}

func githubToken() string {
	if t := os.Getenv("GITHUB_TOKEN"); t != "" {
		return t
	}
	return os.Getenv("GH_TOKEN")
}
