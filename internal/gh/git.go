package gh

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Repo is a local git checkout used to prepare contribution branches.
type Repo struct {
	Dir string
}

// CloneForContribution shallow-clones repo at baseBranch into dir and checks
// out a new work branch.
func CloneForContribution(ctx context.Context, repoSlug, baseBranch, branch, dir string) (*Repo, error) {
	if err := os.MkdirAll(filepath.Dir(dir), 0755); err != nil {
		return nil, err
	}

	cloneURL := fmt.Sprintf("https://github.com/%s.git", repoSlug)
	out, err := git(ctx, "", "clone", "--filter=blob:none", "--depth=1",
		"--single-branch", "--branch", baseBranch, cloneURL, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to clone %s: %s", repoSlug, firstLine(out))
	}

	r := &Repo{Dir: dir}
	if out, err := r.git(ctx, "checkout", "-b", branch); err != nil {
		return nil, fmt.Errorf("failed to create branch %s: %s", branch, firstLine(out))
	}
	return r, nil
}

// OpenRepo wraps an existing checkout.
func OpenRepo(dir string) *Repo {
	return &Repo{Dir: dir}
}

// IsGitRepo reports whether dir is inside a git work tree.
func IsGitRepo(dir string) bool {
	out, err := git(context.Background(), dir, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// Root returns the top-level directory of the work tree containing dir.
func Root(ctx context.Context, dir string) (string, error) {
	out, err := git(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("not a git repository: %s", dir)
	}
	return strings.TrimSpace(out), nil
}

// RemoteURL returns the URL of the named remote.
func (r *Repo) RemoteURL(ctx context.Context, remote string) (string, error) {
	out, err := r.git(ctx, "remote", "get-url", remote)
	if err != nil {
		return "", fmt.Errorf("no remote %q in %s", remote, r.Dir)
	}
	return strings.TrimSpace(out), nil
}

// IsClean reports whether the work tree has no uncommitted changes.
func (r *Repo) IsClean(ctx context.Context) (bool, error) {
	out, err := r.git(ctx, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("git status failed: %s", firstLine(out))
	}
	return strings.TrimSpace(out) == "", nil
}

// CurrentBranch returns the checked-out branch name.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	out, err := r.git(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to read current branch: %s", firstLine(out))
	}
	return strings.TrimSpace(out), nil
}

// Checkout switches to an existing branch.
func (r *Repo) Checkout(ctx context.Context, branch string) error {
	if out, err := r.git(ctx, "checkout", branch); err != nil {
		return fmt.Errorf("failed to checkout %s: %s", branch, firstLine(out))
	}
	return nil
}

// CheckoutNew creates and switches to a new branch.
func (r *Repo) CheckoutNew(ctx context.Context, branch string) error {
	if out, err := r.git(ctx, "checkout", "-b", branch); err != nil {
		return fmt.Errorf("failed to create branch %s: %s", branch, firstLine(out))
	}
	return nil
}

// AddAll stages the given paths.
func (r *Repo) AddAll(ctx context.Context, paths ...string) error {
	args := append([]string{"add"}, paths...)
	if out, err := r.git(ctx, args...); err != nil {
		return fmt.Errorf("git add failed: %s", firstLine(out))
	}
	return nil
}

// Commit records staged changes.
func (r *Repo) Commit(ctx context.Context, message string) error {
	if out, err := r.git(ctx, "commit", "-m", message); err != nil {
		return fmt.Errorf("git commit failed: %s", firstLine(out))
	}
	return nil
}

// Push pushes the current branch to origin, setting the upstream.
func (r *Repo) Push(ctx context.Context) error {
	if out, err := r.git(ctx, "push", "-u", "origin", "HEAD"); err != nil {
		return fmt.Errorf("git push failed: %s", firstLine(out))
	}
	return nil
}

// PushToFork pushes the current branch to a fork, adding a "fork" remote
// when missing.
func (r *Repo) PushToFork(ctx context.Context, forkSlug string) error {
	forkURL := fmt.Sprintf("https://github.com/%s.git", forkSlug)
	if _, err := r.git(ctx, "remote", "get-url", "fork"); err != nil {
		if out, err := r.git(ctx, "remote", "add", "fork", forkURL); err != nil {
			return fmt.Errorf("failed to add fork remote: %s", firstLine(out))
		}
	} else if out, err := r.git(ctx, "remote", "set-url", "fork", forkURL); err != nil {
		return fmt.Errorf("failed to update fork remote: %s", firstLine(out))
	}

	if out, err := r.git(ctx, "push", "-u", "fork", "HEAD"); err != nil {
		return fmt.Errorf("git push to fork failed: %s", firstLine(out))
	}
	return nil
}

// Pull fast-forwards the current branch from origin.
func (r *Repo) Pull(ctx context.Context) error {
	if out, err := r.git(ctx, "pull", "--ff-only"); err != nil {
		return fmt.Errorf("git pull failed: %s", firstLine(out))
	}
	return nil
}

func (r *Repo) git(ctx context.Context, args ...string) (string, error) {
	return git(ctx, r.Dir, args...)
}

func git(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// MatchesRepo reports whether a remote URL points at the given owner/repo
// slug, over either HTTPS or SSH.
func MatchesRepo(remoteURL, slug string) bool {
	u := strings.TrimSuffix(strings.TrimSpace(remoteURL), ".git")
	return strings.HasSuffix(u, "github.com/"+slug) || strings.HasSuffix(u, "github.com:"+slug)
}
