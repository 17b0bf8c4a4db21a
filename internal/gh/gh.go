// Package gh wraps the gh CLI and the GitHub REST API for the publishing
// workflow: opening pull requests, merging them, and reading repository
// contents.
package gh

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Client shells out to the gh CLI.
type Client struct{}

// NewClient returns a gh CLI client.
func NewClient() *Client {
	return &Client{}
}

// Available reports whether the gh CLI is installed and authenticated.
func (c *Client) Available(ctx context.Context) error {
	if _, err := exec.LookPath("gh"); err != nil {
		return fmt.Errorf("gh CLI not found in PATH")
	}
	if _, err := c.run(ctx, "auth", "status"); err != nil {
		return fmt.Errorf("gh CLI is not authenticated: run 'gh auth login'")
	}
	return nil
}

// Token returns the gh CLI's stored token, or an empty string.
func (c *Client) Token(ctx context.Context) string {
	out, err := c.run(ctx, "auth", "token")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// PROptions describes a pull request to create.
type PROptions struct {
	Repo  string
	Title string
	Body  string
	Head  string
	Base  string
	Draft bool
}

// CreatePR opens a pull request and returns its URL.
func (c *Client) CreatePR(ctx context.Context, opts PROptions) (string, error) {
	args := []string{
		"pr", "create",
		"--repo", opts.Repo,
		"--title", opts.Title,
		"--body", opts.Body,
		"--head", opts.Head,
		"--base", opts.Base,
	}
	if opts.Draft {
		args = append(args, "--draft")
	}

	out, err := c.run(ctx, args...)
	if err != nil {
		return "", fmt.Errorf("failed to create pull request: %w", err)
	}
	return lastLine(out), nil
}

// MergePR squash-merges a pull request and deletes its branch.
func (c *Client) MergePR(ctx context.Context, repo string, number int) error {
	_, err := c.run(ctx, "pr", "merge", fmt.Sprint(number),
		"--repo", repo, "--squash", "--delete-branch")
	if err != nil {
		return fmt.Errorf("failed to merge pull request #%d: %w", number, err)
	}
	return nil
}

// PRBranch returns the head branch name of a pull request.
func (c *Client) PRBranch(ctx context.Context, repo string, number int) (string, error) {
	out, err := c.run(ctx, "pr", "view", fmt.Sprint(number),
		"--repo", repo, "--json", "headRefName", "--jq", ".headRefName")
	if err != nil {
		return "", fmt.Errorf("failed to look up pull request #%d: %w", number, err)
	}
	return strings.TrimSpace(out), nil
}

// Fork forks repo into the authenticated user's account without cloning,
// returning the fork's "owner/repo" slug. Forking an already-forked repo is
// not an error.
func (c *Client) Fork(ctx context.Context, repo string) (string, error) {
	if _, err := c.run(ctx, "repo", "fork", repo, "--clone=false"); err != nil {
		return "", fmt.Errorf("failed to fork %s: %w", repo, err)
	}

	login, err := c.run(ctx, "api", "user", "--jq", ".login")
	if err != nil {
		return "", fmt.Errorf("failed to resolve authenticated user: %w", err)
	}

	name := repo
	if idx := strings.Index(repo, "/"); idx >= 0 {
		name = repo[idx+1:]
	}
	return strings.TrimSpace(login) + "/" + name, nil
}

func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "gh", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("gh %s: %s", args[0], firstLine(string(out)))
	}
	return string(out), nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
