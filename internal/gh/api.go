package gh

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

const apiBase = "https://api.github.com"

// API is a thin GitHub REST client used for read operations that do not
// need the gh CLI: listing repository contents and checking push access.
type API struct {
	Client *http.Client
	Token  string
}

// NewAPI returns an API client. The token is taken from GITHUB_TOKEN or
// GH_TOKEN, falling back to the gh CLI's stored token.
func NewAPI(ctx context.Context) *API {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		token = os.Getenv("GH_TOKEN")
	}
	if token == "" {
		token = NewClient().Token(ctx)
	}
	return &API{
		Client: &http.Client{Timeout: 30 * time.Second},
		Token:  token,
	}
}

// ContentEntry is one entry from the repository contents endpoint.
type ContentEntry struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// ListContents lists the entries of a directory in a repository at ref.
func (a *API) ListContents(ctx context.Context, repo, path, ref string) ([]ContentEntry, error) {
	u := fmt.Sprintf("%s/repos/%s/contents/%s?ref=%s", apiBase, repo, path, url.QueryEscape(ref))
	body, err := a.get(ctx, u)
	if err != nil {
		return nil, err
	}

	var entries []ContentEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("unexpected contents response for %s/%s: %w", repo, path, err)
	}
	return entries, nil
}

// FileContent fetches a single file's decoded content.
func (a *API) FileContent(ctx context.Context, repo, path, ref string) ([]byte, error) {
	u := fmt.Sprintf("%s/repos/%s/contents/%s?ref=%s", apiBase, repo, path, url.QueryEscape(ref))
	body, err := a.get(ctx, u)
	if err != nil {
		return nil, err
	}

	var entry ContentEntry
	if err := json.Unmarshal(body, &entry); err != nil {
		return nil, fmt.Errorf("unexpected content response for %s/%s: %w", repo, path, err)
	}
	data, err := base64.StdEncoding.DecodeString(removeNewlines(entry.Content))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return data, nil
}

// HasPushAccess reports whether the authenticated user can push to repo.
// Anonymous callers never have push access.
func (a *API) HasPushAccess(ctx context.Context, repo string) (bool, error) {
	if a.Token == "" {
		return false, nil
	}

	body, err := a.get(ctx, fmt.Sprintf("%s/repos/%s", apiBase, repo))
	if err != nil {
		return false, err
	}

	var info struct {
		Permissions struct {
			Push bool `json:"push"`
		} `json:"permissions"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return false, err
	}
	return info.Permissions.Push, nil
}

func (a *API) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if a.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.Token)
	}

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GitHub API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("not found: %s", url)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned %s for %s", resp.Status, url)
	}
	return io.ReadAll(resp.Body)
}

func removeNewlines(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\n' && s[i] != '\r' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
