package gh

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchesRepo(t *testing.T) {
	assert.True(t, MatchesRepo("https://github.com/owner/repo.git", "owner/repo"))
	assert.True(t, MatchesRepo("https://github.com/owner/repo", "owner/repo"))
	assert.True(t, MatchesRepo("git@github.com:owner/repo.git", "owner/repo"))
	assert.False(t, MatchesRepo("https://github.com/other/repo.git", "owner/repo"))
	assert.False(t, MatchesRepo("https://gitlab.com/owner/repo.git", "owner/repo"))
}

func TestFirstAndLastLine(t *testing.T) {
	assert.Equal(t, "one", firstLine("one\ntwo\nthree"))
	assert.Equal(t, "three", lastLine("one\ntwo\nthree\n"))
	assert.Equal(t, "solo", firstLine("solo"))
	assert.Equal(t, "solo", lastLine("solo"))
}

func TestRemoveNewlines(t *testing.T) {
	assert.Equal(t, "abcdef", removeNewlines("abc\ndef"))
	assert.Equal(t, "abcdef", removeNewlines("abc\r\ndef\n"))
}

func newTestAPI(handler http.Handler) (*API, *httptest.Server) {
	srv := httptest.NewServer(handler)
	api := &API{Client: srv.Client(), Token: "test-token"}
	return api, srv
}

func TestListContents(t *testing.T) {
	api, srv := newTestAPI(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]ContentEntry{
			{Name: "docx", Path: "skills/docx", Type: "dir"},
			{Name: "README.md", Path: "skills/README.md", Type: "file"},
		})
	}))
	defer srv.Close()

	body, err := api.get(context.Background(), srv.URL)
	require.NoError(t, err)

	var entries []ContentEntry
	require.NoError(t, json.Unmarshal(body, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "dir", entries[0].Type)
}

func TestFileContentDecode(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("---\nname: docx\n---\nbody"))
	// GitHub wraps base64 content at 60 columns.
	wrapped := encoded[:10] + "\n" + encoded[10:]

	decoded, err := base64.StdEncoding.DecodeString(removeNewlines(wrapped))
	require.NoError(t, err)
	assert.Contains(t, string(decoded), "name: docx")
}

func TestHasPushAccessWithoutToken(t *testing.T) {
	api := &API{Client: http.DefaultClient}
	ok, err := api.HasPushAccess(context.Background(), "owner/repo")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAPIGetNotFound(t *testing.T) {
	api, srv := newTestAPI(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := api.get(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "not found")
}
