package urlutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"http://example.com/a", true},
		{"https://example.com", true},
		{"file:///tmp/x", true},
		{"C:/data/x.csv", false},
		{"/tmp/x", false},
		{"relative/path", false},
		{"http://", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsURL(tt.in))
		})
	}
}

func TestFileURLs(t *testing.T) {
	dir := t.TempDir()
	u, err := PathToFileURL(dir)
	require.NoError(t, err)
	assert.True(t, IsFileURL(u))

	p, err := FileURLToPath(u)
	require.NoError(t, err)
	assert.Equal(t, dir, p)

	_, err = FileURLToPath("http://example.com")
	assert.Error(t, err)
}

func TestJoinAndQuery(t *testing.T) {
	joined, err := Join("http://example.com/api/?v=1", "tables", "users")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/api/tables/users?v=1", joined)

	withQ, err := WithQuery("http://example.com/x?a=1", map[string]string{"b": "2", "a": "3"})
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/x?a=3&b=2", withQ)

	params, err := QueryParams(withQ)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "3", "b": "2"}, params)
}

func TestParent(t *testing.T) {
	p, err := Parent("http://example.com/a/b/c.csv?x=1")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/a/b/", p)

	p, err = Parent("http://example.com/a/")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/", p)
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("payload"))
	}))
	defer srv.Close()

	ctx := context.Background()
	body, err := Fetch(ctx, srv.Client(), srv.URL+"/data")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(body))

	_, err = Fetch(ctx, nil, srv.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	path := filepath.Join(t.TempDir(), "local.txt")
	require.NoError(t, os.WriteFile(path, []byte("local"), 0600))

	body, err = Fetch(ctx, nil, path)
	require.NoError(t, err)
	assert.Equal(t, "local", string(body))

	u, err := PathToFileURL(path)
	require.NoError(t, err)
	body, err = Fetch(ctx, nil, u)
	require.NoError(t, err)
	assert.Equal(t, "local", string(body))
}
