// Package urlutil provides helpers for URLs, file URLs and simple fetching.
package urlutil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// IsURL reports whether s looks like an absolute URL with a scheme and,
// for non-file schemes, a host.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// single-letter schemes are Windows drive letters
		return false
	}
	if u.Scheme == "file" {
		return true
	}
	return u.Host != ""
}

// IsFileURL reports whether s uses the file scheme.
func IsFileURL(s string) bool {
	return strings.HasPrefix(strings.ToLower(s), "file:")
}

// FileURLToPath converts a file URL to a local path.
func FileURLToPath(s string) (string, error) {
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", s, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("not a file url: %q", s)
	}
	p := u.Path
	if p == "" {
		p = u.Opaque
	}
	return filepath.FromSlash(p), nil
}

// PathToFileURL converts a local path to an absolute file URL.
func PathToFileURL(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}

// Join appends path elements to base, keeping its query string.
func Join(base string, parts ...string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", base, err)
	}
	return u.JoinPath(parts...).String(), nil
}

// WithQuery returns raw with params merged into its query string.
func WithQuery(raw string, params map[string]string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", raw, err)
	}
	q := u.Query()
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		q.Set(k, params[k])
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// QueryParams returns the first value of each query parameter.
func QueryParams(raw string) (map[string]string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", raw, err)
	}
	out := make(map[string]string)
	for k, v := range u.Query() {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out, nil
}

// Parent returns the URL one path segment up, without query or fragment.
func Parent(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", raw, err)
	}
	dir := path.Dir(strings.TrimSuffix(u.Path, "/"))
	if dir == "." {
		dir = ""
	}
	if dir != "/" && dir != "" {
		dir += "/"
	}
	u.Path = dir
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// Fetch reads the resource at raw. File URLs and plain paths are read from
// disk; http and https URLs are fetched with client (http.DefaultClient
// when nil). Non-2xx responses are errors.
func Fetch(ctx context.Context, client *http.Client, raw string) ([]byte, error) {
	if IsFileURL(raw) || !IsURL(raw) {
		p := raw
		if IsFileURL(raw) {
			var err error
			if p, err = FileURLToPath(raw); err != nil {
				return nil, err
			}
		}
		b, err := os.ReadFile(p) //nolint:gosec // caller-provided path
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		return b, nil
	}

	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", raw, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch %s: %s", raw, resp.Status)
	}
	return io.ReadAll(resp.Body)
}
