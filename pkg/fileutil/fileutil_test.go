package fileutil

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWriteText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "a.txt")

	require.NoError(t, WriteText(path, "hello"))
	assert.True(t, Exists(path))
	assert.False(t, IsDir(path))
	assert.True(t, IsDir(filepath.Dir(path)))

	text, err := ReadText(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	_, err = ReadText(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestNameHelpers(t *testing.T) {
	assert.Equal(t, "csv", Ext("/data/Orders.CSV"))
	assert.Equal(t, "", Ext("/data/README"))
	assert.Equal(t, "Orders", BaseName("/data/Orders.csv"))
	assert.Equal(t, "/data/Orders.json", ChangeExt("/data/Orders.csv", "json"))
	assert.Equal(t, "/data/Orders.json", ChangeExt("/data/Orders.csv", ".json"))
	assert.Equal(t, "/data/Orders", ChangeExt("/data/Orders.csv", ""))
}

func setupTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"a.csv":         "id\n1\n",
		"b.txt":         "b",
		"sub/c.csv":     "id\n2\n",
		"sub/deep/d.md": "# d",
	}
	for name, content := range files {
		require.NoError(t, WriteText(filepath.Join(dir, filepath.FromSlash(name)), content))
	}
	return dir
}

func TestListFiles(t *testing.T) {
	dir := setupTree(t)

	top, err := ListFiles(dir, "*.csv", false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.csv")}, top)

	all, err := ListFiles(dir, "*.csv", true)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.csv"), filepath.Join(dir, "sub", "c.csv")}, all)

	everything, err := ListFiles(dir, "", true)
	require.NoError(t, err)
	assert.Len(t, everything, 4)

	_, err = ListFiles(dir, "[", true)
	assert.Error(t, err)
}

func TestCopyDirAndDelete(t *testing.T) {
	src := setupTree(t)
	dst := filepath.Join(t.TempDir(), "copy")

	require.NoError(t, CopyDir(src, dst))
	text, err := ReadText(filepath.Join(dst, "sub", "deep", "d.md"))
	require.NoError(t, err)
	assert.Equal(t, "# d", text)

	require.NoError(t, DeleteDir(dst))
	assert.False(t, Exists(dst))
	require.NoError(t, DeleteDir(dst), "deleting a missing dir is not an error")
}

func TestZipRoundTrip(t *testing.T) {
	src := setupTree(t)
	archive := filepath.Join(t.TempDir(), "out", "tree.zip")

	require.NoError(t, Zip(archive, src))
	entries, err := ZipEntries(archive)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.csv", "b.txt", "sub/c.csv", "sub/deep/d.md"}, entries)

	dst := t.TempDir()
	require.NoError(t, Unzip(archive, dst))
	text, err := ReadText(filepath.Join(dst, "sub", "c.csv"))
	require.NoError(t, err)
	assert.Equal(t, "id\n2\n", text)
}

func TestUnzipRejectsEscapingEntries(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "evil.zip")
	f, err := os.Create(archive)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("../evil.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	err = Unzip(archive, filepath.Join(t.TempDir(), "dst"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "illegal entry path")
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var hits atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, dir, []string{"csv"}, nil, func(string) { hits.Add(1) })
	}()

	target := filepath.Join(dir, "x.csv")
	assert.Eventually(t, func() bool {
		_ = os.WriteFile(target, []byte("id\n"), 0600)
		_ = os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0600)
		return hits.Load() > 0
	}, 5*time.Second, 150*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
}

func TestMatchesExt(t *testing.T) {
	assert.True(t, matchesExt("a.CSV", []string{".csv"}))
	assert.True(t, matchesExt("a.txt", nil))
	assert.False(t, matchesExt("a.txt", []string{"csv", "json"}))
}
