package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/warn"
	"github.com/fwojciec/warn/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Story: Artifact Cache
// Fetched pages and PDFs are stored once per key and survive restarts.

func TestCache_ReadMissingKey(t *testing.T) {
	t.Parallel()

	// Given an empty cache
	cache := fs.NewCache(t.TempDir())

	// When I read a key that was never written
	_, err := cache.Read(context.Background(), "fl/2020_page_1")

	// Then the error is not found
	assert.Equal(t, warn.ENOTFOUND, warn.ErrorCode(err))
}

func TestCache_WriteThenRead(t *testing.T) {
	t.Parallel()

	// Given a cache
	root := t.TempDir()
	cache := fs.NewCache(root)

	// When I write a page
	err := cache.Write(context.Background(), "fl/2020_page_3", []byte("<html>3</html>"))
	require.NoError(t, err)

	// Then it reads back
	got, err := cache.Read(context.Background(), "fl/2020_page_3")
	require.NoError(t, err)
	assert.Equal(t, []byte("<html>3</html>"), got)

	// And it is stored under the source's directory
	_, err = os.Stat(filepath.Join(root, "fl", "2020_page_3"))
	require.NoError(t, err)

	// And a new cache on the same directory sees it
	got, err = fs.NewCache(root).Read(context.Background(), "fl/2020_page_3")
	require.NoError(t, err)
	assert.Equal(t, []byte("<html>3</html>"), got)
}

func TestCache_IdenticalWriteIsNoOp(t *testing.T) {
	t.Parallel()

	// Given a cached PDF with an old modification time
	root := t.TempDir()
	cache := fs.NewCache(root)
	require.NoError(t, cache.Write(context.Background(), "fl/2016.pdf", []byte("%PDF-1.4")))
	path := filepath.Join(root, "fl", "2016.pdf")
	old := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(path, old, old))

	// When I write the same payload again
	require.NoError(t, cache.Write(context.Background(), "fl/2016.pdf", []byte("%PDF-1.4")))

	// Then the file was not rewritten
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, old, info.ModTime().Truncate(time.Second))
}

func TestCache_DifferentWriteReplaces(t *testing.T) {
	t.Parallel()

	// Given a cached page
	root := t.TempDir()
	cache := fs.NewCache(root)
	require.NoError(t, cache.Write(context.Background(), "wv/1", []byte("old")))

	// When I write a different payload
	require.NoError(t, cache.Write(context.Background(), "wv/1", []byte("new")))

	// Then the last write wins
	got, err := cache.Read(context.Background(), "wv/1")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)

	// And no temporary files are left behind
	entries, err := os.ReadDir(filepath.Join(root, "wv"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCache_RejectsUnsafeKeys(t *testing.T) {
	t.Parallel()

	cache := fs.NewCache(t.TempDir())

	for _, key := range []warn.CacheKey{"nosource", "fl/../etc", "../x", "fl/a/b", "/x"} {
		err := cache.Write(context.Background(), key, []byte("x"))
		assert.Equal(t, warn.EINVALID, warn.ErrorCode(err), "key %q", key)

		_, err = cache.Path(key)
		assert.Error(t, err, "key %q", key)
	}
}

func TestCache_Path(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	cache := fs.NewCache(root)

	path, err := cache.Path(warn.NewCacheKey("fl", "2016").WithExt(".pdf"))

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "fl", "2016.pdf"), path)
}
