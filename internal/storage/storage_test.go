// AngelaMos | 2026
// storage_test.go

package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/bookshelf-api/internal/config"
	"github.com/carterperez-dev/bookshelf-api/internal/core"
)

var jpegBytes = []byte{
	0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46,
	0x49, 0x46, 0x00, 0x01, 0x01, 0x00, 0x00, 0x01,
	0x00, 0x01, 0x00, 0x00, 0xFF, 0xD9,
}

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := New(config.StorageConfig{
		UploadDir:     t.TempDir(),
		MaxUploadSize: 1 << 20,
		PublicPath:    "/media",
	})
	require.NoError(t, err)

	return store
}

func TestSaveImageSniffsContent(t *testing.T) {
	store := newTestStore(t)

	// Extension comes from the payload, not from any client filename.
	name, err := store.SaveImage(jpegBytes)
	require.NoError(t, err)
	assert.Equal(t, ".jpg", filepath.Ext(name))

	data, err := os.ReadFile(filepath.Join(store.Dir(), name))
	require.NoError(t, err)
	assert.Equal(t, jpegBytes, data)
}

func TestSaveImageRejectsNonImage(t *testing.T) {
	store := newTestStore(t)

	_, err := store.SaveImage([]byte(`{"not": "an image"}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidFile)

	entries, readErr := os.ReadDir(store.Dir())
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestSaveImageNamesAreUnique(t *testing.T) {
	store := newTestStore(t)

	first, err := store.SaveImage(jpegBytes)
	require.NoError(t, err)

	second, err := store.SaveImage(jpegBytes)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestRemove(t *testing.T) {
	store := newTestStore(t)

	name, err := store.SaveImage(jpegBytes)
	require.NoError(t, err)

	require.NoError(t, store.Remove(name))

	_, statErr := os.Stat(filepath.Join(store.Dir(), name))
	assert.True(t, os.IsNotExist(statErr))

	// Removing again, or removing nothing, is not an error.
	assert.NoError(t, store.Remove(name))
	assert.NoError(t, store.Remove(""))
}

func TestRemoveIgnoresPathComponents(t *testing.T) {
	store := newTestStore(t)

	name, err := store.SaveImage(jpegBytes)
	require.NoError(t, err)

	require.NoError(t, store.Remove("../../"+name))

	_, statErr := os.Stat(filepath.Join(store.Dir(), name))
	assert.True(t, os.IsNotExist(statErr))
}

func TestURL(t *testing.T) {
	store := newTestStore(t)

	url := store.URL("abc.png")
	assert.Equal(t, "/media/abc.png", url)
	assert.True(t, strings.HasPrefix(url, "/media/"))
}
