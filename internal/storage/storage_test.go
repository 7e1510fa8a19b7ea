package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

func TestPrepare(t *testing.T) {
	img, err := prepare(Upload{Filename: "x.exe", Reader: bytes.NewReader(pngBytes)}, 1024)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.contentType)
	assert.True(t, strings.HasSuffix(img.name, ".png"))

	_, err = prepare(Upload{Reader: strings.NewReader("plain text, not an image")}, 1024)
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = prepare(Upload{Reader: bytes.NewReader(pngBytes)}, 8)
	assert.ErrorIs(t, err, ErrImageTooLarge)

	_, err = prepare(Upload{Reader: bytes.NewReader(nil)}, 8)
	assert.ErrorIs(t, err, ErrEmptyImage)
}

func TestNameFromRef(t *testing.T) {
	name, err := NameFromRef("/uploads/abc.png")
	require.NoError(t, err)
	assert.Equal(t, "abc.png", name)

	for _, ref := range []string{"", "abc.png", "/uploads/", "/uploads/../etc/passwd", "/uploads/a/b.png", "/static/a.png"} {
		_, err := NameFromRef(ref)
		assert.ErrorIs(t, err, ErrInvalidRef, ref)
	}
}

func TestLocalStore_Lifecycle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewLocalStore(dir, 1024)
	require.NoError(t, err)
	ctx := context.Background()

	ref, err := store.Save(ctx, Upload{Filename: "a.png", Reader: bytes.NewReader(pngBytes)})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(ref, PublicPrefix))

	name, err := NameFromRef(ref)
	require.NoError(t, err)

	obj, err := store.Open(ctx, name)
	require.NoError(t, err)
	data, err := io.ReadAll(obj.Body)
	require.NoError(t, obj.Body.Close())
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, int64(len(pngBytes)), obj.Size)

	require.NoError(t, store.Delete(ctx, ref))
	_, err = os.Stat(filepath.Join(dir, name))
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, store.Delete(ctx, ref), "deleting a missing file is not an error")

	_, err = store.Open(ctx, name)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Open(ctx, "../secret")
	assert.ErrorIs(t, err, ErrInvalidRef)
}
