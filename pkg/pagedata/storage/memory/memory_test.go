package memory

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-pagedata/pkg/pagedata/storage"
)

func TestMemoryBackend_BasicOps(t *testing.T) {
	b := New("https://cdn.test/uploads")
	ctx := context.Background()

	require.NoError(t, b.UploadWithParams(ctx, bytes.NewReader([]byte("body{}")), storage.UploadParams{
		ObjectKey: "assets-bundles/1.css",
		MimeType:  "text/css",
	}))

	meta, err := b.GetObjectMeta(ctx, "assets-bundles/1.css")
	require.NoError(t, err)
	assert.Equal(t, int64(6), meta.Size)
	assert.Equal(t, "text/css", meta.ContentType)

	rc, err := b.Download(ctx, "assets-bundles/1.css")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "body{}", string(data))

	assert.Equal(t, "https://cdn.test/uploads/assets-bundles/1.css", storage.ObjectURL(b, "assets-bundles/1.css"))

	require.NoError(t, b.Delete(ctx, "assets-bundles/1.css"))
	assert.ErrorIs(t, b.Delete(ctx, "assets-bundles/1.css"), storage.ErrObjectNotFound)
	_, err = b.Download(ctx, "assets-bundles/1.css")
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
	_, err = b.GetObjectMeta(ctx, "assets-bundles/1.css")
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}

func TestMemoryBackend_DefaultMimeType(t *testing.T) {
	b := New("")
	ctx := context.Background()

	require.NoError(t, b.Upload(ctx, "k", bytes.NewReader(nil)))
	meta, err := b.GetObjectMeta(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", meta.ContentType)
	assert.Equal(t, "", storage.ObjectURL(b, "k"))
}
