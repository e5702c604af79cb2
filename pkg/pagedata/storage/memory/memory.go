package memory

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/tendant/simple-pagedata/pkg/pagedata/storage"
)

// Backend is an in-memory implementation of the storage.BlobStore interface
type Backend struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]object
}

type object struct {
	data      []byte
	mimeType  string
	updatedAt time.Time
}

// New creates a new in-memory storage backend serving objects under baseURL
func New(baseURL string) *Backend {
	return &Backend{
		baseURL: baseURL,
		objects: make(map[string]object),
	}
}

// BaseURL implements storage.BlobStore
func (b *Backend) BaseURL() string {
	return b.baseURL
}

// GetObjectMeta retrieves metadata for an object in memory
func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*storage.ObjectMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[objectKey]
	if !exists {
		return nil, storage.ErrObjectNotFound
	}

	return &storage.ObjectMeta{
		Key:         objectKey,
		Size:        int64(len(obj.data)),
		ContentType: obj.mimeType,
		UpdatedAt:   obj.updatedAt,
	}, nil
}

// Upload uploads content directly
func (b *Backend) Upload(ctx context.Context, objectKey string, reader io.Reader) error {
	return b.UploadWithParams(ctx, reader, storage.UploadParams{ObjectKey: objectKey})
}

// UploadWithParams uploads content with parameters
func (b *Backend) UploadWithParams(ctx context.Context, reader io.Reader, params storage.UploadParams) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	mimeType := params.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	b.objects[params.ObjectKey] = object{data: data, mimeType: mimeType, updatedAt: time.Now().UTC()}
	return nil
}

// Download downloads content directly
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[objectKey]
	if !exists {
		return nil, storage.ErrObjectNotFound
	}

	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

// Delete deletes content
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[objectKey]; !exists {
		return storage.ErrObjectNotFound
	}

	delete(b.objects, objectKey)
	return nil
}

var _ storage.BlobStore = (*Backend)(nil)
