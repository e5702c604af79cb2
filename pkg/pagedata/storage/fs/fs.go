package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/tendant/simple-pagedata/pkg/pagedata/storage"
)

// Backend is a filesystem implementation of the storage.BlobStore interface
type Backend struct {
	baseDir   string
	urlPrefix string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir   string // Base directory for storing files
	URLPrefix string // Public URL the base directory is served under
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	baseDir, err := filepath.Abs(config.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	return &Backend{
		baseDir:   baseDir,
		urlPrefix: config.URLPrefix,
	}, nil
}

// BaseURL implements storage.BlobStore
func (b *Backend) BaseURL() string {
	return b.urlPrefix
}

// path maps objectKey below the base directory, rejecting keys that escape it
func (b *Backend) path(objectKey string) (string, error) {
	p := filepath.Join(b.baseDir, filepath.FromSlash(objectKey))
	if p == b.baseDir || !strings.HasPrefix(p, b.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object key %q", objectKey)
	}
	return p, nil
}

// GetObjectMeta retrieves metadata for an object in the filesystem
func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*storage.ObjectMeta, error) {
	filePath, err := b.path(objectKey)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, storage.ErrObjectNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	return &storage.ObjectMeta{
		Key:         objectKey,
		Size:        info.Size(),
		ContentType: detectContentType(filePath),
		UpdatedAt:   info.ModTime(),
	}, nil
}

// detectContentType prefers the extension and falls back to sniffing
func detectContentType(filePath string) string {
	if ct := mime.TypeByExtension(filepath.Ext(filePath)); ct != "" {
		return ct
	}
	contentType := "application/octet-stream"
	if file, err := os.Open(filePath); err == nil {
		defer file.Close()
		buffer := make([]byte, 512)
		if n, err := file.Read(buffer); err == nil {
			contentType = http.DetectContentType(buffer[:n])
		}
	}
	return contentType
}

// Upload uploads content directly to the filesystem
func (b *Backend) Upload(ctx context.Context, objectKey string, reader io.Reader) error {
	filePath, err := b.path(objectKey)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// UploadWithParams uploads content with additional parameters
func (b *Backend) UploadWithParams(ctx context.Context, reader io.Reader, params storage.UploadParams) error {
	// MIME type is derived from the file on read
	return b.Upload(ctx, params.ObjectKey, reader)
}

// Download downloads content directly from the filesystem
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	filePath, err := b.path(objectKey)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if os.IsNotExist(err) {
		return nil, storage.ErrObjectNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Delete deletes content from the filesystem
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	filePath, err := b.path(objectKey)
	if err != nil {
		return err
	}

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return storage.ErrObjectNotFound
	}

	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	b.cleanupEmptyDirectories(filepath.Dir(filePath))
	return nil
}

// cleanupEmptyDirectories recursively removes empty directories up to baseDir
func (b *Backend) cleanupEmptyDirectories(dir string) {
	if dir == b.baseDir {
		return
	}

	if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
		if os.Remove(dir) == nil {
			b.cleanupEmptyDirectories(filepath.Dir(dir))
		}
	}
}

var _ storage.BlobStore = (*Backend)(nil)
