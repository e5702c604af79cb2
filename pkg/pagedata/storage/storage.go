// Package storage defines the blob store that holds uploads and published
// asset bundles. Its base URL is what stored content refers to, and what the
// portability rewrite replaces with placeholder tokens.
package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

// ErrObjectNotFound is returned when an object key does not exist
var ErrObjectNotFound = errors.New("object not found")

// BlobStore defines the interface for storage backends
type BlobStore interface {
	// Upload uploads content directly
	Upload(ctx context.Context, objectKey string, reader io.Reader) error

	// UploadWithParams uploads content with additional parameters
	UploadWithParams(ctx context.Context, reader io.Reader, params UploadParams) error

	// Download downloads content directly
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete deletes content
	Delete(ctx context.Context, objectKey string) error

	// GetObjectMeta retrieves metadata for an object
	GetObjectMeta(ctx context.Context, objectKey string) (*ObjectMeta, error)

	// BaseURL is the public URL objects are served under, or "" when the
	// store is not publicly served
	BaseURL() string
}

// ObjectMeta contains metadata about an object in storage
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
}

// UploadParams contains parameters for uploading an object
type UploadParams struct {
	ObjectKey string
	MimeType  string
}

// ObjectURL joins the store's base URL and objectKey. It returns "" when the
// store has no public base URL.
func ObjectURL(store BlobStore, objectKey string) string {
	base := store.BaseURL()
	if base == "" {
		return ""
	}
	return JoinURL(base, objectKey)
}

// JoinURL joins base and p with exactly one slash.
func JoinURL(base, p string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(p, "/")
}
