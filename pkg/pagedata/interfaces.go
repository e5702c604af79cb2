package pagedata

import (
	"context"
	"encoding/json"
)

// PostStore persists posts. It stands in for the host content store.
type PostStore interface {
	// GetPost returns the post or ErrPostNotFound
	GetPost(ctx context.Context, id int64) (*Post, error)

	// CreatePost inserts a post and assigns its ID
	CreatePost(ctx context.Context, post *Post) error

	// UpdatePost saves an existing post and returns its id. A zero id without
	// an error is treated as a failed save.
	UpdatePost(ctx context.Context, post *Post) (int64, error)

	// GetPreviewRevision returns the preview revision of a post or ErrPostNotFound
	GetPreviewRevision(ctx context.Context, parentID int64) (*Post, error)
}

// MetaStore reads and writes string meta values attached to a post.
// A missing key reads as the empty string.
type MetaStore interface {
	GetMeta(ctx context.Context, postID int64, key string) (string, error)
	UpdateMeta(ctx context.Context, postID int64, key, value string) error
	DeleteMeta(ctx context.Context, postID int64, key string) error
}

// Cache is an object cache in front of the stores.
type Cache interface {
	Flush(ctx context.Context) error
}

// Repository bundles the post store, meta store and its cache.
type Repository interface {
	PostStore
	MetaStore
	Cache
}

// Capabilities answers permission questions for the actor carried by ctx.
type Capabilities interface {
	// CanEdit reports whether the actor may edit the post
	CanEdit(ctx context.Context, post *Post) bool

	// CanPublish reports whether the actor may publish posts of the post's type
	CanPublish(ctx context.Context, post *Post) bool
}

// AssetURLResolver supplies base URLs for the current environment.
type AssetURLResolver interface {
	// AssetURL is the plugin asset base, e.g. https://host/wp-content/uploads/visualcomposer-assets/
	AssetURL(ctx context.Context) string

	// UploadURL is the generic upload base, e.g. https://host/wp-content/uploads
	UploadURL(ctx context.Context) string
}

// TemplateElements looks up stored editor elements for legacy templates.
type TemplateElements interface {
	TemplateElementsByMeta(ctx context.Context, postID int64) (json.RawMessage, error)
}

// Previewer produces the preview revision that receives an unpublished save.
// A nil revision without error means no preview could be generated.
type Previewer interface {
	GeneratePreview(ctx context.Context, post *Post) (*Post, error)
}
