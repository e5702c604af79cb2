package pagedata

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// NoopCache is a no-operation implementation of Cache
type NoopCache struct{}

// Flush does nothing and returns nil
func (NoopCache) Flush(context.Context) error { return nil }

// StaticAssetURLs resolves fixed base URLs, typically taken from configuration.
type StaticAssetURLs struct {
	Assets  string
	Uploads string
}

// AssetURL implements AssetURLResolver.
func (s StaticAssetURLs) AssetURL(context.Context) string { return s.Assets }

// UploadURL implements AssetURLResolver.
func (s StaticAssetURLs) UploadURL(context.Context) string { return s.Uploads }

// MetaTemplateElements reads legacy template elements from post meta.
type MetaTemplateElements struct {
	Meta MetaStore
}

// TemplateElementsByMeta implements TemplateElements. Templates without
// stored elements yield an empty list.
func (m MetaTemplateElements) TemplateElementsByMeta(ctx context.Context, postID int64) (json.RawMessage, error) {
	raw, err := m.Meta.GetMeta(ctx, postID, MetaTemplateElementsKey)
	if err != nil {
		return nil, err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" || !json.Valid([]byte(raw)) {
		return json.RawMessage("[]"), nil
	}
	return json.RawMessage(raw), nil
}

// RevisionPreviewer keeps one preview revision per post and refreshes it
// with the post's current content. A missing revision is returned unsaved
// with a zero ID; the caller inserts it once the parent save succeeds.
type RevisionPreviewer struct {
	Posts PostStore
}

// GeneratePreview implements Previewer.
func (p RevisionPreviewer) GeneratePreview(ctx context.Context, post *Post) (*Post, error) {
	rev, err := p.Posts.GetPreviewRevision(ctx, post.ID)
	if errors.Is(err, ErrPostNotFound) {
		now := time.Now().UTC()
		rev = &Post{
			Type:      PostTypeRevision,
			Status:    StatusInherit,
			Title:     post.Title,
			AuthorID:  post.AuthorID,
			ParentID:  post.ID,
			CreatedAt: now,
			UpdatedAt: now,
		}
	} else if err != nil {
		return nil, err
	}
	rev.Title = post.Title
	rev.Content = post.Content
	return rev, nil
}
