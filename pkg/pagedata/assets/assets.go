// Package assets resolves editor base URLs from blob storage and publishes
// compiled design-options CSS as per-post bundles after a save.
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/tendant/simple-pagedata/pkg/pagedata"
	"github.com/tendant/simple-pagedata/pkg/pagedata/storage"
)

// DefaultAssetsDir is the directory below the upload URL holding editor assets.
const DefaultAssetsDir = "visualcomposer-assets"

// BundleDir is where compiled CSS bundles are published.
const BundleDir = "assets-bundles"

// Resolver implements pagedata.AssetURLResolver over a blob store.
type Resolver struct {
	Store     storage.BlobStore
	AssetsDir string
}

// NewResolver returns a resolver using DefaultAssetsDir.
func NewResolver(store storage.BlobStore) *Resolver {
	return &Resolver{Store: store, AssetsDir: DefaultAssetsDir}
}

// UploadURL implements pagedata.AssetURLResolver.
func (r *Resolver) UploadURL(ctx context.Context) string {
	return r.Store.BaseURL()
}

// AssetURL implements pagedata.AssetURLResolver. The URL ends in a slash.
func (r *Resolver) AssetURL(ctx context.Context) string {
	base := r.Store.BaseURL()
	if base == "" {
		return ""
	}
	dir := r.AssetsDir
	if dir == "" {
		dir = DefaultAssetsDir
	}
	return storage.JoinURL(base, dir) + "/"
}

// BundleKey is the object key of the CSS bundle for postID.
func BundleKey(postID int64) string {
	return BundleDir + "/" + strconv.FormatInt(postID, 10) + ".css"
}

// Publisher writes the compiled design-options CSS of saved posts to the
// blob store.
type Publisher struct {
	store  storage.BlobStore
	meta   pagedata.MetaStore
	logger *slog.Logger
}

// NewPublisher creates a publisher reading CSS from meta.
func NewPublisher(store storage.BlobStore, meta pagedata.MetaStore, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{store: store, meta: meta, logger: logger}
}

// Publish uploads the bundle for postID, or removes it when the post has no
// compiled CSS.
func (p *Publisher) Publish(ctx context.Context, postID int64) error {
	css, err := p.meta.GetMeta(ctx, postID, pagedata.MetaDesignOptionsCSS)
	if err != nil {
		return fmt.Errorf("read compiled css: %w", err)
	}

	key := BundleKey(postID)
	if css == "" {
		if err := p.store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			return fmt.Errorf("remove bundle %s: %w", key, err)
		}
		return nil
	}

	err = p.store.UploadWithParams(ctx, bytes.NewReader([]byte(css)), storage.UploadParams{
		ObjectKey: key,
		MimeType:  "text/css",
	})
	if err != nil {
		return fmt.Errorf("upload bundle %s: %w", key, err)
	}
	p.logger.Debug("Published asset bundle", "post_id", postID, "key", key, "size", len(css))
	return nil
}

// Hooks returns the PostSaved hook publishing bundles.
func (p *Publisher) Hooks() *pagedata.Hooks {
	return &pagedata.Hooks{
		PostSaved: []pagedata.PostSavedHook{
			func(hctx *pagedata.HookContext, saved pagedata.SavedPost) error {
				return p.Publish(hctx.Context, saved.SourceID)
			},
		},
	}
}

var _ pagedata.AssetURLResolver = (*Resolver)(nil)
