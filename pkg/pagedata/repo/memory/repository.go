package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tendant/simple-pagedata/pkg/pagedata"
)

// Repository implements pagedata.Repository using in-memory storage
type Repository struct {
	mu        sync.RWMutex
	nextID    int64
	posts     map[int64]*pagedata.Post
	meta      map[int64]map[string]string
	previews  map[int64]int64 // parent_id -> revision_id
	sanitizer pagedata.Sanitizer
	flushes   int
}

// Option configures the repository
type Option func(*Repository)

// WithSanitizer sets the sanitizer applied to untrusted post content
func WithSanitizer(s pagedata.Sanitizer) Option {
	return func(r *Repository) {
		r.sanitizer = s
	}
}

// New creates a new in-memory repository
func New(opts ...Option) *Repository {
	r := &Repository{
		posts:    make(map[int64]*pagedata.Post),
		meta:     make(map[int64]map[string]string),
		previews: make(map[int64]int64),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Post operations

func (r *Repository) GetPost(ctx context.Context, id int64) (*pagedata.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, exists := r.posts[id]
	if !exists {
		return nil, pagedata.ErrPostNotFound
	}
	// Return a copy to prevent external modifications
	return post.Clone(), nil
}

func (r *Repository) CreatePost(ctx context.Context, post *pagedata.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	post.ID = r.nextID
	now := time.Now().UTC()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.UpdatedAt = now
	if post.Status == "" {
		post.Status = pagedata.StatusAutoDraft
	}
	post.Content = pagedata.SanitizeUnlessTrusted(ctx, r.sanitizer, post.Content)

	r.posts[post.ID] = post.Clone()
	if post.Type == pagedata.PostTypeRevision && post.ParentID != 0 {
		r.previews[post.ParentID] = post.ID
	}
	return nil
}

func (r *Repository) UpdatePost(ctx context.Context, post *pagedata.Post) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.posts[post.ID]
	if !exists {
		return 0, pagedata.ErrPostNotFound
	}

	c := post.Clone()
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now().UTC()
	c.Content = pagedata.SanitizeUnlessTrusted(ctx, r.sanitizer, c.Content)
	r.posts[post.ID] = c
	return post.ID, nil
}

func (r *Repository) GetPreviewRevision(ctx context.Context, parentID int64) (*pagedata.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.previews[parentID]
	if !exists {
		return nil, pagedata.ErrPostNotFound
	}
	post, exists := r.posts[id]
	if !exists {
		return nil, pagedata.ErrPostNotFound
	}
	return post.Clone(), nil
}

// ListPosts returns posts of the given type ordered by id. An empty type
// lists all posts.
func (r *Repository) ListPosts(ctx context.Context, postType string) ([]*pagedata.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*pagedata.Post
	for _, post := range r.posts {
		if postType == "" || post.Type == postType {
			result = append(result, post.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// Meta operations

func (r *Repository) GetMeta(ctx context.Context, postID int64, key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.meta[postID][key], nil
}

func (r *Repository) UpdateMeta(ctx context.Context, postID int64, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.posts[postID]; !exists {
		return pagedata.ErrPostNotFound
	}
	m, ok := r.meta[postID]
	if !ok {
		m = make(map[string]string)
		r.meta[postID] = m
	}
	m[key] = value
	return nil
}

func (r *Repository) DeleteMeta(ctx context.Context, postID int64, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.meta[postID], key)
	return nil
}

// HasMeta reports whether key is stored for the post
func (r *Repository) HasMeta(postID int64, key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.meta[postID][key]
	return ok
}

// Cache operations

// Flush counts flushes; there is nothing cached in memory
func (r *Repository) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.flushes++
	return nil
}

// Flushes returns how often Flush was called
func (r *Repository) Flushes() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.flushes
}

var _ pagedata.Repository = (*Repository)(nil)
