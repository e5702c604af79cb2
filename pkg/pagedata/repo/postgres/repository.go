package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-pagedata/pkg/pagedata"
)

//go:embed schema.sql
var schema string

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements pagedata.Repository using PostgreSQL. It holds no
// state between calls; every read goes to the database.
type Repository struct {
	db        DBTX
	sanitizer pagedata.Sanitizer
}

// Option configures the repository
type Option func(*Repository)

// WithSanitizer sets the sanitizer applied to untrusted post content
func WithSanitizer(s pagedata.Sanitizer) Option {
	return func(r *Repository) {
		r.sanitizer = s
	}
}

// New creates a new PostgreSQL repository
func New(db DBTX, opts ...Option) *Repository {
	r := &Repository{db: db}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool, opts ...Option) *Repository {
	return New(pool, opts...)
}

// Migrate creates the tables used by the repository when missing.
func Migrate(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return handlePostgresError("migrate", err)
	}
	return nil
}

// Error handling helper
func handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("duplicate entry")
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: %w", operation, pagedata.ErrPostNotFound)
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return pagedata.ErrPostNotFound
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

const postColumns = `id, post_type, status, title, content, author_id, parent_id, created_at, updated_at`

func scanPost(row pgx.Row) (*pagedata.Post, error) {
	var post pagedata.Post
	err := row.Scan(
		&post.ID, &post.Type, &post.Status, &post.Title, &post.Content,
		&post.AuthorID, &post.ParentID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Post operations

func (r *Repository) GetPost(ctx context.Context, id int64) (*pagedata.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	post, err := scanPost(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, handlePostgresError("get post", err)
	}
	return post, nil
}

func (r *Repository) CreatePost(ctx context.Context, post *pagedata.Post) error {
	query := `
		INSERT INTO posts (
			post_type, status, title, content, author_id, parent_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	now := time.Now().UTC()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.UpdatedAt = now
	if post.Status == "" {
		post.Status = pagedata.StatusAutoDraft
	}
	post.Content = pagedata.SanitizeUnlessTrusted(ctx, r.sanitizer, post.Content)

	err := r.db.QueryRow(ctx, query,
		post.Type, post.Status, post.Title, post.Content,
		post.AuthorID, post.ParentID, post.CreatedAt, post.UpdatedAt).Scan(&post.ID)
	if err != nil {
		return handlePostgresError("create post", err)
	}
	return nil
}

func (r *Repository) UpdatePost(ctx context.Context, post *pagedata.Post) (int64, error) {
	query := `
		UPDATE posts SET
			post_type = $2, status = $3, title = $4, content = $5,
			author_id = $6, parent_id = $7, updated_at = $8
		WHERE id = $1
		RETURNING id`

	content := pagedata.SanitizeUnlessTrusted(ctx, r.sanitizer, post.Content)

	var id int64
	err := r.db.QueryRow(ctx, query,
		post.ID, post.Type, post.Status, post.Title, content,
		post.AuthorID, post.ParentID, time.Now().UTC()).Scan(&id)
	if err != nil {
		return 0, handlePostgresError("update post", err)
	}
	return id, nil
}

func (r *Repository) GetPreviewRevision(ctx context.Context, parentID int64) (*pagedata.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts
		WHERE parent_id = $1 AND post_type = $2
		ORDER BY id DESC LIMIT 1`

	post, err := scanPost(r.db.QueryRow(ctx, query, parentID, pagedata.PostTypeRevision))
	if err != nil {
		return nil, handlePostgresError("get preview revision", err)
	}
	return post, nil
}

// ListPosts returns posts of the given type ordered by id. An empty type
// lists all posts.
func (r *Repository) ListPosts(ctx context.Context, postType string) ([]*pagedata.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE ($1 = '' OR post_type = $1) ORDER BY id`

	rows, err := r.db.Query(ctx, query, postType)
	if err != nil {
		return nil, handlePostgresError("list posts", err)
	}
	defer rows.Close()

	var result []*pagedata.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, handlePostgresError("scan post", err)
		}
		result = append(result, post)
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgresError("list posts", err)
	}
	return result, nil
}

// Meta operations

func (r *Repository) GetMeta(ctx context.Context, postID int64, key string) (string, error) {
	query := `SELECT meta_value FROM post_meta WHERE post_id = $1 AND meta_key = $2`

	var value string
	err := r.db.QueryRow(ctx, query, postID, key).Scan(&value)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return "", handlePostgresError("get meta", err)
	}
	return value, nil
}

func (r *Repository) UpdateMeta(ctx context.Context, postID int64, key, value string) error {
	query := `
		INSERT INTO post_meta (post_id, meta_key, meta_value)
		VALUES ($1, $2, $3)
		ON CONFLICT (post_id, meta_key) DO UPDATE SET meta_value = EXCLUDED.meta_value`

	if _, err := r.db.Exec(ctx, query, postID, key, value); err != nil {
		return handlePostgresError("update meta", err)
	}
	return nil
}

func (r *Repository) DeleteMeta(ctx context.Context, postID int64, key string) error {
	query := `DELETE FROM post_meta WHERE post_id = $1 AND meta_key = $2`

	if _, err := r.db.Exec(ctx, query, postID, key); err != nil {
		return handlePostgresError("delete meta", err)
	}
	return nil
}

// Cache operations

// Flush implements pagedata.Cache. Nothing is cached, so there is nothing to drop.
func (r *Repository) Flush(ctx context.Context) error {
	return nil
}

var _ pagedata.Repository = (*Repository)(nil)
