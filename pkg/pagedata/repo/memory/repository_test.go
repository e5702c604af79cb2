package memory_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-pagedata/pkg/pagedata"
	"github.com/tendant/simple-pagedata/pkg/pagedata/repo/memory"
)

type upperSanitizer struct{}

func (upperSanitizer) Sanitize(s string) string { return strings.ToUpper(s) }

func TestRepository_Posts(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	post := &pagedata.Post{Type: pagedata.PostTypePage, Title: "Home"}
	require.NoError(t, repo.CreatePost(ctx, post))
	assert.Equal(t, int64(1), post.ID)
	assert.Equal(t, pagedata.StatusAutoDraft, post.Status)
	assert.False(t, post.CreatedAt.IsZero())

	got, err := repo.GetPost(ctx, post.ID)
	require.NoError(t, err)
	got.Title = "mutated"

	again, err := repo.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Home", again.Title, "returned posts are copies")

	again.Status = pagedata.StatusPublish
	id, err := repo.UpdatePost(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, post.ID, id)

	updated, err := repo.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, pagedata.StatusPublish, updated.Status)
	assert.Equal(t, post.CreatedAt, updated.CreatedAt)

	_, err = repo.GetPost(ctx, 99)
	assert.ErrorIs(t, err, pagedata.ErrPostNotFound)
	_, err = repo.UpdatePost(ctx, &pagedata.Post{ID: 99})
	assert.ErrorIs(t, err, pagedata.ErrPostNotFound)
}

func TestRepository_PreviewRevision(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	parent := &pagedata.Post{Type: pagedata.PostTypePage}
	require.NoError(t, repo.CreatePost(ctx, parent))

	_, err := repo.GetPreviewRevision(ctx, parent.ID)
	assert.ErrorIs(t, err, pagedata.ErrPostNotFound)

	rev := &pagedata.Post{Type: pagedata.PostTypeRevision, Status: pagedata.StatusInherit, ParentID: parent.ID}
	require.NoError(t, repo.CreatePost(ctx, rev))

	got, err := repo.GetPreviewRevision(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, rev.ID, got.ID)

	pages, err := repo.ListPosts(ctx, pagedata.PostTypePage)
	require.NoError(t, err)
	assert.Len(t, pages, 1)
	all, err := repo.ListPosts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRepository_Meta(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	post := &pagedata.Post{Type: pagedata.PostTypePage}
	require.NoError(t, repo.CreatePost(ctx, post))

	v, err := repo.GetMeta(ctx, post.ID, "k")
	require.NoError(t, err)
	assert.Equal(t, "", v)
	assert.False(t, repo.HasMeta(post.ID, "k"))

	require.NoError(t, repo.UpdateMeta(ctx, post.ID, "k", "v"))
	v, _ = repo.GetMeta(ctx, post.ID, "k")
	assert.Equal(t, "v", v)
	assert.True(t, repo.HasMeta(post.ID, "k"))

	require.NoError(t, repo.DeleteMeta(ctx, post.ID, "k"))
	require.NoError(t, repo.DeleteMeta(ctx, post.ID, "k"))
	assert.False(t, repo.HasMeta(post.ID, "k"))

	assert.ErrorIs(t, repo.UpdateMeta(ctx, 99, "k", "v"), pagedata.ErrPostNotFound)
	require.NoError(t, repo.DeleteMeta(ctx, 99, "k"))
}

func TestRepository_Sanitizer(t *testing.T) {
	repo := memory.New(memory.WithSanitizer(upperSanitizer{}))
	ctx := context.Background()

	post := &pagedata.Post{Type: pagedata.PostTypePage, Content: "<b>x</b>"}
	require.NoError(t, repo.CreatePost(ctx, post))
	got, _ := repo.GetPost(ctx, post.ID)
	assert.Equal(t, "<B>X</B>", got.Content)

	got.Content = "<b>kept</b>"
	_, err := repo.UpdatePost(pagedata.WithTrustedContent(ctx), got)
	require.NoError(t, err)
	got, _ = repo.GetPost(ctx, post.ID)
	assert.Equal(t, "<b>kept</b>", got.Content)
}

func TestRepository_Flush(t *testing.T) {
	repo := memory.New()
	require.NoError(t, repo.Flush(context.Background()))
	require.NoError(t, repo.Flush(context.Background()))
	assert.Equal(t, 2, repo.Flushes())
}

func TestRepository_Concurrent(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	post := &pagedata.Post{Type: pagedata.PostTypePage}
	require.NoError(t, repo.CreatePost(ctx, post))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.UpdateMeta(ctx, post.ID, pagedata.MetaPageContent, "v")
			_, _ = repo.GetMeta(ctx, post.ID, pagedata.MetaPageContent)
			p, _ := repo.GetPost(ctx, post.ID)
			_, _ = repo.UpdatePost(ctx, p)
		}()
	}
	wg.Wait()

	v, _ := repo.GetMeta(ctx, post.ID, pagedata.MetaPageContent)
	assert.Equal(t, "v", v)
}
