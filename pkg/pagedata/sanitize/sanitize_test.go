package sanitize_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-pagedata/pkg/pagedata"
	"github.com/tendant/simple-pagedata/pkg/pagedata/repo/memory"
	"github.com/tendant/simple-pagedata/pkg/pagedata/sanitize"
)

func TestPolicy(t *testing.T) {
	p := sanitize.New()

	out := p.Sanitize(`<p class="lead" data-vce-id="x1">hi<script>alert(1)</script></p>`)
	assert.Contains(t, out, `class="lead"`)
	assert.Contains(t, out, `data-vce-id="x1"`)
	assert.NotContains(t, out, "<script>")

	assert.Equal(t, "hi", sanitize.Strict().Sanitize("<b>hi</b>"))
}

func TestTrustedSavesBypassPolicy(t *testing.T) {
	repo := memory.New(memory.WithSanitizer(sanitize.New()))
	ctx := context.Background()

	post := &pagedata.Post{Type: pagedata.PostTypePage, Content: `<script>x()</script><p>ok</p>`}
	require.NoError(t, repo.CreatePost(ctx, post))
	stored, err := repo.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "<p>ok</p>", stored.Content)

	c, err := pagedata.New(pagedata.WithRepository(repo), pagedata.WithCapabilities(pagedata.AllowAll{}))
	require.NoError(t, err)

	editorMarkup := `<div onclick="vce.open()"><script>vce.init()</script></div>`
	resp := c.SetData(ctx, pagedata.Values{pagedata.FieldReady: "1", pagedata.FieldContent: editorMarkup}, nil, pagedata.Payload{"sourceId": post.ID})
	require.True(t, resp.OK())

	stored, err = repo.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, editorMarkup, stored.Content)
}
