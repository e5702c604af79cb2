package pagedata_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tendant/simple-pagedata/pkg/pagedata"
)

func TestActorCapabilities(t *testing.T) {
	caps := pagedata.NewActorCapabilities()
	own := &pagedata.Post{ID: 1, Type: pagedata.PostTypePage, AuthorID: 10, Status: pagedata.StatusDraft}
	published := &pagedata.Post{ID: 2, Type: pagedata.PostTypePost, AuthorID: 10, Status: pagedata.StatusPublish}
	foreign := &pagedata.Post{ID: 3, Type: pagedata.PostTypePage, AuthorID: 20, Status: pagedata.StatusDraft}

	tests := []struct {
		name        string
		actor       *pagedata.Actor
		post        *pagedata.Post
		wantEdit    bool
		wantPublish bool
	}{
		{"anonymous", nil, own, false, false},
		{"author without caps", pagedata.NewActor(10), own, false, false},
		{"contributor", pagedata.NewActor(10, pagedata.CapEditPosts), own, true, false},
		{"page publisher", pagedata.NewActor(10, pagedata.CapEditPosts, pagedata.CapPublishPages), own, true, true},
		{"post publisher cannot publish pages", pagedata.NewActor(10, pagedata.CapEditPosts, pagedata.CapPublishPosts), own, true, false},
		{"published needs edit_published_posts", pagedata.NewActor(10, pagedata.CapEditPosts, pagedata.CapPublishPosts), published, false, true},
		{"published with cap", pagedata.NewActor(10, pagedata.CapEditPosts, pagedata.CapEditPublishedPosts, pagedata.CapPublishPosts), published, true, true},
		{"foreign post", pagedata.NewActor(10, pagedata.CapEditPosts), foreign, false, false},
		{"editor of others", pagedata.NewActor(10, pagedata.CapEditOthersPosts), foreign, true, false},
		{"publisher without edit access", pagedata.NewActor(10, pagedata.CapPublishPages), foreign, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.actor != nil {
				ctx = pagedata.ContextWithActor(ctx, tt.actor)
			}
			assert.Equal(t, tt.wantEdit, caps.CanEdit(ctx, tt.post))
			assert.Equal(t, tt.wantPublish, caps.CanPublish(ctx, tt.post))
		})
	}
}

func TestAllowAll(t *testing.T) {
	var caps pagedata.Capabilities = pagedata.AllowAll{}
	assert.True(t, caps.CanEdit(context.Background(), &pagedata.Post{}))
	assert.True(t, caps.CanPublish(context.Background(), &pagedata.Post{}))
}

func TestActorFromContext(t *testing.T) {
	assert.Nil(t, pagedata.ActorFromContext(context.Background()))
	actor := pagedata.NewActor(4, "x")
	got := pagedata.ActorFromContext(pagedata.ContextWithActor(context.Background(), actor))
	assert.Equal(t, actor, got)
	assert.True(t, got.Can("x"))
	assert.False(t, got.Can("y"))
}
