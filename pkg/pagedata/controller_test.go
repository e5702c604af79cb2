package pagedata_test

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-pagedata/pkg/pagedata"
	"github.com/tendant/simple-pagedata/pkg/pagedata/repo/memory"
)

const (
	testAssetURL  = "https://example.com/wp-content/uploads/vc-assets/"
	testUploadURL = "https://example.com/wp-content/uploads"
)

// failingRepository rejects post updates
type failingRepository struct {
	*memory.Repository
	zeroID bool
}

func (f *failingRepository) UpdatePost(ctx context.Context, post *pagedata.Post) (int64, error) {
	if f.zeroID {
		return 0, nil
	}
	return 0, errors.New("disk full")
}

// failingMetaRepository rejects meta writes
type failingMetaRepository struct {
	*memory.Repository
}

func (f *failingMetaRepository) UpdateMeta(ctx context.Context, postID int64, key, value string) error {
	return errors.New("meta table locked")
}

func setupTestController(t *testing.T, repo pagedata.Repository, opts ...pagedata.Option) *pagedata.Controller {
	t.Helper()
	options := append([]pagedata.Option{
		pagedata.WithRepository(repo),
		pagedata.WithAssetURLs(pagedata.StaticAssetURLs{Assets: testAssetURL, Uploads: testUploadURL}),
	}, opts...)
	c, err := pagedata.New(options...)
	require.NoError(t, err)
	return c
}

func createPost(t *testing.T, repo *memory.Repository, post *pagedata.Post) *pagedata.Post {
	t.Helper()
	require.NoError(t, repo.CreatePost(context.Background(), post))
	return post
}

func editorCtx(authorID int64, caps ...string) context.Context {
	return pagedata.ContextWithActor(context.Background(), pagedata.NewActor(authorID, caps...))
}

func readyRequest(extra map[string]string) pagedata.Values {
	v := pagedata.Values{pagedata.FieldReady: "1"}
	for k, val := range extra {
		v[k] = val
	}
	return v
}

func TestControllerCreation(t *testing.T) {
	tests := []struct {
		name        string
		options     []pagedata.Option
		expectError bool
	}{
		{
			name:        "no options should fail",
			options:     []pagedata.Option{},
			expectError: true,
		},
		{
			name:        "post store without meta store should fail",
			options:     []pagedata.Option{pagedata.WithPostStore(memory.New())},
			expectError: true,
		},
		{
			name:        "with repository should succeed",
			options:     []pagedata.Option{pagedata.WithRepository(memory.New())},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := pagedata.New(tt.options...)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, c)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, c)
			}
		})
	}
}

func TestGetData(t *testing.T) {
	ctx := context.Background()

	t.Run("NoCurrentPost", func(t *testing.T) {
		c := setupTestController(t, memory.New())
		resp := c.GetData(ctx, nil, pagedata.Response{"keep": 1}, nil)
		assert.Equal(t, pagedata.Response{"status": false}, resp)
	})

	t.Run("PageContentIsAuthoritative", func(t *testing.T) {
		for _, typ := range []string{pagedata.PostTypePage, pagedata.PostTypeTemplate, pagedata.PostTypeTutorial} {
			repo := memory.New()
			c := setupTestController(t, repo)
			post := createPost(t, repo, &pagedata.Post{Type: typ, Content: "<p>hi</p>"})
			require.NoError(t, repo.UpdateMeta(ctx, post.ID, pagedata.MetaPageContent, "%7B%22elements%22%3A%7B%7D%7D"))
			require.NoError(t, repo.UpdateMeta(ctx, post.ID, pagedata.MetaTemplateElementsKey, `{"a":{"tag":"row"}}`))
			require.NoError(t, repo.UpdateMeta(ctx, post.ID, pagedata.MetaGlobalElementsCSS, "css-data"))

			resp := c.GetData(ctx, post, nil, nil)
			assert.True(t, resp.OK(), typ)
			assert.Equal(t, "%7B%22elements%22%3A%7B%7D%7D", resp["data"], typ)
			assert.Equal(t, "<p>hi</p>", resp["post_content"], typ)
			assert.Equal(t, "css-data", resp["elementsCssData"], typ)
		}
	})

	t.Run("TemplateFallback", func(t *testing.T) {
		repo := memory.New()
		c := setupTestController(t, repo)
		post := createPost(t, repo, &pagedata.Post{Type: pagedata.PostTypeTutorial})
		require.NoError(t, repo.UpdateMeta(ctx, post.ID, pagedata.MetaTemplateElementsKey, `{"el1":{"tag":"text"}}`))

		resp := c.GetData(ctx, post, nil, nil)
		require.True(t, resp.OK())
		decoded, err := url.PathUnescape(resp["data"].(string))
		require.NoError(t, err)
		assert.JSONEq(t, `{"elements":{"el1":{"tag":"text"}}}`, decoded)
		assert.NotContains(t, resp["data"], "+")
	})

	t.Run("TemplateFallbackWithoutElements", func(t *testing.T) {
		repo := memory.New()
		c := setupTestController(t, repo)
		post := createPost(t, repo, &pagedata.Post{Type: pagedata.PostTypeTemplate})

		resp := c.GetData(ctx, post, nil, nil)
		decoded, err := url.PathUnescape(resp["data"].(string))
		require.NoError(t, err)
		assert.JSONEq(t, `{"elements":[]}`, decoded)
	})

	t.Run("OrdinaryPageWithoutContent", func(t *testing.T) {
		repo := memory.New()
		c := setupTestController(t, repo)
		post := createPost(t, repo, &pagedata.Post{Type: pagedata.PostTypePage})

		resp := c.GetData(ctx, post, nil, nil)
		assert.True(t, resp.OK())
		assert.Equal(t, "", resp["data"])
	})

	t.Run("HubTemplateDropsStalePageContent", func(t *testing.T) {
		repo := memory.New()
		c := setupTestController(t, repo)
		post := createPost(t, repo, &pagedata.Post{Type: pagedata.PostTypeTemplate})
		require.NoError(t, repo.UpdateMeta(ctx, post.ID, pagedata.MetaTemplateType, pagedata.TemplateTypeHub))
		require.NoError(t, repo.UpdateMeta(ctx, post.ID, pagedata.MetaPageContent, "stale"))
		require.NoError(t, repo.UpdateMeta(ctx, post.ID, pagedata.MetaTemplateElementsKey, `{"x":{}}`))

		resp := c.GetData(ctx, post, nil, nil)
		assert.False(t, repo.HasMeta(post.ID, pagedata.MetaPageContent))
		assert.NotEqual(t, "stale", resp["data"])

		// Idempotent on repeat
		resp = c.GetData(ctx, post, nil, nil)
		assert.True(t, resp.OK())
	})

	t.Run("HooksAddFields", func(t *testing.T) {
		repo := memory.New()
		hooks := &pagedata.Hooks{
			GetData: []pagedata.GetDataHook{
				func(hctx *pagedata.HookContext, extra pagedata.Response, payload pagedata.Payload) (pagedata.Response, error) {
					extra["settings"] = payload["mode"]
					return extra, nil
				},
			},
		}
		c := setupTestController(t, repo, pagedata.WithHooks(hooks))
		post := createPost(t, repo, &pagedata.Post{Type: pagedata.PostTypePage})

		resp := c.GetData(ctx, post, pagedata.Response{"existing": "yes"}, pagedata.Payload{"mode": "frontend"})
		assert.Equal(t, "frontend", resp["settings"])
		assert.Equal(t, "yes", resp["existing"])
		assert.True(t, resp.OK())
	})

	t.Run("FailingHook", func(t *testing.T) {
		repo := memory.New()
		hooks := &pagedata.Hooks{
			GetData: []pagedata.GetDataHook{
				func(hctx *pagedata.HookContext, extra pagedata.Response, payload pagedata.Payload) (pagedata.Response, error) {
					return nil, errors.New("boom")
				},
			},
		}
		c := setupTestController(t, repo, pagedata.WithHooks(hooks))
		post := createPost(t, repo, &pagedata.Post{Type: pagedata.PostTypePage})

		assert.Equal(t, pagedata.Failure(), c.GetData(ctx, post, nil, nil))
	})
}

func TestSetDataPreconditions(t *testing.T) {
	repo := memory.New()
	c := setupTestController(t, repo)
	post := createPost(t, repo, &pagedata.Post{Type: pagedata.PostTypePage, AuthorID: 7, Status: pagedata.StatusDraft})
	ctx := editorCtx(7, pagedata.CapEditPosts, pagedata.CapPublishPages)

	t.Run("MissingSourceID", func(t *testing.T) {
		resp := c.SetData(ctx, readyRequest(map[string]string{pagedata.FieldContent: "x"}), pagedata.Response{"a": 1}, pagedata.Payload{})
		assert.Equal(t, pagedata.Response{"status": false}, resp)
		stored, err := repo.GetPost(context.Background(), post.ID)
		require.NoError(t, err)
		assert.Equal(t, "", stored.Content)
		assert.False(t, repo.HasMeta(post.ID, pagedata.MetaPageContent))
	})

	t.Run("NotReadyIsIdentity", func(t *testing.T) {
		in := pagedata.Response{"untouched": true}
		resp := c.SetData(ctx, pagedata.Values{pagedata.FieldContent: "x"}, in, pagedata.Payload{"sourceId": post.ID})
		assert.Equal(t, in, resp)

		resp = c.SetData(ctx, pagedata.Values{pagedata.FieldReady: "true"}, nil, pagedata.Payload{"sourceId": post.ID})
		assert.Nil(t, resp)
		assert.False(t, repo.HasMeta(post.ID, pagedata.MetaPageContent))
	})

	t.Run("NonNumericSourceID", func(t *testing.T) {
		resp := c.SetData(ctx, readyRequest(nil), nil, pagedata.Payload{"sourceId": "abc"})
		assert.Equal(t, pagedata.Failure(), resp)
	})

	t.Run("UnknownPost", func(t *testing.T) {
		resp := c.SetData(ctx, readyRequest(nil), nil, pagedata.Payload{"sourceId": 9999})
		assert.Equal(t, pagedata.Failure(), resp)
	})

	t.Run("AccessDenied", func(t *testing.T) {
		other := editorCtx(8, pagedata.CapEditPosts)
		resp := c.SetData(other, readyRequest(map[string]string{pagedata.FieldContent: "x"}), nil, pagedata.Payload{"sourceId": post.ID})
		assert.Equal(t, pagedata.Failure(), resp)
		assert.False(t, repo.HasMeta(post.ID, pagedata.MetaPageContent))
	})

	t.Run("CheckedSourceWaivesAccessCheck", func(t *testing.T) {
		other := editorCtx(8)
		source := map[string]interface{}{"status": true, "sourceId": float64(post.ID), "accessCheck": false}
		resp := c.SetData(other, readyRequest(map[string]string{pagedata.FieldData: `{}`}), nil, pagedata.Payload{"sourceId": source})
		assert.True(t, resp.OK())
	})

	t.Run("CheckedSourceWaivesAccessCheckButPublishes", func(t *testing.T) {
		foreign := createPost(t, repo, &pagedata.Post{Type: pagedata.PostTypePage, AuthorID: 20, Status: pagedata.StatusDraft})
		publisher := editorCtx(8, pagedata.CapPublishPages)
		source := pagedata.Checked{Status: true, ID: strconv.FormatInt(foreign.ID, 10)}

		resp := c.SetData(publisher, readyRequest(map[string]string{pagedata.FieldData: `{}`}), nil, pagedata.Payload{"sourceId": source})
		require.True(t, resp.OK())

		stored, err := repo.GetPost(context.Background(), foreign.ID)
		require.NoError(t, err)
		assert.Equal(t, pagedata.StatusPublish, stored.Status)
	})

	t.Run("CheckedSourceWithFalseStatus", func(t *testing.T) {
		source := map[string]interface{}{"status": false, "sourceId": float64(post.ID)}
		resp := c.SetData(ctx, readyRequest(nil), nil, pagedata.Payload{"sourceId": source})
		assert.Equal(t, pagedata.Failure(), resp)
	})
}

func TestSetDataPortableContent(t *testing.T) {
	repo := memory.New()
	c := setupTestController(t, repo)
	post := createPost(t, repo, &pagedata.Post{Type: pagedata.PostTypePage, AuthorID: 1, Status: pagedata.StatusDraft})
	ctx := editorCtx(1, pagedata.CapEditPosts, pagedata.CapPublishPages)

	content := `<img src="https://example.com/wp-content/uploads/vc-assets/a.png">` +
		`<img src="http://example.com/wp-content/uploads/vc-assets/b.png">` +
		`{"src":"https:\/\/example.com\/wp-content\/uploads\/vc-assets\/c.png"}` +
		`<a href="https://example.com/wp-content/uploads/2024/01/d.pdf">d</a>`

	resp := c.SetData(ctx, readyRequest(map[string]string{pagedata.FieldContent: content}), nil, pagedata.Payload{"sourceId": post.ID})
	require.True(t, resp.OK())

	stored, err := repo.GetPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(stored.Content, pagedata.AssetsUploadURLToken))
	assert.Equal(t, 1, strings.Count(stored.Content, pagedata.UploadURLToken))
	assert.NotContains(t, stored.Content, "example.com")
	assert.NotContains(t, stored.Content, "https:")
}

func TestSetDataStatusTransitions(t *testing.T) {
	tests := []struct {
		name       string
		initial    pagedata.PostStatus
		data       string
		caps       []string
		wantStatus pagedata.PostStatus
		preview    bool
	}{
		{"draft flag on draft post", pagedata.StatusDraft, `{"draft":true}`, []string{pagedata.CapEditPosts, pagedata.CapPublishPages}, pagedata.StatusDraft, false},
		{"draft flag on pending post", pagedata.StatusPending, `{"draft":1}`, []string{pagedata.CapEditPosts}, pagedata.StatusDraft, false},
		{"draft flag on published post publishes", pagedata.StatusPublish, `{"draft":true}`, []string{pagedata.CapEditPosts, pagedata.CapEditPublishedPosts, pagedata.CapPublishPages}, pagedata.StatusPublish, false},
		{"draft flag on published post without publish cap", pagedata.StatusPublish, `{"draft":true}`, []string{pagedata.CapEditPosts, pagedata.CapEditPublishedPosts}, pagedata.StatusPending, false},
		{"null draft flag is unset", pagedata.StatusDraft, `{"draft":null}`, []string{pagedata.CapEditPosts}, pagedata.StatusPending, false},
		{"publisher publishes", pagedata.StatusDraft, `{}`, []string{pagedata.CapEditPosts, pagedata.CapPublishPages}, pagedata.StatusPublish, false},
		{"private stays private", pagedata.StatusPrivate, `{}`, []string{pagedata.CapEditPosts, pagedata.CapPublishPages}, pagedata.StatusPrivate, false},
		{"future stays future", pagedata.StatusFuture, `{}`, []string{pagedata.CapEditPosts, pagedata.CapPublishPages}, pagedata.StatusFuture, false},
		{"contributor goes pending", pagedata.StatusDraft, `{}`, []string{pagedata.CapEditPosts}, pagedata.StatusPending, false},
		{"private without publish cap goes pending", pagedata.StatusPrivate, `{}`, []string{pagedata.CapEditPosts}, pagedata.StatusPending, false},
		{"url encoded data", pagedata.StatusDraft, url.QueryEscape(`{"draft":true}`), []string{pagedata.CapEditPosts, pagedata.CapPublishPages}, pagedata.StatusDraft, false},
		{"inherit on published post previews", pagedata.StatusPublish, `{"inherit":true}`, []string{pagedata.CapEditPosts, pagedata.CapEditPublishedPosts, pagedata.CapPublishPages}, pagedata.StatusPublish, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := memory.New()
			c := setupTestController(t, repo)
			post := createPost(t, repo, &pagedata.Post{Type: pagedata.PostTypePage, AuthorID: 3, Status: tt.initial})
			ctx := editorCtx(3, tt.caps...)

			req := readyRequest(map[string]string{pagedata.FieldData: tt.data, pagedata.FieldContent: "body"})
			resp := c.SetData(ctx, req, nil, pagedata.Payload{"sourceId": post.ID})
			require.True(t, resp.OK())

			stored, err := repo.GetPost(context.Background(), post.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, stored.Status)

			_, revErr := repo.GetPreviewRevision(context.Background(), post.ID)
			if tt.preview {
				assert.NoError(t, revErr)
				assert.Equal(t, "", stored.Content, "preview must not touch the live post")
			} else {
				assert.ErrorIs(t, revErr, pagedata.ErrPostNotFound)
				assert.Equal(t, "body", stored.Content)
			}
		})
	}
}

func TestSetDataPreview(t *testing.T) {
	ctx := editorCtx(4, pagedata.CapEditPosts, pagedata.CapEditPublishedPosts, pagedata.CapPublishPages)
	req := readyRequest(map[string]string{
		pagedata.FieldData:                  `{"inherit":true}`,
		pagedata.FieldContent:               "preview body",
		pagedata.FieldDesignOptions:         `{"color":"red"}`,
		pagedata.FieldDesignOptionsCompiled: "body{color:red}",
	})

	t.Run("PublishedPostKeepsLiveContent", func(t *testing.T) {
		repo := memory.New()
		c := setupTestController(t, repo)
		post := createPost(t, repo, &pagedata.Post{Type: pagedata.PostTypePage, AuthorID: 4, Status: pagedata.StatusPublish, Content: "live"})

		resp := c.SetData(ctx, req, nil, pagedata.Payload{"sourceId": post.ID})
		require.True(t, resp.OK())

		live, err := repo.GetPost(context.Background(), post.ID)
		require.NoError(t, err)
		assert.Equal(t, "live", live.Content)
		assert.Equal(t, pagedata.StatusPublish, live.Status)
		assert.False(t, repo.HasMeta(post.ID, pagedata.MetaPageContent))

		rev, err := repo.GetPreviewRevision(context.Background(), post.ID)
		require.NoError(t, err)
		assert.Equal(t, "preview body", rev.Content)
		assert.Equal(t, pagedata.StatusInherit, rev.Status)
		css, _ := repo.GetMeta(context.Background(), rev.ID, pagedata.MetaDesignOptionsCSS)
		assert.Equal(t, "body{color:red}", css)
	})

	t.Run("AutoDraftIsSavedAsDraftFirst", func(t *testing.T) {
		repo := memory.New()
		c := setupTestController(t, repo)
		post := createPost(t, repo, &pagedata.Post{Type: pagedata.PostTypePage, AuthorID: 4, Status: pagedata.StatusAutoDraft})

		resp := c.SetData(ctx, req, nil, pagedata.Payload{"sourceId": post.ID})
		require.True(t, resp.OK())

		stored, err := repo.GetPost(context.Background(), post.ID)
		require.NoError(t, err)
		assert.Equal(t, pagedata.StatusDraft, stored.Status)
		assert.Equal(t, "preview body", stored.Content)
		data, _ := repo.GetMeta(context.Background(), post.ID, pagedata.MetaPageContent)
		assert.Equal(t, `{"inherit":true}`, data)

		rev, err := repo.GetPreviewRevision(context.Background(), post.ID)
		require.NoError(t, err)
		assert.Equal(t, "preview body", rev.Content)
	})

	t.Run("RevisionIsReused", func(t *testing.T) {
		repo := memory.New()
		c := setupTestController(t, repo)
		post := createPost(t, repo, &pagedata.Post{Type: pagedata.PostTypePage, AuthorID: 4, Status: pagedata.StatusPublish})

		require.True(t, c.SetData(ctx, req, nil, pagedata.Payload{"sourceId": post.ID}).OK())
		require.True(t, c.SetData(ctx, req, nil, pagedata.Payload{"sourceId": post.ID}).OK())

		revisions, err := repo.ListPosts(context.Background(), pagedata.PostTypeRevision)
		require.NoError(t, err)
		assert.Len(t, revisions, 1)
	})

	t.Run("FailedDraftSaveLeavesNoRevision", func(t *testing.T) {
		base := memory.New()
		c := setupTestController(t, &failingRepository{Repository: base})
		post := createPost(t, base, &pagedata.Post{Type: pagedata.PostTypePage, AuthorID: 4, Status: pagedata.StatusAutoDraft})

		resp := c.SetData(ctx, req, nil, pagedata.Payload{"sourceId": post.ID})
		assert.Equal(t, pagedata.Failure(), resp)

		_, err := base.GetPreviewRevision(context.Background(), post.ID)
		assert.ErrorIs(t, err, pagedata.ErrPostNotFound)
		revisions, err := base.ListPosts(context.Background(), pagedata.PostTypeRevision)
		require.NoError(t, err)
		assert.Empty(t, revisions)
	})
}

func TestSetDataPersistsMeta(t *testing.T) {
	repo := memory.New()
	saved := 0
	var savedPost pagedata.SavedPost
	hooks := &pagedata.Hooks{
		SetData: []pagedata.SetDataHook{
			func(hctx *pagedata.HookContext, extra pagedata.Response, s pagedata.SavedPost) (pagedata.Response, error) {
				extra["permalink"] = "/page"
				return extra, nil
			},
		},
		PostSaved: []pagedata.PostSavedHook{
			func(hctx *pagedata.HookContext, s pagedata.SavedPost) error {
				saved++
				savedPost = s
				return errors.New("listener failures do not fail the save")
			},
		},
	}
	c := setupTestController(t, repo, pagedata.WithHooks(hooks))
	post := createPost(t, repo, &pagedata.Post{Type: pagedata.PostTypePage, AuthorID: 2, Status: pagedata.StatusDraft, Title: "Home"})
	ctx := editorCtx(2, pagedata.CapEditPosts, pagedata.CapPublishPages)

	req := readyRequest(map[string]string{
		pagedata.FieldData:                  `{"elements":{}}`,
		pagedata.FieldContent:               "<div>home</div>",
		pagedata.FieldDesignOptions:         `{"bg":"#fff"}`,
		pagedata.FieldDesignOptionsCompiled: "body{background:#fff}",
	})
	resp := c.SetData(ctx, req, pagedata.Response{"prior": "kept"}, pagedata.Payload{"sourceId": strconv.FormatInt(post.ID, 10)})
	require.True(t, resp.OK())
	assert.Equal(t, "kept", resp["prior"])
	assert.Equal(t, "/page", resp["permalink"])

	postData, ok := resp["postData"].(pagedata.PostData)
	require.True(t, ok)
	assert.Equal(t, post.ID, postData.ID)
	assert.Equal(t, pagedata.StatusPublish, postData.Status)
	assert.Equal(t, "Home", postData.Title)

	bg := context.Background()
	data, _ := repo.GetMeta(bg, post.ID, pagedata.MetaPageContent)
	assert.Equal(t, `{"elements":{}}`, data)
	opts, _ := repo.GetMeta(bg, post.ID, pagedata.MetaDesignOptions)
	assert.Equal(t, `{"bg":"#fff"}`, opts)
	css, _ := repo.GetMeta(bg, post.ID, pagedata.MetaDesignOptionsCSS)
	assert.Equal(t, "body{background:#fff}", css)

	assert.Equal(t, 1, repo.Flushes())
	assert.Equal(t, 1, saved)
	assert.Equal(t, post.ID, savedPost.SourceID)
}

func TestSetDataSaveFailure(t *testing.T) {
	for _, zeroID := range []bool{false, true} {
		base := memory.New()
		repo := &failingRepository{Repository: base, zeroID: zeroID}
		c := setupTestController(t, repo)
		post := createPost(t, base, &pagedata.Post{Type: pagedata.PostTypePage, AuthorID: 1, Status: pagedata.StatusDraft})
		ctx := editorCtx(1, pagedata.CapEditPosts)

		req := readyRequest(map[string]string{
			pagedata.FieldData:                  `{}`,
			pagedata.FieldContent:               "x",
			pagedata.FieldDesignOptions:         "{}",
			pagedata.FieldDesignOptionsCompiled: "css",
		})
		resp := c.SetData(ctx, req, pagedata.Response{"prior": true}, pagedata.Payload{"sourceId": post.ID})
		assert.Equal(t, pagedata.Response{"status": false}, resp)
		assert.False(t, base.HasMeta(post.ID, pagedata.MetaPageContent))
		assert.False(t, base.HasMeta(post.ID, pagedata.MetaDesignOptions))
		assert.False(t, base.HasMeta(post.ID, pagedata.MetaDesignOptionsCSS))
		assert.Equal(t, 0, base.Flushes())
	}
}

func TestSetDataMetaFailureIsReported(t *testing.T) {
	base := memory.New()
	var reported error
	hooks := &pagedata.Hooks{
		OnError: []pagedata.ErrorHook{
			func(hctx *pagedata.HookContext, operation string, err error) {
				reported = err
			},
		},
	}
	c := setupTestController(t, &failingMetaRepository{Repository: base}, pagedata.WithHooks(hooks))
	post := createPost(t, base, &pagedata.Post{Type: pagedata.PostTypePage, AuthorID: 1, Status: pagedata.StatusDraft})

	resp := c.SetData(editorCtx(1, pagedata.CapEditPosts), readyRequest(map[string]string{pagedata.FieldData: "{}"}), nil, pagedata.Payload{"sourceId": post.ID})
	assert.Equal(t, pagedata.Failure(), resp)

	var metaErr *pagedata.MetaError
	require.ErrorAs(t, reported, &metaErr)
	assert.Equal(t, post.ID, metaErr.PostID)
}

func TestSetDataHooks(t *testing.T) {
	repo := memory.New()
	target := createPost(t, repo, &pagedata.Post{Type: pagedata.PostTypePage, AuthorID: 5, Status: pagedata.StatusDraft})
	decoy := createPost(t, repo, &pagedata.Post{Type: pagedata.PostTypePage, AuthorID: 5, Status: pagedata.StatusDraft})

	var removed []int64
	hooks := &pagedata.Hooks{
		SourceID: []pagedata.SourceIDHook{
			func(hctx *pagedata.HookContext, id pagedata.SourceID) (pagedata.SourceID, error) {
				// Route saves for the decoy to the target post
				if n, _, ok := id.Resolve(); ok && n == decoy.ID {
					return pagedata.NewChecked(target.ID), nil
				}
				return id, nil
			},
		},
		Content: []pagedata.ContentHook{
			func(hctx *pagedata.HookContext, content string) (string, error) {
				return strings.ToUpper(content), nil
			},
		},
		RemovePostUpdate: []pagedata.RemovePostUpdateHook{
			pagedata.OnRemovePostUpdate(target.ID, func(hctx *pagedata.HookContext, postID int64, payload pagedata.Payload) error {
				removed = append(removed, postID)
				return nil
			}),
		},
	}
	c := setupTestController(t, repo, pagedata.WithHooks(hooks))
	ctx := editorCtx(5, pagedata.CapEditPosts)

	req := readyRequest(map[string]string{pagedata.FieldContent: "hello", pagedata.FieldUpdatePost: "1"})
	resp := c.SetData(ctx, req, nil, pagedata.Payload{"sourceId": decoy.ID})
	require.True(t, resp.OK())

	stored, err := repo.GetPost(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Equal(t, "HELLO", stored.Content)
	assert.Equal(t, []int64{target.ID}, removed)

	untouched, err := repo.GetPost(context.Background(), decoy.ID)
	require.NoError(t, err)
	assert.Equal(t, "", untouched.Content)
}

type registry map[string]pagedata.ActionFunc

func (r registry) Register(action string, fn pagedata.ActionFunc) { r[action] = fn }

func TestRegister(t *testing.T) {
	repo := memory.New()
	c := setupTestController(t, repo)
	post := createPost(t, repo, &pagedata.Post{Type: pagedata.PostTypePage, AuthorID: 6, Content: "c"})

	r := registry{}
	c.Register(r)
	require.Contains(t, r, pagedata.ActionGetData)
	require.Contains(t, r, pagedata.ActionSetData)

	ctx := editorCtx(6, pagedata.CapEditPosts)
	resp := r[pagedata.ActionGetData](ctx, pagedata.Values{pagedata.FieldSourceID: "1"}, nil, nil)
	assert.True(t, resp.OK())
	assert.Equal(t, "c", resp["post_content"])
	assert.Equal(t, int64(1), post.ID)

	// A stranger does not get a current post
	resp = r[pagedata.ActionGetData](editorCtx(99, pagedata.CapEditPosts), pagedata.Values{pagedata.FieldSourceID: "1"}, nil, nil)
	assert.False(t, resp.OK())
}
