package pagedata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// Action names the controller answers to.
const (
	ActionGetData = "vcv:ajax:getData:adminNonce"
	ActionSetData = "vcv:ajax:setData:adminNonce"
)

// ActionFunc handles a dispatched editor action.
type ActionFunc func(ctx context.Context, req Request, response Response, payload Payload) Response

// ActionRegistrar binds actions by name.
type ActionRegistrar interface {
	Register(action string, fn ActionFunc)
}

// Controller implements the editor's getData and setData actions.
type Controller struct {
	posts     PostStore
	meta      MetaStore
	cache     Cache
	caps      Capabilities
	assets    AssetURLResolver
	templates TemplateElements
	previewer Previewer
	hooks     *Hooks
	logger    *slog.Logger
}

// Option represents a functional option for configuring the controller
type Option func(*Controller)

// WithRepository sets the post store, meta store and cache from one repository
func WithRepository(repo Repository) Option {
	return func(c *Controller) {
		c.posts = repo
		c.meta = repo
		c.cache = repo
	}
}

// WithPostStore sets the post store
func WithPostStore(posts PostStore) Option {
	return func(c *Controller) {
		c.posts = posts
	}
}

// WithMetaStore sets the meta store
func WithMetaStore(meta MetaStore) Option {
	return func(c *Controller) {
		c.meta = meta
	}
}

// WithCache sets the cache flushed after saves
func WithCache(cache Cache) Option {
	return func(c *Controller) {
		c.cache = cache
	}
}

// WithCapabilities sets the capability checker
func WithCapabilities(caps Capabilities) Option {
	return func(c *Controller) {
		c.caps = caps
	}
}

// WithAssetURLs sets the asset URL resolver
func WithAssetURLs(assets AssetURLResolver) Option {
	return func(c *Controller) {
		c.assets = assets
	}
}

// WithTemplateElements sets the legacy template element lookup
func WithTemplateElements(t TemplateElements) Option {
	return func(c *Controller) {
		c.templates = t
	}
}

// WithPreviewer sets the preview revision generator
func WithPreviewer(p Previewer) Option {
	return func(c *Controller) {
		c.previewer = p
	}
}

// WithHooks adds hooks; repeated use merges them in order
func WithHooks(hooks ...*Hooks) Option {
	return func(c *Controller) {
		c.hooks = c.hooks.Merge(hooks...)
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// New creates a controller. A post store and a meta store are required;
// every other collaborator has a default.
func New(options ...Option) (*Controller, error) {
	c := &Controller{}
	for _, option := range options {
		option(c)
	}

	if c.posts == nil {
		return nil, fmt.Errorf("post store is required")
	}
	if c.meta == nil {
		return nil, fmt.Errorf("meta store is required")
	}
	if c.cache == nil {
		c.cache = NoopCache{}
	}
	if c.caps == nil {
		c.caps = NewActorCapabilities()
	}
	if c.assets == nil {
		c.assets = StaticAssetURLs{}
	}
	if c.templates == nil {
		c.templates = MetaTemplateElements{Meta: c.meta}
	}
	if c.previewer == nil {
		c.previewer = RevisionPreviewer{Posts: c.posts}
	}
	if c.hooks == nil {
		c.hooks = &Hooks{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// Register binds the controller's actions on r.
func (c *Controller) Register(r ActionRegistrar) {
	r.Register(ActionGetData, func(ctx context.Context, req Request, response Response, payload Payload) Response {
		return c.GetData(ctx, c.CurrentPost(ctx, req), response, payload)
	})
	r.Register(ActionSetData, c.SetData)
}

// CurrentPost loads the post named by the request's source id when the actor
// may edit it, and returns nil otherwise.
func (c *Controller) CurrentPost(ctx context.Context, req Request) *Post {
	id, _, ok := Direct{ID: req.Input(FieldSourceID)}.Resolve()
	if !ok {
		return nil
	}
	post, err := c.posts.GetPost(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrPostNotFound) {
			c.logger.Error("Failed to load current post", "post_id", id, "error", err)
		}
		return nil
	}
	if !c.caps.CanEdit(ctx, post) {
		return nil
	}
	return post
}

// GetData returns the editor payload for current. It fails softly with
// status false when no post is loaded or the stores fail.
func (c *Controller) GetData(ctx context.Context, current *Post, response Response, payload Payload) Response {
	if current == nil {
		return c.fail(ctx, "getData", ErrNoCurrentPost)
	}
	response = Response{}.Merge(response)

	data, err := c.contentData(ctx, current)
	if err != nil {
		return c.fail(ctx, "getData", &PostError{PostID: current.ID, Op: "get_data", Err: err})
	}

	response["post_content"] = current.Content
	extra, err := c.hooks.executeGetData(ctx, Response{"status": true}, payload)
	if err != nil {
		return c.fail(ctx, "getData", &PostError{PostID: current.ID, Op: "get_data_hooks", Err: err})
	}
	response = response.Merge(extra)
	response["data"] = data

	css, err := c.meta.GetMeta(ctx, current.ID, MetaGlobalElementsCSS)
	if err != nil {
		return c.fail(ctx, "getData", &MetaError{PostID: current.ID, Key: MetaGlobalElementsCSS, Op: "get", Err: err})
	}
	response["elementsCssData"] = css

	return response
}

// contentData resolves stored page content, falling back to the legacy
// template elements for templates and tutorials.
func (c *Controller) contentData(ctx context.Context, post *Post) (string, error) {
	if post.Type == PostTypeTemplate {
		// Hub templates carried a stale copy of their page content
		typ, err := c.meta.GetMeta(ctx, post.ID, MetaTemplateType)
		if err != nil {
			return "", err
		}
		if typ == TemplateTypeHub {
			if err := c.meta.DeleteMeta(ctx, post.ID, MetaPageContent); err != nil {
				return "", err
			}
		}
	}

	data, err := c.meta.GetMeta(ctx, post.ID, MetaPageContent)
	if err != nil {
		return "", err
	}
	if data != "" {
		return data, nil
	}

	if post.Type != PostTypeTemplate && post.Type != PostTypeTutorial {
		return "", nil
	}
	elements, err := c.templates.TemplateElementsByMeta(ctx, post.ID)
	if err != nil {
		return "", err
	}
	if len(elements) == 0 {
		elements = json.RawMessage("[]")
	}
	encoded, err := json.Marshal(struct {
		Elements json.RawMessage `json:"elements"`
	}{Elements: elements})
	if err != nil {
		return "", err
	}
	return rawURLEncode(string(encoded)), nil
}

// SetData persists the posted editor payload for the post named by
// payload["sourceId"]. Without the ready flag the response passes through
// unchanged.
func (c *Controller) SetData(ctx context.Context, req Request, response Response, payload Payload) Response {
	rawSource, ok := payload["sourceId"]
	if !ok || rawSource == nil {
		return c.fail(ctx, "setData", ErrMissingSourceID)
	}

	if req.Input(FieldReady) != "1" {
		return response
	}

	source, err := c.hooks.executeSourceID(ctx, ParseSourceID(rawSource))
	if err != nil {
		return c.fail(ctx, "setData", fmt.Errorf("resolve sourceId: %w", err))
	}
	if source == nil {
		return c.fail(ctx, "setData", ErrInvalidSourceID)
	}
	id, accessCheck, ok := source.Resolve()
	if !ok {
		return c.fail(ctx, "setData", ErrInvalidSourceID)
	}

	post, err := c.posts.GetPost(ctx, id)
	if err != nil {
		return c.fail(ctx, "setData", &PostError{PostID: id, Op: "get", Err: err})
	}
	if accessCheck && !c.caps.CanEdit(ctx, post) {
		return c.fail(ctx, "setData", &PostError{PostID: id, Op: "set_data", Err: ErrAccessDenied})
	}

	if req.Input(FieldUpdatePost) == "1" {
		if err := c.hooks.executeRemovePostUpdate(ctx, id, payload); err != nil {
			// Listeners cannot veto the save
			c.observe(ctx, "removePostUpdate", &PostError{PostID: id, Op: "remove_post_update", Err: err})
		}
	}

	return c.updatePostData(ctx, req, post, Response{}.Merge(response))
}

// updatePostData applies the posted content to post, resolves its status
// and persists it together with its meta.
func (c *Controller) updatePostData(ctx context.Context, req Request, post *Post, response Response) Response {
	data, err := InputJSON(req, FieldData)
	if err != nil {
		c.logger.Warn("Ignoring undecodable editor data", "post_id", post.ID, "error", err)
		data = map[string]json.RawMessage{}
	}

	content, err := c.hooks.executeContent(ctx, req.Input(FieldContent))
	if err != nil {
		return c.fail(ctx, "setData", &PostError{PostID: post.ID, Op: "content_hooks", Err: err})
	}
	post.Content = PortableContent(content, c.assets.AssetURL(ctx), c.assets.UploadURL(ctx))

	decision := resolveStatus(post.Status, data, func() bool { return c.caps.CanPublish(ctx, post) })

	var preview *Post
	if decision.Preview {
		preview, err = c.previewer.GeneratePreview(ctx, post)
		if err != nil {
			c.logger.Warn("Preview generation failed, saving post directly", "post_id", post.ID, "error", err)
			preview = nil
		}
	} else {
		post.Status = decision.Status
	}

	if err := c.persist(WithTrustedContent(ctx), req, post, preview); err != nil {
		return c.fail(ctx, "setData", err)
	}

	saved := SavedPost{SourceID: post.ID, Post: post, Data: req.Input(FieldData)}
	extra, err := c.hooks.executeSetData(ctx, Response{"status": true}, saved)
	if err != nil {
		c.observe(ctx, "setDataHooks", &PostError{PostID: post.ID, Op: "set_data_hooks", Err: err})
		extra = Response{"status": true}
	}

	if err := c.cache.Flush(ctx); err != nil {
		c.logger.Warn("Cache flush failed", "post_id", post.ID, "error", err)
	}
	if err := c.hooks.executePostSaved(ctx, saved); err != nil {
		c.observe(ctx, "postSaved", &PostError{PostID: post.ID, Op: "post_saved", Err: err})
	}

	refreshed, err := c.posts.GetPost(ctx, post.ID)
	if err != nil {
		c.logger.Warn("Reloading saved post failed", "post_id", post.ID, "error", err)
		refreshed = post
	}
	extra["postData"] = NewPostData(refreshed)

	return response.Merge(extra)
}

// persist saves the post, or its preview revision, and then its meta. Meta
// is only written once the owning post was saved.
func (c *Controller) persist(ctx context.Context, req Request, post, preview *Post) error {
	if preview != nil {
		if isDraftLike(post.Status) {
			post.Status = StatusDraft
			if err := c.updatePost(ctx, post); err != nil {
				return err
			}
			if err := c.updatePostMeta(ctx, req, post.ID); err != nil {
				return err
			}
		}
		if err := c.savePreview(ctx, preview); err != nil {
			return err
		}
		return c.updatePostMeta(ctx, req, preview.ID)
	}

	if err := c.updatePost(ctx, post); err != nil {
		return err
	}
	return c.updatePostMeta(ctx, req, post.ID)
}

func (c *Controller) updatePost(ctx context.Context, post *Post) error {
	id, err := c.posts.UpdatePost(ctx, post)
	if err != nil {
		return &PostError{PostID: post.ID, Op: "update", Err: fmt.Errorf("%w: %v", ErrSaveFailed, err)}
	}
	if id == 0 {
		return &PostError{PostID: post.ID, Op: "update", Err: ErrSaveFailed}
	}
	return nil
}

// savePreview inserts a revision the previewer left unsaved, else updates it.
func (c *Controller) savePreview(ctx context.Context, preview *Post) error {
	if preview.ID != 0 {
		return c.updatePost(ctx, preview)
	}
	if err := c.posts.CreatePost(ctx, preview); err != nil {
		return &PostError{PostID: preview.ParentID, Op: "create_preview", Err: fmt.Errorf("%w: %v", ErrSaveFailed, err)}
	}
	return nil
}

func (c *Controller) updatePostMeta(ctx context.Context, req Request, postID int64) error {
	fields := []struct{ key, value string }{
		{MetaPageContent, req.Input(FieldData)},
		{MetaDesignOptions, req.Input(FieldDesignOptions)},
		{MetaDesignOptionsCSS, req.Input(FieldDesignOptionsCompiled)},
	}

	var errs []error
	for _, f := range fields {
		if err := c.meta.UpdateMeta(ctx, postID, f.key, f.value); err != nil {
			errs = append(errs, &MetaError{PostID: postID, Key: f.key, Op: "update", Err: err})
		}
	}
	return errors.Join(errs...)
}

// fail reports err and returns the uniform failure response.
func (c *Controller) fail(ctx context.Context, operation string, err error) Response {
	c.observe(ctx, operation, err)
	return Failure()
}

func (c *Controller) observe(ctx context.Context, operation string, err error) {
	c.logger.Debug("Page data operation failed", "operation", operation, "error", err)
	c.hooks.executeOnError(ctx, operation, err)
}
