package pagedata

import (
	"context"
	"log/slog"
)

// Hook system replaces the string-keyed filters and events the editor used
// to extend data loading and saving. Hooks run in registration order.

// Hooks defines all available extension points
type Hooks struct {
	// GetData hooks add fields to the getData response
	GetData []GetDataHook

	// SetData hooks add fields to a successful setData response
	SetData []SetDataHook

	// SourceID hooks may rewrite the requested source before it is resolved
	SourceID []SourceIDHook

	// Content hooks may rewrite posted content before it is stored
	Content []ContentHook

	// RemovePostUpdate hooks run before a post flagged with vcv-updatePost is mutated
	RemovePostUpdate []RemovePostUpdateHook

	// PostSaved hooks run after content and meta were persisted
	PostSaved []PostSavedHook

	// OnError hooks observe failures
	OnError []ErrorHook
}

// HookContext carries information through the hook chain
type HookContext struct {
	Context   context.Context
	Metadata  map[string]interface{} // Custom metadata passed between hooks
	StopChain bool                   // Set to true to stop processing remaining hooks
}

// NewHookContext creates a new hook context
func NewHookContext(ctx context.Context) *HookContext {
	return &HookContext{
		Context:  ctx,
		Metadata: make(map[string]interface{}),
	}
}

// GetDataHook receives the extra fields gathered so far and returns the next set
type GetDataHook func(hctx *HookContext, extra Response, payload Payload) (Response, error)

// SetDataHook receives the extra fields gathered so far and returns the next set
type SetDataHook func(hctx *HookContext, extra Response, saved SavedPost) (Response, error)

// SourceIDHook rewrites a requested source
type SourceIDHook func(hctx *HookContext, id SourceID) (SourceID, error)

// ContentHook rewrites posted content
type ContentHook func(hctx *HookContext, content string) (string, error)

// RemovePostUpdateHook is notified before a post update is applied
type RemovePostUpdateHook func(hctx *HookContext, postID int64, payload Payload) error

// PostSavedHook is notified after a post was saved
type PostSavedHook func(hctx *HookContext, saved SavedPost) error

// ErrorHook is called when an operation fails
type ErrorHook func(hctx *HookContext, operation string, err error)

// Merge appends the hooks of others to h and returns h. Nil entries are skipped.
func (h *Hooks) Merge(others ...*Hooks) *Hooks {
	if h == nil {
		h = &Hooks{}
	}
	for _, o := range others {
		if o == nil {
			continue
		}
		h.GetData = append(h.GetData, o.GetData...)
		h.SetData = append(h.SetData, o.SetData...)
		h.SourceID = append(h.SourceID, o.SourceID...)
		h.Content = append(h.Content, o.Content...)
		h.RemovePostUpdate = append(h.RemovePostUpdate, o.RemovePostUpdate...)
		h.PostSaved = append(h.PostSaved, o.PostSaved...)
		h.OnError = append(h.OnError, o.OnError...)
	}
	return h
}

// OnRemovePostUpdate scopes hook to a single post.
func OnRemovePostUpdate(postID int64, hook RemovePostUpdateHook) RemovePostUpdateHook {
	return func(hctx *HookContext, id int64, payload Payload) error {
		if id != postID {
			return nil
		}
		return hook(hctx, id, payload)
	}
}

// Hook execution helpers

func (h *Hooks) executeGetData(ctx context.Context, extra Response, payload Payload) (Response, error) {
	if h == nil || len(h.GetData) == 0 {
		return extra, nil
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.GetData {
		next, err := hook(hctx, extra, payload)
		if err != nil {
			return nil, err
		}
		if next != nil {
			extra = next
		}
		if hctx.StopChain {
			break
		}
	}
	return extra, nil
}

func (h *Hooks) executeSetData(ctx context.Context, extra Response, saved SavedPost) (Response, error) {
	if h == nil || len(h.SetData) == 0 {
		return extra, nil
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.SetData {
		next, err := hook(hctx, extra, saved)
		if err != nil {
			return nil, err
		}
		if next != nil {
			extra = next
		}
		if hctx.StopChain {
			break
		}
	}
	return extra, nil
}

func (h *Hooks) executeSourceID(ctx context.Context, id SourceID) (SourceID, error) {
	if h == nil || len(h.SourceID) == 0 {
		return id, nil
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.SourceID {
		next, err := hook(hctx, id)
		if err != nil {
			return nil, err
		}
		if next != nil {
			id = next
		}
		if hctx.StopChain {
			break
		}
	}
	return id, nil
}

func (h *Hooks) executeContent(ctx context.Context, content string) (string, error) {
	if h == nil || len(h.Content) == 0 {
		return content, nil
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.Content {
		next, err := hook(hctx, content)
		if err != nil {
			return "", err
		}
		content = next
		if hctx.StopChain {
			break
		}
	}
	return content, nil
}

func (h *Hooks) executeRemovePostUpdate(ctx context.Context, postID int64, payload Payload) error {
	if h == nil || len(h.RemovePostUpdate) == 0 {
		return nil
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.RemovePostUpdate {
		if err := hook(hctx, postID, payload); err != nil {
			return err
		}
		if hctx.StopChain {
			break
		}
	}
	return nil
}

func (h *Hooks) executePostSaved(ctx context.Context, saved SavedPost) error {
	if h == nil || len(h.PostSaved) == 0 {
		return nil
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.PostSaved {
		if err := hook(hctx, saved); err != nil {
			return err
		}
		if hctx.StopChain {
			break
		}
	}
	return nil
}

func (h *Hooks) executeOnError(ctx context.Context, operation string, err error) {
	if h == nil || len(h.OnError) == 0 {
		return
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.OnError {
		hook(hctx, operation, err)
		if hctx.StopChain {
			break
		}
	}
}

// LoggingHooks logs saves and failures
func LoggingHooks(logger *slog.Logger) *Hooks {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hooks{
		RemovePostUpdate: []RemovePostUpdateHook{
			func(hctx *HookContext, postID int64, payload Payload) error {
				logger.Info("Post update removal requested", "post_id", postID)
				return nil
			},
		},
		PostSaved: []PostSavedHook{
			func(hctx *HookContext, saved SavedPost) error {
				logger.Info("Post saved", "post_id", saved.SourceID, "status", saved.Post.Status, "type", saved.Post.Type)
				return nil
			},
		},
		OnError: []ErrorHook{
			func(hctx *HookContext, operation string, err error) {
				logger.Error("Page data operation failed", "operation", operation, "error", err)
			},
		},
	}
}
