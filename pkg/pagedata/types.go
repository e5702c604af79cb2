package pagedata

import "time"

// PostStatus is the publication state of a post.
type PostStatus string

// Post status constants.
const (
	StatusDraft     PostStatus = "draft"
	StatusAutoDraft PostStatus = "auto-draft"
	StatusPending   PostStatus = "pending"
	StatusPublish   PostStatus = "publish"
	StatusPrivate   PostStatus = "private"
	StatusFuture    PostStatus = "future"
	StatusInherit   PostStatus = "inherit"
)

// IsValid reports whether s is a known post status.
func (s PostStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusAutoDraft, StatusPending, StatusPublish,
		StatusPrivate, StatusFuture, StatusInherit:
		return true
	}
	return false
}

// Post type constants.
const (
	PostTypeTemplate = "vcv_templates"
	PostTypeTutorial = "vcv_tutorials"
	PostTypePage     = "page"
	PostTypePost     = "post"
	PostTypeRevision = "revision"
)

// MetaPrefix is prepended to every meta key owned by the editor. Keys that
// additionally start with an underscore are private and not editable through
// generic meta APIs.
const MetaPrefix = "vcv-"

// Meta keys read and written by the controller.
const (
	MetaPageContent         = MetaPrefix + "pageContent"
	MetaTemplateType        = "_" + MetaPrefix + "type"
	MetaDesignOptions       = "_" + MetaPrefix + "pageDesignOptionsData"
	MetaDesignOptionsCSS    = "_" + MetaPrefix + "pageDesignOptionsCompiledCss"
	MetaGlobalElementsCSS   = MetaPrefix + "globalElementsCssData"
	MetaTemplateElementsKey = "vcvEditorTemplateElements"
	TemplateTypeHub         = "hub"
)

// Post is a content item owned by the content store.
type Post struct {
	ID        int64      `json:"id"`
	Type      string     `json:"type"`
	Status    PostStatus `json:"status"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	AuthorID  int64      `json:"author_id"`
	ParentID  int64      `json:"parent_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Clone returns a shallow copy of the post.
func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// PostData is the refreshed post summary returned after a successful save.
type PostData struct {
	ID        int64      `json:"id"`
	Type      string     `json:"type"`
	Status    PostStatus `json:"status"`
	Title     string     `json:"title"`
	ParentID  int64      `json:"parentId,omitempty"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// NewPostData builds the response summary for p.
func NewPostData(p *Post) PostData {
	return PostData{
		ID:        p.ID,
		Type:      p.Type,
		Status:    p.Status,
		Title:     p.Title,
		ParentID:  p.ParentID,
		UpdatedAt: p.UpdatedAt,
	}
}

// Response is the result map handed back to the editor. It always carries a
// "status" entry once produced by the controller.
type Response map[string]interface{}

// Failure returns the uniform failure response.
func Failure() Response {
	return Response{"status": false}
}

// OK reports whether the response carries status true.
func (r Response) OK() bool {
	v, ok := r["status"].(bool)
	return ok && v
}

// Merge copies every entry of other into r, overwriting existing keys, and
// returns r. A nil receiver yields a new map.
func (r Response) Merge(other Response) Response {
	if r == nil {
		r = Response{}
	}
	for k, v := range other {
		r[k] = v
	}
	return r
}

// Payload carries action arguments supplied by the dispatcher.
type Payload map[string]interface{}

// SavedPost describes a successful save for SetData and PostSaved hooks.
type SavedPost struct {
	SourceID int64
	Post     *Post
	// Data is the raw editor payload as posted.
	Data string
}
