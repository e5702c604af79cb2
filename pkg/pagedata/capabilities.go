package pagedata

import "context"

// Capability names checked by ActorCapabilities.
const (
	CapEditPosts          = "edit_posts"
	CapEditOthersPosts    = "edit_others_posts"
	CapEditPublishedPosts = "edit_published_posts"
	CapPublishPosts       = "publish_posts"
	CapPublishPages       = "publish_pages"
)

// Actor is the user on whose behalf a request runs.
type Actor struct {
	ID           int64
	Capabilities map[string]bool
}

// NewActor builds an actor holding caps.
func NewActor(id int64, caps ...string) *Actor {
	a := &Actor{ID: id, Capabilities: make(map[string]bool, len(caps))}
	for _, c := range caps {
		a.Capabilities[c] = true
	}
	return a
}

// Can reports whether the actor holds capability.
func (a *Actor) Can(capability string) bool {
	return a != nil && a.Capabilities[capability]
}

type actorKey struct{}

// ContextWithActor attaches actor to ctx.
func ContextWithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor attached to ctx, or nil.
func ActorFromContext(ctx context.Context) *Actor {
	a, _ := ctx.Value(actorKey{}).(*Actor)
	return a
}

// ActorCapabilities checks capabilities held by the actor in the context.
type ActorCapabilities struct {
	// PublishCaps maps a post type to the capability required to publish it.
	// Types not listed require CapPublishPosts.
	PublishCaps map[string]string
}

// NewActorCapabilities returns a checker with the default publish capabilities.
func NewActorCapabilities() *ActorCapabilities {
	return &ActorCapabilities{
		PublishCaps: map[string]string{
			PostTypePage: CapPublishPages,
		},
	}
}

// CanEdit implements Capabilities.
func (c *ActorCapabilities) CanEdit(ctx context.Context, post *Post) bool {
	actor := ActorFromContext(ctx)
	if actor == nil || post == nil {
		return false
	}
	if post.AuthorID != actor.ID && !actor.Can(CapEditOthersPosts) {
		return false
	}
	if post.Status == StatusPublish && !actor.Can(CapEditPublishedPosts) && !actor.Can(CapEditOthersPosts) {
		return false
	}
	return actor.Can(CapEditPosts) || actor.Can(CapEditOthersPosts)
}

// CanPublish implements Capabilities. Only the publish capability for the
// post type is checked; edit access is enforced separately by SetData unless
// the source waived it.
func (c *ActorCapabilities) CanPublish(ctx context.Context, post *Post) bool {
	if post == nil {
		return false
	}
	capability := CapPublishPosts
	if cp, ok := c.PublishCaps[post.Type]; ok {
		capability = cp
	}
	return ActorFromContext(ctx).Can(capability)
}

// AllowAll grants every capability. Intended for trusted system callers.
type AllowAll struct{}

// CanEdit implements Capabilities.
func (AllowAll) CanEdit(context.Context, *Post) bool { return true }

// CanPublish implements Capabilities.
func (AllowAll) CanPublish(context.Context, *Post) bool { return true }
