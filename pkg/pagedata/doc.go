// Package pagedata provides the page-builder data endpoint: reading and
// persisting visual-editor page content attached to a post.
//
// The Controller exposes two operations. GetData resolves the editor payload
// for the post currently being edited, falling back to legacy template
// elements when no page content has been stored yet. SetData persists a
// posted editor payload: it resolves the target post, checks access, rewrites
// absolute asset URLs into portable placeholder tokens, decides the target
// publish status and saves the post together with its page meta.
//
// Storage, capability checks and asset URL resolution are collaborators
// expressed as interfaces. Implementations of the post and meta stores (in
// memory, Postgres) live under repo/, blob storage for uploaded assets under
// storage/.
//
// # Extension points
//
// Behaviour can be extended through Hooks. Hooks are typed and run in
// registration order; a hook may set HookContext.StopChain to skip the rest
// of its chain.
package pagedata
