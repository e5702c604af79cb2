package pagedata

import "encoding/json"

// statusDecision is the outcome of status resolution for a save.
type statusDecision struct {
	// Status is the status the post is saved with. Unchanged on preview.
	Status PostStatus
	// Preview routes the save to the preview revision
	Preview bool
}

// resolveStatus decides how a save affects the post status, in priority
// order: draft request on an unpublished post, preview request, publish when
// allowed (private and scheduled posts keep their status), pending otherwise.
func resolveStatus(current PostStatus, data map[string]json.RawMessage, canPublish func() bool) statusDecision {
	switch {
	case isSet(data, "draft") && current != StatusPublish:
		return statusDecision{Status: StatusDraft}
	case isSet(data, "inherit"):
		return statusDecision{Status: current, Preview: true}
	case canPublish():
		if current == StatusPrivate || current == StatusFuture {
			return statusDecision{Status: current}
		}
		return statusDecision{Status: StatusPublish}
	default:
		return statusDecision{Status: StatusPending}
	}
}

// isDraftLike reports whether a post has never been published.
func isDraftLike(s PostStatus) bool {
	return s == StatusDraft || s == StatusAutoDraft
}
