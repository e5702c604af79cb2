package pagedata

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrPostNotFound indicates a post was not found
	ErrPostNotFound = errors.New("post not found")

	// ErrNoCurrentPost indicates GetData was called without a loaded post
	ErrNoCurrentPost = errors.New("no current post")

	// ErrMissingSourceID indicates the payload carried no sourceId
	ErrMissingSourceID = errors.New("sourceId must be provided")

	// ErrInvalidSourceID indicates the sourceId did not resolve to a numeric post id
	ErrInvalidSourceID = errors.New("invalid sourceId")

	// ErrAccessDenied indicates the actor may not edit the post
	ErrAccessDenied = errors.New("access denied")

	// ErrSaveFailed indicates the content store rejected a save
	ErrSaveFailed = errors.New("save failed")
)

// PostError represents an error related to a post operation
type PostError struct {
	PostID int64
	Op     string
	Err    error
}

func (e *PostError) Error() string {
	return fmt.Sprintf("post operation %s failed for post %d: %v", e.Op, e.PostID, e.Err)
}

func (e *PostError) Unwrap() error {
	return e.Err
}

// MetaError represents an error writing or reading post meta
type MetaError struct {
	PostID int64
	Key    string
	Op     string
	Err    error
}

func (e *MetaError) Error() string {
	return fmt.Sprintf("meta operation %s failed for key %s on post %d: %v", e.Op, e.Key, e.PostID, e.Err)
}

func (e *MetaError) Unwrap() error {
	return e.Err
}
