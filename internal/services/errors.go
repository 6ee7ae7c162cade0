package services

import "errors"

// Domain errors recovered at the handler boundary and translated to
// HTTP responses. Anything else that escapes a service is an
// infrastructure fault and surfaces as a 500.
var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrForbidden       = errors.New("user not authorized")
	ErrAlreadyLiked    = errors.New("post already liked")
	ErrNotLiked        = errors.New("post has not yet been liked")
	ErrEmailTaken      = errors.New("user already exists")
	ErrBadCredentials  = errors.New("invalid credentials")
	ErrEmptyPost       = errors.New("post requires text or an image")
	ErrEmptyComment    = errors.New("text is required")
	// ErrStaleWrite means a concurrent writer changed the post between
	// our read and our conditional update. Terminal for the request.
	ErrStaleWrite = errors.New("post was modified concurrently")
)
