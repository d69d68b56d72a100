package rss

import (
	"errors"
	"fmt"
)

// Stages at which a fetch can fail.
const (
	StageRequest   = "request"
	StageTransport = "transport"
	StageStatus    = "status"
	StageParse     = "parse"
)

// FeedError is returned for any failed fetch. No articles accompany it.
type FeedError struct {
	URL   string
	Stage string
	Err   error
}

// Error implements the error interface.
func (e *FeedError) Error() string {
	return fmt.Sprintf("feed %s: %s: %v", e.URL, e.Stage, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FeedError) Unwrap() error {
	return e.Err
}

// IsFeedError reports whether err is, or wraps, a *FeedError.
func IsFeedError(err error) bool {
	var feedErr *FeedError
	return errors.As(err, &feedErr)
}
