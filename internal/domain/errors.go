package domain

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrNoResult    = errors.New("no analysis result available yet")
	ErrRateLimited = errors.New("rate limited")
	ErrContextDone = errors.New("context cancelled")
)
