package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrUpstreamUnavailable   = errors.New("upstream unavailable")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
