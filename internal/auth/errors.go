package auth

import "errors"

var (
	ErrNoSession      = errors.New("no_session")
	ErrInvalidSession = errors.New("invalid_session")
	ErrEmptySecret    = errors.New("session secret is empty")
)
