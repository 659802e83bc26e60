package domain

import "errors"

var (
	ErrInvalidRole   = errors.New("session: invalid role")
	ErrMissingUserID = errors.New("session: missing user id")
	ErrMalformed     = errors.New("session: malformed value")
	ErrExpired       = errors.New("session: expired")
	ErrNoSession     = errors.New("session: no session")
)
