package domain

import "errors"

var (
	ErrUnauthenticated   = errors.New("could not validate credentials")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("conflict")
	ErrUpstream          = errors.New("upstream failure")
)
