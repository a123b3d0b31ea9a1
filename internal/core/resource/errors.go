package resource

import "errors"

var (
	ErrNilLoader   = errors.New("resource: loader is nil")
	ErrEmptyKey    = errors.New("resource: key is empty")
	ErrLoaderPanic = errors.New("resource: loader panicked")
)
