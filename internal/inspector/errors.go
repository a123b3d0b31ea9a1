package inspector

import "errors"

var (
	ErrAlreadyRunning = errors.New("inspector is already running")
	ErrNotRunning     = errors.New("inspector is not running")
	ErrUnauthorized   = errors.New("unauthorized")
)
