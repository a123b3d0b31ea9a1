package component

import "errors"

var (
	ErrNotRegistered       = errors.New("component: not registered")
	ErrInvalidDescriptor   = errors.New("component: descriptor needs a name and a factory")
	ErrDuplicateInstance   = errors.New("component: instance name already in use")
	ErrMountFailed         = errors.New("component: mount failed")
	ErrDisposedDuringMount = errors.New("component: disposed while mounting")
)
