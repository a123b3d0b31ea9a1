package animation

import "errors"

var (
	ErrInvalidTarget = errors.New("animation: target must be a non-nil comparable value")
	ErrNilClip       = errors.New("animation: clip is nil")
)
