package interaction

import "errors"

var (
	ErrReentrantDispatch = errors.New("interaction: dispatch already in progress")
	ErrUnknownEvent      = errors.New("interaction: unknown pointer event")
)
