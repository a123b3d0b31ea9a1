package scheduler

import "errors"

var ErrNoFrameSource = errors.New("scheduler: frame source is required")
