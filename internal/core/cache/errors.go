package cache

import "errors"

var (
	ErrInvalidSize   = errors.New("cache: entry size must not be negative")
	ErrEntryTooLarge = errors.New("cache: entry exceeds the cache budget")
)
