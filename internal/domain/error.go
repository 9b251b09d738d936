package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound          = errors.New("entity not found")
	ErrNoActiveChat      = errors.New("no active chat session")
	ErrDailyLimitReached = errors.New("daily dialog limit reached")
	ErrInvalidArgument   = errors.New("invalid argument")
)
