package derror

import "errors"

// Typed failures of the generation backend. The telegram routes map each of
// these to exactly one user-facing explanation.
var (
	ErrRateLimited       = errors.New("generation backend rate limited")
	ErrModelUnavailable  = errors.New("generation model unavailable")
	ErrAuth              = errors.New("generation backend auth error")
	ErrTimeout           = errors.New("generation request timed out")
	ErrMalformedResponse = errors.New("malformed generation response")
	ErrEmptyResponse     = errors.New("empty generation response")
	ErrTruncatedResponse = errors.New("truncated generation response")
	ErrNetwork           = errors.New("generation backend network error")
)
