package llm

import "errors"

// Common provider errors
var (
	// ErrRateLimit indicates the rate limit has been exceeded
	ErrRateLimit = errors.New("rate limit exceeded. Please try again later")

	// ErrEmptyResponse indicates the provider returned an empty response
	ErrEmptyResponse = errors.New("the provider returned an empty response")
)

// RateLimitError represents a rate limit error with optional custom message
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string {
	if e.Message == "" {
		return "rate limit exceeded. Please try again later"
	}
	return e.Message
}

// Is implements errors.Is support for RateLimitError.
func (e *RateLimitError) Is(target error) bool {
	_, ok := target.(*RateLimitError)
	return ok
}

// NewRateLimitError creates a new rate limit error with optional custom message
func NewRateLimitError(message ...string) *RateLimitError {
	err := &RateLimitError{}
	if len(message) > 0 {
		err.Message = message[0]
	}
	return err
}

// EmptyResponseError represents an empty response error
type EmptyResponseError struct {
	Message string
}

func (e *EmptyResponseError) Error() string {
	if e.Message == "" {
		return "the provider returned an empty response"
	}
	return e.Message
}

// Is implements errors.Is support for EmptyResponseError.
func (e *EmptyResponseError) Is(target error) bool {
	_, ok := target.(*EmptyResponseError)
	return ok
}

// NewEmptyResponseError creates a new empty response error
func NewEmptyResponseError(message string) *EmptyResponseError {
	return &EmptyResponseError{Message: message}
}

// UnreachableError indicates a transport-level connection failure. It is a
// distinct, reportable condition: callers must not fold it into "no results".
type UnreachableError struct {
	Message string
}

func (e *UnreachableError) Error() string {
	if e.Message == "" {
		return "provider unreachable"
	}
	return e.Message
}

// Is implements errors.Is support for UnreachableError.
func (e *UnreachableError) Is(target error) bool {
	_, ok := target.(*UnreachableError)
	return ok
}

// NewUnreachableError creates a new provider-unreachable error
func NewUnreachableError(message string) *UnreachableError {
	return &UnreachableError{Message: message}
}

// IsUnreachable reports whether err wraps a provider-unreachable condition.
func IsUnreachable(err error) bool {
	return errors.Is(err, &UnreachableError{})
}
