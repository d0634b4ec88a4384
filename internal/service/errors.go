package service

import "fmt"

// InvalidRequestError marks a request the caller can fix: missing or
// contradictory scope fields, malformed course ids.
type InvalidRequestError struct {
	Message string
}

func (e *InvalidRequestError) Error() string {
	return e.Message
}

// NewInvalidRequest creates an InvalidRequestError
func NewInvalidRequest(format string, args ...interface{}) error {
	return &InvalidRequestError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError marks a missing user, moderator or ban.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// NewNotFound creates a NotFoundError
func NewNotFound(format string, args ...interface{}) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}
