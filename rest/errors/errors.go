package errors

import "fmt"

// NotFoundError is returned when a request names a resource that is not registered
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource '%s' not found", e.Resource)
}

func NewNotFoundError(resource string) error {
	return &NotFoundError{Resource: resource}
}

// InternalError wraps a failure of the executor. Only its message is shown to clients.
type InternalError struct {
	msg   string
	cause error
}

func (e *InternalError) Error() string {
	return e.msg
}

func (e *InternalError) Unwrap() error {
	return e.cause
}

func NewInternalError(text string, cause error) error {
	return &InternalError{msg: text, cause: cause}
}

// UnauthorizedError is returned when a resource scoped to its owner is requested without a caller identity
type UnauthorizedError struct {
	msg string
}

func (e *UnauthorizedError) Error() string {
	return e.msg
}

func NewUnauthorizedError(text string) error {
	return &UnauthorizedError{msg: text}
}
