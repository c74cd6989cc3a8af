package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// Error reports a failed remote operation. Message is safe to show to users.
type Error struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewStatusError builds an Error from a non-success HTTP status. A non-empty
// detail from the server wins over the generic status message.
func NewStatusError(op string, status int, detail string) *Error {
	message := detail
	if message == "" {
		message = fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status))
	}

	return &Error{Op: op, Status: status, Message: message}
}

// Wrap turns err into an *Error for op unless it already is one.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}

	var remoteErr *Error
	if errors.As(err, &remoteErr) {
		return err
	}

	return &Error{Op: op, Message: err.Error(), Err: err}
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var remoteErr *Error
	if errors.As(err, &remoteErr) {
		return remoteErr.Status
	}
	return 0
}
