package api

import "errors"

var ErrUnauthorized = errors.New("core api rejected credential")

// CoreError is a success=false response from the core API, carrying the
// server-provided message.
type CoreError struct {
	Message string
	Status  int
}

func (e *CoreError) Error() string {
	if e.Message == "" {
		return "core api request rejected"
	}
	return e.Message
}
