package api

import (
	"errors"
	"fmt"
)

// ErrSessionExpired marks the forced-logout path: the access token was
// rejected and the refresh attempt failed too. Callers use errors.Is on
// this to route the user back to login.
var ErrSessionExpired = errors.New("session expired")

// Error is a failure reported by the server. Message carries the
// server-supplied error text verbatim when the response had one, else a
// generic fallback, so it is always safe to show to the user.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// IsAuthError reports whether err is a 401 from the server.
func IsAuthError(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == 401
}
