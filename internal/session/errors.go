package session

import (
	"errors"
	"fmt"
)

type AuthErrorKind int

const (
	// AuthFailed means the portal answered but did not accept the credentials.
	AuthFailed AuthErrorKind = iota
	// AuthServerError means the portal could not be reached or answered with
	// a non-2xx status.
	AuthServerError
)

func (k AuthErrorKind) String() string {
	switch k {
	case AuthFailed:
		return "auth_failed"
	case AuthServerError:
		return "server_error"
	}
	return fmt.Sprintf("unknown(%d)", int(k))
}

// AuthError is the only error Login returns. Message is meant to be shown to
// the user as is.
type AuthError struct {
	Kind    AuthErrorKind
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("login %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("login %s: %s", e.Kind, e.Message)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func isAuthKind(err error, kind AuthErrorKind) bool {
	var authErr *AuthError
	return errors.As(err, &authErr) && authErr.Kind == kind
}

// IsAuthFailed reports whether err means the credentials were rejected.
func IsAuthFailed(err error) bool {
	return isAuthKind(err, AuthFailed)
}

// IsAuthServerError reports whether err means the portal could not process
// the login.
func IsAuthServerError(err error) bool {
	return isAuthKind(err, AuthServerError)
}
