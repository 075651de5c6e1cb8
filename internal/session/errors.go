// internal/session/errors.go
package session

import "errors"

var (
	// ErrIncompletePayload is returned when login/register succeed without
	// both a token and a user.
	ErrIncompletePayload = errors.New("session: auth payload is missing token or user")
	// ErrNoExpiry is returned when the token carries no readable exp claim.
	ErrNoExpiry = errors.New("session: token has no expiry")
)
