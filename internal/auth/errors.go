package auth

import "errors"

var (
	// ErrInvalidToken is returned when the provided token is invalid
	ErrInvalidToken      = errors.New("invalid token")
	ErrNoValidatedClaims = errors.New("no validated claims found in request ctx")
	ErrInvalidSubject    = errors.New("invalid subject claim")
	// ErrNotEntitled is returned when the user lacks the capability an
	// operation requires.
	ErrNotEntitled = errors.New("user is not entitled to this operation")
)
