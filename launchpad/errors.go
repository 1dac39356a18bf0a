package launchpad

import "errors"

var (
	// ErrInvalidFactory indicates bad factory construction parameters.
	ErrInvalidFactory = errors.New("launchpad: invalid factory")

	// ErrDuplicateInstance indicates the issued token already has an instance.
	ErrDuplicateInstance = errors.New("launchpad: issued token already registered")

	// ErrUnknownInstance indicates no recognized instance for the issued token.
	ErrUnknownInstance = errors.New("launchpad: unknown instance")

	// ErrUnauthorized indicates the caller is not the factory owner.
	ErrUnauthorized = errors.New("launchpad: unauthorized")
)
