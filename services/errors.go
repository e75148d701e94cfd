package services

import "errors"

// Validation-class errors surfaced by the services. Controllers branch on
// these with errors.Is and translate them to HTTP statuses; anything else
// that escapes a service is an unexpected persistence failure.
var (
	ErrSelfTarget       = errors.New("operation cannot target the acting user")
	ErrDuplicateRequest = errors.New("a pending friend request already exists between these users")
	ErrAlreadyFriends   = errors.New("users are already friends")
	ErrInvalidState     = errors.New("friend request does not allow this transition")
	ErrForbidden        = errors.New("actor has no rights over this entity")
	ErrNotFound         = errors.New("entity not found")
	ErrEmptyContent     = errors.New("text must not be empty")
)
