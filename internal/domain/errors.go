package domain

import (
	"errors"
	"strings"
)

// Sentinel errors shared by repositories, services and controllers.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrDuplicateUser    = errors.New("user already exists")
	ErrEventNotFound    = errors.New("event not found")
	ErrDuplicateName    = errors.New("name already in use")
	ErrInvalidReference = errors.New("referenced category or organizer does not exist")
	ErrForbidden        = errors.New("forbidden")
	ErrIdentityProvider = errors.New("identity provider request failed")
)

// ValidationError carries one message per failed rule.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}
