package repository

import "errors"

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned on a unique-constraint violation.
	ErrDuplicate = errors.New("duplicate record")
	// ErrTokenNotClaimable is returned by MarkUsed when the token is
	// missing, already used or past its expiry at the claim instant.
	ErrTokenNotClaimable = errors.New("reset token cannot be claimed")
)
