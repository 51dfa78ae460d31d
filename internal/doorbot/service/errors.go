package service

import "errors"

// Service sentinels. Storage failures are never translated into these;
// they pass through untouched so callers can tell a broken database
// apart from a business denial.
var (
	// ErrNotFound indicates the requested member, role, permission or
	// token does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the subject exists but is not allowed to do
	// what was asked, either because the membership is inactive or
	// because no role grants the required permission.
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthorized indicates the caller failed to authenticate.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidInput indicates malformed or missing input, rejected
	// before any storage access.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict indicates a uniqueness violation, such as creating a
	// member with a tag that is already registered.
	ErrConflict = errors.New("conflict")
)
