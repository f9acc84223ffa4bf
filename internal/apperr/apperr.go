package apperr

import "errors"

// Sentinels for every failure class the API surfaces. Services wrap these
// with fmt.Errorf("...: %w", ...) and handlers map them to status codes.
var (
	// ErrInvalidCredentials covers a bad password or an unknown email on login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateIdentity is returned when the registration email is taken.
	ErrDuplicateIdentity = errors.New("identity already exists")
	// ErrUnauthenticated covers a missing, invalid, or expired session token.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden covers role or plan gates the caller does not clear.
	ErrForbidden = errors.New("forbidden")
	// ErrQuotaExceeded means the usage ledger is at or over its limit.
	ErrQuotaExceeded = errors.New("usage limit reached")
	// ErrGenerationFailed covers network errors, non-2xx responses, and
	// unparseable output from the generation service.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrInvalidInput covers empty required fields and malformed requests.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is the generic missing-resource sentinel.
	ErrNotFound = errors.New("not found")
)
