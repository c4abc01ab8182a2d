package domain

import "errors"

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInternalServer     = errors.New("internal server error")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// UserErrors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserInactive      = errors.New("user account is inactive")
	ErrInvalidPassword   = errors.New("invalid password")
	ErrProfileNotFound   = errors.New("profile not found")
)

// Workflow errors
var (
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrMissionNotOpen    = errors.New("mission is not open")
)

// Upload errors
var (
	ErrFileTooLarge        = errors.New("file too large")
	ErrUnsupportedFile     = errors.New("unsupported file type")
	ErrInvalidDocumentType = errors.New("invalid document type")
)

// Error is a categorised error: Kind is one of the sentinels above and drives
// the HTTP status, Message is safe to show to the client.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// NewError creates a categorised error
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}
