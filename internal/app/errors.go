package app

import "errors"

// Validation failures.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUsernameExists  = errors.New("username already exists")
	ErrEmailExists     = errors.New("email already exists")
	ErrContentRequired = errors.New("post content is required")
	ErrContentTooLong  = errors.New("post content is too long")
	ErrInvalidImage    = errors.New("invalid image")
)

var (
	ErrInvalidCredential = errors.New("invalid username or password")
	ErrTooManyAttempts   = errors.New("too many failed login attempts, try again later")
	ErrForbidden         = errors.New("not authorized to modify this resource")
	ErrPostNotFound      = errors.New("post not found")
	ErrUserNotFound      = errors.New("user not found")
)
