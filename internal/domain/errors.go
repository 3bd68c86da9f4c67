package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("access denied")
	ErrInvalidSettings    = errors.New("invalid notification settings")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("username already exists")
	ErrInvalidUser        = errors.New("invalid user data")
	ErrProtectedUser      = errors.New("user cannot be deleted")
	ErrInvalidEntity      = errors.New("invalid entity")
	ErrNotConfigured      = errors.New("CalDAV not configured")
)
