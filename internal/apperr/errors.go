package apperr

import "errors"

// ErrInvalid is returned when the input fails domain validation.
var ErrInvalid = errors.New("invalid input")

// ErrMissingWindow is returned when an analytics call is made without a
// usable time window. Collaborators are contracted to validate the window
// before reaching the engines, so hitting this means a programming error
// upstream, not bad user input.
var ErrMissingWindow = errors.New("time window is required")

// ErrNotFound indicates that the requested resource does not exist.
var ErrNotFound = errors.New("not found")
