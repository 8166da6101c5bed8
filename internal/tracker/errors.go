package tracker

import "github.com/pkg/errors"

var (
	// ErrNoFrame is returned when Process is called without an image.
	ErrNoFrame = errors.New("no input frame")

	// ErrUnknownModule is returned by New for unregistered module names.
	ErrUnknownModule = errors.New("unknown module")

	// ErrUnknownParam is returned for parameter names a module does not declare.
	ErrUnknownParam = errors.New("unknown parameter")

	// ErrInvalidValue is returned when a parameter value fails validation.
	ErrInvalidValue = errors.New("invalid parameter value")
)
