package orchestrator

import "errors"

var (
	// ErrUnsupportedAction is returned for actions other than start and stop.
	ErrUnsupportedAction = errors.New("unsupported action")
	// ErrEmptyCommand is returned when no command line was supplied.
	ErrEmptyCommand = errors.New("command is required")
)
