package domain

import "errors"

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidSession  = errors.New("invalid session")
	ErrLaunchFailed    = errors.New("launch failed")
)
