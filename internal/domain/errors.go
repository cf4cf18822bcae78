package domain

import "errors"

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrAppNotFound     = errors.New("app not found")
	ErrSessionRunning  = errors.New("filter session is running")
	ErrWrongPassphrase = errors.New("wrong passphrase")
	ErrUnknownIntent   = errors.New("unknown intent")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrAgentNotRunning = errors.New("agent not running")
	ErrSecretNotFound  = errors.New("secret not found")
)
