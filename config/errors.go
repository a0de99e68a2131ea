package config

import "errors"

// Configuration errors.
var (
	ErrConfigNotFound   = errors.New("config: file not found")
	ErrConfigInvalid    = errors.New("config: invalid configuration")
	ErrInvalidValue     = errors.New("config: invalid value")
	ErrInvalidDuration  = errors.New("config: invalid duration")
	ErrSecretUnresolved = errors.New("config: unresolved secret reference")
)
