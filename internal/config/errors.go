package config

import (
	"errors"
)

// Sentinel errors for configuration loading and validation, matchable
// with errors.Is from callers.
var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrLoadConfig    = errors.New("loading configuration failed")
)
