package config

import "errors"

var (
	errInvalidDuration = errors.New("invalid duration")
	errInvalidJSON     = errors.New("failed to unmarshal JSON from")
	errInvalidYAML     = errors.New("failed to unmarshal YAML from")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrUnknownHub      = errors.New("hub not found in hub configuration")
)
