package config

import "errors"

var (
	// ErrInvalid is wrapped by every validation failure.
	ErrInvalid = errors.New("config: invalid value")

	// ErrUnknownPreset is returned when a preset name does not exist.
	ErrUnknownPreset = errors.New("config: unknown preset")
)
