package config

import "errors"

var (
	// ErrMissingAPIKeys indicates BOSON_API_KEYS was empty or unset
	ErrMissingAPIKeys = errors.New("BOSON_API_KEYS must be set in the environment")
)
