package config

import "errors"

// Error variables for configuration loading.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrCodecEmpty         = errors.New("codec cannot be empty")
	ErrWindowSize         = errors.New("window_size must be >= 0")
	ErrWriteback          = errors.New("writeback must be \"none\" or \"sync\"")
	ErrLogLevel           = errors.New("log_level must be debug, info, warn or error")
)
