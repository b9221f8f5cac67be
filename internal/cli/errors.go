package cli

import "errors"

// Error variables for command handling.
var (
	ErrNoCommand      = errors.New("no command provided")
	ErrUnknownCommand = errors.New("unknown command")
	ErrUnknownCodec   = errors.New("unknown codec")
	ErrMissingArgs    = errors.New("missing arguments")
	ErrTooManyArgs    = errors.New("too many arguments")
	ErrInvalidIndex   = errors.New("invalid index")
	ErrInvalidValue   = errors.New("invalid value")
	ErrInvalidLength  = errors.New("invalid length")
	ErrFileExists     = errors.New("file already exists")
)
