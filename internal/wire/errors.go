package wire

import (
	"errors"
	"fmt"
)

// Framing errors.
var (
	ErrOversize     = errors.New("payload exceeds maximum frame size")
	ErrNoSeparator  = errors.New("missing '$' separator")
	ErrEmptyCommand = errors.New("empty command")
	ErrBadCommand   = errors.New("command must not contain '$'")
)

// Name validation errors. The messages are user-facing: handlers embed them
// verbatim in Error frames.
var (
	ErrNameEmpty     = errors.New("name must not be empty")
	ErrNameTooLong   = fmt.Errorf("name must not exceed %d characters", MaxNameLen)
	ErrNameForbidden = errors.New("name must not contain '$', ',' or spaces")
)
