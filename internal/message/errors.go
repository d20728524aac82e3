package message

import (
	"errors"
	"fmt"
)

// ErrTruncated is returned when a message body is shorter than its fields.
var ErrTruncated = errors.New("message truncated")

// ErrVersion is returned for message versions the engine does not read.
var ErrVersion = errors.New("unsupported message version")

func errTruncated(what string) error {
	return fmt.Errorf("%s: %w", what, ErrTruncated)
}

func errVersion(what string, v uint8) error {
	return fmt.Errorf("%s version %d: %w", what, v, ErrVersion)
}
