package codec

import (
	"errors"
	"fmt"
)

// ErrStringTooLong is returned when a decoded length exceeds MaxStringLen.
var ErrStringTooLong = errors.New("codec: string exceeds maximum length")

// FormatError reports malformed encoded data.
type FormatError struct {
	Tag byte
	Msg string
}

func (e *FormatError) Error() string {
	if e.Tag == 0 {
		return "codec: " + e.Msg
	}
	return fmt.Sprintf("codec: tag %d: %s", e.Tag, e.Msg)
}
