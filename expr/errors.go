package expr

import (
	"errors"
	"fmt"
)

// ErrEmpty is returned when the source contains no math.
var ErrEmpty = errors.New("expr: empty expression")

// ParseError reports malformed input. Pos is a byte offset into the
// NFC-normalized source, which equals the original offset for ASCII input.
type ParseError struct {
	Pos int

	// Expected names the construct the parser was looking for, if any.
	Expected string

	// Command is the control sequence involved, without the backslash.
	Command string

	Msg string
}

func (e *ParseError) Error() string {
	msg := e.Msg
	if msg == "" && e.Expected != "" {
		msg = "expected " + e.Expected
	}
	return fmt.Sprintf("expr: %s at offset %d", msg, e.Pos)
}
