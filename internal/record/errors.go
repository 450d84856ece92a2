package record

import (
	"fmt"
	"strings"
)

// UnknownCommandError means the tool call names a command outside the
// catalog. Persisting it would hand downstream automation a record
// nothing knows how to act on, so it is rejected instead.
type UnknownCommandError struct {
	Command string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command: %s", e.Command)
}

// ValidationError means the arguments do not satisfy the command's
// declared parameters. Missing lists every absent required field;
// Reason carries schema violations for fields that are present.
type ValidationError struct {
	Command string
	Missing []string
	Reason  string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s: missing required parameters: %s", e.Command, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("%s: invalid parameters: %s", e.Command, e.Reason)
}
