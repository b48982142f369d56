package decode

import (
	"errors"
	"fmt"
)

// Decode failure kinds. Every fatal decode error wraps exactly one of
// these sentinels; match with errors.Is.
var (
	// ErrStackOverflow means structural nesting exceeded the
	// schema-derived bound.
	ErrStackOverflow = errors.New("path stack overflow")

	// ErrUnexpectedToken means a structural event arrived in a state
	// that cannot accept it.
	ErrUnexpectedToken = errors.New("unexpected token")

	// ErrUnexpectedEOF means the input ended before the document closed.
	ErrUnexpectedEOF = errors.New("unexpected end of input")

	// ErrIncompleteRecord means a record object closed without all
	// required fields set.
	ErrIncompleteRecord = errors.New("incomplete record")

	// ErrInvalidTimestamp means a timestamp field was not valid RFC3339.
	ErrInvalidTimestamp = errors.New("invalid timestamp")

	// ErrInvalidHex means a hex field had odd length or non-hex
	// characters.
	ErrInvalidHex = errors.New("invalid hex string")

	// ErrInvalidUUID means a UUID field was not in canonical form.
	ErrInvalidUUID = errors.New("invalid UUID")

	// ErrUnknownApplianceType means an appliance "type" string is not one
	// of the known enum values.
	ErrUnknownApplianceType = errors.New("unknown appliance type")

	// ErrValueTooLong means a scalar exceeded its fixed-capacity bound.
	ErrValueTooLong = errors.New("value too long")

	// ErrBufferTooSmall means decoded bytes exceeded the destination
	// capacity.
	ErrBufferTooSmall = errors.New("buffer too small")
)

// Error is a fatal decode failure, carrying the failure kind, the document
// path at which it occurred, and the input byte offset.
type Error struct {
	// Kind is one of the Err... sentinels, or nil when the failure is a
	// passed-through source or sequencer error.
	Kind error

	// Path is the document path at the failure, e.g. "devices[2].users[0]".
	Path string

	// Offset is the input byte offset at the failure.
	Offset int64

	// Detail optionally describes the failure further.
	Detail string

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := "decode failed"
	switch {
	case e.Kind != nil && e.Detail != "":
		msg = fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	case e.Kind != nil:
		msg = e.Kind.Error()
	case e.Err != nil:
		msg = e.Err.Error()
	}
	if e.Path != "" {
		return fmt.Sprintf("%s (at %s, byte %d)", msg, e.Path, e.Offset)
	}
	return fmt.Sprintf("%s (byte %d)", msg, e.Offset)
}

// Unwrap exposes both the kind sentinel and the underlying cause to
// errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
