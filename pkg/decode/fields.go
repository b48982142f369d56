package decode

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ciniml/remo-api/pkg/model"
)

// Field decoders. Each takes raw scalar text and returns a typed value or
// an error wrapping the matching sentinel. They are pure: no external
// state is consulted.

// ParseTimestamp parses RFC3339 date-time text.
func ParseTimestamp(b []byte) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, string(b))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, b)
	}
	return t, nil
}

// ParseUUID parses canonical UUID text.
func ParseUUID(b []byte) (uuid.UUID, error) {
	id, err := uuid.ParseBytes(b)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("%w: %q", ErrInvalidUUID, b)
	}
	return id, nil
}

// DecodeHex decodes even-length hex text into dst and returns the number
// of bytes written. Odd length or non-hex characters fail with
// ErrInvalidHex; output longer than dst fails with ErrBufferTooSmall.
func DecodeHex(dst []byte, src []byte) (int, error) {
	if len(src)%2 != 0 {
		return 0, fmt.Errorf("%w: odd length %d", ErrInvalidHex, len(src))
	}
	n := len(src) / 2
	if n > len(dst) {
		return 0, fmt.Errorf("%w: need %d bytes, have %d", ErrBufferTooSmall, n, len(dst))
	}
	for i := 0; i < n; i++ {
		hi, ok1 := hexVal(src[2*i])
		lo, ok2 := hexVal(src[2*i+1])
		if !ok1 || !ok2 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidHex, src)
		}
		dst[i] = hi<<4 | lo
	}
	return n, nil
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// ParseMacAddress parses a 6-byte hardware address written as hex pairs
// separated by ':' or '-', or as 12 bare hex digits.
func ParseMacAddress(b []byte) (model.MacAddress, error) {
	var mac model.MacAddress
	switch len(b) {
	case model.MacTextLen: // separated form
		sep := b[2]
		if sep != ':' && sep != '-' {
			return mac, fmt.Errorf("%w: %q", ErrInvalidHex, b)
		}
		for i := 0; i < 6; i++ {
			if i > 0 && b[i*3-1] != sep {
				return mac, fmt.Errorf("%w: %q", ErrInvalidHex, b)
			}
			if _, err := DecodeHex(mac[i:i+1], b[i*3:i*3+2]); err != nil {
				return mac, err
			}
		}
		return mac, nil
	case 12: // bare form
		if _, err := DecodeHex(mac[:], b); err != nil {
			return mac, err
		}
		return mac, nil
	}
	return mac, fmt.Errorf("%w: %q", ErrInvalidHex, b)
}

// BoundedString copies scalar text into a string of at most max bytes.
// Longer input fails with ErrValueTooLong, or is shortened at a rune
// boundary when truncate is set.
func BoundedString(b []byte, max int, truncate bool) (string, error) {
	if len(b) <= max {
		return string(b), nil
	}
	if !truncate {
		return "", fmt.Errorf("%w: %d bytes exceeds limit %d", ErrValueTooLong, len(b), max)
	}
	n := max
	for n > 0 && !utf8.RuneStart(b[n]) {
		n--
	}
	return string(b[:n]), nil
}
