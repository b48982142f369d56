package jsonseq

import (
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"
)

// Defaults applied by New when the corresponding Config field is zero.
const (
	DefaultBufferSize = 64
	DefaultReadSize   = 512
	DefaultMaxDepth   = 16

	// minBufferSize leaves room for at least one decoded escape sequence.
	minBufferSize = 2 * utf8.UTFMax
)

// Config controls sequencer resource bounds.
type Config struct {
	// BufferSize is the scratch buffer size for scalar text. Strings
	// longer than this are delivered in partial events.
	BufferSize int

	// ReadSize is the transport read chunk size.
	ReadSize int

	// MaxDepth bounds structural nesting; exceeding it is a syntax error.
	MaxDepth int

	// BytesRemaining caps the total bytes requested from the reader.
	// Values <= 0 mean the total length is unknown.
	BytesRemaining int64
}

// SyntaxError reports malformed JSON input.
type SyntaxError struct {
	// Offset is the byte position at which the error was detected.
	Offset int64
	// Msg describes the problem.
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid JSON at byte %d: %s", e.Offset, e.Msg)
}

type seqState uint8

const (
	stateValue seqState = iota // expecting a value
	stateObjFirst              // after '{': key or '}'
	stateObjKey                // after ',' in an object: key
	stateObjColon              // after a key: ':'
	stateObjNext               // after a member value: ',' or '}'
	stateArrFirst              // after '[': value or ']'
	stateArrNext               // after an element: ',' or ']'
	stateDone                  // top-level value closed
)

const (
	containerObject = byte('o')
	containerArray  = byte('a')
)

// Sequencer reads JSON from an io.Reader and produces structural events.
// It is not safe for concurrent use.
type Sequencer struct {
	r    io.Reader
	rbuf []byte
	rpos int
	rlen int
	// pendErr is a reader error held back until the buffered bytes drain.
	pendErr error

	scratch   []byte
	offset    int64
	remaining int64 // -1 when unknown

	stack []byte
	state seqState

	// inString and keyString carry lexer state across partial events.
	inString  bool
	keyString bool

	err error // sticky
}

// New creates a sequencer reading from r. Zero Config fields take the
// package defaults.
func New(r io.Reader, cfg Config) *Sequencer {
	bufSize := cfg.BufferSize
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	if bufSize < minBufferSize {
		bufSize = minBufferSize
	}
	readSize := cfg.ReadSize
	if readSize <= 0 {
		readSize = DefaultReadSize
	}
	maxDepth := cfg.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	remaining := int64(-1)
	if cfg.BytesRemaining > 0 {
		remaining = cfg.BytesRemaining
	}
	return &Sequencer{
		r:         r,
		rbuf:      make([]byte, readSize),
		scratch:   make([]byte, bufSize),
		remaining: remaining,
		stack:     make([]byte, 0, maxDepth),
		state:     stateValue,
	}
}

// Offset returns the number of input bytes consumed so far.
func (s *Sequencer) Offset() int64 {
	return s.offset
}

// Next returns the next structural event. It returns io.EOF once the
// top-level value has closed and the input is exhausted, and
// io.ErrUnexpectedEOF if the input ends inside the document. Errors are
// sticky: after the first error every subsequent call fails the same way.
func (s *Sequencer) Next() (Event, error) {
	if s.err != nil {
		return Event{}, s.err
	}
	ev, err := s.next()
	if err != nil {
		s.err = err
		return Event{}, err
	}
	return ev, nil
}

func (s *Sequencer) next() (Event, error) {
	if s.inString {
		return s.scanString()
	}
	for {
		if err := s.skipSpace(); err != nil {
			if err == io.EOF {
				if s.state == stateDone {
					return Event{}, io.EOF
				}
				return Event{}, io.ErrUnexpectedEOF
			}
			return Event{}, err
		}
		c := s.rbuf[s.rpos]
		switch s.state {
		case stateDone:
			return Event{}, s.syntaxf("unexpected data after top-level value")
		case stateValue, stateArrFirst:
			if c == ']' && s.state == stateArrFirst {
				s.consume()
				return s.closeArray()
			}
			return s.beginValue(c)
		case stateObjFirst:
			switch c {
			case '}':
				s.consume()
				return s.closeObject()
			case '"':
				s.consume()
				s.startString(true)
				return s.scanString()
			}
			return Event{}, s.syntaxf("expected object key or '}', got %q", c)
		case stateObjKey:
			if c == '"' {
				s.consume()
				s.startString(true)
				return s.scanString()
			}
			return Event{}, s.syntaxf("expected object key, got %q", c)
		case stateObjColon:
			if c == ':' {
				s.consume()
				s.state = stateValue
				continue
			}
			return Event{}, s.syntaxf("expected ':', got %q", c)
		case stateObjNext:
			switch c {
			case ',':
				s.consume()
				s.state = stateObjKey
				continue
			case '}':
				s.consume()
				return s.closeObject()
			}
			return Event{}, s.syntaxf("expected ',' or '}', got %q", c)
		case stateArrNext:
			switch c {
			case ',':
				s.consume()
				s.state = stateValue
				continue
			case ']':
				s.consume()
				return s.closeArray()
			}
			return Event{}, s.syntaxf("expected ',' or ']', got %q", c)
		}
	}
}

func (s *Sequencer) beginValue(c byte) (Event, error) {
	switch {
	case c == '{':
		s.consume()
		if err := s.push(containerObject); err != nil {
			return Event{}, err
		}
		s.state = stateObjFirst
		return Event{Kind: KindObjectStart}, nil
	case c == '[':
		s.consume()
		if err := s.push(containerArray); err != nil {
			return Event{}, err
		}
		s.state = stateArrFirst
		return Event{Kind: KindArrayStart}, nil
	case c == '"':
		s.consume()
		s.startString(false)
		return s.scanString()
	case c == '-' || (c >= '0' && c <= '9'):
		return s.scanNumber()
	case c == 't':
		return s.scanLiteral("true", Event{Kind: KindValue, Scalar: ScalarBool, Bool: true})
	case c == 'f':
		return s.scanLiteral("false", Event{Kind: KindValue, Scalar: ScalarBool})
	case c == 'n':
		return s.scanLiteral("null", Event{Kind: KindValue, Scalar: ScalarNull})
	}
	return Event{}, s.syntaxf("unexpected character %q", c)
}

func (s *Sequencer) push(kind byte) error {
	if len(s.stack) == cap(s.stack) {
		return s.syntaxf("nesting deeper than %d levels", cap(s.stack))
	}
	s.stack = append(s.stack, kind)
	return nil
}

// afterValue returns the state that follows a completed value.
func (s *Sequencer) afterValue() seqState {
	if len(s.stack) == 0 {
		return stateDone
	}
	if s.stack[len(s.stack)-1] == containerObject {
		return stateObjNext
	}
	return stateArrNext
}

func (s *Sequencer) closeObject() (Event, error) {
	s.stack = s.stack[:len(s.stack)-1]
	s.state = s.afterValue()
	return Event{Kind: KindObjectEnd}, nil
}

func (s *Sequencer) closeArray() (Event, error) {
	s.stack = s.stack[:len(s.stack)-1]
	s.state = s.afterValue()
	return Event{Kind: KindArrayEnd}, nil
}

func (s *Sequencer) startString(key bool) {
	s.inString = true
	s.keyString = key
}

func (s *Sequencer) stringEvent(b []byte, partial bool) Event {
	kind := KindValue
	if s.keyString {
		kind = KindKey
	}
	return Event{Kind: kind, Scalar: ScalarString, Bytes: b, Partial: partial}
}

func (s *Sequencer) scanString() (Event, error) {
	buf := s.scratch
	n := 0
	for {
		// Keep room for one decoded escape sequence; flush a partial
		// fragment when the scratch buffer is effectively full.
		if len(buf)-n < utf8.UTFMax {
			return s.stringEvent(buf[:n], true), nil
		}
		c, err := s.readByte()
		if err != nil {
			return Event{}, eofInValue(err)
		}
		switch {
		case c == '"':
			s.inString = false
			ev := s.stringEvent(buf[:n], false)
			if s.keyString {
				s.state = stateObjColon
			} else {
				s.state = s.afterValue()
			}
			return ev, nil
		case c == '\\':
			m, err := s.readEscape(buf[n:])
			if err != nil {
				return Event{}, err
			}
			n += m
		case c < 0x20:
			return Event{}, s.syntaxf("control character in string")
		default:
			buf[n] = c
			n++
		}
	}
}

// readEscape decodes one escape sequence (backslash already consumed) into
// dst, which must have room for utf8.UTFMax bytes.
func (s *Sequencer) readEscape(dst []byte) (int, error) {
	c, err := s.readByte()
	if err != nil {
		return 0, eofInValue(err)
	}
	switch c {
	case '"', '\\', '/':
		dst[0] = c
		return 1, nil
	case 'b':
		dst[0] = '\b'
		return 1, nil
	case 'f':
		dst[0] = '\f'
		return 1, nil
	case 'n':
		dst[0] = '\n'
		return 1, nil
	case 'r':
		dst[0] = '\r'
		return 1, nil
	case 't':
		dst[0] = '\t'
		return 1, nil
	case 'u':
		r, err := s.readHex4()
		if err != nil {
			return 0, err
		}
		if r >= 0xD800 && r <= 0xDBFF {
			// High surrogate; a low surrogate escape must follow.
			c1, err := s.readByte()
			if err != nil {
				return 0, eofInValue(err)
			}
			c2, err := s.readByte()
			if err != nil {
				return 0, eofInValue(err)
			}
			if c1 != '\\' || c2 != 'u' {
				return 0, s.syntaxf("unpaired surrogate in string escape")
			}
			r2, err := s.readHex4()
			if err != nil {
				return 0, err
			}
			if r2 < 0xDC00 || r2 > 0xDFFF {
				return 0, s.syntaxf("invalid low surrogate in string escape")
			}
			r = 0x10000 + (r-0xD800)<<10 + (r2 - 0xDC00)
		} else if r >= 0xDC00 && r <= 0xDFFF {
			r = utf8.RuneError
		}
		return utf8.EncodeRune(dst, r), nil
	}
	return 0, s.syntaxf("invalid string escape %q", c)
}

func (s *Sequencer) readHex4() (rune, error) {
	var r rune
	for i := 0; i < 4; i++ {
		c, err := s.readByte()
		if err != nil {
			return 0, eofInValue(err)
		}
		switch {
		case c >= '0' && c <= '9':
			r = r<<4 | rune(c-'0')
		case c >= 'a' && c <= 'f':
			r = r<<4 | rune(c-'a'+10)
		case c >= 'A' && c <= 'F':
			r = r<<4 | rune(c-'A'+10)
		default:
			return 0, s.syntaxf("invalid hex digit %q in string escape", c)
		}
	}
	return r, nil
}

func (s *Sequencer) scanNumber() (Event, error) {
	n := 0
	isFloat := false
	for {
		c, err := s.peekByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Event{}, err
		}
		if (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.' || c == 'e' || c == 'E' {
			if c == '.' || c == 'e' || c == 'E' {
				isFloat = true
			}
			if n == len(s.scratch) {
				return Event{}, s.syntaxf("number longer than %d bytes", len(s.scratch))
			}
			s.scratch[n] = c
			n++
			s.consume()
			continue
		}
		break
	}
	s.state = s.afterValue()
	text := s.scratch[:n]
	if !isFloat {
		if v, ok := parseInt(text); ok {
			return Event{Kind: KindValue, Scalar: ScalarInt, Int: v, Bytes: text}, nil
		}
	}
	f, err := strconv.ParseFloat(string(text), 64)
	if err != nil {
		return Event{}, s.syntaxf("invalid number %q", text)
	}
	return Event{Kind: KindValue, Scalar: ScalarFloat, Float: f, Bytes: text}, nil
}

func (s *Sequencer) scanLiteral(lit string, ev Event) (Event, error) {
	for i := 0; i < len(lit); i++ {
		c, err := s.readByte()
		if err != nil {
			return Event{}, eofInValue(err)
		}
		if c != lit[i] {
			return Event{}, s.syntaxf("invalid literal, expected %q", lit)
		}
	}
	s.state = s.afterValue()
	return ev, nil
}

// parseInt parses a JSON integer without allocating. ok is false on
// overflow or malformed input; the caller falls back to float parsing.
func parseInt(b []byte) (int64, bool) {
	if len(b) == 0 {
		return 0, false
	}
	neg := false
	i := 0
	if b[0] == '-' {
		neg = true
		i++
	}
	if i == len(b) {
		return 0, false
	}
	var v int64
	for ; i < len(b); i++ {
		c := b[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		d := int64(c - '0')
		if v > (1<<63-1-d)/10 {
			return 0, false
		}
		v = v*10 + d
	}
	if neg {
		v = -v
	}
	return v, true
}

func (s *Sequencer) consume() {
	s.rpos++
	s.offset++
}

func (s *Sequencer) skipSpace() error {
	for {
		if s.rpos == s.rlen {
			if err := s.fill(); err != nil {
				return err
			}
		}
		c := s.rbuf[s.rpos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			s.consume()
			continue
		}
		return nil
	}
}

func (s *Sequencer) peekByte() (byte, error) {
	if s.rpos == s.rlen {
		if err := s.fill(); err != nil {
			return 0, err
		}
	}
	return s.rbuf[s.rpos], nil
}

func (s *Sequencer) readByte() (byte, error) {
	if s.rpos == s.rlen {
		if err := s.fill(); err != nil {
			return 0, err
		}
	}
	c := s.rbuf[s.rpos]
	s.consume()
	return c, nil
}

func (s *Sequencer) fill() error {
	if s.pendErr != nil {
		err := s.pendErr
		s.pendErr = nil
		return err
	}
	limit := len(s.rbuf)
	if s.remaining >= 0 {
		if s.remaining == 0 {
			return io.EOF
		}
		if s.remaining < int64(limit) {
			limit = int(s.remaining)
		}
	}
	for {
		n, err := s.r.Read(s.rbuf[:limit])
		if n > 0 {
			s.rlen = n
			s.rpos = 0
			if s.remaining >= 0 {
				s.remaining -= int64(n)
			}
			if err != nil {
				s.pendErr = err
			}
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (s *Sequencer) syntaxf(format string, args ...any) error {
	return &SyntaxError{Offset: s.offset, Msg: fmt.Sprintf(format, args...)}
}

// eofInValue maps a clean EOF inside a token to io.ErrUnexpectedEOF.
func eofInValue(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
