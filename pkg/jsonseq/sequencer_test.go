package jsonseq

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

// render flattens an event into a comparable string.
func render(ev Event) string {
	switch ev.Kind {
	case KindObjectStart:
		return "{"
	case KindObjectEnd:
		return "}"
	case KindArrayStart:
		return "["
	case KindArrayEnd:
		return "]"
	case KindKey:
		if ev.Partial {
			return "key:" + string(ev.Bytes) + "+"
		}
		return "key:" + string(ev.Bytes)
	case KindValue:
		switch ev.Scalar {
		case ScalarString:
			if ev.Partial {
				return "str:" + string(ev.Bytes) + "+"
			}
			return "str:" + string(ev.Bytes)
		case ScalarInt:
			return fmt.Sprintf("int:%d", ev.Int)
		case ScalarFloat:
			return fmt.Sprintf("float:%v", ev.Float)
		case ScalarBool:
			return fmt.Sprintf("bool:%v", ev.Bool)
		case ScalarNull:
			return "null"
		}
	}
	return "?"
}

func collect(t *testing.T, input string, cfg Config) []string {
	t.Helper()
	s := New(strings.NewReader(input), cfg)
	var out []string
	for {
		ev, err := s.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Next: %v (events so far: %v)", err, out)
		}
		out = append(out, render(ev))
	}
}

func TestSequencerEvents(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "empty object",
			input: `{}`,
			want:  []string{"{", "}"},
		},
		{
			name:  "empty array",
			input: `[]`,
			want:  []string{"[", "]"},
		},
		{
			name:  "flat object",
			input: `{"a": 1, "b": "two", "c": true, "d": null}`,
			want:  []string{"{", "key:a", "int:1", "key:b", "str:two", "key:c", "bool:true", "key:d", "null", "}"},
		},
		{
			name:  "nested",
			input: `{"xs": [{"y": -2}, [3.5]]}`,
			want:  []string{"{", "key:xs", "[", "{", "key:y", "int:-2", "}", "[", "float:3.5", "]", "]", "}"},
		},
		{
			name:  "whitespace everywhere",
			input: " {\n\t\"k\" :\r [ 1 ,\n 2 ] } ",
			want:  []string{"{", "key:k", "[", "int:1", "int:2", "]", "}"},
		},
		{
			name:  "escapes",
			input: `{"t\tab": "line\nfeed \"q\" back\\slash A"}`,
			want:  []string{"{", "key:t\tab", "str:line\nfeed \"q\" back\\slash A", "}"},
		},
		{
			name:  "surrogate pair",
			input: `["😀"]`,
			want:  []string{"[", "str:\U0001F600", "]"},
		},
		{
			name:  "top-level scalar",
			input: `false`,
			want:  []string{"bool:false"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(t, tt.input, Config{})
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("event %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestNumberParsing(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"0", "int:0"},
		{"-7", "int:-7"},
		{"9223372036854775807", "int:9223372036854775807"},
		// Past int64 range the value degrades to a float.
		{"9223372036854775808", "float:9.223372036854776e+18"},
		{"3.14", "float:3.14"},
		{"1e3", "float:1000"},
		{"-2.5E-1", "float:-0.25"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := collect(t, "["+tt.input+"]", Config{})
			if len(got) != 3 || got[1] != tt.want {
				t.Errorf("got %v, want [ %s ]", got, tt.want)
			}
		})
	}
}

func TestPartialStrings(t *testing.T) {
	long := strings.Repeat("abcdefgh", 8) // 64 bytes
	input := `{"name": "` + long + `"}`
	s := New(strings.NewReader(input), Config{BufferSize: 8})

	var fragments []string
	sawFull := false
	for {
		ev, err := s.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if ev.Kind != KindValue || ev.Scalar != ScalarString {
			continue
		}
		fragments = append(fragments, string(ev.Bytes))
		if !ev.Partial {
			sawFull = true
		}
	}
	if !sawFull {
		t.Fatal("final fragment not delivered with Partial unset")
	}
	if len(fragments) < 2 {
		t.Fatalf("expected multiple fragments for a %d byte string, got %d", len(long), len(fragments))
	}
	if got := strings.Join(fragments, ""); got != long {
		t.Errorf("reassembled %q, want %q", got, long)
	}
}

func TestPartialKey(t *testing.T) {
	key := strings.Repeat("k", 20)
	got := collect(t, `{"`+key+`": 1}`, Config{BufferSize: 8})
	var joined string
	for _, ev := range got {
		if strings.HasPrefix(ev, "key:") {
			joined += strings.TrimSuffix(strings.TrimPrefix(ev, "key:"), "+")
		}
	}
	if joined != key {
		t.Errorf("reassembled key %q, want %q", joined, key)
	}
}

func TestChunkedReadsEquivalent(t *testing.T) {
	input := `{"devices": [{"id": "x", "offset": 1.5, "users": [true, null]}]}`
	want := collect(t, input, Config{})
	got := collect(t, input, Config{ReadSize: 1})
	if len(got) != len(want) {
		t.Fatalf("byte-at-a-time run produced %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("event %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

// nonTerminatingReader yields doc and then filler forever, like a transport
// that has no end-of-stream signal.
type nonTerminatingReader struct {
	doc string
	pos int
}

func (r *nonTerminatingReader) Read(p []byte) (int, error) {
	if r.pos < len(r.doc) {
		n := copy(p, r.doc[r.pos:])
		r.pos += n
		return n, nil
	}
	for i := range p {
		p[i] = ' '
	}
	return len(p), nil
}

func TestBytesRemainingHint(t *testing.T) {
	doc := `{"a": [1, 2]}`
	s := New(&nonTerminatingReader{doc: doc}, Config{BytesRemaining: int64(len(doc))})
	n := 0
	for {
		_, err := s.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		n++
	}
	if n != 6 {
		t.Errorf("got %d events, want 6", n)
	}
	if s.Offset() != int64(len(doc)) {
		t.Errorf("Offset = %d, want %d", s.Offset(), len(doc))
	}
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bare garbage", `wat`},
		{"missing colon", `{"a" 1}`},
		{"missing comma", `[1 2]`},
		{"unquoted key", `{a: 1}`},
		{"trailing data", `{} {}`},
		{"bad escape", `["\q"]`},
		{"bad unicode escape", `["\u00zz"]`},
		{"unpaired surrogate", `["\ud83dx"]`},
		{"control char in string", "[\"a\x01b\"]"},
		{"bad literal", `[trve]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(strings.NewReader(tt.input), Config{})
			var err error
			for err == nil {
				_, err = s.Next()
			}
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("got %v, want *SyntaxError", err)
			}
			if se.Offset < 0 || se.Offset > int64(len(tt.input)) {
				t.Errorf("offset %d out of range for %d byte input", se.Offset, len(tt.input))
			}
		})
	}
}

func TestUnexpectedEOF(t *testing.T) {
	tests := []string{
		`{"a": 1`,
		`{"a`,
		`[1, 2`,
		`["unterminated`,
		`{"a":`,
		`tru`,
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			s := New(strings.NewReader(input), Config{})
			var err error
			for err == nil {
				_, err = s.Next()
			}
			if err != io.ErrUnexpectedEOF {
				t.Errorf("got %v, want io.ErrUnexpectedEOF", err)
			}
		})
	}
}

func TestMaxDepth(t *testing.T) {
	s := New(strings.NewReader(`[[[[[1]]]]]`), Config{MaxDepth: 4})
	var err error
	for err == nil {
		_, err = s.Next()
	}
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("got %v, want *SyntaxError", err)
	}
	if !strings.Contains(se.Msg, "nesting") {
		t.Errorf("message %q does not mention nesting", se.Msg)
	}
}

func TestErrorsAreSticky(t *testing.T) {
	s := New(strings.NewReader(`[1 2]`), Config{})
	var first error
	for first == nil {
		_, first = s.Next()
	}
	_, second := s.Next()
	if first != second {
		t.Errorf("second error %v differs from first %v", second, first)
	}
}
