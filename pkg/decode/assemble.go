package decode

import (
	"github.com/ciniml/remo-api/pkg/jsonseq"
)

// event is a structural event with any partial scalar fragments already
// reassembled. bytes aliases the assembler's buffer and is valid until the
// next call to next.
type event struct {
	kind   jsonseq.Kind
	scalar jsonseq.ScalarKind
	bytes  []byte
	i64    int64
	f64    float64
	b      bool
}

// assembler reassembles chunked string scalars from the sequencer into one
// logical value. The buffer capacity bounds reassembly; exceeding it fails
// with ErrValueTooLong (or drops the excess in truncate mode).
type assembler struct {
	seq      *jsonseq.Sequencer
	buf      []byte
	truncate bool
	overflow bool
}

func newAssembler(seq *jsonseq.Sequencer, capacity int, truncate bool) *assembler {
	return &assembler{
		seq:      seq,
		buf:      make([]byte, 0, capacity),
		truncate: truncate,
	}
}

func (a *assembler) next() (event, error) {
	a.buf = a.buf[:0]
	a.overflow = false
	for {
		ev, err := a.seq.Next()
		if err != nil {
			return event{}, err
		}
		if ev.Scalar == jsonseq.ScalarString {
			if err := a.append(ev.Bytes); err != nil {
				return event{}, err
			}
			if ev.Partial {
				continue
			}
			return event{kind: ev.Kind, scalar: ev.Scalar, bytes: a.buf}, nil
		}
		return event{
			kind:   ev.Kind,
			scalar: ev.Scalar,
			i64:    ev.Int,
			f64:    ev.Float,
			b:      ev.Bool,
		}, nil
	}
}

func (a *assembler) append(b []byte) error {
	if a.overflow {
		return nil
	}
	space := cap(a.buf) - len(a.buf)
	if len(b) > space {
		if !a.truncate {
			return ErrValueTooLong
		}
		a.buf = append(a.buf, b[:space]...)
		a.overflow = true
		return nil
	}
	a.buf = append(a.buf, b...)
	return nil
}
