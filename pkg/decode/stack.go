package decode

import "strings"

// maxSegmentKeyLen bounds the object-key text retained per path segment.
// Longer keys are truncated in path rendering only; routing uses the full
// key.
const maxSegmentKeyLen = 32

// PathSegment is one level of the document's nesting: either a named
// object key or an array index.
type PathSegment struct {
	key     [maxSegmentKeyLen]byte
	keyLen  uint8
	index   int32
	isIndex bool
}

// IsIndex reports whether the segment is an array index.
func (s PathSegment) IsIndex() bool { return s.isIndex }

// Index returns the array index; -1 before the first element.
func (s PathSegment) Index() int { return int(s.index) }

// Key returns the object key, truncated to the retained bound.
func (s PathSegment) Key() string { return string(s.key[:s.keyLen]) }

// PathStack tracks the decoder's position in the document. Capacity is
// fixed at construction to the maximum schema nesting depth; pushing
// beyond it fails with ErrStackOverflow, signaling unexpectedly deep
// input rather than silently growing.
type PathStack struct {
	segs []PathSegment
}

// NewPathStack creates a stack with the given fixed capacity.
func NewPathStack(capacity int) *PathStack {
	return &PathStack{segs: make([]PathSegment, 0, capacity)}
}

// Depth returns the number of active segments.
func (p *PathStack) Depth() int { return len(p.segs) }

// EnterObject pushes a key segment; the key is empty until SetKey.
func (p *PathStack) EnterObject() error {
	return p.push(PathSegment{})
}

// EnterArray pushes an index segment positioned before the first element.
func (p *PathStack) EnterArray() error {
	return p.push(PathSegment{isIndex: true, index: -1})
}

func (p *PathStack) push(seg PathSegment) error {
	if len(p.segs) == cap(p.segs) {
		return ErrStackOverflow
	}
	p.segs = append(p.segs, seg)
	return nil
}

// Pop removes the top segment. It reports whether a segment was removed;
// popping an empty stack indicates a structural bug in the caller.
func (p *PathStack) Pop() bool {
	if len(p.segs) == 0 {
		return false
	}
	p.segs = p.segs[:len(p.segs)-1]
	return true
}

// SetKey records the current object key on the top segment.
func (p *PathStack) SetKey(key []byte) {
	if len(p.segs) == 0 {
		return
	}
	seg := &p.segs[len(p.segs)-1]
	if seg.isIndex {
		return
	}
	n := len(key)
	if n > maxSegmentKeyLen {
		n = maxSegmentKeyLen
	}
	copy(seg.key[:], key[:n])
	seg.keyLen = uint8(n)
}

// NextElement advances the top segment's array index. It is a no-op when
// the top segment is not an index.
func (p *PathStack) NextElement() {
	if len(p.segs) == 0 {
		return
	}
	seg := &p.segs[len(p.segs)-1]
	if seg.isIndex {
		seg.index++
	}
}

// InArray reports whether the top segment is an array index.
func (p *PathStack) InArray() bool {
	return len(p.segs) > 0 && p.segs[len(p.segs)-1].isIndex
}

// String renders the active path, e.g. "devices[2].users[0].nickname".
func (p *PathStack) String() string {
	var b strings.Builder
	for i, seg := range p.segs {
		if seg.isIndex {
			b.WriteByte('[')
			if seg.index >= 0 {
				writeInt(&b, int(seg.index))
			}
			b.WriteByte(']')
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.Write(seg.key[:seg.keyLen])
	}
	return b.String()
}

func writeInt(b *strings.Builder, v int) {
	if v >= 10 {
		writeInt(b, v/10)
	}
	b.WriteByte(byte('0' + v%10))
}
