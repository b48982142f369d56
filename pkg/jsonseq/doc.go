// Package jsonseq turns a JSON byte stream into a pull-based sequence of
// structural events while holding only a fixed amount of working memory.
//
// The sequencer does not build a document tree. Each call to
// [Sequencer.Next] consumes just enough input to determine the next
// structural event: an object or array opening or closing, an object key,
// or a scalar value.
//
// # Bounded memory
//
// Scalar text is collected in a fixed scratch buffer. A string longer than
// the scratch buffer is delivered as several consecutive events with
// [Event.Partial] set on all but the last; the consumer reassembles the
// fragments (or rejects the value as too long). Numbers, booleans and null
// always fit the scratch buffer and are never split.
//
// # Length hint
//
// Some transports never signal end of stream. [Config.BytesRemaining]
// caps how many bytes the sequencer will request from the reader; it is a
// sizing hint only and is never required for correctness.
//
// # Errors
//
// Malformed input yields a [*SyntaxError] with the byte offset. A stream
// that ends inside the document yields [io.ErrUnexpectedEOF]. Once the
// top-level value has closed and trailing whitespace is consumed, Next
// returns [io.EOF]. Reader errors pass through unchanged.
package jsonseq
