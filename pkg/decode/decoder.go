package decode

import (
	"fmt"
	"io"
	"time"

	"github.com/ciniml/remo-api/pkg/jsonseq"
	"github.com/ciniml/remo-api/pkg/log"
	"github.com/ciniml/remo-api/pkg/model"
)

// Schema-derived nesting bounds. The devices document nests
// root > devices[] > device > users[] > user (or newest_events > sensor);
// the appliances document one level deeper through
// smart_meter > echonetlite_properties[] > property. Each bound carries
// one level beyond the schema so an unrecognized object or array inside
// a leaf object can still be skipped rather than rejected.
const (
	devicesStackDepth    = 6
	appliancesStackDepth = 7
)

// decoder holds the machinery shared by the devices and appliances state
// machines: the event source, the path stack, resolved options, and the
// pending-key register.
type decoder struct {
	seq      *jsonseq.Sequencer
	asm      *assembler
	stack    *PathStack
	opts     options
	endpoint string

	// key is the most recent object key, consumed (reset to keyUnknown)
	// by the value or container that follows it.
	key nodeKey

	// skipDepth counts open containers inside an unknown subtree.
	skipDepth int
}

func newDecoder(r io.Reader, totalLength int64, opts *Options, endpoint string, depth int) *decoder {
	o := opts.resolve()
	seq := jsonseq.New(r, jsonseq.Config{
		BufferSize:     o.bufSize,
		ReadSize:       o.readSize,
		BytesRemaining: totalLength,
	})
	return &decoder{
		seq:      seq,
		asm:      newAssembler(seq, o.limits.MaxScalarLen(), o.truncate),
		stack:    NewPathStack(depth),
		opts:     o,
		endpoint: endpoint,
	}
}

// take consumes the pending key.
func (d *decoder) take() nodeKey {
	k := d.key
	d.key = keyUnknown
	return k
}

// track maintains the path stack for one event. It fires before the state
// machine sees the event, so the depth bound holds in unknown subtrees
// too.
func (d *decoder) track(ev event) error {
	switch ev.kind {
	case jsonseq.KindObjectStart, jsonseq.KindArrayStart:
		if d.stack.InArray() {
			d.stack.NextElement()
		}
		var err error
		if ev.kind == jsonseq.KindObjectStart {
			err = d.stack.EnterObject()
		} else {
			err = d.stack.EnterArray()
		}
		if err != nil {
			return d.fail(ErrStackOverflow,
				fmt.Sprintf("nesting exceeds %d levels", cap(d.stack.segs)))
		}
	case jsonseq.KindObjectEnd, jsonseq.KindArrayEnd:
		if !d.stack.Pop() {
			return d.fail(ErrUnexpectedToken, "container end at document root")
		}
	case jsonseq.KindKey:
		d.stack.SetKey(ev.bytes)
	case jsonseq.KindValue:
		if d.stack.InArray() {
			d.stack.NextElement()
		}
	}
	return nil
}

// skipEvent consumes one event inside an unknown subtree. done reports
// that the subtree has closed.
func (d *decoder) skipEvent(ev event) (done bool) {
	switch ev.kind {
	case jsonseq.KindObjectStart, jsonseq.KindArrayStart:
		d.skipDepth++
	case jsonseq.KindObjectEnd, jsonseq.KindArrayEnd:
		d.skipDepth--
	}
	return d.skipDepth == 0
}

// fail builds a kinded decode error at the current position and logs it.
func (d *decoder) fail(kind error, detail string) error {
	e := &Error{
		Kind:   kind,
		Path:   d.stack.String(),
		Offset: d.seq.Offset(),
		Detail: detail,
	}
	d.logError(e)
	return e
}

// fieldErr wraps a field-decoder error (which already carries its
// sentinel) with the current position.
func (d *decoder) fieldErr(err error) error {
	e := &Error{
		Path:   d.stack.String(),
		Offset: d.seq.Offset(),
		Err:    err,
	}
	d.logError(e)
	return e
}

// wrap tags an event-source error with the current position. EOF inside
// the document becomes ErrUnexpectedEOF; assembler overflow becomes
// ErrValueTooLong; everything else passes through unchanged.
func (d *decoder) wrap(err error) error {
	switch {
	case err == io.EOF || err == io.ErrUnexpectedEOF:
		return d.fail(ErrUnexpectedEOF, "")
	case err == ErrValueTooLong:
		return d.fail(ErrValueTooLong, "scalar exceeds reassembly buffer")
	}
	e := &Error{
		Path:   d.stack.String(),
		Offset: d.seq.Offset(),
		Err:    err,
	}
	d.logError(e)
	return e
}

func (d *decoder) logError(e *Error) {
	d.opts.logger.Log(log.Event{
		Timestamp: time.Now(),
		Category:  log.CategoryError,
		Endpoint:  d.endpoint,
		Path:      e.Path,
		Offset:    e.Offset,
		Detail:    e.Error(),
	})
}

func (d *decoder) logEmit(cat log.Category, detail string) {
	d.opts.logger.Log(log.Event{
		Timestamp: time.Now(),
		Category:  cat,
		Endpoint:  d.endpoint,
		Path:      d.stack.String(),
		Offset:    d.seq.Offset(),
		Detail:    detail,
	})
}

func (d *decoder) logDone() {
	d.opts.logger.Log(log.Event{
		Timestamp: time.Now(),
		Category:  log.CategoryDone,
		Endpoint:  d.endpoint,
		Offset:    d.seq.Offset(),
	})
}

// Required-field bits for an embedded Device record.
const (
	devFieldID = 1 << iota
	devFieldName
	devFieldCreatedAt
)

const devRequiredFields = devFieldID | devFieldName | devFieldCreatedAt

// setDeviceField routes one scalar to a Device field. Unknown keys and
// type-mismatched values are ignored for forward compatibility; malformed
// values for known fields are fatal. Repeated keys overwrite.
func (d *decoder) setDeviceField(dev *model.Device, fields *uint32, key nodeKey, ev event) error {
	switch key {
	case keyID:
		if ev.scalar != jsonseq.ScalarString {
			return nil
		}
		id, err := ParseUUID(ev.bytes)
		if err != nil {
			return d.fieldErr(err)
		}
		dev.ID = id
		*fields |= devFieldID
	case keyName:
		if ev.scalar != jsonseq.ScalarString {
			return nil
		}
		s, err := BoundedString(ev.bytes, d.opts.limits.MaxDeviceNameLen, d.opts.truncate)
		if err != nil {
			return d.fieldErr(err)
		}
		dev.Name = s
		*fields |= devFieldName
	case keyCreatedAt:
		if ev.scalar != jsonseq.ScalarString {
			return nil
		}
		t, err := ParseTimestamp(ev.bytes)
		if err != nil {
			return d.fieldErr(err)
		}
		dev.CreatedAt = t
		*fields |= devFieldCreatedAt
	case keyUpdatedAt:
		if ev.scalar != jsonseq.ScalarString {
			return nil
		}
		t, err := ParseTimestamp(ev.bytes)
		if err != nil {
			return d.fieldErr(err)
		}
		dev.UpdatedAt = t
	case keyMacAddress:
		if ev.scalar != jsonseq.ScalarString {
			return nil
		}
		mac, err := ParseMacAddress(ev.bytes)
		if err != nil {
			return d.fieldErr(err)
		}
		dev.MacAddress = mac
	case keyBtMacAddress:
		if ev.scalar != jsonseq.ScalarString {
			return nil
		}
		mac, err := ParseMacAddress(ev.bytes)
		if err != nil {
			return d.fieldErr(err)
		}
		dev.BtMacAddress = mac
	case keySerialNumber:
		if ev.scalar != jsonseq.ScalarString {
			return nil
		}
		s, err := BoundedString(ev.bytes, d.opts.limits.MaxSerialNumberLen, d.opts.truncate)
		if err != nil {
			return d.fieldErr(err)
		}
		dev.SerialNumber = s
	case keyFirmwareVersion:
		if ev.scalar != jsonseq.ScalarString {
			return nil
		}
		s, err := BoundedString(ev.bytes, d.opts.limits.MaxFirmwareVersionLen, d.opts.truncate)
		if err != nil {
			return d.fieldErr(err)
		}
		dev.FirmwareVersion = s
	case keyTemperatureOffset:
		if v, ok := numValue(ev); ok {
			dev.TemperatureOffset = v
		}
	case keyHumidityOffset:
		if v, ok := numValue(ev); ok {
			dev.HumidityOffset = v
		}
	}
	return nil
}

// numValue extracts a numeric scalar.
func numValue(ev event) (float64, bool) {
	switch ev.scalar {
	case jsonseq.ScalarInt:
		return float64(ev.i64), true
	case jsonseq.ScalarFloat:
		return ev.f64, true
	}
	return 0, false
}
