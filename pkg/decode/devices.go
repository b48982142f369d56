package decode

import (
	"fmt"
	"io"

	"github.com/ciniml/remo-api/pkg/jsonseq"
	"github.com/ciniml/remo-api/pkg/log"
	"github.com/ciniml/remo-api/pkg/model"
)

// DeviceFunc receives completed records from ReadDevices. sub is nil when
// device itself has completed; otherwise sub is a completed sub-node and
// device holds the fields decoded so far. Both pointers are valid only for
// the duration of the call.
type DeviceFunc func(device *model.Device, sub *model.DeviceSubNode)

// ReadDevices incrementally decodes a devices document shaped as
//
//	{"devices": [ {<device fields>, "users": [...], "newest_events": {...}}, ... ]}
//
// from r, invoking fn once per completed sub-node and once per completed
// device, in document order. totalLength caps reads for transports that do
// not signal EOF; pass a value <= 0 when the total size is unknown. A nil
// opts means defaults.
//
// The call blocks until the document closes or a fatal error occurs;
// records emitted before an error remain valid.
func ReadDevices(r io.Reader, totalLength int64, opts *Options, fn DeviceFunc) error {
	d := &devicesDecoder{
		decoder: newDecoder(r, totalLength, opts, "devices", devicesStackDepth),
		fn:      fn,
	}
	return d.run()
}

type devState uint8

const (
	devStateRoot devState = iota
	devStateRootMap
	devStateDevicesArray
	devStateDeviceMap
	devStateUsersArray
	devStateUserMap
	devStateNewestEventsMap
	devStateSensorMap
	devStateSkip
	devStateDone
)

// Required-field bit for a User sub-node.
const userFieldID = 1

// Sensor slots backing NewestEvents pointers.
const (
	sensorTemperature = iota
	sensorHumidity
	sensorIllumination
	sensorMotion
	sensorCount
)

type devicesDecoder struct {
	*decoder
	fn DeviceFunc

	state   devState
	skipRet devState

	// At most one device and one sub-node accumulator exist at a time.
	device    model.Device
	devFields uint32

	sub        model.DeviceSubNode
	userFields uint32

	// sensorVals backs the NewestEvents pointer fields so sub-node
	// accumulation does not allocate per record.
	sensorVals [sensorCount]model.SensorValue
	sensor     *model.SensorValue
}

func (d *devicesDecoder) run() error {
	for {
		ev, err := d.asm.next()
		if err != nil {
			if err == io.EOF && d.state == devStateDone {
				d.logDone()
				return nil
			}
			return d.wrap(err)
		}
		if err := d.track(ev); err != nil {
			return err
		}
		if err := d.handle(ev); err != nil {
			return err
		}
	}
}

// skipTo diverts into an unknown subtree whose opening container has just
// been tracked, returning to ret when it closes.
func (d *devicesDecoder) skipTo(ret devState) {
	d.key = keyUnknown
	d.skipRet = ret
	d.skipDepth = 1
	d.state = devStateSkip
}

func (d *devicesDecoder) handle(ev event) error {
	switch d.state {
	case devStateSkip:
		if d.skipEvent(ev) {
			d.state = d.skipRet
		}
		return nil

	case devStateRoot:
		if ev.kind == jsonseq.KindObjectStart {
			d.state = devStateRootMap
			return nil
		}
		return d.fail(ErrUnexpectedToken,
			fmt.Sprintf("%s at document root, expected object", ev.kind))

	case devStateRootMap:
		switch ev.kind {
		case jsonseq.KindKey:
			d.key = lookupNodeKey(ev.bytes)
		case jsonseq.KindValue:
			d.key = keyUnknown
		case jsonseq.KindArrayStart:
			if d.take() == keyDevices {
				d.state = devStateDevicesArray
			} else {
				d.skipTo(devStateRootMap)
			}
		case jsonseq.KindObjectStart:
			d.skipTo(devStateRootMap)
		case jsonseq.KindObjectEnd:
			d.state = devStateDone
		default:
			return d.fail(ErrUnexpectedToken, fmt.Sprintf("%s in top-level object", ev.kind))
		}
		return nil

	case devStateDevicesArray:
		switch ev.kind {
		case jsonseq.KindObjectStart:
			d.device = model.Device{}
			d.devFields = 0
			d.state = devStateDeviceMap
		case jsonseq.KindArrayEnd:
			d.state = devStateRootMap
		default:
			return d.fail(ErrUnexpectedToken, fmt.Sprintf("%s in devices array", ev.kind))
		}
		return nil

	case devStateDeviceMap:
		switch ev.kind {
		case jsonseq.KindKey:
			d.key = lookupNodeKey(ev.bytes)
		case jsonseq.KindValue:
			return d.setDeviceField(&d.device, &d.devFields, d.take(), ev)
		case jsonseq.KindArrayStart:
			if d.take() == keyUsers {
				d.state = devStateUsersArray
			} else {
				d.skipTo(devStateDeviceMap)
			}
		case jsonseq.KindObjectStart:
			if d.take() == keyNewestEvents {
				d.sub = model.DeviceSubNode{Kind: model.SubNodeNewestEvents}
				d.state = devStateNewestEventsMap
			} else {
				d.skipTo(devStateDeviceMap)
			}
		case jsonseq.KindObjectEnd:
			if d.devFields&devRequiredFields != devRequiredFields {
				return d.fail(ErrIncompleteRecord, missingDeviceFields(d.devFields))
			}
			d.fn(&d.device, nil)
			d.logEmit(log.CategoryRecord, d.device.ID.String())
			d.state = devStateDevicesArray
		default:
			return d.fail(ErrUnexpectedToken, fmt.Sprintf("%s in device object", ev.kind))
		}
		return nil

	case devStateUsersArray:
		switch ev.kind {
		case jsonseq.KindObjectStart:
			d.sub = model.DeviceSubNode{Kind: model.SubNodeUser}
			d.userFields = 0
			d.state = devStateUserMap
		case jsonseq.KindArrayEnd:
			d.state = devStateDeviceMap
		default:
			return d.fail(ErrUnexpectedToken, fmt.Sprintf("%s in users array", ev.kind))
		}
		return nil

	case devStateUserMap:
		switch ev.kind {
		case jsonseq.KindKey:
			d.key = lookupNodeKey(ev.bytes)
		case jsonseq.KindValue:
			return d.setUserField(d.take(), ev)
		case jsonseq.KindObjectStart, jsonseq.KindArrayStart:
			d.skipTo(devStateUserMap)
		case jsonseq.KindObjectEnd:
			if d.userFields&userFieldID == 0 {
				return d.fail(ErrIncompleteRecord, "user without id")
			}
			d.fn(&d.device, &d.sub)
			d.logEmit(log.CategorySubNode, d.sub.User.ID.String())
			d.state = devStateUsersArray
		default:
			return d.fail(ErrUnexpectedToken, fmt.Sprintf("%s in user object", ev.kind))
		}
		return nil

	case devStateNewestEventsMap:
		switch ev.kind {
		case jsonseq.KindKey:
			d.key = lookupNodeKey(ev.bytes)
		case jsonseq.KindValue:
			d.key = keyUnknown
		case jsonseq.KindObjectStart:
			switch d.take() {
			case keyTe:
				d.sensor = d.openSensor(sensorTemperature, &d.sub.NewestEvents.Temperature)
			case keyHu:
				d.sensor = d.openSensor(sensorHumidity, &d.sub.NewestEvents.Humidity)
			case keyIl:
				d.sensor = d.openSensor(sensorIllumination, &d.sub.NewestEvents.Illumination)
			case keyMo:
				d.sensor = d.openSensor(sensorMotion, &d.sub.NewestEvents.Motion)
			default:
				d.skipTo(devStateNewestEventsMap)
				return nil
			}
			d.state = devStateSensorMap
		case jsonseq.KindArrayStart:
			d.skipTo(devStateNewestEventsMap)
		case jsonseq.KindObjectEnd:
			d.fn(&d.device, &d.sub)
			d.logEmit(log.CategorySubNode, "newest_events")
			d.state = devStateDeviceMap
		default:
			return d.fail(ErrUnexpectedToken, fmt.Sprintf("%s in newest_events object", ev.kind))
		}
		return nil

	case devStateSensorMap:
		switch ev.kind {
		case jsonseq.KindKey:
			d.key = lookupNodeKey(ev.bytes)
		case jsonseq.KindValue:
			return d.setSensorField(d.take(), ev)
		case jsonseq.KindObjectStart, jsonseq.KindArrayStart:
			d.skipTo(devStateSensorMap)
		case jsonseq.KindObjectEnd:
			d.sensor = nil
			d.state = devStateNewestEventsMap
		default:
			return d.fail(ErrUnexpectedToken, fmt.Sprintf("%s in sensor object", ev.kind))
		}
		return nil

	case devStateDone:
		return d.fail(ErrUnexpectedToken, fmt.Sprintf("%s after document end", ev.kind))
	}
	return nil
}

// openSensor binds a NewestEvents pointer field to its backing slot.
func (d *devicesDecoder) openSensor(slot int, field **model.SensorValue) *model.SensorValue {
	d.sensorVals[slot] = model.SensorValue{}
	*field = &d.sensorVals[slot]
	return &d.sensorVals[slot]
}

func (d *devicesDecoder) setUserField(key nodeKey, ev event) error {
	switch key {
	case keyID:
		if ev.scalar != jsonseq.ScalarString {
			return nil
		}
		id, err := ParseUUID(ev.bytes)
		if err != nil {
			return d.fieldErr(err)
		}
		d.sub.User.ID = id
		d.userFields |= userFieldID
	case keyNickname:
		if ev.scalar != jsonseq.ScalarString {
			return nil
		}
		s, err := BoundedString(ev.bytes, d.opts.limits.MaxNicknameLen, d.opts.truncate)
		if err != nil {
			return d.fieldErr(err)
		}
		d.sub.User.Nickname = s
	case keySuperuser:
		if ev.scalar == jsonseq.ScalarBool {
			d.sub.User.Superuser = ev.b
		}
	}
	return nil
}

func (d *devicesDecoder) setSensorField(key nodeKey, ev event) error {
	if d.sensor == nil {
		return nil
	}
	switch key {
	case keyVal:
		if v, ok := numValue(ev); ok {
			d.sensor.Val = v
		}
	case keyCreatedAt:
		if ev.scalar != jsonseq.ScalarString {
			return nil
		}
		t, err := ParseTimestamp(ev.bytes)
		if err != nil {
			return d.fieldErr(err)
		}
		d.sensor.CreatedAt = t
	}
	return nil
}

func missingDeviceFields(fields uint32) string {
	s := "device missing"
	if fields&devFieldID == 0 {
		s += " id"
	}
	if fields&devFieldName == 0 {
		s += " name"
	}
	if fields&devFieldCreatedAt == 0 {
		s += " created_at"
	}
	return s
}
