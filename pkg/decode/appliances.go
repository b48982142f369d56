package decode

import (
	"fmt"
	"io"
	"math"

	"github.com/ciniml/remo-api/pkg/jsonseq"
	"github.com/ciniml/remo-api/pkg/log"
	"github.com/ciniml/remo-api/pkg/model"
)

// ApplianceFunc receives completed records from ReadAppliances. sub is nil
// when the appliance itself has completed; otherwise sub is a completed
// sub-node and appliance holds the fields decoded so far. Both pointers are
// valid only for the duration of the call.
type ApplianceFunc func(appliance *model.Appliance, sub *model.ApplianceSubNode)

// ReadAppliances incrementally decodes an appliances document shaped as
//
//	{"appliances": [ {<appliance fields>, "device": {...}, "model": {...},
//	                  "smart_meter": {"echonetlite_properties": [...]}}, ... ]}
//
// from r. Semantics mirror ReadDevices: sub-nodes are delivered as they
// complete, the appliance record last, and decoding stops at the first
// fatal error.
func ReadAppliances(r io.Reader, totalLength int64, opts *Options, fn ApplianceFunc) error {
	d := &appliancesDecoder{
		decoder: newDecoder(r, totalLength, opts, "appliances", appliancesStackDepth),
		fn:      fn,
	}
	return d.run()
}

type appState uint8

const (
	appStateRoot appState = iota
	appStateRootMap
	appStateAppliancesArray
	appStateApplianceMap
	appStateDeviceMap
	appStateModelMap
	appStateSmartMeterMap
	appStatePropsArray
	appStatePropMap
	appStateSkip
	appStateDone
)

// Required-field bits per record kind.
const (
	appFieldID   = 1 << iota // appliance "id"
	appFieldType             // appliance "type"
)

const (
	modelFieldID  = 1 // model "id"
	propFieldName = 1 // echonetlite property "name"
)

type appliancesDecoder struct {
	*decoder
	fn ApplianceFunc

	state   appState
	skipRet appState

	appliance model.Appliance
	appFields uint32

	sub       model.ApplianceSubNode
	subFields uint32
}

func (d *appliancesDecoder) run() error {
	for {
		ev, err := d.asm.next()
		if err != nil {
			if err == io.EOF && d.state == appStateDone {
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

func (d *appliancesDecoder) skipTo(ret appState) {
	d.key = keyUnknown
	d.skipRet = ret
	d.skipDepth = 1
	d.state = appStateSkip
}

func (d *appliancesDecoder) handle(ev event) error {
	switch d.state {
	case appStateSkip:
		if d.skipEvent(ev) {
			d.state = d.skipRet
		}
		return nil

	case appStateRoot:
		if ev.kind == jsonseq.KindObjectStart {
			d.state = appStateRootMap
			return nil
		}
		return d.fail(ErrUnexpectedToken,
			fmt.Sprintf("%s at document root, expected object", ev.kind))

	case appStateRootMap:
		switch ev.kind {
		case jsonseq.KindKey:
			d.key = lookupNodeKey(ev.bytes)
		case jsonseq.KindValue:
			d.key = keyUnknown
		case jsonseq.KindArrayStart:
			if d.take() == keyAppliances {
				d.state = appStateAppliancesArray
			} else {
				d.skipTo(appStateRootMap)
			}
		case jsonseq.KindObjectStart:
			d.skipTo(appStateRootMap)
		case jsonseq.KindObjectEnd:
			d.state = appStateDone
		default:
			return d.fail(ErrUnexpectedToken, fmt.Sprintf("%s in top-level object", ev.kind))
		}
		return nil

	case appStateAppliancesArray:
		switch ev.kind {
		case jsonseq.KindObjectStart:
			d.appliance = model.Appliance{}
			d.appFields = 0
			d.state = appStateApplianceMap
		case jsonseq.KindArrayEnd:
			d.state = appStateRootMap
		default:
			return d.fail(ErrUnexpectedToken, fmt.Sprintf("%s in appliances array", ev.kind))
		}
		return nil

	case appStateApplianceMap:
		switch ev.kind {
		case jsonseq.KindKey:
			d.key = lookupNodeKey(ev.bytes)
		case jsonseq.KindValue:
			return d.setApplianceField(d.take(), ev)
		case jsonseq.KindObjectStart:
			switch d.take() {
			case keyDevice:
				d.sub = model.ApplianceSubNode{Kind: model.SubNodeDevice}
				d.subFields = 0
				d.state = appStateDeviceMap
			case keyModel:
				d.sub = model.ApplianceSubNode{Kind: model.SubNodeModel}
				d.subFields = 0
				d.state = appStateModelMap
			case keySmartMeter:
				d.state = appStateSmartMeterMap
			default:
				d.skipTo(appStateApplianceMap)
			}
		case jsonseq.KindArrayStart:
			d.skipTo(appStateApplianceMap)
		case jsonseq.KindObjectEnd:
			if d.appFields&appFieldID == 0 || d.appFields&appFieldType == 0 {
				return d.fail(ErrIncompleteRecord, missingApplianceFields(d.appFields))
			}
			d.fn(&d.appliance, nil)
			d.logEmit(log.CategoryRecord, d.appliance.ID.String())
			d.state = appStateAppliancesArray
		default:
			return d.fail(ErrUnexpectedToken, fmt.Sprintf("%s in appliance object", ev.kind))
		}
		return nil

	case appStateDeviceMap:
		switch ev.kind {
		case jsonseq.KindKey:
			d.key = lookupNodeKey(ev.bytes)
		case jsonseq.KindValue:
			return d.setDeviceField(&d.sub.Device, &d.subFields, d.take(), ev)
		case jsonseq.KindObjectStart, jsonseq.KindArrayStart:
			d.skipTo(appStateDeviceMap)
		case jsonseq.KindObjectEnd:
			if d.subFields&devRequiredFields != devRequiredFields {
				return d.fail(ErrIncompleteRecord, missingDeviceFields(d.subFields))
			}
			d.fn(&d.appliance, &d.sub)
			d.logEmit(log.CategorySubNode, d.sub.Device.ID.String())
			d.state = appStateApplianceMap
		default:
			return d.fail(ErrUnexpectedToken, fmt.Sprintf("%s in device object", ev.kind))
		}
		return nil

	case appStateModelMap:
		switch ev.kind {
		case jsonseq.KindKey:
			d.key = lookupNodeKey(ev.bytes)
		case jsonseq.KindValue:
			return d.setModelField(d.take(), ev)
		case jsonseq.KindObjectStart, jsonseq.KindArrayStart:
			d.skipTo(appStateModelMap)
		case jsonseq.KindObjectEnd:
			if d.subFields&modelFieldID == 0 {
				return d.fail(ErrIncompleteRecord, "model without id")
			}
			d.fn(&d.appliance, &d.sub)
			d.logEmit(log.CategorySubNode, d.sub.Model.ID.String())
			d.state = appStateApplianceMap
		default:
			return d.fail(ErrUnexpectedToken, fmt.Sprintf("%s in model object", ev.kind))
		}
		return nil

	case appStateSmartMeterMap:
		switch ev.kind {
		case jsonseq.KindKey:
			d.key = lookupNodeKey(ev.bytes)
		case jsonseq.KindValue:
			d.key = keyUnknown
		case jsonseq.KindArrayStart:
			if d.take() == keyEchonetLiteProperties {
				d.state = appStatePropsArray
			} else {
				d.skipTo(appStateSmartMeterMap)
			}
		case jsonseq.KindObjectStart:
			d.skipTo(appStateSmartMeterMap)
		case jsonseq.KindObjectEnd:
			d.state = appStateApplianceMap
		default:
			return d.fail(ErrUnexpectedToken, fmt.Sprintf("%s in smart_meter object", ev.kind))
		}
		return nil

	case appStatePropsArray:
		switch ev.kind {
		case jsonseq.KindObjectStart:
			d.sub = model.ApplianceSubNode{Kind: model.SubNodeEchonetLiteProperty}
			d.subFields = 0
			d.state = appStatePropMap
		case jsonseq.KindArrayEnd:
			d.state = appStateSmartMeterMap
		default:
			return d.fail(ErrUnexpectedToken,
				fmt.Sprintf("%s in echonetlite_properties array", ev.kind))
		}
		return nil

	case appStatePropMap:
		switch ev.kind {
		case jsonseq.KindKey:
			d.key = lookupNodeKey(ev.bytes)
		case jsonseq.KindValue:
			return d.setPropertyField(d.take(), ev)
		case jsonseq.KindObjectStart, jsonseq.KindArrayStart:
			d.skipTo(appStatePropMap)
		case jsonseq.KindObjectEnd:
			if d.subFields&propFieldName == 0 {
				return d.fail(ErrIncompleteRecord, "echonetlite property without name")
			}
			d.fn(&d.appliance, &d.sub)
			d.logEmit(log.CategorySubNode, d.sub.Property.Name)
			d.state = appStatePropsArray
		default:
			return d.fail(ErrUnexpectedToken,
				fmt.Sprintf("%s in echonetlite property object", ev.kind))
		}
		return nil

	case appStateDone:
		return d.fail(ErrUnexpectedToken, fmt.Sprintf("%s after document end", ev.kind))
	}
	return nil
}

func (d *appliancesDecoder) setApplianceField(key nodeKey, ev event) error {
	switch key {
	case keyID:
		if ev.scalar != jsonseq.ScalarString {
			return nil
		}
		id, err := ParseUUID(ev.bytes)
		if err != nil {
			return d.fieldErr(err)
		}
		d.appliance.ID = id
		d.appFields |= appFieldID
	case keyType:
		if ev.scalar != jsonseq.ScalarString {
			return nil
		}
		t, ok := model.ApplianceTypeFromString(string(ev.bytes))
		if !ok {
			return d.fail(ErrUnknownApplianceType, string(ev.bytes))
		}
		d.appliance.Type = t
		d.appFields |= appFieldType
	case keyNickname:
		if ev.scalar != jsonseq.ScalarString {
			return nil
		}
		s, err := BoundedString(ev.bytes, d.opts.limits.MaxNicknameLen, d.opts.truncate)
		if err != nil {
			return d.fieldErr(err)
		}
		d.appliance.Nickname = s
	case keyImage:
		if ev.scalar != jsonseq.ScalarString {
			return nil
		}
		s, err := BoundedString(ev.bytes, d.opts.limits.MaxImageLen, d.opts.truncate)
		if err != nil {
			return d.fieldErr(err)
		}
		d.appliance.Image = s
	}
	return nil
}

func (d *appliancesDecoder) setModelField(key nodeKey, ev event) error {
	m := &d.sub.Model
	switch key {
	case keyID:
		if ev.scalar != jsonseq.ScalarString {
			return nil
		}
		id, err := ParseUUID(ev.bytes)
		if err != nil {
			return d.fieldErr(err)
		}
		m.ID = id
		d.subFields |= modelFieldID
		return nil
	}
	if ev.scalar != jsonseq.ScalarString {
		return nil
	}
	var (
		dst *string
		max int
	)
	switch key {
	case keyCountry:
		dst, max = &m.Country, d.opts.limits.MaxCountryLen
	case keyManufacturer:
		dst, max = &m.Manufacturer, d.opts.limits.MaxManufacturerLen
	case keyRemoteName:
		dst, max = &m.RemoteName, d.opts.limits.MaxRemoteNameLen
	case keySeries:
		dst, max = &m.Series, d.opts.limits.MaxSeriesLen
	case keyName:
		dst, max = &m.Name, d.opts.limits.MaxModelNameLen
	case keyImage:
		dst, max = &m.Image, d.opts.limits.MaxImageLen
	default:
		return nil
	}
	s, err := BoundedString(ev.bytes, max, d.opts.truncate)
	if err != nil {
		return d.fieldErr(err)
	}
	*dst = s
	return nil
}

func (d *appliancesDecoder) setPropertyField(key nodeKey, ev event) error {
	p := &d.sub.Property
	switch key {
	case keyName:
		if ev.scalar != jsonseq.ScalarString {
			return nil
		}
		s, err := BoundedString(ev.bytes, d.opts.limits.MaxEchonetLiteNameLen, d.opts.truncate)
		if err != nil {
			return d.fieldErr(err)
		}
		p.Name = s
		d.subFields |= propFieldName
	case keyEpc:
		if ev.scalar == jsonseq.ScalarInt && ev.i64 >= 0 && ev.i64 <= math.MaxUint32 {
			p.EPC = uint32(ev.i64)
		}
	case keyVal:
		if ev.scalar != jsonseq.ScalarString {
			return nil
		}
		s, err := BoundedString(ev.bytes, d.opts.limits.MaxEchonetLiteValueLen, d.opts.truncate)
		if err != nil {
			return d.fieldErr(err)
		}
		p.Val = s
	case keyUpdatedAt:
		if ev.scalar != jsonseq.ScalarString {
			return nil
		}
		t, err := ParseTimestamp(ev.bytes)
		if err != nil {
			return d.fieldErr(err)
		}
		p.UpdatedAt = t
	}
	return nil
}

func missingApplianceFields(fields uint32) string {
	s := "appliance missing"
	if fields&appFieldID == 0 {
		s += " id"
	}
	if fields&appFieldType == 0 {
		s += " type"
	}
	return s
}
