package snapshot

import (
	"github.com/ciniml/remo-api/pkg/model"
)

// Collector builds a Registry from decoder callbacks. Sub-nodes stream out
// before their parent record closes, so the collector buffers them and
// attaches the batch when the parent arrives.
//
// Collector methods match the decode callback signatures: pass
// (*Collector).Device to decode.ReadDevices and (*Collector).Appliance to
// decode.ReadAppliances. A Collector is not safe for concurrent use.
type Collector struct {
	reg Registry

	users   []UserEntry
	sensors []SensorEntry

	device     *DeviceEntry
	modelEntry *ModelEntry
	properties []PropertyEntry
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Device accumulates one ReadDevices callback.
func (c *Collector) Device(dev *model.Device, sub *model.DeviceSubNode) {
	if sub == nil {
		e := newDeviceEntry(dev)
		e.Users = c.users
		e.Events = c.sensors
		c.reg.Devices = append(c.reg.Devices, e)
		c.users = nil
		c.sensors = nil
		return
	}
	switch sub.Kind {
	case model.SubNodeUser:
		c.users = append(c.users, newUserEntry(sub.User))
	case model.SubNodeNewestEvents:
		c.sensors = newSensorEntries(sub.NewestEvents)
	}
}

// Appliance accumulates one ReadAppliances callback.
func (c *Collector) Appliance(app *model.Appliance, sub *model.ApplianceSubNode) {
	if sub == nil {
		e := ApplianceEntry{
			ID:         app.ID.String(),
			Type:       app.Type.String(),
			Nickname:   app.Nickname,
			Image:      app.Image,
			Device:     c.device,
			Model:      c.modelEntry,
			Properties: c.properties,
		}
		c.reg.Appliances = append(c.reg.Appliances, e)
		c.device = nil
		c.modelEntry = nil
		c.properties = nil
		return
	}
	switch sub.Kind {
	case model.SubNodeDevice:
		d := newDeviceEntry(&sub.Device)
		c.device = &d
	case model.SubNodeModel:
		m := newModelEntry(sub.Model)
		c.modelEntry = &m
	case model.SubNodeEchonetLiteProperty:
		c.properties = append(c.properties, newPropertyEntry(sub.Property))
	}
}

// Registry returns the collected state. The caller owns the result; the
// collector keeps accumulating into the same registry.
func (c *Collector) Registry() *Registry {
	return &c.reg
}
