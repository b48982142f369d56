package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ciniml/remo-api/pkg/model"
)

// Version is the current snapshot file format version.
const Version = 1

// Registry is the on-disk form of a decoded device registry.
type Registry struct {
	// FormatVersion is the snapshot file format version.
	FormatVersion int `cbor:"1,keyasint" json:"format_version"`

	// SavedAt is when the snapshot was written.
	SavedAt time.Time `cbor:"2,keyasint" json:"saved_at"`

	// Devices holds the devices endpoint records.
	Devices []DeviceEntry `cbor:"3,keyasint,omitempty" json:"devices,omitempty"`

	// Appliances holds the appliances endpoint records.
	Appliances []ApplianceEntry `cbor:"4,keyasint,omitempty" json:"appliances,omitempty"`
}

// DeviceEntry is the snapshot form of one device and its sub-nodes.
type DeviceEntry struct {
	ID                string        `cbor:"1,keyasint" json:"id"`
	Name              string        `cbor:"2,keyasint" json:"name"`
	CreatedAt         time.Time     `cbor:"3,keyasint" json:"created_at"`
	UpdatedAt         time.Time     `cbor:"4,keyasint,omitempty" json:"updated_at,omitempty"`
	FirmwareVersion   string        `cbor:"5,keyasint,omitempty" json:"firmware_version,omitempty"`
	MacAddress        string        `cbor:"6,keyasint,omitempty" json:"mac_address,omitempty"`
	BtMacAddress      string        `cbor:"7,keyasint,omitempty" json:"bt_mac_address,omitempty"`
	SerialNumber      string        `cbor:"8,keyasint,omitempty" json:"serial_number,omitempty"`
	TemperatureOffset float64       `cbor:"9,keyasint,omitempty" json:"temperature_offset,omitempty"`
	HumidityOffset    float64       `cbor:"10,keyasint,omitempty" json:"humidity_offset,omitempty"`
	Users             []UserEntry   `cbor:"11,keyasint,omitempty" json:"users,omitempty"`
	Events            []SensorEntry `cbor:"12,keyasint,omitempty" json:"events,omitempty"`
}

// UserEntry is the snapshot form of one registry user.
type UserEntry struct {
	ID        string `cbor:"1,keyasint" json:"id"`
	Nickname  string `cbor:"2,keyasint,omitempty" json:"nickname,omitempty"`
	Superuser bool   `cbor:"3,keyasint,omitempty" json:"superuser,omitempty"`
}

// SensorEntry is one sensor reading from a device's newest_events block.
type SensorEntry struct {
	// Sensor is the wire sensor key: "te", "hu", "il" or "mo".
	Sensor    string    `cbor:"1,keyasint" json:"sensor"`
	Val       float64   `cbor:"2,keyasint" json:"val"`
	CreatedAt time.Time `cbor:"3,keyasint,omitempty" json:"created_at,omitempty"`
}

// ApplianceEntry is the snapshot form of one appliance and its sub-nodes.
type ApplianceEntry struct {
	ID         string          `cbor:"1,keyasint" json:"id"`
	Type       string          `cbor:"2,keyasint" json:"type"`
	Nickname   string          `cbor:"3,keyasint,omitempty" json:"nickname,omitempty"`
	Image      string          `cbor:"4,keyasint,omitempty" json:"image,omitempty"`
	Device     *DeviceEntry    `cbor:"5,keyasint,omitempty" json:"device,omitempty"`
	Model      *ModelEntry     `cbor:"6,keyasint,omitempty" json:"model,omitempty"`
	Properties []PropertyEntry `cbor:"7,keyasint,omitempty" json:"properties,omitempty"`
}

// ModelEntry is the snapshot form of an appliance's remote-control model.
type ModelEntry struct {
	ID           string `cbor:"1,keyasint" json:"id"`
	Country      string `cbor:"2,keyasint,omitempty" json:"country,omitempty"`
	Manufacturer string `cbor:"3,keyasint,omitempty" json:"manufacturer,omitempty"`
	RemoteName   string `cbor:"4,keyasint,omitempty" json:"remote_name,omitempty"`
	Series       string `cbor:"5,keyasint,omitempty" json:"series,omitempty"`
	Name         string `cbor:"6,keyasint,omitempty" json:"name,omitempty"`
	Image        string `cbor:"7,keyasint,omitempty" json:"image,omitempty"`
}

// PropertyEntry is the snapshot form of one ECHONET Lite property reading.
type PropertyEntry struct {
	Name      string    `cbor:"1,keyasint" json:"name"`
	EPC       uint32    `cbor:"2,keyasint,omitempty" json:"epc,omitempty"`
	Val       string    `cbor:"3,keyasint,omitempty" json:"val,omitempty"`
	UpdatedAt time.Time `cbor:"4,keyasint,omitempty" json:"updated_at,omitempty"`
}

func newDeviceEntry(dev *model.Device) DeviceEntry {
	e := DeviceEntry{
		ID:                dev.ID.String(),
		Name:              dev.Name,
		CreatedAt:         dev.CreatedAt,
		UpdatedAt:         dev.UpdatedAt,
		FirmwareVersion:   dev.FirmwareVersion,
		SerialNumber:      dev.SerialNumber,
		TemperatureOffset: dev.TemperatureOffset,
		HumidityOffset:    dev.HumidityOffset,
	}
	if !dev.MacAddress.IsZero() {
		e.MacAddress = dev.MacAddress.String()
	}
	if !dev.BtMacAddress.IsZero() {
		e.BtMacAddress = dev.BtMacAddress.String()
	}
	return e
}

func newUserEntry(u model.User) UserEntry {
	return UserEntry{
		ID:        u.ID.String(),
		Nickname:  u.Nickname,
		Superuser: u.Superuser,
	}
}

func newSensorEntries(ne model.NewestEvents) []SensorEntry {
	var out []SensorEntry
	add := func(sensor string, v *model.SensorValue) {
		if v != nil {
			out = append(out, SensorEntry{Sensor: sensor, Val: v.Val, CreatedAt: v.CreatedAt})
		}
	}
	add("te", ne.Temperature)
	add("hu", ne.Humidity)
	add("il", ne.Illumination)
	add("mo", ne.Motion)
	return out
}

func newModelEntry(m model.ApplianceModel) ModelEntry {
	return ModelEntry{
		ID:           m.ID.String(),
		Country:      m.Country,
		Manufacturer: m.Manufacturer,
		RemoteName:   m.RemoteName,
		Series:       m.Series,
		Name:         m.Name,
		Image:        m.Image,
	}
}

func newPropertyEntry(p model.EchonetLiteProperty) PropertyEntry {
	return PropertyEntry{
		Name:      p.Name,
		EPC:       p.EPC,
		Val:       p.Val,
		UpdatedAt: p.UpdatedAt,
	}
}

// Store manages persistence of a registry snapshot to a CBOR file.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store writing to path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Save persists the registry to disk.
func (s *Store) Save(reg *Registry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Ensure parent directory exists
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	reg.FormatVersion = Version
	if reg.SavedAt.IsZero() {
		reg.SavedAt = time.Now()
	}

	data, err := Marshal(reg)
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}

// Load reads the registry from disk.
// Returns nil, nil if the file doesn't exist (empty state).
func (s *Store) Load() (*Registry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	reg := &Registry{}
	if err := Unmarshal(data, reg); err != nil {
		return nil, err
	}
	if reg.FormatVersion > Version {
		return nil, fmt.Errorf("snapshot format version %d is newer than supported version %d",
			reg.FormatVersion, Version)
	}

	return reg, nil
}

// Clear removes the snapshot file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
