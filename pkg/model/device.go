package model

import (
	"time"

	"github.com/google/uuid"
)

// Device represents one controller unit from the device registry.
// A Device is complete only once its enclosing JSON object has closed.
type Device struct {
	// ID is the unique device identifier.
	ID uuid.UUID

	// Name is the user-assigned display name.
	Name string

	// TemperatureOffset and HumidityOffset are user calibration offsets.
	TemperatureOffset float64
	HumidityOffset    float64

	// CreatedAt and UpdatedAt are registry timestamps.
	CreatedAt time.Time
	UpdatedAt time.Time

	// FirmwareVersion is the firmware version string.
	FirmwareVersion string

	// MacAddress and BtMacAddress identify the WiFi and Bluetooth
	// interfaces.
	MacAddress   MacAddress
	BtMacAddress MacAddress

	// SerialNumber is the device serial number.
	SerialNumber string
}

// User is a registry user with access to a device.
type User struct {
	// ID is the unique user identifier.
	ID uuid.UUID

	// Nickname is the user's display name.
	Nickname string

	// Superuser reports whether the user owns the device.
	Superuser bool
}

// SensorValue is one timestamped sensor reading.
type SensorValue struct {
	// Val is the reading.
	Val float64

	// CreatedAt is when the reading was taken.
	CreatedAt time.Time
}

// NewestEvents holds the most recent reading per on-board sensor.
// A nil field means the device has no such sensor or no reading yet.
type NewestEvents struct {
	Temperature  *SensorValue
	Humidity     *SensorValue
	Illumination *SensorValue
	Motion       *SensorValue
}

// DeviceSubNodeKind discriminates DeviceSubNode payloads.
type DeviceSubNodeKind uint8

const (
	// SubNodeUser means the User field is populated.
	SubNodeUser DeviceSubNodeKind = iota + 1
	// SubNodeNewestEvents means the NewestEvents field is populated.
	SubNodeNewestEvents
)

// String returns the sub-node kind name.
func (k DeviceSubNodeKind) String() string {
	switch k {
	case SubNodeUser:
		return "User"
	case SubNodeNewestEvents:
		return "NewestEvents"
	default:
		return "Unknown"
	}
}

// DeviceSubNode is an auxiliary record nested under a device. Exactly one
// payload field is populated, selected by Kind.
type DeviceSubNode struct {
	Kind DeviceSubNodeKind

	User         User
	NewestEvents NewestEvents
}
