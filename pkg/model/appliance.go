package model

import (
	"time"

	"github.com/google/uuid"
)

// Appliance represents one controlled appliance from the registry.
type Appliance struct {
	// ID is the unique appliance identifier.
	ID uuid.UUID

	// Type is the appliance kind.
	Type ApplianceType

	// Nickname is the user-assigned display name.
	Nickname string

	// Image is the icon identifier.
	Image string
}

// ApplianceType is the closed set of appliance kinds known to the API.
type ApplianceType uint8

const (
	ApplianceUnknown ApplianceType = iota
	ApplianceAC
	ApplianceTV
	ApplianceLight
	ApplianceIR
	ApplianceSmartMeter
	ApplianceElectricWaterHeater
	AppliancePowerDistMeter
	ApplianceEVCD
	ApplianceSolarPower
	ApplianceStorageBattery
	ApplianceQrioLock
	ApplianceMorninPlus
)

// applianceTypeNames maps wire names to types.
var applianceTypeNames = map[string]ApplianceType{
	"AC":                       ApplianceAC,
	"TV":                       ApplianceTV,
	"LIGHT":                    ApplianceLight,
	"IR":                       ApplianceIR,
	"EL_SMART_METER":           ApplianceSmartMeter,
	"EL_ELECTRIC_WATER_HEATER": ApplianceElectricWaterHeater,
	"EL_POWER_DIST_METER":      AppliancePowerDistMeter,
	"EL_EVCD":                  ApplianceEVCD,
	"EL_SOLAR_POWER":           ApplianceSolarPower,
	"EL_STORAGE_BATTERY":       ApplianceStorageBattery,
	"QRIO_LOCK":                ApplianceQrioLock,
	"MORNIN_PLUS":              ApplianceMorninPlus,
}

// ApplianceTypeFromString maps a wire-format type name to an
// ApplianceType. ok is false for names outside the known set.
func ApplianceTypeFromString(s string) (ApplianceType, bool) {
	t, ok := applianceTypeNames[s]
	return t, ok
}

// String returns the wire-format type name.
func (t ApplianceType) String() string {
	for name, v := range applianceTypeNames {
		if v == t {
			return name
		}
	}
	return "UNKNOWN"
}

// ApplianceModel describes the remote-control model bound to an appliance.
type ApplianceModel struct {
	ID           uuid.UUID
	Country      string
	Manufacturer string
	RemoteName   string
	Series       string
	Name         string
	Image        string
}

// EchonetLiteProperty is one ECHONET Lite property reading reported by a
// smart meter appliance.
type EchonetLiteProperty struct {
	// Name is the property name.
	Name string

	// EPC is the ECHONET property code.
	EPC uint32

	// Val is the property value, reported as text.
	Val string

	// UpdatedAt is when the property was last read.
	UpdatedAt time.Time
}

// ApplianceSubNodeKind discriminates ApplianceSubNode payloads.
type ApplianceSubNodeKind uint8

const (
	// SubNodeDevice means the Device field is populated.
	SubNodeDevice ApplianceSubNodeKind = iota + 1
	// SubNodeModel means the Model field is populated.
	SubNodeModel
	// SubNodeEchonetLiteProperty means the Property field is populated.
	SubNodeEchonetLiteProperty
)

// String returns the sub-node kind name.
func (k ApplianceSubNodeKind) String() string {
	switch k {
	case SubNodeDevice:
		return "Device"
	case SubNodeModel:
		return "Model"
	case SubNodeEchonetLiteProperty:
		return "EchonetLiteProperty"
	default:
		return "Unknown"
	}
}

// ApplianceSubNode is an auxiliary record nested under an appliance.
// Exactly one payload field is populated, selected by Kind.
type ApplianceSubNode struct {
	Kind ApplianceSubNodeKind

	Device   Device
	Model    ApplianceModel
	Property EchonetLiteProperty
}
