package model

// Text lengths fixed by the wire format itself.
const (
	// UUIDTextLen is the canonical UUID text length.
	UUIDTextLen = 36

	// TimestampTextLen bounds an RFC3339 timestamp with offset and
	// fractional seconds as the registry emits them.
	TimestampTextLen = 35

	// MacTextLen is the separated hex form of a 6-byte address.
	MacTextLen = 17
)

// Limits bounds the length of every variable-length string field. The
// decoder rejects (or, in the legacy truncate mode, shortens) scalars that
// exceed these bounds, which also size its reassembly buffer.
type Limits struct {
	MaxDeviceNameLen       int `yaml:"max_device_name_len"`
	MaxFirmwareVersionLen  int `yaml:"max_firmware_version_len"`
	MaxSerialNumberLen     int `yaml:"max_serial_number_len"`
	MaxNicknameLen         int `yaml:"max_nickname_len"`
	MaxModelNameLen        int `yaml:"max_model_name_len"`
	MaxManufacturerLen     int `yaml:"max_manufacturer_len"`
	MaxRemoteNameLen       int `yaml:"max_remote_name_len"`
	MaxSeriesLen           int `yaml:"max_series_len"`
	MaxImageLen            int `yaml:"max_image_len"`
	MaxCountryLen          int `yaml:"max_country_len"`
	MaxEchonetLiteNameLen  int `yaml:"max_echonetlite_name_len"`
	MaxEchonetLiteValueLen int `yaml:"max_echonetlite_value_len"`
}

// DefaultLimits returns the limits matching the upstream API's observed
// field sizes.
func DefaultLimits() Limits {
	return Limits{
		MaxDeviceNameLen:       48,
		MaxFirmwareVersionLen:  48,
		MaxSerialNumberLen:     14,
		MaxNicknameLen:         48,
		MaxModelNameLen:        64,
		MaxManufacturerLen:     32,
		MaxRemoteNameLen:       32,
		MaxSeriesLen:           32,
		MaxImageLen:            32,
		MaxCountryLen:          8,
		MaxEchonetLiteNameLen:  64,
		MaxEchonetLiteValueLen: 16,
	}
}

// MaxScalarLen returns the size of the largest scalar the decoder must be
// able to hold, with a little slack for quoting.
func (l Limits) MaxScalarLen() int {
	max := UUIDTextLen
	for _, n := range []int{
		TimestampTextLen,
		MacTextLen,
		l.MaxDeviceNameLen,
		l.MaxFirmwareVersionLen,
		l.MaxSerialNumberLen,
		l.MaxNicknameLen,
		l.MaxModelNameLen,
		l.MaxManufacturerLen,
		l.MaxRemoteNameLen,
		l.MaxSeriesLen,
		l.MaxImageLen,
		l.MaxCountryLen,
		l.MaxEchonetLiteNameLen,
		l.MaxEchonetLiteValueLen,
	} {
		if n > max {
			max = n
		}
	}
	return max + 2
}
