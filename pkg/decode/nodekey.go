package decode

// nodeKey is the closed set of object keys the schema knows. Unknown keys
// map to keyUnknown, whose values (and subtrees) are skipped.
type nodeKey uint8

const (
	keyUnknown nodeKey = iota

	// top-level wrappers
	keyDevices
	keyAppliances

	// shared
	keyID
	keyName
	keyCreatedAt
	keyUpdatedAt
	keyImage
	keyVal

	// device fields
	keyMacAddress
	keyBtMacAddress
	keySerialNumber
	keyFirmwareVersion
	keyTemperatureOffset
	keyHumidityOffset
	keyUsers
	keyNickname
	keySuperuser
	keyNewestEvents
	keyTe
	keyHu
	keyIl
	keyMo

	// appliance fields
	keyType
	keyDevice
	keyModel
	keyCountry
	keyManufacturer
	keyRemoteName
	keySeries
	keySmartMeter
	keyEchonetLiteProperties
	keyEpc
)

// lookupNodeKey interns a raw key. The string conversion in the switch
// does not allocate.
func lookupNodeKey(b []byte) nodeKey {
	switch string(b) {
	case "devices":
		return keyDevices
	case "appliances":
		return keyAppliances
	case "id":
		return keyID
	case "name":
		return keyName
	case "created_at":
		return keyCreatedAt
	case "updated_at":
		return keyUpdatedAt
	case "image":
		return keyImage
	case "val":
		return keyVal
	case "mac_address":
		return keyMacAddress
	case "bt_mac_address":
		return keyBtMacAddress
	case "serial_number":
		return keySerialNumber
	case "firmware_version":
		return keyFirmwareVersion
	case "temperature_offset":
		return keyTemperatureOffset
	case "humidity_offset":
		return keyHumidityOffset
	case "users":
		return keyUsers
	case "nickname":
		return keyNickname
	case "superuser":
		return keySuperuser
	case "newest_events":
		return keyNewestEvents
	case "te":
		return keyTe
	case "hu":
		return keyHu
	case "il":
		return keyIl
	case "mo":
		return keyMo
	case "type":
		return keyType
	case "device":
		return keyDevice
	case "model":
		return keyModel
	case "country":
		return keyCountry
	case "manufacturer":
		return keyManufacturer
	case "remote_name":
		return keyRemoteName
	case "series":
		return keySeries
	case "smart_meter":
		return keySmartMeter
	case "echonetlite_properties":
		return keyEchonetLiteProperties
	case "epc":
		return keyEpc
	}
	return keyUnknown
}
