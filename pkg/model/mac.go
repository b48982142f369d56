package model

import "fmt"

// MacAddress is a 6-byte hardware address.
type MacAddress [6]byte

// String formats the address as lower-case colon-separated hex.
func (m MacAddress) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x",
		m[0], m[1], m[2], m[3], m[4], m[5])
}

// IsZero reports whether the address is all zeroes.
func (m MacAddress) IsZero() bool {
	return m == MacAddress{}
}
