// File: api/types.go
// Package api
// Author: momentics <momentics@gmail.com>
//
// Wire-level identity types shared by the codec and the connection engine:
// the 6-byte Virtual MAC address and the 16-byte device UUID.

package api

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// VMACSize is the fixed wire length of a BACnet/SC virtual MAC address.
const VMACSize = 6

// UUIDSize is the fixed wire length of a BACnet/SC device UUID.
const UUIDSize = 16

// VMAC is a 6-byte virtual MAC address. The all-0xFF value is the
// broadcast address.
type VMAC [VMACSize]byte

// BroadcastVMAC is the all-ones VMAC reserved for broadcast.
var BroadcastVMAC = VMAC{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

// IsBroadcast reports whether v is the all-0xFF broadcast address.
func (v VMAC) IsBroadcast() bool {
	return v == BroadcastVMAC
}

// Equal reports byte-wise equality with other.
func (v VMAC) Equal(other VMAC) bool {
	return v == other
}

// String renders the VMAC as colon-separated hex, e.g. "aa:bb:cc:dd:ee:ff".
func (v VMAC) String() string {
	buf := make([]byte, 0, VMACSize*3-1)
	for i, b := range v {
		if i > 0 {
			buf = append(buf, ':')
		}
		buf = append(buf, []byte(hex.EncodeToString([]byte{b}))...)
	}
	return string(buf)
}

// UUID is a 16-byte device identifier that survives a VMAC change across a
// reboot. It is wire-compatible with google/uuid's byte layout.
type UUID [UUIDSize]byte

// Equal reports byte-wise equality with other.
func (u UUID) Equal(other UUID) bool {
	return u == other
}

// String renders the UUID in canonical 8-4-4-4-12 hex form.
func (u UUID) String() string {
	return uuid.UUID(u).String()
}

// NewRandomUUID generates a new random (v4) UUID for use as a local device
// identity in tests and demo code.
func NewRandomUUID() UUID {
	return UUID(uuid.New())
}

// UUIDFromGoogle converts a github.com/google/uuid value to this package's
// wire-layout UUID type.
func UUIDFromGoogle(u uuid.UUID) UUID {
	return UUID(u)
}
