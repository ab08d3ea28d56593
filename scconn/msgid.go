// File: scconn/msgid.go
// Message-id generation, drawn from a CSPRNG rather than a seeded PRNG to
// avoid id reuse across reboots.
package scconn

import (
	"crypto/rand"
	"encoding/binary"
)

func randomMessageID() uint16 {
	var b [2]byte
	// crypto/rand.Read on the standard reader never returns an error in
	// practice on supported platforms; a zero id is an acceptable fallback
	// if it ever did, since ids only need to avoid collision, not secrecy.
	_, _ = rand.Read(b[:])
	return binary.BigEndian.Uint16(b[:])
}
