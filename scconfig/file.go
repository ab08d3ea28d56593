// File: scconfig/file.go
//
// YAML on-disk representation of one node's BACnet/SC configuration.
package scconfig

import (
	"time"
)

// FileConfig is the on-disk shape of one node's BACnet/SC configuration.
// Certificates are referenced by path rather than embedded, since PEM
// material belongs in files with restrictive permissions, not in a
// checked-in config document.
type FileConfig struct {
	Role     string `yaml:"role"`     // "initiator" or "acceptor"
	Protocol string `yaml:"protocol"` // "hub" or "direct"
	Port     uint16 `yaml:"port"`     // acceptor only

	CACertFile string `yaml:"ca_cert_file"`
	CertFile   string `yaml:"cert_file"`
	KeyFile    string `yaml:"key_file"`

	LocalVMAC string `yaml:"local_vmac"` // "aa:bb:cc:dd:ee:ff" or 12 hex digits
	LocalUUID string `yaml:"local_uuid"` // canonical 8-4-4-4-12 or 32 hex digits

	MaxBVLCLen uint16 `yaml:"max_bvlc_len"`
	MaxNPDULen uint16 `yaml:"max_npdu_len"`

	ConnectTimeout    time.Duration `yaml:"connect_timeout"`
	HeartbeatTimeout  time.Duration `yaml:"heartbeat_timeout"`
	DisconnectTimeout time.Duration `yaml:"disconnect_timeout"`
}

// DefaultFileConfig returns conservative defaults suitable for a first
// deployment: direct connection, scconn's default timeouts, and the wire
// limits most BACnet/SC hubs advertise.
func DefaultFileConfig() FileConfig {
	return FileConfig{
		Protocol:          "direct",
		MaxBVLCLen:        1497,
		MaxNPDULen:        1490,
		ConnectTimeout:    10 * time.Second,
		HeartbeatTimeout:  300 * time.Second,
		DisconnectTimeout: 10 * time.Second,
	}
}
