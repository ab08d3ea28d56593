package scconfig

import (
	"os"
	"strconv"
	"time"
)

// applyEnv overrides cfg fields from BACNET_SC_* environment variables, one
// explicit os.Getenv check per field, parsed with the matching strconv
// function. A malformed value is left at its prior setting.
func applyEnv(cfg *FileConfig) {
	if v := os.Getenv("BACNET_SC_ROLE"); v != "" {
		cfg.Role = v
	}
	if v := os.Getenv("BACNET_SC_PROTOCOL"); v != "" {
		cfg.Protocol = v
	}
	if v := os.Getenv("BACNET_SC_PORT"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 16); err == nil {
			cfg.Port = uint16(n)
		}
	}
	if v := os.Getenv("BACNET_SC_CA_CERT_FILE"); v != "" {
		cfg.CACertFile = v
	}
	if v := os.Getenv("BACNET_SC_CERT_FILE"); v != "" {
		cfg.CertFile = v
	}
	if v := os.Getenv("BACNET_SC_KEY_FILE"); v != "" {
		cfg.KeyFile = v
	}
	if v := os.Getenv("BACNET_SC_LOCAL_VMAC"); v != "" {
		cfg.LocalVMAC = v
	}
	if v := os.Getenv("BACNET_SC_LOCAL_UUID"); v != "" {
		cfg.LocalUUID = v
	}
	if v := os.Getenv("BACNET_SC_MAX_BVLC_LEN"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 16); err == nil {
			cfg.MaxBVLCLen = uint16(n)
		}
	}
	if v := os.Getenv("BACNET_SC_MAX_NPDU_LEN"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 16); err == nil {
			cfg.MaxNPDULen = uint16(n)
		}
	}
	if v := os.Getenv("BACNET_SC_CONNECT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ConnectTimeout = d
		}
	}
	if v := os.Getenv("BACNET_SC_HEARTBEAT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.HeartbeatTimeout = d
		}
	}
	if v := os.Getenv("BACNET_SC_DISCONNECT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.DisconnectTimeout = d
		}
	}
}
