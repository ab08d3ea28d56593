// File: scconn/config.go
package scconn

import (
	"time"

	"github.com/momentics/bacnet-sc/api"
	"github.com/momentics/bacnet-sc/scwsapi"
)

// ContextConfig is BSC_CONTEXT_CFG: everything a Context needs for its
// entire lifetime. Loaded in production by package scconfig.
type ContextConfig struct {
	Role     Role
	Protocol scwsapi.Protocol
	Port     uint16 // acceptor only

	Certificates scwsapi.TLSCertificates

	LocalVMAC api.VMAC
	LocalUUID api.UUID

	MaxBVLCLen uint16
	MaxNPDULen uint16

	ConnectTimeout    time.Duration
	HeartbeatTimeout  time.Duration
	DisconnectTimeout time.Duration
}

// DefaultConnectTimeout is a conservative default for the handshake deadline.
const DefaultConnectTimeout = 10 * time.Second

// DefaultHeartbeatTimeout is a conservative default heartbeat interval.
const DefaultHeartbeatTimeout = 300 * time.Second

// Validate checks the fields a Context cannot safely operate without.
func (c ContextConfig) Validate() *api.Error {
	if c.Role == RoleAcceptor && c.Port == 0 {
		return api.NewError(api.ErrorClassCommunication, api.ErrorCodeInvalidArgument, "acceptor role requires a non-zero port")
	}
	if c.ConnectTimeout <= 0 {
		return api.NewError(api.ErrorClassCommunication, api.ErrorCodeInvalidArgument, "connect-timeout must be positive")
	}
	if c.HeartbeatTimeout <= 0 {
		return api.NewError(api.ErrorClassCommunication, api.ErrorCodeInvalidArgument, "heartbeat-timeout must be positive")
	}
	if c.DisconnectTimeout <= 0 {
		return api.NewError(api.ErrorClassCommunication, api.ErrorCodeInvalidArgument, "disconnect-timeout must be positive")
	}
	if c.MaxBVLCLen == 0 {
		return api.NewError(api.ErrorClassCommunication, api.ErrorCodeInvalidArgument, "max-bvlc-len must be positive")
	}
	return nil
}
