// File: scconn/state.go
// Package scconn implements the BACnet/SC connection state machine: a
// Connection owning one transport handle, driven by a Context that owns
// the connection table for either an initiator or an acceptor role.
package scconn

// ConnState is one state of the connection state machine.
type ConnState int

const (
	StateIdle ConnState = iota
	StateAwaitingWebSocket
	StateAwaitingRequest
	StateAwaitingAccept
	StateConnected
	StateDisconnecting
)

func (s ConnState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingWebSocket:
		return "awaiting-websocket"
	case StateAwaitingRequest:
		return "awaiting-request"
	case StateAwaitingAccept:
		return "awaiting-accept"
	case StateConnected:
		return "connected"
	case StateDisconnecting:
		return "disconnecting"
	default:
		return "unknown"
	}
}

// Role is the part a Context plays: dialing out, or listening.
type Role int

const (
	RoleInitiator Role = iota
	RoleAcceptor
)

func (r Role) String() string {
	if r == RoleAcceptor {
		return "acceptor"
	}
	return "initiator"
}
