// File: bvlc/frame.go
// Decoded frame and per-function payload shapes. DecodeMessage populates at
// most one of the payload fields, matching the function code; functions with
// an empty payload populate none.
package bvlc

import "github.com/momentics/bacnet-sc/api"

// Result is the BVLC-Result payload: an ack or a nack reporting why a
// previously received message was rejected.
type Result struct {
	OriginatingFunction FunctionCode
	Code                uint8 // ResultAck or ResultNack
	ErrorClass           uint16
	ErrorCode            uint16
	ErrorDetails         string
}

// ConnectRequest is the Connect-Request payload (initiator -> acceptor).
type ConnectRequest struct {
	VMAC        api.VMAC
	UUID        api.UUID
	MaxBVLCLen  uint16
	MaxNPDULen  uint16
}

// ConnectAccept is the Connect-Accept payload (acceptor -> initiator).
type ConnectAccept struct {
	VMAC        api.VMAC
	UUID        api.UUID
	MaxBVLCLen  uint16
	MaxNPDULen  uint16
}

// Advertisement is the periodic capability/status broadcast a hub or direct
// node sends.
type Advertisement struct {
	HubConnectionStatus    uint8
	DirectConnectStatus    uint8
	MaxBVLCLen             uint16
	MaxNPDULen             uint16
}

// AddressResolutionAck carries the URIs a node advertises in answer to an
// Address-Resolution request.
type AddressResolutionAck struct {
	URIs []string
}

// ProprietaryMessage is the vendor-specific BVLC payload.
type ProprietaryMessage struct {
	VendorID uint16
	Function uint8
	Data     []byte
}

// DecodedMessage is the fully parsed form of one BVLC-SC frame.
type DecodedMessage struct {
	Function  FunctionCode
	MessageID uint16
	Origin    *api.VMAC
	Dest      *api.VMAC

	DestOptions []Option
	DataOptions []Option

	Result                *Result
	ConnectRequest        *ConnectRequest
	ConnectAccept         *ConnectAccept
	Advertisement         *Advertisement
	AddressResolutionAck  *AddressResolutionAck
	Proprietary           *ProprietaryMessage
	NPDU                  []byte // raw NPDU payload for Encapsulated-NPDU
}

// PDUHasDestBroadcast reports whether the frame's destination is the
// broadcast VMAC (no Dest field also counts as a local-network broadcast,
// but this helper only answers the explicit-address question).
func (m *DecodedMessage) PDUHasDestBroadcast() bool {
	return m.Dest != nil && m.Dest.IsBroadcast()
}

// PDUHasNoDest reports whether the frame carries no destination address at
// all (implicit broadcast to the local BACnet/SC network).
func (m *DecodedMessage) PDUHasNoDest() bool {
	return m.Dest == nil
}

// PDUGetDest returns the frame's destination VMAC and whether one is
// present.
func (m *DecodedMessage) PDUGetDest() (api.VMAC, bool) {
	if m.Dest == nil {
		return api.VMAC{}, false
	}
	return *m.Dest, true
}

// IsVMACBroadcast reports whether v is the reserved broadcast address.
func IsVMACBroadcast(v api.VMAC) bool {
	return v.IsBroadcast()
}
