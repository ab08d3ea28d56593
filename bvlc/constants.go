// File: bvlc/constants.go
// Package bvlc implements the BVLC-SC (BACnet Virtual Link Control for
// Secure Connect) wire codec: encode/decode of the datalink frames carried
// over a BACnet/SC WebSocket connection, plus in-place header editors.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Wire layout (byte offsets from the start of the frame):
//
//	+0  function code (u8)
//	+1  control flags (u8): 0x01 DATA-OPT, 0x02 DEST-OPT, 0x04 DEST-VADDR, 0x08 ORIG-VADDR
//	+2  message id (u16, big-endian)
//	+4  [6 bytes destination VMAC, iff DEST-VADDR]
//	+?  [6 bytes origin VMAC,      iff ORIG-VADDR]
//	+?  [destination option chain,  iff DEST-OPT]
//	+?  [data option chain,         iff DATA-OPT]
//	+?  payload (function-specific)
package bvlc

// FunctionCode identifies a BVLC-SC message type.
type FunctionCode uint8

const (
	FunctionResult                   FunctionCode = 0x00
	FunctionEncapsulatedNPDU         FunctionCode = 0x01
	FunctionAddressResolution        FunctionCode = 0x02
	FunctionAddressResolutionAck     FunctionCode = 0x03
	FunctionAdvertisement            FunctionCode = 0x04
	FunctionAdvertisementSolicit     FunctionCode = 0x05
	FunctionConnectRequest           FunctionCode = 0x06
	FunctionConnectAccept            FunctionCode = 0x07
	FunctionDisconnectRequest        FunctionCode = 0x08
	FunctionDisconnectAck            FunctionCode = 0x09
	FunctionHeartbeatRequest         FunctionCode = 0x0A
	FunctionHeartbeatAck             FunctionCode = 0x0B
	FunctionProprietaryMessage       FunctionCode = 0x0C
)

func (f FunctionCode) String() string {
	switch f {
	case FunctionResult:
		return "bvlc-result"
	case FunctionEncapsulatedNPDU:
		return "encapsulated-npdu"
	case FunctionAddressResolution:
		return "address-resolution"
	case FunctionAddressResolutionAck:
		return "address-resolution-ack"
	case FunctionAdvertisement:
		return "advertisement"
	case FunctionAdvertisementSolicit:
		return "advertisement-solicitation"
	case FunctionConnectRequest:
		return "connect-request"
	case FunctionConnectAccept:
		return "connect-accept"
	case FunctionDisconnectRequest:
		return "disconnect-request"
	case FunctionDisconnectAck:
		return "disconnect-ack"
	case FunctionHeartbeatRequest:
		return "heartbeat-request"
	case FunctionHeartbeatAck:
		return "heartbeat-ack"
	case FunctionProprietaryMessage:
		return "proprietary-message"
	default:
		return "unknown-function"
	}
}

// Control-flags bits, offset +1.
const (
	ctrlDataOptions  = 0x01
	ctrlDestOptions  = 0x02
	ctrlDestVAddr    = 0x04
	ctrlOrigVAddr    = 0x08
)

// Option header byte bits.
const (
	optTypeMask        = 0x1F
	optHasDataBit      = 0x20
	optMoreOptionsBit  = 0x40
	optMustUnderstandBit = 0x80
)

// OptionType enumerates the two option kinds the standard defines.
type OptionType uint8

const (
	OptionTypeSecurePath   OptionType = 1
	OptionTypeProprietary  OptionType = 31
)

// MaxChainedOptions is the maximum number of options a single destination-
// or data-option chain may carry before decode reports out-of-memory.
const MaxChainedOptions = 4

// HeaderLen is the fixed 4-byte prefix every frame starts with.
const HeaderLen = 4

// ResultCode values for the BVLC-Result payload.
const (
	ResultAck  uint8 = 0
	ResultNack uint8 = 1
)

// functionsWithoutAddressing lists the function codes that MUST NOT carry
// an origin or destination VMAC (spec AB.6.2 handshake/liveness messages).
var functionsWithoutAddressing = map[FunctionCode]bool{
	FunctionConnectRequest:    true,
	FunctionConnectAccept:     true,
	FunctionDisconnectRequest: true,
	FunctionDisconnectAck:     true,
	FunctionHeartbeatRequest:  true,
	FunctionHeartbeatAck:      true,
}

// functionsRequiringUnpromptedResult lists the functions whose receipt
// mandates an unprompted BVLC-Result reply (NeedSendBVLCResult).
var functionsRequiringUnpromptedResult = map[FunctionCode]bool{
	FunctionEncapsulatedNPDU:     true,
	FunctionAddressResolution:    true,
	FunctionAdvertisementSolicit: true,
	FunctionHeartbeatRequest:     true,
	FunctionConnectRequest:       true,
	FunctionDisconnectRequest:    true,
}

// NeedSendBVLCResult returns true exactly for messages whose specification
// mandates an unprompted BVLC-Result reply on receipt.
func NeedSendBVLCResult(function FunctionCode) bool {
	return functionsRequiringUnpromptedResult[function]
}
