// File: bvlc/codec.go
// Per-function frame encoders and the single decode entry point.
package bvlc

import (
	"bytes"
	"encoding/binary"

	"github.com/momentics/bacnet-sc/api"
)

type header struct {
	function    FunctionCode
	msgID       uint16
	origin      *api.VMAC
	dest        *api.VMAC
	destOptions []Option
	dataOptions []Option
}

func (h header) validate() *api.Error {
	if functionsWithoutAddressing[h.function] && (h.origin != nil || h.dest != nil) {
		return codecErrHeaderEncoding(h.function.String() + " must not carry an origin or destination address")
	}
	if chainContainsSecurePath(h.destOptions) {
		return codecErrHeaderEncoding("secure-path option is only legal in the data-option chain")
	}
	return nil
}

func (h header) encodedLen() int {
	n := HeaderLen
	if h.dest != nil {
		n += api.VMACSize
	}
	if h.origin != nil {
		n += api.VMACSize
	}
	for _, o := range h.destOptions {
		n += o.encodedLen()
	}
	for _, o := range h.dataOptions {
		n += o.encodedLen()
	}
	return n
}

func encodeHeader(buf []byte, h header) (int, *api.Error) {
	if err := h.validate(); err != nil {
		return 0, err
	}
	need := h.encodedLen()
	if len(buf) < need {
		return 0, codecErrOutOfBuffer("frame header")
	}
	var ctrl byte
	buf[0] = byte(h.function)
	binary.BigEndian.PutUint16(buf[2:4], h.msgID)
	off := HeaderLen

	if h.dest != nil {
		ctrl |= ctrlDestVAddr
		copy(buf[off:off+api.VMACSize], h.dest[:])
		off += api.VMACSize
	}
	if h.origin != nil {
		ctrl |= ctrlOrigVAddr
		copy(buf[off:off+api.VMACSize], h.origin[:])
		off += api.VMACSize
	}
	if len(h.destOptions) > 0 {
		ctrl |= ctrlDestOptions
		n, err := encodeOptionChain(buf[off:], h.destOptions)
		if err != nil {
			return 0, err
		}
		off += n
	}
	if len(h.dataOptions) > 0 {
		ctrl |= ctrlDataOptions
		n, err := encodeOptionChain(buf[off:], h.dataOptions)
		if err != nil {
			return 0, err
		}
		off += n
	}
	buf[1] = ctrl
	return off, nil
}

func putURI(buf []byte, uri string) int {
	binary.BigEndian.PutUint16(buf[0:2], uint16(len(uri)))
	copy(buf[2:2+len(uri)], uri)
	return 2 + len(uri)
}

// EncodeConnectRequest encodes a Connect-Request frame. This function carries
// no origin/destination addressing per the protocol's handshake rules.
func EncodeConnectRequest(buf []byte, msgID uint16, destOpts, dataOpts []Option, vmac api.VMAC, uuid api.UUID, maxBVLCLen, maxNPDULen uint16) (int, *api.Error) {
	h := header{function: FunctionConnectRequest, msgID: msgID, destOptions: destOpts, dataOptions: dataOpts}
	off, err := encodeHeader(buf, h)
	if err != nil {
		return 0, err
	}
	need := off + api.VMACSize + api.UUIDSize + 4
	if len(buf) < need {
		return 0, codecErrOutOfBuffer("connect-request payload")
	}
	copy(buf[off:off+api.VMACSize], vmac[:])
	off += api.VMACSize
	copy(buf[off:off+api.UUIDSize], uuid[:])
	off += api.UUIDSize
	binary.BigEndian.PutUint16(buf[off:off+2], maxBVLCLen)
	off += 2
	binary.BigEndian.PutUint16(buf[off:off+2], maxNPDULen)
	off += 2
	return off, nil
}

// EncodeConnectAccept encodes a Connect-Accept frame.
func EncodeConnectAccept(buf []byte, msgID uint16, destOpts, dataOpts []Option, vmac api.VMAC, uuid api.UUID, maxBVLCLen, maxNPDULen uint16) (int, *api.Error) {
	h := header{function: FunctionConnectAccept, msgID: msgID, destOptions: destOpts, dataOptions: dataOpts}
	off, err := encodeHeader(buf, h)
	if err != nil {
		return 0, err
	}
	need := off + api.VMACSize + api.UUIDSize + 4
	if len(buf) < need {
		return 0, codecErrOutOfBuffer("connect-accept payload")
	}
	copy(buf[off:off+api.VMACSize], vmac[:])
	off += api.VMACSize
	copy(buf[off:off+api.UUIDSize], uuid[:])
	off += api.UUIDSize
	binary.BigEndian.PutUint16(buf[off:off+2], maxBVLCLen)
	off += 2
	binary.BigEndian.PutUint16(buf[off:off+2], maxNPDULen)
	off += 2
	return off, nil
}

// EncodeDisconnectRequest encodes a zero-payload Disconnect-Request frame.
func EncodeDisconnectRequest(buf []byte, msgID uint16, destOpts, dataOpts []Option) (int, *api.Error) {
	return encodeHeader(buf, header{function: FunctionDisconnectRequest, msgID: msgID, destOptions: destOpts, dataOptions: dataOpts})
}

// EncodeDisconnectAck encodes a zero-payload Disconnect-Ack frame.
func EncodeDisconnectAck(buf []byte, msgID uint16, destOpts, dataOpts []Option) (int, *api.Error) {
	return encodeHeader(buf, header{function: FunctionDisconnectAck, msgID: msgID, destOptions: destOpts, dataOptions: dataOpts})
}

// EncodeHeartbeatRequest encodes a zero-payload Heartbeat-Request frame.
func EncodeHeartbeatRequest(buf []byte, msgID uint16, destOpts, dataOpts []Option) (int, *api.Error) {
	return encodeHeader(buf, header{function: FunctionHeartbeatRequest, msgID: msgID, destOptions: destOpts, dataOptions: dataOpts})
}

// EncodeHeartbeatAck encodes a zero-payload Heartbeat-Ack frame.
func EncodeHeartbeatAck(buf []byte, msgID uint16, destOpts, dataOpts []Option) (int, *api.Error) {
	return encodeHeader(buf, header{function: FunctionHeartbeatAck, msgID: msgID, destOptions: destOpts, dataOptions: dataOpts})
}

// EncodeResult encodes a BVLC-Result frame. Pass code=ResultAck to omit the
// error fields, or code=ResultNack to report errClass/errCode/details.
func EncodeResult(buf []byte, msgID uint16, origin, dest *api.VMAC, destOpts, dataOpts []Option,
	originatingFunction FunctionCode, code uint8, errClass, errCode uint16, details string) (int, *api.Error) {
	h := header{function: FunctionResult, msgID: msgID, origin: origin, dest: dest, destOptions: destOpts, dataOptions: dataOpts}
	off, err := encodeHeader(buf, h)
	if err != nil {
		return 0, err
	}
	need := off + 2
	if code == ResultNack {
		need += 1 + 2 + 2
		if details != "" {
			need += 2 + len(details)
		}
	}
	if len(buf) < need {
		return 0, codecErrOutOfBuffer("result payload")
	}
	buf[off] = byte(originatingFunction)
	buf[off+1] = code
	off += 2
	if code == ResultNack {
		marker := byte(0)
		if details != "" {
			marker = 1
		}
		buf[off] = marker
		binary.BigEndian.PutUint16(buf[off+1:off+3], errClass)
		binary.BigEndian.PutUint16(buf[off+3:off+5], errCode)
		off += 5
		if details != "" {
			off += putURI(buf[off:], details)
		}
	}
	return off, nil
}

// EncodeEncapsulatedNPDU encodes an Encapsulated-NPDU frame wrapping an
// opaque NPDU byte string.
func EncodeEncapsulatedNPDU(buf []byte, msgID uint16, origin, dest *api.VMAC, destOpts, dataOpts []Option, npdu []byte) (int, *api.Error) {
	h := header{function: FunctionEncapsulatedNPDU, msgID: msgID, origin: origin, dest: dest, destOptions: destOpts, dataOptions: dataOpts}
	off, err := encodeHeader(buf, h)
	if err != nil {
		return 0, err
	}
	if len(buf) < off+len(npdu) {
		return 0, codecErrOutOfBuffer("npdu payload")
	}
	copy(buf[off:off+len(npdu)], npdu)
	return off + len(npdu), nil
}

// EncodeAddressResolution encodes an Address-Resolution request (no payload
// beyond the header).
func EncodeAddressResolution(buf []byte, msgID uint16, origin, dest *api.VMAC, destOpts, dataOpts []Option) (int, *api.Error) {
	h := header{function: FunctionAddressResolution, msgID: msgID, origin: origin, dest: dest, destOptions: destOpts, dataOptions: dataOpts}
	return encodeHeader(buf, h)
}

// EncodeAddressResolutionAck encodes the URI list answering an
// Address-Resolution request.
func EncodeAddressResolutionAck(buf []byte, msgID uint16, origin, dest *api.VMAC, destOpts, dataOpts []Option, uris []string) (int, *api.Error) {
	h := header{function: FunctionAddressResolutionAck, msgID: msgID, origin: origin, dest: dest, destOptions: destOpts, dataOptions: dataOpts}
	off, err := encodeHeader(buf, h)
	if err != nil {
		return 0, err
	}
	need := off
	for _, u := range uris {
		need += 2 + len(u)
	}
	if len(buf) < need {
		return 0, codecErrOutOfBuffer("address-resolution-ack payload")
	}
	for _, u := range uris {
		off += putURI(buf[off:], u)
	}
	return off, nil
}

// EncodeAdvertisement encodes a periodic Advertisement frame.
func EncodeAdvertisement(buf []byte, msgID uint16, origin, dest *api.VMAC, destOpts, dataOpts []Option,
	hubStatus, directStatus uint8, maxBVLCLen, maxNPDULen uint16) (int, *api.Error) {
	h := header{function: FunctionAdvertisement, msgID: msgID, origin: origin, dest: dest, destOptions: destOpts, dataOptions: dataOpts}
	off, err := encodeHeader(buf, h)
	if err != nil {
		return 0, err
	}
	if len(buf) < off+6 {
		return 0, codecErrOutOfBuffer("advertisement payload")
	}
	buf[off] = hubStatus
	buf[off+1] = directStatus
	binary.BigEndian.PutUint16(buf[off+2:off+4], maxBVLCLen)
	binary.BigEndian.PutUint16(buf[off+4:off+6], maxNPDULen)
	return off + 6, nil
}

// EncodeAdvertisementSolicitation encodes an Advertisement-Solicitation
// frame (no payload beyond the header).
func EncodeAdvertisementSolicitation(buf []byte, msgID uint16, origin, dest *api.VMAC, destOpts, dataOpts []Option) (int, *api.Error) {
	h := header{function: FunctionAdvertisementSolicit, msgID: msgID, origin: origin, dest: dest, destOptions: destOpts, dataOptions: dataOpts}
	return encodeHeader(buf, h)
}

// EncodeProprietaryMessage encodes a vendor-specific BVLC frame.
func EncodeProprietaryMessage(buf []byte, msgID uint16, origin, dest *api.VMAC, destOpts, dataOpts []Option,
	vendorID uint16, function uint8, data []byte) (int, *api.Error) {
	h := header{function: FunctionProprietaryMessage, msgID: msgID, origin: origin, dest: dest, destOptions: destOpts, dataOptions: dataOpts}
	off, err := encodeHeader(buf, h)
	if err != nil {
		return 0, err
	}
	need := off + 2 + 1 + len(data)
	if len(buf) < need {
		return 0, codecErrOutOfBuffer("proprietary payload")
	}
	binary.BigEndian.PutUint16(buf[off:off+2], vendorID)
	buf[off+2] = function
	copy(buf[off+3:off+3+len(data)], data)
	return off + 3 + len(data), nil
}

// DecodeMessage parses raw into a DecodedMessage, validating the header,
// option chains, and function-specific payload.
func DecodeMessage(raw []byte) (*DecodedMessage, *api.Error) {
	if len(raw) < HeaderLen {
		return nil, codecErrIncomplete("frame shorter than the 4-byte header")
	}
	function := FunctionCode(raw[0])
	ctrl := raw[1]
	msgID := binary.BigEndian.Uint16(raw[2:4])
	off := HeaderLen

	msg := &DecodedMessage{Function: function, MessageID: msgID}

	if ctrl&ctrlDestVAddr != 0 {
		if off+api.VMACSize > len(raw) {
			return nil, codecErrIncomplete("destination vmac truncated")
		}
		var v api.VMAC
		copy(v[:], raw[off:off+api.VMACSize])
		msg.Dest = &v
		off += api.VMACSize
	}
	if ctrl&ctrlOrigVAddr != 0 {
		if off+api.VMACSize > len(raw) {
			return nil, codecErrIncomplete("origin vmac truncated")
		}
		var v api.VMAC
		copy(v[:], raw[off:off+api.VMACSize])
		msg.Origin = &v
		off += api.VMACSize
	}
	if functionsWithoutAddressing[function] && (msg.Origin != nil || msg.Dest != nil) {
		return nil, codecErrHeaderEncoding(function.String() + " must not carry an origin or destination address")
	}
	if ctrl&ctrlDestOptions != 0 {
		opts, n, err := scanOptionChain(raw[off:])
		if err != nil {
			return nil, err
		}
		if chainContainsSecurePath(opts) {
			return nil, codecErrHeaderEncoding("secure-path option is only legal in the data-option chain")
		}
		msg.DestOptions = opts
		off += n
	}
	if ctrl&ctrlDataOptions != 0 {
		opts, n, err := scanOptionChain(raw[off:])
		if err != nil {
			return nil, err
		}
		msg.DataOptions = opts
		off += n
	}

	payload := raw[off:]
	if err := decodePayload(msg, payload); err != nil {
		return nil, err
	}
	return msg, nil
}

func decodePayload(msg *DecodedMessage, payload []byte) *api.Error {
	switch msg.Function {
	case FunctionResult:
		if len(payload) < 2 {
			return codecErrPayloadExpected("result payload truncated")
		}
		r := &Result{OriginatingFunction: FunctionCode(payload[0]), Code: payload[1]}
		if r.Code != ResultAck && r.Code != ResultNack {
			return codecErrOutOfRange("result code must be 0 (ack) or 1 (nack)")
		}
		off := 2
		if r.Code == ResultNack {
			if len(payload) < off+5 {
				return codecErrPayloadExpected("result nack fields truncated")
			}
			marker := payload[off]
			r.ErrorClass = binary.BigEndian.Uint16(payload[off+1 : off+3])
			r.ErrorCode = binary.BigEndian.Uint16(payload[off+3 : off+5])
			off += 5
			if marker == 1 {
				uri, n, err := readURI(payload[off:])
				if err != nil {
					return err
				}
				r.ErrorDetails = uri
				off += n
			}
		}
		msg.Result = r
		return nil

	case FunctionConnectRequest, FunctionConnectAccept:
		need := api.VMACSize + api.UUIDSize + 4
		if len(payload) < need {
			return codecErrPayloadExpected(msg.Function.String() + " payload truncated")
		}
		var v api.VMAC
		copy(v[:], payload[0:api.VMACSize])
		var u api.UUID
		copy(u[:], payload[api.VMACSize:api.VMACSize+api.UUIDSize])
		maxBVLC := binary.BigEndian.Uint16(payload[api.VMACSize+api.UUIDSize : api.VMACSize+api.UUIDSize+2])
		maxNPDU := binary.BigEndian.Uint16(payload[api.VMACSize+api.UUIDSize+2 : need])
		if msg.Function == FunctionConnectRequest {
			msg.ConnectRequest = &ConnectRequest{VMAC: v, UUID: u, MaxBVLCLen: maxBVLC, MaxNPDULen: maxNPDU}
		} else {
			msg.ConnectAccept = &ConnectAccept{VMAC: v, UUID: u, MaxBVLCLen: maxBVLC, MaxNPDULen: maxNPDU}
		}
		return nil

	case FunctionDisconnectRequest, FunctionDisconnectAck, FunctionHeartbeatRequest, FunctionHeartbeatAck, FunctionAddressResolution, FunctionAdvertisementSolicit:
		if len(payload) != 0 {
			return codecErrUnexpectedData(msg.Function.String() + " must not carry a payload")
		}
		return nil

	case FunctionEncapsulatedNPDU:
		msg.NPDU = append([]byte(nil), payload...)
		return nil

	case FunctionAddressResolutionAck:
		var uris []string
		off := 0
		for off < len(payload) {
			uri, n, err := readURI(payload[off:])
			if err != nil {
				return err
			}
			uris = append(uris, uri)
			off += n
		}
		msg.AddressResolutionAck = &AddressResolutionAck{URIs: uris}
		return nil

	case FunctionAdvertisement:
		if len(payload) < 6 {
			return codecErrPayloadExpected("advertisement payload truncated")
		}
		msg.Advertisement = &Advertisement{
			HubConnectionStatus: payload[0],
			DirectConnectStatus: payload[1],
			MaxBVLCLen:          binary.BigEndian.Uint16(payload[2:4]),
			MaxNPDULen:          binary.BigEndian.Uint16(payload[4:6]),
		}
		return nil

	case FunctionProprietaryMessage:
		if len(payload) < 3 {
			return codecErrPayloadExpected("proprietary payload truncated")
		}
		msg.Proprietary = &ProprietaryMessage{
			VendorID: binary.BigEndian.Uint16(payload[0:2]),
			Function: payload[2],
			Data:     append([]byte(nil), payload[3:]...),
		}
		return nil

	default:
		return codecErrUnknownFunction("unrecognized bvlc function code")
	}
}

func readURI(buf []byte) (string, int, *api.Error) {
	if len(buf) < 2 {
		return "", 0, codecErrIncomplete("uri length truncated")
	}
	n := int(binary.BigEndian.Uint16(buf[0:2]))
	if len(buf) < 2+n {
		return "", 0, codecErrIncomplete("uri bytes truncated")
	}
	raw := buf[2 : 2+n]
	if bytes.IndexByte(raw, 0) >= 0 {
		return "", 0, codecErrInconsistent("uri must not contain an embedded NUL byte")
	}
	return string(raw), 2 + n, nil
}
