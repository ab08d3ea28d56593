// File: bvlc/editors.go
// In-place header editors: these rewrite a frame's address fields or splice
// a new option onto the head of an option chain without touching the
// already-encoded payload bytes. dst and src may alias the same array; each
// editor fully computes its result from src before writing into dst.
package bvlc

import (
	"encoding/binary"

	"github.com/momentics/bacnet-sc/api"
)

type envelope struct {
	function FunctionCode
	ctrl     byte
	msgID    uint16

	destStart, destEnd       int
	origStart, origEnd       int
	destOptStart, destOptEnd int
	dataOptStart, dataOptEnd int
	payloadStart             int
}

func parseEnvelope(raw []byte) (*envelope, *api.Error) {
	if len(raw) < HeaderLen {
		return nil, codecErrIncomplete("frame shorter than the 4-byte header")
	}
	e := &envelope{
		function: FunctionCode(raw[0]),
		ctrl:     raw[1],
		msgID:    binary.BigEndian.Uint16(raw[2:4]),
	}
	off := HeaderLen

	e.destStart, e.destEnd = -1, -1
	if e.ctrl&ctrlDestVAddr != 0 {
		if off+api.VMACSize > len(raw) {
			return nil, codecErrIncomplete("destination vmac truncated")
		}
		e.destStart, e.destEnd = off, off+api.VMACSize
		off = e.destEnd
	}

	e.origStart, e.origEnd = -1, -1
	if e.ctrl&ctrlOrigVAddr != 0 {
		if off+api.VMACSize > len(raw) {
			return nil, codecErrIncomplete("origin vmac truncated")
		}
		e.origStart, e.origEnd = off, off+api.VMACSize
		off = e.origEnd
	}

	e.destOptStart, e.destOptEnd = -1, -1
	if e.ctrl&ctrlDestOptions != 0 {
		e.destOptStart = off
		_, n, err := scanOptionChain(raw[off:])
		if err != nil {
			return nil, err
		}
		off += n
		e.destOptEnd = off
	}

	e.dataOptStart, e.dataOptEnd = -1, -1
	if e.ctrl&ctrlDataOptions != 0 {
		e.dataOptStart = off
		_, n, err := scanOptionChain(raw[off:])
		if err != nil {
			return nil, err
		}
		off += n
		e.dataOptEnd = off
	}

	e.payloadStart = off
	return e, nil
}

func rawSection(raw []byte, start, end int) []byte {
	if start < 0 {
		return nil
	}
	return raw[start:end]
}

// rebuild assembles a brand-new frame from src's envelope, replacing the
// destination and origin addresses (nil means "absent") and leaving option
// chains and payload untouched.
func rebuild(src []byte, e *envelope, newDest, newOrigin *api.VMAC) []byte {
	destOpts := rawSection(src, e.destOptStart, e.destOptEnd)
	dataOpts := rawSection(src, e.dataOptStart, e.dataOptEnd)
	payload := src[e.payloadStart:]

	size := HeaderLen + len(destOpts) + len(dataOpts) + len(payload)
	if newDest != nil {
		size += api.VMACSize
	}
	if newOrigin != nil {
		size += api.VMACSize
	}

	out := make([]byte, size)
	out[0] = byte(e.function)
	binary.BigEndian.PutUint16(out[2:4], e.msgID)
	ctrl := e.ctrl &^ (ctrlDestVAddr | ctrlOrigVAddr)
	off := HeaderLen

	if newDest != nil {
		ctrl |= ctrlDestVAddr
		copy(out[off:off+api.VMACSize], newDest[:])
		off += api.VMACSize
	}
	if newOrigin != nil {
		ctrl |= ctrlOrigVAddr
		copy(out[off:off+api.VMACSize], newOrigin[:])
		off += api.VMACSize
	}
	off += copy(out[off:], destOpts)
	off += copy(out[off:], dataOpts)
	copy(out[off:], payload)

	out[1] = ctrl
	return out
}

func copyOut(dst, computed []byte) int {
	copy(dst, computed)
	return len(computed)
}

func currentAddrs(src []byte, e *envelope) (dest, origin *api.VMAC) {
	if e.destStart >= 0 {
		var v api.VMAC
		copy(v[:], src[e.destStart:e.destEnd])
		dest = &v
	}
	if e.origStart >= 0 {
		var v api.VMAC
		copy(v[:], src[e.origStart:e.origEnd])
		origin = &v
	}
	return
}

// SetOrigin rewrites src's origin address to origin, leaving any
// destination address, option chains, and payload untouched. Not valid for
// functions that must not carry addressing (Connect-Request and its peers).
func SetOrigin(dst, src []byte, origin api.VMAC) (int, *api.Error) {
	e, err := parseEnvelope(src)
	if err != nil {
		return 0, err
	}
	if functionsWithoutAddressing[e.function] {
		return 0, codecErrHeaderEncoding(e.function.String() + " must not carry an origin address")
	}
	dest, _ := currentAddrs(src, e)
	return copyOut(dst, rebuild(src, e, dest, &origin)), nil
}

// RemoveDestSetOrigin strips any destination address from src and sets its
// origin address to origin.
func RemoveDestSetOrigin(dst, src []byte, origin api.VMAC) (int, *api.Error) {
	e, err := parseEnvelope(src)
	if err != nil {
		return 0, err
	}
	if functionsWithoutAddressing[e.function] {
		return 0, codecErrHeaderEncoding(e.function.String() + " must not carry addressing")
	}
	return copyOut(dst, rebuild(src, e, nil, &origin)), nil
}

// RemoveOriginAndDest strips both the origin and destination addresses from
// src, leaving option chains and payload untouched.
func RemoveOriginAndDest(dst, src []byte) (int, *api.Error) {
	e, err := parseEnvelope(src)
	if err != nil {
		return 0, err
	}
	return copyOut(dst, rebuild(src, e, nil, nil)), nil
}

func addOptionToChain(dst, src []byte, opt Option, dest bool) (int, *api.Error) {
	e, err := parseEnvelope(src)
	if err != nil {
		return 0, err
	}
	var existing []byte
	if dest {
		existing = rawSection(src, e.destOptStart, e.destOptEnd)
	} else {
		existing = rawSection(src, e.dataOptStart, e.dataOptEnd)
	}

	head := make([]byte, opt.encodedLen())
	if _, err := encodeOption(head, opt, len(existing) > 0); err != nil {
		return 0, err
	}
	newChain := append(head, existing...)

	destOpts := rawSection(src, e.destOptStart, e.destOptEnd)
	dataOpts := rawSection(src, e.dataOptStart, e.dataOptEnd)
	if dest {
		destOpts = newChain
	} else {
		dataOpts = newChain
	}
	destAddr, origAddr := currentAddrs(src, e)
	payload := src[e.payloadStart:]

	size := HeaderLen + len(destOpts) + len(dataOpts) + len(payload)
	if destAddr != nil {
		size += api.VMACSize
	}
	if origAddr != nil {
		size += api.VMACSize
	}
	out := make([]byte, size)
	out[0] = byte(e.function)
	binary.BigEndian.PutUint16(out[2:4], e.msgID)
	ctrl := e.ctrl &^ (ctrlDestOptions | ctrlDataOptions)
	off := HeaderLen
	if destAddr != nil {
		ctrl |= ctrlDestVAddr
		copy(out[off:off+api.VMACSize], destAddr[:])
		off += api.VMACSize
	}
	if origAddr != nil {
		ctrl |= ctrlOrigVAddr
		copy(out[off:off+api.VMACSize], origAddr[:])
		off += api.VMACSize
	}
	if len(destOpts) > 0 {
		ctrl |= ctrlDestOptions
		off += copy(out[off:], destOpts)
	}
	if len(dataOpts) > 0 {
		ctrl |= ctrlDataOptions
		off += copy(out[off:], dataOpts)
	}
	copy(out[off:], payload)
	out[1] = ctrl

	return copyOut(dst, out), nil
}

// AddOptionToDestOptions splices opt onto the head of src's destination
// option chain (creating the chain if absent).
func AddOptionToDestOptions(dst, src []byte, opt Option) (int, *api.Error) {
	if opt.Type == OptionTypeSecurePath {
		return 0, codecErrHeaderEncoding("secure-path option is only legal in the data-option chain")
	}
	return addOptionToChain(dst, src, opt, true)
}

// AddOptionToDataOptions splices opt onto the head of src's data option
// chain (creating the chain if absent).
func AddOptionToDataOptions(dst, src []byte, opt Option) (int, *api.Error) {
	return addOptionToChain(dst, src, opt, false)
}
