// File: bvlc/options.go
// Option chain encode/decode/scan. Destination and data option chains share
// this wire format; which chain a given Option belongs to is context, not a
// field on the struct.
package bvlc

import (
	"encoding/binary"

	"github.com/momentics/bacnet-sc/api"
)

// Option is one link of a destination- or data-option chain.
type Option struct {
	Type           OptionType
	MustUnderstand bool

	// VendorID, ProprietaryType and Data are populated only when
	// Type == OptionTypeProprietary.
	VendorID        uint16
	ProprietaryType uint8
	Data            []byte
}

// SecurePathOption builds the zero-data "secure path" option. It is only
// legal inside a data-option chain.
func SecurePathOption(mustUnderstand bool) Option {
	return Option{Type: OptionTypeSecurePath, MustUnderstand: mustUnderstand}
}

// ProprietaryOption builds a vendor-specific option carrying opaque data.
func ProprietaryOption(vendorID uint16, proprietaryType uint8, data []byte, mustUnderstand bool) Option {
	return Option{
		Type:            OptionTypeProprietary,
		MustUnderstand:  mustUnderstand,
		VendorID:        vendorID,
		ProprietaryType: proprietaryType,
		Data:            data,
	}
}

func (o Option) encodedLen() int {
	if o.Type == OptionTypeProprietary {
		return 1 + 2 + 2 + 1 + len(o.Data)
	}
	return 1
}

func encodeOptionChain(buf []byte, options []Option) (int, *api.Error) {
	off := 0
	for i, opt := range options {
		n, err := encodeOption(buf[off:], opt, i < len(options)-1)
		if err != nil {
			return 0, err
		}
		off += n
	}
	return off, nil
}

func encodeOption(buf []byte, opt Option, more bool) (int, *api.Error) {
	need := opt.encodedLen()
	if len(buf) < need {
		return 0, codecErrOutOfBuffer("option chain")
	}
	hdr := byte(opt.Type) & optTypeMask
	if more {
		hdr |= optMoreOptionsBit
	}
	if opt.MustUnderstand {
		hdr |= optMustUnderstandBit
	}
	switch opt.Type {
	case OptionTypeSecurePath:
		buf[0] = hdr
		return 1, nil
	case OptionTypeProprietary:
		hdr |= optHasDataBit
		buf[0] = hdr
		dataLen := 2 + 1 + len(opt.Data)
		binary.BigEndian.PutUint16(buf[1:3], uint16(dataLen))
		binary.BigEndian.PutUint16(buf[3:5], opt.VendorID)
		buf[5] = opt.ProprietaryType
		copy(buf[6:6+len(opt.Data)], opt.Data)
		return 1 + 2 + dataLen, nil
	default:
		return 0, codecErrHeaderEncoding("unknown option type")
	}
}

// scanOptionChain decodes every option in a chain starting at buf[0],
// following the more-options bit, and returns the parsed options plus the
// number of bytes consumed. It returns out-of-memory once more than
// MaxChainedOptions options have been seen.
func scanOptionChain(buf []byte) ([]Option, int, *api.Error) {
	var options []Option
	off := 0
	for {
		if off >= len(buf) {
			return nil, 0, codecErrIncomplete("option chain truncated")
		}
		hdr := buf[off]
		optType := OptionType(hdr & optTypeMask)
		hasData := hdr&optHasDataBit != 0
		more := hdr&optMoreOptionsBit != 0
		mustUnderstand := hdr&optMustUnderstandBit != 0

		var opt Option
		var consumed int
		switch optType {
		case OptionTypeSecurePath:
			if hasData {
				return nil, 0, codecErrHeaderEncoding("secure-path option must not carry data")
			}
			opt = Option{Type: OptionTypeSecurePath, MustUnderstand: mustUnderstand}
			consumed = 1
		case OptionTypeProprietary:
			if !hasData {
				return nil, 0, codecErrHeaderEncoding("proprietary option must carry data")
			}
			if off+3 > len(buf) {
				return nil, 0, codecErrIncomplete("proprietary option length truncated")
			}
			dataLen := int(binary.BigEndian.Uint16(buf[off+1 : off+3]))
			if dataLen < 3 {
				return nil, 0, codecErrInconsistent("proprietary option data too short for vendor-id/type")
			}
			if off+3+dataLen > len(buf) {
				return nil, 0, codecErrIncomplete("proprietary option data truncated")
			}
			body := buf[off+3 : off+3+dataLen]
			opt = Option{
				Type:            OptionTypeProprietary,
				MustUnderstand:  mustUnderstand,
				VendorID:        binary.BigEndian.Uint16(body[0:2]),
				ProprietaryType: body[2],
				Data:            append([]byte(nil), body[3:]...),
			}
			consumed = 1 + 2 + dataLen
		default:
			return nil, 0, codecErrHeaderEncoding("unrecognized option type")
		}

		options = append(options, opt)
		off += consumed
		if len(options) > MaxChainedOptions {
			return nil, 0, codecErrOutOfMemory("more than four options chained")
		}
		if !more {
			break
		}
	}
	return options, off, nil
}

func chainContainsSecurePath(options []Option) bool {
	for _, o := range options {
		if o.Type == OptionTypeSecurePath {
			return true
		}
	}
	return false
}
