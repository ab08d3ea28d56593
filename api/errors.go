// File: api/errors.go
// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error type shared by the codec, the connection engine, and the
// configuration loader. There is one error convention for the whole module.

package api

import "fmt"

// ErrorClass groups related ErrorCode values, mirroring the BACnet standard
// error-class/error-code pairing used on the wire.
type ErrorClass int

const (
	ErrorClassNone ErrorClass = iota
	ErrorClassCommunication
	ErrorClassResources
)

func (c ErrorClass) String() string {
	switch c {
	case ErrorClassCommunication:
		return "communication"
	case ErrorClassResources:
		return "resources"
	default:
		return "none"
	}
}

// ErrorCode enumerates the BACnet standard error identifiers this module
// can produce or consume.
type ErrorCode int

const (
	ErrorCodeNone ErrorCode = iota
	ErrorCodeNodeDuplicateVMAC
	ErrorCodeMessageIncomplete
	ErrorCodeHeaderEncodingError
	ErrorCodePayloadExpected
	ErrorCodeUnexpectedData
	ErrorCodeInconsistentParameters
	ErrorCodeParameterOutOfRange
	ErrorCodeOutOfMemory
	ErrorCodeBVLCFunctionUnknown
	ErrorCodeInvalidArgument
	ErrorCodeTimeout
	ErrorCodeClosed
)

func (c ErrorCode) String() string {
	switch c {
	case ErrorCodeNodeDuplicateVMAC:
		return "node-duplicate-vmac"
	case ErrorCodeMessageIncomplete:
		return "message-incomplete"
	case ErrorCodeHeaderEncodingError:
		return "header-encoding-error"
	case ErrorCodePayloadExpected:
		return "payload-expected"
	case ErrorCodeUnexpectedData:
		return "unexpected-data"
	case ErrorCodeInconsistentParameters:
		return "inconsistent-parameters"
	case ErrorCodeParameterOutOfRange:
		return "parameter-out-of-range"
	case ErrorCodeOutOfMemory:
		return "out-of-memory"
	case ErrorCodeBVLCFunctionUnknown:
		return "bvlc-function-unknown"
	case ErrorCodeInvalidArgument:
		return "invalid-argument"
	case ErrorCodeTimeout:
		return "timeout"
	case ErrorCodeClosed:
		return "closed"
	default:
		return "none"
	}
}

// Error is a structured error carrying a BACnet error class/code pair plus
// free-form context, used uniformly by bvlc, scconn and scconfig.
type Error struct {
	Class   ErrorClass
	Code    ErrorCode
	Message string
	Context map[string]any
}

// NewError creates a structured error with an empty context map.
func NewError(class ErrorClass, code ErrorCode, message string) *Error {
	return &Error{
		Class:   class,
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext attaches a key/value pair and returns the same error for
// chaining at the call site.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (context: %+v)", e.Code, e.Message, e.Context)
}
