// File: bvlc/errors.go
// Codec error constructors, each pinned to the BACnet error-class/code pair
// the condition maps to.
package bvlc

import "github.com/momentics/bacnet-sc/api"

func codecErrIncomplete(msg string) *api.Error {
	return api.NewError(api.ErrorClassCommunication, api.ErrorCodeMessageIncomplete, msg)
}

func codecErrHeaderEncoding(msg string) *api.Error {
	return api.NewError(api.ErrorClassCommunication, api.ErrorCodeHeaderEncodingError, msg)
}

func codecErrPayloadExpected(msg string) *api.Error {
	return api.NewError(api.ErrorClassCommunication, api.ErrorCodePayloadExpected, msg)
}

func codecErrUnexpectedData(msg string) *api.Error {
	return api.NewError(api.ErrorClassCommunication, api.ErrorCodeUnexpectedData, msg)
}

func codecErrInconsistent(msg string) *api.Error {
	return api.NewError(api.ErrorClassCommunication, api.ErrorCodeInconsistentParameters, msg)
}

func codecErrOutOfRange(msg string) *api.Error {
	return api.NewError(api.ErrorClassCommunication, api.ErrorCodeParameterOutOfRange, msg)
}

func codecErrOutOfMemory(msg string) *api.Error {
	return api.NewError(api.ErrorClassResources, api.ErrorCodeOutOfMemory, msg)
}

func codecErrUnknownFunction(msg string) *api.Error {
	return api.NewError(api.ErrorClassCommunication, api.ErrorCodeBVLCFunctionUnknown, msg)
}

func codecErrOutOfBuffer(msg string) *api.Error {
	return api.NewError(api.ErrorClassResources, api.ErrorCodeOutOfMemory, "out of buffer: "+msg)
}
