package bvlc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/bacnet-sc/api"
	"github.com/momentics/bacnet-sc/bvlc"
)

func vmac(b byte) api.VMAC {
	return api.VMAC{b, b, b, b, b, b}
}

func TestConnectRequestRoundTrip(t *testing.T) {
	buf := make([]byte, 256)
	id := api.NewRandomUUID()
	n, err := bvlc.EncodeConnectRequest(buf, 42, nil, nil, vmac(0x01), id, 1500, 1497)
	require.Nil(t, err)

	msg, derr := bvlc.DecodeMessage(buf[:n])
	require.Nil(t, derr)
	require.NotNil(t, msg.ConnectRequest)
	assert.Equal(t, uint16(42), msg.MessageID)
	assert.Equal(t, vmac(0x01), msg.ConnectRequest.VMAC)
	assert.Equal(t, id, msg.ConnectRequest.UUID)
	assert.Equal(t, uint16(1500), msg.ConnectRequest.MaxBVLCLen)
	assert.Equal(t, uint16(1497), msg.ConnectRequest.MaxNPDULen)
	assert.Nil(t, msg.Origin)
	assert.Nil(t, msg.Dest)
}

func TestConnectRequestRejectsAddressing(t *testing.T) {
	buf := make([]byte, 64)
	// Hand-craft a Connect-Request frame with DEST-VADDR set; the codec
	// must never produce one, so build it with the header writer used by
	// an addressable function and then patch the function code.
	n, err := bvlc.EncodeEncapsulatedNPDU(buf, 1, nil, func() *api.VMAC { v := vmac(0x02); return &v }(), nil, nil, []byte{0xAA})
	require.Nil(t, err)
	buf[0] = byte(bvlc.FunctionConnectRequest)

	_, derr := bvlc.DecodeMessage(buf[:n])
	require.NotNil(t, derr)
	assert.Equal(t, api.ErrorCodeHeaderEncodingError, derr.Code)
}

func TestEncapsulatedNPDURoundTripWithAddressing(t *testing.T) {
	buf := make([]byte, 256)
	origin := vmac(0x10)
	dest := vmac(0x20)
	npdu := []byte{0x01, 0x02, 0x03, 0x04}

	n, err := bvlc.EncodeEncapsulatedNPDU(buf, 7, &origin, &dest, nil, nil, npdu)
	require.Nil(t, err)

	msg, derr := bvlc.DecodeMessage(buf[:n])
	require.Nil(t, derr)
	require.NotNil(t, msg.Origin)
	require.NotNil(t, msg.Dest)
	assert.Equal(t, origin, *msg.Origin)
	assert.Equal(t, dest, *msg.Dest)
	assert.Equal(t, npdu, msg.NPDU)
}

func TestResultNackRoundTrip(t *testing.T) {
	buf := make([]byte, 256)
	n, err := bvlc.EncodeResult(buf, 9, nil, nil, nil, nil, bvlc.FunctionHeartbeatRequest, bvlc.ResultNack, 2, 9, "timed out")
	require.Nil(t, err)

	msg, derr := bvlc.DecodeMessage(buf[:n])
	require.Nil(t, derr)
	require.NotNil(t, msg.Result)
	assert.Equal(t, bvlc.FunctionHeartbeatRequest, msg.Result.OriginatingFunction)
	assert.Equal(t, bvlc.ResultNack, msg.Result.Code)
	assert.Equal(t, uint16(2), msg.Result.ErrorClass)
	assert.Equal(t, uint16(9), msg.Result.ErrorCode)
	assert.Equal(t, "timed out", msg.Result.ErrorDetails)
}

func TestOptionChainRoundTrip(t *testing.T) {
	buf := make([]byte, 256)
	destOpts := []bvlc.Option{bvlc.ProprietaryOption(7, 1, []byte{0x01}, false)}
	dataOpts := []bvlc.Option{
		bvlc.SecurePathOption(true),
		bvlc.ProprietaryOption(7, 2, []byte{0x02, 0x03}, false),
	}
	n, err := bvlc.EncodeEncapsulatedNPDU(buf, 1, nil, nil, destOpts, dataOpts, []byte{0xFF})
	require.Nil(t, err)

	msg, derr := bvlc.DecodeMessage(buf[:n])
	require.Nil(t, derr)
	require.Len(t, msg.DestOptions, 1)
	require.Len(t, msg.DataOptions, 2)
	assert.Equal(t, bvlc.OptionTypeSecurePath, msg.DataOptions[0].Type)
	assert.Equal(t, bvlc.OptionTypeProprietary, msg.DataOptions[1].Type)
	assert.Equal(t, []byte{0x02, 0x03}, msg.DataOptions[1].Data)
}

func TestSecurePathInDestOptionsRejected(t *testing.T) {
	buf := make([]byte, 256)
	destOpts := []bvlc.Option{bvlc.SecurePathOption(false)}
	_, err := bvlc.EncodeEncapsulatedNPDU(buf, 1, nil, nil, destOpts, nil, nil)
	require.NotNil(t, err)
	assert.Equal(t, api.ErrorCodeHeaderEncodingError, err.Code)
}

func TestFiveChainedOptionsDecodesOutOfMemory(t *testing.T) {
	raw := headerOnly(t)
	for i := 0; i < 5; i++ {
		dst := make([]byte, 256)
		n, err := bvlc.AddOptionToDataOptions(dst, raw, bvlc.ProprietaryOption(1, uint8(i), nil, false))
		require.Nil(t, err)
		raw = append([]byte(nil), dst[:n]...)
	}
	_, derr := bvlc.DecodeMessage(raw)
	require.NotNil(t, derr)
	assert.Equal(t, api.ErrorCodeOutOfMemory, derr.Code)
}

func headerOnly(t *testing.T) []byte {
	t.Helper()
	buf := make([]byte, 16)
	n, err := bvlc.EncodeEncapsulatedNPDU(buf, 1, nil, nil, nil, nil, nil)
	require.Nil(t, err)
	return buf[:n]
}

func TestAddOptionAliasingMatchesSeparateBuffer(t *testing.T) {
	base := headerOnly(t)
	opt := bvlc.ProprietaryOption(3, 9, []byte{0x01}, true)

	separate := make([]byte, 256)
	nSep, err := bvlc.AddOptionToDataOptions(separate, base, opt)
	require.Nil(t, err)

	aliased := make([]byte, 256)
	copy(aliased, base)
	nAliased, err := bvlc.AddOptionToDataOptions(aliased, aliased[:len(base)], opt)
	require.Nil(t, err)

	assert.Equal(t, separate[:nSep], aliased[:nAliased])
}

func TestRemoveOriginAndDestStripsAddressing(t *testing.T) {
	buf := make([]byte, 256)
	origin := vmac(0x30)
	dest := vmac(0x40)
	n, err := bvlc.EncodeEncapsulatedNPDU(buf, 1, &origin, &dest, nil, nil, []byte{0x01})
	require.Nil(t, err)

	stripped := make([]byte, 256)
	n2, serr := bvlc.RemoveOriginAndDest(stripped, buf[:n])
	require.Nil(t, serr)

	msg, derr := bvlc.DecodeMessage(stripped[:n2])
	require.Nil(t, derr)
	assert.Nil(t, msg.Origin)
	assert.Nil(t, msg.Dest)
	assert.Equal(t, []byte{0x01}, msg.NPDU)
}

func TestBroadcastVMACRecognition(t *testing.T) {
	assert.True(t, bvlc.IsVMACBroadcast(api.BroadcastVMAC))
	assert.False(t, bvlc.IsVMACBroadcast(vmac(0x01)))
}
