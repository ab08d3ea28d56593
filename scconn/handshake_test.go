package scconn_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/bacnet-sc/api"
	"github.com/momentics/bacnet-sc/scconn"
	"github.com/momentics/bacnet-sc/scconn/scconntest"
	"github.com/momentics/bacnet-sc/scwsapi"
)

func vmac(b byte) api.VMAC { return api.VMAC{b, b, b, b, b, b} }
func uid(b byte) api.UUID {
	var u api.UUID
	for i := range u {
		u[i] = b
	}
	return u
}

func baseConfig() scconn.ContextConfig {
	return scconn.ContextConfig{
		Protocol:          scwsapi.ProtocolDirect,
		Port:              47808,
		MaxBVLCLen:        1500,
		MaxNPDULen:        1497,
		ConnectTimeout:    2 * time.Second,
		HeartbeatTimeout:  2 * time.Second,
		DisconnectTimeout: 2 * time.Second,
	}
}

func newPair(t *testing.T, initCfg, acceptCfg scconn.ContextConfig) (*scconn.Context, *scconn.Context) {
	t.Helper()
	broker := scconntest.NewBroker()
	initiator, ierr := scconn.NewInitiatorContext(initCfg, &scconntest.ClientTransport{Broker: broker}, nil)
	require.Nil(t, ierr)
	acceptor, aerr := scconn.NewAcceptorContext(acceptCfg, &scconntest.ServerTransport{Broker: broker}, nil)
	require.Nil(t, aerr)
	return initiator, acceptor
}

func TestBasicHandshakeAndSendRecv(t *testing.T) {
	initCfg := baseConfig()
	initCfg.LocalVMAC, initCfg.LocalUUID = vmac(0x01), uid(0xA1)
	acceptCfg := baseConfig()
	acceptCfg.LocalVMAC, acceptCfg.LocalUUID = vmac(0x02), uid(0xA2)

	initiator, acceptor := newPair(t, initCfg, acceptCfg)

	var acceptedConn *scconn.Connection
	var acceptErr *api.Error
	done := make(chan struct{})
	go func() {
		acceptedConn, acceptErr = acceptor.Accept(2 * time.Second)
		close(done)
	}()

	dialed, derr := initiator.Connect("wss://fake/direct")
	require.Nil(t, derr)
	require.Equal(t, scconn.StateConnected, dialed.State())

	<-done
	require.Nil(t, acceptErr)
	require.NotNil(t, acceptedConn)
	assert.Equal(t, vmac(0x01), acceptedConn.PeerVMAC())
	assert.Equal(t, vmac(0x02), dialed.PeerVMAC())

	n, serr := dialed.Send([]byte("hello"))
	require.Nil(t, serr)
	assert.Equal(t, 5, n)

	buf := make([]byte, 64)
	rn, rerr := acceptedConn.Recv(nil, buf, time.Second)
	require.Nil(t, rerr)
	assert.Equal(t, "hello", string(buf[:rn]))
}

func TestAcceptorDuplicateUUIDReplacesConnection(t *testing.T) {
	initCfg1 := baseConfig()
	initCfg1.LocalVMAC, initCfg1.LocalUUID = vmac(0x01), uid(0xAA)
	acceptCfg := baseConfig()
	acceptCfg.LocalVMAC, acceptCfg.LocalUUID = vmac(0x99), uid(0xFE)

	broker := scconntest.NewBroker()
	initiator1, ierr := scconn.NewInitiatorContext(initCfg1, &scconntest.ClientTransport{Broker: broker}, nil)
	require.Nil(t, ierr)
	acceptor, aerr := scconn.NewAcceptorContext(acceptCfg, &scconntest.ServerTransport{Broker: broker}, nil)
	require.Nil(t, aerr)

	acceptDone := make(chan *scconn.Connection, 1)
	go func() {
		c, _ := acceptor.Accept(2 * time.Second)
		acceptDone <- c
	}()
	_, derr := initiator1.Connect("wss://fake/direct")
	require.Nil(t, derr)
	first := <-acceptDone
	require.NotNil(t, first)
	require.Equal(t, vmac(0x01), first.PeerVMAC())

	// Same UUID, new VMAC: simulates the peer rebooting with a fresh VMAC.
	initCfg2 := baseConfig()
	initCfg2.LocalVMAC, initCfg2.LocalUUID = vmac(0x02), uid(0xAA)
	initiator2, ierr2 := scconn.NewInitiatorContext(initCfg2, &scconntest.ClientTransport{Broker: broker}, nil)
	require.Nil(t, ierr2)

	acceptDone2 := make(chan *scconn.Connection, 1)
	go func() {
		c, _ := acceptor.Accept(2 * time.Second)
		acceptDone2 <- c
	}()
	_, derr2 := initiator2.Connect("wss://fake/direct")
	require.Nil(t, derr2)
	second := <-acceptDone2
	require.NotNil(t, second)
	assert.Equal(t, vmac(0x02), second.PeerVMAC())
	assert.Equal(t, uid(0xAA), second.PeerUUID())
	assert.Equal(t, scconn.StateIdle, first.State())
}

func TestInitiatorDuplicateVMACRejection(t *testing.T) {
	acceptCfg := baseConfig()
	acceptCfg.LocalVMAC, acceptCfg.LocalUUID = vmac(0x99), uid(0xFE)

	broker := scconntest.NewBroker()
	acceptor, aerr := scconn.NewAcceptorContext(acceptCfg, &scconntest.ServerTransport{Broker: broker}, nil)
	require.Nil(t, aerr)

	initCfg1 := baseConfig()
	initCfg1.LocalVMAC, initCfg1.LocalUUID = vmac(0x10), uid(0x01)
	initiator1, _ := scconn.NewInitiatorContext(initCfg1, &scconntest.ClientTransport{Broker: broker}, nil)

	acceptDone := make(chan struct{})
	go func() {
		acceptor.Accept(2 * time.Second)
		close(acceptDone)
	}()
	_, err1 := initiator1.Connect("wss://fake/direct")
	require.Nil(t, err1)
	<-acceptDone

	// Second peer claims the same VMAC with a different UUID: must be
	// rejected with a duplicate-vmac BVLC-Result NAK.
	initCfg2 := baseConfig()
	initCfg2.LocalVMAC, initCfg2.LocalUUID = vmac(0x10), uid(0x02)
	initiator2, _ := scconn.NewInitiatorContext(initCfg2, &scconntest.ClientTransport{Broker: broker}, nil)

	acceptDone2 := make(chan *api.Error, 1)
	go func() {
		_, aerr2 := acceptor.Accept(2 * time.Second)
		acceptDone2 <- aerr2
	}()
	_, err2 := initiator2.Connect("wss://fake/direct")
	require.NotNil(t, err2)
	assert.Equal(t, api.ErrorCodeNodeDuplicateVMAC, err2.Code)
	<-acceptDone2
}

func TestDisconnectRemovesConnectionFromBothSides(t *testing.T) {
	initCfg := baseConfig()
	initCfg.LocalVMAC, initCfg.LocalUUID = vmac(0x01), uid(0xA1)
	acceptCfg := baseConfig()
	acceptCfg.LocalVMAC, acceptCfg.LocalUUID = vmac(0x02), uid(0xA2)
	initiator, acceptor := newPair(t, initCfg, acceptCfg)

	acceptDone := make(chan *scconn.Connection, 1)
	go func() {
		c, _ := acceptor.Accept(2 * time.Second)
		acceptDone <- c
	}()
	dialed, derr := initiator.Connect("wss://fake/direct")
	require.Nil(t, derr)
	accepted := <-acceptDone
	require.NotNil(t, accepted)

	recvDone := make(chan struct{})
	go func() {
		buf := make([]byte, 64)
		accepted.Recv(nil, buf, 2*time.Second)
		close(recvDone)
	}()

	derr2 := dialed.Disconnect()
	require.Nil(t, derr2)
	assert.Equal(t, scconn.StateIdle, dialed.State())
	<-recvDone
	assert.Equal(t, scconn.StateIdle, accepted.State())
}
