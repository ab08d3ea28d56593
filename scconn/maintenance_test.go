package scconn_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/momentics/bacnet-sc/scconn"
)

// TestHeartbeatTimeoutClosesIdleConnection exercises the maintenance tick's
// 2x heartbeat-timeout rule end to end: a connected initiator that never
// hears from its peer again must be force-closed and removed from its
// Context's table.
func TestHeartbeatTimeoutClosesIdleConnection(t *testing.T) {
	initCfg := baseConfig()
	initCfg.LocalVMAC, initCfg.LocalUUID = vmac(0x01), uid(0xA1)
	initCfg.HeartbeatTimeout = time.Second
	acceptCfg := baseConfig()
	acceptCfg.LocalVMAC, acceptCfg.LocalUUID = vmac(0x02), uid(0xA2)
	acceptCfg.HeartbeatTimeout = time.Second

	initiator, acceptor := newPair(t, initCfg, acceptCfg)
	go initiator.Run()
	defer initiator.Close()

	acceptDone := make(chan *scconn.Connection, 1)
	go func() {
		c, _ := acceptor.Accept(2 * time.Second)
		acceptDone <- c
	}()
	dialed, derr := initiator.Connect("wss://fake/direct")
	require.Nil(t, derr)
	accepted := <-acceptDone
	require.NotNil(t, accepted)

	// Drain whatever the initiator's maintenance tick sends (a
	// Heartbeat-Request after 1s) so the link doesn't back up. The
	// acceptor's Recv answers with a Heartbeat-Ack, but the initiator never
	// calls Recv, so it never observes any traffic — as if the peer had
	// vanished.
	drainDone := make(chan struct{})
	go func() {
		buf := make([]byte, 64)
		for i := 0; i < 3; i++ {
			if _, err := accepted.Recv(nil, buf, 3*time.Second); err != nil {
				break
			}
		}
		close(drainDone)
	}()

	// The initiator must send its Heartbeat-Request at the 1s mark and
	// force-close at the 2s mark if still unanswered (2x heartbeat-timeout
	// total); a 2.5s deadline catches a regression back to the 3x bug.
	deadline := time.Now().Add(2500 * time.Millisecond)
	for dialed.State() == scconn.StateConnected && time.Now().Before(deadline) {
		time.Sleep(100 * time.Millisecond)
	}
	require.Equal(t, scconn.StateIdle, dialed.State())
	<-drainDone
}
