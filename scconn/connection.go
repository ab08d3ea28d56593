// File: scconn/connection.go
// Connection is BSC_CONNECTION: one WebSocket handle, its state, the
// peer's identity, negotiated frame sizes, and liveness bookkeeping.
package scconn

import (
	stdcontext "context"
	"time"

	"github.com/momentics/bacnet-sc/api"
	"github.com/momentics/bacnet-sc/bvlc"
	"github.com/momentics/bacnet-sc/scwsapi"
)

// Connection owns exactly one transport handle and is a member of exactly
// one Context's table whenever its state is not StateIdle (invariant I1/I2).
type Connection struct {
	ctx       *Context
	transport transportOps
	handle    scwsapi.Handle
	role      Role

	state ConnState

	peerVMAC api.VMAC
	peerUUID api.UUID

	remoteMaxBVLC uint16
	remoteMaxNPDU uint16

	nextOutgoingID          uint16
	expectedConnectAcceptID uint16
	expectedDisconnectID    uint16
	expectedHeartbeatID     uint16
	heartbeatPending        bool

	secondsSinceTraffic int

	// next/prev are the intrusive doubly-linked list pointers the owning
	// Context uses for insertion-ordered maintenance-tick iteration.
	next, prev *Connection
}

// State returns the connection's current state machine state.
func (c *Connection) State() ConnState { return c.state }

// PeerVMAC returns the peer's virtual MAC address.
func (c *Connection) PeerVMAC() api.VMAC { return c.peerVMAC }

// PeerUUID returns the peer's device UUID.
func (c *Connection) PeerUUID() api.UUID { return c.peerUUID }

func (c *Connection) nextMessageID() uint16 {
	c.nextOutgoingID++
	return c.nextOutgoingID
}

func (c *Connection) resetLiveness() {
	c.secondsSinceTraffic = 0
	c.heartbeatPending = false
}

func (c *Connection) recvBufferSize() int {
	if c.ctx.config.MaxBVLCLen == 0 {
		return 4096
	}
	return int(c.ctx.config.MaxBVLCLen) + 1
}

// Send transmits data as an Encapsulated-NPDU frame. Permitted only while
// StateConnected. A transient send failure is reported as (0, nil) so the
// caller can retry; a closed connection is reported as (0, *api.Error) with
// ErrorCodeClosed.
func (c *Connection) Send(data []byte) (int, *api.Error) {
	if c.state != StateConnected {
		return 0, api.NewError(api.ErrorClassCommunication, api.ErrorCodeInvalidArgument, "send is only permitted while connected")
	}
	buf := make([]byte, len(data)+bvlc.HeaderLen+8)
	n, eerr := bvlc.EncodeEncapsulatedNPDU(buf, c.nextMessageID(), nil, nil, nil, nil, data)
	if eerr != nil {
		return 0, eerr
	}
	ok, serr := c.transport.send(c.handle, buf[:n])
	if serr != nil {
		c.forceClose()
		return 0, api.NewError(api.ErrorClassCommunication, api.ErrorCodeClosed, "connection closed during send")
	}
	if !ok {
		return 0, nil
	}
	return len(data), nil
}

// Recv blocks up to timeout for the next application-visible NPDU payload,
// consuming service frames (heartbeats, disconnect handshake, results)
// internally. A zero-length, nil-error return means timeout. A non-nil
// error means the connection closed.
func (c *Connection) Recv(caller stdcontext.Context, buf []byte, timeout time.Duration) (int, *api.Error) {
	deadline := time.Now().Add(timeout)
	raw := make([]byte, c.recvBufferSize())
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return 0, nil
		}
		if caller != nil {
			select {
			case <-caller.Done():
				return 0, nil
			default:
			}
		}
		n, rerr := c.transport.recv(c.handle, raw, remaining)
		if rerr != nil {
			c.forceClose()
			return 0, api.NewError(api.ErrorClassCommunication, api.ErrorCodeClosed, "connection closed during recv")
		}
		if n == 0 {
			continue
		}
		if uint16(n) > c.ctx.config.MaxBVLCLen {
			continue // I6: oversized frame silently discarded, liveness untouched
		}
		msg, derr := bvlc.DecodeMessage(raw[:n])
		if derr != nil {
			c.ctx.recorder.CodecError(derr.Code.String())
			continue
		}
		c.resetLiveness()

		switch msg.Function {
		case bvlc.FunctionEncapsulatedNPDU:
			k := copy(buf, msg.NPDU)
			return k, nil

		case bvlc.FunctionHeartbeatRequest:
			reply := make([]byte, 16)
			rn, _ := bvlc.EncodeHeartbeatAck(reply, msg.MessageID, nil, nil)
			_, _ = c.transport.send(c.handle, reply[:rn])
			continue

		case bvlc.FunctionHeartbeatAck:
			if msg.MessageID == c.expectedHeartbeatID {
				c.heartbeatPending = false
			}
			continue

		case bvlc.FunctionDisconnectRequest:
			reply := make([]byte, 16)
			rn, _ := bvlc.EncodeDisconnectAck(reply, msg.MessageID, nil, nil)
			_, _ = c.transport.send(c.handle, reply[:rn])
			c.terminal()
			return 0, api.NewError(api.ErrorClassCommunication, api.ErrorCodeClosed, "peer requested disconnect")

		case bvlc.FunctionDisconnectAck:
			if c.state == StateDisconnecting && msg.MessageID == c.expectedDisconnectID {
				c.terminal()
				return 0, api.NewError(api.ErrorClassCommunication, api.ErrorCodeClosed, "disconnect acknowledged")
			}
			continue

		case bvlc.FunctionResult:
			if msg.Result != nil && c.state == StateDisconnecting &&
				msg.Result.OriginatingFunction == bvlc.FunctionDisconnectRequest && msg.MessageID == c.expectedDisconnectID {
				c.terminal()
				return 0, api.NewError(api.ErrorClassCommunication, api.ErrorCodeClosed, "disconnect nacked")
			}
			continue

		default:
			continue
		}
	}
}

// Disconnect initiates a graceful shutdown: Disconnect-Request is sent and
// the call blocks for Disconnect-Ack (or a NAK, or disconnect-timeout)
// before force-closing the transport and removing the connection from its
// Context's table.
func (c *Connection) Disconnect() *api.Error {
	if c.state != StateConnected {
		return api.NewError(api.ErrorClassCommunication, api.ErrorCodeInvalidArgument, "disconnect is only valid while connected")
	}
	msgID := c.nextMessageID()
	c.expectedDisconnectID = msgID
	buf := make([]byte, 16)
	n, eerr := bvlc.EncodeDisconnectRequest(buf, msgID, nil, nil)
	if eerr != nil {
		return eerr
	}
	c.state = StateDisconnecting
	if _, serr := c.transport.send(c.handle, buf[:n]); serr != nil {
		c.forceClose()
		return nil
	}

	_, _ = c.Recv(nil, make([]byte, c.recvBufferSize()), c.ctx.config.DisconnectTimeout)
	_ = c.transport.disconnect(c.handle)
	if c.state != StateIdle {
		c.terminal()
	}
	return nil
}

func (c *Connection) sendDisconnectRequest() *api.Error {
	buf := make([]byte, 16)
	n, eerr := bvlc.EncodeDisconnectRequest(buf, randomMessageID(), nil, nil)
	if eerr != nil {
		return eerr
	}
	_, serr := c.transport.send(c.handle, buf[:n])
	if serr != nil {
		return api.NewError(api.ErrorClassCommunication, api.ErrorCodeClosed, "disconnect request send failed")
	}
	return nil
}

// terminal removes c from its Context's table and marks it idle, without
// touching the transport handle (the caller decides whether to close it).
func (c *Connection) terminal() {
	c.ctx.mu.Lock()
	c.ctx.removeConnectionLocked(c)
	c.ctx.mu.Unlock()
	c.state = StateIdle
}

// forceClose closes the transport handle and removes c from the table,
// for paths where the peer can no longer be expected to respond.
func (c *Connection) forceClose() {
	_ = c.transport.disconnect(c.handle)
	c.terminal()
}
