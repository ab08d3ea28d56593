// File: scconn/handshake.go
// Connect (initiator) and Accept (acceptor) drive a Connection from idle
// through the handshake states to a fully negotiated connection.
package scconn

import (
	"time"

	"github.com/momentics/bacnet-sc/api"
	"github.com/momentics/bacnet-sc/bvlc"
)

// Connect dials url, performs the Connect-Request/Connect-Accept handshake,
// and returns a StateConnected Connection on success. Only valid on an
// initiator Context.
func (ctx *Context) Connect(url string) (*Connection, *api.Error) {
	if ctx.client == nil {
		return nil, api.NewError(api.ErrorClassCommunication, api.ErrorCodeInvalidArgument, "connect requires an initiator context")
	}
	handle, err := ctx.client.Connect(ctx.config.Protocol, url, ctx.config.Certificates)
	if err != nil {
		return nil, api.NewError(api.ErrorClassCommunication, api.ErrorCodeClosed, "websocket open failed").WithContext("cause", err.Error())
	}

	c := &Connection{ctx: ctx, transport: clientOps{ctx.client}, handle: handle, role: RoleInitiator, state: StateAwaitingWebSocket}
	msgID := randomMessageID()
	c.expectedConnectAcceptID = msgID
	c.nextOutgoingID = msgID

	buf := make([]byte, 64)
	n, eerr := bvlc.EncodeConnectRequest(buf, msgID, nil, nil, ctx.config.LocalVMAC, ctx.config.LocalUUID, ctx.config.MaxBVLCLen, ctx.config.MaxNPDULen)
	if eerr != nil {
		_ = c.transport.disconnect(handle)
		return nil, eerr
	}
	if ok, serr := c.transport.send(handle, buf[:n]); serr != nil || !ok {
		_ = c.transport.disconnect(handle)
		return nil, api.NewError(api.ErrorClassCommunication, api.ErrorCodeClosed, "connect-request send failed")
	}
	c.state = StateAwaitingAccept

	deadline := time.Now().Add(ctx.config.ConnectTimeout)
	raw := make([]byte, c.recvBufferSize())
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			_ = c.transport.disconnect(handle)
			return nil, api.NewError(api.ErrorClassCommunication, api.ErrorCodeTimeout, "no connect-accept within connect-timeout")
		}
		rn, rerr := c.transport.recv(handle, raw, remaining)
		if rerr != nil {
			_ = c.transport.disconnect(handle)
			return nil, api.NewError(api.ErrorClassCommunication, api.ErrorCodeClosed, "connection closed awaiting connect-accept")
		}
		if rn == 0 {
			continue
		}
		msg, derr := bvlc.DecodeMessage(raw[:rn])
		if derr != nil {
			ctx.recorder.CodecError(derr.Code.String())
			continue
		}

		if msg.Function == bvlc.FunctionConnectAccept && msg.MessageID == c.expectedConnectAcceptID && msg.ConnectAccept != nil {
			ca := msg.ConnectAccept
			c.peerVMAC = ca.VMAC
			c.peerUUID = ca.UUID
			c.remoteMaxBVLC = ca.MaxBVLCLen
			c.remoteMaxNPDU = ca.MaxNPDULen
			c.resetLiveness()
			c.state = StateConnected
			ctx.mu.Lock()
			ctx.addConnectionLocked(c)
			ctx.mu.Unlock()
			return c, nil
		}

		if msg.Function == bvlc.FunctionResult && msg.Result != nil &&
			msg.Result.OriginatingFunction == bvlc.FunctionConnectRequest && msg.MessageID == c.expectedConnectAcceptID {
			_ = c.transport.disconnect(handle)
			if msg.Result.ErrorCode == uint16(api.ErrorCodeNodeDuplicateVMAC) {
				return nil, api.NewError(api.ErrorClassCommunication, api.ErrorCodeNodeDuplicateVMAC, "peer reports duplicate vmac; caller should retry with a new local vmac")
			}
			return nil, api.NewError(api.ErrorClassCommunication, api.ErrorCode(msg.Result.ErrorCode), "connect-request rejected")
		}

		// Any other reply (Disconnect-Request/Ack, mismatched id, ...) is
		// a protocol error in awaiting-accept: close and fail.
		_ = c.transport.disconnect(handle)
		return nil, api.NewError(api.ErrorClassCommunication, api.ErrorCodeUnexpectedData, "unexpected message while awaiting connect-accept")
	}
}

// Accept blocks up to timeout for the next inbound WebSocket connection,
// performs the Connect-Request handshake including identity arbitration,
// and returns a StateConnected Connection on success. Only valid on an
// acceptor Context.
func (ctx *Context) Accept(timeout time.Duration) (*Connection, *api.Error) {
	if ctx.server == nil {
		return nil, api.NewError(api.ErrorClassCommunication, api.ErrorCodeInvalidArgument, "accept requires an acceptor context")
	}
	handle, err := ctx.server.Accept(ctx.config.Protocol, timeout)
	if err != nil {
		return nil, api.NewError(api.ErrorClassCommunication, api.ErrorCodeTimeout, "no inbound websocket connection").WithContext("cause", err.Error())
	}

	c := &Connection{ctx: ctx, transport: serverOps{ctx.server, ctx.config.Protocol}, handle: handle, role: RoleAcceptor, state: StateAwaitingRequest}
	c.nextOutgoingID = randomMessageID()

	deadline := time.Now().Add(ctx.config.ConnectTimeout)
	raw := make([]byte, c.recvBufferSize())
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			_ = c.transport.disconnect(handle)
			return nil, api.NewError(api.ErrorClassCommunication, api.ErrorCodeTimeout, "no connect-request within connect-timeout")
		}
		rn, rerr := c.transport.recv(handle, raw, remaining)
		if rerr != nil {
			_ = c.transport.disconnect(handle)
			return nil, api.NewError(api.ErrorClassCommunication, api.ErrorCodeClosed, "connection closed awaiting connect-request")
		}
		if rn == 0 {
			continue
		}
		msg, derr := bvlc.DecodeMessage(raw[:rn])
		if derr != nil {
			ctx.recorder.CodecError(derr.Code.String())
			continue
		}
		if msg.Function != bvlc.FunctionConnectRequest || msg.ConnectRequest == nil {
			continue
		}
		cr := msg.ConnectRequest

		ctx.mu.Lock()
		decision, existing := ctx.arbitrateLocked(cr.VMAC, cr.UUID)
		switch decision {
		case decisionDuplicateUUIDReplace:
			c.peerVMAC, c.peerUUID = cr.VMAC, cr.UUID
			c.remoteMaxBVLC, c.remoteMaxNPDU = cr.MaxBVLCLen, cr.MaxNPDULen
			c.resetLiveness()
			c.state = StateConnected
			ctx.replaceConnectionLocked(existing, c)
			existing.state = StateIdle
			ctx.mu.Unlock()

			ab := make([]byte, 64)
			n, _ := bvlc.EncodeConnectAccept(ab, msg.MessageID, nil, nil, ctx.config.LocalVMAC, ctx.config.LocalUUID, ctx.config.MaxBVLCLen, ctx.config.MaxNPDULen)
			_, _ = c.transport.send(handle, ab[:n])
			_ = existing.sendDisconnectRequest()
			_ = existing.transport.disconnect(existing.handle)
			return c, nil

		case decisionDuplicateVMACReject:
			ctx.mu.Unlock()
			ctx.recorder.HandshakeRejected("duplicate-vmac")
			reject := encodeResultNack(msg.MessageID, bvlc.FunctionConnectRequest, uint16(api.ErrorCodeNodeDuplicateVMAC))
			_, _ = c.transport.send(handle, reject)
			_ = c.transport.disconnect(handle)
			return nil, api.NewError(api.ErrorClassCommunication, api.ErrorCodeNodeDuplicateVMAC, "peer vmac collides with an existing connection under a different uuid")

		case decisionLocalIdentityReject:
			ctx.mu.Unlock()
			ctx.recorder.HandshakeRejected("local-identity")
			reject := encodeResultNack(msg.MessageID, bvlc.FunctionConnectRequest, uint16(api.ErrorCodeNodeDuplicateVMAC))
			_, _ = c.transport.send(handle, reject)
			_ = c.transport.disconnect(handle)
			return nil, api.NewError(api.ErrorClassCommunication, api.ErrorCodeNodeDuplicateVMAC, "peer claims our local vmac under a different uuid")

		default: // decisionAccept
			c.peerVMAC, c.peerUUID = cr.VMAC, cr.UUID
			c.remoteMaxBVLC, c.remoteMaxNPDU = cr.MaxBVLCLen, cr.MaxNPDULen
			c.resetLiveness()
			c.state = StateConnected
			ctx.addConnectionLocked(c)
			ctx.mu.Unlock()

			ab := make([]byte, 64)
			n, _ := bvlc.EncodeConnectAccept(ab, msg.MessageID, nil, nil, ctx.config.LocalVMAC, ctx.config.LocalUUID, ctx.config.MaxBVLCLen, ctx.config.MaxNPDULen)
			_, _ = c.transport.send(handle, ab[:n])
			return c, nil
		}
	}
}
