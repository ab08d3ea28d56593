// File: scconn/maintenance.go
// The once-per-second maintenance tick: heartbeat scheduling and
// liveness-timeout enforcement for every connected Connection.
package scconn

import "github.com/momentics/bacnet-sc/bvlc"

func (ctx *Context) maintenanceTick() {
	ctx.mu.Lock()
	conns := ctx.snapshotLocked()
	ctx.mu.Unlock()

	heartbeatLimit := int(ctx.config.HeartbeatTimeout.Seconds())
	if heartbeatLimit <= 0 {
		return
	}

	for _, c := range conns {
		if c.state != StateConnected {
			continue
		}
		c.secondsSinceTraffic++

		closeLimit := 2 * heartbeatLimit
		if c.heartbeatPending {
			closeLimit = heartbeatLimit
		}
		if c.secondsSinceTraffic >= closeLimit {
			c.forceClose()
			ctx.recorder.HeartbeatTimeout()
			continue
		}

		if ctx.config.Role == RoleInitiator && !c.heartbeatPending && c.secondsSinceTraffic >= heartbeatLimit {
			c.sendHeartbeat()
		}
	}
}

func (c *Connection) sendHeartbeat() {
	msgID := c.nextMessageID()
	c.expectedHeartbeatID = msgID
	buf := make([]byte, 16)
	n, eerr := bvlc.EncodeHeartbeatRequest(buf, msgID, nil, nil)
	if eerr != nil {
		return
	}
	if _, serr := c.transport.send(c.handle, buf[:n]); serr == nil {
		c.heartbeatPending = true
		c.secondsSinceTraffic = 0
		c.ctx.recorder.HeartbeatSent()
	}
}
