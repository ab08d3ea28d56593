// File: scconn/context.go
// Context is the owner of one role's connection table, config, and
// transport. All table mutations happen under a single non-recursive
// sync.Mutex; code paths that must look the table up while already holding
// the lock call the unexported *Locked helpers instead of re-entering the
// exported API.
package scconn

import (
	"sync"
	"time"

	"github.com/momentics/bacnet-sc/api"
	"github.com/momentics/bacnet-sc/bvlc"
	"github.com/momentics/bacnet-sc/scmetrics"
	"github.com/momentics/bacnet-sc/scwsapi"
)

// Context owns one BACnet/SC connection table: either the initiator side
// (one outbound Connection at a time per Connect call) or the acceptor side
// (many inbound connections behind one listening ServerTransport).
type Context struct {
	config ContextConfig

	client scwsapi.ClientTransport
	server scwsapi.ServerTransport

	recorder scmetrics.Recorder

	mu      sync.Mutex
	head    *Connection
	tail    *Connection
	byVMAC  map[api.VMAC]*Connection
	byUUID  map[api.UUID]*Connection

	stop chan struct{}
}

// NewInitiatorContext creates a Context that dials out using client.
func NewInitiatorContext(cfg ContextConfig, client scwsapi.ClientTransport, recorder scmetrics.Recorder) (*Context, *api.Error) {
	cfg.Role = RoleInitiator
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newContext(cfg, client, nil, recorder), nil
}

// NewAcceptorContext creates a Context that listens using server.
func NewAcceptorContext(cfg ContextConfig, server scwsapi.ServerTransport, recorder scmetrics.Recorder) (*Context, *api.Error) {
	cfg.Role = RoleAcceptor
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newContext(cfg, nil, server, recorder), nil
}

func newContext(cfg ContextConfig, client scwsapi.ClientTransport, server scwsapi.ServerTransport, recorder scmetrics.Recorder) *Context {
	if recorder == nil {
		recorder = scmetrics.NoopRecorder{}
	}
	return &Context{
		config:   cfg,
		client:   client,
		server:   server,
		recorder: recorder,
		byVMAC:   make(map[api.VMAC]*Connection),
		byUUID:   make(map[api.UUID]*Connection),
		stop:     make(chan struct{}),
	}
}

func (ctx *Context) findByVMACLocked(v api.VMAC) *Connection { return ctx.byVMAC[v] }
func (ctx *Context) findByUUIDLocked(u api.UUID) *Connection { return ctx.byUUID[u] }

func (ctx *Context) addConnectionLocked(c *Connection) {
	c.ctx = ctx
	c.prev = ctx.tail
	c.next = nil
	if ctx.tail != nil {
		ctx.tail.next = c
	} else {
		ctx.head = c
	}
	ctx.tail = c
	ctx.byVMAC[c.peerVMAC] = c
	ctx.byUUID[c.peerUUID] = c
	ctx.recorder.SetConnectionCount(ctx.config.Role.String(), c.state.String(), 1)
}

func (ctx *Context) removeConnectionLocked(c *Connection) {
	if c.prev != nil {
		c.prev.next = c.next
	} else if ctx.head == c {
		ctx.head = c.next
	}
	if c.next != nil {
		c.next.prev = c.prev
	} else if ctx.tail == c {
		ctx.tail = c.prev
	}
	c.next, c.prev = nil, nil
	if ctx.byVMAC[c.peerVMAC] == c {
		delete(ctx.byVMAC, c.peerVMAC)
	}
	if ctx.byUUID[c.peerUUID] == c {
		delete(ctx.byUUID, c.peerUUID)
	}
	ctx.recorder.SetConnectionCount(ctx.config.Role.String(), c.state.String(), -1)
}

func (ctx *Context) replaceConnectionLocked(old, replacement *Connection) {
	replacement.ctx = ctx
	replacement.prev = old.prev
	replacement.next = old.next
	if old.prev != nil {
		old.prev.next = replacement
	} else if ctx.head == old {
		ctx.head = replacement
	}
	if old.next != nil {
		old.next.prev = replacement
	} else if ctx.tail == old {
		ctx.tail = replacement
	}
	old.next, old.prev = nil, nil
	delete(ctx.byVMAC, old.peerVMAC)
	delete(ctx.byUUID, old.peerUUID)
	ctx.byVMAC[replacement.peerVMAC] = replacement
	ctx.byUUID[replacement.peerUUID] = replacement
}

// snapshotLocked returns every connection currently in the table, in list
// order, for the maintenance tick to walk without holding the lock across
// per-connection I/O.
func (ctx *Context) snapshotLocked() []*Connection {
	var out []*Connection
	for c := ctx.head; c != nil; c = c.next {
		out = append(out, c)
	}
	return out
}

// Close tears the context down: every connection is sent a best-effort
// Disconnect-Request if connected, its transport handle closed, and the
// table cleared.
func (ctx *Context) Close() {
	ctx.mu.Lock()
	conns := ctx.snapshotLocked()
	ctx.head, ctx.tail = nil, nil
	ctx.byVMAC = make(map[api.VMAC]*Connection)
	ctx.byUUID = make(map[api.UUID]*Connection)
	ctx.mu.Unlock()

	close(ctx.stop)
	for _, c := range conns {
		if c.state == StateConnected {
			_ = c.sendDisconnectRequest()
		}
		_ = c.transport.disconnect(c.handle)
		c.state = StateIdle
	}
}

// Run drives the once-per-second maintenance tick until Close is called.
func (ctx *Context) Run() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.stop:
			return
		case <-ticker.C:
			ctx.maintenanceTick()
		}
	}
}

func encodeResultNack(msgID uint16, originating bvlc.FunctionCode, code uint16) []byte {
	buf := make([]byte, 64)
	n, _ := bvlc.EncodeResult(buf, msgID, nil, nil, nil, nil, originating, bvlc.ResultNack, uint16(api.ErrorClassCommunication), code, "")
	return buf[:n]
}
