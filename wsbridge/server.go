package wsbridge

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/momentics/bacnet-sc/scwsapi"
)

// ErrAcceptTimeout is returned by Hub.Accept when no connection arrives on
// the requested subprotocol before timeout elapses.
var ErrAcceptTimeout = errors.New("wsbridge: accept timeout")

// Hub is the concrete scwsapi.ServerTransport: a single net/http server
// that upgrades both the hub and direct subprotocols on one listen port and
// routes each accepted connection into the matching backlog.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	server  *http.Server
	backlog map[scwsapi.Protocol]*backlog
}

// NewHub constructs an idle Hub. Call Start to begin listening.
func NewHub() *Hub {
	return &Hub{
		backlog: map[scwsapi.Protocol]*backlog{
			scwsapi.ProtocolHub:    newBacklog(),
			scwsapi.ProtocolDirect: newBacklog(),
		},
	}
}

func (h *Hub) Start(proto scwsapi.Protocol, port uint16, certs scwsapi.TLSCertificates) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.server != nil {
		return nil // already listening; both subprotocols share one port
	}

	tlsCfg, err := buildTLSConfig(certs, true)
	if err != nil {
		return err
	}

	h.upgrader = websocket.Upgrader{
		Subprotocols:    []string{subprotocolHub, subprotocolDirect},
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", h.handleUpgrade)

	srv := &http.Server{
		Addr:      portAddr(port),
		Handler:   mux,
		TLSConfig: tlsCfg,
	}
	h.server = srv

	ln, err := newTLSListener(srv.Addr, tlsCfg)
	if err != nil {
		h.server = nil
		return err
	}
	go srv.Serve(ln)
	return nil
}

func (h *Hub) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	proto, err := protocolFromSubprotocol(conn.Subprotocol())
	if err != nil {
		conn.Close()
		return
	}

	h.mu.Lock()
	bl := h.backlog[proto]
	h.mu.Unlock()
	bl.push(newWSConn(conn))
}

func (h *Hub) Accept(proto scwsapi.Protocol, timeout time.Duration) (scwsapi.Handle, error) {
	h.mu.Lock()
	bl := h.backlog[proto]
	h.mu.Unlock()
	return bl.pop(timeout)
}

func (h *Hub) Send(proto scwsapi.Protocol, hdl scwsapi.Handle, data []byte) (bool, error) {
	return hdl.(*wsConn).send(data)
}

func (h *Hub) Recv(proto scwsapi.Protocol, hdl scwsapi.Handle, buf []byte, timeout time.Duration) (int, error) {
	return hdl.(*wsConn).recv(buf, timeout)
}

func (h *Hub) Disconnect(proto scwsapi.Protocol, hdl scwsapi.Handle) error {
	return hdl.(*wsConn).disconnect()
}

func (h *Hub) Stop() error {
	h.mu.Lock()
	srv := h.server
	h.server = nil
	h.mu.Unlock()
	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

var _ scwsapi.ServerTransport = (*Hub)(nil)
