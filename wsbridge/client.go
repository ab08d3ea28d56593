package wsbridge

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"github.com/momentics/bacnet-sc/scwsapi"
)

// Dialer is the concrete scwsapi.ClientTransport: it opens outbound
// TLS-over-WebSocket connections via gorilla/websocket.
type Dialer struct {
	HandshakeTimeout time.Duration
}

// NewDialer builds a Dialer with the given upgrade handshake timeout.
func NewDialer(handshakeTimeout time.Duration) *Dialer {
	return &Dialer{HandshakeTimeout: handshakeTimeout}
}

func (d *Dialer) Connect(proto scwsapi.Protocol, url string, certs scwsapi.TLSCertificates) (scwsapi.Handle, error) {
	tlsCfg, err := buildTLSConfig(certs, false)
	if err != nil {
		return nil, err
	}

	ws := &websocket.Dialer{
		TLSClientConfig:  tlsCfg,
		HandshakeTimeout: d.HandshakeTimeout,
		Subprotocols:     []string{subprotocolName(proto)},
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.HandshakeTimeout)
	defer cancel()

	conn, resp, err := ws.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return newWSConn(conn), nil
}

func (d *Dialer) Send(h scwsapi.Handle, data []byte) (bool, error) {
	return h.(*wsConn).send(data)
}

func (d *Dialer) Recv(h scwsapi.Handle, buf []byte, timeout time.Duration) (int, error) {
	return h.(*wsConn).recv(buf, timeout)
}

func (d *Dialer) Disconnect(h scwsapi.Handle) error {
	return h.(*wsConn).disconnect()
}

var _ scwsapi.ClientTransport = (*Dialer)(nil)
