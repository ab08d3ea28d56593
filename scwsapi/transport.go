// File: scwsapi/transport.go
// Package scwsapi defines the WebSocket Transport Facade the connection
// engine calls to open, read, write, and close TLS-capable WebSocket
// connections. The engine treats each connection as an opaque Handle plus
// a protocol selector; the facade is implemented by an external library
// (see package wsbridge for the one shipped with this module).
//
// Method names and semantics mirror the bws_cli/bws_srv tables verbatim.
package scwsapi

import "time"

// Protocol selects one of the two BACnet/SC WebSocket subprotocols a node
// can speak.
type Protocol int

const (
	// ProtocolHub is "hub.bsc.bacnet.org", spoken to/from a hub.
	ProtocolHub Protocol = iota
	// ProtocolDirect is "dc.bsc.bacnet.org", spoken peer-to-peer.
	ProtocolDirect
)

func (p Protocol) String() string {
	if p == ProtocolDirect {
		return "direct"
	}
	return "hub"
}

// Handle is an opaque reference to one open WebSocket connection, minted
// and interpreted only by the Transport implementation that issued it.
type Handle any

// TLSCertificates bundles the opaque byte slices a Transport needs to
// establish or accept a TLS connection: a CA chain for verifying the peer,
// this node's certificate chain, and its private key. PEM-encoded bytes
// are accepted as-is; any NUL-termination a particular TLS stack needs is
// that stack's concern, not this facade's.
type TLSCertificates struct {
	CAChain  []byte
	CertPair []byte // concatenated leaf+intermediate certificate chain, PEM
	Key      []byte // private key matching CertPair's leaf certificate, PEM
}

// ClientTransport is the initiator-side facade (bws_cli).
type ClientTransport interface {
	// Connect dials url over TLS using proto and the given certificates,
	// returning an opaque Handle on success.
	Connect(proto Protocol, url string, certs TLSCertificates) (Handle, error)

	// Send writes bytes on h. ok=false with a nil error means a
	// transient, non-fatal send failure (caller may retry); a non-nil
	// error means the connection is closed.
	Send(h Handle, data []byte) (ok bool, err error)

	// Recv blocks up to timeout for one message, returning the number of
	// bytes copied into buf. n==0, err==nil means a timeout.
	Recv(h Handle, buf []byte, timeout time.Duration) (n int, err error)

	// Disconnect closes h.
	Disconnect(h Handle) error
}

// ServerTransport is the acceptor-side facade (bws_srv). One
// ServerTransport instance binds both subprotocols on a single listen
// port and dispatches by proto.
type ServerTransport interface {
	// Start begins listening on port with the given certificates.
	Start(proto Protocol, port uint16, certs TLSCertificates) error

	// Accept blocks up to timeout for the next inbound connection on
	// proto, returning an opaque Handle on success. n.b. a timeout is
	// reported as (nil, err) with an implementation-defined error; see
	// wsbridge.ErrAcceptTimeout for the concrete one.
	Accept(proto Protocol, timeout time.Duration) (Handle, error)

	// Send writes bytes on h under proto.
	Send(proto Protocol, h Handle, data []byte) (ok bool, err error)

	// Recv blocks up to timeout for one message on h under proto.
	Recv(proto Protocol, h Handle, buf []byte, timeout time.Duration) (n int, err error)

	// Disconnect closes h under proto.
	Disconnect(proto Protocol, h Handle) error

	// Stop unblocks every pending Accept/Recv call and releases the
	// listen port.
	Stop() error
}
