// Package wsbridge is the concrete scwsapi.ClientTransport/ServerTransport
// implementation over github.com/gorilla/websocket: RFC 6455 framing,
// masking, and the HTTP Upgrade handshake are all delegated to that
// library rather than hand-rolled.
package wsbridge
