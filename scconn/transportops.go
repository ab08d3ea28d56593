// File: scconn/transportops.go
// Adapts scwsapi.ClientTransport/ServerTransport, whose Send/Recv/Disconnect
// signatures differ only in whether a Protocol selector is threaded through,
// to the single shape a Connection needs regardless of which side opened it.
package scconn

import (
	"time"

	"github.com/momentics/bacnet-sc/scwsapi"
)

type transportOps interface {
	send(h scwsapi.Handle, data []byte) (bool, error)
	recv(h scwsapi.Handle, buf []byte, timeout time.Duration) (int, error)
	disconnect(h scwsapi.Handle) error
}

type clientOps struct {
	t scwsapi.ClientTransport
}

func (c clientOps) send(h scwsapi.Handle, data []byte) (bool, error) {
	return c.t.Send(h, data)
}

func (c clientOps) recv(h scwsapi.Handle, buf []byte, timeout time.Duration) (int, error) {
	return c.t.Recv(h, buf, timeout)
}

func (c clientOps) disconnect(h scwsapi.Handle) error {
	return c.t.Disconnect(h)
}

type serverOps struct {
	t     scwsapi.ServerTransport
	proto scwsapi.Protocol
}

func (s serverOps) send(h scwsapi.Handle, data []byte) (bool, error) {
	return s.t.Send(s.proto, h, data)
}

func (s serverOps) recv(h scwsapi.Handle, buf []byte, timeout time.Duration) (int, error) {
	return s.t.Recv(s.proto, h, buf, timeout)
}

func (s serverOps) disconnect(h scwsapi.Handle) error {
	return s.t.Disconnect(s.proto, h)
}
