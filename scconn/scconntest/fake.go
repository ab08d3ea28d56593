// Package scconntest provides an in-memory scwsapi.ClientTransport/
// ServerTransport pair for deterministic, fast state-machine tests, in
// place of real TLS sockets.
package scconntest

import (
	"errors"
	"sync"
	"time"

	"github.com/momentics/bacnet-sc/scwsapi"
)

var (
	// ErrClosed is returned by Send/Recv once Disconnect has been called on
	// either end of a link.
	ErrClosed = errors.New("scconntest: link closed")
	// ErrAcceptTimeout is returned by ServerTransport.Accept when no dial
	// arrives within the requested timeout.
	ErrAcceptTimeout = errors.New("scconntest: accept timeout")
	// ErrQueueFull is returned by ClientTransport.Connect when the
	// destination Broker's accept queue for proto is saturated.
	ErrQueueFull = errors.New("scconntest: accept queue full")
)

type link struct {
	c2s       chan []byte
	s2c       chan []byte
	closeCh   chan struct{}
	closeOnce sync.Once
}

func newLink() (client, server *linkEnd) {
	l := &link{c2s: make(chan []byte, 16), s2c: make(chan []byte, 16), closeCh: make(chan struct{})}
	return &linkEnd{l: l, out: l.c2s, in: l.s2c}, &linkEnd{l: l, out: l.s2c, in: l.c2s}
}

// linkEnd is the Handle value both ClientTransport and ServerTransport hand
// back; it satisfies scwsapi.Handle (any).
type linkEnd struct {
	l   *link
	out chan []byte
	in  chan []byte
}

func (e *linkEnd) send(data []byte) (bool, error) {
	cp := append([]byte(nil), data...)
	select {
	case <-e.l.closeCh:
		return false, ErrClosed
	default:
	}
	select {
	case e.out <- cp:
		return true, nil
	case <-e.l.closeCh:
		return false, ErrClosed
	}
}

func (e *linkEnd) recv(buf []byte, timeout time.Duration) (int, error) {
	select {
	case m, ok := <-e.in:
		if !ok {
			return 0, ErrClosed
		}
		return copy(buf, m), nil
	case <-e.l.closeCh:
		return 0, ErrClosed
	case <-time.After(timeout):
		return 0, nil
	}
}

func (e *linkEnd) disconnect() error {
	e.l.closeOnce.Do(func() { close(e.l.closeCh) })
	return nil
}

// Broker routes ClientTransport.Connect calls to whichever
// ServerTransport.Accept call is waiting on the same Protocol, emulating a
// listening socket without any real network I/O.
type Broker struct {
	mu     sync.Mutex
	queues map[scwsapi.Protocol]chan *linkEnd
}

// NewBroker creates an empty Broker. Share one Broker between a
// ClientTransport and a ServerTransport to connect them.
func NewBroker() *Broker {
	return &Broker{queues: make(map[scwsapi.Protocol]chan *linkEnd)}
}

func (b *Broker) queueFor(proto scwsapi.Protocol) chan *linkEnd {
	b.mu.Lock()
	defer b.mu.Unlock()
	q, ok := b.queues[proto]
	if !ok {
		q = make(chan *linkEnd, 16)
		b.queues[proto] = q
	}
	return q
}

// ClientTransport is the scwsapi.ClientTransport fake.
type ClientTransport struct {
	Broker *Broker
}

func (c *ClientTransport) Connect(proto scwsapi.Protocol, url string, certs scwsapi.TLSCertificates) (scwsapi.Handle, error) {
	client, server := newLink()
	select {
	case c.Broker.queueFor(proto) <- server:
		return client, nil
	default:
		return nil, ErrQueueFull
	}
}

func (c *ClientTransport) Send(h scwsapi.Handle, data []byte) (bool, error) {
	return h.(*linkEnd).send(data)
}

func (c *ClientTransport) Recv(h scwsapi.Handle, buf []byte, timeout time.Duration) (int, error) {
	return h.(*linkEnd).recv(buf, timeout)
}

func (c *ClientTransport) Disconnect(h scwsapi.Handle) error {
	return h.(*linkEnd).disconnect()
}

// ServerTransport is the scwsapi.ServerTransport fake.
type ServerTransport struct {
	Broker *Broker
}

func (s *ServerTransport) Start(proto scwsapi.Protocol, port uint16, certs scwsapi.TLSCertificates) error {
	return nil
}

func (s *ServerTransport) Accept(proto scwsapi.Protocol, timeout time.Duration) (scwsapi.Handle, error) {
	select {
	case e := <-s.Broker.queueFor(proto):
		return e, nil
	case <-time.After(timeout):
		return nil, ErrAcceptTimeout
	}
}

func (s *ServerTransport) Send(proto scwsapi.Protocol, h scwsapi.Handle, data []byte) (bool, error) {
	return h.(*linkEnd).send(data)
}

func (s *ServerTransport) Recv(proto scwsapi.Protocol, h scwsapi.Handle, buf []byte, timeout time.Duration) (int, error) {
	return h.(*linkEnd).recv(buf, timeout)
}

func (s *ServerTransport) Disconnect(proto scwsapi.Protocol, h scwsapi.Handle) error {
	return h.(*linkEnd).disconnect()
}

func (s *ServerTransport) Stop() error { return nil }

var (
	_ scwsapi.ClientTransport = (*ClientTransport)(nil)
	_ scwsapi.ServerTransport = (*ServerTransport)(nil)
)
