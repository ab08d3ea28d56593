package wsbridge

import (
	"sync"
	"time"

	"github.com/eapache/queue"
)

// backlog is an unbounded FIFO of accepted-but-not-yet-Accept()ed connections
// for one subprotocol: a mutex-guarded queue paired with a notify channel
// so pop can block with a timeout instead of busy-polling.
type backlog struct {
	mu     sync.Mutex
	items  *queue.Queue
	notify chan struct{}
}

func newBacklog() *backlog {
	return &backlog{items: queue.New(), notify: make(chan struct{}, 1)}
}

func (b *backlog) push(h *wsConn) {
	b.mu.Lock()
	b.items.Add(h)
	b.mu.Unlock()
	select {
	case b.notify <- struct{}{}:
	default:
	}
}

func (b *backlog) pop(timeout time.Duration) (*wsConn, error) {
	deadline := time.Now().Add(timeout)
	for {
		b.mu.Lock()
		if b.items.Length() > 0 {
			h := b.items.Peek().(*wsConn)
			b.items.Remove()
			b.mu.Unlock()
			return h, nil
		}
		b.mu.Unlock()

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, ErrAcceptTimeout
		}
		select {
		case <-b.notify:
		case <-time.After(remaining):
			return nil, ErrAcceptTimeout
		}
	}
}
