package wsbridge

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrClosed is returned by Send/Recv once a wsConn's Disconnect has run.
var ErrClosed = errors.New("wsbridge: connection closed")

// wsConn is the scwsapi.Handle value both the client and server sides hand
// back. gorilla/websocket allows at most one concurrent reader and one
// concurrent writer per *websocket.Conn; writeMu serializes the writer side
// (Send calls and the Disconnect close handshake), while the reader side is
// left unsynchronized since the connection engine never issues concurrent
// Recv calls against the same handle.
type wsConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	closed  chan struct{}
	once    sync.Once
}

func newWSConn(c *websocket.Conn) *wsConn {
	return &wsConn{conn: c, closed: make(chan struct{})}
}

func (w *wsConn) send(data []byte) (bool, error) {
	select {
	case <-w.closed:
		return false, ErrClosed
	default:
	}

	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	w.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	err := w.conn.WriteMessage(websocket.BinaryMessage, data)
	if err == nil {
		return true, nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return false, nil
	}
	w.markClosed()
	return false, err
}

func (w *wsConn) recv(buf []byte, timeout time.Duration) (int, error) {
	select {
	case <-w.closed:
		return 0, ErrClosed
	default:
	}

	w.conn.SetReadDeadline(time.Now().Add(timeout))
	_, data, err := w.conn.ReadMessage()
	if err == nil {
		return copy(buf, data), nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return 0, nil
	}
	w.markClosed()
	return 0, ErrClosed
}

func (w *wsConn) disconnect() error {
	w.writeMu.Lock()
	_ = w.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	w.writeMu.Unlock()
	w.markClosed()
	return w.conn.Close()
}

func (w *wsConn) markClosed() {
	w.once.Do(func() { close(w.closed) })
}
