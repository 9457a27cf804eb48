package relay

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrPeerClosed is returned by Send after the connection has been closed.
var ErrPeerClosed = errors.New("peer connection closed")

const writeTimeout = 10 * time.Second

// peer wraps one websocket connection with a write lock so the heartbeat
// loop and concurrent generation tasks never interleave frames.
type peer struct {
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
}

func newPeer(conn *websocket.Conn) *peer {
	return &peer{conn: conn}
}

// Send writes one JSON frame. Thread-safe.
func (p *peer) Send(frame any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPeerClosed
	}

	p.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return p.conn.WriteJSON(frame)
}

// Close closes the underlying connection once; later calls are no-ops.
func (p *peer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.conn.Close()
}
