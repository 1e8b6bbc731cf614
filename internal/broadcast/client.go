package broadcast

import (
	"io"
	"net"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/rs/zerolog"
)

const (
	// sendBuffer is the per-subscriber queue depth. A subscriber whose
	// buffer fills is considered backed up and gets dropped by the hub.
	sendBuffer = 256

	// maxInboundSize bounds frames coming from subscribers, who only
	// ever send keepalives.
	maxInboundSize = 4096
)

// Client adapts one upgraded WebSocket connection to the hub's
// Subscriber interface. A read pump watches for close and control
// frames while a write pump drains the bounded send buffer, so a stuck
// peer never blocks the publisher.
type Client struct {
	conn   net.Conn
	hub    *Hub
	logger zerolog.Logger

	mu     sync.Mutex
	closed bool
	send   chan []byte

	writeWait  time.Duration
	pongWait   time.Duration
	pingPeriod time.Duration
}

func NewClient(conn net.Conn, h *Hub, logger zerolog.Logger) *Client {
	return &Client{
		conn:       conn,
		hub:        h,
		logger:     logger,
		send:       make(chan []byte, sendBuffer),
		writeWait:  5 * time.Second,
		pongWait:   60 * time.Second,
		pingPeriod: 50 * time.Second,
	}
}

// Start launches both pumps. Register the client with the hub before
// calling it.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

func (c *Client) ID() string { return c.conn.RemoteAddr().String() }

// Enqueue queues a payload for delivery. It reports false once the
// buffer is full or the client is closed, and never blocks.
func (c *Client) Enqueue(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// Close shuts the send channel, which lets the write pump flush, send
// a close frame and release the connection. Safe to call repeatedly.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(c.pongWait))

	for {
		header, err := ws.ReadHeader(c.conn)
		if err != nil {
			return
		}

		if header.Length > maxInboundSize {
			c.logger.Warn().Int64("size", header.Length).Msg("Inbound frame too large")
			return
		}
		if !header.Fin {
			c.logger.Warn().Msg("Fragmented frames are not supported")
			return
		}

		payload := make([]byte, header.Length)
		if _, err := io.ReadFull(c.conn, payload); err != nil {
			return
		}
		if header.Masked {
			ws.Cipher(payload, header.Mask, 0)
		}

		switch header.OpCode {
		case ws.OpClose:
			return
		case ws.OpPong:
			c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
		default:
			// Subscribers are listen-only; inbound text is discarded.
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if !ok {
				c.conn.Write(ws.CompiledClose)
				return
			}
			if err := wsutil.WriteServerText(c.conn, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := wsutil.WriteServerMessage(c.conn, ws.OpPing, nil); err != nil {
				return
			}
		}
	}
}
