// Package remote connects to a running flight from another machine to
// watch the annotated video and send key presses.
package remote

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/teslashibe/go-dronetrack/pkg/framing"
)

// ErrClosed is returned by SendKey after Close.
var ErrClosed = errors.New("remote: connection closed")

// frameBuffer is the number of undelivered frames kept per connection
const frameBuffer = 4

// Conn is a viewer connection.
type Conn interface {
	// SendKey sends a key name such as "t" or "space", or a pad event
	// such as "button:3" or "axis:1=-1".
	SendKey(name string) error
	// Frames delivers JPEG frames. It is closed when the connection ends.
	Frames() <-chan []byte
	Close() error
}

// frameQueue delivers frames without blocking the reader; when the
// consumer lags the oldest queued frame is discarded.
type frameQueue struct {
	ch chan []byte
}

func newFrameQueue() frameQueue {
	return frameQueue{ch: make(chan []byte, frameBuffer)}
}

func (q frameQueue) push(frame []byte) {
	for {
		select {
		case q.ch <- frame:
			return
		default:
		}
		select {
		case <-q.ch:
		default:
		}
	}
}

// TCPClient talks to the relay.
type TCPClient struct {
	conn   net.Conn
	frames frameQueue
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// DialTCP connects to a relay at addr.
func DialTCP(ctx context.Context, addr string, logger *slog.Logger) (*TCPClient, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	c := &TCPClient{conn: conn, frames: newFrameQueue(), logger: logger}
	go c.readLoop()
	return c, nil
}

func (c *TCPClient) readLoop() {
	defer close(c.frames.ch)
	for {
		frame, err := framing.ReadFrame(c.conn)
		if err != nil {
			if !c.isClosed() {
				c.logger.Info("relay connection ended", "error", err)
			}
			return
		}
		c.frames.push(frame)
	}
}

// SendKey implements Conn.
func (c *TCPClient) SendKey(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return framing.WriteFrame(c.conn, []byte(name))
}

// Frames implements Conn.
func (c *TCPClient) Frames() <-chan []byte {
	return c.frames.ch
}

// Close implements Conn.
func (c *TCPClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

func (c *TCPClient) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// WSClient talks to the dashboard's /ws/control socket.
type WSClient struct {
	conn   *websocket.Conn
	frames frameQueue
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// DialWS connects to a dashboard websocket, e.g. ws://host:8181/ws/control.
func DialWS(ctx context.Context, url string, logger *slog.Logger) (*WSClient, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	c := &WSClient{conn: conn, frames: newFrameQueue(), logger: logger}
	go c.readLoop()
	return c, nil
}

func (c *WSClient) readLoop() {
	defer close(c.frames.ch)
	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			if !c.isClosed() && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				c.logger.Info("dashboard connection ended", "error", err)
			}
			return
		}
		if kind == websocket.BinaryMessage {
			c.frames.push(data)
		}
	}
}

// SendKey implements Conn.
func (c *WSClient) SendKey(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return c.conn.WriteMessage(websocket.TextMessage, []byte(name))
}

// Frames implements Conn.
func (c *WSClient) Frames() <-chan []byte {
	return c.frames.ch
}

// Close implements Conn.
func (c *WSClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}

func (c *WSClient) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

var (
	_ Conn = (*TCPClient)(nil)
	_ Conn = (*WSClient)(nil)
)
