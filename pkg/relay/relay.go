// Package relay streams annotated frames to remote viewers over TCP and
// routes the key names they send back.
package relay

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/teslashibe/go-dronetrack/pkg/camera"
	"github.com/teslashibe/go-dronetrack/pkg/framing"
	"github.com/teslashibe/go-dronetrack/pkg/render"
)

const (
	// DefaultAddr is the relay listen address.
	DefaultAddr = ":9999"

	// maxKeySize bounds inbound frames; clients only send key names
	maxKeySize = 256

	// sendBuffer is the per-client frame queue
	sendBuffer = 2

	writeWait = 5 * time.Second
)

// KeyHandler routes a key name.
type KeyHandler interface {
	HandleKey(name string) bool
}

// Stats counts relay traffic.
type Stats struct {
	Clients       int    `json:"clients"`
	FramesSent    uint64 `json:"frames_sent"`
	FramesDropped uint64 `json:"frames_dropped"`
	Keys          uint64 `json:"keys"`
}

// Server accepts viewers and fans frames out to them. Publish never blocks:
// a client that falls behind misses frames.
type Server struct {
	ln     net.Listener
	keys   KeyHandler
	logger *slog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
	wg      sync.WaitGroup

	sent    atomic.Uint64
	dropped atomic.Uint64
	keyed   atomic.Uint64
}

type client struct {
	conn net.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
		c.conn.Close()
	})
}

// Listen opens a TCP listener on addr.
func Listen(addr string, keys KeyHandler, logger *slog.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewServer(ln, keys, logger), nil
}

// NewServer serves on an existing listener. keys may be nil for a
// view-only relay.
func NewServer(ln net.Listener, keys KeyHandler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		ln:      ln,
		keys:    keys,
		logger:  logger.With("component", "relay"),
		clients: make(map[*client]struct{}),
	}
}

// Addr returns the listen address.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Serve accepts clients until ctx is cancelled or Close is called.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.Close()
	}()

	s.logger.Info("relay listening", "addr", s.ln.Addr().String())
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if s.isClosed() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		s.add(conn)
	}
}

func (s *Server) add(conn net.Conn) {
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.clients[c] = struct{}{}
	count := len(s.clients)
	s.wg.Add(2)
	s.mu.Unlock()

	s.logger.Info("viewer connected", "remote", conn.RemoteAddr().String(), "clients", count)
	go s.writeLoop(c)
	go s.readLoop(c)
}

func (s *Server) remove(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	count := len(s.clients)
	s.mu.Unlock()

	c.close()
	if ok {
		s.logger.Info("viewer disconnected", "remote", c.conn.RemoteAddr().String(), "clients", count)
	}
}

func (s *Server) writeLoop(c *client) {
	defer s.wg.Done()
	defer s.remove(c)

	for frame := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := framing.WriteFrame(c.conn, frame); err != nil {
			return
		}
		s.sent.Add(1)
	}
}

func (s *Server) readLoop(c *client) {
	defer s.wg.Done()
	defer s.remove(c)

	for {
		payload, err := framing.ReadFrameLimit(c.conn, maxKeySize)
		if err != nil {
			if errors.Is(err, framing.ErrFrameTooLarge) {
				s.logger.Warn("oversized key frame, closing viewer", "error", err)
			}
			return
		}
		key := strings.TrimSpace(string(payload))
		s.keyed.Add(1)
		if s.keys == nil || !s.keys.HandleKey(key) {
			s.logger.Debug("ignored key", "key", key)
		}
	}
}

// Publish queues frame for every client. It implements render.Sink.
func (s *Server) Publish(frame camera.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- frame.JPEG:
		default:
			s.dropped.Add(1)
		}
	}
}

// Stats returns traffic counters.
func (s *Server) Stats() Stats {
	s.mu.Lock()
	n := len(s.clients)
	s.mu.Unlock()
	return Stats{
		Clients:       n,
		FramesSent:    s.sent.Load(),
		FramesDropped: s.dropped.Load(),
		Keys:          s.keyed.Load(),
	}
}

// Close stops accepting and disconnects every client.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	err := s.ln.Close()
	for _, c := range clients {
		c.conn.Close()
	}
	s.wg.Wait()
	return err
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

var _ render.Sink = (*Server)(nil)
