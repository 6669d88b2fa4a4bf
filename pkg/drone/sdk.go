package drone

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Default Tello SDK endpoints.
const (
	DefaultDroneAddr   = "192.168.10.1:8889"
	DefaultVideoURL    = "udp://0.0.0.0:11111"
	defaultReplyBuffer = 1518

	// maxStaleReplies caps the replies owed by timed-out requests.
	maxStaleReplies  = 4
	staleDrainWindow = 5 * time.Millisecond
)

// SDKClient drives the drone through the Tello SDK text protocol: one UDP
// datagram per command, one datagram reply ("ok", "error ..." or a value).
// Calls are serialized; the drone cannot handle overlapping commands.
type SDKClient struct {
	conn   net.Conn
	logger *slog.Logger

	mu    sync.Mutex
	stale int // replies still owed to timed-out requests
}

// DialSDK opens the control link and enters SDK mode.
func DialSDK(ctx context.Context, addr string, logger *slog.Logger) (*SDKClient, error) {
	if addr == "" {
		addr = DefaultDroneAddr
	}
	if logger == nil {
		logger = slog.Default()
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "udp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	c := &SDKClient{conn: conn, logger: logger}
	reply, err := c.send(ctx, "command", false)
	if err == nil {
		err = checkReply("command", reply)
	}
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("enter SDK mode: %w", err)
	}
	logger.Info("drone connected", "addr", addr)
	return c, nil
}

// newSDKClient wraps an existing connection without the SDK handshake.
func newSDKClient(conn net.Conn, logger *slog.Logger) *SDKClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &SDKClient{conn: conn, logger: logger}
}

// TakeOff starts the motors and climbs to hover height.
func (c *SDKClient) TakeOff(ctx context.Context) error {
	return c.do(ctx, Command{Kind: TakeOff})
}

// Land descends and stops the motors.
func (c *SDKClient) Land(ctx context.Context) error {
	return c.do(ctx, Command{Kind: Land})
}

// Move translates the drone by cm along dir.
func (c *SDKClient) Move(ctx context.Context, dir Direction, cm int) error {
	if !dir.IsMove() {
		return fmt.Errorf("drone: %v is not a move", dir)
	}
	return c.do(ctx, Move(dir, cm))
}

// Rotate yaws in place.
func (c *SDKClient) Rotate(ctx context.Context, clockwise bool, deg int) error {
	return c.do(ctx, Rotate(clockwise, deg))
}

// Flip performs a flip in the given direction.
func (c *SDKClient) Flip(ctx context.Context, dir FlipDirection) error {
	return c.do(ctx, FlipTo(dir))
}

// StreamOn enables the video stream on DefaultVideoURL.
func (c *SDKClient) StreamOn(ctx context.Context) error {
	reply, err := c.send(ctx, "streamon", false)
	if err != nil {
		return err
	}
	return checkReply("streamon", reply)
}

// Battery returns the remaining charge in percent.
func (c *SDKClient) Battery(ctx context.Context) (int, error) {
	reply, err := c.send(ctx, "battery?", true)
	if err != nil {
		return 0, err
	}
	pct, err := strconv.Atoi(strings.TrimSpace(reply))
	if err != nil {
		return 0, fmt.Errorf("drone: unexpected battery reply %q", reply)
	}
	return pct, nil
}

// Close releases the control link.
func (c *SDKClient) Close() error {
	return c.conn.Close()
}

func (c *SDKClient) do(ctx context.Context, cmd Command) error {
	text := cmd.String()
	reply, err := c.send(ctx, text, false)
	if err != nil {
		return fmt.Errorf("%s: %w", text, err)
	}
	return checkReply(text, reply)
}

func checkReply(request, reply string) error {
	reply = strings.TrimSpace(reply)
	if strings.EqualFold(reply, "ok") {
		return nil
	}
	return &CommandError{Request: request, Reply: reply}
}

// send writes one request and waits for its reply, honoring ctx.
//
// A request that times out still gets answered eventually. The number of
// such outstanding replies is kept in stale; they are drained before the
// next write and skipped when they arrive ahead of the reply being waited
// on. Replies come back in request order, so a command skips whatever
// arrives while replies are owed; a query only skips "ok" and "error".
func (c *SDKClient) send(ctx context.Context, text string, query bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	buf := make([]byte, defaultReplyBuffer)
	c.drainStale(buf)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(DefaultCommandTimeout)
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return "", err
	}

	// Unblock the read when ctx is cancelled before the deadline.
	stop := context.AfterFunc(ctx, func() {
		c.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	if _, err := c.conn.Write([]byte(text)); err != nil {
		return "", fmt.Errorf("write: %w", err)
	}

	skipped := 0
	for {
		n, err := c.conn.Read(buf)
		if err != nil {
			// If nothing was skipped our own reply is still owed. If
			// something was, it may have been ours, so don't count it twice.
			if skipped == 0 && c.stale < maxStaleReplies {
				c.stale++
			}
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return "", ErrTimeout
			}
			return "", fmt.Errorf("read: %w", err)
		}

		reply := string(buf[:n])
		if c.stale > 0 && (!query || isCommandReply(reply)) {
			c.stale--
			skipped++
			c.logger.Debug("sdk stale reply dropped", "request", text, "reply", strings.TrimSpace(reply))
			continue
		}
		c.logger.Debug("sdk exchange", "request", text, "reply", strings.TrimSpace(reply))
		return reply, nil
	}
}

// drainStale discards replies to earlier timed-out requests that are
// already queued on the socket.
func (c *SDKClient) drainStale(buf []byte) {
	for c.stale > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(staleDrainWindow)); err != nil {
			return
		}
		n, err := c.conn.Read(buf)
		if err != nil {
			return
		}
		c.stale--
		c.logger.Debug("sdk stale reply drained", "reply", strings.TrimSpace(string(buf[:n])))
	}
}

// isCommandReply reports whether reply answers a control command ("ok" or
// "error ...") rather than a read query.
func isCommandReply(reply string) bool {
	reply = strings.ToLower(strings.TrimSpace(reply))
	return reply == "ok" || strings.HasPrefix(reply, "error")
}

var _ Actuator = (*SDKClient)(nil)
