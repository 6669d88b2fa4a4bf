package remote

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teslashibe/go-dronetrack/pkg/framing"
)

func nextFrame(t *testing.T, c Conn) []byte {
	t.Helper()
	select {
	case f, ok := <-c.Frames():
		require.True(t, ok, "frames channel closed")
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return nil
	}
}

func TestTCPClient(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	keys := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		framing.WriteFrame(conn, []byte("jpeg-1"))
		key, err := framing.ReadFrame(conn)
		if err == nil {
			keys <- string(key)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := DialTCP(ctx, ln.Addr().String(), nil)
	require.NoError(t, err)

	assert.Equal(t, "jpeg-1", string(nextFrame(t, c)))
	require.NoError(t, c.SendKey("space"))

	select {
	case k := <-keys:
		assert.Equal(t, "space", k)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not receive key")
	}

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.SendKey("l"), ErrClosed)

	// The frames channel closes once the reader exits
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-c.Frames():
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 5*time.Millisecond)
}

func TestTCPClient_DialError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	_, err = DialTCP(context.Background(), addr, nil)
	assert.Error(t, err)
}

func TestWSClient(t *testing.T) {
	upgrader := websocket.Upgrader{}
	keys := make(chan string, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte(`{"tracking":true}`))
		conn.WriteMessage(websocket.BinaryMessage, []byte("jpeg-2"))
		_, msg, err := conn.ReadMessage()
		if err == nil {
			keys <- string(msg)
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/control"
	c, err := DialWS(context.Background(), url, nil)
	require.NoError(t, err)
	defer c.Close()

	// Text messages are not frames
	assert.Equal(t, "jpeg-2", string(nextFrame(t, c)))

	require.NoError(t, c.SendKey("t"))
	select {
	case k := <-keys:
		assert.Equal(t, "t", k)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not receive key")
	}

	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.SendKey("t"), ErrClosed)
}

func TestFrameQueue_DropsOldest(t *testing.T) {
	q := newFrameQueue()
	for i := 0; i < frameBuffer+3; i++ {
		q.push([]byte{byte(i)})
	}
	assert.Len(t, q.ch, frameBuffer)
	assert.Equal(t, []byte{3}, <-q.ch)
}
