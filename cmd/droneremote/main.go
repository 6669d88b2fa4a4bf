// Drone Remote - watch a tracking flight and send keys from another machine
// Connects to the TCP relay or the dashboard websocket, reads key names
// from stdin and saves or counts the received frames.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/teslashibe/go-dronetrack/internal/config"
	"github.com/teslashibe/go-dronetrack/internal/httpc"
	"github.com/teslashibe/go-dronetrack/internal/log"
	"github.com/teslashibe/go-dronetrack/pkg/remote"
)

func main() {
	tcpAddr := flag.String("relay", "", "Relay address, e.g. 192.168.10.2:9999")
	wsURL := flag.String("ws", "", "Dashboard control socket, e.g. ws://host:8181/ws/control")
	saveDir := flag.String("save", "", "Directory to write received frames to (optional)")
	status := flag.String("status", "", "Print the dashboard status from this base URL and exit")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	log.Init(*logLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *status != "" {
		printStatus(ctx, *status)
		return
	}

	if *tcpAddr == "" && *wsURL == "" {
		*tcpAddr = config.RelayAddr()
		if strings.HasPrefix(*tcpAddr, ":") {
			*tcpAddr = "127.0.0.1" + *tcpAddr
		}
	}

	conn, err := dial(ctx, *tcpAddr, *wsURL)
	if err != nil {
		stdlog.Fatalf("❌ Connect failed: %v", err)
	}
	defer conn.Close()

	if *saveDir != "" {
		if err := os.MkdirAll(*saveDir, 0o755); err != nil {
			stdlog.Fatalf("❌ %v", err)
		}
	}

	fmt.Println("📡 Connected. Type a key name and Enter (t, space, l, w, a, s, d, esc)")
	fmt.Println("   Pad input: button:N or axis:N=v, e.g. button:3 (take off), axis:1=-1 (forward)")
	fmt.Println("   (Ctrl+C to exit)")

	go readKeys(ctx, conn)
	count := receiveFrames(ctx, conn, *saveDir)
	fmt.Printf("\n👋 Received %d frames\n", count)
}

func dial(ctx context.Context, tcpAddr, wsURL string) (remote.Conn, error) {
	dctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if wsURL != "" {
		fmt.Printf("🌐 Connecting to %s...\n", wsURL)
		return remote.DialWS(dctx, wsURL, log.L())
	}
	fmt.Printf("🔌 Connecting to relay %s...\n", tcpAddr)
	return remote.DialTCP(dctx, tcpAddr, log.L())
}

func readKeys(ctx context.Context, conn remote.Conn) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		key := strings.TrimSpace(scanner.Text())
		if key == "" {
			continue
		}
		if err := conn.SendKey(key); err != nil {
			fmt.Printf("⚠️  Send %q: %v\n", key, err)
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func receiveFrames(ctx context.Context, conn remote.Conn, saveDir string) int {
	count := 0
	report := time.NewTicker(5 * time.Second)
	defer report.Stop()

	for {
		select {
		case <-ctx.Done():
			return count
		case <-report.C:
			fmt.Printf("📹 %d frames\n", count)
		case frame, ok := <-conn.Frames():
			if !ok {
				return count
			}
			count++
			if saveDir == "" {
				continue
			}
			path := filepath.Join(saveDir, fmt.Sprintf("frame_%06d.jpg", count))
			if err := os.WriteFile(path, frame, 0o644); err != nil {
				fmt.Printf("⚠️  Save: %v\n", err)
			}
		}
	}
}

func printStatus(ctx context.Context, baseURL string) {
	var st struct {
		Tracking   bool   `json:"tracking"`
		Detections int    `json:"detections"`
		Battery    int    `json:"battery"`
		Model      string `json:"model"`
		Uptime     string `json:"uptime"`
	}
	url := strings.TrimSuffix(baseURL, "/") + "/api/status"
	if err := httpc.GetJSON(ctx, url, &st); err != nil {
		stdlog.Fatalf("❌ Status: %v", err)
	}
	fmt.Printf("🚁 tracking=%v detections=%d battery=%d%% model=%s uptime=%s\n",
		st.Tracking, st.Detections, st.Battery, st.Model, st.Uptime)
}
