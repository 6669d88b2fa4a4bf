// Package web provides a real-time dashboard for a tracking flight
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/teslashibe/go-dronetrack/pkg/camera"
	"github.com/teslashibe/go-dronetrack/pkg/drone"
	"github.com/teslashibe/go-dronetrack/pkg/hub"
	"github.com/teslashibe/go-dronetrack/pkg/render"
	"github.com/teslashibe/go-dronetrack/pkg/tracking"
)

// Status is the dashboard's view of the flight
type Status struct {
	Session    tracking.Session      `json:"session"`
	Tracking   bool                  `json:"tracking"`
	Detections int                   `json:"detections"`
	Battery    int                   `json:"battery"` // -1 if unknown
	Model      string                `json:"model"`
	Signal     tracking.ErrorSignal  `json:"signal"`
	Control    tracking.Stats        `json:"control"`
	Render     render.Stats          `json:"render"`
	Commands   drone.DispatcherStats `json:"commands"`
	Uptime     string                `json:"uptime"`
}

// Tracking is the tracking on/off switch.
type Tracking interface {
	Toggle() bool
	SetEnabled(enabled bool)
	Enabled() bool
}

// KeyHandler routes a key name, reporting whether it was recognized.
type KeyHandler interface {
	HandleKey(name string) bool
}

// Tuner exposes runtime tuning of the control loop.
type Tuner interface {
	TuningParams() tracking.TuningParams
	SetTuningParams(tracking.TuningParams) error
}

// Options wires the server to the rest of the flight.
type Options struct {
	Port     string
	Status   func() Status
	Tracking Tracking
	Keys     KeyHandler
	Tuner    Tuner      // Optional
	Logs     *LogBuffer // Optional; shared with a LogHandler
	Logger   *slog.Logger
}

// Server is the web dashboard server
type Server struct {
	app    *fiber.App
	opts   Options
	logger *slog.Logger

	logs *LogBuffer

	// Hubs for websocket broadcast
	statusHub  *hub.Hub
	cameraHub  *hub.Hub
	controlHub *hub.Hub

	started sync.Once
}

// NewServer creates a new web dashboard server
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Logs == nil {
		opts.Logs = NewLogBuffer(maxLogs)
	}
	s := &Server{
		opts:       opts,
		logger:     logger,
		logs:       opts.Logs,
		statusHub:  hub.New("status", logger),
		cameraHub:  hub.New("camera", logger),
		controlHub: hub.New("control", logger),
	}

	// Send the current status as soon as a status client connects
	s.statusHub.OnConnect = func(c *hub.Client) {
		if data, err := jsonStatus(s.status()); err == nil {
			c.Send(hub.NewJSONMessage(data))
		}
	}
	// Control clients send key names
	s.controlHub.OnMessage = func(_ *hub.Client, msg hub.Message) {
		s.handleKey(msg.Text(), "ws")
	}

	app := fiber.New(fiber.Config{
		AppName:               "Drone Tracking Dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Post("/tracking", s.handleTracking)
	api.Get("/keys", s.handleListKeys)
	api.Post("/keys/:key", s.handleKeyPress)
	api.Get("/logs", s.handleGetLogs)
	api.Get("/clients", s.handleClients)
	api.Get("/tuning", s.handleGetTuning)
	api.Post("/tuning", s.handleSetTuning)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/camera", websocket.New(s.handleHubWS(s.cameraHub)))
	app.Get("/ws/status", websocket.New(s.handleHubWS(s.statusHub)))
	app.Get("/ws/control", websocket.New(s.handleHubWS(s.controlHub)))

	s.app = app
	return s
}

func (s *Server) startHubs() {
	s.started.Do(func() {
		go s.statusHub.Run()
		go s.cameraHub.Run()
		go s.controlHub.Run()
	})
}

// Start starts the web server
func (s *Server) Start() error {
	fmt.Printf("🌐 Web dashboard: http://localhost:%s\n", s.opts.Port)
	s.startHubs()
	return s.app.Listen(":" + s.opts.Port)
}

// Serve serves on an existing listener.
func (s *Server) Serve(ln net.Listener) error {
	s.startHubs()
	return s.app.Listener(ln)
}

// StartAsync starts the web server in a goroutine
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			s.logger.Warn("web server error", "error", err)
		}
	}()
}

// RunStatus broadcasts the status every interval until ctx is cancelled.
func (s *Server) RunStatus(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.statusHub.ClientCount() == 0 {
				continue
			}
			s.statusHub.BroadcastJSON(s.status())
		}
	}
}

// Publish sends an annotated frame to camera and control clients. It
// implements render.Sink and never blocks.
func (s *Server) Publish(frame camera.Frame) {
	if s.cameraHub.ClientCount() > 0 {
		s.cameraHub.BroadcastBinary(frame.JPEG)
	}
	if s.controlHub.ClientCount() > 0 {
		s.controlHub.BroadcastBinary(frame.JPEG)
	}
}

// AddLog adds a log entry to the ring buffer
func (s *Server) AddLog(level, message string) {
	s.logs.Add(level, message)
}

// Logs returns a copy of the buffered log entries.
func (s *Server) Logs() []LogEntry {
	return s.logs.Entries()
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	s.statusHub.Stop()
	s.cameraHub.Stop()
	s.controlHub.Stop()
	return s.app.Shutdown()
}

func (s *Server) status() Status {
	if s.opts.Status == nil {
		return Status{Battery: -1}
	}
	st := s.opts.Status()
	st.Uptime = st.Session.Uptime().Truncate(time.Second).String()
	return st
}

func (s *Server) handleKey(key, origin string) bool {
	if s.opts.Keys == nil {
		return false
	}
	ok := s.opts.Keys.HandleKey(key)
	if ok {
		s.AddLog("input", fmt.Sprintf("%s key %q", origin, key))
	}
	return ok
}

var _ render.Sink = (*Server)(nil)
