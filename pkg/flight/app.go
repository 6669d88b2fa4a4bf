package flight

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/teslashibe/go-dronetrack/internal/log"
	"github.com/teslashibe/go-dronetrack/pkg/camera"
	"github.com/teslashibe/go-dronetrack/pkg/camera/capture"
	"github.com/teslashibe/go-dronetrack/pkg/debug"
	"github.com/teslashibe/go-dronetrack/pkg/drone"
	"github.com/teslashibe/go-dronetrack/pkg/input"
	"github.com/teslashibe/go-dronetrack/pkg/relay"
	"github.com/teslashibe/go-dronetrack/pkg/render"
	"github.com/teslashibe/go-dronetrack/pkg/render/display"
	"github.com/teslashibe/go-dronetrack/pkg/tracking"
	"github.com/teslashibe/go-dronetrack/pkg/tracking/detection"
	"github.com/teslashibe/go-dronetrack/pkg/web"
)

const (
	connectTimeout  = 10 * time.Second
	landTimeout     = 10 * time.Second
	batteryInterval = 15 * time.Second
	statusInterval  = 500 * time.Millisecond
)

// App is the flight session orchestrator.
// It manages all components and their lifecycle.
type App struct {
	config  Config
	logger  *slog.Logger
	logs    *web.LogBuffer
	session tracking.Session

	// Drone
	actuator   drone.Actuator
	dispatcher *drone.Dispatcher

	// Perception and control
	capture  *capture.Capture
	frames   camera.Source
	detector *detection.Switchable
	state    *tracking.State
	control  *tracking.ControlLoop
	router   *input.Router

	// Output
	render    *render.Loop
	window    *display.Window
	webServer *web.Server
	relay     *relay.Server

	battery atomic.Int64
}

// New creates a flight session with the given configuration.
func New(cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	debug.Enabled = cfg.Debug
	debug.Tracking = cfg.DebugTracking

	session := tracking.NewSession(cfg.File.Profile, cfg.File.Tracking.Geometry)
	logs := web.NewLogBuffer(0)
	logger := slog.New(web.NewLogHandler(log.L().Handler(), logs, slog.LevelInfo)).
		With("session", session.ID[:8])

	app := &App{
		config:  cfg,
		logger:  logger,
		logs:    logs,
		session: session,
	}
	app.battery.Store(-1)
	return app, nil
}

// Session returns the session identity.
func (a *App) Session() tracking.Session {
	return a.session
}

// Init connects the drone and builds every component.
// Call this after New() and before Run().
func (a *App) Init(ctx context.Context) error {
	f := a.config.File

	fmt.Println("🚁 Drone Tracker")
	fmt.Println("================")
	fmt.Printf("🆔 Session %s (profile: %s)\n", a.session.ID, a.session.Profile)
	if debug.Enabled {
		fmt.Println("🐛 Debug mode enabled")
	}

	// Drone
	fmt.Printf("🔌 Connecting to drone (%s)... ", f.Drone.Backend)
	openCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	actuator, err := drone.Open(openCtx, f.Drone, a.logger)
	if err != nil {
		return fmt.Errorf("drone: %w", err)
	}
	a.actuator = actuator
	fmt.Println("✅")

	if pct, err := a.actuator.Battery(openCtx); err != nil {
		fmt.Printf("⚠️  Battery: %v\n", err)
	} else {
		a.battery.Store(int64(pct))
		fmt.Printf("🔋 Battery: %d%%\n", pct)
	}

	// Video
	fmt.Print("📹 Starting video stream... ")
	if err := a.actuator.StreamOn(openCtx); err != nil {
		return fmt.Errorf("stream on: %w", err)
	}
	a.capture, err = capture.Open(f.Camera, a.logger)
	if err != nil {
		return fmt.Errorf("video: %w", err)
	}
	a.frames = a.capture
	fmt.Println("✅")

	// Detector
	fmt.Print("🔍 Loading detector... ")
	a.detector = detection.NewSwitchable(a.logger, detection.Slots(f.Detectors)...)
	if err := a.detector.Select(0); err != nil {
		fmt.Println("❌")
		fmt.Println("   (Download with: curl -L https://github.com/ultralytics/assets/releases/download/v8.2.0/yolov8n.onnx -o models/yolov8n.onnx)")
		return fmt.Errorf("detector: %w", err)
	}
	_, model := a.detector.Active()
	fmt.Printf("✅ (%s)\n", model)

	return a.build()
}

// build assembles the loops and surfaces once the drone, frames and
// detector exist.
func (a *App) build() error {
	f := a.config.File

	a.state = tracking.NewState()
	a.state.OnToggle(func(enabled bool) {
		a.logger.Info("tracking switched", "enabled", enabled)
	})

	a.dispatcher = drone.NewDispatcher(a.actuator, f.Drone.QueueSize, a.logger)

	var err error
	a.control, err = tracking.NewControlLoop(f.Tracking, a.state, a.frames, a.detector, a.dispatcher, a.logger)
	if err != nil {
		return fmt.Errorf("control loop: %w", err)
	}

	a.router = input.NewRouter(input.DefaultKeymap(), input.DefaultJoystickMap(), a.dispatcher, a.state, a.detector, a.logger)

	var sinks []render.Sink
	if a.config.Window {
		buf := render.NewBufferSink()
		sinks = append(sinks, buf)
		a.window = display.NewWindow("Drone Tracking", buf, a.logger)
	}
	if a.config.Dashboard {
		a.webServer = web.NewServer(web.Options{
			Port:     f.DashboardPort,
			Status:   a.status,
			Tracking: a.state,
			Keys:     a.router,
			Tuner:    a.control,
			Logs:     a.logs,
			Logger:   a.logger,
		})
		sinks = append(sinks, a.webServer)
	}
	if a.config.Relay {
		a.relay, err = relay.Listen(f.RelayAddr, a.router, a.logger)
		if err != nil {
			return fmt.Errorf("relay: %w", err)
		}
		sinks = append(sinks, a.relay)
	}

	a.render = render.NewLoop(f.Tracking.RenderInterval, a.frames, a.state,
		display.NewAnnotator(f.Camera.Quality), a.logger, sinks...)
	a.render.Status = a.statusLine

	if a.config.TrackOnStart {
		a.state.SetEnabled(true)
	}
	return nil
}

// Run starts every loop and blocks until ctx is cancelled or the operator
// quits. With a window, Run must be called from the main goroutine.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	spawn := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	if a.capture != nil {
		spawn(func() {
			if err := a.capture.Run(ctx); err != nil {
				a.logger.Warn("video capture stopped", "error", err)
			}
		})
	}
	spawn(func() { a.control.Run(ctx) })
	spawn(func() { a.render.Run(ctx) })
	spawn(func() { a.pollBattery(ctx) })

	if a.webServer != nil {
		a.webServer.StartAsync()
		spawn(func() { a.webServer.RunStatus(ctx, statusInterval) })
	}
	if a.relay != nil {
		spawn(func() {
			if err := a.relay.Serve(ctx); err != nil {
				a.logger.Warn("relay stopped", "error", err)
			}
		})
	}

	// Esc from any surface ends the session
	go func() {
		select {
		case <-a.router.Quit():
			cancel()
		case <-ctx.Done():
		}
	}()

	fmt.Println("\n🎮 Ready! Tab/Space take off, t toggles tracking, l lands, Esc quits")
	fmt.Println("   (Ctrl+C to exit)")
	a.logger.Info("session started", "profile", a.session.Profile)

	if a.window != nil {
		a.window.Run(ctx, func(ev input.Event) bool {
			a.router.Handle(ev.From("window"))
			return ctx.Err() == nil
		})
		cancel()
	} else {
		<-ctx.Done()
	}

	wg.Wait()
	return nil
}

// Shutdown lands the drone and releases every component.
func (a *App) Shutdown() {
	fmt.Println("\n🛬 Landing...")

	// Pending tracking moves are dropped; landing goes straight to the drone
	if a.dispatcher != nil {
		a.dispatcher.Close()
	}
	if a.actuator != nil {
		ctx, cancel := context.WithTimeout(context.Background(), landTimeout)
		if err := a.actuator.Land(ctx); err != nil {
			fmt.Printf("⚠️  Land: %v\n", err)
		}
		cancel()
		a.actuator.Close()
	}

	if a.webServer != nil {
		a.webServer.Shutdown()
	}
	if a.relay != nil {
		a.relay.Close()
	}
	if a.detector != nil {
		a.detector.Close()
	}
	if a.capture != nil {
		a.capture.Close()
	}

	fmt.Println("👋 Goodbye!")
}

// status is the dashboard's view of the session.
func (a *App) status() web.Status {
	snap := a.state.Snapshot()
	_, model := a.detector.Active()
	return web.Status{
		Session:    a.session,
		Tracking:   snap.Enabled,
		Detections: len(snap.Detections),
		Battery:    int(a.battery.Load()),
		Model:      model,
		Signal:     a.control.LastSignal(),
		Control:    a.control.Stats(),
		Render:     a.render.Stats(),
		Commands:   a.dispatcher.Stats(),
	}
}

// statusLine is drawn under the mode banner on every frame.
func (a *App) statusLine() string {
	_, model := a.detector.Active()
	if pct := a.battery.Load(); pct >= 0 {
		return fmt.Sprintf("BAT %d%%  %s", pct, model)
	}
	return "BAT ?  " + model
}

func (a *App) pollBattery(ctx context.Context) {
	ticker := time.NewTicker(batteryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			qctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			pct, err := a.actuator.Battery(qctx)
			cancel()
			if err != nil {
				a.logger.Debug("battery query failed", "error", err)
				continue
			}
			if prev := a.battery.Swap(int64(pct)); prev != int64(pct) && pct <= 20 {
				a.logger.Warn("battery low", "percent", pct)
			}
		}
	}
}
