// Drone Tracker - autonomous visual tracking for a Tello drone
// Detects a person in the video stream and steers the drone to keep them
// centered at a fixed apparent size.
package main

import (
	"context"
	"flag"
	stdlog "log"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/teslashibe/go-dronetrack/internal/config"
	"github.com/teslashibe/go-dronetrack/internal/log"
	"github.com/teslashibe/go-dronetrack/pkg/drone"
	"github.com/teslashibe/go-dronetrack/pkg/flight"
	"github.com/teslashibe/go-dronetrack/pkg/tracking/detection"
)

func init() {
	// OpenCV windows must be driven from the main thread
	runtime.LockOSThread()
}

func main() {
	cfg := parseFlags()

	app, err := flight.New(cfg)
	if err != nil {
		stdlog.Fatalf("❌ Configuration error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Init(ctx); err != nil {
		app.Shutdown()
		stdlog.Fatalf("❌ Initialization failed: %v", err)
	}
	defer app.Shutdown()

	if err := app.Run(ctx); err != nil {
		stdlog.Fatalf("❌ Runtime error: %v", err)
	}
}

// parseFlags parses command line flags and returns configuration.
func parseFlags() flight.Config {
	configPath := flag.String("config", "", "YAML flight configuration (optional)")
	profile := flag.String("profile", "", "Tracking profile: default, cautious, aggressive (overrides TRACKING_PROFILE)")
	backend := flag.String("backend", "", "Drone backend: sdk, stick, dry (overrides DRONE_BACKEND)")
	droneAddr := flag.String("drone", "", "Drone SDK address (overrides DRONE_IP)")
	source := flag.String("source", "", "Video source: stream URL, file or device index")
	model := flag.String("model", "", "Detector model path (overrides DETECTOR_MODEL)")
	target := flag.String("target", "", "Target class name, or \"any\"")
	port := flag.String("port", "", "Dashboard port (overrides DASHBOARD_PORT)")
	relayAddr := flag.String("relay", "", "Relay listen address (overrides RELAY_ADDR)")
	noWindow := flag.Bool("no-window", false, "Run without the local video window")
	noDashboard := flag.Bool("no-dashboard", false, "Disable the web dashboard")
	noRelay := flag.Bool("no-relay", false, "Disable the TCP video relay")
	track := flag.Bool("track", false, "Enable tracking immediately")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	debugFlag := flag.Bool("debug", false, "Enable verbose debug logging")
	debugTracking := flag.Bool("debug-tracking", false, "Print per-tick detections and commands")
	flag.Parse()

	log.Init(*logLevel)

	// -profile picks the defaults; the file, if any, is applied over them
	f, err := config.LoadProfile(*configPath, *profile)
	if err != nil {
		stdlog.Fatalf("❌ Configuration error: %v", err)
	}

	if *backend != "" {
		f.Drone.Backend = drone.Backend(*backend)
	}
	if *droneAddr != "" {
		f.Drone.Addr = *droneAddr
	}
	if *source != "" {
		f.Camera.Source = *source
	}
	if *model != "" {
		f.Detectors[0].ModelPath = *model
	}
	if *target != "" {
		id, ok := detection.ClassID(*target)
		if !ok {
			stdlog.Fatalf("❌ Unknown target class: %q", *target)
		}
		f.Tracking.TargetClass = id
	}
	if *port != "" {
		f.DashboardPort = *port
	}
	if *relayAddr != "" {
		f.RelayAddr = *relayAddr
	}

	return flight.Config{
		Debug:         *debugFlag,
		DebugTracking: *debugTracking,
		File:          f,
		Window:        !*noWindow,
		Dashboard:     !*noDashboard,
		Relay:         !*noRelay,
		TrackOnStart:  *track,
	}
}
