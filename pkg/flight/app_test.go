package flight

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/teslashibe/go-dronetrack/internal/config"
	"github.com/teslashibe/go-dronetrack/pkg/camera"
	"github.com/teslashibe/go-dronetrack/pkg/drone"
	"github.com/teslashibe/go-dronetrack/pkg/tracking/detection"
)

type fixedDetector struct {
	boxes []detection.Box
}

func (d *fixedDetector) Detect(jpeg []byte) ([]detection.Box, error) { return d.boxes, nil }
func (d *fixedDetector) Close() error                                  { return nil }

// farPerson is centered and far too small, so every tick moves forward.
var farPerson = detection.Box{X1: 400, Y1: 260, X2: 560, Y2: 460, Confidence: 0.9, ClassID: detection.PersonClass}

func testConfig(t *testing.T) Config {
	t.Helper()
	t.Setenv("TRACKING_PROFILE", "")
	t.Setenv("DRONE_BACKEND", "dry")

	f, err := config.Defaults("")
	if err != nil {
		t.Fatalf("Defaults: %v", err)
	}
	f.Tracking.ControlInterval = 20 * time.Millisecond
	f.Tracking.RenderInterval = 20 * time.Millisecond
	return Config{File: f, TrackOnStart: true}
}

// newTestApp builds a session around a dry-run drone and an in-memory
// frame buffer, skipping the hardware steps of Init.
func newTestApp(t *testing.T) (*App, *drone.DryRun, *camera.Buffer) {
	t.Helper()
	app, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	dry := drone.NewDryRun(nil)
	frames := camera.NewBuffer()
	det := &fixedDetector{boxes: []detection.Box{farPerson}}

	app.actuator = dry
	app.frames = frames
	app.detector = detection.NewSwitchable(nil, detection.Slot{
		Name: "fixed",
		Open: func() (detection.Detector, error) { return det, nil },
	})
	if err := app.build(); err != nil {
		t.Fatalf("build: %v", err)
	}
	return app, dry, frames
}

func TestNew_Validates(t *testing.T) {
	cfg := testConfig(t)
	cfg.Dashboard = true
	cfg.File.DashboardPort = ""
	if _, err := New(cfg); err == nil {
		t.Error("dashboard without a port should be rejected")
	}

	cfg = testConfig(t)
	cfg.File.Tracking.TargetAreaFraction = 0
	if _, err := New(cfg); err == nil {
		t.Error("invalid tracking config should be rejected")
	}
}

func TestApp_Status(t *testing.T) {
	app, _, _ := newTestApp(t)

	st := app.status()
	if !st.Tracking {
		t.Error("TrackOnStart should enable tracking")
	}
	if st.Model != "fixed" {
		t.Errorf("Model: got %q, want %q", st.Model, "fixed")
	}
	if st.Battery != -1 {
		t.Errorf("Battery before first poll: got %d, want -1", st.Battery)
	}
	if st.Session.ID != app.Session().ID {
		t.Error("status should carry the session id")
	}

	if line := app.statusLine(); !strings.HasPrefix(line, "BAT ?") {
		t.Errorf("statusLine: got %q", line)
	}
	app.battery.Store(64)
	if line := app.statusLine(); line != "BAT 64%  fixed" {
		t.Errorf("statusLine: got %q", line)
	}
}

func TestApp_RunTracksAndQuits(t *testing.T) {
	app, dry, frames := newTestApp(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Feed frames like the capture goroutine would
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				frames.Put(camera.Frame{JPEG: []byte{0xff, 0xd8}, Width: 960, Height: 720})
			}
		}
	}()

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	deadline := time.After(3 * time.Second)
	for !hasMove(dry.History(), drone.MoveForward) {
		select {
		case <-deadline:
			t.Fatalf("no forward move dispatched, history: %v", dry.History())
		case <-time.After(10 * time.Millisecond):
		}
	}

	if !app.router.HandleKey("esc") {
		t.Fatal("esc not recognized")
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after esc")
	}

	app.Shutdown()
	history := dry.History()
	if last := history[len(history)-1]; last.Kind != drone.Land {
		t.Errorf("last command: got %v, want land", last)
	}
}

func TestApp_ManualKeysReachDrone(t *testing.T) {
	app, dry, _ := newTestApp(t)
	defer app.dispatcher.Close()

	app.router.HandleKey("tab")

	deadline := time.After(2 * time.Second)
	for len(dry.History()) == 0 {
		select {
		case <-deadline:
			t.Fatal("takeoff not dispatched")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if got := dry.History()[0]; got.Kind != drone.TakeOff {
		t.Errorf("got %v, want takeoff", got)
	}
}

func TestApp_PadEventsReachDrone(t *testing.T) {
	app, dry, _ := newTestApp(t)
	defer app.dispatcher.Close()

	// Pad input arrives as text from the relay and the dashboard.
	if !app.router.HandleKey("button:3") || !app.router.HandleKey("axis:1=-1") {
		t.Fatal("pad events not recognized")
	}

	deadline := time.After(2 * time.Second)
	for len(dry.History()) < 2 {
		select {
		case <-deadline:
			t.Fatalf("pad commands not dispatched: %v", dry.History())
		case <-time.After(5 * time.Millisecond):
		}
	}
	history := dry.History()
	if history[0].Kind != drone.TakeOff || history[1].Kind != drone.MoveForward {
		t.Errorf("got %v, want [takeoff forward]", history)
	}
}

func hasMove(history []drone.Command, kind drone.Kind) bool {
	for _, cmd := range history {
		if cmd.Kind == kind {
			return true
		}
	}
	return false
}
