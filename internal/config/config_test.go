package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teslashibe/go-dronetrack/pkg/drone"
	"github.com/teslashibe/go-dronetrack/pkg/tracking"
)

func TestEnvDefaults(t *testing.T) {
	t.Setenv("DRONE_IP", "")
	t.Setenv("DASHBOARD_PORT", "")
	t.Setenv("RELAY_ADDR", "")

	assert.Equal(t, DefaultDroneIP, DroneIP())
	assert.Equal(t, "192.168.10.1:8889", DroneAddr())
	assert.Equal(t, DefaultDashboardPort, DashboardPort())
	assert.Equal(t, DefaultRelayAddr, RelayAddr())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DRONE_IP", "10.0.0.5")
	t.Setenv("DRONE_BACKEND", "dry")
	t.Setenv("DASHBOARD_PORT", "9000")
	t.Setenv("RELAY_ADDR", "127.0.0.1:7000")
	t.Setenv("DETECTOR_MODEL", "/opt/models/yolov8s.onnx")
	t.Setenv("TRACKING_PROFILE", "aggressive")

	f, err := Defaults("")
	require.NoError(t, err)

	assert.Equal(t, "aggressive", f.Profile)
	assert.Equal(t, 200, f.Tracking.MaxStep)
	assert.Equal(t, "10.0.0.5:8889", f.Drone.Addr)
	assert.Equal(t, drone.BackendDry, f.Drone.Backend)
	assert.Equal(t, "9000", f.DashboardPort)
	assert.Equal(t, "127.0.0.1:7000", f.RelayAddr)
	assert.Equal(t, "/opt/models/yolov8s.onnx", f.Detectors[0].ModelPath)
}

func TestLoad_NoPath(t *testing.T) {
	t.Setenv("TRACKING_PROFILE", "")
	t.Setenv("DRONE_BACKEND", "")

	f, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, tracking.ProfileDefault, f.Profile)
	assert.Equal(t, tracking.DefaultConfig(), f.Tracking)
	assert.Len(t, f.Detectors, 2)
}

func TestParse_OverlaysProfile(t *testing.T) {
	t.Setenv("TRACKING_PROFILE", "")
	t.Setenv("DRONE_BACKEND", "")

	f, err := Parse([]byte(`
profile: cautious
drone:
  backend: dry
tracking:
  scale_factor: 300
  control_interval: 250ms
  target_class: -1
`))
	require.NoError(t, err)

	assert.Equal(t, drone.BackendDry, f.Drone.Backend)
	assert.Equal(t, 300.0, f.Tracking.ScaleFactor)
	assert.Equal(t, 250*time.Millisecond, f.Tracking.ControlInterval)
	assert.Equal(t, -1, f.Tracking.TargetClass)

	// Untouched fields keep the profile values
	assert.Equal(t, 100, f.Tracking.MaxStep)
	assert.Equal(t, 0.40, f.Tracking.TargetAreaFraction)
	assert.Equal(t, drone.DefaultQueueSize, f.Drone.QueueSize)
}

func TestParse_DetectorsReplaceDefaults(t *testing.T) {
	f, err := Parse([]byte(`
detectors:
  - name: Tiny
    kind: yolo
    model_path: models/tiny.onnx
    confidence: 0.4
    input_width: 320
    input_height: 320
`))
	require.NoError(t, err)
	require.Len(t, f.Detectors, 1)
	assert.Equal(t, "Tiny", f.Detectors[0].Name)
	assert.Equal(t, 0.0, f.Detectors[0].NMSThresh)
}

func TestParse_GeometryFollowsCamera(t *testing.T) {
	f, err := Parse([]byte(`
camera:
  width: 640
  height: 480
`))
	require.NoError(t, err)
	assert.Equal(t, tracking.FrameGeometry{Width: 640, Height: 480}, f.Tracking.Geometry)
	assert.Equal(t, 0.40*640*480, f.Tracking.DesiredArea())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		is   error
	}{
		{"bad yaml", "tracking: [", nil},
		{"unknown profile", "profile: reckless", tracking.ErrInvalidConfig},
		{"bad tracking", "tracking:\n  target_area_fraction: 1.5", tracking.ErrInvalidConfig},
		{"bad backend", "drone:\n  backend: carrier-pigeon", nil},
		{"bad camera", "camera:\n  quality: 0", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			require.Error(t, err)
			if tc.is != nil {
				assert.ErrorIs(t, err, tc.is)
			}
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flight.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profile: aggressive\nrelay_addr: \":7777\"\n"), 0o644))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7777", f.RelayAddr)
	assert.Equal(t, 0.10, f.Tracking.ThreshAreaFrac)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadProfile_OverridesFileProfile(t *testing.T) {
	t.Setenv("TRACKING_PROFILE", "")
	path := filepath.Join(t.TempDir(), "flight.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profile: aggressive\ntracking:\n  scale_factor: 300\n"), 0o644))

	f, err := LoadProfile(path, tracking.ProfileCautious)
	require.NoError(t, err)
	assert.Equal(t, tracking.ProfileCautious, f.Profile)
	assert.Equal(t, tracking.CautiousConfig().ControlInterval, f.Tracking.ControlInterval)
	assert.Equal(t, 100, f.Tracking.MaxStep)
	assert.Equal(t, 300.0, f.Tracking.ScaleFactor)

	// Without an override the file's profile applies
	f, err = LoadProfile(path, "")
	require.NoError(t, err)
	assert.Equal(t, tracking.ProfileAggressive, f.Profile)
	assert.Equal(t, 200, f.Tracking.MaxStep)

	_, err = LoadProfile(path, "reckless")
	assert.Error(t, err)
}
