package config

import (
	"fmt"
	"os"

	"github.com/teslashibe/go-dronetrack/pkg/camera"
	"github.com/teslashibe/go-dronetrack/pkg/drone"
	"github.com/teslashibe/go-dronetrack/pkg/tracking"
	"github.com/teslashibe/go-dronetrack/pkg/tracking/detection"
	"gopkg.in/yaml.v3"
)

// File is the complete flight configuration.
type File struct {
	Profile       string             `yaml:"profile"`
	Drone         drone.Config       `yaml:"drone"`
	Camera        camera.Config      `yaml:"camera"`
	Tracking      tracking.Config    `yaml:"tracking"`
	Detectors     []detection.Config `yaml:"detectors"`
	DashboardPort string             `yaml:"dashboard_port"`
	RelayAddr     string             `yaml:"relay_addr"`
}

// Defaults builds the configuration for a profile with environment
// overrides applied.
func Defaults(profile string) (File, error) {
	if profile == "" {
		profile = TrackingProfile()
	}
	if profile == "" {
		profile = tracking.ProfileDefault
	}
	trk, err := tracking.ProfileConfig(profile)
	if err != nil {
		return File{}, err
	}

	f := File{
		Profile:       profile,
		Drone:         drone.DefaultConfig(),
		Camera:        camera.DefaultConfig(),
		Tracking:      trk,
		Detectors:     []detection.Config{detection.DefaultConfig(), detection.FaceConfig()},
		DashboardPort: DashboardPort(),
		RelayAddr:     RelayAddr(),
	}
	f.Drone.Addr = DroneAddr()
	if b := DroneBackend(); b != "" {
		f.Drone.Backend = drone.Backend(b)
	}
	if m := DetectorModel(); m != "" {
		f.Detectors[0].ModelPath = m
	}
	return f, nil
}

// Load reads a YAML file over the defaults of the profile it names. An
// empty path returns the defaults.
func Load(path string) (File, error) {
	return LoadProfile(path, "")
}

// LoadProfile is Load with the tracking profile chosen by the caller. A
// non-empty profile replaces the one named in the file; values set in the
// file still apply on top of it.
func LoadProfile(path, profile string) (File, error) {
	if path == "" {
		f, err := Defaults(profile)
		if err != nil {
			return File{}, err
		}
		return f, f.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read config: %w", err)
	}
	return ParseProfile(data, profile)
}

// Parse decodes YAML over profile defaults and validates the result.
func Parse(data []byte) (File, error) {
	return ParseProfile(data, "")
}

// ParseProfile is Parse with an overriding profile.
func ParseProfile(data []byte, profile string) (File, error) {
	if profile == "" {
		var head struct {
			Profile string `yaml:"profile"`
		}
		if err := yaml.Unmarshal(data, &head); err != nil {
			return File{}, fmt.Errorf("parse config: %w", err)
		}
		profile = head.Profile
	}

	f, err := Defaults(profile)
	if err != nil {
		return File{}, err
	}

	resolved := f.Profile

	// Lists such as detectors replace the defaults rather than merging
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parse config: %w", err)
	}
	f.Profile = resolved
	return f, f.Validate()
}

// Validate checks every section. Detections are expressed in the captured
// frame, so the tracking geometry always follows the camera size.
func (f *File) Validate() error {
	f.Tracking.Geometry = tracking.FrameGeometry{Width: f.Camera.Width, Height: f.Camera.Height}
	if err := f.Drone.Validate(); err != nil {
		return fmt.Errorf("drone: %w", err)
	}
	if problems := f.Camera.Validate(); len(problems) > 0 {
		return fmt.Errorf("camera: %s", problems[0])
	}
	if err := f.Tracking.Validate(); err != nil {
		return err
	}
	if len(f.Detectors) == 0 {
		return fmt.Errorf("detectors: at least one is required")
	}
	for i := range f.Detectors {
		if err := f.Detectors[i].Validate(); err != nil {
			return fmt.Errorf("detectors[%d]: %w", i, err)
		}
	}
	return nil
}
