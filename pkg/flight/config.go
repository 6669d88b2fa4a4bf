// Package flight wires the drone, video, detector, control loop and
// operator surfaces into one tracking session.
package flight

import (
	"fmt"

	"github.com/teslashibe/go-dronetrack/internal/config"
)

// Config holds all configuration for a flight session.
// Flag parsing is done in cmd/dronetrack/main.go; this struct is data only.
type Config struct {
	// Debug enables verbose debug logging.
	Debug bool

	// DebugTracking prints per-tick detections and planned commands.
	DebugTracking bool

	// File is the loaded flight configuration.
	File config.File

	// Operator surfaces.
	Window    bool // Local OpenCV window with keyboard control
	Dashboard bool // Web dashboard on File.DashboardPort
	Relay     bool // TCP video relay on File.RelayAddr

	// TrackOnStart enables tracking as soon as the session starts.
	TrackOnStart bool
}

// DefaultConfig returns a session with every surface enabled.
func DefaultConfig() (Config, error) {
	f, err := config.Load("")
	if err != nil {
		return Config{}, err
	}
	return Config{
		File:      f,
		Window:    true,
		Dashboard: true,
		Relay:     true,
	}, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := c.File.Validate(); err != nil {
		return err
	}
	if c.Dashboard && c.File.DashboardPort == "" {
		return fmt.Errorf("dashboard enabled without a port")
	}
	if c.Relay && c.File.RelayAddr == "" {
		return fmt.Errorf("relay enabled without an address")
	}
	return nil
}
