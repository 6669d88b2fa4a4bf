// Package config provides configuration helpers for go-dronetrack commands.
package config

import (
	"os"
	"strconv"
)

// Defaults for the flight binaries.
const (
	DefaultDroneIP       = "192.168.10.1"
	DefaultDronePort     = 8889
	DefaultDashboardPort = "8181"
	DefaultRelayAddr     = ":9999"
)

// DroneIP returns the drone IP from DRONE_IP env var.
// Falls back to the Tello access point address if not set.
func DroneIP() string {
	if ip := os.Getenv("DRONE_IP"); ip != "" {
		return ip
	}
	return DefaultDroneIP
}

// DroneAddr returns the SDK control address for the drone.
func DroneAddr() string {
	return DroneIP() + ":" + strconv.Itoa(DefaultDronePort)
}

// DroneBackend returns the actuator backend from DRONE_BACKEND, or "".
func DroneBackend() string {
	return os.Getenv("DRONE_BACKEND")
}

// DashboardPort returns the dashboard port from DASHBOARD_PORT env var or default.
func DashboardPort() string {
	if port := os.Getenv("DASHBOARD_PORT"); port != "" {
		return port
	}
	return DefaultDashboardPort
}

// RelayAddr returns the relay listen address from RELAY_ADDR env var or default.
func RelayAddr() string {
	if addr := os.Getenv("RELAY_ADDR"); addr != "" {
		return addr
	}
	return DefaultRelayAddr
}

// DetectorModel returns the model path from DETECTOR_MODEL, or "".
func DetectorModel() string {
	return os.Getenv("DETECTOR_MODEL")
}

// TrackingProfile returns the profile name from TRACKING_PROFILE, or "".
func TrackingProfile() string {
	return os.Getenv("TRACKING_PROFILE")
}
