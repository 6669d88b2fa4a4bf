// Package camera provides frame acquisition types for the drone video feed.
package camera

// DefaultStreamURL is where the Tello pushes its H.264 stream after "streamon".
const DefaultStreamURL = "udp://0.0.0.0:11111"

// Config holds frame acquisition parameters.
type Config struct {
	// Source is a stream URL, a file path, or a device index such as "0".
	Source string `yaml:"source" json:"source"`

	// Processing resolution. Frames are resized to this before detection,
	// so detections are expressed in these pixel coordinates.
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`

	Quality   int `yaml:"quality" json:"quality"`     // JPEG quality 1-100
	Framerate int `yaml:"framerate" json:"framerate"` // Target FPS
}

// DefaultConfig returns the Tello stream at its native 960x720.
func DefaultConfig() Config {
	return Config{
		Source:    DefaultStreamURL,
		Width:     960,
		Height:    720,
		Quality:   80,
		Framerate: 30,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.Source == "" {
		errors = append(errors, "source is required")
	}
	if c.Width < 160 || c.Width > 4096 {
		errors = append(errors, "width must be between 160 and 4096")
	}
	if c.Height < 120 || c.Height > 2160 {
		errors = append(errors, "height must be between 120 and 2160")
	}
	if c.Quality < 1 || c.Quality > 100 {
		errors = append(errors, "quality must be between 1 and 100")
	}
	if c.Framerate < 1 || c.Framerate > 120 {
		errors = append(errors, "framerate must be between 1 and 120")
	}

	return errors
}
