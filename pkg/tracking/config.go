package tracking

import (
	"errors"
	"fmt"
	"time"

	"github.com/teslashibe/go-dronetrack/pkg/drone"
	"github.com/teslashibe/go-dronetrack/pkg/tracking/detection"
)

// ErrInvalidConfig is the root of every configuration error.
var ErrInvalidConfig = errors.New("tracking: invalid config")

// ConfigError reports one bad configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("tracking: invalid %s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidConfig.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// Profile names accepted by ProfileConfig.
const (
	ProfileDefault    = "default"
	ProfileCautious   = "cautious"
	ProfileAggressive = "aggressive"
)

// Config holds all tunable parameters for visual tracking
type Config struct {
	// Geometry
	Geometry           FrameGeometry `yaml:"geometry" json:"geometry"`
	TargetAreaFraction float64       `yaml:"target_area_fraction" json:"target_area_fraction"` // Share of the frame the target should fill

	// Deadband, as fractions of width, height and desired area
	ThreshXFrac    float64 `yaml:"thresh_x" json:"thresh_x"`
	ThreshYFrac    float64 `yaml:"thresh_y" json:"thresh_y"`
	ThreshAreaFrac float64 `yaml:"thresh_area" json:"thresh_area"`

	// Movement magnitudes (cm)
	LateralStep  int     `yaml:"lateral_step" json:"lateral_step"`
	VerticalStep int     `yaml:"vertical_step" json:"vertical_step"`
	ScaleFactor  float64 `yaml:"scale_factor" json:"scale_factor"` // Depth step per unit of relative area error
	MinStep      int     `yaml:"min_step" json:"min_step"`
	MaxStep      int     `yaml:"max_step" json:"max_step"`

	// Timing
	ControlInterval time.Duration `yaml:"control_interval" json:"control_interval"` // Control tick period
	RenderInterval  time.Duration `yaml:"render_interval" json:"render_interval"`   // Overlay refresh period
	DetectorBudget  time.Duration `yaml:"detector_budget" json:"detector_budget"`   // 0 = 80% of ControlInterval

	// Target selection
	TargetClass int `yaml:"target_class" json:"target_class"` // detection.AnyClass disables filtering
}

// DefaultConfig returns the single-threaded controller's tuning:
// depth steps in [20,100] cm and a 5% area deadband.
func DefaultConfig() Config {
	return Config{
		Geometry:           DefaultGeometry(),
		TargetAreaFraction: 0.40,

		ThreshXFrac:    0.05,
		ThreshYFrac:    0.05,
		ThreshAreaFrac: 0.05,

		LateralStep:  25,
		VerticalStep: 20,
		ScaleFactor:  250,
		MinStep:      20,
		MaxStep:      100,

		ControlInterval: 100 * time.Millisecond, // 10 Hz
		RenderInterval:  33 * time.Millisecond,  // ~30 FPS

		TargetClass: detection.PersonClass,
	}
}

// CautiousConfig halves the control rate on top of the default bounds.
// Suited to indoor flights where each move should settle before the next.
func CautiousConfig() Config {
	cfg := DefaultConfig()
	cfg.ControlInterval = 200 * time.Millisecond
	return cfg
}

// AggressiveConfig returns the multi-threaded controller's tuning:
// depth steps up to 200 cm and a wider 10% area deadband.
func AggressiveConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxStep = 200
	cfg.ThreshAreaFrac = 0.10
	return cfg
}

// ProfileConfig returns the named profile.
func ProfileConfig(name string) (Config, error) {
	switch name {
	case "", ProfileDefault:
		return DefaultConfig(), nil
	case ProfileCautious:
		return CautiousConfig(), nil
	case ProfileAggressive:
		return AggressiveConfig(), nil
	default:
		return Config{}, &ConfigError{Field: "profile", Reason: fmt.Sprintf("unknown profile %q", name)}
	}
}

// Validate checks the configuration at startup. Per-tick code assumes a
// validated config and never re-checks it.
func (c *Config) Validate() error {
	if !c.Geometry.Valid() {
		return &ConfigError{"geometry", fmt.Sprintf("%dx%d must be positive", c.Geometry.Width, c.Geometry.Height)}
	}
	if c.TargetAreaFraction <= 0 || c.TargetAreaFraction > 1 {
		return &ConfigError{"target_area_fraction", fmt.Sprintf("%v must be in (0,1]", c.TargetAreaFraction)}
	}
	if c.ThreshXFrac < 0 || c.ThreshYFrac < 0 || c.ThreshAreaFrac < 0 {
		return &ConfigError{"thresholds", "must not be negative"}
	}
	if c.LateralStep < drone.MinDistanceCM || c.LateralStep > drone.MaxDistanceCM {
		return &ConfigError{"lateral_step", fmt.Sprintf("%d outside [%d,%d] cm", c.LateralStep, drone.MinDistanceCM, drone.MaxDistanceCM)}
	}
	if c.VerticalStep < drone.MinDistanceCM || c.VerticalStep > drone.MaxDistanceCM {
		return &ConfigError{"vertical_step", fmt.Sprintf("%d outside [%d,%d] cm", c.VerticalStep, drone.MinDistanceCM, drone.MaxDistanceCM)}
	}
	if c.ScaleFactor <= 0 {
		return &ConfigError{"scale_factor", "must be positive"}
	}
	if c.MinStep < drone.MinDistanceCM || c.MaxStep > drone.MaxDistanceCM || c.MinStep > c.MaxStep {
		return &ConfigError{"depth_steps", fmt.Sprintf("[%d,%d] must be ordered within [%d,%d] cm", c.MinStep, c.MaxStep, drone.MinDistanceCM, drone.MaxDistanceCM)}
	}
	if c.ControlInterval <= 0 {
		return &ConfigError{"control_interval", "must be positive"}
	}
	if c.RenderInterval <= 0 {
		return &ConfigError{"render_interval", "must be positive"}
	}
	if c.DetectorBudget < 0 {
		return &ConfigError{"detector_budget", "must not be negative"}
	}
	return nil
}

// DesiredArea is the apparent size, in square pixels, the target should have.
func (c *Config) DesiredArea() float64 {
	return c.TargetAreaFraction * c.Geometry.Area()
}

// Thresholds returns the deadband in pixels (X, Y) and square pixels (Area).
func (c *Config) Thresholds() Thresholds {
	return Thresholds{
		X:    c.ThreshXFrac * float64(c.Geometry.Width),
		Y:    c.ThreshYFrac * float64(c.Geometry.Height),
		Area: c.ThreshAreaFrac * c.DesiredArea(),
	}
}

// DetectorTimeout is the latency budget for one detector call.
func (c *Config) DetectorTimeout() time.Duration {
	if c.DetectorBudget > 0 {
		return c.DetectorBudget
	}
	return c.ControlInterval * 8 / 10
}
