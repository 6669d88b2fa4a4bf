package drone

import (
	"context"
	"fmt"
	"log/slog"
)

// Backend names an actuator implementation.
type Backend string

const (
	// BackendSDK uses the Tello SDK text protocol over UDP.
	BackendSDK Backend = "sdk"
	// BackendStick uses the native binary stick protocol.
	BackendStick Backend = "stick"
	// BackendDry logs commands without a drone.
	BackendDry Backend = "dry"
)

// Config selects and tunes an actuator backend.
type Config struct {
	Backend   Backend     `yaml:"backend" json:"backend"`
	Addr      string      `yaml:"addr" json:"addr"` // SDK control address
	QueueSize int         `yaml:"queue_size" json:"queue_size"`
	Stick     StickConfig `yaml:"stick" json:"stick"`
}

// DefaultConfig returns the SDK backend on the drone's own access point.
func DefaultConfig() Config {
	return Config{
		Backend:   BackendSDK,
		Addr:      DefaultDroneAddr,
		QueueSize: DefaultQueueSize,
		Stick:     DefaultStickConfig(),
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSDK, BackendDry:
	case BackendStick:
		if c.Stick.SpeedPct <= 0 || c.Stick.SpeedPct > 100 {
			return fmt.Errorf("stick.speed_pct must be in (0,100], got %d", c.Stick.SpeedPct)
		}
		if c.Stick.TurnPct <= 0 || c.Stick.TurnPct > 100 {
			return fmt.Errorf("stick.turn_pct must be in (0,100], got %d", c.Stick.TurnPct)
		}
		if c.Stick.CMPerSecond <= 0 || c.Stick.DegPerSecond <= 0 {
			return fmt.Errorf("stick calibration must be positive")
		}
	default:
		return fmt.Errorf("unsupported backend: %q", c.Backend)
	}
	if c.QueueSize < 0 {
		return fmt.Errorf("queue_size must not be negative, got %d", c.QueueSize)
	}
	return nil
}

// Open connects the configured backend.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (Actuator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("opening drone actuator", "backend", cfg.Backend, "addr", cfg.Addr)

	switch cfg.Backend {
	case BackendSDK:
		return DialSDK(ctx, cfg.Addr, logger)
	case BackendStick:
		return DialStick(cfg.Stick, logger)
	default:
		return NewDryRun(logger), nil
	}
}
