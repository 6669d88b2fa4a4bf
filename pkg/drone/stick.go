package drone

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SMerrony/tello"
)

// StickConfig calibrates the stick backend. The binary protocol only knows
// stick deflections, so distances become timed pulses at a fixed speed.
type StickConfig struct {
	SpeedPct     int     `yaml:"speed_pct" json:"speed_pct"`           // stick deflection used for moves (0-100)
	CMPerSecond  float64 `yaml:"cm_per_second" json:"cm_per_second"`   // measured ground speed at SpeedPct
	TurnPct      int     `yaml:"turn_pct" json:"turn_pct"`             // stick deflection used for rotations
	DegPerSecond float64 `yaml:"deg_per_second" json:"deg_per_second"` // measured yaw rate at TurnPct
}

// DefaultStickConfig returns a conservative indoor calibration.
func DefaultStickConfig() StickConfig {
	return StickConfig{
		SpeedPct:     30,
		CMPerSecond:  60,
		TurnPct:      40,
		DegPerSecond: 90,
	}
}

// stickDrone is the subset of *tello.Tello the backend drives.
type stickDrone interface {
	TakeOff()
	Land()
	Hover()
	Forward(pct int)
	Backward(pct int)
	Left(pct int)
	Right(pct int)
	Up(pct int)
	Down(pct int)
	Clockwise(pct int)
	Anticlockwise(pct int)
	ControlConnected() bool
	ControlDisconnect()
	GetFlightData() tello.FlightData
}

// StickClient drives the drone over the native binary protocol using
// github.com/SMerrony/tello.
type StickClient struct {
	drone  stickDrone
	cfg    StickConfig
	logger *slog.Logger
}

// DialStick connects to the drone on the default addresses.
func DialStick(cfg StickConfig, logger *slog.Logger) (*StickClient, error) {
	d := new(tello.Tello)
	if err := d.ControlConnectDefault(); err != nil {
		return nil, fmt.Errorf("stick connect: %w", err)
	}
	return newStickClient(d, cfg, logger), nil
}

func newStickClient(d stickDrone, cfg StickConfig, logger *slog.Logger) *StickClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &StickClient{drone: d, cfg: cfg, logger: logger}
}

// TakeOff starts the motors and climbs to hover height.
func (c *StickClient) TakeOff(ctx context.Context) error {
	if !c.drone.ControlConnected() {
		return ErrNotConnected
	}
	c.drone.TakeOff()
	return nil
}

// Land descends and stops the motors.
func (c *StickClient) Land(ctx context.Context) error {
	if !c.drone.ControlConnected() {
		return ErrNotConnected
	}
	c.drone.Land()
	return nil
}

// Move holds the stick for as long as it takes to cover cm.
func (c *StickClient) Move(ctx context.Context, dir Direction, cm int) error {
	var stick func(int)
	switch dir {
	case MoveForward:
		stick = c.drone.Forward
	case MoveBack:
		stick = c.drone.Backward
	case MoveLeft:
		stick = c.drone.Left
	case MoveRight:
		stick = c.drone.Right
	case MoveUp:
		stick = c.drone.Up
	case MoveDown:
		stick = c.drone.Down
	default:
		return fmt.Errorf("drone: %v is not a move", dir)
	}
	d := time.Duration(float64(ClampDistance(cm)) / c.cfg.CMPerSecond * float64(time.Second))
	return c.pulse(ctx, stick, c.cfg.SpeedPct, d)
}

// Rotate yaws for as long as it takes to cover deg.
func (c *StickClient) Rotate(ctx context.Context, clockwise bool, deg int) error {
	stick := c.drone.Anticlockwise
	if clockwise {
		stick = c.drone.Clockwise
	}
	d := time.Duration(float64(ClampDegrees(deg)) / c.cfg.DegPerSecond * float64(time.Second))
	return c.pulse(ctx, stick, c.cfg.TurnPct, d)
}

// Flip is not exposed by the stick backend.
func (c *StickClient) Flip(ctx context.Context, dir FlipDirection) error {
	return ErrUnsupported
}

// Battery returns the charge reported in the latest flight data.
func (c *StickClient) Battery(ctx context.Context) (int, error) {
	if !c.drone.ControlConnected() {
		return 0, ErrNotConnected
	}
	return int(c.drone.GetFlightData().BatteryPercentage), nil
}

// StreamOn is not supported: the binary protocol video port is not the
// SDK stream the camera package reads.
func (c *StickClient) StreamOn(ctx context.Context) error {
	return ErrUnsupported
}

// Close hovers and disconnects.
func (c *StickClient) Close() error {
	c.drone.Hover()
	c.drone.ControlDisconnect()
	return nil
}

// pulse deflects a stick for d, then centers all sticks. Cancellation
// centers the sticks immediately.
func (c *StickClient) pulse(ctx context.Context, stick func(int), pct int, d time.Duration) error {
	if !c.drone.ControlConnected() {
		return ErrNotConnected
	}
	defer c.drone.Hover()

	c.logger.Debug("stick pulse", "pct", pct, "duration", d)
	stick(pct)
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ Actuator = (*StickClient)(nil)
