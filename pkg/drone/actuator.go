package drone

import (
	"context"
	"fmt"
)

// Direction is a translation axis and sign.
type Direction = Kind

// Mover provides discrete translations in centimeters.
// Use this minimal interface when only movement is needed.
type Mover interface {
	Move(ctx context.Context, dir Direction, cm int) error
}

// Rotator provides in-place yaw rotations in degrees.
type Rotator interface {
	Rotate(ctx context.Context, clockwise bool, deg int) error
}

// Flyer provides takeoff, landing and flips.
type Flyer interface {
	TakeOff(ctx context.Context) error
	Land(ctx context.Context) error
	Flip(ctx context.Context, dir FlipDirection) error
}

// StatusReader provides drone status queries.
type StatusReader interface {
	Battery(ctx context.Context) (int, error)
}

// Actuator is the composite interface for full drone control.
type Actuator interface {
	Mover
	Rotator
	Flyer
	StatusReader

	// StreamOn asks the drone to start sending H.264 video.
	StreamOn(ctx context.Context) error

	// Close releases the control link.
	Close() error
}

// Execute performs one command on the actuator.
func Execute(ctx context.Context, a Actuator, cmd Command) error {
	cmd = cmd.Clamped()
	switch {
	case cmd.Kind.IsMove():
		return a.Move(ctx, cmd.Kind, cmd.Value)
	case cmd.Kind == RotateCW:
		return a.Rotate(ctx, true, cmd.Value)
	case cmd.Kind == RotateCCW:
		return a.Rotate(ctx, false, cmd.Value)
	case cmd.Kind == TakeOff:
		return a.TakeOff(ctx)
	case cmd.Kind == Land:
		return a.Land(ctx)
	case cmd.Kind == Flip:
		return a.Flip(ctx, FlipDirection(cmd.Value))
	default:
		return fmt.Errorf("drone: unknown command %v", cmd.Kind)
	}
}
