// Package drone talks to a Tello-class drone.
//
// Commands are small values describing one discrete SDK operation. They are
// built by the tracking planner and the input router, handed to a Dispatcher,
// and executed by an Actuator backend one at a time.
package drone

import "fmt"

// Kind identifies a discrete drone operation.
type Kind int

const (
	MoveLeft Kind = iota
	MoveRight
	MoveUp
	MoveDown
	MoveForward
	MoveBack
	TakeOff
	Land
	RotateCW
	RotateCCW
	Flip
)

var kindNames = map[Kind]string{
	MoveLeft:    "left",
	MoveRight:   "right",
	MoveUp:      "up",
	MoveDown:    "down",
	MoveForward: "forward",
	MoveBack:    "back",
	TakeOff:     "takeoff",
	Land:        "land",
	RotateCW:    "cw",
	RotateCCW:   "ccw",
	Flip:        "flip",
}

// String returns the SDK verb for the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsMove reports whether the kind is a translation in centimeters.
func (k Kind) IsMove() bool {
	return k >= MoveLeft && k <= MoveBack
}

// FlipDirection is the single-letter SDK flip argument.
type FlipDirection byte

const (
	FlipLeft     FlipDirection = 'l'
	FlipRight    FlipDirection = 'r'
	FlipForward  FlipDirection = 'f'
	FlipBackward FlipDirection = 'b'
)

// Command is one operation for the actuator.
// Value is centimeters for moves, degrees for rotations and the
// FlipDirection for flips. It is ignored for takeoff and land.
type Command struct {
	Kind  Kind
	Value int
}

// Move builds a clamped translation command.
func Move(kind Kind, cm int) Command {
	return Command{Kind: kind, Value: ClampDistance(cm)}
}

// Rotate builds a clamped rotation command.
func Rotate(clockwise bool, deg int) Command {
	kind := RotateCCW
	if clockwise {
		kind = RotateCW
	}
	return Command{Kind: kind, Value: ClampDegrees(deg)}
}

// FlipTo builds a flip command.
func FlipTo(dir FlipDirection) Command {
	return Command{Kind: Flip, Value: int(dir)}
}

// Clamped returns c with its magnitude forced into the SDK range.
func (c Command) Clamped() Command {
	switch {
	case c.Kind.IsMove():
		c.Value = ClampDistance(c.Value)
	case c.Kind == RotateCW || c.Kind == RotateCCW:
		c.Value = ClampDegrees(c.Value)
	}
	return c
}

// String renders the SDK text form, e.g. "forward 30", "cw 90", "flip b".
func (c Command) String() string {
	switch {
	case c.Kind.IsMove(), c.Kind == RotateCW, c.Kind == RotateCCW:
		return fmt.Sprintf("%s %d", c.Kind, c.Value)
	case c.Kind == Flip:
		return fmt.Sprintf("flip %c", byte(c.Value))
	default:
		return c.Kind.String()
	}
}
