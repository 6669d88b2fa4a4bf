package input

import (
	"fmt"
	"sort"

	"github.com/teslashibe/go-dronetrack/pkg/drone"
)

// ActionKind is what an event does.
type ActionKind int

const (
	// ActionCommand sends a one-shot command to the drone.
	ActionCommand ActionKind = iota
	// ActionToggleTracking switches autonomous tracking on or off.
	ActionToggleTracking
	// ActionSelectModel switches the active detector slot.
	ActionSelectModel
	// ActionQuit ends the session.
	ActionQuit
)

// Action is the result of a recognized event.
type Action struct {
	Kind    ActionKind
	Command drone.Command // ActionCommand
	Model   int           // ActionSelectModel
}

func (a Action) String() string {
	switch a.Kind {
	case ActionCommand:
		return a.Command.String()
	case ActionToggleTracking:
		return "toggle tracking"
	case ActionSelectModel:
		return fmt.Sprintf("model %d", a.Model)
	case ActionQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Do wraps a command as an action.
func Do(cmd drone.Command) Action {
	return Action{Kind: ActionCommand, Command: cmd}
}

// NudgeCM is the manual move distance.
const NudgeCM = 30

// NudgeDeg is the manual rotation angle.
const NudgeDeg = 30

// Keymap maps key names to actions.
type Keymap map[string]Action

// DefaultKeymap merges the keyboard layouts of the manual and tracking
// flight tools.
func DefaultKeymap() Keymap {
	return Keymap{
		"tab":   Do(drone.Command{Kind: drone.TakeOff}),
		"space": Do(drone.Command{Kind: drone.TakeOff}),
		"l":     Do(drone.Command{Kind: drone.Land}),
		"t":     {Kind: ActionToggleTracking},
		"esc":   {Kind: ActionQuit},

		"w": Do(drone.Move(drone.MoveForward, NudgeCM)),
		"s": Do(drone.Move(drone.MoveBack, NudgeCM)),
		"a": Do(drone.Move(drone.MoveLeft, NudgeCM)),
		"d": Do(drone.Move(drone.MoveRight, NudgeCM)),
		"y": Do(drone.Move(drone.MoveUp, NudgeCM)),
		"h": Do(drone.Move(drone.MoveDown, NudgeCM)),

		"up":    Do(drone.Move(drone.MoveUp, NudgeCM)),
		"down":  Do(drone.Move(drone.MoveDown, NudgeCM)),
		"left":  Do(drone.Rotate(false, NudgeDeg)),
		"right": Do(drone.Rotate(true, NudgeDeg)),

		"q": Do(drone.Rotate(false, NudgeDeg)),
		"e": Do(drone.Rotate(true, NudgeDeg)),

		"o": Do(drone.FlipTo(drone.FlipBackward)),
		"p": Do(drone.FlipTo(drone.FlipForward)),

		"1": {Kind: ActionSelectModel, Model: 0},
		"2": {Kind: ActionSelectModel, Model: 1},
		"3": {Kind: ActionSelectModel, Model: 2},
	}
}

// Keys returns the bound key names in sorted order.
func (k Keymap) Keys() []string {
	names := make([]string, 0, len(k))
	for name := range k {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AxisBinding maps the two directions of one stick axis.
type AxisBinding struct {
	Negative Action
	Positive Action
}

// JoystickMap maps pad buttons and axes to actions.
type JoystickMap struct {
	Buttons  map[int]Action
	Axes     map[int]AxisBinding
	Deadzone float64 // Axis values with |v| <= Deadzone are ignored
}

// DefaultJoystickMap is the layout for a PS1-style pad.
func DefaultJoystickMap() JoystickMap {
	return JoystickMap{
		Buttons: map[int]Action{
			3: Do(drone.Command{Kind: drone.TakeOff}), // Square
			1: Do(drone.Command{Kind: drone.Land}),    // Circle
			0: Do(drone.Move(drone.MoveUp, 15)),       // Triangle
			2: Do(drone.Move(drone.MoveDown, 15)),     // X
			6: Do(drone.Rotate(true, NudgeDeg)),       // L trigger
			7: Do(drone.Rotate(false, NudgeDeg)),      // R trigger
			4: Do(drone.FlipTo(drone.FlipForward)),
			5: Do(drone.FlipTo(drone.FlipBackward)),
		},
		Axes: map[int]AxisBinding{
			0: {Negative: Do(drone.Move(drone.MoveLeft, NudgeCM)), Positive: Do(drone.Move(drone.MoveRight, NudgeCM))},
			1: {Negative: Do(drone.Move(drone.MoveForward, NudgeCM)), Positive: Do(drone.Move(drone.MoveBack, NudgeCM))},
		},
		Deadzone: 0.5,
	}
}

// Lookup resolves an event to an action.
func (j JoystickMap) Lookup(ev Event) (Action, bool) {
	switch ev.Kind {
	case ButtonEvent:
		a, ok := j.Buttons[ev.Index]
		return a, ok
	case AxisEvent:
		b, ok := j.Axes[ev.Index]
		if !ok {
			return Action{}, false
		}
		switch {
		case ev.Value < -j.Deadzone:
			return b.Negative, true
		case ev.Value > j.Deadzone:
			return b.Positive, true
		}
	}
	return Action{}, false
}
