// Package input maps discrete operator events (keys, pad buttons, stick
// axes) to one-shot drone commands and tracking controls.
package input

import (
	"fmt"
	"strconv"
	"strings"
)

// EventKind distinguishes the physical origin of an event.
type EventKind int

const (
	KeyEvent EventKind = iota
	ButtonEvent
	AxisEvent
)

// Event is one operator input. It carries only its identity; axis events
// also carry the stick position in [-1, 1].
type Event struct {
	Kind   EventKind
	Name   string // Key name for KeyEvent
	Index  int    // Button or axis number
	Value  float64
	Origin string // "window", "relay", "dashboard", ...
}

// Key creates a key event. Names are case-insensitive.
func Key(name string) Event {
	return Event{Kind: KeyEvent, Name: strings.ToLower(strings.TrimSpace(name))}
}

// Button creates a pad button press.
func Button(n int) Event {
	return Event{Kind: ButtonEvent, Index: n}
}

// Axis creates a stick motion event.
func Axis(n int, value float64) Event {
	return Event{Kind: AxisEvent, Index: n, Value: value}
}

// ParseEvent reads an event from its wire name: "button:N" for a pad
// button, "axis:N=v" for a stick axis, anything else is a key name. This
// is how remote viewers and the dashboard forward pad input.
func ParseEvent(name string) Event {
	name = strings.ToLower(strings.TrimSpace(name))
	switch {
	case strings.HasPrefix(name, "button:"):
		if n, err := strconv.Atoi(name[len("button:"):]); err == nil && n >= 0 {
			return Button(n)
		}
	case strings.HasPrefix(name, "axis:"):
		idx, val, ok := strings.Cut(name[len("axis:"):], "=")
		if !ok {
			break
		}
		n, err := strconv.Atoi(idx)
		if err != nil || n < 0 {
			break
		}
		v, err := strconv.ParseFloat(val, 64)
		if err != nil || v < -1 || v > 1 {
			break
		}
		return Axis(n, v)
	}
	return Key(name)
}

// WireName is the inverse of ParseEvent.
func (e Event) WireName() string {
	switch e.Kind {
	case ButtonEvent:
		return fmt.Sprintf("button:%d", e.Index)
	case AxisEvent:
		return "axis:" + strconv.Itoa(e.Index) + "=" + strconv.FormatFloat(e.Value, 'f', -1, 64)
	default:
		return e.Name
	}
}

// From tags the event with where it came from.
func (e Event) From(origin string) Event {
	e.Origin = origin
	return e
}

func (e Event) String() string {
	switch e.Kind {
	case KeyEvent:
		return "key " + e.Name
	case ButtonEvent:
		return fmt.Sprintf("button %d", e.Index)
	case AxisEvent:
		return fmt.Sprintf("axis %d=%.2f", e.Index, e.Value)
	default:
		return "unknown"
	}
}

// KeyName maps an OpenCV WaitKey code to a key name.
func KeyName(code int) (string, bool) {
	code &= 0xff
	switch code {
	case 9:
		return "tab", true
	case 13, 10:
		return "enter", true
	case 27:
		return "esc", true
	case 32:
		return "space", true
	}
	if code > 32 && code < 127 {
		return strings.ToLower(string(rune(code))), true
	}
	return "", false
}
