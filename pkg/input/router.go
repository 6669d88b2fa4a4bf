package input

import (
	"log/slog"
	"sync"

	"github.com/teslashibe/go-dronetrack/pkg/drone"
)

// Toggler switches tracking on and off.
type Toggler interface {
	Toggle() bool
}

// ModelSelector switches the active detector.
type ModelSelector interface {
	Select(slot int) error
}

// Router turns events into actions. It is safe for concurrent use by
// several event sources.
type Router struct {
	keys     Keymap
	joystick JoystickMap
	commands drone.Submitter
	tracking Toggler
	models   ModelSelector
	logger   *slog.Logger

	quitOnce sync.Once
	quit     chan struct{}
}

// NewRouter creates a router. models may be nil when only one detector is
// configured.
func NewRouter(keys Keymap, joystick JoystickMap, commands drone.Submitter, tracking Toggler, models ModelSelector, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		keys:     keys,
		joystick: joystick,
		commands: commands,
		tracking: tracking,
		models:   models,
		logger:   logger,
		quit:     make(chan struct{}),
	}
}

// Lookup resolves an event without acting on it.
func (r *Router) Lookup(ev Event) (Action, bool) {
	if ev.Kind == KeyEvent {
		a, ok := r.keys[ev.Name]
		return a, ok
	}
	return r.joystick.Lookup(ev)
}

// Handle performs the action bound to ev. Unrecognized events are ignored
// and reported as false.
func (r *Router) Handle(ev Event) bool {
	action, ok := r.Lookup(ev)
	if !ok {
		return false
	}

	r.logger.Debug("input", "event", ev.String(), "origin", ev.Origin, "action", action.String())

	switch action.Kind {
	case ActionCommand:
		if err := r.commands.Submit(action.Command); err != nil {
			r.logger.Warn("manual command dropped", "command", action.Command.String(), "error", err)
		}
	case ActionToggleTracking:
		enabled := r.tracking.Toggle()
		r.logger.Info("tracking toggled", "enabled", enabled, "origin", ev.Origin)
	case ActionSelectModel:
		if r.models == nil {
			return true
		}
		if err := r.models.Select(action.Model); err != nil {
			r.logger.Warn("model switch failed", "slot", action.Model, "error", err)
		}
	case ActionQuit:
		r.quitOnce.Do(func() { close(r.quit) })
	}
	return true
}

// HandleKey handles an event by wire name (see ParseEvent), so key names
// and pad events forwarded as text go through the same path.
func (r *Router) HandleKey(name string) bool {
	return r.Handle(ParseEvent(name))
}

// Quit is closed once a quit action has been handled.
func (r *Router) Quit() <-chan struct{} {
	return r.quit
}

// Keymap returns the keyboard bindings.
func (r *Router) Keymap() Keymap {
	return r.keys
}
