package tracking

import (
	"sync"
	"time"

	"github.com/teslashibe/go-dronetrack/pkg/tracking/detection"
)

// Snapshot is a consistent view of the tracking state. Detections must be
// treated as read-only; they are shared with other readers.
type Snapshot struct {
	Enabled    bool            `json:"enabled"`
	Detections []detection.Box `json:"detections"`
	Updated    time.Time       `json:"updated"`
}

// State is shared by the control loop (writes detections), input handlers
// (toggle tracking) and renderers (read both).
type State struct {
	mu         sync.RWMutex
	enabled    bool
	detections []detection.Box
	updated    time.Time
	onToggle   []func(enabled bool)
}

// NewState creates a state with tracking disabled and no detections.
func NewState() *State {
	return &State{}
}

// SetDetections replaces the stored detections. boxes is copied.
func (s *State) SetDetections(boxes []detection.Box) {
	var stored []detection.Box
	if len(boxes) > 0 {
		stored = make([]detection.Box, len(boxes))
		copy(stored, boxes)
	}

	s.mu.Lock()
	s.detections = stored
	s.updated = time.Now()
	s.mu.Unlock()
}

// SetEnabled turns tracking on or off.
func (s *State) SetEnabled(enabled bool) {
	s.mu.Lock()
	changed := s.enabled != enabled
	s.enabled = enabled
	hooks := s.onToggle
	s.mu.Unlock()

	if changed {
		for _, fn := range hooks {
			fn(enabled)
		}
	}
}

// Toggle flips tracking and returns the new value.
func (s *State) Toggle() bool {
	s.mu.Lock()
	s.enabled = !s.enabled
	enabled := s.enabled
	hooks := s.onToggle
	s.mu.Unlock()

	for _, fn := range hooks {
		fn(enabled)
	}
	return enabled
}

// Enabled reports whether tracking is on.
func (s *State) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// Snapshot returns the enabled flag and detections as one consistent pair.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Enabled:    s.enabled,
		Detections: s.detections,
		Updated:    s.updated,
	}
}

// OnToggle registers fn to run after tracking is switched on or off.
// Hooks run on the caller's goroutine, outside the lock.
func (s *State) OnToggle(fn func(enabled bool)) {
	s.mu.Lock()
	s.onToggle = append(s.onToggle, fn)
	s.mu.Unlock()
}
