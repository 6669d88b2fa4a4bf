package detection

import (
	"fmt"
	"log/slog"
	"sync"
)

// Slot is a named detector that is opened on first use.
type Slot struct {
	Name string
	Open func() (Detector, error)
}

// Switchable routes Detect to one of several model slots. The active slot
// can be changed while a control loop is running.
type Switchable struct {
	logger *slog.Logger

	mu     sync.RWMutex
	slots  []Slot
	loaded []Detector
	active int
}

// NewSwitchable creates a switchable detector with slot 0 active.
func NewSwitchable(logger *slog.Logger, slots ...Slot) *Switchable {
	if logger == nil {
		logger = slog.Default()
	}
	return &Switchable{
		logger: logger,
		slots:  slots,
		loaded: make([]Detector, len(slots)),
	}
}

// Select makes slot i active, opening it if needed. On failure the previous
// slot stays active.
func (s *Switchable) Select(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i < 0 || i >= len(s.slots) {
		return fmt.Errorf("detection: no model slot %d (have %d)", i, len(s.slots))
	}
	if _, err := s.openLocked(i); err != nil {
		return err
	}
	s.active = i
	s.logger.Info("detector model selected", "slot", i, "model", s.slots[i].Name)
	return nil
}

// Active returns the index and name of the active slot.
func (s *Switchable) Active() (int, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.slots) == 0 {
		return -1, ""
	}
	return s.active, s.slots[s.active].Name
}

// Detect runs the active detector.
func (s *Switchable) Detect(jpeg []byte) ([]Box, error) {
	s.mu.RLock()
	d := s.activeLocked()
	s.mu.RUnlock()

	if d == nil {
		s.mu.Lock()
		var err error
		d, err = s.openLocked(s.active)
		s.mu.Unlock()
		if err != nil {
			return nil, err
		}
	}
	return d.Detect(jpeg)
}

// Close releases every opened detector.
func (s *Switchable) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var first error
	for i, d := range s.loaded {
		if d == nil {
			continue
		}
		if err := d.Close(); err != nil && first == nil {
			first = err
		}
		s.loaded[i] = nil
	}
	return first
}

func (s *Switchable) activeLocked() Detector {
	if s.active >= len(s.loaded) {
		return nil
	}
	return s.loaded[s.active]
}

func (s *Switchable) openLocked(i int) (Detector, error) {
	if i >= len(s.slots) {
		return nil, fmt.Errorf("detection: no model slots configured")
	}
	if d := s.loaded[i]; d != nil {
		return d, nil
	}
	d, err := s.slots[i].Open()
	if err != nil {
		return nil, fmt.Errorf("open model %q: %w", s.slots[i].Name, err)
	}
	s.loaded[i] = d
	return d, nil
}
