package tracking

import (
	"sync"
	"testing"

	"github.com/teslashibe/go-dronetrack/pkg/tracking/detection"
)

func TestState_Initial(t *testing.T) {
	s := NewState()
	snap := s.Snapshot()
	if snap.Enabled {
		t.Error("new state should have tracking disabled")
	}
	if len(snap.Detections) != 0 {
		t.Errorf("new state should have no detections, got %d", len(snap.Detections))
	}
}

func TestState_SetDetectionsCopies(t *testing.T) {
	s := NewState()
	boxes := []detection.Box{{X1: 1, Y1: 1, X2: 2, Y2: 2}}
	s.SetDetections(boxes)

	boxes[0].X1 = 99
	if got := s.Snapshot().Detections[0].X1; got != 1 {
		t.Errorf("stored detection changed with caller's slice: X1=%v", got)
	}

	s.SetDetections(nil)
	if got := len(s.Snapshot().Detections); got != 0 {
		t.Errorf("SetDetections(nil): got %d detections", got)
	}
}

func TestState_Toggle(t *testing.T) {
	s := NewState()
	var seen []bool
	s.OnToggle(func(enabled bool) { seen = append(seen, enabled) })

	if !s.Toggle() {
		t.Error("first Toggle should enable")
	}
	if s.Toggle() {
		t.Error("second Toggle should disable")
	}
	s.SetEnabled(true)
	s.SetEnabled(true) // no change, no hook

	want := []bool{true, false, true}
	if len(seen) != len(want) {
		t.Fatalf("hooks: got %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("hook %d: got %v, want %v", i, seen[i], want[i])
		}
	}
}

func TestState_SnapshotIsConsistent(t *testing.T) {
	s := NewState()

	// Writers always store n boxes all tagged with n; a torn read would
	// show a length that disagrees with the tag.
	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for n := 1; ; n = n%8 + 1 {
			select {
			case <-stop:
				return
			default:
			}
			boxes := make([]detection.Box, n)
			for i := range boxes {
				boxes[i] = detection.Box{ClassID: n, X2: 1, Y2: 1}
			}
			s.SetDetections(boxes)
			s.Toggle()
		}
	}()

	for i := 0; i < 5000; i++ {
		snap := s.Snapshot()
		for _, b := range snap.Detections {
			if b.ClassID != len(snap.Detections) {
				t.Fatalf("torn read: %d boxes tagged %d", len(snap.Detections), b.ClassID)
			}
		}
	}
	close(stop)
	wg.Wait()
}
