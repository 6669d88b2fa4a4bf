package detection

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// fakeDetector returns fixed boxes after an optional delay.
type fakeDetector struct {
	name   string
	boxes  []Box
	err    error
	delay  time.Duration
	calls  atomic.Int32
	closed atomic.Bool
}

func (f *fakeDetector) Detect(jpeg []byte) ([]Box, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.boxes, f.err
}

func (f *fakeDetector) Close() error {
	f.closed.Store(true)
	return nil
}

func TestWithTimeout_Fast(t *testing.T) {
	inner := &fakeDetector{boxes: []Box{{X2: 10, Y2: 10}}}
	d := WithTimeout(inner, 100*time.Millisecond)

	for i := 0; i < 3; i++ {
		boxes, err := d.Detect(nil)
		if err != nil {
			t.Fatalf("Detect #%d: %v", i, err)
		}
		if len(boxes) != 1 {
			t.Errorf("Detect #%d: got %d boxes, want 1", i, len(boxes))
		}
	}
}

func TestWithTimeout_Slow(t *testing.T) {
	inner := &fakeDetector{delay: 150 * time.Millisecond}
	d := WithTimeout(inner, 20*time.Millisecond)

	start := time.Now()
	_, err := d.Detect(nil)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Detect: got %v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("Detect took %v, should return near the budget", elapsed)
	}

	// The overrunning inference is still in flight
	if _, err := d.Detect(nil); !errors.Is(err, ErrBusy) {
		t.Errorf("second Detect: got %v, want ErrBusy", err)
	}
	if n := inner.calls.Load(); n != 1 {
		t.Errorf("inner calls: got %d, want 1", n)
	}

	// Once it finishes the wrapper accepts work again
	time.Sleep(200 * time.Millisecond)
	inner.delay = 0
	if _, err := d.Detect(nil); err != nil {
		t.Errorf("Detect after recovery: %v", err)
	}
}

func TestWithTimeout_PassesErrors(t *testing.T) {
	boom := errors.New("boom")
	d := WithTimeout(&fakeDetector{err: boom}, time.Second)
	if _, err := d.Detect(nil); !errors.Is(err, boom) {
		t.Errorf("Detect: got %v, want %v", err, boom)
	}
}

func TestWithTimeout_ZeroBudget(t *testing.T) {
	inner := &fakeDetector{}
	if d := WithTimeout(inner, 0); d != Detector(inner) {
		t.Error("zero budget should return the detector unwrapped")
	}
}

func TestWithTimeout_Close(t *testing.T) {
	inner := &fakeDetector{}
	d := WithTimeout(inner, time.Second)
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !inner.closed.Load() {
		t.Error("Close should close the inner detector")
	}
}
