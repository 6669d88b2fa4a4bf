package detection

import (
	"sync/atomic"
	"time"
)

// timeoutDetector bounds the latency of an inner detector.
type timeoutDetector struct {
	inner  Detector
	budget time.Duration
	busy   atomic.Bool
}

type result struct {
	boxes []Box
	err   error
}

// WithTimeout wraps d so that each Detect returns within budget. An
// inference that overruns keeps running in the background; until it
// finishes, further calls return ErrBusy instead of piling up behind it.
func WithTimeout(d Detector, budget time.Duration) Detector {
	if budget <= 0 {
		return d
	}
	return &timeoutDetector{inner: d, budget: budget}
}

func (t *timeoutDetector) Detect(jpeg []byte) ([]Box, error) {
	if !t.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}

	done := make(chan result, 1)
	go func() {
		boxes, err := t.inner.Detect(jpeg)
		t.busy.Store(false)
		done <- result{boxes, err}
	}()

	timer := time.NewTimer(t.budget)
	defer timer.Stop()

	select {
	case r := <-done:
		return r.boxes, r.err
	case <-timer.C:
		return nil, ErrTimeout
	}
}

func (t *timeoutDetector) Close() error {
	return t.inner.Close()
}
