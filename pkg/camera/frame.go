package camera

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNoFrame is returned when no frame arrives in time.
var ErrNoFrame = errors.New("camera: no frame available")

// Frame is one encoded video frame.
type Frame struct {
	JPEG     []byte
	Width    int
	Height   int
	Seq      uint64 // Assigned by Buffer, starts at 1
	Captured time.Time
}

// Source provides the most recent frame. It never blocks waiting for a new
// one; ok is false when no frame has been captured yet.
type Source interface {
	Latest() (frame Frame, ok bool)
}

// Buffer is a single-slot latest-frame store. A producer overwrites the slot,
// any number of consumers read it at their own pace.
type Buffer struct {
	mu    sync.RWMutex
	frame Frame
	seq   uint64
}

// NewBuffer creates an empty frame buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Put stores f as the latest frame and returns its sequence number.
func (b *Buffer) Put(f Frame) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	f.Seq = b.seq
	if f.Captured.IsZero() {
		f.Captured = time.Now()
	}
	b.frame = f
	return b.seq
}

// Latest returns the most recent frame.
func (b *Buffer) Latest() (Frame, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.frame, b.seq > 0
}

// Cursor reads a Source and only reports frames it has not seen.
// A Cursor is owned by a single consumer.
type Cursor struct {
	src  Source
	last uint64
}

// NewCursor creates a cursor over src.
func NewCursor(src Source) *Cursor {
	return &Cursor{src: src}
}

// Next returns the latest frame if it is newer than the last one returned.
func (c *Cursor) Next() (Frame, bool) {
	f, ok := c.src.Latest()
	if !ok || f.Seq <= c.last {
		return Frame{}, false
	}
	c.last = f.Seq
	return f, true
}

// WaitForFrame polls src until a frame is available or timeout elapses.
func WaitForFrame(ctx context.Context, src Source, timeout time.Duration) (Frame, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	poll := time.NewTicker(50 * time.Millisecond)
	defer poll.Stop()

	for {
		if f, ok := src.Latest(); ok {
			return f, nil
		}
		select {
		case <-ctx.Done():
			return Frame{}, ctx.Err()
		case <-deadline.C:
			return Frame{}, ErrNoFrame
		case <-poll.C:
		}
	}
}
