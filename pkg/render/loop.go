// Package render draws the latest detections over each new frame and
// hands the result to display and streaming sinks. It runs at its own
// cadence and never touches the actuator.
package render

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/teslashibe/go-dronetrack/pkg/camera"
	"github.com/teslashibe/go-dronetrack/pkg/tracking"
)

// Overlay is everything drawn on top of a frame.
type Overlay struct {
	Tracking tracking.Snapshot
	Status   string // Free-form status line, e.g. model and battery
}

// Renderer produces an annotated frame.
type Renderer interface {
	Render(frame camera.Frame, overlay Overlay) (camera.Frame, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(frame camera.Frame, overlay Overlay) (camera.Frame, error)

func (f RendererFunc) Render(frame camera.Frame, overlay Overlay) (camera.Frame, error) {
	return f(frame, overlay)
}

// Passthrough returns frames unchanged.
var Passthrough = RendererFunc(func(frame camera.Frame, _ Overlay) (camera.Frame, error) {
	return frame, nil
})

// Sink receives annotated frames. Publish must not block.
type Sink interface {
	Publish(frame camera.Frame)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(frame camera.Frame)

func (f SinkFunc) Publish(frame camera.Frame) { f(frame) }

// Stats counts render loop activity.
type Stats struct {
	Frames uint64 `json:"frames"`
	Errors uint64 `json:"errors"`
}

// Loop renders new frames at a fixed interval.
type Loop struct {
	interval time.Duration
	frames   *camera.Cursor
	state    *tracking.State
	renderer Renderer
	sinks    []Sink
	logger   *slog.Logger

	// Status is called once per frame for the overlay status line.
	Status func() string

	frameCount atomic.Uint64
	errorCount atomic.Uint64
}

// NewLoop creates a render loop reading frames from src.
func NewLoop(interval time.Duration, src camera.Source, state *tracking.State, renderer Renderer, logger *slog.Logger, sinks ...Sink) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	if renderer == nil {
		renderer = Passthrough
	}
	return &Loop{
		interval: interval,
		frames:   camera.NewCursor(src),
		state:    state,
		renderer: renderer,
		sinks:    sinks,
		logger:   logger,
	}
}

// Run renders until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("render loop stopped", "frames", l.frameCount.Load())
			return
		case <-ticker.C:
			l.Step()
		}
	}
}

// Step renders the latest frame if it is new. It reports whether a frame
// was published.
func (l *Loop) Step() bool {
	frame, ok := l.frames.Next()
	if !ok {
		return false
	}

	overlay := Overlay{Tracking: l.state.Snapshot()}
	if l.Status != nil {
		overlay.Status = l.Status()
	}

	out, err := l.renderer.Render(frame, overlay)
	if err != nil {
		if l.errorCount.Add(1) == 1 {
			l.logger.Warn("render failed", "error", err)
		}
		return false
	}

	for _, s := range l.sinks {
		s.Publish(out)
	}
	l.frameCount.Add(1)
	return true
}

// Stats returns render counters.
func (l *Loop) Stats() Stats {
	return Stats{Frames: l.frameCount.Load(), Errors: l.errorCount.Load()}
}

// BufferSink publishes into a latest-frame buffer, which other loops can
// read with their own cursors.
type BufferSink struct {
	*camera.Buffer
}

// NewBufferSink creates a sink backed by a fresh buffer.
func NewBufferSink() BufferSink {
	return BufferSink{camera.NewBuffer()}
}

func (b BufferSink) Publish(frame camera.Frame) {
	frame.Seq = 0
	b.Put(frame)
}
