// Package tracking keeps a detected target centered and at a set apparent
// size by issuing discrete drone moves at a fixed control rate.
package tracking

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/teslashibe/go-dronetrack/pkg/camera"
	"github.com/teslashibe/go-dronetrack/pkg/debug"
	"github.com/teslashibe/go-dronetrack/pkg/drone"
	"github.com/teslashibe/go-dronetrack/pkg/tracking/detection"
)

// ControlLoop runs detection and command planning at ControlInterval.
// While tracking is disabled it keeps consuming frames but does no work.
type ControlLoop struct {
	mu     sync.RWMutex
	config Config

	state    *State
	frames   *camera.Cursor
	detector detection.Detector
	commands drone.Submitter
	logger   *slog.Logger

	stats         counters
	wasEnabled    bool
	lastRejectLog time.Time
	lastSignal    ErrorSignal
	intervalSet   chan time.Duration
}

// NewControlLoop validates config and wires the loop. The detector is
// wrapped with the config's latency budget.
func NewControlLoop(config Config, state *State, frames camera.Source, det detection.Detector, commands drone.Submitter, logger *slog.Logger) (*ControlLoop, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ControlLoop{
		config:      config,
		state:       state,
		frames:      camera.NewCursor(frames),
		detector:    detection.WithTimeout(det, config.DetectorTimeout()),
		commands:    commands,
		logger:      logger,
		intervalSet: make(chan time.Duration, 1),
	}, nil
}

// Run ticks until ctx is cancelled.
func (l *ControlLoop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.Config().ControlInterval)
	defer ticker.Stop()

	l.logger.Info("control loop started", "interval", l.Config().ControlInterval)

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("control loop stopped", "ticks", l.stats.ticks.Load())
			return
		case d := <-l.intervalSet:
			ticker.Reset(d)
		case <-ticker.C:
			l.Step(ctx)
		}
	}
}

// Step runs one control tick and returns the commands it dispatched.
// It never fails: every problem is counted and the tick is skipped.
func (l *ControlLoop) Step(ctx context.Context) []drone.Command {
	l.stats.ticks.Add(1)
	cfg := l.Config()

	frame, ok := l.frames.Next()
	if !ok {
		l.stats.framesSkipped.Add(1)
		return nil
	}

	if !l.state.Enabled() {
		l.stats.idleTicks.Add(1)
		if l.wasEnabled {
			l.state.SetDetections(nil)
			l.wasEnabled = false
		}
		return nil
	}
	l.wasEnabled = true

	boxes, err := l.detector.Detect(frame.JPEG)
	if err != nil {
		if errors.Is(err, detection.ErrTimeout) || errors.Is(err, detection.ErrBusy) {
			l.stats.detectorTimeouts.Add(1)
		} else {
			l.stats.detectorFailures.Add(1)
		}
		debug.TrackLog("⚠️  detector: %v\n", err)
		boxes = nil
	}

	boxes = detection.FilterClass(boxes, cfg.TargetClass)
	l.state.SetDetections(boxes)

	primary, ok := detection.Primary(boxes)
	if !ok {
		return nil
	}
	l.stats.detections.Add(1)

	sig, err := ComputeError(primary, cfg.Geometry, cfg.TargetAreaFraction)
	if err != nil {
		l.logger.Error("error model failed", "error", err)
		return nil
	}
	l.mu.Lock()
	l.lastSignal = sig
	l.mu.Unlock()

	cmds := Plan(sig, &cfg)
	if len(cmds) == 0 {
		return nil
	}
	l.stats.commandsPlanned.Add(uint64(len(cmds)))

	debug.TrackLog("🎯 err x=%.0f y=%.0f area=%.0f → %v\n", sig.ErrorX, sig.ErrorY, sig.ErrorArea, cmds)

	dispatched := cmds[:0:0]
	for _, cmd := range cmds {
		if ctx.Err() != nil {
			break
		}
		if err := l.commands.Submit(cmd); err != nil {
			l.stats.commandsRejected.Add(1)
			if errors.Is(err, drone.ErrClosed) {
				break
			}
			// Log rejections, but not more than once per second
			if l.lastRejectLog.IsZero() || time.Since(l.lastRejectLog) > time.Second {
				l.logger.Warn("command not dispatched", "command", cmd.String(), "error", err,
					"rejected_total", l.stats.commandsRejected.Load())
				l.lastRejectLog = time.Now()
			}
			continue
		}
		dispatched = append(dispatched, cmd)
	}
	return dispatched
}

// Config returns the active configuration.
func (l *ControlLoop) Config() Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.config
}

// LastSignal returns the most recent error signal.
func (l *ControlLoop) LastSignal() ErrorSignal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastSignal
}

// Stats returns a copy of the loop counters.
func (l *ControlLoop) Stats() Stats {
	return l.stats.snapshot()
}
