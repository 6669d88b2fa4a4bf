package drone

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultQueueSize holds a few ticks worth of planner output plus manual
// commands. Anything beyond it is stale by the time the drone could run it.
const DefaultQueueSize = 8

// DefaultCommandTimeout bounds one actuator call. Tello moves of 100 cm
// report "ok" after the motion completes, which takes a few seconds.
const DefaultCommandTimeout = 7 * time.Second

// Submitter accepts commands without blocking the caller.
type Submitter interface {
	Submit(cmd Command) error
}

// DispatcherStats is a snapshot of dispatcher counters.
type DispatcherStats struct {
	Submitted uint64 `json:"submitted"`
	Executed  uint64 `json:"executed"`
	Failed    uint64 `json:"failed"`
	Dropped   uint64 `json:"dropped"`
}

// Dispatcher is the single actuator-facing channel. Callers submit commands
// fire-and-forget; one worker goroutine executes them in submission order.
type Dispatcher struct {
	actuator Actuator
	logger   *slog.Logger
	timeout  time.Duration

	// OnError is called from the worker goroutine for each failed command.
	OnError func(cmd Command, err error)

	mu     sync.RWMutex
	closed bool
	queue  chan Command
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	submitted atomic.Uint64
	executed  atomic.Uint64
	failed    atomic.Uint64
	dropped   atomic.Uint64

	lastErrorTime time.Time
}

// NewDispatcher creates a dispatcher in front of the actuator and starts its worker.
// queueSize <= 0 selects DefaultQueueSize.
func NewDispatcher(actuator Actuator, queueSize int, logger *slog.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		actuator: actuator,
		logger:   logger,
		timeout:  DefaultCommandTimeout,
		queue:    make(chan Command, queueSize),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go d.run()
	return d
}

// SetTimeout changes the per-command timeout.
func (d *Dispatcher) SetTimeout(timeout time.Duration) {
	d.mu.Lock()
	d.timeout = timeout
	d.mu.Unlock()
}

// Submit queues a command. It never blocks: a saturated queue returns
// ErrQueueFull and a closed dispatcher returns ErrClosed.
func (d *Dispatcher) Submit(cmd Command) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrClosed
	}

	select {
	case d.queue <- cmd.Clamped():
		d.submitted.Add(1)
		return nil
	default:
		d.dropped.Add(1)
		return ErrQueueFull
	}
}

// Stats returns the current counters.
func (d *Dispatcher) Stats() DispatcherStats {
	return DispatcherStats{
		Submitted: d.submitted.Load(),
		Executed:  d.executed.Load(),
		Failed:    d.failed.Load(),
		Dropped:   d.dropped.Load(),
	}
}

// Close stops accepting commands, discards anything still queued, cancels
// the in-flight call and waits for the worker to exit.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done
		return
	}
	d.closed = true
	d.cancel()
	close(d.queue)
	d.mu.Unlock()

	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for cmd := range d.queue {
		if d.ctx.Err() != nil {
			// Shutdown began: drain without executing.
			d.dropped.Add(1)
			continue
		}
		d.execute(cmd)
	}
}

func (d *Dispatcher) execute(cmd Command) {
	d.mu.RLock()
	timeout := d.timeout
	d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(d.ctx, timeout)
	defer cancel()

	start := time.Now()
	err := Execute(ctx, d.actuator, cmd)
	if err == nil {
		d.executed.Add(1)
		d.logger.Debug("command executed", "command", cmd.String(), "took", time.Since(start))
		return
	}

	d.failed.Add(1)
	if d.OnError != nil {
		d.OnError(cmd, err)
	}

	// Log errors, but not more than once per second
	if d.lastErrorTime.IsZero() || time.Since(d.lastErrorTime) > time.Second {
		d.logger.Warn("command failed", "command", cmd.String(), "error", err, "failed_total", d.failed.Load())
		d.lastErrorTime = time.Now()
	}
}
