package drone

import (
	"context"
	"log/slog"
	"sync"
)

// DryRun is an Actuator that records and logs commands instead of flying.
// Useful for bench-testing tracking against a recorded video.
type DryRun struct {
	logger *slog.Logger

	mu      sync.Mutex
	history []Command
	battery int
}

// NewDryRun creates a dry-run actuator reporting a full battery.
func NewDryRun(logger *slog.Logger) *DryRun {
	if logger == nil {
		logger = slog.Default()
	}
	return &DryRun{logger: logger, battery: 100}
}

func (d *DryRun) record(cmd Command) error {
	d.mu.Lock()
	d.history = append(d.history, cmd)
	d.mu.Unlock()
	d.logger.Info("dry-run command", "command", cmd.String())
	return nil
}

// History returns a copy of every command seen so far.
func (d *DryRun) History() []Command {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Command, len(d.history))
	copy(out, d.history)
	return out
}

func (d *DryRun) TakeOff(ctx context.Context) error { return d.record(Command{Kind: TakeOff}) }
func (d *DryRun) Land(ctx context.Context) error    { return d.record(Command{Kind: Land}) }

func (d *DryRun) Move(ctx context.Context, dir Direction, cm int) error {
	return d.record(Move(dir, cm))
}

func (d *DryRun) Rotate(ctx context.Context, clockwise bool, deg int) error {
	return d.record(Rotate(clockwise, deg))
}

func (d *DryRun) Flip(ctx context.Context, dir FlipDirection) error {
	return d.record(FlipTo(dir))
}

func (d *DryRun) Battery(ctx context.Context) (int, error) { return d.battery, nil }
func (d *DryRun) StreamOn(ctx context.Context) error       { return nil }
func (d *DryRun) Close() error                             { return nil }

var _ Actuator = (*DryRun)(nil)
