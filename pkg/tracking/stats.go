package tracking

import "sync/atomic"

// Stats counts control loop activity since start.
type Stats struct {
	Ticks            uint64 `json:"ticks"`
	IdleTicks        uint64 `json:"idle_ticks"`
	FramesSkipped    uint64 `json:"frames_skipped"`
	Detections       uint64 `json:"detections"` // Ticks with a primary target
	DetectorFailures uint64 `json:"detector_failures"`
	DetectorTimeouts uint64 `json:"detector_timeouts"`
	CommandsPlanned  uint64 `json:"commands_planned"`
	CommandsRejected uint64 `json:"commands_rejected"`
}

type counters struct {
	ticks            atomic.Uint64
	idleTicks        atomic.Uint64
	framesSkipped    atomic.Uint64
	detections       atomic.Uint64
	detectorFailures atomic.Uint64
	detectorTimeouts atomic.Uint64
	commandsPlanned  atomic.Uint64
	commandsRejected atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Ticks:            c.ticks.Load(),
		IdleTicks:        c.idleTicks.Load(),
		FramesSkipped:    c.framesSkipped.Load(),
		Detections:       c.detections.Load(),
		DetectorFailures: c.detectorFailures.Load(),
		DetectorTimeouts: c.detectorTimeouts.Load(),
		CommandsPlanned:  c.commandsPlanned.Load(),
		CommandsRejected: c.commandsRejected.Load(),
	}
}
