package tracking

import "time"

// TuningParams holds the real-time adjustable tracking parameters.
// These can be modified via the tuning API without restarting a flight.
type TuningParams struct {
	// Target size
	TargetAreaFraction float64 `json:"target_area_fraction"`

	// Deadband
	ThreshXFrac    float64 `json:"thresh_x"`
	ThreshYFrac    float64 `json:"thresh_y"`
	ThreshAreaFrac float64 `json:"thresh_area"`

	// Depth response
	ScaleFactor float64 `json:"scale_factor"`
	MaxStep     int     `json:"max_step"`

	// Control rate
	ControlHz float64 `json:"control_hz"` // 1-20 Hz

	// Target class; nil leaves it unchanged since 0 is a real class
	TargetClass *int `json:"target_class,omitempty"`
}

// TuningParams returns current tuning parameters from the loop.
func (l *ControlLoop) TuningParams() TuningParams {
	cfg := l.Config()
	class := cfg.TargetClass
	return TuningParams{
		TargetAreaFraction: cfg.TargetAreaFraction,
		ThreshXFrac:        cfg.ThreshXFrac,
		ThreshYFrac:        cfg.ThreshYFrac,
		ThreshAreaFrac:     cfg.ThreshAreaFrac,
		ScaleFactor:        cfg.ScaleFactor,
		MaxStep:            cfg.MaxStep,
		ControlHz:          1.0 / cfg.ControlInterval.Seconds(),
		TargetClass:        &class,
	}
}

// SetTuningParams updates tuning parameters at runtime.
// Only non-zero values are applied. The result is validated as a whole and
// rejected without partial effect if it is invalid.
func (l *ControlLoop) SetTuningParams(params TuningParams) error {
	l.mu.Lock()
	cfg := l.config

	if params.TargetAreaFraction > 0 {
		cfg.TargetAreaFraction = params.TargetAreaFraction
	}
	if params.ThreshXFrac > 0 {
		cfg.ThreshXFrac = params.ThreshXFrac
	}
	if params.ThreshYFrac > 0 {
		cfg.ThreshYFrac = params.ThreshYFrac
	}
	if params.ThreshAreaFrac > 0 {
		cfg.ThreshAreaFrac = params.ThreshAreaFrac
	}
	if params.ScaleFactor > 0 {
		cfg.ScaleFactor = params.ScaleFactor
	}
	if params.MaxStep > 0 {
		cfg.MaxStep = params.MaxStep
	}
	if params.TargetClass != nil {
		cfg.TargetClass = *params.TargetClass
	}
	if params.ControlHz > 0 {
		cfg.ControlInterval = controlInterval(params.ControlHz)
	}

	if err := cfg.Validate(); err != nil {
		l.mu.Unlock()
		return err
	}

	changed := cfg.ControlInterval != l.config.ControlInterval
	l.config = cfg
	l.mu.Unlock()

	if changed {
		l.setControlInterval(cfg.ControlInterval)
	}
	return nil
}

// controlInterval converts a rate to a period.
// Valid range: 1-20 Hz (50ms to 1000ms interval)
func controlInterval(hz float64) time.Duration {
	if hz < 1 {
		hz = 1
	}
	if hz > 20 {
		hz = 20
	}
	return time.Duration(float64(time.Second) / hz)
}

func (l *ControlLoop) setControlInterval(d time.Duration) {
	// Replace any pending update so the latest rate wins
	select {
	case <-l.intervalSet:
	default:
	}
	select {
	case l.intervalSet <- d:
	default:
	}
}
