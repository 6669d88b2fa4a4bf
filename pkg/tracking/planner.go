package tracking

import (
	"math"

	"github.com/teslashibe/go-dronetrack/pkg/drone"
)

// Thresholds is the deadband per axis. An axis emits a command only when
// its error magnitude is strictly greater than the threshold.
type Thresholds struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Area float64 `json:"area"`
}

// Plan turns an error signal into at most three commands, ordered lateral,
// vertical, depth. Each axis is decided independently.
func Plan(sig ErrorSignal, cfg *Config) []drone.Command {
	th := cfg.Thresholds()
	var cmds []drone.Command

	if math.Abs(sig.ErrorX) > th.X {
		kind := drone.MoveRight
		if sig.ErrorX < 0 {
			kind = drone.MoveLeft
		}
		cmds = append(cmds, drone.Move(kind, cfg.LateralStep))
	}

	if math.Abs(sig.ErrorY) > th.Y {
		kind := drone.MoveDown
		if sig.ErrorY < 0 {
			kind = drone.MoveUp
		}
		cmds = append(cmds, drone.Move(kind, cfg.VerticalStep))
	}

	if math.Abs(sig.ErrorArea) > th.Area {
		kind := drone.MoveForward
		if sig.ErrorArea > 0 {
			kind = drone.MoveBack
		}
		step := DepthStep(sig.ErrorArea, sig.DesiredArea, cfg.ScaleFactor, cfg.MinStep, cfg.MaxStep)
		cmds = append(cmds, drone.Move(kind, step))
	}

	return cmds
}

// DepthStep scales the relative size error into a distance in cm, clamped
// to [minStep, maxStep]. Fractions of a centimeter are truncated.
func DepthStep(errorArea, desiredArea, scale float64, minStep, maxStep int) int {
	if desiredArea <= 0 {
		return minStep
	}
	d := math.Abs(errorArea) / desiredArea * scale
	d = math.Max(float64(minStep), math.Min(float64(maxStep), d))
	return int(d)
}
