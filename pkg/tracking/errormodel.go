package tracking

import (
	"fmt"

	"github.com/teslashibe/go-dronetrack/pkg/tracking/detection"
)

// ErrZeroDesiredArea is returned when the target size works out to nothing.
// It wraps ErrInvalidConfig.
var ErrZeroDesiredArea = fmt.Errorf("%w: desired area is zero", ErrInvalidConfig)

// ErrorSignal is how far the primary detection is from where it should be.
// Positive ErrorX means the target is right of center, positive ErrorY
// below center, positive ErrorArea too close.
type ErrorSignal struct {
	ErrorX      float64 `json:"error_x"`
	ErrorY      float64 `json:"error_y"`
	ErrorArea   float64 `json:"error_area"`
	DesiredArea float64 `json:"desired_area"`
}

// ComputeError maps a detection to an ErrorSignal for the given frame.
func ComputeError(box detection.Box, g FrameGeometry, targetAreaFraction float64) (ErrorSignal, error) {
	desired := targetAreaFraction * g.Area()
	if desired <= 0 {
		return ErrorSignal{}, ErrZeroDesiredArea
	}

	cx, cy := box.Center()
	fx, fy := g.Center()

	return ErrorSignal{
		ErrorX:      cx - fx,
		ErrorY:      cy - fy,
		ErrorArea:   box.Area() - desired,
		DesiredArea: desired,
	}, nil
}
