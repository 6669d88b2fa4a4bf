package drone

// Tello SDK 2.0 argument ranges. Values outside them are rejected by the
// drone with "error", so every command is clamped before it is sent.
const (
	MinDistanceCM = 20
	MaxDistanceCM = 500

	MinRotationDeg = 1
	MaxRotationDeg = 360
)

// ClampDistance forces a move distance into [MinDistanceCM, MaxDistanceCM].
func ClampDistance(cm int) int {
	return clampInt(cm, MinDistanceCM, MaxDistanceCM)
}

// ClampDegrees forces a rotation into [MinRotationDeg, MaxRotationDeg].
func ClampDegrees(deg int) int {
	return clampInt(deg, MinRotationDeg, MaxRotationDeg)
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
