package tracking

// FrameGeometry is the processing resolution detections are expressed in.
// It is fixed for a session.
type FrameGeometry struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// DefaultGeometry is the Tello's native 960x720 stream.
func DefaultGeometry() FrameGeometry {
	return FrameGeometry{Width: 960, Height: 720}
}

// Valid reports whether both dimensions are positive.
func (g FrameGeometry) Valid() bool {
	return g.Width > 0 && g.Height > 0
}

// Center returns the frame center in pixels.
func (g FrameGeometry) Center() (x, y float64) {
	return float64(g.Width) / 2, float64(g.Height) / 2
}

// Area returns the frame area in square pixels.
func (g FrameGeometry) Area() float64 {
	return float64(g.Width) * float64(g.Height)
}
