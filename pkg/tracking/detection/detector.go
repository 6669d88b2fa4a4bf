// Package detection provides object detection backends for visual tracking.
package detection

import "errors"

// AnyClass disables class filtering.
const AnyClass = -1

// PersonClass is the COCO class id for "person".
const PersonClass = 0

// FaceClass is the class id reported by face-only detectors.
const FaceClass = 1000

var (
	// ErrTimeout is returned when a detector exceeds its latency budget.
	ErrTimeout = errors.New("detection: timeout")

	// ErrBusy is returned while a timed-out inference is still running.
	ErrBusy = errors.New("detection: previous inference still running")
)

// Box is one detector output in frame pixel coordinates.
type Box struct {
	X1, Y1, X2, Y2 float64
	Confidence     float64 // 0-1
	ClassID        int
}

// Center returns the center point of the box.
func (b Box) Center() (x, y float64) {
	return (b.X1 + b.X2) / 2, (b.Y1 + b.Y2) / 2
}

// Width returns the horizontal extent of the box.
func (b Box) Width() float64 {
	return b.X2 - b.X1
}

// Height returns the vertical extent of the box.
func (b Box) Height() float64 {
	return b.Y2 - b.Y1
}

// Area returns the area of the box in square pixels.
func (b Box) Area() float64 {
	return b.Width() * b.Height()
}

// Valid reports whether the corners are ordered.
func (b Box) Valid() bool {
	return b.X2 >= b.X1 && b.Y2 >= b.Y1
}

// Detector is the interface for detection backends.
type Detector interface {
	// Detect finds objects in the JPEG image, in detector output order
	Detect(jpeg []byte) ([]Box, error)

	// Close releases resources
	Close() error
}

// Primary returns the box that drives the control law: the first one in
// detector output order. Invalid boxes are skipped.
func Primary(boxes []Box) (Box, bool) {
	for _, b := range boxes {
		if b.Valid() {
			return b, true
		}
	}
	return Box{}, false
}

// FilterClass keeps only boxes of the given class, preserving order.
// AnyClass returns the input unchanged.
func FilterClass(boxes []Box, classID int) []Box {
	if classID == AnyClass {
		return boxes
	}
	var filtered []Box
	for _, b := range boxes {
		if b.ClassID == classID {
			filtered = append(filtered, b)
		}
	}
	return filtered
}
