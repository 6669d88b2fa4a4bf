// Package display draws overlays with OpenCV and shows them in a local window.
package display

import (
	"fmt"
	"image"
	"image/color"

	"github.com/teslashibe/go-dronetrack/pkg/camera"
	"github.com/teslashibe/go-dronetrack/pkg/render"
	"github.com/teslashibe/go-dronetrack/pkg/tracking/detection"
	"gocv.io/x/gocv"
)

var (
	boxColor     = color.RGBA{0, 255, 0, 255}
	primaryColor = color.RGBA{255, 0, 255, 255}
	centerColor  = color.RGBA{255, 255, 255, 255}
	idleColor    = color.RGBA{0, 200, 255, 255}
)

// Annotator draws detection boxes, the frame center and a status line.
type Annotator struct {
	Quality int // JPEG quality of the output
}

// NewAnnotator creates an annotator that encodes at the given JPEG quality.
func NewAnnotator(quality int) *Annotator {
	if quality <= 0 || quality > 100 {
		quality = 80
	}
	return &Annotator{Quality: quality}
}

// Render implements render.Renderer.
func (a *Annotator) Render(frame camera.Frame, overlay render.Overlay) (camera.Frame, error) {
	img, err := gocv.IMDecode(frame.JPEG, gocv.IMReadColor)
	if err != nil {
		return camera.Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	defer img.Close()
	if img.Empty() {
		return camera.Frame{}, fmt.Errorf("empty frame")
	}

	a.draw(&img, overlay)

	nb, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, img, []int{gocv.IMWriteJpegQuality, a.Quality})
	if err != nil {
		return camera.Frame{}, fmt.Errorf("encode frame: %w", err)
	}
	defer nb.Close()

	out := frame
	out.JPEG = append([]byte(nil), nb.GetBytes()...)
	return out, nil
}

func (a *Annotator) draw(img *gocv.Mat, overlay render.Overlay) {
	w, h := img.Cols(), img.Rows()

	// Frame center crosshair
	cx, cy := w/2, h/2
	gocv.Line(img, image.Pt(cx-10, cy), image.Pt(cx+10, cy), centerColor, 1)
	gocv.Line(img, image.Pt(cx, cy-10), image.Pt(cx, cy+10), centerColor, 1)

	primary, hasPrimary := detection.Primary(overlay.Tracking.Detections)

	for _, b := range overlay.Tracking.Detections {
		rect := image.Rect(int(b.X1), int(b.Y1), int(b.X2), int(b.Y2))
		c := boxColor
		if hasPrimary && b == primary {
			c = primaryColor
			bx, by := b.Center()
			gocv.Line(img, image.Pt(cx, cy), image.Pt(int(bx), int(by)), primaryColor, 1)
		}
		gocv.Rectangle(img, rect, c, 2)

		label := fmt.Sprintf("%s %.0f%%", detection.ClassName(b.ClassID), b.Confidence*100)
		labelPos := image.Pt(rect.Min.X, rect.Min.Y-8)
		if labelPos.Y < 15 {
			labelPos.Y = rect.Max.Y + 20
		}
		gocv.PutText(img, label, labelPos, gocv.FontHersheySimplex, 0.5, c, 1)
	}

	mode, modeColor := "IDLE", idleColor
	if overlay.Tracking.Enabled {
		mode, modeColor = "TRACKING", boxColor
	}
	gocv.PutText(img, mode, image.Pt(10, 30), gocv.FontHersheySimplex, 0.8, modeColor, 2)
	if overlay.Status != "" {
		gocv.PutText(img, overlay.Status, image.Pt(10, h-15), gocv.FontHersheySimplex, 0.5, centerColor, 1)
	}
}

var _ render.Renderer = (*Annotator)(nil)
