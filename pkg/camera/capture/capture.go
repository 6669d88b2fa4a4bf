// Package capture reads the drone video stream with OpenCV and publishes
// JPEG frames into a camera.Buffer.
package capture

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strconv"
	"time"

	"github.com/teslashibe/go-dronetrack/pkg/camera"
	"gocv.io/x/gocv"
)

// Capture pulls frames from a VideoCapture as fast as they arrive. Only the
// newest frame is kept; consumers never block the reader.
type Capture struct {
	cfg    camera.Config
	vc     *gocv.VideoCapture
	buf    *camera.Buffer
	logger *slog.Logger
}

// Open opens the configured source. Numeric sources are treated as local
// device indexes, everything else as a URL or file path.
func Open(cfg camera.Config, logger *slog.Logger) (*Capture, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid camera config: %v", errs)
	}
	if logger == nil {
		logger = slog.Default()
	}

	var (
		vc  *gocv.VideoCapture
		err error
	)
	if id, convErr := strconv.Atoi(cfg.Source); convErr == nil {
		vc, err = gocv.VideoCaptureDevice(id)
	} else {
		vc, err = gocv.VideoCaptureFile(cfg.Source)
	}
	if err != nil {
		return nil, fmt.Errorf("open video source %s: %w", cfg.Source, err)
	}

	return &Capture{
		cfg:    cfg,
		vc:     vc,
		buf:    camera.NewBuffer(),
		logger: logger,
	}, nil
}

// Latest implements camera.Source.
func (c *Capture) Latest() (camera.Frame, bool) {
	return c.buf.Latest()
}

// Run reads frames until ctx is cancelled or the stream ends.
func (c *Capture) Run(ctx context.Context) error {
	img := gocv.NewMat()
	defer img.Close()
	resized := gocv.NewMat()
	defer resized.Close()

	size := image.Pt(c.cfg.Width, c.cfg.Height)
	params := []int{gocv.IMWriteJpegQuality, c.cfg.Quality}
	misses := 0

	for {
		if ctx.Err() != nil {
			return nil
		}

		if ok := c.vc.Read(&img); !ok || img.Empty() {
			misses++
			if misses == 1 || misses%100 == 0 {
				c.logger.Warn("no frame from video source", "source", c.cfg.Source, "misses", misses)
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(20 * time.Millisecond):
			}
			continue
		}
		misses = 0

		out := img
		if img.Cols() != size.X || img.Rows() != size.Y {
			gocv.Resize(img, &resized, size, 0, 0, gocv.InterpolationLinear)
			out = resized
		}

		nb, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, out, params)
		if err != nil {
			c.logger.Warn("jpeg encode failed", "error", err)
			continue
		}
		jpeg := append([]byte(nil), nb.GetBytes()...)
		nb.Close()

		c.buf.Put(camera.Frame{
			JPEG:     jpeg,
			Width:    size.X,
			Height:   size.Y,
			Captured: time.Now(),
		})
	}
}

// Close releases the video source. Call after Run has returned.
func (c *Capture) Close() error {
	return c.vc.Close()
}

var _ camera.Source = (*Capture)(nil)
