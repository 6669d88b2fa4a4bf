package display

import (
	"context"
	"log/slog"

	"github.com/teslashibe/go-dronetrack/pkg/camera"
	"github.com/teslashibe/go-dronetrack/pkg/input"
	"gocv.io/x/gocv"
)

// Window shows annotated frames and reports key presses. OpenCV's HighGUI
// must be driven from the main goroutine, so Run is meant to be called there.
type Window struct {
	title  string
	frames *camera.Cursor
	logger *slog.Logger
}

// NewWindow creates a window that displays frames from src.
func NewWindow(title string, src camera.Source, logger *slog.Logger) *Window {
	if logger == nil {
		logger = slog.Default()
	}
	return &Window{
		title:  title,
		frames: camera.NewCursor(src),
		logger: logger,
	}
}

// Run shows frames until ctx is cancelled or onKey returns false.
func (w *Window) Run(ctx context.Context, onKey func(input.Event) bool) {
	win := gocv.NewWindow(w.title)
	defer win.Close()

	for ctx.Err() == nil {
		if frame, ok := w.frames.Next(); ok {
			w.show(win, frame)
		}

		code := win.WaitKey(10)
		if code < 0 {
			continue
		}
		name, ok := input.KeyName(code)
		if !ok {
			continue
		}
		if !onKey(input.Key(name)) {
			return
		}
	}
}

func (w *Window) show(win *gocv.Window, frame camera.Frame) {
	img, err := gocv.IMDecode(frame.JPEG, gocv.IMReadColor)
	if err != nil {
		w.logger.Debug("window decode failed", "error", err)
		return
	}
	defer img.Close()
	if !img.Empty() {
		win.IMShow(img)
	}
}
