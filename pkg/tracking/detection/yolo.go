package detection

import (
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/teslashibe/go-dronetrack/pkg/debug"
	"gocv.io/x/gocv"
)

// YOLODetector uses YOLOv8 for general object detection
type YOLODetector struct {
	net       gocv.Net
	config    Config
	mu        sync.Mutex
	inputSize image.Point
}

// NewYOLO creates a new YOLO object detector
func NewYOLO(cfg Config) (*YOLODetector, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", cfg.ModelPath)
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load YOLO model from %s", cfg.ModelPath)
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &YOLODetector{
		net:       net,
		config:    cfg,
		inputSize: image.Pt(cfg.InputWidth, cfg.InputHeight),
	}, nil
}

// Detect finds objects in the JPEG image. Boxes are in image pixels,
// ordered by NMS output.
func (d *YOLODetector) Detect(jpeg []byte) ([]Box, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	img, err := gocv.IMDecode(jpeg, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	defer img.Close()

	if img.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	imgW := float32(img.Cols())
	imgH := float32(img.Rows())

	blob := gocv.BlobFromImage(img, 1.0/255.0, d.inputSize, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")

	output := d.net.Forward("")
	defer output.Close()

	boxes := d.parseOutput(output, imgW, imgH)
	if len(boxes) > 0 {
		debug.TrackLog("🔍 YOLO found %d object(s)\n", len(boxes))
	}
	return boxes, nil
}

// parseOutput decodes a [1, 84, 8400] YOLOv8 tensor:
// 4 box values (cx, cy, w, h) followed by 80 class scores per candidate.
func (d *YOLODetector) parseOutput(output gocv.Mat, imgW, imgH float32) []Box {
	var rects []image.Rectangle
	var confidences []float32
	var classIDs []int

	sizes := output.Size()
	if len(sizes) < 3 {
		return nil
	}
	cols := sizes[1] // 84
	rows := sizes[2] // 8400

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil
	}

	thresh := float32(d.config.ConfidenceThresh)
	scaleX := imgW / float32(d.config.InputWidth)
	scaleY := imgH / float32(d.config.InputHeight)

	for i := 0; i < rows; i++ {
		maxScore := float32(0)
		maxClassID := 0
		for c := 4; c < cols; c++ {
			if score := data[c*rows+i]; score > maxScore {
				maxScore = score
				maxClassID = c - 4
			}
		}
		if maxScore < thresh {
			continue
		}

		cx := data[0*rows+i]
		cy := data[1*rows+i]
		w := data[2*rows+i]
		h := data[3*rows+i]

		rects = append(rects, image.Rect(
			int((cx-w/2)*scaleX),
			int((cy-h/2)*scaleY),
			int((cx+w/2)*scaleX),
			int((cy+h/2)*scaleY),
		))
		confidences = append(confidences, maxScore)
		classIDs = append(classIDs, maxClassID)
	}

	if len(rects) == 0 {
		return nil
	}

	indices := gocv.NMSBoxes(rects, confidences, thresh, float32(d.config.NMSThresh))

	boxes := make([]Box, 0, len(indices))
	for _, idx := range indices {
		r := rects[idx]
		boxes = append(boxes, Box{
			X1:         float64(r.Min.X),
			Y1:         float64(r.Min.Y),
			X2:         float64(r.Max.X),
			Y2:         float64(r.Max.Y),
			Confidence: float64(confidences[idx]),
			ClassID:    classIDs[idx],
		})
	}
	return boxes
}

// Close releases the detector resources
func (d *YOLODetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}
