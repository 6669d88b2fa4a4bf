package detection

import "fmt"

// Model families understood by Open.
const (
	KindYOLO  = "yolo"
	KindYuNet = "yunet"
)

// Config holds detector configuration
type Config struct {
	Name             string  `yaml:"name" json:"name"`
	Kind             string  `yaml:"kind" json:"kind"` // "yolo" or "yunet"
	ModelPath        string  `yaml:"model_path" json:"model_path"`
	ConfidenceThresh float64 `yaml:"confidence" json:"confidence"`
	NMSThresh        float64 `yaml:"nms" json:"nms"`
	InputWidth       int     `yaml:"input_width" json:"input_width"`
	InputHeight      int     `yaml:"input_height" json:"input_height"`
}

// DefaultConfig returns production defaults for YOLOv8n on COCO
func DefaultConfig() Config {
	return Config{
		Name:             "Default",
		Kind:             KindYOLO,
		ModelPath:        "models/yolov8n.onnx",
		ConfidenceThresh: 0.5,
		NMSThresh:        0.45,
		InputWidth:       640,
		InputHeight:      640,
	}
}

// FaceConfig returns production defaults for YuNet face detection
func FaceConfig() Config {
	return Config{
		Name:             "Faces",
		Kind:             KindYuNet,
		ModelPath:        "models/face_detection_yunet.onnx",
		ConfidenceThresh: 0.5,
		NMSThresh:        0.3,
		InputWidth:       320,
		InputHeight:      320,
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.ModelPath == "" {
		return fmt.Errorf("model_path is required")
	}
	if c.ConfidenceThresh < 0 || c.ConfidenceThresh > 1 {
		return fmt.Errorf("confidence must be in [0,1], got %v", c.ConfidenceThresh)
	}
	if c.InputWidth <= 0 || c.InputHeight <= 0 {
		return fmt.Errorf("input size must be positive, got %dx%d", c.InputWidth, c.InputHeight)
	}
	return nil
}

// Open loads the detector described by cfg.
func Open(cfg Config) (Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid detector config: %w", err)
	}
	switch cfg.Kind {
	case KindYOLO, "":
		return NewYOLO(cfg)
	case KindYuNet:
		return NewYuNet(cfg)
	default:
		return nil, fmt.Errorf("unsupported detector kind: %q", cfg.Kind)
	}
}

// Slots builds lazily-opened Switchable slots from configs.
func Slots(cfgs []Config) []Slot {
	slots := make([]Slot, 0, len(cfgs))
	for _, cfg := range cfgs {
		cfg := cfg
		name := cfg.Name
		if name == "" {
			name = cfg.ModelPath
		}
		slots = append(slots, Slot{
			Name: name,
			Open: func() (Detector, error) { return Open(cfg) },
		})
	}
	return slots
}
