package detection

import "strconv"

// COCOClasses contains the 80 COCO class names, indexed by class id.
var COCOClasses = []string{
	"person", "bicycle", "car", "motorcycle", "airplane", "bus", "train", "truck", "boat",
	"traffic light", "fire hydrant", "stop sign", "parking meter", "bench", "bird", "cat",
	"dog", "horse", "sheep", "cow", "elephant", "bear", "zebra", "giraffe", "backpack",
	"umbrella", "handbag", "tie", "suitcase", "frisbee", "skis", "snowboard", "sports ball",
	"kite", "baseball bat", "baseball glove", "skateboard", "surfboard", "tennis racket",
	"bottle", "wine glass", "cup", "fork", "knife", "spoon", "bowl", "banana", "apple",
	"sandwich", "orange", "broccoli", "carrot", "hot dog", "pizza", "donut", "cake", "chair",
	"couch", "potted plant", "bed", "dining table", "toilet", "tv", "laptop", "mouse",
	"remote", "keyboard", "cell phone", "microwave", "oven", "toaster", "sink", "refrigerator",
	"book", "clock", "vase", "scissors", "teddy bear", "hair drier", "toothbrush",
}

// ClassName returns a human-readable label for a class id.
func ClassName(id int) string {
	switch {
	case id == FaceClass:
		return "face"
	case id >= 0 && id < len(COCOClasses):
		return COCOClasses[id]
	default:
		return "class " + strconv.Itoa(id)
	}
}

// ClassID looks up a class id by name. It returns AnyClass for "" or "any".
func ClassID(name string) (int, bool) {
	switch name {
	case "", "any":
		return AnyClass, true
	case "face":
		return FaceClass, true
	}
	for i, n := range COCOClasses {
		if n == name {
			return i, true
		}
	}
	return 0, false
}
