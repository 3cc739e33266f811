package detect

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

const (
	// DefaultInputSize is the square tensor size YOLO exports use.
	DefaultInputSize = 640
	// DefaultNMSThreshold is the IoU threshold for non-maximum suppression.
	DefaultNMSThreshold = 0.45
)

// YOLOConfig configures a YOLO ONNX detector.
type YOLOConfig struct {
	// ModelPath is the ONNX model file.
	ModelPath string
	// Classes are the class names the model was trained on, see LoadLabels.
	Classes []string
	// ConfThreshold drops detections scoring below it.
	ConfThreshold float32
	// NMSThreshold is the non-maximum suppression IoU threshold. Defaults
	// to DefaultNMSThreshold when 0.
	NMSThreshold float32
	// InputSize is the square model input size. Defaults to
	// DefaultInputSize when 0.
	InputSize int
}

// YOLO runs a YOLOv8-style ONNX detection model through the gocv DNN
// module. Output tensors are expected in [1, 4+classes, anchors] layout
// with xywh box encoding.
type YOLO struct {
	net       gocv.Net
	classes   []string
	inputSize int
	conf      float32
	nms       float32
}

// NewYOLO loads the model and prepares it for inference.
func NewYOLO(cfg YOLOConfig) (*YOLO, error) {
	net := gocv.ReadNetFromONNX(cfg.ModelPath)

	if net.Empty() {
		return nil, fmt.Errorf("load ONNX model %s: empty network", cfg.ModelPath)
	}

	y := &YOLO{
		net:       net,
		classes:   cfg.Classes,
		inputSize: cfg.InputSize,
		conf:      cfg.ConfThreshold,
		nms:       cfg.NMSThreshold,
	}

	if y.inputSize <= 0 {
		y.inputSize = DefaultInputSize
	}

	if y.nms <= 0 {
		y.nms = DefaultNMSThreshold
	}

	return y, nil
}

// Classes returns the detector's class names.
func (y *YOLO) Classes() []string {
	return y.classes
}

// Close releases the underlying network.
func (y *YOLO) Close() error {
	return y.net.Close()
}

// Detect runs inference on one frame and returns the confidence filtered,
// NMS reduced detections in frame pixel coordinates.
func (y *YOLO) Detect(img gocv.Mat) ([]Object, error) {
	blob := gocv.BlobFromImage(img, 1.0/255.0,
		image.Pt(y.inputSize, y.inputSize),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	y.net.SetInput(blob, "")

	out := y.net.Forward("")
	defer out.Close()

	// frames are resized to the square input without letterboxing, so the
	// two axes scale back independently
	scaleX := float32(img.Cols()) / float32(y.inputSize)
	scaleY := float32(img.Rows()) / float32(y.inputSize)

	return y.decode(out, scaleX, scaleY)
}

// decode reads the [1, 4+classes, anchors] output tensor, keeps the best
// class per anchor above the confidence threshold and applies NMS.
func (y *YOLO) decode(out gocv.Mat, scaleX, scaleY float32) ([]Object, error) {
	dims := out.Size()

	if len(dims) != 3 {
		return nil, fmt.Errorf("unexpected output tensor shape %v", dims)
	}

	rows := dims[1]
	anchors := dims[2]

	m := out.Reshape(1, rows)
	defer m.Close()

	var (
		boxes   []image.Rectangle
		scores  []float32
		classes []int
	)

	for a := 0; a < anchors; a++ {

		best := float32(0)
		bestClass := -1

		for r := 4; r < rows; r++ {
			if s := m.GetFloatAt(r, a); s > best {
				best = s
				bestClass = r - 4
			}
		}

		if bestClass < 0 || best < y.conf {
			continue
		}

		cx := m.GetFloatAt(0, a)
		cy := m.GetFloatAt(1, a)
		w := m.GetFloatAt(2, a)
		h := m.GetFloatAt(3, a)

		boxes = append(boxes, image.Rect(
			int((cx-w/2)*scaleX),
			int((cy-h/2)*scaleY),
			int((cx+w/2)*scaleX),
			int((cy+h/2)*scaleY)))
		scores = append(scores, best)
		classes = append(classes, bestClass)
	}

	if len(boxes) == 0 {
		return nil, nil
	}

	keep := gocv.NMSBoxes(boxes, scores, y.conf, y.nms)

	objects := make([]Object, 0, len(keep))

	for _, i := range keep {
		objects = append(objects, Object{
			Box:   boxes[i],
			Class: classes[i],
			Score: scores[i],
		})
	}

	return objects, nil
}
