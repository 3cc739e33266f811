package segment

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// DefaultDNNInputSize is the square input resolution mask models are fed at.
const DefaultDNNInputSize = 320

// DNN segments the padded bounding box region with an ONNX mask model run
// through the gocv DNN module. The model is expected to map an RGB crop to
// a single channel probability map in [1, 1, H, W] layout, as salient
// object segmentation exports do.
type DNN struct {
	net       gocv.Net
	inputSize int
}

// NewDNN loads the mask model from an ONNX file.
func NewDNN(modelPath string) (*DNN, error) {
	net := gocv.ReadNetFromONNX(modelPath)

	if net.Empty() {
		return nil, fmt.Errorf("load ONNX model %s: empty network", modelPath)
	}

	return &DNN{
		net:       net,
		inputSize: DefaultDNNInputSize,
	}, nil
}

// Close releases the underlying network.
func (d *DNN) Close() error {
	return d.net.Close()
}

// Segment crops the region out of the frame, runs the mask model on it and
// returns the probability map scaled to 0..255 at the model's output
// resolution. The mask is region aligned, the caller places it back into
// frame space. ok is false when the model produced no foreground at all.
func (d *DNN) Segment(frame gocv.Mat, region image.Rectangle) (gocv.Mat, bool, error) {
	crop := frame.Region(region)
	defer crop.Close()

	blob := gocv.BlobFromImage(crop, 1.0/255.0,
		image.Pt(d.inputSize, d.inputSize),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")

	out := d.net.Forward("")
	defer out.Close()

	dims := out.Size()

	if len(dims) != 4 || dims[1] != 1 {
		return gocv.Mat{}, false, fmt.Errorf("unexpected mask tensor shape %v", dims)
	}

	height := dims[2]
	width := dims[3]

	probs, err := out.DataPtrFloat32()

	if err != nil {
		return gocv.Mat{}, false, fmt.Errorf("read mask tensor: %w", err)
	}

	alpha := make([]byte, height*width)
	foreground := 0

	for i, p := range probs[:height*width] {
		if p <= 0 {
			continue
		}

		if p > 1 {
			p = 1
		}

		alpha[i] = uint8(p * 255)

		if alpha[i] > 0 {
			foreground++
		}
	}

	if foreground == 0 {
		return gocv.Mat{}, false, nil
	}

	mask, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8U, alpha)

	if err != nil {
		return gocv.Mat{}, false, fmt.Errorf("build mask: %w", err)
	}

	return mask, true, nil
}
