// Package segment provides region conditioned segmentation bindings for the
// pipeline's segmenter capability.
package segment

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// DefaultGrabCutIterations balances matte quality against per-frame cost.
const DefaultGrabCutIterations = 5

// GrabCut extracts a foreground mask from a bounding box seed using
// OpenCV's GrabCut. It needs no model weights, which makes it the default
// segmentation backend.
type GrabCut struct {
	iterations int
}

// NewGrabCut returns a GrabCut segmenter. iterations <= 0 selects the
// default.
func NewGrabCut(iterations int) *GrabCut {
	if iterations <= 0 {
		iterations = DefaultGrabCutIterations
	}

	return &GrabCut{iterations: iterations}
}

// Segment runs GrabCut seeded by region and returns a full-frame binary
// mask with foreground pixels at 255. ok is false when nothing inside the
// region was classified as foreground.
func (g *GrabCut) Segment(frame gocv.Mat, region image.Rectangle) (gocv.Mat, bool, error) {
	mask := gocv.NewMatWithSize(frame.Rows(), frame.Cols(), gocv.MatTypeCV8U)
	defer mask.Close()

	bgdModel := gocv.NewMat()
	defer bgdModel.Close()

	fgdModel := gocv.NewMat()
	defer fgdModel.Close()

	gocv.GrabCut(frame, &mask, region, &bgdModel, &fgdModel,
		g.iterations, gocv.GCInitWithRect)

	// GrabCut classes: 0 background, 1 foreground, 2 probable background,
	// 3 probable foreground
	classes := mask.ToBytes()
	alpha := make([]byte, len(classes))
	foreground := 0

	for i, c := range classes {
		if c == 1 || c == 3 {
			alpha[i] = 255
			foreground++
		}
	}

	if foreground == 0 {
		return gocv.Mat{}, false, nil
	}

	out, err := gocv.NewMatFromBytes(frame.Rows(), frame.Cols(),
		gocv.MatTypeCV8U, alpha)

	if err != nil {
		return gocv.Mat{}, false, fmt.Errorf("build grabcut mask: %w", err)
	}

	return out, true, nil
}
