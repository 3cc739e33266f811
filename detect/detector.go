// Package detect provides per-frame object detection used to feed the
// identity tracker.
package detect

import (
	"bufio"
	"fmt"
	"image"
	"os"
	"strings"

	"gocv.io/x/gocv"
)

// Object is a single detection within one frame, before any identity has
// been assigned.
type Object struct {
	// Box is the bounding box in frame pixel coordinates.
	Box image.Rectangle
	// Class is the index into the detector's class name list.
	Class int
	// Score is the detection confidence.
	Score float32
}

// Detector finds objects in a single frame.
type Detector interface {
	Detect(img gocv.Mat) ([]Object, error)
	// Classes returns the class names the detector was trained on, indexed
	// by Object.Class.
	Classes() []string
}

// LoadLabels reads the class names the model was trained on from the given
// text file, one label per line.
func LoadLabels(file string) ([]string, error) {
	f, err := os.Open(file)

	if err != nil {
		return nil, fmt.Errorf("open labels file: %w", err)
	}

	defer f.Close()

	scanner := bufio.NewScanner(f)

	var labels []string

	for scanner.Scan() {
		labels = append(labels, strings.TrimSpace(scanner.Text()))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read labels file: %w", err)
	}

	return labels, nil
}
