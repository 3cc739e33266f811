// Package video provides sequential video decoding and lazily created video
// writing on top of gocv.
package video

import (
	"fmt"

	"gocv.io/x/gocv"
)

// DefaultFPS is used when the container does not report a frame rate.
const DefaultFPS = 30.0

// Source decodes a video file frame by frame. It is sequential only and
// keeps its own 1-based frame counter, which is the counter output
// filenames are derived from.
type Source struct {
	cap   *gocv.VideoCapture
	index int
}

// OpenFile opens a video file for sequential decoding. Unopenable input is
// an explicit error rather than an empty source.
func OpenFile(path string) (*Source, error) {
	cap, err := gocv.VideoCaptureFile(path)

	if err != nil {
		return nil, fmt.Errorf("open video %s: %w", path, err)
	}

	return &Source{cap: cap}, nil
}

// Next decodes the next frame into dst and returns its 1-based index.
// Empty decoded frames are skipped without consuming an index. ok is false
// at end of stream.
func (s *Source) Next(dst *gocv.Mat) (int, bool) {
	for {
		if ok := s.cap.Read(dst); !ok {
			return 0, false
		}

		if dst.Empty() {
			continue
		}

		s.index++

		return s.index, true
	}
}

// FrameCount returns the container's reported total frame count. Containers
// with absent or broken metadata report 0, callers must treat the value as
// a hint.
func (s *Source) FrameCount() int {
	n := int(s.cap.Get(gocv.VideoCaptureFrameCount))

	if n < 0 {
		n = 0
	}

	return n
}

// FPS returns the container frame rate or DefaultFPS when unavailable.
func (s *Source) FPS() float64 {
	fps := s.cap.Get(gocv.VideoCaptureFPS)

	if fps <= 0 {
		return DefaultFPS
	}

	return fps
}

// Close releases the underlying capture handle.
func (s *Source) Close() error {
	return s.cap.Close()
}
