package vidroto

import (
	"image"
	"testing"

	"gocv.io/x/gocv"
)

// sliceSource is a FrameSource over pre-built Mats. total is the frame
// count hint it reports, which may deliberately disagree with the number of
// frames it actually yields.
type sliceSource struct {
	frames []gocv.Mat
	total  int
	fps    float64
	pos    int
}

func (s *sliceSource) Next(dst *gocv.Mat) (int, bool) {
	if s.pos >= len(s.frames) {
		return 0, false
	}

	s.frames[s.pos].CopyTo(dst)
	s.pos++

	return s.pos, true
}

func (s *sliceSource) FrameCount() int { return s.total }

func (s *sliceSource) FPS() float64 {
	if s.fps == 0 {
		return 30
	}

	return s.fps
}

// newTestSource builds a source of n solid-color BGR frames.
func newTestSource(t *testing.T, n, width, height int) *sliceSource {
	t.Helper()

	frames := make([]gocv.Mat, n)

	for i := range frames {
		frames[i] = gocv.NewMatWithSizeFromScalar(
			gocv.NewScalar(40, 80, 120, 0), height, width, gocv.MatTypeCV8UC3)
	}

	t.Cleanup(func() {
		for i := range frames {
			frames[i].Close()
		}
	})

	return &sliceSource{frames: frames, total: n}
}

// scriptedTracker replays a fixed detection list per frame.
type scriptedTracker struct {
	perFrame [][]Detection
	calls    int
}

func (st *scriptedTracker) Track(frame gocv.Mat) ([]Detection, error) {
	defer func() { st.calls++ }()

	if st.calls >= len(st.perFrame) {
		return nil, nil
	}

	return st.perFrame[st.calls], nil
}

// everyFrame scripts the same detections for n frames.
func everyFrame(n int, dets ...Detection) [][]Detection {
	frames := make([][]Detection, n)

	for i := range frames {
		frames[i] = dets
	}

	return frames
}

// stubSegmenter produces a full-coverage full-frame mask for the call
// indexes listed in maskOn (1-based). A nil maskOn means every call.
type stubSegmenter struct {
	maskOn  map[int]bool
	regions []image.Rectangle
	calls   int
}

func (ss *stubSegmenter) Segment(frame gocv.Mat, region image.Rectangle) (gocv.Mat, bool, error) {
	ss.calls++
	ss.regions = append(ss.regions, region)

	if ss.maskOn != nil && !ss.maskOn[ss.calls] {
		return gocv.Mat{}, false, nil
	}

	alpha := make([]byte, frame.Rows()*frame.Cols())

	for i := range alpha {
		alpha[i] = 255
	}

	mask, err := gocv.NewMatFromBytes(frame.Rows(), frame.Cols(),
		gocv.MatTypeCV8U, alpha)

	if err != nil {
		return gocv.Mat{}, false, err
	}

	return mask, true, nil
}

// regionSegmenter returns a fixed-size full-coverage mask that is smaller
// than the frame, exercising the region placement path.
type regionSegmenter struct {
	maskW, maskH int
}

func (rs *regionSegmenter) Segment(frame gocv.Mat, region image.Rectangle) (gocv.Mat, bool, error) {
	alpha := make([]byte, rs.maskW*rs.maskH)

	for i := range alpha {
		alpha[i] = 255
	}

	mask, err := gocv.NewMatFromBytes(rs.maskH, rs.maskW, gocv.MatTypeCV8U, alpha)

	if err != nil {
		return gocv.Mat{}, false, err
	}

	return mask, true, nil
}
