package vidroto

import (
	"errors"
	"image"

	"gocv.io/x/gocv"
)

// ErrNoFrames is returned by Analyze and ExportAlpha when the frame source
// yields no frames at all, which usually means the input file is empty,
// truncated, or not a video.
var ErrNoFrames = errors.New("vidroto: no frames decoded from source")

// Detection is one tracked object observed in a single frame. Detections are
// produced fresh per frame and are never mutated after being returned.
type Detection struct {
	// ID is the tracker assigned identity, stable across frames for the
	// same physical object as long as the same Tracker instance is used.
	ID int64
	// Box is the bounding box in frame pixel coordinates.
	Box image.Rectangle
	// Label is the class name of the detected object.
	Label string
	// Score is the detection confidence.
	Score float32
}

// Tracker is the multi-object tracking capability. Track must be called on
// the same instance for every frame of one video, identity continuity is
// state owned by the instance. An empty result slice means nothing was
// detected in the frame and is not an error.
type Tracker interface {
	Track(frame gocv.Mat) ([]Detection, error)
}

// Segmenter is the region conditioned segmentation capability. Segment
// returns a single channel 8-bit mask whose values are per-pixel weights
// scaled to 0..255. The mask is either sized to the full frame or sized to
// the segmenter's own working resolution, in which case it is spatially
// aligned to the given region. ok reports whether a mask was produced,
// absence is a normal outcome and not an error. When ok is true the caller
// owns the returned Mat and must Close it.
type Segmenter interface {
	Segment(frame gocv.Mat, region image.Rectangle) (mask gocv.Mat, ok bool, err error)
}

// FrameSource yields video frames in decode order. Sources are sequential
// only, there is no seek or rewind.
type FrameSource interface {
	// Next decodes the next frame into dst and returns its 1-based index.
	// ok is false once the source is exhausted.
	Next(dst *gocv.Mat) (index int, ok bool)
	// FrameCount returns the container's total frame count. The value is a
	// hint only and may be 0 when the metadata is missing or unreliable.
	FrameCount() int
	// FPS returns the source frame rate, falling back to a default when
	// the container does not report one.
	FPS() float64
}
