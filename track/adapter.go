package track

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/vidroto/vidroto"
	"github.com/vidroto/vidroto/detect"
)

// DetectionTracker binds a per-frame object detector to an identity
// Tracker, forming the pipeline's multi-object tracking capability.
// Identity continuity lives in the embedded Tracker, so one
// DetectionTracker must be constructed per video run.
type DetectionTracker struct {
	detector detect.Detector
	tracker  *Tracker
}

// NewDetectionTracker wires a detector to a fresh identity tracker.
func NewDetectionTracker(detector detect.Detector, cfg Config) *DetectionTracker {
	return &DetectionTracker{
		detector: detector,
		tracker:  NewTracker(cfg),
	}
}

// Track detects objects in the frame and resolves their identities. An
// empty result means nothing was detected.
func (dt *DetectionTracker) Track(frame gocv.Mat) ([]vidroto.Detection, error) {
	objects, err := dt.detector.Detect(frame)

	if err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}

	observations := make([]Observation, len(objects))

	for i, obj := range objects {
		observations[i] = Observation{
			Rect: RectFromBounds(
				float32(obj.Box.Min.X), float32(obj.Box.Min.Y),
				float32(obj.Box.Max.X), float32(obj.Box.Max.Y)),
			Class: obj.Class,
			Score: obj.Score,
		}
	}

	tracks, err := dt.tracker.Update(observations)

	if err != nil {
		return nil, fmt.Errorf("update tracks: %w", err)
	}

	classes := dt.detector.Classes()
	detections := make([]vidroto.Detection, len(tracks))

	for i, tr := range tracks {
		label := ""

		if tr.Class >= 0 && tr.Class < len(classes) {
			label = classes[tr.Class]
		}

		detections[i] = vidroto.Detection{
			ID: tr.ID,
			Box: image.Rect(
				int(tr.Rect.X), int(tr.Rect.Y),
				int(tr.Rect.BRX()), int(tr.Rect.BRY())),
			Label: label,
			Score: tr.Score,
		}
	}

	return detections, nil
}
