package vidroto

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/vidroto/vidroto/render"
	"github.com/vidroto/vidroto/video"
)

// TrackRecord accumulates what has been seen for one track identity. Label
// holds the last observed class name and Frames the number of distinct
// frames the identity appeared in.
type TrackRecord struct {
	Label  string `json:"label"`
	Frames int    `json:"frames"`
}

// TrackStats maps track identity to its accumulated record. Records are
// created on first sighting and never evicted during a run.
type TrackStats map[int64]TrackRecord

// WriteJSON persists the statistics as an indented UTF-8 JSON document.
func (ts TrackStats) WriteJSON(path string) error {
	data, err := json.MarshalIndent(ts, "", "  ")

	if err != nil {
		return fmt.Errorf("marshal track stats: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write track stats: %w", err)
	}

	return nil
}

// AnalyzeOptions configures an analysis run.
type AnalyzeOptions struct {
	// Annotated enables writing a video with detection overlays.
	Annotated bool
	// AnnotatedPath is the output file for the annotated video. Required
	// when Annotated is set.
	AnnotatedPath string
	// FourCC is the four-character codec tag for the annotated writer.
	// Defaults to "mp4v".
	FourCC string
	// Progress is an optional per-frame observer.
	Progress AnalyzeProgress
}

// DefaultFourCC is the codec tag used for annotated output when none is
// configured.
const DefaultFourCC = "mp4v"

// Analyze runs the tracker over every frame of src and accumulates per
// identity statistics. When annotated output is requested the writer is
// created lazily from the first decoded frame, and a writer that cannot be
// constructed disables annotation for the rest of the run without affecting
// statistics collection. One progress event is emitted per frame.
//
// Analyze returns ErrNoFrames when src yields nothing.
func (rc *RunContext) Analyze(src FrameSource, opts AnalyzeOptions) (TrackStats, error) {
	total := src.FrameCount()
	stats := make(TrackStats)

	var writer *video.LazyWriter

	if opts.Annotated {
		fourcc := opts.FourCC

		if fourcc == "" {
			fourcc = DefaultFourCC
		}

		writer = video.NewLazyWriter(opts.AnnotatedPath, fourcc, src.FPS(), rc.log)
		defer writer.Close()
	}

	rc.log.Info("analysis started", zap.Int("total_hint", total))

	frame := gocv.NewMat()
	defer frame.Close()

	start := time.Now()
	current := 0

	for {
		idx, ok := src.Next(&frame)

		if !ok {
			break
		}

		current = idx

		detections, err := rc.Tracker.Track(frame)

		if err != nil {
			return nil, fmt.Errorf("track frame %d: %w", idx, err)
		}

		// annotate before collecting stats so overlays reflect this
		// frame's detections
		if writer != nil && writer.Ensure(frame) {
			for _, det := range detections {
				render.TrackBox(&frame, det.Box, det.Label, det.ID, 2)
			}
		}

		for _, det := range detections {
			rec := stats[det.ID]
			rec.Label = det.Label
			rec.Frames++
			stats[det.ID] = rec
		}

		elapsed := time.Since(start)
		emitAnalyzeProgress(rc.log, opts.Progress, idx, total,
			elapsed, estimateRemaining(idx, total, elapsed))

		if writer != nil {
			writer.Write(frame)
		}
	}

	if current == 0 {
		return nil, ErrNoFrames
	}

	rc.log.Info("analysis finished",
		zap.Int("frames", current),
		zap.Int("identities", len(stats)),
		zap.Duration("elapsed", time.Since(start)))

	return stats, nil
}
