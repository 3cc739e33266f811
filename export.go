package vidroto

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/vidroto/vidroto/matte"
)

// DefaultPad is the bounding box padding applied before segmentation when
// ExportOptions leaves Pad unset.
const DefaultPad = 40

// ExportOptions configures an alpha export run.
type ExportOptions struct {
	// TargetID is the track identity to isolate.
	TargetID int64
	// OutDir receives the frame_XXXXX.png sequence. Created if missing.
	OutDir string
	// Pad is the number of pixels added around the tracked bounding box
	// before segmentation so the segmenter sees some context. Negative
	// means DefaultPad, 0 is honored.
	Pad int
	// Progress is an optional per-frame observer.
	Progress ExportProgress
}

// ExportAlpha scans src and writes one premultiplied RGBA PNG per frame in
// which the target identity was tracked and a mask was obtained. Filenames
// carry the decode loop's own 1-based frame index zero-padded to five
// digits, frames without a match or mask are skipped but still consume
// their index, so gaps in the sequence are deliberate. One progress event
// is emitted per frame regardless of whether a file was written.
//
// ExportAlpha returns ErrNoFrames when src yields nothing.
func (rc *RunContext) ExportAlpha(src FrameSource, opts ExportOptions) error {
	if rc.Segmenter == nil {
		return errors.New("vidroto: run context has no segmenter")
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	pad := opts.Pad

	if pad < 0 {
		pad = DefaultPad
	}

	total := src.FrameCount()

	rc.log.Info("alpha export started",
		zap.Int64("target_id", opts.TargetID),
		zap.String("out_dir", opts.OutDir),
		zap.Int("pad", pad),
		zap.Int("total_hint", total))

	frame := gocv.NewMat()
	defer frame.Close()

	start := time.Now()
	current := 0
	written := 0

	for {
		idx, ok := src.Next(&frame)

		if !ok {
			break
		}

		current = idx

		detections, err := rc.Tracker.Track(frame)

		if err != nil {
			return fmt.Errorf("track frame %d: %w", idx, err)
		}

		alpha, err := rc.targetAlpha(frame, detections, opts.TargetID, pad)

		if err != nil {
			return fmt.Errorf("segment frame %d: %w", idx, err)
		}

		if alpha != nil {
			rgba := matte.Composite(frame.ToBytes(), frame.Cols(), frame.Rows(), alpha)
			path := filepath.Join(opts.OutDir, fmt.Sprintf("frame_%05d.png", idx))

			if err := matte.WritePNG(path, rgba); err != nil {
				return fmt.Errorf("write frame %d: %w", idx, err)
			}

			written++
		}

		emitExportProgress(rc.log, opts.Progress, idx, total)
	}

	if current == 0 {
		return ErrNoFrames
	}

	rc.log.Info("alpha export finished",
		zap.Int("frames", current),
		zap.Int("written", written),
		zap.Duration("elapsed", time.Since(start)))

	return nil
}

// targetAlpha finds the target identity among the frame's detections and
// runs the segmenter on its padded, clamped bounding box. It returns a
// full-frame alpha plane, or nil when the identity was not detected, its
// box degenerated to nothing, or the segmenter produced no mask. Only the
// first match is used, identities are expected unique within a frame.
func (rc *RunContext) targetAlpha(frame gocv.Mat, detections []Detection,
	targetID int64, pad int) ([]byte, error) {

	for _, det := range detections {
		if det.ID != targetID {
			continue
		}

		region := matte.PadClamp(det.Box, pad, frame.Cols(), frame.Rows())

		if region.Empty() {
			return nil, nil
		}

		mask, ok, err := rc.Segmenter.Segment(frame, region)

		if err != nil {
			return nil, err
		}

		if !ok {
			return nil, nil
		}

		plane := matte.AlphaPlane(mask.ToBytes(), mask.Cols(), mask.Rows(),
			region, frame.Cols(), frame.Rows())
		mask.Close()

		return plane, nil
	}

	return nil, nil
}
