package vidroto

import (
	"time"

	"go.uber.org/zap"
)

// AnalyzeProgress is the observer contract for analysis runs. It is invoked
// once per processed frame with the 1-based frame index, the total frame
// count hint (0 when unknown), wall-clock time since the run started and the
// estimated remaining time.
type AnalyzeProgress func(current, total int, elapsed, remaining time.Duration)

// ExportProgress is the observer contract for alpha export runs. It is
// invoked once per processed frame whether or not a file was written.
type ExportProgress func(current, total int)

// Progress observers are best-effort. A panicking observer is recovered at
// the call site and logged, processing continues unaffected.

func emitAnalyzeProgress(log *zap.Logger, cb AnalyzeProgress,
	current, total int, elapsed, remaining time.Duration) {

	if cb == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Warn("analysis progress observer failed",
				zap.Int("frame", current), zap.Any("panic", r))
		}
	}()

	cb(current, total, elapsed, remaining)
}

func emitExportProgress(log *zap.Logger, cb ExportProgress, current, total int) {

	if cb == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Warn("export progress observer failed",
				zap.Int("frame", current), zap.Any("panic", r))
		}
	}()

	cb(current, total)
}

// estimateRemaining derives an ETA from the observed throughput so far. It
// returns 0 when the total is unknown or already reached, so unreliable
// frame-count metadata never produces a negative estimate.
func estimateRemaining(current, total int, elapsed time.Duration) time.Duration {
	if current <= 0 || elapsed <= 0 || total <= current {
		return 0
	}

	perFrame := elapsed / time.Duration(current)

	return time.Duration(total-current) * perFrame
}
