package vidroto

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RunContext holds the per-run capability instances. The tracker owns
// cross-frame identity state, so a RunContext must never be reused for a
// second video or shared between concurrently running analyses. Construct
// one at run start and discard it at run end.
type RunContext struct {
	// ID identifies this run in log output.
	ID uuid.UUID
	// Tracker is required by both Analyze and ExportAlpha.
	Tracker Tracker
	// Segmenter is required by ExportAlpha only and may be nil for
	// analysis-only runs.
	Segmenter Segmenter

	log *zap.Logger
}

// NewRunContext returns a run context bound to the given capability
// instances. A nil logger disables logging.
func NewRunContext(tracker Tracker, segmenter Segmenter, log *zap.Logger) *RunContext {
	if log == nil {
		log = zap.NewNop()
	}

	rc := &RunContext{
		ID:        uuid.New(),
		Tracker:   tracker,
		Segmenter: segmenter,
	}
	rc.log = log.With(zap.String("run_id", rc.ID.String()))

	return rc
}
