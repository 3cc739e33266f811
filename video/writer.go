package video

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// writerState tracks the lazy writer lifecycle. The writer starts pending,
// becomes active on the first frame, or fails once and stays failed for the
// remainder of the run.
type writerState int

const (
	writerPending writerState = iota
	writerActive
	writerFailed
)

// LazyWriter creates its underlying video writer from the dimensions of the
// first frame it sees instead of trusting container metadata, which may be
// missing or wrong. Construction failure (for example an unsupported codec
// on the host) disables writing for the rest of the run without aborting
// the caller.
type LazyWriter struct {
	path   string
	fourcc string
	fps    float64
	state  writerState
	w      *gocv.VideoWriter
	log    *zap.Logger
}

// NewLazyWriter returns a writer that will write to path with the given
// four-character codec tag at the given frame rate. Nothing is opened until
// the first call to Ensure.
func NewLazyWriter(path, fourcc string, fps float64, log *zap.Logger) *LazyWriter {
	if log == nil {
		log = zap.NewNop()
	}

	return &LazyWriter{
		path:   path,
		fourcc: fourcc,
		fps:    fps,
		log:    log,
	}
}

// Ensure creates the underlying writer sized to the given frame if it has
// not been created yet. It reports whether the writer is active.
func (lw *LazyWriter) Ensure(frame gocv.Mat) bool {
	switch lw.state {
	case writerActive:
		return true
	case writerFailed:
		return false
	}

	if err := os.MkdirAll(filepath.Dir(lw.path), 0o755); err != nil {
		lw.fail(err)
		return false
	}

	w, err := gocv.VideoWriterFile(lw.path, lw.fourcc, lw.fps,
		frame.Cols(), frame.Rows(), true)

	if err != nil {
		lw.fail(err)
		return false
	}

	if !w.IsOpened() {
		w.Close()
		lw.fail(nil)
		return false
	}

	lw.state = writerActive
	lw.w = w

	lw.log.Info("annotated video writer created",
		zap.String("path", lw.path),
		zap.String("fourcc", lw.fourcc),
		zap.Float64("fps", lw.fps),
		zap.Int("width", frame.Cols()),
		zap.Int("height", frame.Rows()))

	return true
}

// Active reports whether the writer has been created and is accepting
// frames.
func (lw *LazyWriter) Active() bool {
	return lw.state == writerActive
}

// Write appends a frame. It is a no-op unless the writer is active.
func (lw *LazyWriter) Write(frame gocv.Mat) {
	if lw.state != writerActive {
		return
	}

	if err := lw.w.Write(frame); err != nil {
		lw.log.Warn("annotated frame write failed", zap.Error(err))
	}
}

// Close releases the underlying writer if one was created.
func (lw *LazyWriter) Close() error {
	if lw.w == nil {
		return nil
	}

	return lw.w.Close()
}

func (lw *LazyWriter) fail(err error) {
	lw.state = writerFailed
	lw.log.Warn("annotated video output disabled for this run",
		zap.String("path", lw.path),
		zap.String("fourcc", lw.fourcc),
		zap.Error(err))
}
