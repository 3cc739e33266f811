package track

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Observation is one detector output for the current frame, fed to the
// tracker for identity assignment.
type Observation struct {
	Rect  Rect
	Class int
	Score float32
}

// Track is the tracker's view of one object identity.
type Track struct {
	// ID is assigned on first sighting and kept for the life of the track.
	ID int64
	// Rect is the current estimated bounding box.
	Rect Rect
	// Class is the last observed class index.
	Class int
	// Score is the last observed detection confidence.
	Score float32

	mean *mat.VecDense
	cov  *mat.Dense
	lost int
}

// Config tunes the tracker.
type Config struct {
	// IoUThreshold is the minimum overlap between a predicted track
	// position and a detection for the two to be associated.
	IoUThreshold float32
	// MaxLost is the number of consecutive unmatched frames after which a
	// track identity is dropped.
	MaxLost int
}

// DefaultConfig returns the tracker defaults.
func DefaultConfig() Config {
	return Config{
		IoUThreshold: 0.3,
		MaxLost:      30,
	}
}

// Tracker assigns stable integer identities to per-frame detections by
// matching them against Kalman-predicted positions of known tracks. A
// Tracker instance owns the identity state for exactly one video and must
// not be shared across runs.
type Tracker struct {
	cfg    Config
	kf     *kalmanFilter
	tracks []*Track
	nextID int64
}

// NewTracker returns an empty tracker. Zero config fields fall back to
// DefaultConfig values.
func NewTracker(cfg Config) *Tracker {
	def := DefaultConfig()

	if cfg.IoUThreshold <= 0 {
		cfg.IoUThreshold = def.IoUThreshold
	}

	if cfg.MaxLost <= 0 {
		cfg.MaxLost = def.MaxLost
	}

	return &Tracker{
		cfg: cfg,
		kf:  newKalmanFilter(),
	}
}

// Update advances every track by one frame, associates the given
// observations greedily by IoU and returns the tracks observed in this
// frame, including newly created ones. Unmatched tracks survive MaxLost
// frames on prediction alone before their identity is dropped.
func (t *Tracker) Update(observations []Observation) ([]Track, error) {
	for _, tr := range t.tracks {
		t.kf.predict(tr.mean, tr.cov)
		tr.Rect = rectFromXYAH(tr.mean.AtVec(0), tr.mean.AtVec(1),
			tr.mean.AtVec(2), tr.mean.AtVec(3))
	}

	// greedy association: best remaining IoU pair first
	type candidate struct {
		track, obs int
		iou        float32
	}

	var candidates []candidate

	for ti, tr := range t.tracks {
		for oi, ob := range observations {
			if iou := IoU(tr.Rect, ob.Rect); iou >= t.cfg.IoUThreshold {
				candidates = append(candidates, candidate{track: ti, obs: oi, iou: iou})
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].iou > candidates[j].iou
	})

	matchedTracks := make(map[int]bool)
	matchedObs := make(map[int]bool)
	seen := make([]*Track, 0, len(observations))

	for _, c := range candidates {
		if matchedTracks[c.track] || matchedObs[c.obs] {
			continue
		}

		matchedTracks[c.track] = true
		matchedObs[c.obs] = true

		tr := t.tracks[c.track]
		ob := observations[c.obs]

		if err := t.kf.correct(tr.mean, tr.cov, ob.Rect.xyah()); err != nil {
			return nil, err
		}

		tr.Rect = rectFromXYAH(tr.mean.AtVec(0), tr.mean.AtVec(1),
			tr.mean.AtVec(2), tr.mean.AtVec(3))
		tr.Class = ob.Class
		tr.Score = ob.Score
		tr.lost = 0

		seen = append(seen, tr)
	}

	// age unmatched tracks and drop expired identities
	alive := t.tracks[:0]

	for ti, tr := range t.tracks {
		if !matchedTracks[ti] {
			tr.lost++
		}

		if tr.lost <= t.cfg.MaxLost {
			alive = append(alive, tr)
		}
	}

	t.tracks = alive

	// unmatched observations start new identities
	for oi, ob := range observations {
		if matchedObs[oi] {
			continue
		}

		t.nextID++

		mean, cov := t.kf.initiate(ob.Rect.xyah())

		tr := &Track{
			ID:    t.nextID,
			Rect:  ob.Rect,
			Class: ob.Class,
			Score: ob.Score,
			mean:  mean,
			cov:   cov,
		}

		t.tracks = append(t.tracks, tr)
		seen = append(seen, tr)
	}

	// return value snapshots, internal state stays private
	out := make([]Track, len(seen))

	for i, tr := range seen {
		out[i] = Track{
			ID:    tr.ID,
			Rect:  tr.Rect,
			Class: tr.Class,
			Score: tr.Score,
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}
