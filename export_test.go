package vidroto

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportDirFiles(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var names []string

	for _, e := range entries {
		names = append(names, e.Name())
	}

	sort.Strings(names)

	return names
}

func decodePNG(t *testing.T, path string) *image.NRGBA {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)

	nrgba, ok := img.(*image.NRGBA)
	require.True(t, ok, "decoded image is %T, want *image.NRGBA", img)

	return nrgba
}

func TestExportFullCoverage(t *testing.T) {
	src := newTestSource(t, 10, 32, 24)
	dir := t.TempDir()

	perFrame := everyFrame(10, det(7, "person", image.Rect(8, 6, 20, 18)))
	seg := &stubSegmenter{}
	rc := NewRunContext(&scriptedTracker{perFrame: perFrame}, seg, nil)

	var currents []int

	err := rc.ExportAlpha(src, ExportOptions{
		TargetID: 7,
		OutDir:   dir,
		Pad:      4,
		Progress: func(current, total int) {
			currents = append(currents, current)
			assert.Equal(t, 10, total)
		},
	})

	require.NoError(t, err)

	// exactly frames 00001..00010
	names := exportDirFiles(t, dir)
	require.Len(t, names, 10)

	for i, name := range names {
		assert.Equal(t, fmt.Sprintf("frame_%05d.png", i+1), name)
	}

	require.Len(t, currents, 10)

	for i, c := range currents {
		assert.Equal(t, i+1, c)
	}

	// full-coverage mask: opaque everywhere, color passes through with BGR
	// swapped to RGB (test frames are BGR 40,80,120)
	img := decodePNG(t, filepath.Join(dir, "frame_00001.png"))

	assert.Equal(t, image.Rect(0, 0, 32, 24), img.Rect)

	px := img.NRGBAAt(10, 10)
	assert.Equal(t, uint8(255), px.A)
	assert.Equal(t, uint8(120), px.R)
	assert.Equal(t, uint8(80), px.G)
	assert.Equal(t, uint8(40), px.B)
}

func TestExportPartialMasks(t *testing.T) {
	src := newTestSource(t, 10, 32, 24)
	dir := t.TempDir()

	perFrame := everyFrame(10, det(7, "person", image.Rect(8, 6, 20, 18)))

	// mask obtained only on the first five frames
	seg := &stubSegmenter{maskOn: map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true}}
	rc := NewRunContext(&scriptedTracker{perFrame: perFrame}, seg, nil)

	err := rc.ExportAlpha(src, ExportOptions{TargetID: 7, OutDir: dir})
	require.NoError(t, err)

	// no renumbering: exactly 00001..00005, nothing for 6..10
	names := exportDirFiles(t, dir)
	require.Len(t, names, 5)

	for i, name := range names {
		assert.Equal(t, fmt.Sprintf("frame_%05d.png", i+1), name)
	}
}

func TestExportTargetNeverDetected(t *testing.T) {
	src := newTestSource(t, 10, 32, 24)
	dir := t.TempDir()

	// only ids other than the target appear
	perFrame := everyFrame(10, det(3, "car", image.Rect(8, 6, 20, 18)))
	seg := &stubSegmenter{}
	rc := NewRunContext(&scriptedTracker{perFrame: perFrame}, seg, nil)

	fired := 0

	err := rc.ExportAlpha(src, ExportOptions{
		TargetID: 7,
		OutDir:   dir,
		Progress: func(current, total int) { fired++ },
	})

	require.NoError(t, err)

	assert.Empty(t, exportDirFiles(t, dir))
	assert.Equal(t, 10, fired)
	assert.Zero(t, seg.calls, "segmenter must not run without a target match")
}

func TestExportSegmenterRegionIsPaddedAndClamped(t *testing.T) {
	src := newTestSource(t, 1, 32, 24)
	dir := t.TempDir()

	// box close to the top-left corner, pad pushes past the frame edge
	perFrame := everyFrame(1, det(7, "person", image.Rect(2, 3, 20, 18)))
	seg := &stubSegmenter{}
	rc := NewRunContext(&scriptedTracker{perFrame: perFrame}, seg, nil)

	err := rc.ExportAlpha(src, ExportOptions{TargetID: 7, OutDir: dir, Pad: 10})
	require.NoError(t, err)

	require.Len(t, seg.regions, 1)
	assert.Equal(t, image.Rect(0, 0, 30, 24), seg.regions[0])
}

func TestExportRegionMaskPlacedIntoFrame(t *testing.T) {
	src := newTestSource(t, 1, 32, 24)
	dir := t.TempDir()

	perFrame := everyFrame(1, det(7, "person", image.Rect(10, 8, 20, 16)))

	// mask smaller than the frame is region aligned and scaled into place
	rc := NewRunContext(&scriptedTracker{perFrame: perFrame},
		&regionSegmenter{maskW: 4, maskH: 4}, nil)

	err := rc.ExportAlpha(src, ExportOptions{TargetID: 7, OutDir: dir, Pad: 2})
	require.NoError(t, err)

	img := decodePNG(t, filepath.Join(dir, "frame_00001.png"))

	// padded region is (8,6)-(22,18): opaque inside, transparent outside
	assert.Equal(t, uint8(255), img.NRGBAAt(10, 10).A)
	assert.Equal(t, uint8(0), img.NRGBAAt(2, 2).A)
	assert.Equal(t, uint8(0), img.NRGBAAt(30, 20).A)
}

func TestExportFirstMatchWins(t *testing.T) {
	src := newTestSource(t, 1, 32, 24)
	dir := t.TempDir()

	// duplicate target ids in one frame: only the first box is segmented
	perFrame := everyFrame(1,
		det(7, "person", image.Rect(2, 2, 10, 10)),
		det(7, "person", image.Rect(20, 14, 30, 22)))
	seg := &stubSegmenter{}
	rc := NewRunContext(&scriptedTracker{perFrame: perFrame}, seg, nil)

	err := rc.ExportAlpha(src, ExportOptions{TargetID: 7, OutDir: dir, Pad: 0})
	require.NoError(t, err)

	require.Equal(t, 1, seg.calls)
	assert.Equal(t, image.Rect(2, 2, 10, 10), seg.regions[0])
}

func TestExportNoFrames(t *testing.T) {
	rc := NewRunContext(&scriptedTracker{}, &stubSegmenter{}, nil)

	err := rc.ExportAlpha(&sliceSource{}, ExportOptions{
		TargetID: 1,
		OutDir:   t.TempDir(),
	})

	assert.ErrorIs(t, err, ErrNoFrames)
}

func TestExportRequiresSegmenter(t *testing.T) {
	rc := NewRunContext(&scriptedTracker{}, nil, nil)

	err := rc.ExportAlpha(&sliceSource{}, ExportOptions{TargetID: 1, OutDir: t.TempDir()})

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoFrames)
}

func TestExportObserverPanicIsNonFatal(t *testing.T) {
	src := newTestSource(t, 2, 32, 24)
	dir := t.TempDir()

	perFrame := everyFrame(2, det(7, "person", image.Rect(8, 6, 20, 18)))
	rc := NewRunContext(&scriptedTracker{perFrame: perFrame}, &stubSegmenter{}, nil)

	err := rc.ExportAlpha(src, ExportOptions{
		TargetID: 7,
		OutDir:   dir,
		Progress: func(current, total int) { panic("observer exploded") },
	})

	require.NoError(t, err)
	assert.Len(t, exportDirFiles(t, dir), 2)
}
