package matte

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPadClamp(t *testing.T) {
	tests := []struct {
		name          string
		box           image.Rectangle
		pad           int
		width, height int
		want          image.Rectangle
	}{
		{
			name:  "interior box grows by pad",
			box:   image.Rect(100, 100, 200, 200),
			pad:   40,
			width: 640, height: 480,
			want: image.Rect(60, 60, 240, 240),
		},
		{
			name:  "clamped at origin",
			box:   image.Rect(10, 5, 100, 100),
			pad:   40,
			width: 640, height: 480,
			want: image.Rect(0, 0, 140, 140),
		},
		{
			name:  "clamped at far edge",
			box:   image.Rect(600, 440, 639, 479),
			pad:   40,
			width: 640, height: 480,
			want: image.Rect(560, 400, 640, 480),
		},
		{
			name:  "zero pad keeps box",
			box:   image.Rect(10, 10, 20, 20),
			pad:   0,
			width: 640, height: 480,
			want: image.Rect(10, 10, 20, 20),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PadClamp(tt.box, tt.pad, tt.width, tt.height)
			assert.Equal(t, tt.want, got)

			// invariant: 0 <= x1 < x2 <= width, 0 <= y1 < y2 <= height
			assert.GreaterOrEqual(t, got.Min.X, 0)
			assert.GreaterOrEqual(t, got.Min.Y, 0)
			assert.Less(t, got.Min.X, got.Max.X)
			assert.Less(t, got.Min.Y, got.Max.Y)
			assert.LessOrEqual(t, got.Max.X, tt.width)
			assert.LessOrEqual(t, got.Max.Y, tt.height)
		})
	}
}

func TestPadClampDegenerateBox(t *testing.T) {
	// a box entirely outside the frame collapses to empty
	got := PadClamp(image.Rect(-200, -200, -100, -100), 10, 640, 480)
	assert.True(t, got.Empty())
}

func TestCompositeExactMath(t *testing.T) {
	// two BGR pixels: (10,20,100) and (100,100,100)
	bgr := []byte{10, 20, 100, 100, 100, 100}
	alpha := []byte{255, 128}

	out := Composite(bgr, 2, 1, alpha)

	// opaque pixel passes color through, channel order becomes RGB
	assert.Equal(t, []byte{100, 20, 10, 255}, []byte(out.Pix[0:4]))

	// 100*128/255 truncates to 50
	assert.Equal(t, []byte{50, 50, 50, 128}, []byte(out.Pix[4:8]))
}

func TestCompositeZeroAlphaBlanksColor(t *testing.T) {
	bgr := []byte{200, 200, 200}
	out := Composite(bgr, 1, 1, []byte{0})

	assert.Equal(t, []byte{0, 0, 0, 0}, []byte(out.Pix[0:4]))
}

func TestAlphaPlaneFullFrameMask(t *testing.T) {
	mask := []byte{0, 10, 20, 30, 40, 50}

	plane := AlphaPlane(mask, 3, 2, image.Rect(0, 0, 3, 2), 3, 2)

	require.Equal(t, mask, plane)

	// the plane is a copy, mutating it must not touch the mask
	plane[0] = 99
	assert.Equal(t, byte(0), mask[0])
}

func TestAlphaPlaneRegionMaskScaledIntoPlace(t *testing.T) {
	// a uniform 2x2 region mask scales to a uniform region of any size
	mask := []byte{255, 255, 255, 255}
	region := image.Rect(2, 2, 6, 6)

	plane := AlphaPlane(mask, 2, 2, region, 8, 8)

	require.Len(t, plane, 64)

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			inside := x >= 2 && x < 6 && y >= 2 && y < 6

			if inside {
				assert.Equal(t, byte(255), plane[y*8+x], "pixel (%d,%d)", x, y)
			} else {
				assert.Equal(t, byte(0), plane[y*8+x], "pixel (%d,%d)", x, y)
			}
		}
	}
}
