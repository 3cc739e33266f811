// Package render draws detection overlays onto video frames.
package render

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

var (
	// White is used for label text.
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}

	// idColors is a palette of visually distinct colors assigned to track
	// identities. Indexing by id keeps the color stable across frames.
	idColors = []color.RGBA{
		{R: 255, G: 56, B: 56, A: 255},
		{R: 255, G: 112, B: 31, A: 255},
		{R: 255, G: 178, B: 29, A: 255},
		{R: 207, G: 210, B: 49, A: 255},
		{R: 72, G: 249, B: 10, A: 255},
		{R: 26, G: 147, B: 52, A: 255},
		{R: 0, G: 212, B: 187, A: 255},
		{R: 0, G: 194, B: 255, A: 255},
		{R: 52, G: 69, B: 147, A: 255},
		{R: 100, G: 115, B: 255, A: 255},
		{R: 0, G: 24, B: 236, A: 255},
		{R: 132, G: 56, B: 255, A: 255},
		{R: 82, G: 0, B: 133, A: 255},
		{R: 255, G: 149, B: 200, A: 255},
		{R: 255, G: 55, B: 199, A: 255},
		{R: 255, G: 157, B: 151, A: 255},
		{R: 44, G: 153, B: 168, A: 255},
		{R: 61, G: 219, B: 134, A: 255},
		{R: 203, G: 56, B: 255, A: 255},
		{R: 146, G: 204, B: 23, A: 255},
	}
)

// ColorForID returns the deterministic color for a track identity.
func ColorForID(id int64) color.RGBA {
	return idColors[int(uint64(id)%uint64(len(idColors)))]
}

// TrackBox draws the bounding box for one tracked detection together with a
// filled label plate reading "<label> ID:<id>" above its top-left corner.
func TrackBox(img *gocv.Mat, box image.Rectangle, label string, id int64,
	thickness int) {

	clr := ColorForID(id)

	gocv.Rectangle(img, box, clr, thickness)

	text := fmt.Sprintf("%s ID:%d", label, id)
	size := gocv.GetTextSize(text, gocv.FontHersheyDuplex, 0.6, 2)

	plate := image.Rect(box.Min.X, box.Min.Y-size.Y-8,
		box.Min.X+size.X, box.Min.Y)
	gocv.Rectangle(img, plate, clr, -1)

	gocv.PutText(img, text, image.Pt(box.Min.X, box.Min.Y-4),
		gocv.FontHersheyDuplex, 0.6, White, 2)
}
