// Package matte composites RGBA alpha mattes from BGR video frames and
// per-pixel masks. It works on raw byte slices rather than Mats because
// per-pixel access through CGO is too slow for frame loops.
package matte

import (
	"fmt"
	"image"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"
)

// PadClamp grows box by pad pixels in all four directions and clamps the
// result to the frame bounds, keeping 0 <= x1 < x2 <= width and
// 0 <= y1 < y2 <= height.
func PadClamp(box image.Rectangle, pad, width, height int) image.Rectangle {
	r := image.Rect(box.Min.X-pad, box.Min.Y-pad, box.Max.X+pad, box.Max.Y+pad)

	return r.Intersect(image.Rect(0, 0, width, height))
}

// AlphaPlane builds a full-frame alpha plane (width*height bytes) from a
// segmenter mask. A mask already sized to the frame is used as-is. Any other
// size is treated as aligned to region and scaled into it, leaving the rest
// of the plane transparent.
func AlphaPlane(mask []byte, maskW, maskH int, region image.Rectangle,
	width, height int) []byte {

	if maskW == width && maskH == height {
		plane := make([]byte, width*height)
		copy(plane, mask)

		return plane
	}

	src := &image.Gray{
		Pix:    mask,
		Stride: maskW,
		Rect:   image.Rect(0, 0, maskW, maskH),
	}

	scaled := image.NewGray(image.Rect(0, 0, region.Dx(), region.Dy()))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Rect, src, src.Rect, xdraw.Src, nil)

	plane := make([]byte, width*height)

	for y := 0; y < region.Dy(); y++ {
		row := scaled.Pix[y*scaled.Stride : y*scaled.Stride+region.Dx()]
		copy(plane[(region.Min.Y+y)*width+region.Min.X:], row)
	}

	return plane
}

// Composite builds the premultiplied RGBA frame for a BGR frame and a
// full-frame alpha plane. For every pixel the output alpha is the mask byte
// and each color channel is in*alpha/255 in truncating integer math. The
// result is an NRGBA image so the premultiplied values are stored verbatim
// when PNG encoded.
func Composite(bgr []byte, width, height int, alpha []byte) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, width, height))

	for i := 0; i < width*height; i++ {
		a := uint32(alpha[i])

		b := uint32(bgr[i*3])
		g := uint32(bgr[i*3+1])
		r := uint32(bgr[i*3+2])

		out.Pix[i*4+0] = uint8(r * a / 255)
		out.Pix[i*4+1] = uint8(g * a / 255)
		out.Pix[i*4+2] = uint8(b * a / 255)
		out.Pix[i*4+3] = uint8(a)
	}

	return out
}

// WritePNG persists a composited frame.
func WritePNG(path string, img *image.NRGBA) error {
	f, err := os.Create(path)

	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}

	return f.Close()
}
