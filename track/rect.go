// Package track assigns stable identities to per-frame object detections
// using Kalman-predicted IoU association.
package track

// Rect is an axis aligned bounding box in top-left x, y, width, height
// form, the tracker's native representation.
type Rect struct {
	X, Y, W, H float32
}

// NewRect creates a Rect from top-left corner and size.
func NewRect(x, y, w, h float32) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// RectFromBounds creates a Rect from corner coordinates.
func RectFromBounds(x1, y1, x2, y2 float32) Rect {
	return Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

// BRX returns the bottom-right x coordinate.
func (r Rect) BRX() float32 {
	return r.X + r.W
}

// BRY returns the bottom-right y coordinate.
func (r Rect) BRY() float32 {
	return r.Y + r.H
}

// Area returns the rectangle area.
func (r Rect) Area() float32 {
	return r.W * r.H
}

// xyah converts to the Kalman measurement space of center x, center y,
// aspect ratio and height.
func (r Rect) xyah() [4]float64 {
	return [4]float64{
		float64(r.X) + float64(r.W)/2,
		float64(r.Y) + float64(r.H)/2,
		float64(r.W) / float64(r.H),
		float64(r.H),
	}
}

// rectFromXYAH converts the first four state components back to a Rect.
func rectFromXYAH(cx, cy, aspect, height float64) Rect {
	w := aspect * height

	return Rect{
		X: float32(cx - w/2),
		Y: float32(cy - height/2),
		W: float32(w),
		H: float32(height),
	}
}

// IoU returns the intersection over union of two rectangles, 0 when they
// do not overlap.
func IoU(a, b Rect) float32 {
	x1 := maxf(a.X, b.X)
	y1 := maxf(a.Y, b.Y)
	x2 := minf(a.BRX(), b.BRX())
	y2 := minf(a.BRY(), b.BRY())

	iw := x2 - x1
	ih := y2 - y1

	if iw <= 0 || ih <= 0 {
		return 0
	}

	inter := iw * ih

	return inter / (a.Area() + b.Area() - inter)
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}

	return b
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}

	return b
}
