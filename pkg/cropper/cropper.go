package cropper

import (
	"image"
	"math"
)

// SensorRegion returns the hardware crop rectangle for an optical zoom level.
// The rectangle is the active array shrunk by 1/zoomLevel and centered on it;
// the shrink amount is rounded to whole pixels and split evenly between both
// sides of each axis. Zoom levels below 1 are treated as 1.
func SensorRegion(active image.Rectangle, zoomLevel float64) image.Rectangle {
	if active.Empty() {
		return image.Rectangle{}
	}
	if zoomLevel < 1 || math.IsNaN(zoomLevel) {
		zoomLevel = 1
	}

	ratio := 1 / zoomLevel
	width, height := active.Dx(), active.Dy()

	marginW := width - int(math.Round(float64(width)*ratio))
	marginH := height - int(math.Round(float64(height)*ratio))

	return image.Rect(
		active.Min.X+marginW/2,
		active.Min.Y+marginH/2,
		active.Min.X+width-marginW/2,
		active.Min.Y+height-marginH/2,
	)
}

// PreviewWindow returns the part of a preview frame that stays visible after
// a software magnification by bitmapZoom. The window keeps the frame's center;
// its size is the frame size divided by the zoom, truncated to whole pixels
// and never smaller than one pixel.
func PreviewWindow(frame image.Rectangle, bitmapZoom float64) image.Rectangle {
	if frame.Empty() {
		return image.Rectangle{}
	}
	if bitmapZoom < 1 || math.IsNaN(bitmapZoom) {
		bitmapZoom = 1
	}

	fw, fh := frame.Dx(), frame.Dy()
	w := maxInt(1, int(float64(fw)/bitmapZoom))
	h := maxInt(1, int(float64(fh)/bitmapZoom))

	x0 := frame.Min.X + fw/2 - w/2
	y0 := frame.Min.Y + fh/2 - h/2
	return image.Rect(x0, y0, x0+w, y0+h).Intersect(frame)
}

// IsCentered reports whether inner shares its center with outer, allowing for
// the one pixel of slack that integer halving introduces on odd extents.
func IsCentered(inner, outer image.Rectangle) bool {
	dx := (inner.Min.X - outer.Min.X) - (outer.Max.X - inner.Max.X)
	dy := (inner.Min.Y - outer.Min.Y) - (outer.Max.Y - inner.Max.Y)
	return absInt(dx) <= 1 && absInt(dy) <= 1
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
