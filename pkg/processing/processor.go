package processing

import (
	"image"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"github.com/menta2k/camera-core/pkg/cropper"
	"github.com/menta2k/camera-core/pkg/types"
)

// Processor applies zoom results to live preview frames.
type Processor struct {
	name   string
	filter imaging.ResampleFilter
	scaler draw.Scaler
}

// NewProcessor creates a preview processor with Lanczos resampling for
// magnified frames and Catmull-Rom for upscaled ones.
func NewProcessor() *Processor {
	return &Processor{
		name:   "quality",
		filter: imaging.Lanczos,
		scaler: draw.CatmullRom,
	}
}

// NewFastProcessor trades quality for speed, for low-end devices.
func NewFastProcessor() *Processor {
	return &Processor{
		name:   "fast",
		filter: imaging.Linear,
		scaler: draw.ApproxBiLinear,
	}
}

// String returns "quality" or "fast"
func (p *Processor) String() string {
	return p.name
}

// Magnify crops the center of frame so that it appears bitmapZoom times
// larger once stretched back over the viewport. Zoom values below 1 leave
// the frame whole.
func (p *Processor) Magnify(frame image.Image, bitmapZoom float64) *image.NRGBA {
	window := cropper.PreviewWindow(frame.Bounds(), bitmapZoom)
	if window.Empty() {
		return image.NewNRGBA(image.Rectangle{})
	}
	return imaging.Crop(frame, window)
}

// MagnifyTo magnifies frame and resamples the result to out, which is
// normally the viewport size.
func (p *Processor) MagnifyTo(frame image.Image, bitmapZoom float64, out types.Size) *image.NRGBA {
	cropped := p.Magnify(frame, bitmapZoom)
	if out.Width <= 0 || out.Height <= 0 || cropped.Bounds().Empty() {
		return cropped
	}
	if cropped.Bounds().Dx() == out.Width && cropped.Bounds().Dy() == out.Height {
		return cropped
	}
	return imaging.Resize(cropped, out.Width, out.Height, p.filter)
}

// Upscale stretches a frame captured at a small native size over the target
// viewport, for previews picked with the upscale-preferred policy.
func (p *Processor) Upscale(frame image.Image, target types.Size) *image.RGBA {
	if target.Width <= 0 || target.Height <= 0 {
		return image.NewRGBA(image.Rectangle{})
	}
	dst := image.NewRGBA(image.Rect(0, 0, target.Width, target.Height))
	p.scaler.Scale(dst, dst.Bounds(), frame, frame.Bounds(), draw.Src, nil)
	return dst
}
