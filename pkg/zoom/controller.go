// Package zoom turns two-finger pinch samples into a combined optical crop
// and software magnification zoom.
//
// The optical part is expressed as a hardware crop rectangle on the sensor's
// active pixel array. Once the optical range is exhausted, further spreading
// grows a digital (bitmap) zoom factor that the preview surface applies by
// cropping the rendered frame. Pinching unwinds the digital layer first and
// only then reduces the optical zoom.
package zoom

import (
	"image"
	"math"

	"github.com/rs/zerolog"

	"github.com/menta2k/camera-core/pkg/cropper"
	"github.com/menta2k/camera-core/pkg/types"
)

// Default tuning values
const (
	DefaultOpticalStep        = 0.8
	DefaultDigitalStepDivisor = 25.0
)

// Tuning controls the zoom sensitivity
type Tuning struct {
	// OpticalStep is the crop zoom change applied per gesture sample.
	OpticalStep float64
	// DigitalStepDivisor sets the bitmap zoom change per sample to
	// BitmapZoom/DigitalStepDivisor.
	DigitalStepDivisor float64
}

// DefaultTuning returns the stock sensitivity
func DefaultTuning() Tuning {
	return Tuning{
		OpticalStep:        DefaultOpticalStep,
		DigitalStepDivisor: DefaultDigitalStepDivisor,
	}
}

// State is the zoom state of one camera-open session
type State struct {
	ZoomLevel         float64
	BitmapZoom        float64
	LastFingerSpacing float64
	CropRegion        image.Rectangle
	HasCropRegion     bool
}

// EffectiveZoom is the product of the optical and digital zoom
func (s State) EffectiveZoom() float64 {
	return s.ZoomLevel * s.BitmapZoom
}

// CropSink receives the crop rectangle for an outbound capture request.
type CropSink interface {
	SetCropRegion(region image.Rectangle)
}

// Controller owns the zoom state for a single camera session.
// It is not safe for concurrent use.
type Controller struct {
	state  State
	tuning Tuning
	log    zerolog.Logger
}

// Option configures a Controller
type Option func(*Controller)

// WithTuning overrides the zoom sensitivity. Non-positive fields keep
// their defaults.
func WithTuning(t Tuning) Option {
	return func(c *Controller) {
		if t.OpticalStep > 0 {
			c.tuning.OpticalStep = t.OpticalStep
		}
		if t.DigitalStepDivisor > 0 {
			c.tuning.DigitalStepDivisor = t.DigitalStepDivisor
		}
	}
}

// WithLogger attaches a logger for debug tracing of zoom steps
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) {
		c.log = l
	}
}

// New creates a Controller with no zoom applied
func New(opts ...Option) *Controller {
	c := &Controller{
		state:  initialState(),
		tuning: DefaultTuning(),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func initialState() State {
	return State{ZoomLevel: 1, BitmapZoom: 1}
}

// Tuning returns the sensitivity in use
func (c *Controller) Tuning() Tuning {
	return c.tuning
}

// State returns a snapshot of the current zoom state
func (c *Controller) State() State {
	return c.state
}

// ZoomLevel returns the optical crop factor
func (c *Controller) ZoomLevel() float64 {
	return c.state.ZoomLevel
}

// CurrentBitmapZoom returns the software magnification factor
func (c *Controller) CurrentBitmapZoom() float64 {
	return c.state.BitmapZoom
}

// EffectiveZoom returns ZoomLevel * BitmapZoom
func (c *Controller) EffectiveZoom() float64 {
	return c.state.EffectiveZoom()
}

// CropRegion returns the last computed crop rectangle, if any
func (c *Controller) CropRegion() (image.Rectangle, bool) {
	return c.state.CropRegion, c.state.HasCropRegion
}

// Reset discards all zoom state
func (c *Controller) Reset() {
	c.state = initialState()
}

// ProcessGestureSample feeds one frame of touch contacts into the controller.
//
// Exactly two contacts are needed to zoom. The first two-finger sample after
// any other contact count only records the finger spacing; subsequent samples
// zoom in or out depending on whether the spacing grew or shrank and then
// recompute the crop region. cropApplied reports whether the crop region was
// recomputed and should be submitted with a new capture request.
//
// If the sensor does not report its active array or maximum zoom, the sample
// is ignored.
func (c *Controller) ProcessGestureSample(limits types.SensorLimits, pointers []types.Point, viewportMinDimension int, isRecording bool) (effectiveZoom float64, cropApplied bool) {
	if !limits.HasActiveArray() || !limits.HasMaxZoom() {
		c.log.Debug().
			Bool("active_array", limits.HasActiveArray()).
			Bool("max_zoom", limits.HasMaxZoom()).
			Msg("sensor capability missing, ignoring gesture sample")
		return c.state.EffectiveZoom(), false
	}

	if len(pointers) != 2 {
		c.state.LastFingerSpacing = 0
		return c.state.EffectiveZoom(), false
	}

	spacing := pointers[0].Distance(pointers[1])
	if math.IsNaN(spacing) || math.IsInf(spacing, 0) {
		c.state.LastFingerSpacing = 0
		return c.state.EffectiveZoom(), false
	}
	if c.state.LastFingerSpacing == 0 {
		c.state.LastFingerSpacing = spacing
		return c.state.EffectiveZoom(), false
	}

	// a previous camera may have left the level above this sensor's range
	c.state.ZoomLevel = clamp(c.state.ZoomLevel, 1, limits.MaxDigitalZoom)

	switch {
	case spacing > c.state.LastFingerSpacing:
		c.zoomIn(limits.MaxDigitalZoom, viewportMinDimension, isRecording)
	case spacing < c.state.LastFingerSpacing:
		c.zoomOut()
	}

	c.state.CropRegion = cropper.SensorRegion(limits.ActiveArraySize, c.state.ZoomLevel)
	c.state.HasCropRegion = true
	c.state.LastFingerSpacing = spacing

	c.log.Debug().
		Float64("spacing", spacing).
		Float64("zoom_level", c.state.ZoomLevel).
		Float64("bitmap_zoom", c.state.BitmapZoom).
		Str("crop", c.state.CropRegion.String()).
		Msg("zoom updated")

	return c.state.EffectiveZoom(), true
}

func (c *Controller) zoomIn(maxZoom float64, viewportMin int, recording bool) {
	step := c.tuning.OpticalStep
	if maxZoom-c.state.ZoomLevel <= step {
		step = maxZoom - c.state.ZoomLevel

		// Optical range exhausted: let the preview crop absorb the gesture,
		// as long as the viewport can still shrink by one more increment.
		next := c.state.BitmapZoom + c.state.BitmapZoom/c.tuning.DigitalStepDivisor
		if !recording && int(float64(viewportMin)/next) != 0 {
			c.state.BitmapZoom = next
		}
	}
	c.state.ZoomLevel = clamp(c.state.ZoomLevel+step, 1, maxZoom)
}

func (c *Controller) zoomOut() {
	step := c.tuning.OpticalStep
	if c.state.ZoomLevel-step < 1 {
		step = c.state.ZoomLevel - 1
	}

	if c.state.BitmapZoom == 1 {
		c.state.ZoomLevel = clamp(c.state.ZoomLevel-step, 1, c.state.ZoomLevel)
		return
	}

	c.state.BitmapZoom -= c.state.BitmapZoom / c.tuning.DigitalStepDivisor
	if c.state.BitmapZoom < 1 {
		c.state.BitmapZoom = 1
	}
}

// ApplyCropToRequest writes the current crop region into sink and returns
// the effective zoom. Before any crop has been computed the zero rectangle
// is written, which leaves the sensor's default framing in place.
func (c *Controller) ApplyCropToRequest(sink CropSink) float64 {
	sink.SetCropRegion(c.state.CropRegion)
	return c.state.EffectiveZoom()
}

// ResetDigitalZoomToMax drops the digital zoom layer, used when switching to
// another physical camera. The existing crop region is written to sink as is;
// it is not recomputed against limits, so the next gesture sample is what
// brings it and the zoom level in line with the new sensor. Returns the
// optical zoom level.
func (c *Controller) ResetDigitalZoomToMax(limits types.SensorLimits, sink CropSink) float64 {
	c.state.BitmapZoom = 1
	sink.SetCropRegion(c.state.CropRegion)

	if c.state.HasCropRegion && limits.HasActiveArray() && !c.state.CropRegion.In(limits.ActiveArraySize) {
		c.log.Debug().
			Str("crop", c.state.CropRegion.String()).
			Str("active_array", limits.ActiveArraySize.String()).
			Msg("stale crop region exceeds new sensor until next gesture")
	}
	return c.state.ZoomLevel
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
