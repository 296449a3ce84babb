// Package cameracore is the numeric core of a mobile camera control layer.
//
// It turns two-finger pinch gestures into a combined optical crop and
// software magnification zoom, and picks camera output sizes for preview and
// still capture. Everything runs synchronously on caller-supplied snapshots;
// the host keeps ownership of the camera device, the capture session, the
// preview surface and touch dispatch.
//
// Basic usage:
//
//	limits := types.SensorLimits{
//		ActiveArraySize: image.Rect(0, 0, 4032, 3024),
//		MaxDigitalZoom:  8,
//	}
//	session := cameracore.NewSession("0", limits, streams)
//
//	// choose the preview stream size for a 1080x1440 viewport
//	size := session.PreviewSize(resolution.PreviewRequest{
//		Viewport: types.Size{Width: 1440, Height: 1080},
//		Aspect:   types.Standard,
//	})
//
//	// on every touch frame
//	zoom, changed := session.HandleGesture(pointers, 1080, false)
//	if changed {
//		session.ApplyZoom(requestBuilder)
//		// resubmit the repeating capture request
//	}
//
// The package consists of the following components:
//
// 1. Zoom (pkg/zoom): gesture-driven zoom state and crop region
// 2. Resolution (pkg/resolution): preview and capture size selection
// 3. Cropper (pkg/cropper): crop geometry shared by sensor and preview
// 4. Processing (pkg/processing): applying digital zoom to preview frames
package cameracore

import (
	"github.com/rs/zerolog"

	"github.com/menta2k/camera-core/pkg/resolution"
	"github.com/menta2k/camera-core/pkg/types"
	"github.com/menta2k/camera-core/pkg/zoom"
)

// Version of the camera core library
const Version = "1.0.0"

// Session bundles the zoom state and output size selection for one opened
// camera. Create a new Session every time a camera is opened and drop it
// when the camera closes. A Session is not safe for concurrent use.
type Session struct {
	cameraID string
	limits   types.SensorLimits
	streams  resolution.StreamConfigurationMap
	zoom     *zoom.Controller
	zoomOpts []zoom.Option
	log      zerolog.Logger
	closed   bool
}

// Option configures a Session
type Option func(*Session)

// WithTuning sets the zoom sensitivity
func WithTuning(t zoom.Tuning) Option {
	return func(s *Session) {
		s.zoomOpts = append(s.zoomOpts, zoom.WithTuning(t))
	}
}

// WithLogger attaches a logger to the session and its zoom controller
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) {
		s.log = l
		s.zoomOpts = append(s.zoomOpts, zoom.WithLogger(l.With().Str("component", "zoom").Logger()))
	}
}

// NewSession starts a session for an opened camera. streams may be nil when
// the platform reports no stream configuration.
func NewSession(cameraID string, limits types.SensorLimits, streams resolution.StreamConfigurationMap, opts ...Option) *Session {
	s := &Session{
		cameraID: cameraID,
		limits:   limits,
		streams:  streams,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.zoom = zoom.New(s.zoomOpts...)

	s.log.Debug().
		Str("camera", cameraID).
		Str("active_array", limits.ActiveArraySize.String()).
		Float64("max_zoom", limits.MaxDigitalZoom).
		Msg("camera session opened")
	return s
}

// CameraID returns the camera this session is bound to
func (s *Session) CameraID() string {
	return s.cameraID
}

// Limits returns the sensor limits of the current camera
func (s *Session) Limits() types.SensorLimits {
	return s.limits
}

// Zoom exposes the session's zoom controller
func (s *Session) Zoom() *zoom.Controller {
	return s.zoom
}

// HandleGesture feeds one touch frame into the zoom controller using the
// current camera's limits. See zoom.Controller.ProcessGestureSample.
func (s *Session) HandleGesture(pointers []types.Point, viewportMinDimension int, isRecording bool) (float64, bool) {
	if s.closed {
		return s.zoom.EffectiveZoom(), false
	}
	return s.zoom.ProcessGestureSample(s.limits, pointers, viewportMinDimension, isRecording)
}

// BitmapZoom returns the magnification the preview surface should apply
func (s *Session) BitmapZoom() float64 {
	return s.zoom.CurrentBitmapZoom()
}

// ApplyZoom writes the crop region into an outbound capture request and
// returns the effective zoom
func (s *Session) ApplyZoom(sink zoom.CropSink) float64 {
	return s.zoom.ApplyCropToRequest(sink)
}

// PreviewSize picks the preview stream size for req
func (s *Session) PreviewSize(req resolution.PreviewRequest) types.Size {
	return resolution.PreviewSizeFor(s.streams, req)
}

// CaptureSize picks the largest still capture size under order
func (s *Session) CaptureSize(order resolution.Comparator) types.Size {
	return resolution.CaptureSizeFor(s.streams, order)
}

// SwitchCamera moves the session to another physical camera. Optical zoom
// carries over while digital zoom is dropped; the crop region keeps the
// previous camera's geometry until the next gesture sample recomputes it.
// Returns the optical zoom level.
func (s *Session) SwitchCamera(cameraID string, limits types.SensorLimits, streams resolution.StreamConfigurationMap, sink zoom.CropSink) float64 {
	s.log.Debug().
		Str("from", s.cameraID).
		Str("to", cameraID).
		Msg("switching camera")

	s.cameraID = cameraID
	s.limits = limits
	s.streams = streams
	return s.zoom.ResetDigitalZoomToMax(limits, sink)
}

// Close ends the session and discards the zoom state
func (s *Session) Close() {
	s.zoom.Reset()
	s.closed = true
	s.log.Debug().Str("camera", s.cameraID).Msg("camera session closed")
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
