// Package trace loads recorded pinch gestures from YAML and replays them
// through a zoom controller.
package trace

import (
	"fmt"
	"image"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/menta2k/camera-core/pkg/types"
	"github.com/menta2k/camera-core/pkg/zoom"
)

// Sensor describes the camera a trace was recorded on
type Sensor struct {
	X       int     `yaml:"x"`
	Y       int     `yaml:"y"`
	Width   int     `yaml:"width"`
	Height  int     `yaml:"height"`
	MaxZoom float64 `yaml:"max_zoom"`
}

// Limits converts the sensor description to controller input
func (s Sensor) Limits() types.SensorLimits {
	return types.SensorLimits{
		ActiveArraySize: image.Rect(s.X, s.Y, s.X+s.Width, s.Y+s.Height),
		MaxDigitalZoom:  s.MaxZoom,
	}
}

// Frame is one touch event. Each pointer is an [x, y] pair. Recording
// overrides the trace-wide flag for this frame when set.
type Frame struct {
	Pointers  [][2]float64 `yaml:"pointers"`
	Recording *bool        `yaml:"recording,omitempty"`
}

// Points converts the raw pointer pairs
func (f Frame) Points() []types.Point {
	pts := make([]types.Point, len(f.Pointers))
	for i, p := range f.Pointers {
		pts[i] = types.Point{X: p[0], Y: p[1]}
	}
	return pts
}

// Trace is a recorded gesture session
type Trace struct {
	Sensor      Sensor  `yaml:"sensor"`
	ViewportMin int     `yaml:"viewport_min"`
	Recording   bool    `yaml:"recording"`
	Frames      []Frame `yaml:"frames"`
}

// Result is the controller output after one frame
type Result struct {
	Frame       int
	Pointers    int
	Effective   float64
	ZoomLevel   float64
	BitmapZoom  float64
	CropApplied bool
	Crop        image.Rectangle
}

// Parse decodes a YAML trace
func Parse(data []byte) (*Trace, error) {
	var t Trace
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse trace: %w", err)
	}
	if t.ViewportMin < 0 {
		return nil, fmt.Errorf("viewport_min cannot be negative")
	}
	return &t, nil
}

// Load reads and decodes a trace file
func Load(path string) (*Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trace file: %w", err)
	}
	return Parse(data)
}

// Replay feeds every frame of t into c in order
func Replay(c *zoom.Controller, t *Trace, log zerolog.Logger) []Result {
	limits := t.Sensor.Limits()
	results := make([]Result, 0, len(t.Frames))

	for i, f := range t.Frames {
		recording := t.Recording
		if f.Recording != nil {
			recording = *f.Recording
		}

		effective, applied := c.ProcessGestureSample(limits, f.Points(), t.ViewportMin, recording)
		crop, _ := c.CropRegion()
		results = append(results, Result{
			Frame:       i,
			Pointers:    len(f.Pointers),
			Effective:   effective,
			ZoomLevel:   c.ZoomLevel(),
			BitmapZoom:  c.CurrentBitmapZoom(),
			CropApplied: applied,
			Crop:        crop,
		})
	}

	log.Debug().Int("frames", len(t.Frames)).Msg("trace replayed")
	return results
}
