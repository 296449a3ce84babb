package types

import (
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"
)

// Size is a camera output resolution in pixels
type Size struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Area returns the pixel count of the size
func (s Size) Area() int64 {
	return int64(s.Width) * int64(s.Height)
}

// IsZero reports whether s is the "no usable size" sentinel
func (s Size) IsZero() bool {
	return s.Width == 0 && s.Height == 0
}

// Covers reports whether s is at least as large as other on both axes
func (s Size) Covers(other Size) bool {
	return s.Width >= other.Width && s.Height >= other.Height
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// ParseSize parses "WIDTHxHEIGHT", e.g. "1920x1080"
func ParseSize(s string) (Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return Size{}, fmt.Errorf("invalid size %q: expected WIDTHxHEIGHT", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return Size{}, fmt.Errorf("invalid width in %q: %w", s, err)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return Size{}, fmt.Errorf("invalid height in %q: %w", s, err)
	}
	if width < 0 || height < 0 {
		return Size{}, fmt.Errorf("invalid size %q: negative dimension", s)
	}
	return Size{Width: width, Height: height}, nil
}

// Point is a touch contact position in view coordinates
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Distance returns the Euclidean distance between two contacts
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// AspectRatio is a width:height ratio used to filter output sizes.
// The zero value matches any size.
type AspectRatio struct {
	Width  int
	Height int
	Name   string
}

// Common aspect ratios
var (
	Square     = AspectRatio{1, 1, "square"}
	Standard   = AspectRatio{4, 3, "standard"}
	Widescreen = AspectRatio{16, 9, "widescreen"}
	Portrait   = AspectRatio{3, 4, "portrait"}
)

// IsZero reports whether the ratio imposes no constraint
func (a AspectRatio) IsZero() bool {
	return a.Width <= 0 || a.Height <= 0
}

// Matches reports whether s has exactly this ratio. Integer cross
// multiplication avoids float rounding mismatches.
func (a AspectRatio) Matches(s Size) bool {
	if a.IsZero() {
		return true
	}
	return int64(s.Height)*int64(a.Width) == int64(s.Width)*int64(a.Height)
}

func (a AspectRatio) String() string {
	if a.IsZero() {
		return "any"
	}
	return fmt.Sprintf("%d:%d", a.Width, a.Height)
}

// ParseAspectRatio parses "W:H" or a named ratio ("standard", "widescreen", ...).
// An empty string or "any" yields the unconstrained zero ratio.
func ParseAspectRatio(s string) (AspectRatio, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "any" {
		return AspectRatio{}, nil
	}
	for _, named := range []AspectRatio{Square, Standard, Widescreen, Portrait} {
		if s == named.Name {
			return named, nil
		}
	}
	w, h, ok := strings.Cut(s, ":")
	if !ok {
		return AspectRatio{}, fmt.Errorf("invalid aspect ratio %q: expected W:H", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return AspectRatio{}, fmt.Errorf("invalid aspect width in %q: %w", s, err)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return AspectRatio{}, fmt.Errorf("invalid aspect height in %q: %w", s, err)
	}
	if width <= 0 || height <= 0 {
		return AspectRatio{}, fmt.Errorf("invalid aspect ratio %q: dimensions must be positive", s)
	}
	return AspectRatio{Width: width, Height: height, Name: s}, nil
}

// SensorLimits is a snapshot of the camera characteristics the zoom
// controller needs. An empty ActiveArraySize or a MaxDigitalZoom below 1
// means the sensor did not report that characteristic.
type SensorLimits struct {
	ActiveArraySize image.Rectangle
	MaxDigitalZoom  float64
}

// HasActiveArray reports whether the active pixel array is known
func (l SensorLimits) HasActiveArray() bool {
	return !l.ActiveArraySize.Empty()
}

// HasMaxZoom reports whether the maximum crop zoom is known
func (l SensorLimits) HasMaxZoom() bool {
	return l.MaxDigitalZoom >= 1
}
