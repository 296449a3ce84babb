package zoom

import "image"

// RecordingSink is an in-memory CropSink that remembers every region
// written to it.
type RecordingSink struct {
	Regions []image.Rectangle
}

// SetCropRegion implements CropSink
func (s *RecordingSink) SetCropRegion(region image.Rectangle) {
	s.Regions = append(s.Regions, region)
}

// Last returns the most recently written region
func (s *RecordingSink) Last() (image.Rectangle, bool) {
	if len(s.Regions) == 0 {
		return image.Rectangle{}, false
	}
	return s.Regions[len(s.Regions)-1], true
}

// CropSinkFunc adapts a plain function to CropSink
type CropSinkFunc func(region image.Rectangle)

// SetCropRegion implements CropSink
func (f CropSinkFunc) SetCropRegion(region image.Rectangle) {
	f(region)
}
