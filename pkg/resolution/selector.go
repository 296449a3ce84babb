// Package resolution picks camera output sizes for preview and still capture.
package resolution

import (
	"cmp"
	"slices"

	"github.com/menta2k/camera-core/pkg/types"
)

// Comparator orders two sizes: negative if a < b, zero if equal, positive if a > b
type Comparator func(a, b types.Size) int

// ByArea orders sizes by pixel count
func ByArea(a, b types.Size) int {
	return cmp.Compare(a.Area(), b.Area())
}

// ByWidth orders sizes by width, then height
func ByWidth(a, b types.Size) int {
	if c := cmp.Compare(a.Width, b.Width); c != 0 {
		return c
	}
	return cmp.Compare(a.Height, b.Height)
}

// PreviewRequest describes the preview stream a host wants to render
type PreviewRequest struct {
	// Viewport is the on-screen surface the preview must fill.
	Viewport types.Size
	// Aspect restricts candidates to an exact ratio; zero accepts any.
	Aspect types.AspectRatio
	// UpscalePreferred favors a smaller native size that is upscaled on
	// display over a size that already covers the viewport.
	UpscalePreferred bool
}

// SelectPreviewSize picks the preview size for req from candidates.
//
// Candidates with the requested aspect ratio are split into those covering
// the viewport on both axes and those that do not. By default the smallest
// covering size wins, falling back to the largest non-covering one. With
// UpscalePreferred the smallest non-covering size wins, falling back to the
// smallest covering one. When no candidate has the right ratio the first
// candidate is returned as is. An empty candidate list yields the zero Size.
func SelectPreviewSize(candidates []types.Size, req PreviewRequest) types.Size {
	if len(candidates) == 0 {
		return types.Size{}
	}

	var bigEnough, notBigEnough []types.Size
	for _, c := range candidates {
		if !req.Aspect.Matches(c) {
			continue
		}
		if c.Covers(req.Viewport) {
			bigEnough = append(bigEnough, c)
		} else {
			notBigEnough = append(notBigEnough, c)
		}
	}

	if req.UpscalePreferred {
		switch {
		case len(notBigEnough) > 0:
			return slices.MinFunc(notBigEnough, ByArea)
		case len(bigEnough) > 0:
			return slices.MinFunc(bigEnough, ByArea)
		}
		return candidates[0]
	}

	switch {
	case len(bigEnough) > 0:
		return slices.MinFunc(bigEnough, ByArea)
	case len(notBigEnough) > 0:
		return slices.MaxFunc(notBigEnough, ByArea)
	}
	return candidates[0]
}

// SelectCaptureSize returns the largest candidate under order. Ties keep the
// first candidate encountered. An empty list yields the zero Size.
func SelectCaptureSize(candidates []types.Size, order Comparator) types.Size {
	if len(candidates) == 0 {
		return types.Size{}
	}
	if order == nil {
		order = ByArea
	}
	return slices.MaxFunc(candidates, order)
}
