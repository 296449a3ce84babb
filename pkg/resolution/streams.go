package resolution

import "github.com/menta2k/camera-core/pkg/types"

// Format identifies an output target of the camera
type Format int

const (
	// FormatPreview is the live preview surface stream
	FormatPreview Format = iota
	// FormatJPEG is the still-image capture stream
	FormatJPEG
)

func (f Format) String() string {
	switch f {
	case FormatPreview:
		return "preview"
	case FormatJPEG:
		return "jpeg"
	default:
		return "unknown"
	}
}

// StreamConfigurationMap is the host's list of supported output sizes per
// target, in the order the platform advertises them.
type StreamConfigurationMap interface {
	OutputSizes(format Format) []types.Size
}

// StaticMap is a fixed StreamConfigurationMap
type StaticMap map[Format][]types.Size

// OutputSizes implements StreamConfigurationMap
func (m StaticMap) OutputSizes(format Format) []types.Size {
	return m[format]
}

// PreviewSizeFor selects a preview size from the host's preview stream sizes.
// A nil map means the platform reported no configuration and yields the
// zero Size.
func PreviewSizeFor(m StreamConfigurationMap, req PreviewRequest) types.Size {
	if m == nil {
		return types.Size{}
	}
	return SelectPreviewSize(m.OutputSizes(FormatPreview), req)
}

// CaptureSizeFor selects the still capture size among the host's JPEG sizes.
// A nil map yields the zero Size.
func CaptureSizeFor(m StreamConfigurationMap, order Comparator) types.Size {
	if m == nil {
		return types.Size{}
	}
	return SelectCaptureSize(m.OutputSizes(FormatJPEG), order)
}
