package processing

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// LoadFrame reads a preview frame from disk. WebP files are decoded with the
// WebP codec, everything else through imaging.
func LoadFrame(path string) (image.Image, error) {
	if !isWebP(path) {
		return imaging.Open(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := webp.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

// SaveFrame writes a frame in the format implied by the path extension.
// quality applies to JPEG and lossy WebP; quality 100 WebP is lossless.
func SaveFrame(img image.Image, path string, quality int) error {
	if quality < 1 || quality > 100 {
		return fmt.Errorf("quality must be within 1..100, got %d", quality)
	}
	if !isWebP(path) {
		return imaging.Save(img, path, imaging.JPEGQuality(quality))
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	opts := &webp.Options{Lossless: quality == 100, Quality: float32(quality)}
	if err := webp.Encode(f, img, opts); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}

func isWebP(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".webp")
}
