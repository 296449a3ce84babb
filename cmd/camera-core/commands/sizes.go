package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/menta2k/camera-core/internal/logger"
	"github.com/menta2k/camera-core/pkg/resolution"
	"github.com/menta2k/camera-core/pkg/types"
)

var previewSizeCmd = &cobra.Command{
	Use:   "preview-size",
	Short: "Pick the preview stream size for a viewport",
	Long: `Select the output size a preview stream should use, given the sizes the
camera advertises and the viewport the preview is shown in. Aspect ratio,
and upscale policy default to the preview section of the
configuration.`,
	Example: `  # Smallest 4:3 size covering a 640x480 viewport
  camera-core preview-size --candidates 320x240,640x480,1280x960 --viewport 640x480

  # Prefer a small stream and let the display upscale it
  camera-core preview-size --candidates 320x240,640x480 --viewport 1000x750 --upscale`,
	RunE: runPreviewSize,
}

var captureSizeCmd = &cobra.Command{
	Use:   "capture-size",
	Short: "Pick the largest still capture size",
	Long:  `Select the largest JPEG output size from the sizes the camera advertises.`,
	Example: `  # Largest by pixel count
  camera-core capture-size --candidates 1920x1080,4032x3024

  # Widest
  camera-core capture-size --candidates 4000x10,3000x3000 --order width`,
	RunE: runCaptureSize,
}

var (
	candidatesFlag string
	viewportFlag   string
	aspectFlag     string
	upscaleFlag    bool
	orderFlag      string
)

func init() {
	rootCmd.AddCommand(previewSizeCmd)
	rootCmd.AddCommand(captureSizeCmd)

	previewSizeCmd.Flags().StringVar(&candidatesFlag, "candidates", "", "comma separated candidate sizes (WxH,WxH,...)")
	previewSizeCmd.Flags().StringVar(&viewportFlag, "viewport", "", "viewport size (WxH)")
	previewSizeCmd.Flags().StringVar(&aspectFlag, "aspect", "", "aspect ratio (W:H, square, standard, widescreen, portrait or any)")
	previewSizeCmd.Flags().BoolVar(&upscaleFlag, "upscale", false, "prefer a size smaller than the viewport")
	previewSizeCmd.MarkFlagRequired("candidates")
	previewSizeCmd.MarkFlagRequired("viewport")

	captureSizeCmd.Flags().StringVar(&candidatesFlag, "candidates", "", "comma separated candidate sizes (WxH,WxH,...)")
	captureSizeCmd.Flags().StringVar(&orderFlag, "order", "area", "ordering (area or width)")
	captureSizeCmd.MarkFlagRequired("candidates")
}

func runPreviewSize(cmd *cobra.Command, args []string) error {
	candidates, err := parseSizes(candidatesFlag)
	if err != nil {
		return err
	}
	viewport, err := types.ParseSize(viewportFlag)
	if err != nil {
		return fmt.Errorf("invalid viewport: %w", err)
	}

	req, err := cfg.PreviewRequest(viewport)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("aspect") {
		if req.Aspect, err = types.ParseAspectRatio(aspectFlag); err != nil {
			return fmt.Errorf("invalid aspect: %w", err)
		}
	}
	if cmd.Flags().Changed("upscale") {
		req.UpscalePreferred = upscaleFlag
	}

	size := resolution.SelectPreviewSize(candidates, req)
	logger.Logger.Debug().
		Int("candidates", len(candidates)).
		Str("viewport", viewport.String()).
		Str("aspect", req.Aspect.String()).
		Bool("upscale", req.UpscalePreferred).
		Str("selected", size.String()).
		Msg("preview size selected")

	fmt.Fprintln(cmd.OutOrStdout(), size)
	return nil
}

func runCaptureSize(cmd *cobra.Command, args []string) error {
	candidates, err := parseSizes(candidatesFlag)
	if err != nil {
		return err
	}
	order, err := parseOrder(orderFlag)
	if err != nil {
		return err
	}

	size := resolution.SelectCaptureSize(candidates, order)
	fmt.Fprintln(cmd.OutOrStdout(), size)
	return nil
}

// parseSizes parses a comma separated list of WxH sizes
func parseSizes(s string) ([]types.Size, error) {
	var sizes []types.Size
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		size, err := types.ParseSize(field)
		if err != nil {
			return nil, fmt.Errorf("invalid candidate %q: %w", field, err)
		}
		sizes = append(sizes, size)
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("no candidate sizes given")
	}
	return sizes, nil
}

func parseOrder(name string) (resolution.Comparator, error) {
	switch strings.ToLower(name) {
	case "area", "":
		return resolution.ByArea, nil
	case "width":
		return resolution.ByWidth, nil
	default:
		return nil, fmt.Errorf("unsupported order: %s (use 'area' or 'width')", name)
	}
}
