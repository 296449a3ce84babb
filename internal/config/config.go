package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/menta2k/camera-core/pkg/processing"
	"github.com/menta2k/camera-core/pkg/resolution"
	"github.com/menta2k/camera-core/pkg/types"
	"github.com/menta2k/camera-core/pkg/zoom"
)

// EnvPrefix is the prefix for environment overrides, e.g. CAMERA_CORE_ZOOM_OPTICAL_STEP
const EnvPrefix = "CAMERA_CORE"

// Config holds the application configuration
type Config struct {
	Zoom    ZoomConfig    `mapstructure:"zoom" json:"zoom" yaml:"zoom"`
	Preview PreviewConfig `mapstructure:"preview" json:"preview" yaml:"preview"`
	Logging LoggingConfig `mapstructure:"logging" json:"logging" yaml:"logging"`
}

// ZoomConfig holds the pinch zoom sensitivity
type ZoomConfig struct {
	OpticalStep        float64 `mapstructure:"optical_step" json:"optical_step" yaml:"optical_step"`
	DigitalStepDivisor float64 `mapstructure:"digital_step_divisor" json:"digital_step_divisor" yaml:"digital_step_divisor"`
}

// PreviewConfig holds the preview size selection policy
type PreviewConfig struct {
	Aspect           string `mapstructure:"aspect" json:"aspect" yaml:"aspect"`
	UpscalePreferred bool   `mapstructure:"upscale_preferred" json:"upscale_preferred" yaml:"upscale_preferred"`
	FastResample     bool   `mapstructure:"fast_resample" json:"fast_resample" yaml:"fast_resample"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" json:"level" yaml:"level"`
	Pretty bool   `mapstructure:"pretty" json:"pretty" yaml:"pretty"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Zoom: ZoomConfig{
			OpticalStep:        zoom.DefaultOpticalStep,
			DigitalStepDivisor: zoom.DefaultDigitalStepDivisor,
		},
		Preview: PreviewConfig{
			Aspect:           "4:3",
			UpscalePreferred: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: false,
		},
	}
}

// NewViper returns a viper instance with every key defaulted and
// environment overrides enabled.
func NewViper() *viper.Viper {
	v := viper.New()
	d := Default()

	v.SetDefault("zoom.optical_step", d.Zoom.OpticalStep)
	v.SetDefault("zoom.digital_step_divisor", d.Zoom.DigitalStepDivisor)
	v.SetDefault("preview.aspect", d.Preview.Aspect)
	v.SetDefault("preview.upscale_preferred", d.Preview.UpscalePreferred)
	v.SetDefault("preview.fast_resample", d.Preview.FastResample)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.pretty", d.Logging.Pretty)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration into v and decodes it. An explicit path must
// exist; with an empty path the default location is tried and a missing
// file is not an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Dir(GetConfigPath()))
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Zoom.OpticalStep <= 0 {
		return fmt.Errorf("zoom.optical_step must be positive")
	}

	if c.Zoom.DigitalStepDivisor < 1 {
		return fmt.Errorf("zoom.digital_step_divisor must be at least 1")
	}

	if _, err := types.ParseAspectRatio(c.Preview.Aspect); err != nil {
		return fmt.Errorf("preview.aspect: %w", err)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "disabled", "off", "":
	default:
		return fmt.Errorf("logging.level %q is not one of trace, debug, info, warn, error, off", c.Logging.Level)
	}

	return nil
}

// Tuning returns the zoom sensitivity
func (c *Config) Tuning() zoom.Tuning {
	return zoom.Tuning{
		OpticalStep:        c.Zoom.OpticalStep,
		DigitalStepDivisor: c.Zoom.DigitalStepDivisor,
	}
}

// PreviewRequest builds a preview size request for the given viewport
func (c *Config) PreviewRequest(viewport types.Size) (resolution.PreviewRequest, error) {
	aspect, err := types.ParseAspectRatio(c.Preview.Aspect)
	if err != nil {
		return resolution.PreviewRequest{}, fmt.Errorf("preview.aspect: %w", err)
	}
	return resolution.PreviewRequest{
		Viewport:         viewport,
		Aspect:           aspect,
		UpscalePreferred: c.Preview.UpscalePreferred,
	}, nil
}

// Processor returns the preview processor selected by preview.fast_resample
func (c *Config) Processor() *processing.Processor {
	if c.Preview.FastResample {
		return processing.NewFastProcessor()
	}
	return processing.NewProcessor()
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.yaml"
	}
	return filepath.Join(home, ".config", "camera-core", "config.yaml")
}
