// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"

	"github.com/user/videomix/pkg/mixer"
	"github.com/user/videomix/pkg/scale"
	"github.com/user/videomix/pkg/video"
	"gopkg.in/yaml.v3"
)

// Config represents the full configuration for videomix.
type Config struct {
	// Mixing
	Format     string `yaml:"format"`
	Background string `yaml:"background"`
	Method     string `yaml:"method"`

	// Run length, in output frames.
	Frames int `yaml:"frames"`

	// Streams
	Streams []StreamConfig `yaml:"streams"`

	// Snapshots
	SnapshotDir   string `yaml:"snapshot_dir"`
	ThumbnailSize int    `yaml:"thumbnail_size"`

	// Logging
	LogLevel string `yaml:"log_level"`
	Quiet    bool   `yaml:"quiet"`
}

// StreamConfig describes one input stream.
type StreamConfig struct {
	Pattern string `yaml:"pattern"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`

	FPS video.Fraction `yaml:"fps"`

	// Placement inside the output frame. ScaleWidth/ScaleHeight 0 keeps
	// the native size.
	XPos        int `yaml:"xpos"`
	YPos        int `yaml:"ypos"`
	ScaleWidth  int `yaml:"scale_width"`
	ScaleHeight int `yaml:"scale_height"`

	ZOrder int     `yaml:"zorder"`
	Alpha  float64 `yaml:"alpha"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Format:     "AYUV",
		Background: "checker",
		Method:     "bilinear",
		Frames:     150,

		Streams: []StreamConfig{
			{Pattern: "bars", Width: 320, Height: 240, FPS: video.Fract(30, 1), Alpha: 1.0},
			{Pattern: "ball", Width: 160, Height: 120, FPS: video.Fract(15, 1),
				XPos: 160, YPos: 120, ZOrder: 1, Alpha: 0.8},
		},

		ThumbnailSize: 160,
		LogLevel:      "info",
	}
}

// LoadFromFile loads configuration from a YAML file on top of defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks the configuration for values the mixer would reject.
func (c Config) Validate() error {
	if _, err := video.ParseFormat(c.Format); err != nil {
		return err
	}
	if _, err := mixer.ParseBackground(c.Background); err != nil {
		return err
	}
	if _, err := scale.ParseMethod(c.Method); err != nil {
		return err
	}
	if c.Frames <= 0 {
		return fmt.Errorf("frames must be positive, got %d", c.Frames)
	}
	if len(c.Streams) == 0 {
		return fmt.Errorf("at least one stream is required")
	}
	for i, s := range c.Streams {
		if s.Width <= 0 || s.Height <= 0 {
			return fmt.Errorf("stream %d: invalid geometry %dx%d", i, s.Width, s.Height)
		}
		if s.FPS.N < 0 || s.FPS.D < 0 {
			return fmt.Errorf("stream %d: invalid framerate %s", i, s.FPS)
		}
		if s.Alpha < 0 || s.Alpha > 1 {
			return fmt.Errorf("stream %d: alpha %g outside [0,1]", i, s.Alpha)
		}
		if s.ScaleWidth < 0 || s.ScaleHeight < 0 {
			return fmt.Errorf("stream %d: invalid scale target %dx%d",
				i, s.ScaleWidth, s.ScaleHeight)
		}
	}
	return nil
}
