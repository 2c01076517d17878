package config

import (
	"errors"
	"fmt"
	"strings"
)

const maxWorkers = 32

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateDownload(); err != nil {
		return err
	}
	if err := c.validateSlides(); err != nil {
		return err
	}
	if err := c.validateFFmpeg(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		return errors.New("paths.cache_dir must be set")
	}
	if c.Paths.CacheDir == c.Paths.OutputDir {
		return errors.New("paths.cache_dir must differ from paths.output_dir")
	}
	return nil
}

func (c *Config) validateDownload() error {
	if c.Download.Workers > maxWorkers {
		return fmt.Errorf("download.workers must be at most %d", maxWorkers)
	}
	return nil
}

func (c *Config) validateSlides() error {
	if c.Slides.PDFDPI < 10 || c.Slides.PDFDPI > 1200 {
		return errors.New("slides.pdf_dpi must be between 10 and 1200")
	}
	return nil
}

func (c *Config) validateFFmpeg() error {
	if c.FFmpeg.VideoCodec == "" {
		return errors.New("ffmpeg.video_codec must be set")
	}
	if c.FFmpeg.AudioCodec == "" {
		return errors.New("ffmpeg.audio_codec must be set")
	}
	if c.FFmpeg.FrameRate < 0 {
		return errors.New("ffmpeg.frame_rate must be >= 0")
	}
	if c.FFmpeg.AudioChannels < 0 {
		return errors.New("ffmpeg.audio_channels must be >= 0")
	}
	switch c.FFmpeg.HWAccel {
	case "", "cuda", "vaapi", "qsv", "videotoolbox", "auto":
	default:
		return fmt.Errorf("ffmpeg.hwaccel: unsupported value %q", c.FFmpeg.HWAccel)
	}
	return nil
}
