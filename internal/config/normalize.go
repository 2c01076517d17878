package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSession()
	c.normalizeDownload()
	c.normalizeSlides()
	c.normalizeTools()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		c.Paths.StagingDir = defaultStagingDir
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SessionFile) == "" && c.Paths.OutputDir != "" {
		c.Paths.SessionFile = filepath.Join(c.Paths.OutputDir, defaultSessionFileName)
	}
	if c.Paths.SessionFile, err = expandPath(c.Paths.SessionFile); err != nil {
		return fmt.Errorf("paths.session_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeSession() {
	c.Session.Host = strings.TrimSpace(c.Session.Host)
	c.Session.Host = strings.TrimPrefix(c.Session.Host, "https://")
	c.Session.Host = strings.TrimRight(c.Session.Host, "/")
	if c.Session.Host == "" {
		c.Session.Host = defaultHost
	}
	c.Session.Cookie = strings.TrimSpace(c.Session.Cookie)
	if c.Session.Cookie == "" {
		if value, ok := os.LookupEnv("LESSONVAULT_SESSION"); ok {
			c.Session.Cookie = strings.TrimSpace(value)
		}
	}
	if c.Session.RequestTimeout <= 0 {
		c.Session.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizeDownload() {
	if c.Download.Workers <= 0 {
		c.Download.Workers = defaultWorkers
	}
	c.Download.CourseFilter = strings.TrimSpace(c.Download.CourseFilter)
	c.Download.LessonFilter = strings.TrimSpace(c.Download.LessonFilter)
	if c.Download.StaleScratchHours < 0 {
		c.Download.StaleScratchHours = 0
	}
}

func (c *Config) normalizeSlides() {
	if c.Slides.PDFDPI <= 0 {
		c.Slides.PDFDPI = defaultPDFDPI
	}
	if c.Slides.AnswerFontSize <= 0 {
		c.Slides.AnswerFontSize = defaultAnswerFontSize
	}
	if c.Slides.JPEGQuality <= 0 || c.Slides.JPEGQuality > 100 {
		c.Slides.JPEGQuality = defaultJPEGQuality
	}
}

func (c *Config) normalizeTools() {
	c.Aria2.Binary = strings.TrimSpace(c.Aria2.Binary)
	if c.Aria2.Binary == "" {
		c.Aria2.Binary = defaultAria2Binary
	}
	if c.Aria2.SegmentConnections <= 0 {
		c.Aria2.SegmentConnections = defaultSegmentConnections
	}
	if c.Aria2.SegmentSplits <= 0 {
		c.Aria2.SegmentSplits = defaultSegmentSplits
	}
	if c.Aria2.BatchConnections <= 0 {
		c.Aria2.BatchConnections = defaultBatchConnections
	}
	if c.Aria2.BatchJobs <= 0 {
		c.Aria2.BatchJobs = defaultBatchJobs
	}
	if c.Aria2.InterruptTimeout <= 0 {
		c.Aria2.InterruptTimeout = defaultAria2Interrupt
	}

	c.FFmpeg.Binary = strings.TrimSpace(c.FFmpeg.Binary)
	if c.FFmpeg.Binary == "" {
		c.FFmpeg.Binary = defaultFFmpegBinary
	}
	c.FFmpeg.HWAccel = strings.ToLower(strings.TrimSpace(c.FFmpeg.HWAccel))
	c.FFmpeg.VideoCodec = strings.TrimSpace(c.FFmpeg.VideoCodec)
	c.FFmpeg.AudioCodec = strings.TrimSpace(c.FFmpeg.AudioCodec)
	if c.FFmpeg.SettleMillis <= 0 {
		c.FFmpeg.SettleMillis = defaultFFmpegSettleMillis
	}
	extra := c.FFmpeg.ExtraArgs[:0]
	for _, arg := range c.FFmpeg.ExtraArgs {
		if trimmed := strings.TrimSpace(arg); trimmed != "" {
			extra = append(extra, trimmed)
		}
	}
	c.FFmpeg.ExtraArgs = extra

	if c.Process.GracePeriodMillis <= 0 {
		c.Process.GracePeriodMillis = defaultGracePeriodMillis
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
