package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir   string `toml:"output_dir"`
	CacheDir    string `toml:"cache_dir"`
	StagingDir  string `toml:"staging_dir"`
	LogDir      string `toml:"log_dir"`
	SessionFile string `toml:"session_file"`
}

// Session contains remote platform connection settings.
type Session struct {
	Host           string `toml:"host"`
	Cookie         string `toml:"cookie"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Download selects what gets materialized and how much runs in parallel.
type Download struct {
	Video                  bool   `toml:"video"`
	Slides                 bool   `toml:"slides"`
	Workers                int    `toml:"workers"`
	CourseFilter           string `toml:"course_filter"`
	LessonFilter           string `toml:"lesson_filter"`
	CaseInsensitiveFilters bool   `toml:"case_insensitive_filters"`
	StaleScratchHours      int    `toml:"stale_scratch_hours"`
}

// Video contains lesson video pipeline settings.
type Video struct {
	KeepSegments bool `toml:"keep_segments"`
}

// Slides contains slide deck pipeline settings.
type Slides struct {
	ConvertToPDF    bool    `toml:"convert_to_pdf"`
	AnnotateAnswers bool    `toml:"annotate_answers"`
	PDFDPI          float64 `toml:"pdf_dpi"`
	AnswerFontSize  float64 `toml:"answer_font_size"`
	JPEGQuality     int     `toml:"jpeg_quality"`
}

// Aria2 contains download tool settings.
type Aria2 struct {
	Binary             string `toml:"binary"`
	SegmentConnections int    `toml:"segment_connections"`
	SegmentSplits      int    `toml:"segment_splits"`
	BatchConnections   int    `toml:"batch_connections"`
	BatchJobs          int    `toml:"batch_jobs"`
	InterruptTimeout   int    `toml:"interrupt_timeout"`
}

// FFmpeg contains the transcode command settings. The defaults reproduce a
// CUDA/HEVC low-bitrate lecture encode; CPU-only hosts should clear hwaccel and
// pick a software codec.
type FFmpeg struct {
	Binary        string   `toml:"binary"`
	HWAccel       string   `toml:"hwaccel"`
	VideoCodec    string   `toml:"video_codec"`
	VideoBitrate  string   `toml:"video_bitrate"`
	MaxRate       string   `toml:"max_rate"`
	BufSize       string   `toml:"buf_size"`
	FrameRate     int      `toml:"frame_rate"`
	RCLookahead   int      `toml:"rc_lookahead"`
	AudioCodec    string   `toml:"audio_codec"`
	AudioBitrate  string   `toml:"audio_bitrate"`
	AudioChannels int      `toml:"audio_channels"`
	ExtraArgs     []string `toml:"extra_args"`
	SettleMillis  int      `toml:"settle_ms"`
}

// Process contains external process supervision settings.
type Process struct {
	GracePeriodMillis int `toml:"grace_period_ms"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for lessonvault.
//
// Configuration sections by subsystem:
//   - Paths: output, segment cache, scratch, and log directories
//   - Session: platform host and stored session cookie
//   - Download: pipeline toggles, worker count, name filters
//   - Video / Slides: per-pipeline options
//   - Aria2 / FFmpeg: external tool invocation
//   - Process: signal escalation timing
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Session  Session  `toml:"session"`
	Download Download `toml:"download"`
	Video    Video    `toml:"video"`
	Slides   Slides   `toml:"slides"`
	Aria2    Aria2    `toml:"aria2"`
	FFmpeg   FFmpeg   `toml:"ffmpeg"`
	Process  Process  `toml:"process"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/lessonvault/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/lessonvault/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("lessonvault.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.CacheDir, c.Paths.StagingDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ErrorLogPath returns the append-only log of failed lesson videos.
func (c *Config) ErrorLogPath() string {
	return filepath.Join(c.Paths.OutputDir, "error.log")
}

// LockPath returns the lock file guarding the output root against concurrent runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.OutputDir, ".lessonvault.lock")
}

// ProcessGrace returns the SIGTERM to SIGKILL escalation window.
func (c *Config) ProcessGrace() time.Duration {
	return time.Duration(c.Process.GracePeriodMillis) * time.Millisecond
}

// Aria2InterruptTimeout bounds how long aria2c may take to flush after SIGINT.
func (c *Config) Aria2InterruptTimeout() time.Duration {
	return time.Duration(c.Aria2.InterruptTimeout) * time.Second
}

// FFmpegSettle returns the pause between SIGINT and SIGKILL for ffmpeg.
func (c *Config) FFmpegSettle() time.Duration {
	return time.Duration(c.FFmpeg.SettleMillis) * time.Millisecond
}

// RequestTimeout returns the HTTP timeout for platform API calls.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Session.RequestTimeout) * time.Second
}

// StaleScratchAge returns the age after which leftover scratch directories are purged.
func (c *Config) StaleScratchAge() time.Duration {
	return time.Duration(c.Download.StaleScratchHours) * time.Hour
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "lessonvault", "segments")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/lessonvault/segments"
	}
	return filepath.Join(home, ".cache", "lessonvault", "segments")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
