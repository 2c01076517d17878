// Package testsupport builds isolated configurations and stub tools for
// tests that exercise more than one package.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"lessonvault/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose directories live under a per-test temp
// dir. Both pipelines are enabled.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.StagingDir = filepath.Join(base, "staging")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.SessionFile = filepath.Join(base, "output", "session.txt")
	cfgVal.Download.Video = true
	cfgVal.Download.Slides = true

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithPipelines selects which pipelines are enabled.
func WithPipelines(video, slides bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Download.Video = video
		b.cfg.Download.Slides = slides
	}
}

// WithStubbedBinaries points aria2c and ffmpeg at scripts that exit 0.
func WithStubbedBinaries() ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		b.cfg.Aria2.Binary = WriteScript(b.t, filepath.Join(binDir, "aria2c"), "exit 0\n")
		b.cfg.FFmpeg.Binary = WriteScript(b.t, filepath.Join(binDir, "ffmpeg"), "exit 0\n")
	}
}

// WithMissingBinaries points the tools at paths that do not exist.
func WithMissingBinaries() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Aria2.Binary = filepath.Join(b.baseDir, "missing", "aria2c")
		b.cfg.FFmpeg.Binary = filepath.Join(b.baseDir, "missing", "ffmpeg")
	}
}

// WithSession stores a session cookie in the config.
func WithSession(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Session.Cookie = token
	}
}

// WriteConfig encodes cfg as TOML at path.
func WriteConfig(t testing.TB, path string, cfg *config.Config) {
	t.Helper()

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}
