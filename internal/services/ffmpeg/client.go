package ffmpeg

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"lessonvault/internal/fileutil"
	"lessonvault/internal/logging"
	"lessonvault/internal/procrun"
	"lessonvault/internal/services"
)

// Executor abstracts supervised command execution for testability.
type Executor interface {
	Run(ctx context.Context, cmd procrun.Command, onInterrupt procrun.InterruptFunc, failureMessage string) error
}

// Options holds the encode settings applied to every concatenation.
type Options struct {
	Binary        string
	HWAccel       string
	VideoCodec    string
	VideoBitrate  string
	MaxRate       string
	BufSize       string
	FrameRate     int
	RCLookahead   int
	AudioCodec    string
	AudioBitrate  string
	AudioChannels int
	ExtraArgs     []string
	// Settle is the pause between SIGINT and SIGKILL on cancellation.
	Settle time.Duration
}

// Client wraps ffmpeg concat-and-transcode invocations.
type Client struct {
	opts   Options
	exec   Executor
	logger *slog.Logger
}

// New constructs an ffmpeg client.
func New(opts Options, exec Executor, logger *slog.Logger) (*Client, error) {
	opts.Binary = strings.TrimSpace(opts.Binary)
	if opts.Binary == "" {
		return nil, services.Wrap(services.ErrConfiguration, "ffmpeg", "new", "ffmpeg binary required", nil)
	}
	if exec == nil {
		return nil, services.Wrap(services.ErrConfiguration, "ffmpeg", "new", "ffmpeg executor required", nil)
	}
	if opts.VideoCodec == "" {
		opts.VideoCodec = "copy"
	}
	if opts.AudioCodec == "" {
		opts.AudioCodec = "copy"
	}
	if opts.Settle <= 0 {
		opts.Settle = 500 * time.Millisecond
	}
	return &Client{opts: opts, exec: exec, logger: logging.NewComponentLogger(logger, "ffmpeg")}, nil
}

// Concat transcodes the files listed in a concat list into outputPath. The
// output is never left half-written: it is removed when the run is cancelled
// or ffmpeg fails.
func (c *Client) Concat(ctx context.Context, listPath, outputPath, failureMessage string) error {
	exists, err := fileutil.Exists(outputPath)
	if err != nil {
		return services.Wrap(services.ErrValidation, "ffmpeg", "concat", "stat output", err)
	}
	if exists {
		return services.Wrap(services.ErrValidation, "ffmpeg", "concat", fmt.Sprintf("output %s already exists", outputPath), nil)
	}

	cmd := procrun.Command{
		Name:  c.opts.Binary,
		Args:  c.ConcatArgs(listPath, outputPath),
		Label: "ffmpeg",
	}
	forceful := procrun.ForcefulInterrupt(c.opts.Settle)
	onInterrupt := func(p *procrun.Process) {
		forceful(p)
		c.removePartial(outputPath)
	}

	runErr := c.exec.Run(ctx, cmd, onInterrupt, failureMessage)
	if runErr != nil {
		c.removePartial(outputPath)
	}
	return runErr
}

// ConcatArgs builds the argument list for a concat-demuxer transcode.
func (c *Client) ConcatArgs(listPath, outputPath string) []string {
	args := []string{"-f", "concat", "-safe", "0"}
	if c.opts.HWAccel != "" {
		args = append(args, "-hwaccel", c.opts.HWAccel)
		if c.opts.HWAccel == "cuda" {
			args = append(args, "-hwaccel_output_format", "cuda")
		}
	}
	args = append(args, "-i", listPath, "-c:v", c.opts.VideoCodec)
	if c.opts.VideoCodec != "copy" {
		args = appendIf(args, "-b:v", c.opts.VideoBitrate)
		args = appendIf(args, "-maxrate", c.opts.MaxRate)
		args = appendIf(args, "-bufsize", c.opts.BufSize)
		if c.opts.FrameRate > 0 {
			args = append(args, "-r", strconv.Itoa(c.opts.FrameRate))
		}
		if c.opts.RCLookahead > 0 && strings.HasSuffix(c.opts.VideoCodec, "_nvenc") {
			args = append(args, "-rc-lookahead", strconv.Itoa(c.opts.RCLookahead))
		}
	}
	args = append(args, "-c:a", c.opts.AudioCodec)
	if c.opts.AudioCodec != "copy" {
		args = append(args, "-rematrix_maxval", "1.0")
		if c.opts.AudioChannels > 0 {
			args = append(args, "-ac", strconv.Itoa(c.opts.AudioChannels))
		}
		args = appendIf(args, "-b:a", c.opts.AudioBitrate)
	}
	args = append(args, c.opts.ExtraArgs...)
	args = append(args, outputPath, "-n", "-hide_banner", "-loglevel", "warning", "-stats")
	return args
}

func (c *Client) removePartial(path string) {
	if err := fileutil.RemoveQuietly(path); err != nil {
		logging.WarnWithContext(c.logger, "failed to remove partial output", "partial_cleanup_failed",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "a truncated video may be mistaken for a finished one"),
			logging.String(logging.FieldErrorHint, "delete the file manually before the next run"),
		)
		return
	}
	c.logger.Debug("removed partial output", logging.String("path", path))
}

func appendIf(args []string, flag, value string) []string {
	if strings.TrimSpace(value) == "" {
		return args
	}
	return append(args, flag, value)
}
