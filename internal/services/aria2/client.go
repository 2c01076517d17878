package aria2

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"lessonvault/internal/procrun"
	"lessonvault/internal/services"
)

// Executor abstracts supervised command execution for testability.
type Executor interface {
	Run(ctx context.Context, cmd procrun.Command, onInterrupt procrun.InterruptFunc, failureMessage string) error
}

// Options tunes aria2c invocations.
type Options struct {
	Binary             string
	SegmentConnections int
	SegmentSplits      int
	BatchConnections   int
	BatchJobs          int
	// InterruptTimeout bounds the wait for aria2c to save its control file
	// after SIGINT.
	InterruptTimeout time.Duration
}

// Client wraps aria2c CLI interactions.
type Client struct {
	opts Options
	exec Executor
}

// New constructs an aria2c client.
func New(opts Options, exec Executor) (*Client, error) {
	opts.Binary = strings.TrimSpace(opts.Binary)
	if opts.Binary == "" {
		return nil, services.Wrap(services.ErrConfiguration, "aria2c", "new", "aria2c binary required", nil)
	}
	if exec == nil {
		return nil, services.Wrap(services.ErrConfiguration, "aria2c", "new", "aria2c executor required", nil)
	}
	if opts.SegmentConnections <= 0 {
		opts.SegmentConnections = 4
	}
	if opts.SegmentSplits <= 0 {
		opts.SegmentSplits = 2
	}
	if opts.BatchConnections <= 0 {
		opts.BatchConnections = 16
	}
	if opts.BatchJobs <= 0 {
		opts.BatchJobs = 16
	}
	return &Client{opts: opts, exec: exec}, nil
}

// Download fetches url into destPath with a resumable multi-connection
// transfer. An interrupted transfer leaves a partial file plus control file
// that the next call continues.
func (c *Client) Download(ctx context.Context, url, destPath, failureMessage string) error {
	if strings.TrimSpace(url) == "" {
		return errors.New("download url required")
	}
	cmd := procrun.Command{
		Name:  c.opts.Binary,
		Args:  c.singleArgs(url, destPath),
		Label: "aria2c",
	}
	return c.exec.Run(ctx, cmd, procrun.GracefulInterrupt(c.opts.InterruptTimeout), failureMessage)
}

// DownloadBatch fetches every entry in an input manifest written by
// WriteManifest, running several transfers in parallel.
func (c *Client) DownloadBatch(ctx context.Context, manifestPath, failureMessage string) error {
	cmd := procrun.Command{
		Name:  c.opts.Binary,
		Args:  c.batchArgs(manifestPath),
		Label: "aria2c",
	}
	return c.exec.Run(ctx, cmd, procrun.GracefulInterrupt(c.opts.InterruptTimeout), failureMessage)
}

func (c *Client) singleArgs(url, destPath string) []string {
	return []string{
		"-d", filepath.Dir(destPath),
		"-o", filepath.Base(destPath),
		"-x", strconv.Itoa(c.opts.SegmentConnections),
		"-s", strconv.Itoa(c.opts.SegmentSplits),
		"-c",
		"--auto-file-renaming=false",
		"--console-log-level=warn",
		url,
	}
}

func (c *Client) batchArgs(manifestPath string) []string {
	return []string{
		"-i", manifestPath,
		"-x", strconv.Itoa(c.opts.BatchConnections),
		"-j", strconv.Itoa(c.opts.BatchJobs),
		"-c",
		"--console-log-level=warn",
		"--auto-file-renaming=false",
	}
}
