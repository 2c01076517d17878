package video

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"lessonvault/internal/catalog"
	"lessonvault/internal/fileutil"
	"lessonvault/internal/logging"
	"lessonvault/internal/services"
	"lessonvault/internal/services/ffmpeg"
	"lessonvault/internal/workunit"
)

// Fetcher downloads one URL to a local path, resuming partial files.
type Fetcher interface {
	Download(ctx context.Context, url, destPath, failureMessage string) error
}

// Assembler concatenates the files in a concat list into one output.
type Assembler interface {
	Concat(ctx context.Context, listPath, outputPath, failureMessage string) error
}

// Options locates the pipeline's files.
type Options struct {
	OutputDir    string
	CacheDir     string
	KeepSegments bool
}

// Pipeline materializes a lesson's replay as {output}/{prefix}.mp4.
type Pipeline struct {
	opts      Options
	replays   catalog.ReplaySource
	fetcher   Fetcher
	assembler Assembler
	logger    *slog.Logger
}

// New constructs a video pipeline.
func New(opts Options, replays catalog.ReplaySource, fetcher Fetcher, assembler Assembler, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		opts:      opts,
		replays:   replays,
		fetcher:   fetcher,
		assembler: assembler,
		logger:    logging.NewComponentLogger(logger, "video"),
	}
}

// OutputPath returns the final artifact for a lesson prefix.
func (p *Pipeline) OutputPath(namePrefix string) string {
	return filepath.Join(p.opts.OutputDir, filepath.FromSlash(namePrefix)+".mp4")
}

// SegmentPath returns the cache file for one segment.
func (p *Pipeline) SegmentPath(namePrefix string, order int) string {
	return filepath.Join(p.opts.CacheDir, filepath.FromSlash(namePrefix)+"-"+strconv.Itoa(order)+".mp4")
}

// Run downloads and assembles one lesson's video. An existing output returns
// Skipped before the replay is even looked up; so does a lesson without a
// recording. Segment failures do not stop sibling segments but prevent
// assembly.
func (p *Pipeline) Run(ctx context.Context, lessonID, namePrefix, scratchDir string) workunit.Result {
	ctx = services.WithStage(ctx, "video")
	logger := logging.WithContext(ctx, p.logger)

	exists, err := fileutil.Exists(p.OutputPath(namePrefix))
	if err != nil {
		return workunit.FromError(workunit.KindLessonVideo, namePrefix, err)
	}
	if exists {
		logger.Info("video already present; skipping", logging.String(logging.FieldEventType, "video_skip_existing"))
		return workunit.Skip(workunit.KindLessonVideo, namePrefix)
	}

	segments, err := p.replays.GetReplay(ctx, lessonID)
	if errors.Is(err, services.ErrNotFound) {
		segments, err = nil, nil
	}
	if err != nil {
		return workunit.FromError(workunit.KindLessonVideo, namePrefix, fmt.Errorf("fetch replay: %w", err))
	}
	if len(segments) == 0 {
		logger.Info("lesson has no video; skipping", logging.String(logging.FieldEventType, "video_skip_missing"))
		return workunit.Skip(workunit.KindLessonVideo, namePrefix)
	}
	segments = OrderSegments(segments)

	var failed int
	orders := make([]int, 0, len(segments))
	for _, seg := range segments {
		if err := ctx.Err(); err != nil {
			return workunit.FromError(workunit.KindLessonVideo, namePrefix, services.Cancelled("video", "segments", err))
		}
		res := p.DownloadSegment(ctx, seg, namePrefix)
		switch res.Status {
		case workunit.Cancelled:
			return workunit.FromError(workunit.KindLessonVideo, namePrefix, res.Err)
		case workunit.Failed:
			failed++
			logging.WarnWithContext(logger, "segment download failed", "segment_failed",
				logging.String("segment", res.Name),
				logging.Error(res.Err),
				logging.String(logging.FieldImpact, "lesson video will not be assembled this run"),
				logging.String(logging.FieldErrorHint, "re-run to resume the download"),
			)
		}
		orders = append(orders, seg.Order)
	}
	if failed > 0 {
		return workunit.FromError(workunit.KindLessonVideo, namePrefix,
			services.Wrap(services.ErrTransient, "video", "segments", fmt.Sprintf("%d of %d segments failed", failed, len(segments)), nil))
	}

	asm := p.Assemble(ctx, namePrefix, orders, scratchDir)
	if !asm.OK() {
		return workunit.FromError(workunit.KindLessonVideo, namePrefix, asm.Err)
	}
	if !p.opts.KeepSegments {
		p.removeSegments(logger, namePrefix, orders)
	}
	return workunit.Done(workunit.KindLessonVideo, namePrefix)
}

// DownloadSegment fetches one segment into the cache.
func (p *Pipeline) DownloadSegment(ctx context.Context, seg catalog.Segment, namePrefix string) workunit.Result {
	name := namePrefix + "-" + strconv.Itoa(seg.Order)
	dest := p.SegmentPath(namePrefix, seg.Order)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return workunit.FromError(workunit.KindVideoSegment, name, fmt.Errorf("create cache directory: %w", err))
	}
	logging.WithContext(ctx, p.logger).Info("downloading segment", logging.Int("order", seg.Order))
	err := p.fetcher.Download(ctx, seg.URL, dest, "Failed to download "+name)
	return workunit.FromError(workunit.KindVideoSegment, name, err)
}

// Assemble writes a concat list of the cached segments in ascending order and
// transcodes them into the lesson's output file.
func (p *Pipeline) Assemble(ctx context.Context, namePrefix string, orders []int, scratchDir string) workunit.Result {
	if len(orders) == 0 {
		return workunit.FromError(workunit.KindVideoAssembly, namePrefix,
			services.Wrap(services.ErrValidation, "video", "assemble", "no segments", nil))
	}
	sorted := append([]int(nil), orders...)
	sort.Ints(sorted)
	files := make([]string, 0, len(sorted))
	for _, order := range sorted {
		files = append(files, p.SegmentPath(namePrefix, order))
	}

	listPath := filepath.Join(scratchDir, listName(namePrefix))
	if err := ffmpeg.WriteConcatList(listPath, files); err != nil {
		return workunit.FromError(workunit.KindVideoAssembly, namePrefix, err)
	}
	output := p.OutputPath(namePrefix)
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return workunit.FromError(workunit.KindVideoAssembly, namePrefix, fmt.Errorf("create output directory: %w", err))
	}

	logging.WithContext(ctx, p.logger).Info("concatenating video", logging.Int("segments", len(files)))
	err := p.assembler.Concat(ctx, listPath, output, "Failed to concatenate "+namePrefix)
	return workunit.FromError(workunit.KindVideoAssembly, namePrefix, err)
}

func (p *Pipeline) removeSegments(logger *slog.Logger, namePrefix string, orders []int) {
	var errs []error
	for _, order := range orders {
		if err := fileutil.RemoveQuietly(p.SegmentPath(namePrefix, order)); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		logging.WarnWithContext(logger, "failed to remove cached segments", "segment_cleanup_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "cache keeps using disk space"),
			logging.String(logging.FieldErrorHint, "check cache_dir permissions"),
		)
	}
}

// OrderSegments returns segments sorted by ascending Order. When the server
// reports duplicate orders, list position is used instead so no cache file is
// shared by two segments.
func OrderSegments(segments []catalog.Segment) []catalog.Segment {
	out := append([]catalog.Segment(nil), segments...)
	seen := make(map[int]struct{}, len(out))
	for _, seg := range out {
		if _, dup := seen[seg.Order]; dup {
			for i := range out {
				out[i].Order = i
			}
			return out
		}
		seen[seg.Order] = struct{}{}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func listName(namePrefix string) string {
	return strings.ReplaceAll(namePrefix, "/", "__") + ".concat.txt"
}
