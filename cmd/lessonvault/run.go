package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"lessonvault/internal/catalog"
	"lessonvault/internal/config"
	"lessonvault/internal/deps"
	"lessonvault/internal/errorlog"
	"lessonvault/internal/logging"
	"lessonvault/internal/procrun"
	"lessonvault/internal/rainclassroom"
	"lessonvault/internal/runlock"
	"lessonvault/internal/services/aria2"
	"lessonvault/internal/services/ffmpeg"
	"lessonvault/internal/slides"
	"lessonvault/internal/staging"
	"lessonvault/internal/video"
	"lessonvault/internal/workflow"
)

type runFlags struct {
	video           bool
	slides          bool
	noPDF           bool
	noAnswers       bool
	courseFilter    string
	lessonFilter    string
	host            string
	session         string
	workers         int
	caseInsensitive bool
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Download lesson videos and slides for every matching course",
		Long: "Download lesson videos and slide decks into the output directory.\n\n" +
			"Artifacts that already exist are skipped, so re-running resumes an interrupted\n" +
			"or partially failed archive. Without --video or --slides the pipelines enabled\n" +
			"in the configuration file run.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := applyRunFlags(cfg, flags, cmd.Flags().Changed); err != nil {
				return err
			}
			return executeRun(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().BoolVar(&flags.video, "video", false, "Download lesson videos")
	cmd.Flags().BoolVar(&flags.slides, "slides", false, "Download slide decks")
	cmd.Flags().BoolVar(&flags.slides, "ppt", false, "Alias for --slides")
	cmd.Flags().BoolVar(&flags.noPDF, "no-pdf", false, "Keep slide images instead of assembling a PDF")
	cmd.Flags().BoolVar(&flags.noAnswers, "no-answers", false, "Do not overlay quiz answers on slides")
	cmd.Flags().StringVar(&flags.courseFilter, "course-filter", "", "Only courses whose name contains this text")
	cmd.Flags().StringVar(&flags.lessonFilter, "lesson-filter", "", "Only lessons whose title contains this text")
	cmd.Flags().BoolVarP(&flags.caseInsensitive, "ignore-case", "i", false, "Match filters case-insensitively")
	cmd.Flags().StringVar(&flags.host, "host", "", "Platform host (default from config)")
	cmd.Flags().StringVar(&flags.session, "session", "", "Session cookie value")
	cmd.Flags().IntVarP(&flags.workers, "workers", "j", 0, "Courses processed in parallel")
	return cmd
}

// applyRunFlags overlays explicitly set flags on the loaded configuration.
// Naming either pipeline on the command line selects exactly the named ones.
func applyRunFlags(cfg *config.Config, flags runFlags, changed func(string) bool) error {
	if changed("video") || changed("slides") || changed("ppt") {
		cfg.Download.Video = flags.video
		cfg.Download.Slides = flags.slides
	}
	if flags.noPDF {
		cfg.Slides.ConvertToPDF = false
	}
	if flags.noAnswers {
		cfg.Slides.AnnotateAnswers = false
	}
	if changed("course-filter") {
		cfg.Download.CourseFilter = flags.courseFilter
	}
	if changed("lesson-filter") {
		cfg.Download.LessonFilter = flags.lessonFilter
	}
	if flags.caseInsensitive {
		cfg.Download.CaseInsensitiveFilters = true
	}
	if host := strings.TrimSpace(flags.host); host != "" {
		cfg.Session.Host = host
	}
	if session := strings.TrimSpace(flags.session); session != "" {
		cfg.Session.Cookie = session
	}
	if changed("workers") {
		cfg.Download.Workers = flags.workers
	}
	if !cfg.Download.Video && !cfg.Download.Slides {
		return errors.New("nothing to do: enable --video and/or --slides")
	}
	return cfg.Validate()
}

func executeRun(ctx context.Context, cfg *config.Config, out, errOut io.Writer) error {
	logger, closeLog, err := newLogger(cfg, errOut)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	statuses := deps.CheckBinaries(deps.ToolRequirements(cfg.Aria2.Binary, cfg.FFmpeg.Binary, cfg.Download.Video, cfg.Download.Slides))
	if missing := deps.MissingRequired(statuses); len(missing) > 0 {
		return fmt.Errorf("missing required tools: %s (see `lessonvault doctor`)", strings.Join(missing, ", "))
	}

	lock, err := runlock.Acquire(cfg.LockPath())
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("failed to release run lock", logging.Error(err))
		}
	}()

	runID := workflow.NewRunID()
	if purge := staging.CleanStale(cfg.Paths.StagingDir, cfg.StaleScratchAge(), runID, logger); purge.Err != nil {
		logger.Warn("stale scratch cleanup incomplete", logging.Error(purge.Err))
	}

	session, err := authenticate(ctx, cfg, out, logger, true)
	if err != nil {
		return err
	}
	client, err := newPlatformClient(cfg, session, logger)
	if err != nil {
		return err
	}

	courses, err := catalog.FetchCourses(ctx, client)
	if err != nil {
		return explainAuthError(err)
	}
	courses = catalog.FilterCourses(courses, catalog.NewMatcher(cfg.Download.CourseFilter, cfg.Download.CaseInsensitiveFilters))
	if len(courses) == 0 {
		fmt.Fprintln(out, "No courses matched.")
		return nil
	}

	task, err := buildCourseTask(cfg, client, runID, logger)
	if err != nil {
		return err
	}
	orchestrator := workflow.NewOrchestrator(task, cfg.Download.Workers, runID, logger)
	summary := orchestrator.Run(ctx, courses)

	fmt.Fprintln(out, renderSummary(summary))
	if summary.Interrupted {
		fmt.Fprintln(errOut, "Interrupted")
		return context.Canceled
	}
	if summary.Units.Failed > 0 || summary.Count(workflow.CourseFailed) > 0 {
		return fmt.Errorf("run finished with failures; failed lesson videos are listed in %s", cfg.ErrorLogPath())
	}
	return nil
}

// buildCourseTask wires the pipelines enabled in cfg around one supervised
// process runner.
func buildCourseTask(cfg *config.Config, client *rainclassroom.Client, runID string, logger *slog.Logger) (*workflow.CourseTask, error) {
	runner := procrun.New(logger, procrun.WithGracePeriod(cfg.ProcessGrace()))
	fetcher, err := aria2.New(aria2.Options{
		Binary:             cfg.Aria2.Binary,
		SegmentConnections: cfg.Aria2.SegmentConnections,
		SegmentSplits:      cfg.Aria2.SegmentSplits,
		BatchConnections:   cfg.Aria2.BatchConnections,
		BatchJobs:          cfg.Aria2.BatchJobs,
		InterruptTimeout:   cfg.Aria2InterruptTimeout(),
	}, runner)
	if err != nil {
		return nil, err
	}

	lesson := &workflow.LessonTask{
		Presentations: client,
		ErrorLog:      errorlog.New(cfg.ErrorLogPath()),
		Logger:        logger,
	}
	if cfg.Download.Video {
		assembler, err := ffmpeg.New(ffmpeg.Options{
			Binary:        cfg.FFmpeg.Binary,
			HWAccel:       cfg.FFmpeg.HWAccel,
			VideoCodec:    cfg.FFmpeg.VideoCodec,
			VideoBitrate:  cfg.FFmpeg.VideoBitrate,
			MaxRate:       cfg.FFmpeg.MaxRate,
			BufSize:       cfg.FFmpeg.BufSize,
			FrameRate:     cfg.FFmpeg.FrameRate,
			RCLookahead:   cfg.FFmpeg.RCLookahead,
			AudioCodec:    cfg.FFmpeg.AudioCodec,
			AudioBitrate:  cfg.FFmpeg.AudioBitrate,
			AudioChannels: cfg.FFmpeg.AudioChannels,
			ExtraArgs:     cfg.FFmpeg.ExtraArgs,
			Settle:        cfg.FFmpegSettle(),
		}, runner, logger)
		if err != nil {
			return nil, err
		}
		lesson.Video = video.New(video.Options{
			OutputDir:    cfg.Paths.OutputDir,
			CacheDir:     cfg.Paths.CacheDir,
			KeepSegments: cfg.Video.KeepSegments,
		}, client, fetcher, assembler, logger)
	}
	if cfg.Download.Slides {
		var annotator *slides.Annotator
		if cfg.Slides.AnnotateAnswers {
			annotator, err = slides.NewAnnotator(cfg.Slides.AnswerFontSize, cfg.Slides.JPEGQuality)
			if err != nil {
				return nil, err
			}
		}
		lesson.Slides = slides.New(slides.Options{
			OutputDir:       cfg.Paths.OutputDir,
			ConvertToPDF:    cfg.Slides.ConvertToPDF,
			AnnotateAnswers: cfg.Slides.AnnotateAnswers,
			DPI:             cfg.Slides.PDFDPI,
		}, client, fetcher, annotator, logger)
	}

	return &workflow.CourseTask{
		Lessons:      client,
		Lesson:       lesson,
		LessonFilter: catalog.NewMatcher(cfg.Download.LessonFilter, cfg.Download.CaseInsensitiveFilters),
		OutputDir:    cfg.Paths.OutputDir,
		CacheDir:     cfg.Paths.CacheDir,
		StagingDir:   cfg.Paths.StagingDir,
		RunID:        runID,
		Logger:       logger,
	}, nil
}
