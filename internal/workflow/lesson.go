package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"lessonvault/internal/catalog"
	"lessonvault/internal/errorlog"
	"lessonvault/internal/logging"
	"lessonvault/internal/services"
	"lessonvault/internal/workunit"
)

// VideoRunner materializes a lesson's replay.
type VideoRunner interface {
	Run(ctx context.Context, lessonID, namePrefix, scratchDir string) workunit.Result
}

// SlideRunner materializes one slide deck.
type SlideRunner interface {
	Run(ctx context.Context, lessonID string, deck catalog.Presentation, lessonPrefix string, index int, scratchDir string) workunit.Result
}

// LessonTask runs the enabled pipelines for one lesson. A nil Video or Slides
// disables that pipeline.
type LessonTask struct {
	Video         VideoRunner
	Slides        SlideRunner
	Presentations catalog.PresentationSource
	ErrorLog      *errorlog.Log
	Logger        *slog.Logger
}

// Run processes lesson and returns one result per pipeline unit: the lesson
// video, then each deck in server order.
func (t *LessonTask) Run(ctx context.Context, course catalog.Course, lesson catalog.Lesson, scratchDir string) []workunit.Result {
	prefix := lesson.NamePrefix(course)
	ctx = services.WithLesson(ctx, prefix)
	logger := logging.WithContext(ctx, t.logger())

	var results []workunit.Result
	if t.Video != nil {
		if err := ctx.Err(); err != nil {
			return append(results, workunit.FromError(workunit.KindLessonVideo, prefix, services.Cancelled("lesson", "video", err)))
		}
		res := t.Video.Run(ctx, lesson.CoursewareID, prefix, scratchDir)
		t.report(logger, res)
		if res.Status == workunit.Failed {
			if err := t.ErrorLog.Append(prefix); err != nil {
				logger.Warn("failed to record error log entry", logging.Error(err))
			}
		}
		results = append(results, res)
		if res.Status == workunit.Cancelled {
			return results
		}
	}

	if t.Slides != nil {
		results = append(results, t.runSlides(ctx, logger, lesson, prefix, scratchDir)...)
	}
	return results
}

func (t *LessonTask) runSlides(ctx context.Context, logger *slog.Logger, lesson catalog.Lesson, prefix, scratchDir string) []workunit.Result {
	if err := ctx.Err(); err != nil {
		return []workunit.Result{workunit.FromError(workunit.KindLessonSlides, prefix, services.Cancelled("lesson", "slides", err))}
	}
	decks, err := t.Presentations.GetLessonPresentations(ctx, lesson.CoursewareID)
	if err != nil {
		res := workunit.FromError(workunit.KindLessonSlides, prefix, fmt.Errorf("list presentations: %w", err))
		t.report(logger, res)
		return []workunit.Result{res}
	}
	if len(decks) == 0 {
		logger.Info("lesson has no slides; skipping", logging.String(logging.FieldEventType, "slides_skip_missing"))
		return []workunit.Result{workunit.Skip(workunit.KindLessonSlides, prefix)}
	}

	results := make([]workunit.Result, 0, len(decks))
	for i, deck := range decks {
		deckPrefix := catalog.PresentationPrefix(prefix, i, deck.Title)
		if err := ctx.Err(); err != nil {
			return append(results, workunit.FromError(workunit.KindLessonSlides, deckPrefix, services.Cancelled("lesson", "slides", err)))
		}
		res := t.Slides.Run(ctx, lesson.CoursewareID, deck, prefix, i, scratchDir)
		t.report(logger, res)
		results = append(results, res)
		if res.Status == workunit.Cancelled {
			return results
		}
	}
	return results
}

func (t *LessonTask) report(logger *slog.Logger, res workunit.Result) {
	switch res.Status {
	case workunit.Completed:
		logger.Info("unit completed", logging.String("unit", res.Name), logging.String("kind", string(res.Kind)))
	case workunit.Failed:
		logging.ErrorWithContext(logger, "unit failed", "unit_failed",
			logging.String("unit", res.Name),
			logging.String("kind", string(res.Kind)),
			logging.Error(res.Err),
			logging.String(logging.FieldImpact, "artifact missing until the next run"),
			logging.String(logging.FieldErrorHint, "re-run to retry; completed artifacts are skipped"),
		)
	case workunit.Cancelled:
		logger.Info("unit cancelled", logging.String("unit", res.Name))
	}
}

func (t *LessonTask) logger() *slog.Logger {
	if t.Logger == nil {
		return logging.NewNop()
	}
	return t.Logger
}
