package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"

	"lessonvault/internal/catalog"
	"lessonvault/internal/fileutil"
	"lessonvault/internal/logging"
	"lessonvault/internal/services"
	"lessonvault/internal/staging"
	"lessonvault/internal/workunit"
)

// CourseState is the lifecycle of a course within a run.
type CourseState string

const (
	CoursePending   CourseState = "pending"
	CourseRunning   CourseState = "running"
	CourseCompleted CourseState = "completed"
	CourseFailed    CourseState = "failed"
	CourseCancelled CourseState = "cancelled"
)

// CourseResult is the terminal record of one course. A completed course may
// still carry failed units in Units.
type CourseResult struct {
	Course  catalog.Course
	State   CourseState
	Lessons int
	Units   workunit.Tally
	Err     error
}

// CourseTask processes every matching lesson of a course sequentially.
type CourseTask struct {
	Lessons      catalog.LessonSource
	Lesson       *LessonTask
	LessonFilter catalog.Matcher
	OutputDir    string
	CacheDir     string
	StagingDir   string
	RunID        string
	Logger       *slog.Logger
}

// Run executes the course. Panics are recovered into a Failed result and the
// scratch directory is removed on every path.
func (t *CourseTask) Run(ctx context.Context, course catalog.Course) (result CourseResult) {
	result = CourseResult{Course: course, State: CourseRunning}
	ctx = services.WithCourse(ctx, course.FolderName())
	logger := logging.WithContext(ctx, t.logger())

	defer func() {
		if r := recover(); r != nil {
			result.State = CourseFailed
			result.Err = services.Wrap(services.ErrTransient, "course", "run", fmt.Sprintf("panic: %v", r), nil)
			logging.ErrorWithContext(logger, "course task panicked", "course_panic",
				logging.Any("panic", r),
				logging.String("stack", string(debug.Stack())),
				logging.String(logging.FieldImpact, "remaining lessons of this course were not processed"),
				logging.String(logging.FieldErrorHint, "report the stack trace; other courses continue"),
			)
		}
	}()

	if err := ctx.Err(); err != nil {
		return t.finish(result, services.Cancelled("course", "start", err))
	}

	lessons, err := t.Lessons.ListActivities(ctx, course.ID)
	if err != nil {
		return t.finish(result, fmt.Errorf("list lessons: %w", err))
	}
	lessons = catalog.FilterLessons(lessons, t.LessonFilter)
	result.Lessons = len(lessons)
	logger.Info("course started", logging.Int("lessons", len(lessons)), logging.String(logging.FieldEventType, "course_start"))

	if err := t.prepareFolders(logger, course); err != nil {
		return t.finish(result, err)
	}

	scratch, err := staging.Create(t.StagingDir, t.RunID, course.ID)
	if err != nil {
		return t.finish(result, err)
	}
	defer func() {
		if err := scratch.Remove(); err != nil {
			logger.Warn("failed to remove scratch directory", logging.String("path", scratch.Path), logging.Error(err))
		}
	}()

	for _, lesson := range lessons {
		if err := ctx.Err(); err != nil {
			return t.finish(result, services.Cancelled("course", "lessons", err))
		}
		for _, res := range t.Lesson.Run(ctx, course, lesson, scratch.Path) {
			result.Units.Add(res)
			if res.Status == workunit.Cancelled {
				return t.finish(result, res.Err)
			}
		}
	}
	return t.finish(result, nil)
}

// prepareFolders renames folders left by older runs that used the bare
// course name, then makes sure the course folders exist.
func (t *CourseTask) prepareFolders(logger *slog.Logger, course catalog.Course) error {
	folder := course.FolderName()
	legacy := course.LegacyFolderName()
	for _, root := range []string{t.OutputDir, t.CacheDir} {
		if root == "" {
			continue
		}
		dst := filepath.Join(root, folder)
		if legacy != "" && legacy != folder {
			moved, err := fileutil.MoveDir(filepath.Join(root, legacy), dst)
			if err != nil {
				return fmt.Errorf("migrate legacy folder: %w", err)
			}
			if moved {
				logger.Info("migrated legacy course folder",
					logging.String("from", legacy),
					logging.String("to", folder),
					logging.String(logging.FieldEventType, "course_folder_migrated"),
				)
			}
		}
		if err := os.MkdirAll(dst, 0o755); err != nil {
			return fmt.Errorf("create course folder: %w", err)
		}
	}
	return nil
}

func (t *CourseTask) finish(result CourseResult, err error) CourseResult {
	logger := t.logger().With(logging.String(logging.FieldCourse, result.Course.FolderName()))
	switch {
	case err == nil:
		result.State = CourseCompleted
	case services.IsCancelled(err) || errors.Is(err, context.Canceled):
		result.State = CourseCancelled
		result.Err = err
	default:
		result.State = CourseFailed
		result.Err = err
	}
	attrs := []logging.Attr{
		logging.String("state", string(result.State)),
		logging.Int("completed", result.Units.Completed),
		logging.Int("skipped", result.Units.Skipped),
		logging.Int("failed", result.Units.Failed),
		logging.String(logging.FieldEventType, "course_finish"),
	}
	if result.State == CourseFailed {
		attrs = append(attrs, logging.Error(err))
		logger.Error("course failed", logging.Args(attrs...)...)
		return result
	}
	logger.Info("course finished", logging.Args(attrs...)...)
	return result
}

func (t *CourseTask) logger() *slog.Logger {
	if t.Logger == nil {
		return logging.NewNop()
	}
	return t.Logger
}
