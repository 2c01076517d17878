package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"lessonvault/internal/catalog"
	"lessonvault/internal/logging"
	"lessonvault/internal/services"
	"lessonvault/internal/workunit"
)

// DefaultWorkers is the course pool size when none is configured.
const DefaultWorkers = 4

// CourseRunner executes one course. *CourseTask satisfies it.
type CourseRunner interface {
	Run(ctx context.Context, course catalog.Course) CourseResult
}

// Summary reports a finished run. Courses keeps the input order.
type Summary struct {
	RunID       string
	Courses     []CourseResult
	Units       workunit.Tally
	Interrupted bool
	Elapsed     time.Duration
}

// Count returns how many courses ended in state.
func (s Summary) Count(state CourseState) int {
	n := 0
	for _, c := range s.Courses {
		if c.State == state {
			n++
		}
	}
	return n
}

// Orchestrator runs courses on a fixed pool of workers.
type Orchestrator struct {
	runner  CourseRunner
	workers int
	runID   string
	logger  *slog.Logger
}

// NewOrchestrator builds a pool of workers (DefaultWorkers when <= 0). An
// empty runID is replaced with a random one.
func NewOrchestrator(runner CourseRunner, workers int, runID string, logger *slog.Logger) *Orchestrator {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if runID == "" {
		runID = NewRunID()
	}
	return &Orchestrator{
		runner:  runner,
		workers: workers,
		runID:   runID,
		logger:  logging.NewComponentLogger(logger, "orchestrator"),
	}
}

// NewRunID returns a short random run identifier.
func NewRunID() string {
	return uuid.NewString()[:8]
}

// RunID identifies this run in logs and scratch directory names.
func (o *Orchestrator) RunID() string {
	return o.runID
}

// runCourse shields the pool from a runner that panics instead of reporting
// failure through CourseResult.
func (o *Orchestrator) runCourse(ctx context.Context, course catalog.Course) (res CourseResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("course %s: runner panic: %v", course.ID, r)
			res = CourseResult{
				Course: course,
				State:  CourseFailed,
				Err:    services.Wrap(services.ErrTransient, "course", "run", "runner panic", err),
			}
		}
	}()
	return o.runner.Run(ctx, course), nil
}

type courseJob struct {
	index  int
	course catalog.Course
}

// Run enqueues every course, closes the queue, and waits for the pool to
// drain. When ctx is cancelled, workers stop taking jobs; courses that never
// started are recorded as cancelled without running.
func (o *Orchestrator) Run(ctx context.Context, courses []catalog.Course) Summary {
	start := time.Now()
	ctx = services.WithRequestID(ctx, o.runID)
	logger := logging.WithContext(ctx, o.logger)

	results := make([]CourseResult, len(courses))
	for i, c := range courses {
		results[i] = CourseResult{Course: c, State: CoursePending}
	}

	jobs := make(chan courseJob)
	var mu sync.Mutex
	var g errgroup.Group

	workers := min(o.workers, max(len(courses), 1))
	logger.Info("run started",
		logging.Int("courses", len(courses)),
		logging.Int("workers", workers),
		logging.String(logging.FieldEventType, "run_start"),
	)
	// A worker keeps draining after a runner crash so the enqueue loop never
	// blocks; its first crash is returned once the queue is closed.
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			var crash error
			for job := range jobs {
				if ctx.Err() != nil {
					continue
				}
				mu.Lock()
				results[job.index].State = CourseRunning
				mu.Unlock()

				res, err := o.runCourse(ctx, job.course)
				if err != nil && crash == nil {
					crash = err
				}

				mu.Lock()
				results[job.index] = res
				mu.Unlock()
			}
			return crash
		})
	}

enqueue:
	for i, c := range courses {
		select {
		case jobs <- courseJob{index: i, course: c}:
		case <-ctx.Done():
			break enqueue
		}
	}
	close(jobs)
	if err := g.Wait(); err != nil {
		logging.ErrorWithContext(logger, "course runner crashed", "runner_crash",
			logging.Error(err),
			logging.String(logging.FieldImpact, "course recorded as failed"),
		)
	}

	summary := Summary{RunID: o.runID, Courses: results, Interrupted: ctx.Err() != nil}
	for i := range summary.Courses {
		c := &summary.Courses[i]
		if c.State == CoursePending || c.State == CourseRunning {
			c.State = CourseCancelled
			c.Err = services.Cancelled("course", "queue", context.Cause(ctx))
		}
		summary.Units.Merge(c.Units)
	}
	summary.Elapsed = time.Since(start)

	logger.Info("run finished",
		logging.Int("completed", summary.Count(CourseCompleted)),
		logging.Int("failed", summary.Count(CourseFailed)),
		logging.Int("cancelled", summary.Count(CourseCancelled)),
		logging.Int("units", summary.Units.Total()),
		logging.Int("units_failed", summary.Units.Failed),
		logging.Bool("interrupted", summary.Interrupted),
		logging.Duration("elapsed", summary.Elapsed),
		logging.String(logging.FieldEventType, "run_finish"),
	)
	return summary
}
