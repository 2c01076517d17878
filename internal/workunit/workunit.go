// Package workunit describes the outcome of one retrieval step. Results flow
// upward from segments to lessons to courses; only cancellation aborts.
package workunit

import (
	"context"
	"errors"
	"fmt"

	"lessonvault/internal/services"
)

// Kind names the granularity of a unit of work.
type Kind string

const (
	KindVideoSegment  Kind = "video-segment"
	KindVideoAssembly Kind = "video-assembly"
	KindSlideBatch    Kind = "slide-batch"
	KindSlideAssembly Kind = "slide-assembly"
	KindLessonVideo   Kind = "lesson-video"
	KindLessonSlides  Kind = "lesson-slides"
)

// Status is the terminal state of a unit.
type Status string

const (
	Completed Status = "completed"
	Skipped   Status = "skipped"
	Failed    Status = "failed"
	Cancelled Status = "cancelled"
)

// Result is the outcome of a unit identified by its name prefix.
type Result struct {
	Kind   Kind
	Name   string
	Status Status
	Err    error
}

func Done(kind Kind, name string) Result {
	return Result{Kind: kind, Name: name, Status: Completed}
}

func Skip(kind Kind, name string) Result {
	return Result{Kind: kind, Name: name, Status: Skipped}
}

// FromError classifies err: nil is Completed, cancellation is Cancelled, and
// anything else is Failed.
func FromError(kind Kind, name string, err error) Result {
	switch {
	case err == nil:
		return Done(kind, name)
	case services.IsCancelled(err) || errors.Is(err, context.Canceled):
		return Result{Kind: kind, Name: name, Status: Cancelled, Err: err}
	default:
		return Result{Kind: kind, Name: name, Status: Failed, Err: err}
	}
}

// OK reports whether the unit produced (or already had) its artifact.
func (r Result) OK() bool {
	return r.Status == Completed || r.Status == Skipped
}

func (r Result) String() string {
	if r.Err != nil {
		return fmt.Sprintf("%s %s: %s (%v)", r.Kind, r.Name, r.Status, r.Err)
	}
	return fmt.Sprintf("%s %s: %s", r.Kind, r.Name, r.Status)
}

// Tally counts results by status.
type Tally struct {
	Completed int
	Skipped   int
	Failed    int
	Cancelled int
}

// Add records one result.
func (t *Tally) Add(r Result) {
	switch r.Status {
	case Completed:
		t.Completed++
	case Skipped:
		t.Skipped++
	case Failed:
		t.Failed++
	case Cancelled:
		t.Cancelled++
	}
}

// Merge folds other into t.
func (t *Tally) Merge(other Tally) {
	t.Completed += other.Completed
	t.Skipped += other.Skipped
	t.Failed += other.Failed
	t.Cancelled += other.Cancelled
}

// Total counts every recorded result.
func (t Tally) Total() int {
	return t.Completed + t.Skipped + t.Failed + t.Cancelled
}
