package catalog

import "context"

// SessionProvider yields an authenticated session.
type SessionProvider interface {
	Authenticate(ctx context.Context) (Session, error)
}

// CourseSource lists the user's courses.
type CourseSource interface {
	ListActive(ctx context.Context) ([]Course, error)
	ListArchived(ctx context.Context) ([]Course, error)
}

// LessonSource lists a course's lessons, newest first.
type LessonSource interface {
	ListActivities(ctx context.Context, courseID string) ([]Lesson, error)
}

// ReplaySource returns a lesson's replay segments; empty means no recording.
type ReplaySource interface {
	GetReplay(ctx context.Context, lessonID string) ([]Segment, error)
}

// PresentationSource lists the decks shown during a lesson.
type PresentationSource interface {
	GetLessonPresentations(ctx context.Context, lessonID string) ([]Presentation, error)
}

// SlideSource returns the pages of one deck.
type SlideSource interface {
	GetSlides(ctx context.Context, lessonID, presentationID string) (SlideSet, error)
}

// Source is the full set of remote lookups a run needs.
type Source interface {
	CourseSource
	LessonSource
	ReplaySource
	PresentationSource
	SlideSource
}
