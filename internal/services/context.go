package services

import "context"

type contextKey string

const (
	courseKey    contextKey = "course"
	lessonKey    contextKey = "lesson"
	stageKey     contextKey = "stage"
	requestIDKey contextKey = "request_id"
)

// WithCourse annotates context with the course folder name.
func WithCourse(ctx context.Context, course string) context.Context {
	if course == "" {
		return ctx
	}
	return context.WithValue(ctx, courseKey, course)
}

// CourseFromContext returns the course folder name if present.
func CourseFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(courseKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithLesson annotates context with the lesson name prefix.
func WithLesson(ctx context.Context, lesson string) context.Context {
	if lesson == "" {
		return ctx
	}
	return context.WithValue(ctx, lessonKey, lesson)
}

// LessonFromContext returns the lesson name prefix if present.
func LessonFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(lessonKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name (video, slides).
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
