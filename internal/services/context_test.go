package services_test

import (
	"context"
	"testing"

	"lessonvault/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithCourse(ctx, "Algorithms-Knuth")
	ctx = services.WithLesson(ctx, "Algorithms-Knuth/3-Sorting")
	ctx = services.WithStage(ctx, "video")
	ctx = services.WithRequestID(ctx, "run-123")

	if course, ok := services.CourseFromContext(ctx); !ok || course != "Algorithms-Knuth" {
		t.Fatalf("unexpected course: %v %v", course, ok)
	}
	if lesson, ok := services.LessonFromContext(ctx); !ok || lesson != "Algorithms-Knuth/3-Sorting" {
		t.Fatalf("unexpected lesson: %v %v", lesson, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "video" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "run-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	ctx = services.WithCourse(ctx, "")
	ctx = services.WithLesson(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := services.CourseFromContext(ctx); ok {
		t.Fatal("expected no course value")
	}
	if _, ok := services.LessonFromContext(ctx); ok {
		t.Fatal("expected no lesson value")
	}
}
