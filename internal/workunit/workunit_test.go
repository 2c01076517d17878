package workunit

import (
	"context"
	"errors"
	"testing"

	"lessonvault/internal/services"
)

func TestFromErrorClassifies(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Status
	}{
		{"nil", nil, Completed},
		{"plain", errors.New("exit status 1"), Failed},
		{"tool", services.Wrap(services.ErrExternalTool, "video", "aria2c", "failed", errors.New("exit 3")), Failed},
		{"context", context.Canceled, Cancelled},
		{"wrapped cancel", services.Cancelled("video", "ffmpeg", context.Canceled), Cancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromError(KindVideoAssembly, "c/1-x", tt.err)
			if got.Status != tt.want {
				t.Fatalf("status = %s, want %s", got.Status, tt.want)
			}
		})
	}
}

func TestTally(t *testing.T) {
	var tally Tally
	tally.Add(Done(KindLessonVideo, "a"))
	tally.Add(Skip(KindLessonVideo, "b"))
	tally.Add(FromError(KindLessonVideo, "c", errors.New("x")))

	var total Tally
	total.Merge(tally)
	total.Add(FromError(KindLessonSlides, "d", context.Canceled))
	if total.Completed != 1 || total.Skipped != 1 || total.Failed != 1 || total.Cancelled != 1 {
		t.Fatalf("unexpected tally %+v", total)
	}
	if total.Total() != 4 {
		t.Fatalf("total = %d", total.Total())
	}
}
