package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lessonvault/internal/services"
)

func TestPrettyHandlerHoistsSubject(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := New(Options{Level: "info", Format: "console", Console: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer closeFn()

	ctx := services.WithCourse(context.Background(), "Physics-Li")
	ctx = services.WithLesson(ctx, "Physics-Li/3-Waves")
	ctx = services.WithStage(ctx, "video")
	WithContext(ctx, logger).Info("segment downloaded", String("order", "2"))

	line := buf.String()
	if !strings.Contains(line, "Physics-Li · Physics-Li/3-Waves (video): segment downloaded") {
		t.Fatalf("expected subject prefix, got %q", line)
	}
	if !strings.Contains(line, "order=2") {
		t.Fatalf("expected attribute, got %q", line)
	}
	if strings.Contains(line, "course=") {
		t.Fatalf("expected course to be hoisted, got %q", line)
	}
}

func TestPrettyHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Level: "warn", Console: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", Error(errors.New("boom now")))
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info should be filtered: %q", out)
	}
	if !strings.Contains(out, `error="boom now"`) {
		t.Fatalf("expected quoted error, got %q", out)
	}
}

func TestFileCopyReceivesDebugJSON(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "run.log")
	logger, closeFn, err := New(Options{Level: "info", Console: &console, FilePath: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("verbose detail", Int("segments", 3))
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if strings.Contains(console.String(), "verbose detail") {
		t.Fatal("debug record should not reach console at info level")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &record); err != nil {
		t.Fatalf("decode json line: %v (%s)", err, data)
	}
	if record["msg"] != "verbose detail" || record["level"] != "debug" {
		t.Fatalf("unexpected record: %v", record)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, _, _ := New(Options{Format: "json", Console: &buf})
	WarnWithContext(logger, "retrying", "lesson_retry", String(FieldImpact, "lesson skipped"))

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record[FieldEventType] != "lesson_retry" {
		t.Fatalf("missing event type: %v", record)
	}
	if record[FieldImpact] != "lesson skipped" {
		t.Fatalf("impact should not be overridden: %v", record)
	}
	if record[FieldErrorHint] == nil {
		t.Fatalf("missing error hint: %v", record)
	}
}

func TestFormatSubject(t *testing.T) {
	tests := []struct {
		course, lesson, stage, want string
	}{
		{"", "", "", ""},
		{"Math-Wang", "", "", "Math-Wang"},
		{"Math-Wang", "", "slides", "Math-Wang · slides"},
		{"Math-Wang", "Math-Wang/1-Intro", "", "Math-Wang · Math-Wang/1-Intro"},
	}
	for _, tt := range tests {
		if got := FormatSubject(tt.course, tt.lesson, tt.stage); got != tt.want {
			t.Errorf("FormatSubject(%q,%q,%q) = %q, want %q", tt.course, tt.lesson, tt.stage, got, tt.want)
		}
	}
}
