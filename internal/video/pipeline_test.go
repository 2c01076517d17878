package video

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lessonvault/internal/catalog"
	"lessonvault/internal/logging"
	"lessonvault/internal/services"
	"lessonvault/internal/workunit"
)

type fakeReplays struct {
	segments []catalog.Segment
	err      error
	calls    int
}

func (f *fakeReplays) GetReplay(context.Context, string) ([]catalog.Segment, error) {
	f.calls++
	return f.segments, f.err
}

type fakeFetcher struct {
	urls   []string
	failOn map[string]bool
	onCall func()
}

func (f *fakeFetcher) Download(_ context.Context, url, dest, msg string) error {
	f.urls = append(f.urls, url)
	if f.onCall != nil {
		f.onCall()
	}
	if f.failOn[url] {
		return services.Wrap(services.ErrExternalTool, "aria2c", "aria2c", msg, errors.New("exit status 3"))
	}
	return os.WriteFile(dest, []byte(url), 0o644)
}

type fakeAssembler struct {
	calls int
	list  string
	err   error
}

func (f *fakeAssembler) Concat(_ context.Context, listPath, outputPath, _ string) error {
	f.calls++
	data, err := os.ReadFile(listPath)
	if err != nil {
		return err
	}
	f.list = string(data)
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outputPath, []byte("video"), 0o644)
}

type fixture struct {
	pipeline  *Pipeline
	replays   *fakeReplays
	fetcher   *fakeFetcher
	assembler *fakeAssembler
	output    string
	cache     string
	scratch   string
}

func newFixture(t *testing.T, segments []catalog.Segment) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		replays:   &fakeReplays{segments: segments},
		fetcher:   &fakeFetcher{failOn: map[string]bool{}},
		assembler: &fakeAssembler{},
		output:    filepath.Join(root, "out"),
		cache:     filepath.Join(root, "cache"),
		scratch:   filepath.Join(root, "scratch"),
	}
	for _, dir := range []string{f.output, f.cache, f.scratch} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	f.pipeline = New(Options{OutputDir: f.output, CacheDir: f.cache}, f.replays, f.fetcher, f.assembler, logging.NewNop())
	return f
}

const prefix = "Circuits-Xu/3-Waves"

func TestRunSkipsExistingOutputWithoutAnyCalls(t *testing.T) {
	f := newFixture(t, []catalog.Segment{{URL: "u0", Order: 0}})
	out := f.pipeline.OutputPath(prefix)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(out, []byte("done"), 0o644); err != nil {
		t.Fatal(err)
	}

	res := f.pipeline.Run(context.Background(), "55", prefix, f.scratch)
	if res.Status != workunit.Skipped {
		t.Fatalf("expected skipped, got %v", res)
	}
	if f.replays.calls != 0 || len(f.fetcher.urls) != 0 || f.assembler.calls != 0 {
		t.Fatalf("expected no calls, got replay=%d fetch=%d assemble=%d", f.replays.calls, len(f.fetcher.urls), f.assembler.calls)
	}
}

func TestRunSkipsLessonWithoutVideo(t *testing.T) {
	f := newFixture(t, nil)
	res := f.pipeline.Run(context.Background(), "55", prefix, f.scratch)
	if res.Status != workunit.Skipped || res.Err != nil {
		t.Fatalf("expected clean skip, got %v", res)
	}
}

func TestRunTreatsMissingReplayAsNoVideo(t *testing.T) {
	f := newFixture(t, nil)
	f.replays.err = services.Wrap(services.ErrNotFound, "catalog", "/api/v3/lesson-summary/replay", "returned 404", nil)
	if res := f.pipeline.Run(context.Background(), "55", prefix, f.scratch); res.Status != workunit.Skipped {
		t.Fatalf("expected skip for a lesson without replay, got %v", res)
	}

	f.replays.err = services.Wrap(services.ErrTransient, "catalog", "/api/v3/lesson-summary/replay", "returned 502", nil)
	if res := f.pipeline.Run(context.Background(), "55", prefix, f.scratch); res.Status != workunit.Failed {
		t.Fatalf("expected other lookup errors to fail the lesson, got %v", res)
	}
}

func TestRunConcatenatesInAscendingOrder(t *testing.T) {
	f := newFixture(t, []catalog.Segment{
		{URL: "u2", Order: 2},
		{URL: "u0", Order: 0},
		{URL: "u1", Order: 1},
	})
	if err := os.MkdirAll(filepath.Join(f.cache, "Circuits-Xu"), 0o755); err != nil {
		t.Fatal(err)
	}

	res := f.pipeline.Run(context.Background(), "55", prefix, f.scratch)
	if res.Status != workunit.Completed {
		t.Fatalf("expected completed, got %v", res)
	}
	if strings.Join(f.fetcher.urls, ",") != "u0,u1,u2" {
		t.Fatalf("expected downloads in order, got %v", f.fetcher.urls)
	}
	lines := strings.Split(strings.TrimSpace(f.assembler.list), "\n")
	if len(lines) != 3 {
		t.Fatalf("unexpected concat list %q", f.assembler.list)
	}
	for i, line := range lines {
		want := "file '" + f.pipeline.SegmentPath(prefix, i) + "'"
		if line != want {
			t.Fatalf("line %d = %q, want %q", i, line, want)
		}
	}
	if _, err := os.Stat(f.pipeline.OutputPath(prefix)); err != nil {
		t.Fatalf("expected output: %v", err)
	}
	if _, err := os.Stat(f.pipeline.SegmentPath(prefix, 0)); !os.IsNotExist(err) {
		t.Fatal("expected cached segments removed after assembly")
	}
}

func TestRunKeepsSegmentsWhenConfigured(t *testing.T) {
	f := newFixture(t, []catalog.Segment{{URL: "u0", Order: 0}})
	f.pipeline.opts.KeepSegments = true
	if res := f.pipeline.Run(context.Background(), "55", prefix, f.scratch); res.Status != workunit.Completed {
		t.Fatalf("unexpected result %v", res)
	}
	if _, err := os.Stat(f.pipeline.SegmentPath(prefix, 0)); err != nil {
		t.Fatalf("expected segment kept: %v", err)
	}
}

func TestRunSegmentFailureBlocksAssemblyOnly(t *testing.T) {
	f := newFixture(t, []catalog.Segment{
		{URL: "u0", Order: 0},
		{URL: "u1", Order: 1},
		{URL: "u2", Order: 2},
	})
	f.fetcher.failOn["u1"] = true

	res := f.pipeline.Run(context.Background(), "55", prefix, f.scratch)
	if res.Status != workunit.Failed {
		t.Fatalf("expected failure, got %v", res)
	}
	if len(f.fetcher.urls) != 3 {
		t.Fatalf("sibling segments should still download, got %v", f.fetcher.urls)
	}
	if f.assembler.calls != 0 {
		t.Fatal("assembly must not run after a segment failure")
	}
	if !strings.Contains(res.Err.Error(), "1 of 3 segments failed") {
		t.Fatalf("unexpected error %v", res.Err)
	}
}

func TestRunCancelledBetweenSegments(t *testing.T) {
	f := newFixture(t, []catalog.Segment{{URL: "u0", Order: 0}, {URL: "u1", Order: 1}})
	ctx, cancel := context.WithCancel(context.Background())
	f.fetcher.onCall = cancel

	res := f.pipeline.Run(ctx, "55", prefix, f.scratch)
	if res.Status != workunit.Cancelled {
		t.Fatalf("expected cancelled, got %v", res)
	}
	if len(f.fetcher.urls) != 1 {
		t.Fatalf("expected one download before cancellation, got %v", f.fetcher.urls)
	}
	if f.assembler.calls != 0 {
		t.Fatal("assembly must not run after cancellation")
	}
}

func TestRunAssemblyFailure(t *testing.T) {
	f := newFixture(t, []catalog.Segment{{URL: "u0", Order: 0}})
	f.assembler.err = services.Wrap(services.ErrExternalTool, "ffmpeg", "ffmpeg", "Failed to concatenate", errors.New("exit 1"))

	res := f.pipeline.Run(context.Background(), "55", prefix, f.scratch)
	if res.Status != workunit.Failed || !errors.Is(res.Err, services.ErrExternalTool) {
		t.Fatalf("expected tool failure, got %v", res)
	}
	if _, err := os.Stat(f.pipeline.SegmentPath(prefix, 0)); err != nil {
		t.Fatal("segments must be kept when assembly fails")
	}
}

func TestOrderSegments(t *testing.T) {
	got := OrderSegments([]catalog.Segment{{URL: "c", Order: 2}, {URL: "a", Order: 0}, {URL: "b", Order: 1}})
	if got[0].URL != "a" || got[1].URL != "b" || got[2].URL != "c" {
		t.Fatalf("unexpected order %+v", got)
	}

	dups := OrderSegments([]catalog.Segment{{URL: "x", Order: 0}, {URL: "y", Order: 0}})
	if dups[0].Order != 0 || dups[1].Order != 1 || dups[1].URL != "y" {
		t.Fatalf("duplicates should fall back to position, got %+v", dups)
	}
}
