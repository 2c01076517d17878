package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lessonvault/internal/logging"
	"lessonvault/internal/procrun"
	"lessonvault/internal/services"
)

type fakeExecutor struct {
	cmd procrun.Command
	run func(ctx context.Context, cmd procrun.Command, onInterrupt procrun.InterruptFunc) error
}

func (f *fakeExecutor) Run(ctx context.Context, cmd procrun.Command, onInterrupt procrun.InterruptFunc, _ string) error {
	f.cmd = cmd
	if f.run != nil {
		return f.run(ctx, cmd, onInterrupt)
	}
	return nil
}

func defaultOptions() Options {
	return Options{
		Binary:        "ffmpeg",
		HWAccel:       "cuda",
		VideoCodec:    "hevc_nvenc",
		VideoBitrate:  "200k",
		MaxRate:       "400k",
		BufSize:       "3200k",
		FrameRate:     8,
		RCLookahead:   1024,
		AudioCodec:    "aac",
		AudioBitrate:  "64k",
		AudioChannels: 1,
	}
}

func TestConcatArgsDefaultChain(t *testing.T) {
	client, err := New(defaultOptions(), &fakeExecutor{}, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := strings.Join(client.ConcatArgs("/scratch/list.txt", "/out/c/1-a.mp4"), " ")
	want := "-f concat -safe 0 -hwaccel cuda -hwaccel_output_format cuda -i /scratch/list.txt " +
		"-c:v hevc_nvenc -b:v 200k -maxrate 400k -bufsize 3200k -r 8 -rc-lookahead 1024 " +
		"-c:a aac -rematrix_maxval 1.0 -ac 1 -b:a 64k /out/c/1-a.mp4 -n -hide_banner -loglevel warning -stats"
	if got != want {
		t.Fatalf("unexpected args:\n got %s\nwant %s", got, want)
	}
}

func TestConcatArgsSoftwareEncoder(t *testing.T) {
	opts := defaultOptions()
	opts.HWAccel = ""
	opts.VideoCodec = "libx265"
	opts.ExtraArgs = []string{"-preset", "fast"}
	client, _ := New(opts, &fakeExecutor{}, logging.NewNop())
	got := strings.Join(client.ConcatArgs("l", "o.mp4"), " ")
	if strings.Contains(got, "hwaccel") || strings.Contains(got, "rc-lookahead") {
		t.Fatalf("unexpected hardware flags: %s", got)
	}
	if !strings.Contains(got, "-preset fast o.mp4 -n") {
		t.Fatalf("extra args should precede output: %s", got)
	}
}

func TestConcatRemovesPartialOnFailure(t *testing.T) {
	out := filepath.Join(t.TempDir(), "1-a.mp4")
	exec := &fakeExecutor{run: func(context.Context, procrun.Command, procrun.InterruptFunc) error {
		_ = os.WriteFile(out, []byte("partial"), 0o644)
		return services.Wrap(services.ErrExternalTool, "ffmpeg", "ffmpeg", "Failed to concat", errors.New("exit status 1"))
	}}
	client, _ := New(defaultOptions(), exec, logging.NewNop())

	err := client.Concat(context.Background(), "list.txt", out, "Failed to concat")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected tool error, got %v", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatal("expected partial output removed after failure")
	}
}

func TestConcatRefusesExistingOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "done.mp4")
	if err := os.WriteFile(out, []byte("complete"), 0o644); err != nil {
		t.Fatal(err)
	}
	exec := &fakeExecutor{}
	client, _ := New(defaultOptions(), exec, logging.NewNop())

	if err := client.Concat(context.Background(), "list.txt", out, "x"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if exec.cmd.Name != "" {
		t.Fatal("ffmpeg must not run over an existing output")
	}
	if data, _ := os.ReadFile(out); string(data) != "complete" {
		t.Fatal("existing output must be preserved")
	}
}

func TestConcatCancellationDeletesPartial(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "lesson.mp4")
	ready := filepath.Join(dir, "ready")
	// The stub writes a partial output and ignores SIGINT like a busy encoder.
	script := filepath.Join(dir, "ffmpeg")
	body := "#!/bin/sh\ntrap '' INT\n" +
		"printf partial > \"" + out + "\"\ntouch \"" + ready + "\"\nwhile :; do sleep 0.05; done\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}

	opts := defaultOptions()
	opts.Binary = script
	opts.Settle = 50 * time.Millisecond
	runner := procrun.New(logging.NewNop(), procrun.WithOutput(&strings.Builder{}, &strings.Builder{}))
	client, _ := New(opts, runner, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for i := 0; i < 500; i++ {
			if _, err := os.Stat(ready); err == nil {
				break
			}
			time.Sleep(10 * time.Millisecond)
		}
		cancel()
	}()

	err := client.Concat(ctx, filepath.Join(dir, "list.txt"), out, "Failed to concat lesson")
	if !services.IsCancelled(err) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatal("expected partial mp4 deleted after cancellation")
	}
}

func TestWriteConcatListQuotes(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "list.txt")
	files := []string{
		filepath.Join(dir, "Course-T", "1-Intro-0.mp4"),
		filepath.Join(dir, "Course-T", "1-Teacher's Notes-1.mp4"),
	}
	if err := WriteConcatList(list, files); err != nil {
		t.Fatalf("WriteConcatList: %v", err)
	}
	data, err := os.ReadFile(list)
	if err != nil {
		t.Fatal(err)
	}
	want := "file '" + files[0] + "'\nfile '" + filepath.Join(dir, "Course-T", `1-Teacher'\''s Notes-1.mp4`) + "'\n"
	if string(data) != want {
		t.Fatalf("unexpected list:\n%s\nwant:\n%s", data, want)
	}
	if err := WriteConcatList(list, nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestNewRequiresBinaryAndExecutor(t *testing.T) {
	if _, err := New(Options{Binary: ""}, &fakeExecutor{}, logging.NewNop()); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for empty binary, got %v", err)
	}
	if _, err := New(defaultOptions(), nil, logging.NewNop()); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for nil executor, got %v", err)
	}
}
