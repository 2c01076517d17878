package deps

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Path != present {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}
	if got := MissingRequired(results); len(got) != 1 || got[0] != "Missing" {
		t.Fatalf("unexpected missing list: %v", got)
	}
}

func TestToolRequirementsOptionalWhenPipelineDisabled(t *testing.T) {
	reqs := ToolRequirements("aria2c", "ffmpeg", false, true)
	if reqs[0].Optional {
		t.Fatal("aria2c should be required when slides are enabled")
	}
	if !reqs[1].Optional {
		t.Fatal("ffmpeg should be optional when video is disabled")
	}
}

func TestCheckFFmpegEncoder(t *testing.T) {
	dir := t.TempDir()
	stub := filepath.Join(dir, "ffmpeg")
	listing := "#!/bin/sh\ncat <<'OUT'\nEncoders:\n ------\n V....D libx265              libx265 H.265 / HEVC\n A....D aac                  AAC (Advanced Audio Coding)\nOUT\n"
	if err := os.WriteFile(stub, []byte(listing), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	if status := CheckFFmpegEncoder(context.Background(), stub, "libx265"); !status.Available {
		t.Fatalf("expected libx265 available: %#v", status)
	}
	status := CheckFFmpegEncoder(context.Background(), stub, "hevc_nvenc")
	if status.Available {
		t.Fatal("expected hevc_nvenc unavailable")
	}
	if status.Detail == "" {
		t.Fatal("expected detail for missing encoder")
	}
}
