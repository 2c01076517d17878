package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const encoderProbeTimeout = 10 * time.Second

// CheckFFmpegEncoder reports whether the ffmpeg binary lists the given encoder.
// A configured hevc_nvenc on a host without NVENC otherwise only fails at the
// first assembly.
func CheckFFmpegEncoder(ctx context.Context, ffmpegBinary, encoder string) Status {
	result := Status{
		Name:        "FFmpeg encoder " + encoder,
		Command:     ffmpegBinary,
		Description: "Video encoder used for lesson assembly",
	}
	encoder = strings.TrimSpace(encoder)
	if encoder == "" || encoder == "copy" {
		result.Available = true
		return result
	}

	probeCtx, cancel := context.WithTimeout(ctx, encoderProbeTimeout)
	defer cancel()
	out, err := exec.CommandContext(probeCtx, ffmpegBinary, "-hide_banner", "-encoders").Output()
	if err != nil {
		result.Detail = fmt.Sprintf("probe encoders: %v", err)
		return result
	}
	if hasEncoder(out, encoder) {
		result.Available = true
		return result
	}
	result.Detail = fmt.Sprintf("encoder %q not available in this ffmpeg build", encoder)
	return result
}

// hasEncoder scans `ffmpeg -encoders` output, whose rows look like
// " V....D hevc_nvenc           NVIDIA NVENC hevc encoder".
func hasEncoder(listing []byte, encoder string) bool {
	scanner := bufio.NewScanner(bytes.NewReader(listing))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) >= 2 && fields[1] == encoder {
			return true
		}
	}
	return false
}
