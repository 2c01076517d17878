package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"lessonvault/internal/config"
	"lessonvault/internal/deps"
)

// SessionVerifier confirms that stored platform credentials are accepted.
type SessionVerifier interface {
	VerifySession(ctx context.Context) (string, error)
}

// CheckSession verifies that the platform accepts the configured session.
func CheckSession(ctx context.Context, verifier SessionVerifier) Result {
	const name = "Platform session"
	if verifier == nil {
		return Result{Name: name, Detail: "no session configured (run `lessonvault login`)"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	user, err := verifier.VerifySession(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeSessionError(err)}
	}
	detail := "Authenticated"
	if user != "" {
		detail = fmt.Sprintf("Authenticated as %s", user)
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace verifies that the filesystem holding path has at least minBytes available.
func CheckFreeSpace(name, path string, minBytes uint64) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	detail := fmt.Sprintf("%s (%s free)", path, humanBytes(free))
	if free < minBytes {
		return Result{Name: name, Detail: detail + fmt.Sprintf(", need %s", humanBytes(minBytes))}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckSystemDeps evaluates the external tools a run needs for the given config.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	statuses := deps.CheckBinaries(deps.ToolRequirements(
		cfg.Aria2.Binary,
		cfg.FFmpeg.Binary,
		cfg.Download.Video,
		cfg.Download.Slides,
	))
	if !cfg.Download.Video {
		return statuses
	}
	for _, s := range statuses {
		if s.Name == "FFmpeg" && s.Available {
			statuses = append(statuses, deps.CheckFFmpegEncoder(ctx, s.Path, cfg.FFmpeg.VideoCodec))
		}
	}
	return statuses
}

func summarizeSessionError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "session check timed out (platform unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "session check timed out (platform unreachable)"
	}
	return err.Error()
}

func humanBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
