package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external dependency lessonvault relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Path        string
	Detail      string
}

// ToolRequirements lists the external tools a run needs. A tool whose pipeline is
// disabled is reported as optional.
func ToolRequirements(aria2, ffmpeg string, videoEnabled, slidesEnabled bool) []Requirement {
	return []Requirement{
		{
			Name:        "aria2c",
			Command:     aria2,
			Description: "Downloads video segments and slide images",
			Optional:    !videoEnabled && !slidesEnabled,
		},
		{
			Name:        "FFmpeg",
			Command:     ffmpeg,
			Description: "Concatenates and transcodes lesson video",
			Optional:    !videoEnabled,
		},
	}
}

// CheckBinaries resolves each requirement on PATH (or as an absolute path).
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, len(requirements))
	for i, req := range requirements {
		results[i] = lookup(req)
	}
	return results
}

func lookup(req Requirement) Status {
	status := Status{
		Name:        req.Name,
		Command:     strings.TrimSpace(req.Command),
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	if status.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	path, err := exec.LookPath(status.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", status.Command)
		return status
	}
	status.Available, status.Path = true, path
	return status
}

// MissingRequired returns the names of unavailable non-optional dependencies.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s.Name)
		}
	}
	return missing
}
