package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Dir is a course task's private scratch directory. It holds concat and
// download manifests and is removed when the course finishes.
type Dir struct {
	Path string
}

// Create makes a fresh scratch directory for one course within a run.
func Create(root, runID, courseID string) (Dir, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return Dir{}, fmt.Errorf("staging root not configured")
	}
	name := sanitize(courseID)
	if runID = strings.TrimSpace(runID); runID != "" {
		name = sanitize(runID) + "-" + name
	}
	path := filepath.Join(root, name)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return Dir{}, fmt.Errorf("create scratch directory: %w", err)
	}
	return Dir{Path: path}, nil
}

// Remove deletes the scratch directory and everything in it.
func (d Dir) Remove() error {
	if d.Path == "" {
		return nil
	}
	if err := os.RemoveAll(d.Path); err != nil {
		return fmt.Errorf("remove scratch directory: %w", err)
	}
	return nil
}

func sanitize(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "course"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, value)
}
