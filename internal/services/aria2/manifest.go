package aria2

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// BatchItem is one entry of an aria2c input file.
type BatchItem struct {
	URL string
	Dir string
	Out string
}

// WriteManifest writes items in aria2c input-file format: the URL on its own
// line followed by indented per-download options.
func WriteManifest(path string, items []BatchItem) error {
	if len(items) == 0 {
		return errors.New("manifest has no entries")
	}
	var b strings.Builder
	for _, item := range items {
		if strings.ContainsAny(item.URL, "\r\n") || strings.ContainsAny(item.Dir, "\r\n") || strings.ContainsAny(item.Out, "\r\n") {
			return fmt.Errorf("manifest entry %q contains a line break", item.Out)
		}
		b.WriteString(item.URL)
		b.WriteByte('\n')
		if item.Dir != "" {
			b.WriteString("  dir=")
			b.WriteString(item.Dir)
			b.WriteByte('\n')
		}
		if item.Out != "" {
			b.WriteString("  out=")
			b.WriteString(item.Out)
			b.WriteByte('\n')
		}
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write aria2 manifest: %w", err)
	}
	return nil
}
