package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteConcatList writes a concat-demuxer list naming files in the given order.
// Paths are made absolute and single quotes are escaped the way the demuxer
// expects ('\'').
func WriteConcatList(path string, files []string) error {
	if len(files) == 0 {
		return errors.New("concat list has no inputs")
	}
	var b strings.Builder
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", file, err)
		}
		if strings.ContainsAny(abs, "\r\n") {
			return fmt.Errorf("concat input %q contains a line break", abs)
		}
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(abs, "'", `'\''`))
		b.WriteString("'\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	return nil
}
