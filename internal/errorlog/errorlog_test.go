package errorlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
)

func TestAppendConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error.log")
	log := New(path)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := log.Append(fmt.Sprintf("Course-T/%d-Lesson", i)); err != nil {
				t.Errorf("Append: %v", err)
			}
		}(i)
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 20 {
		t.Fatalf("expected 20 lines, got %d", len(lines))
	}
	sort.Strings(lines)
	for _, line := range lines {
		if !strings.HasPrefix(line, "Course-T/") {
			t.Fatalf("interleaved line %q", line)
		}
	}
}

func TestNilLogIsNoop(t *testing.T) {
	var log *Log
	if err := log.Append("x"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
