package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// Merge combines active and archived courses into one list. Duplicate IDs
// collapse to a single record and the active copy wins. Every surviving
// course gets a distinct folder.
func Merge(active, archived []Course) []Course {
	seen := make(map[string]struct{}, len(active)+len(archived))
	out := make([]Course, 0, len(active)+len(archived))
	for _, list := range [][]Course{active, archived} {
		for _, c := range list {
			if _, dup := seen[c.ID]; dup {
				continue
			}
			seen[c.ID] = struct{}{}
			out = append(out, c)
		}
	}
	AssignFolders(out)
	return out
}

// AssignFolders makes FolderName unique across courses, comparing names
// case-insensitively. The first course to claim a name keeps it, so existing
// archives stay where they are; later namesakes get "-{ID}" appended.
func AssignFolders(courses []Course) {
	fold := cases.Fold()
	taken := make(map[string]struct{}, len(courses))
	claim := func(name string) bool {
		key := fold.String(name)
		if _, dup := taken[key]; dup {
			return false
		}
		taken[key] = struct{}{}
		return true
	}
	for i := range courses {
		courses[i].Folder = ""
		base := courses[i].naturalFolder()
		if claim(base) {
			continue
		}
		name := base + "-" + SanitizeName(courses[i].ID)
		for n := 2; !claim(name); n++ {
			name = base + "-" + SanitizeName(courses[i].ID) + "-" + strconv.Itoa(n)
		}
		courses[i].Folder = name
	}
}

// FetchCourses lists active and archived courses and merges them.
func FetchCourses(ctx context.Context, src CourseSource) ([]Course, error) {
	active, err := src.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active courses: %w", err)
	}
	archived, err := src.ListArchived(ctx)
	if err != nil {
		return nil, fmt.Errorf("list archived courses: %w", err)
	}
	return Merge(active, archived), nil
}

// Matcher tests names against a substring filter. The zero value matches
// everything.
type Matcher struct {
	pattern string
	fold    bool
}

// NewMatcher builds a substring matcher, optionally case-insensitive using
// Unicode case folding.
func NewMatcher(pattern string, caseInsensitive bool) Matcher {
	m := Matcher{pattern: pattern, fold: caseInsensitive}
	if m.fold {
		m.pattern = cases.Fold().String(pattern)
	}
	return m
}

// Match reports whether name contains the pattern. A Caser is not safe for
// concurrent use, so each call folds with its own.
func (m Matcher) Match(name string) bool {
	if m.pattern == "" {
		return true
	}
	if m.fold {
		name = cases.Fold().String(name)
	}
	return strings.Contains(name, m.pattern)
}

// FilterCourses keeps courses whose name matches.
func FilterCourses(courses []Course, m Matcher) []Course {
	out := make([]Course, 0, len(courses))
	for _, c := range courses {
		if m.Match(c.Name) {
			out = append(out, c)
		}
	}
	return out
}

// FilterLessons keeps lessons whose title matches and numbers the survivors.
// The server lists newest first, so ordinal is count minus index: the oldest
// lesson is 1 and the newest is count.
func FilterLessons(lessons []Lesson, m Matcher) []Lesson {
	out := make([]Lesson, 0, len(lessons))
	for _, l := range lessons {
		if m.Match(l.Title) {
			out = append(out, l)
		}
	}
	for i := range out {
		out[i].Ordinal = len(out) - i
	}
	return out
}
