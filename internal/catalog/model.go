package catalog

import (
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Course is one classroom the user belongs to, active or archived. Folder is
// set by AssignFolders when the natural folder name is already taken.
type Course struct {
	ID          string
	Name        string
	TeacherName string
	Folder      string
}

// FolderName is the course's directory under the output and cache roots.
func (c Course) FolderName() string {
	if c.Folder != "" {
		return c.Folder
	}
	return c.naturalFolder()
}

func (c Course) naturalFolder() string {
	return SanitizeName(c.Name + "-" + c.TeacherName)
}

// LegacyFolderName is the teacher-less directory name used by older archives.
// It is empty for a course moved to a disambiguated folder, whose archive
// can't be told apart from its namesake's.
func (c Course) LegacyFolderName() string {
	if c.Folder != "" {
		return ""
	}
	return SanitizeName(c.Name)
}

// Lesson is one recorded class session. Ordinal is assigned after filtering
// so the oldest surviving lesson is 1.
type Lesson struct {
	CoursewareID string
	Title        string
	Ordinal      int
}

// NamePrefix returns "{course folder}/{ordinal}-{title}", the identity of the
// lesson's artifacts relative to the output root.
func (l Lesson) NamePrefix(course Course) string {
	return course.FolderName() + "/" + strconv.Itoa(l.Ordinal) + "-" + SanitizeName(l.Title)
}

// Segment is one piece of a lesson's replay.
type Segment struct {
	URL   string
	Order int
}

// Presentation is a slide deck shown during a lesson.
type Presentation struct {
	ID    string
	Title string
}

// PresentationPrefix returns "{lesson prefix}-{i}-{title}" for the i-th
// (zero-based) deck of a lesson.
func PresentationPrefix(lessonPrefix string, i int, title string) string {
	return lessonPrefix + "-" + strconv.Itoa(i) + "-" + SanitizeName(title)
}

// Problem is an in-class quiz attached to a slide.
type Problem struct {
	Answers []string
}

// Slide is one page of a deck. Index is 1-based; an empty Cover means the
// page has no image and is skipped.
type Slide struct {
	Index   int
	Cover   string
	Problem *Problem
}

// SlideSet is a deck with its pages.
type SlideSet struct {
	Title  string
	Slides []Slide
}

// Session is an authenticated connection to the platform.
type Session struct {
	Client *http.Client
	Token  string
}

// SanitizeName makes a server-provided title safe as a single path component.
func SanitizeName(value string) string {
	value = norm.NFC.String(strings.TrimSpace(value))
	value = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, value)
	value = strings.Trim(value, ". ")
	if value == "" {
		return "untitled"
	}
	return value
}
